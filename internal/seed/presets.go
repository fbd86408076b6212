package seed

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"shepherd/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yml
var presetFS embed.FS

// Preset is a YAML description of a seeded community. Named leaders and
// their posts are created verbatim; the counts fill in generated data.
type Preset struct {
	Name            string         `yaml:"name"`
	Description     string         `yaml:"description"`
	Leaders         []PresetLeader `yaml:"leaders"`
	ExtraLeaders    int            `yaml:"extra_leaders"`
	Worshipers      int            `yaml:"worshipers"`
	PostsPerLeader  int            `yaml:"posts_per_leader"`
	FollowRatio     float64        `yaml:"follow_ratio"`
	LikesPerPost    int            `yaml:"likes_per_post"`
	CommentsPerPost int            `yaml:"comments_per_post"`
	Questions       int            `yaml:"questions"`
	Conversations   int            `yaml:"conversations"`
}

// PresetLeader is a hand-written leader profile.
type PresetLeader struct {
	Name  string       `yaml:"name"`
	Faith string       `yaml:"faith"`
	Bio   string       `yaml:"bio"`
	Posts []PresetPost `yaml:"posts"`
}

// PresetPost is a hand-written post. A positive ScheduledInHours makes it a
// scheduled post due that many hours after seeding.
type PresetPost struct {
	Content          string `yaml:"content"`
	Tag              string `yaml:"tag"`
	Intent           string `yaml:"intent"`
	MediaURL         string `yaml:"media_url"`
	MediaType        string `yaml:"media_type"`
	ScheduledInHours int    `yaml:"scheduled_in_hours"`
}

// ParsePreset decodes and validates a preset document.
func ParsePreset(data []byte) (*Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse preset: %w", err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("preset is missing a name")
	}
	for _, l := range p.Leaders {
		if strings.TrimSpace(l.Name) == "" {
			return nil, fmt.Errorf("preset %s: leader without a name", p.Name)
		}
		for _, post := range l.Posts {
			if post.Tag != "" && !models.PostTag(post.Tag).Valid() {
				return nil, fmt.Errorf("preset %s: invalid tag %q", p.Name, post.Tag)
			}
			if post.Intent != "" && !models.PostIntent(post.Intent).Valid() {
				return nil, fmt.Errorf("preset %s: invalid intent %q", p.Name, post.Intent)
			}
		}
	}
	return &p, nil
}

// LoadPreset returns the embedded preset with the given name, or reads the
// preset from a file path when name ends in .yml or .yaml.
func LoadPreset(name string) (*Preset, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml") {
		data, err = os.ReadFile(name)
	} else {
		data, err = presetFS.ReadFile(path.Join("presets", name+".yml"))
	}
	if err != nil {
		return nil, fmt.Errorf("load preset %s: %w", name, err)
	}
	return ParsePreset(data)
}

// PresetNames lists the embedded presets.
func PresetNames() []string {
	entries, _ := presetFS.ReadDir("presets")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yml"))
	}
	sort.Strings(names)
	return names
}

func scheduledInHours(h int) func(*models.Post) {
	return func(p *models.Post) {
		at := time.Now().UTC().Add(time.Duration(h) * time.Hour)
		p.ScheduledAt = &at
		p.IsPublished = false
		p.CreatedAt = time.Now().UTC()
	}
}

// ApplyPreset seeds the community described by p.
func (s *Seeder) ApplyPreset(p *Preset) (*Summary, error) {
	f := s.factory
	sum := &Summary{}

	leaders := make([]*models.User, 0, len(p.Leaders)+p.ExtraLeaders)
	var posts []*models.Post
	for _, pl := range p.Leaders {
		pl := pl
		u, err := f.CreateUser(models.RoleLeader, func(u *models.User) {
			u.Name = pl.Name
			if pl.Faith != "" {
				u.Faith = pl.Faith
			}
			if pl.Bio != "" {
				u.Bio = pl.Bio
			}
		})
		if err != nil {
			return sum, fmt.Errorf("create leader %s: %w", pl.Name, err)
		}
		leaders = append(leaders, u)

		for _, pp := range pl.Posts {
			pp := pp
			overrides := []func(*models.Post){func(post *models.Post) {
				post.ContentText = pp.Content
				if pp.Tag != "" {
					post.Tag = models.PostTag(pp.Tag)
				}
				if pp.Intent != "" {
					post.Intent = models.PostIntent(pp.Intent)
				}
				post.MediaURL = pp.MediaURL
				post.MediaType = models.MediaType(pp.MediaType)
			}}
			if pp.ScheduledInHours > 0 {
				overrides = append(overrides, scheduledInHours(pp.ScheduledInHours))
			}
			posts = append(posts, f.BuildPost(u, overrides...))
		}
	}
	if err := f.CreatePosts(posts); err != nil {
		return sum, fmt.Errorf("create preset posts: %w", err)
	}

	for i := 0; i < p.ExtraLeaders; i++ {
		u, err := f.CreateUser(models.RoleLeader)
		if err != nil {
			return sum, fmt.Errorf("create leader: %w", err)
		}
		leaders = append(leaders, u)
	}

	worshipers := make([]*models.User, 0, p.Worshipers)
	for i := 0; i < p.Worshipers; i++ {
		u, err := f.CreateUser(models.RoleWorshiper)
		if err != nil {
			return sum, fmt.Errorf("create worshiper: %w", err)
		}
		worshipers = append(worshipers, u)
	}

	sum.Leaders = len(leaders)
	sum.Worshipers = len(worshipers)
	opts := Options{
		PostsPerLeader:  p.PostsPerLeader,
		FollowRatio:     p.FollowRatio,
		LikesPerPost:    p.LikesPerPost,
		CommentsPerPost: p.CommentsPerPost,
		Questions:       p.Questions,
		Conversations:   p.Conversations,
	}.withDefaults()
	return sum, s.populate(leaders, worshipers, posts, opts, sum)
}
