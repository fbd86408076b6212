package seed

import (
	"fmt"
	"log"

	"shepherd/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	Leaders            int
	Worshipers         int
	PostsPerLeader     int
	ScheduledPerLeader int
	FollowRatio        float64
	LikesPerPost       int
	CommentsPerPost    int
	Questions          int
	Conversations      int
	MaxDays            int
	RandomSeed         int64
	DryRun             bool
}

func (o Options) withDefaults() Options {
	if o.MaxDays <= 0 {
		o.MaxDays = 30
	}
	if o.FollowRatio <= 0 || o.FollowRatio > 1 {
		o.FollowRatio = 0.5
	}
	return o
}

// Summary counts what a seeding run created.
type Summary struct {
	Leaders       int
	Worshipers    int
	Posts         int
	Follows       int
	Likes         int
	Comments      int
	Questions     int
	Conversations int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d leaders, %d worshipers, %d posts, %d follows, %d likes, %d comments, %d questions, %d conversations",
		s.Leaders, s.Worshipers, s.Posts, s.Follows, s.Likes, s.Comments, s.Questions, s.Conversations)
}

// Seeder populates a database through a Factory.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder returns a Seeder writing to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll deletes every row of the social graph, children first.
func (s *Seeder) ClearAll() error {
	tables := []string{"notifications", "messages", "conversations", "questions", "comments", "saves", "likes", "posts", "follows", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	log.Printf("cleared %d tables", len(tables))
	return nil
}

// SeedCommunity creates leaders and worshipers, connects them, and fills in
// posts, engagement, questions and conversations as configured.
func (s *Seeder) SeedCommunity(opts Options) (*Summary, error) {
	opts = opts.withDefaults()
	f := s.factory
	sum := &Summary{}

	leaders := make([]*models.User, 0, opts.Leaders)
	for i := 0; i < opts.Leaders; i++ {
		u, err := f.CreateUser(models.RoleLeader)
		if err != nil {
			return sum, fmt.Errorf("create leader: %w", err)
		}
		leaders = append(leaders, u)
	}
	sum.Leaders = len(leaders)

	worshipers := make([]*models.User, 0, opts.Worshipers)
	for i := 0; i < opts.Worshipers; i++ {
		u, err := f.CreateUser(models.RoleWorshiper)
		if err != nil {
			return sum, fmt.Errorf("create worshiper: %w", err)
		}
		worshipers = append(worshipers, u)
	}
	sum.Worshipers = len(worshipers)

	return sum, s.populate(leaders, worshipers, nil, opts, sum)
}

// populate adds follows, generated posts and engagement. Engagement covers the
// generated posts and any already-created ones passed in posts.
func (s *Seeder) populate(leaders, worshipers []*models.User, posts []*models.Post, opts Options, sum *Summary) error {
	f := s.factory
	if len(leaders) == 0 {
		return nil
	}

	followed := make(map[uint][]*models.User, len(worshipers))
	for _, w := range worshipers {
		for _, l := range leaders {
			if f.rng.Float64() >= opts.FollowRatio {
				continue
			}
			if err := f.CreateFollow(w, l); err != nil {
				return fmt.Errorf("create follow: %w", err)
			}
			followed[w.ID] = append(followed[w.ID], l)
			sum.Follows++
		}
	}

	var generated []*models.Post
	for _, l := range leaders {
		for i := 0; i < opts.PostsPerLeader; i++ {
			generated = append(generated, f.BuildPost(l))
		}
		for i := 0; i < opts.ScheduledPerLeader; i++ {
			generated = append(generated, f.BuildPost(l, scheduledInHours(24*(i+1))))
		}
	}
	if err := f.CreatePosts(generated); err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	posts = append(posts, generated...)
	sum.Posts = len(posts)

	if len(worshipers) > 0 {
		for _, p := range posts {
			if !p.IsPublished {
				continue
			}
			for i := 0; i < opts.LikesPerPost; i++ {
				if err := f.CreateLike(worshipers[f.rng.Intn(len(worshipers))], p); err != nil {
					return fmt.Errorf("create like: %w", err)
				}
				sum.Likes++
			}
			for i := 0; i < opts.CommentsPerPost; i++ {
				if _, err := f.CreateComment(worshipers[f.rng.Intn(len(worshipers))], p); err != nil {
					return fmt.Errorf("create comment: %w", err)
				}
				sum.Comments++
			}
		}
	}

	// Questions and conversations need an existing follow edge.
	var pairs [][2]*models.User
	for _, w := range worshipers {
		for _, l := range followed[w.ID] {
			pairs = append(pairs, [2]*models.User{w, l})
		}
	}
	if len(pairs) == 0 {
		return nil
	}
	for i := 0; i < opts.Questions; i++ {
		pair := pairs[f.rng.Intn(len(pairs))]
		if _, err := f.CreateQuestion(pair[0], pair[1], i%2 == 0); err != nil {
			return fmt.Errorf("create question: %w", err)
		}
		sum.Questions++
	}
	for i := 0; i < opts.Conversations && i < len(pairs); i++ {
		if _, err := f.CreateConversation(pairs[i][0], pairs[i][1], 2+f.rng.Intn(4)); err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
		sum.Conversations++
	}
	return nil
}
