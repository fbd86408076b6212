// Command seed fills a development database with a demo faith community.
package main

import (
	"flag"
	"log"
	"strings"

	"shepherd/internal/config"
	"shepherd/internal/database"
	"shepherd/internal/seed"
)

func main() {
	leaders := flag.Int("leaders", 8, "Number of leaders to create")
	worshipers := flag.Int("worshipers", 60, "Number of worshipers to create")
	postsPerLeader := flag.Int("posts", 12, "Published posts per leader")
	scheduled := flag.Int("scheduled", 1, "Scheduled posts per leader")
	followRatio := flag.Float64("follow-ratio", 0.4, "Chance a worshiper follows each leader")
	likes := flag.Int("likes", 4, "Likes per published post")
	comments := flag.Int("comments", 2, "Comments per published post")
	questions := flag.Int("questions", 20, "Questions to create")
	conversations := flag.Int("conversations", 10, "Conversations to create")
	randomSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	preset := flag.String("preset", "", "Apply a preset by name or .yml path ("+strings.Join(seed.PresetNames(), ", ")+")")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Log what would be created without writing")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	opts := seed.Options{
		Leaders:            *leaders,
		Worshipers:         *worshipers,
		PostsPerLeader:     *postsPerLeader,
		ScheduledPerLeader: *scheduled,
		FollowRatio:        *followRatio,
		LikesPerPost:       *likes,
		CommentsPerPost:    *comments,
		Questions:          *questions,
		Conversations:      *conversations,
		RandomSeed:         *randomSeed,
		DryRun:             *dryRun,
	}
	s := seed.NewSeeder(db, opts)

	if *shouldClean && !*dryRun {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	var sum *seed.Summary
	if *preset != "" {
		log.Printf("Applying preset %s (count flags ignored)", *preset)
		p, err := seed.LoadPreset(*preset)
		if err != nil {
			log.Fatalf("Preset load failed: %v", err)
		}
		sum, err = s.ApplyPreset(p)
		if err != nil {
			log.Fatalf("Preset seeding failed: %v", err)
		}
	} else {
		sum, err = s.SeedCommunity(opts)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	log.Printf("Seeded %s", sum)
}
