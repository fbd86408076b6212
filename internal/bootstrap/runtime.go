// Package bootstrap wires the runtime dependencies shared by the server and
// the operator commands.
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"strings"

	"shepherd/internal/cache"
	"shepherd/internal/config"
	"shepherd/internal/database"
	"shepherd/internal/models"
	"shepherd/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedPreset names a seed preset applied to an empty development database.
	SeedPreset string
}

// InitRuntime connects to DB and Redis and optionally seeds a preset.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := SeedIfEmpty(context.Background(), cfg, db, opts.SeedPreset); err != nil {
		return nil, nil, fmt.Errorf("failed to seed preset %q: %w", opts.SeedPreset, err)
	}

	return db, r, nil
}

// SeedIfEmpty applies the named preset when running in development against a
// database with no users. It never touches production-like environments.
func SeedIfEmpty(ctx context.Context, cfg *config.Config, db *gorm.DB, preset string) error {
	preset = strings.TrimSpace(preset)
	if preset == "" || cfg == nil || db == nil {
		return nil
	}
	if env := strings.ToLower(cfg.Env); env != "" && env != "development" && env != "test" {
		log.Printf("skipping seed preset %q outside development (env=%s)", preset, env)
		return nil
	}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	p, err := seed.LoadPreset(preset)
	if err != nil {
		return err
	}
	sum, err := seed.NewSeeder(db, seed.Options{}).ApplyPreset(p)
	if err != nil {
		return err
	}
	log.Printf("seeded preset %s: %s", p.Name, sum)
	return nil
}
