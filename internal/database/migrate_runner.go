package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"shepherd/internal/middleware"

	"gorm.io/gorm"
)

// MigrationRecord is a row of schema_migrations.
type MigrationRecord struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false" json:"version"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Checksum  string    `gorm:"size:64" json:"checksum"`
	AppliedAt time.Time `gorm:"not null" json:"applied_at"`
}

func (MigrationRecord) TableName() string {
	return "schema_migrations"
}

// Migrator applies a fixed set of migrations and tracks them in schema_migrations.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

// NewMigrator returns a Migrator for migrations, which must be sorted by version.
func NewMigrator(db *gorm.DB, migrations []Migration) *Migrator {
	return &Migrator{db: db, migrations: migrations}
}

// Applied lists recorded migrations in version order. A missing table means none.
func (m *Migrator) Applied(ctx context.Context) ([]MigrationRecord, error) {
	var records []MigrationRecord
	err := m.db.WithContext(ctx).Order("version ASC").Find(&records).Error
	if err != nil {
		if isMissingTableError(err) {
			return []MigrationRecord{}, nil
		}
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return records, nil
}

func isMissingTableError(err error) bool {
	msg := err.Error()
	return (strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "no such table")
}

// Pending returns the migrations not yet recorded. It fails when the database
// knows versions the code does not, or when an applied script was edited.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkApplied(applied, m.migrations); err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(applied))
	for _, r := range applied {
		done[r.Version] = true
	}
	var pending []Migration
	for _, mig := range m.migrations {
		if !done[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration, each in its own transaction.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&MigrationRecord{}); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}
	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}
	for i, mig := range pending {
		middleware.Logger.Info("Applying migration", slog.Int("version", mig.Version), slog.String("name", mig.Name))
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.Up).Error; err != nil {
				return err
			}
			return tx.Create(&MigrationRecord{
				Version:   mig.Version,
				Name:      mig.Name,
				Checksum:  mig.Checksum,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return i, fmt.Errorf("apply migration %s: %w", mig, err)
		}
	}
	return len(pending), nil
}

// Down reverts the applied migration with version.
func (m *Migrator) Down(ctx context.Context, version int) error {
	var mig *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == version {
			mig = &m.migrations[i]
		}
	}
	if mig == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	middleware.Logger.Info("Rolling back migration", slog.Int("version", version), slog.String("name", mig.Name))
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("version = ?", version).Delete(&MigrationRecord{})
		if res.Error != nil {
			if isMissingTableError(res.Error) {
				return fmt.Errorf("migration %d has not been applied", version)
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("migration %d has not been applied", version)
		}
		if err := tx.Exec(mig.Down).Error; err != nil {
			return fmt.Errorf("rollback %s: %w", mig, err)
		}
		return nil
	})
}

func checkApplied(applied []MigrationRecord, known []Migration) error {
	byVersion := make(map[int]Migration, len(known))
	for _, m := range known {
		byVersion[m.Version] = m
	}

	var unknown, edited []string
	for _, r := range applied {
		m, ok := byVersion[r.Version]
		switch {
		case !ok:
			unknown = append(unknown, fmt.Sprintf("%06d", r.Version))
		case r.Checksum != "" && r.Checksum != m.Checksum:
			edited = append(edited, m.String())
		}
	}
	var errs []error
	if len(unknown) > 0 {
		sort.Strings(unknown)
		errs = append(errs, fmt.Errorf("schema_migrations has versions unknown to this build: %s", strings.Join(unknown, ", ")))
	}
	if len(edited) > 0 {
		errs = append(errs, fmt.Errorf("applied migrations changed since they ran: %s", strings.Join(edited, ", ")))
	}
	return errors.Join(errs...)
}

// RunMigrations applies the embedded migrations.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if registryErr != nil {
		return registryErr
	}
	n, err := NewMigrator(db, registry).Up(ctx)
	if err != nil {
		return err
	}
	middleware.Logger.Info("SQL migrations complete", slog.Int("applied", n))
	return nil
}

// RollbackMigration reverts one embedded migration.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	if registryErr != nil {
		return registryErr
	}
	return NewMigrator(db, registry).Down(ctx, version)
}
