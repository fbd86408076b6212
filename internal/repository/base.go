// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"
	"time"

	"shepherd/internal/database"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// uniqueViolationCode is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolationCode = "23505"

func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

// isUniqueViolation reports whether err came from a unique index, on either
// PostgreSQL (pgx) or the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// visiblePosts restricts a posts query to rows a feed reader may see at now.
func visiblePosts(db *gorm.DB, now time.Time) *gorm.DB {
	return db.Where(
		"posts.is_active = ? AND (posts.is_published = ? OR (posts.scheduled_at IS NOT NULL AND posts.scheduled_at <= ?))",
		true, true, now.UTC(),
	)
}
