// Package service holds the command and query operations of the social graph:
// follows, engagement, questions, conversations, posts and feeds.
package service

import (
	"context"
	"log/slog"
	"time"

	"shepherd/internal/middleware"
	"shepherd/internal/models"
	"shepherd/internal/notifications"
	"shepherd/internal/observability"
)

// Notifier is the part of the notification engine the services depend on.
type Notifier interface {
	Notify(ctx context.Context, recipientID uint, typ models.NotificationType, message string, ref models.Reference) (*models.Notification, error)
	FanOutToFollowers(ctx context.Context, leaderID uint, typ models.NotificationType, message string, ref models.Reference) (*notifications.FanOutReport, error)
}

// notifyAfterCommit emits a single notification for an action that has
// already been committed. A failure is logged and counted, never returned.
func notifyAfterCommit(ctx context.Context, n Notifier, recipientID uint, typ models.NotificationType, message string, ref models.Reference) {
	if n == nil {
		return
	}
	if _, err := n.Notify(ctx, recipientID, typ, message, ref); err != nil {
		observability.FanOutFailures.WithLabelValues(string(typ)).Inc()
		middleware.Logger.ErrorContext(ctx, "notification delivery failed",
			slog.String("type", string(typ)),
			slog.Uint64("recipient_id", uint64(recipientID)),
			slog.String("error", err.Error()),
		)
	}
}

// fanOutAfterCommit notifies the followers of leaderID. Per-recipient failures
// live in the returned report; a failed follower read is only logged.
func fanOutAfterCommit(ctx context.Context, n Notifier, leaderID uint, typ models.NotificationType, message string, ref models.Reference) *notifications.FanOutReport {
	if n == nil {
		return nil
	}
	report, err := n.FanOutToFollowers(ctx, leaderID, typ, message, ref)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "fan-out aborted before delivery",
			slog.String("type", string(typ)),
			slog.Uint64("leader_id", uint64(leaderID)),
			slog.String("error", err.Error()),
		)
	}
	return report
}

// displayName returns the user's name, or a neutral fallback when the
// profile cannot be loaded.
func displayName(u *models.User) string {
	if u == nil || u.Name == "" {
		return "Someone"
	}
	return u.Name
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func summaryPtr(u *models.User) *models.UserSummary {
	if u == nil {
		return nil
	}
	s := u.Summary()
	return &s
}
