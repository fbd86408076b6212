// Package notifications derives and persists notification rows for social
// events and serves each recipient's notification list.
package notifications

import (
	"context"
	"errors"
	"strconv"

	"shepherd/internal/config"
	"shepherd/internal/models"
	"shepherd/internal/observability"
	"shepherd/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// FollowerLister is the read the engine needs from the relationship store.
type FollowerLister interface {
	ListFollowerIDs(ctx context.Context, leaderID uint) ([]uint, error)
}

// RecipientFailure records one recipient whose notification could not be written.
type RecipientFailure struct {
	RecipientID uint   `json:"recipient_id"`
	Error       string `json:"error"`
}

// FanOutReport summarises a single FanOutToFollowers pass.
type FanOutReport struct {
	BatchID    string                  `json:"batch_id"`
	Type       models.NotificationType `json:"type"`
	Recipients int                     `json:"recipients"`
	Delivered  int                     `json:"delivered"`
	Failures   []RecipientFailure      `json:"failures,omitempty"`
}

// NotificationPage is one page of a recipient's notifications. Total and
// UnreadCount cover the whole set, not just the page.
type NotificationPage struct {
	Items       []*models.Notification `json:"items"`
	Total       int64                  `json:"total"`
	UnreadCount int64                  `json:"unread_count"`
}

// Engine persists notifications. It is safe for concurrent use.
type Engine struct {
	notifications repository.NotificationRepository
	followers     FollowerLister
	limits        config.Engine
	repoLog       *observability.RepoLogger
}

// NewEngine creates a notification engine.
func NewEngine(notifications repository.NotificationRepository, followers FollowerLister, limits config.Engine) *Engine {
	return &Engine{
		notifications: notifications,
		followers:     followers,
		limits:        limits.WithDefaults(),
		repoLog:       observability.NewRepoLogger("notifications"),
	}
}

// Notify inserts one unread notification for recipientID.
func (e *Engine) Notify(ctx context.Context, recipientID uint, typ models.NotificationType, message string, ref models.Reference) (*models.Notification, error) {
	n := &models.Notification{
		UserID:  recipientID,
		Type:    typ,
		Message: message,
	}
	n.SetReference(ref)
	if err := e.notifications.Create(ctx, n); err != nil {
		e.repoLog.LogError(ctx, err, "create", map[string]interface{}{
			"recipient_id":      recipientID,
			"notification_type": string(typ),
		})
		return nil, err
	}
	observability.NotificationsCreated.WithLabelValues(string(typ)).Inc()
	e.repoLog.LogCreate(ctx, map[string]interface{}{
		"notification_id":   n.ID,
		"recipient_id":      recipientID,
		"notification_type": string(typ),
	})
	return n, nil
}

// FanOutToFollowers notifies every current follower of leaderID, one at a
// time. A failed recipient never stops the others; failures are logged,
// counted and returned in the report. The only error returned is a failure
// to read the follower set.
func (e *Engine) FanOutToFollowers(ctx context.Context, leaderID uint, typ models.NotificationType, message string, ref models.Reference) (*FanOutReport, error) {
	report := &FanOutReport{BatchID: uuid.NewString(), Type: typ}

	span, ctx := observability.NewSpan(ctx, "notifications.fan_out")
	defer span.End()
	span.AddAttributes(
		attribute.String("fanout.batch_id", report.BatchID),
		attribute.String("fanout.type", string(typ)),
		attribute.String("fanout.leader_id", strconv.FormatUint(uint64(leaderID), 10)),
	)

	recipients, err := e.followers.ListFollowerIDs(ctx, leaderID)
	if err != nil {
		span.SetError(err)
		return report, err
	}
	report.Recipients = len(recipients)
	observability.FanOutRecipients.WithLabelValues(string(typ)).Observe(float64(len(recipients)))

	fields := map[string]interface{}{
		"batch_id":          report.BatchID,
		"leader_id":         leaderID,
		"notification_type": string(typ),
		"recipients":        len(recipients),
	}
	observability.LogBatchStart(ctx, "fan_out", fields)

	failures := make(chan RecipientFailure, len(recipients))
	for _, recipientID := range recipients {
		if _, err := e.Notify(ctx, recipientID, typ, message, ref); err != nil {
			failures <- RecipientFailure{RecipientID: recipientID, Error: err.Error()}
			continue
		}
		report.Delivered++
	}
	close(failures)

	for f := range failures {
		report.Failures = append(report.Failures, f)
		observability.FanOutFailures.WithLabelValues(string(typ)).Inc()
		observability.LogBatchError(ctx, "fan_out", errors.New(f.Error), map[string]interface{}{
			"batch_id":     report.BatchID,
			"recipient_id": f.RecipientID,
		})
	}

	fields["delivered"] = report.Delivered
	fields["failed"] = len(report.Failures)
	observability.LogBatchEnd(ctx, "fan_out", fields)
	span.AddAttributes(
		attribute.Int("fanout.recipients", report.Recipients),
		attribute.Int("fanout.failed", len(report.Failures)),
	)
	return report, nil
}

// ListNotifications returns the newest notifications for userID. Read rows
// are skipped unless includeRead is set.
func (e *Engine) ListNotifications(ctx context.Context, userID uint, limit int, includeRead bool) (*NotificationPage, error) {
	limit = e.limits.ClampNotificationLimit(limit)

	items, err := e.notifications.List(ctx, userID, limit, includeRead)
	if err != nil {
		return nil, err
	}
	counts, err := e.notifications.Counts(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Notification{}
	}
	return &NotificationPage{Items: items, Total: counts.Total, UnreadCount: counts.Unread}, nil
}

// MarkRead flips one notification to read. Absent rows and rows owned by
// another user are both NotFound.
func (e *Engine) MarkRead(ctx context.Context, notificationID, userID uint) error {
	return e.notifications.MarkRead(ctx, notificationID, userID)
}

// MarkAllRead flips every unread notification for userID and returns how many changed.
func (e *Engine) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	n, err := e.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		e.repoLog.LogUpdate(ctx, map[string]interface{}{
			"user_id":      userID,
			"marked_count": n,
		})
	}
	return n, nil
}
