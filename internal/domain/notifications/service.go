package notifications

import (
	"context"
	"log/slog"
)

// Mailer delivers a notification by email. Implementations must treat
// delivery as best-effort; the in-app notification row is the source of
// truth.
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

type Service struct {
	store  StoreAPI
	mailer Mailer
}

func New(store StoreAPI, mailer Mailer) *Service {
	return &Service{store: store, mailer: mailer}
}

// Notify stores an in-app notification and fans it out by email. Neither
// failure surfaces to the caller; workflow transitions never fail on
// notification plumbing.
func (s *Service) Notify(ctx context.Context, userID, notifType, title, body string) {
	if err := s.store.CreateNotification(ctx, userID, notifType, title, body); err != nil {
		slog.Warn("notification insert failed", "err", err, "user_id", userID)
		return
	}
	if s.mailer == nil {
		return
	}
	email, err := s.store.UserEmail(ctx, userID)
	if err != nil || email == "" {
		if err != nil {
			slog.Warn("notification email lookup failed", "err", err, "user_id", userID)
		}
		return
	}
	if err := s.mailer.Send(ctx, email, title, "", body); err != nil {
		slog.Warn("notification email send failed", "err", err, "user_id", userID)
	}
}

func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]Notification, int, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListNotifications(ctx, userID, unreadOnly, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllRead(ctx, userID)
}
