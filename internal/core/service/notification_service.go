package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

type NotificationService struct {
	repo ports.NotificationRepository
	log  zerolog.Logger
}

func NewNotificationService(repo ports.NotificationRepository, log zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, log: log}
}

func (s *NotificationService) List(ctx context.Context, viewer domain.Viewer, filter ports.NotificationFilter) (*ports.NotificationList, error) {
	if err := requireAdminMode(viewer); err != nil {
		return nil, err
	}
	_, limit, err := pageBounds(1, filter.Limit, defaultNotificationLimit, maxNotificationLimit)
	if err != nil {
		return nil, err
	}
	filter.Limit = limit

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.repo.CountUnread(ctx)
	if err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}
	return &ports.NotificationList{Items: items, Unread: unread}, nil
}

// MarkRead is idempotent: marking an already-read notification succeeds and
// returns it with Read set.
func (s *NotificationService) MarkRead(ctx context.Context, viewer domain.Viewer, id string) (*domain.Notification, error) {
	if err := requireAdminMode(viewer); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, domain.ErrNotificationNotFound
	}

	n, err := s.repo.MarkRead(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

// MarkAllRead returns how many notifications changed state; zero is a
// valid answer.
func (s *NotificationService) MarkAllRead(ctx context.Context, viewer domain.Viewer) (int64, error) {
	if err := requireAdminMode(viewer); err != nil {
		return 0, err
	}
	count, err := s.repo.MarkAllRead(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	s.log.Info().Str("user_id", viewer.UserID).Int64("count", count).Msg("notifications marked read")
	return count, nil
}

func (s *NotificationService) Delete(ctx context.Context, viewer domain.Viewer, id string) error {
	if err := requireAdminMode(viewer); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// Notify records a back-office notification. It is called by other
// services, never directly from a request.
func (s *NotificationService) Notify(ctx context.Context, kind domain.NotificationKind, title, message, link string) error {
	now := time.Now().UTC()
	n := &domain.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		Link:      link,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	s.log.Debug().Str("kind", string(kind)).Str("notification_id", n.ID).Msg("notification created")
	return nil
}
