package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/port"
)

var notificationTracer = otel.Tracer("service/notification")

// NotificationService manages per-user notification feeds and broadcasts
// the events other services raise (low seats, new debts, settled debts).
type NotificationService struct {
	store  port.NotificationStore
	logger *zap.Logger
	now    func() time.Time
}

var _ port.Notifier = (*NotificationService)(nil)

// NewNotificationService creates a NotificationService.
func NewNotificationService(store port.NotificationStore, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// NotifyAll broadcasts an event to every user's feed. Broadcasts are
// best-effort: failures are logged, never returned, so the triggering
// operation cannot be failed by its own notification.
func (s *NotificationService) NotifyAll(ctx context.Context, typ, title, message, link string) {
	ctx, span := notificationTracer.Start(ctx, "NotificationService.NotifyAll")
	defer span.End()
	span.SetAttributes(attribute.String("notification.type", typ))

	if !domain.ValidNotificationType(typ) {
		typ = domain.NotificationInfo
	}
	n := &domain.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Type:      typ,
		Link:      link,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateNotificationForAllUsers(ctx, n); err != nil {
		s.logger.Error("failed to broadcast notification",
			zap.String("title", title), zap.Error(err))
	}
}

// List returns a page of the user's feed plus their unread total.
func (s *NotificationService) List(ctx context.Context, userID string, isRead *bool, page, pageSize int) ([]domain.Notification, int, error) {
	ctx, span := notificationTracer.Start(ctx, "NotificationService.List")
	defer span.End()

	notifications, err := s.store.ListNotifications(ctx, userID, isRead, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return notifications, unread, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	ctx, span := notificationTracer.Start(ctx, "NotificationService.MarkRead")
	defer span.End()

	return s.store.MarkNotificationRead(ctx, id, userID)
}

// MarkAllRead flags the user's entire feed as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	ctx, span := notificationTracer.Start(ctx, "NotificationService.MarkAllRead")
	defer span.End()

	return s.store.MarkAllNotificationsRead(ctx, userID)
}

// Delete removes one of the user's notifications.
func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	ctx, span := notificationTracer.Start(ctx, "NotificationService.Delete")
	defer span.End()

	return s.store.DeleteNotification(ctx, id, userID)
}
