package handler

import (
	"net/http"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Notification feed
// ============================================================

func listNotificationsHandler(svc *service.NotificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/notifications")
		defer span.End()

		var isRead *bool
		switch r.URL.Query().Get("is_read") {
		case "true":
			v := true
			isRead = &v
		case "false":
			v := false
			isRead = &v
		}

		page, pageSize := parsePagination(r)
		notifications, unread, err := svc.List(ctx, UserIDFromContext(ctx), isRead, page, pageSize)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if notifications == nil {
			notifications = []domain.Notification{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"notifications": notifications,
			"unreadCount":   unread,
		})
	}
}

func markNotificationReadHandler(svc *service.NotificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/notifications/{notificationId}/read")
		defer span.End()

		if err := svc.MarkRead(ctx, UserIDFromContext(ctx), chi.URLParam(r, "notificationId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func markAllNotificationsReadHandler(svc *service.NotificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/notifications/read-all")
		defer span.End()

		if err := svc.MarkAllRead(ctx, UserIDFromContext(ctx)); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func deleteNotificationHandler(svc *service.NotificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/notifications/{notificationId}")
		defer span.End()

		if err := svc.Delete(ctx, UserIDFromContext(ctx), chi.URLParam(r, "notificationId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
