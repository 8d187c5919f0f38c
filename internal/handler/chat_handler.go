package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/infra/sse"
	"github.com/albarakah/umrah-backoffice/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Internal staff chat
// ============================================================

const sseKeepAlive = 25 * time.Second

func listConversationsHandler(svc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/chat/conversations")
		defer span.End()

		conversations, err := svc.ListConversations(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if conversations == nil {
			conversations = []domain.Conversation{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
	}
}

func openConversationHandler(svc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/chat/conversations")
		defer span.End()

		var req struct {
			UserID string `json:"userId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		conv, err := svc.OpenConversation(ctx, UserIDFromContext(ctx), req.UserID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}

func listMessagesHandler(svc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/chat/conversations/{conversationId}/messages")
		defer span.End()

		page, pageSize := parsePagination(r)
		messages, err := svc.ListMessages(ctx, UserIDFromContext(ctx), chi.URLParam(r, "conversationId"), page, pageSize)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if messages == nil {
			messages = []domain.Message{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
	}
}

func sendMessageHandler(svc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/chat/conversations/{conversationId}/messages")
		defer span.End()

		conversationID := chi.URLParam(r, "conversationId")
		span.SetAttributes(attribute.String("conversation.id", conversationID))

		var req domain.SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		m, err := svc.SendMessage(ctx, UserIDFromContext(ctx), conversationID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func unreadCountHandler(svc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/chat/unread-count")
		defer span.End()

		n, err := svc.UnreadCount(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"unreadCount": n})
	}
}

// chatStreamHandler keeps an SSE connection open and forwards chat
// events to the authenticated user until the client disconnects.
func chatStreamHandler(hub *sse.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := UserIDFromContext(ctx)

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		events, unsubscribe := hub.Subscribe(userID)
		defer unsubscribe()

		logger.Info("chat stream opened", zap.String("user_id", userID))

		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		keepAlive := time.NewTicker(sseKeepAlive)
		defer keepAlive.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("chat stream closed", zap.String("user_id", userID))
				return
			case <-keepAlive.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				flusher.Flush()
			case ev := <-events:
				payload, err := json.Marshal(ev)
				if err != nil {
					logger.Error("failed to marshal chat event", zap.Error(err))
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
				flusher.Flush()
			}
		}
	}
}
