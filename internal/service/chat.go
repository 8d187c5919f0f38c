package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/port"
)

var chatTracer = otel.Tracer("service/chat")

const maxMessageLength = 4000

// ChatService handles staff-to-staff conversations. Persistence is the
// source of truth; the publisher only nudges connected clients.
type ChatService struct {
	store     port.ChatStore
	users     port.AuthStore
	publisher port.ChatPublisher
	logger    *zap.Logger
}

// NewChatService creates a ChatService.
func NewChatService(store port.ChatStore, users port.AuthStore, publisher port.ChatPublisher, logger *zap.Logger) *ChatService {
	return &ChatService{
		store:     store,
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

// OpenConversation finds or creates the conversation with another user.
func (s *ChatService) OpenConversation(ctx context.Context, userID, otherID string) (*domain.Conversation, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.OpenConversation")
	defer span.End()

	if otherID == "" {
		return nil, &domain.ErrValidation{Field: "userId", Message: "required"}
	}
	if otherID == userID {
		return nil, &domain.ErrValidation{Field: "userId", Message: "cannot chat with yourself"}
	}
	if _, err := s.users.GetUser(ctx, otherID); err != nil {
		return nil, err
	}

	return s.store.GetOrCreateConversation(ctx, userID, otherID)
}

// ListConversations returns the caller's conversations with last message
// and unread count.
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.ListConversations")
	defer span.End()

	return s.store.ListConversations(ctx, userID)
}

// SendMessage posts a message and fans it out to the other participant's
// open streams.
func (s *ChatService) SendMessage(ctx context.Context, userID, conversationID string, req *domain.SendMessageRequest) (*domain.Message, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.SendMessage")
	defer span.End()
	span.SetAttributes(attribute.String("conversation.id", conversationID))

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, &domain.ErrValidation{Field: "body", Message: "required"}
	}
	if len(body) > maxMessageLength {
		return nil, &domain.ErrValidation{Field: "body", Message: "message too long"}
	}

	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, &domain.ErrForbidden{Action: "send message in this conversation"}
	}

	m := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       userID,
		Body:           body,
	}
	if err := s.store.AppendMessage(ctx, m); err != nil {
		return nil, err
	}

	s.publisher.Publish(conv.Other(userID), &domain.ChatEvent{
		Type:           "message",
		ConversationID: conversationID,
		Message:        m,
	})
	return m, nil
}

// ListMessages returns a page of a conversation's messages and marks the
// other side's messages as read.
func (s *ChatService) ListMessages(ctx context.Context, userID, conversationID string, page, pageSize int) ([]domain.Message, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.ListMessages")
	defer span.End()

	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, &domain.ErrForbidden{Action: "read this conversation"}
	}

	messages, err := s.store.ListMessages(ctx, conversationID, page, pageSize)
	if err != nil {
		return nil, err
	}

	if err := s.store.MarkMessagesRead(ctx, conversationID, userID); err != nil {
		s.logger.Warn("failed to mark messages read",
			zap.String("conversation_id", conversationID), zap.Error(err))
	}
	return messages, nil
}

// UnreadCount returns the caller's total unread messages.
func (s *ChatService) UnreadCount(ctx context.Context, userID string) (int, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.UnreadCount")
	defer span.End()

	return s.store.UnreadCount(ctx, userID)
}
