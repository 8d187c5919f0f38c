package domain

import "time"

// ============================================================
// Internal chat
// ============================================================

// Conversation is a two-participant staff conversation.
type Conversation struct {
	ID           string    `json:"id"`
	ParticipantA string    `json:"participantA"`
	ParticipantB string    `json:"participantB"`
	CreatedAt    time.Time `json:"createdAt"`

	// Populated for list views.
	LastMessage *Message `json:"lastMessage,omitempty"`
	UnreadCount int      `json:"unreadCount"`
}

// HasParticipant reports whether userID takes part in the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// Other returns the other participant's ID.
func (c *Conversation) Other(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// Message is a single chat message.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Body           string    `json:"body"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SendMessageRequest posts a message into a conversation.
type SendMessageRequest struct {
	Body string `json:"body"`
}

// ChatEvent is what fans out to connected SSE clients when a message lands.
type ChatEvent struct {
	Type           string   `json:"type"` // message
	ConversationID string   `json:"conversationId"`
	Message        *Message `json:"message"`
}
