package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/albarakah/umrah-backoffice/internal/domain"
)

// GetOrCreateConversation finds the conversation between two users, creating
// it on first contact. Participants are stored in sorted order so the pair
// maps to exactly one row.
func (s *Store) GetOrCreateConversation(ctx context.Context, userA, userB string) (*domain.Conversation, error) {
	a, b := userA, userB
	if b < a {
		a, b = b, a
	}

	c, err := scanConversation(s.db.QueryRowContext(ctx,
		conversationSelect+" WHERE participant_a = ? AND participant_b = ?", a, b))
	if err == nil {
		return c, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	c = &domain.Conversation{
		ID:           uuid.NewString(),
		ParticipantA: a,
		ParticipantB: b,
		CreatedAt:    time.Now(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, participant_a, participant_b, created_at)
		VALUES (?, ?, ?, ?)`,
		c.ID, c.ParticipantA, c.ParticipantB, formatTime(c.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	return c, nil
}

// GetConversation loads a conversation by ID.
func (s *Store) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	c, err := scanConversation(s.db.QueryRowContext(ctx, conversationSelect+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "conversation", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

// ListConversations returns a user's conversations, newest activity first,
// each carrying its last message and the caller's unread count.
func (s *Store) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.participant_a, c.participant_b, c.created_at,
			(SELECT COUNT(*) FROM messages m
				WHERE m.conversation_id = c.id AND m.sender_id != ? AND m.is_read = 0)
		FROM conversations c
		WHERE c.participant_a = ? OR c.participant_b = ?
		ORDER BY COALESCE(
			(SELECT MAX(m.created_at) FROM messages m WHERE m.conversation_id = c.id),
			c.created_at) DESC`,
		userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		var createdAt string
		if err := rows.Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &createdAt, &c.UnreadCount); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		c.CreatedAt = parseTime(createdAt)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		m, err := s.lastMessage(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].LastMessage = m
	}
	return out, nil
}

// AppendMessage inserts a message.
func (s *Store) AppendMessage(ctx context.Context, m *domain.Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, body, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.SenderID, m.Body, boolToInt(m.IsRead),
		formatTime(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListMessages returns a page of messages, oldest first.
func (s *Store) ListMessages(ctx context.Context, conversationID string, page, pageSize int) ([]domain.Message, error) {
	query := messageSelect + " WHERE conversation_id = ? ORDER BY created_at, id"
	args := []any{conversationID}
	if pageSize > 0 {
		if page < 1 {
			page = 1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, pageSize, (page-1)*pageSize)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// MarkMessagesRead marks messages from the other participant as read.
func (s *Store) MarkMessagesRead(ctx context.Context, conversationID, readerID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE messages SET is_read = 1
		WHERE conversation_id = ? AND sender_id != ? AND is_read = 0`,
		conversationID, readerID)
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	return nil
}

// UnreadCount returns the total unread messages addressed to a user.
func (s *Store) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE (c.participant_a = ? OR c.participant_b = ?)
			AND m.sender_id != ? AND m.is_read = 0`,
		userID, userID, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

func (s *Store) lastMessage(ctx context.Context, conversationID string) (*domain.Message, error) {
	m, err := scanMessage(s.db.QueryRowContext(ctx,
		messageSelect+" WHERE conversation_id = ? ORDER BY created_at DESC, id DESC LIMIT 1",
		conversationID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last message: %w", err)
	}
	return m, nil
}

const conversationSelect = `
	SELECT id, participant_a, participant_b, created_at
	FROM conversations`

const messageSelect = `
	SELECT id, conversation_id, sender_id, body, is_read, created_at
	FROM messages`

func scanConversation(row rowScanner) (*domain.Conversation, error) {
	var c domain.Conversation
	var createdAt string
	if err := row.Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &createdAt); err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	var m domain.Message
	var isRead int
	var createdAt string
	if err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &isRead, &createdAt); err != nil {
		return nil, err
	}
	m.IsRead = isRead != 0
	m.CreatedAt = parseTime(createdAt)
	return &m, nil
}
