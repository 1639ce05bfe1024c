package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/pulse/internal/model"
	"github.com/sakif/pulse/internal/repository"
)

// MessageDB implements repository.MessageRepository.
type MessageDB struct {
	conn *sql.DB
}

// Messages returns the message repository backed by this database.
func (db *DB) Messages() *MessageDB {
	return &MessageDB{conn: db.conn}
}

var _ repository.MessageRepository = (*MessageDB)(nil)

// Create inserts a message. The trg_messages_activity trigger bumps the
// parent conversation's last_message_at in the same statement, so senders
// never update the conversation row directly.
func (r *MessageDB) Create(ctx context.Context, m *model.Message) error {
	m.ID = xid.New().String()
	m.CreatedAt = time.Now().UTC()

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, sender_id, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.SenderID, m.Content, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting message (conversation=%s): %w", m.ConversationID, err)
	}
	return nil
}

// ListByConversation returns a conversation's messages oldest-first with
// sender profiles joined.
func (r *MessageDB) ListByConversation(ctx context.Context, conversationID string) ([]model.Message, error) {
	rows, err := r.conn.QueryContext(ctx, `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.read_at, m.created_at,
		       pr.id, pr.username, pr.display_name, pr.avatar_url, pr.verified, pr.level
		FROM messages m
		JOIN profiles pr ON pr.id = m.sender_id
		WHERE m.conversation_id = ?
		ORDER BY m.created_at ASC, m.id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages for %s: %w", conversationID, err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var (
			m      model.Message
			sender model.ProfileSummary
			readAt sql.NullTime
		)
		err := rows.Scan(
			&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &readAt, &m.CreatedAt,
			&sender.ID, &sender.Username, &sender.DisplayName, &sender.AvatarURL,
			&sender.Verified, &sender.Level,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning message: %w", err)
		}
		if readAt.Valid {
			m.ReadAt = &readAt.Time
		}
		m.Sender = &sender
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: listing messages for %s: %w", conversationID, err)
	}
	return messages, nil
}

// MarkRead stamps read_at on every unread message in the conversation that
// the reader did not send.
func (r *MessageDB) MarkRead(ctx context.Context, conversationID, readerID string) error {
	_, err := r.conn.ExecContext(ctx,
		`UPDATE messages SET read_at = ?
		 WHERE conversation_id = ? AND sender_id <> ? AND read_at IS NULL`,
		time.Now().UTC(), conversationID, readerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: marking messages read (conversation=%s): %w", conversationID, err)
	}
	return nil
}
