package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/pulse/internal/apperror"
	"github.com/sakif/pulse/internal/model"
	"github.com/sakif/pulse/internal/repository"
)

// ConversationDB implements repository.ConversationRepository.
type ConversationDB struct {
	conn *sql.DB
}

// Conversations returns the conversation repository backed by this database.
func (db *DB) Conversations() *ConversationDB {
	return &ConversationDB{conn: db.conn}
}

var _ repository.ConversationRepository = (*ConversationDB)(nil)

// Create inserts a new conversation. The service has already normalized the
// participant order; a duplicate pair surfaces as apperror.ErrConflict from
// the unique constraint.
func (r *ConversationDB) Create(ctx context.Context, c *model.Conversation) error {
	c.ID = xid.New().String()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.LastMessageAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO conversations (id, participant_1, participant_2, last_message_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Participant1, c.Participant2, c.LastMessageAt, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("conversation", c.Participant1+"/"+c.Participant2)
		}
		return fmt.Errorf("sqlite: inserting conversation: %w", err)
	}
	return nil
}

// GetByID retrieves a conversation without joined profiles or messages.
func (r *ConversationDB) GetByID(ctx context.Context, id string) (*model.Conversation, error) {
	var c model.Conversation
	err := r.conn.QueryRowContext(ctx,
		`SELECT id, participant_1, participant_2, last_message_at, created_at
		 FROM conversations WHERE id = ?`, id,
	).Scan(&c.ID, &c.Participant1, &c.Participant2, &c.LastMessageAt, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("conversation", id)
		}
		return nil, fmt.Errorf("sqlite: getting conversation %s: %w", id, err)
	}
	return &c, nil
}

// FindByParticipants looks up the conversation for an already-ordered
// participant pair. Returns nil (no error) when none exists — callers use
// this for get-or-create.
func (r *ConversationDB) FindByParticipants(ctx context.Context, participant1, participant2 string) (*model.Conversation, error) {
	var c model.Conversation
	err := r.conn.QueryRowContext(ctx,
		`SELECT id, participant_1, participant_2, last_message_at, created_at
		 FROM conversations WHERE participant_1 = ? AND participant_2 = ?`,
		participant1, participant2,
	).Scan(&c.ID, &c.Participant1, &c.Participant2, &c.LastMessageAt, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: finding conversation: %w", err)
	}
	return &c, nil
}

// ListForUser returns the user's conversations ordered by last activity
// descending, each with both participant profiles and the most recent
// message joined.
func (r *ConversationDB) ListForUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	rows, err := r.conn.QueryContext(ctx, `
		SELECT c.id, c.participant_1, c.participant_2, c.last_message_at, c.created_at,
		       p1.id, p1.username, p1.display_name, p1.avatar_url, p1.verified, p1.level,
		       p2.id, p2.username, p2.display_name, p2.avatar_url, p2.verified, p2.level,
		       m.id, m.sender_id, m.content, m.read_at, m.created_at
		FROM conversations c
		JOIN profiles p1 ON p1.id = c.participant_1
		JOIN profiles p2 ON p2.id = c.participant_2
		LEFT JOIN messages m ON m.id = (
			SELECT m2.id FROM messages m2
			WHERE m2.conversation_id = c.id
			ORDER BY m2.created_at DESC, m2.id DESC
			LIMIT 1
		)
		WHERE c.participant_1 = ? OR c.participant_2 = ?
		ORDER BY c.last_message_at DESC, c.id DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing conversations for %s: %w", userID, err)
	}
	defer rows.Close()

	conversations := []model.Conversation{}
	for rows.Next() {
		var (
			c          model.Conversation
			p1, p2     model.ProfileSummary
			msgID      sql.NullString
			msgSender  sql.NullString
			msgContent sql.NullString
			msgRead    sql.NullTime
			msgCreated sql.NullTime
		)
		err := rows.Scan(
			&c.ID, &c.Participant1, &c.Participant2, &c.LastMessageAt, &c.CreatedAt,
			&p1.ID, &p1.Username, &p1.DisplayName, &p1.AvatarURL, &p1.Verified, &p1.Level,
			&p2.ID, &p2.Username, &p2.DisplayName, &p2.AvatarURL, &p2.Verified, &p2.Level,
			&msgID, &msgSender, &msgContent, &msgRead, &msgCreated,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning conversation: %w", err)
		}
		c.Participant1Profile = &p1
		c.Participant2Profile = &p2
		if msgID.Valid {
			msg := &model.Message{
				ID:             msgID.String,
				ConversationID: c.ID,
				SenderID:       msgSender.String,
				Content:        msgContent.String,
				CreatedAt:      msgCreated.Time,
			}
			if msgRead.Valid {
				msg.ReadAt = &msgRead.Time
			}
			c.LastMessage = msg
		}
		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: listing conversations for %s: %w", userID, err)
	}
	return conversations, nil
}
