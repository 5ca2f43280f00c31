// internal/repository/postgres/chat_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"carecycle-service/internal/domain/chat"
	xerrors "carecycle-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// Save persists a delivered chat message
func (r *ChatRepository) Save(ctx context.Context, m *chat.Message) error {
	query := `
		INSERT INTO chat_messages (sender_id, recipient_id, body, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if err := r.db.QueryRow(ctx, query, m.SenderID, m.RecipientID, m.Body, m.SentAt).Scan(&m.ID); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	return nil
}

// History returns the conversation between two users, newest first
func (r *ChatRepository) History(ctx context.Context, filter *chat.HistoryFilter) ([]chat.Message, error) {
	limit := filter.Limit
	if limit < 1 {
		limit = 50
	}

	query := `
		SELECT id, sender_id, recipient_id, body, read_at, sent_at
		FROM chat_messages
		WHERE ((sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1))
	`
	args := []interface{}{filter.UserID, filter.PeerID}

	if !filter.Before.IsZero() {
		query += " AND sent_at < $3"
		args = append(args, filter.Before)
	}

	query += fmt.Sprintf(" ORDER BY sent_at DESC LIMIT %d", limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Body, &m.ReadAt, &m.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// MarkRead stamps every unread message from peer to user
func (r *ChatRepository) MarkRead(ctx context.Context, userID, peerID int64) error {
	query := `
		UPDATE chat_messages
		SET read_at = NOW()
		WHERE recipient_id = $1 AND sender_id = $2 AND read_at IS NULL
	`

	if _, err := r.db.Exec(ctx, query, userID, peerID); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}

	return nil
}

// UnreadCount reports how many messages await the user
func (r *ChatRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM chat_messages WHERE recipient_id = $1 AND read_at IS NULL`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, xerrors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}

	return count, nil
}
