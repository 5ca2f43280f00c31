// internal/domain/chat/entity.go
package chat

import (
	"database/sql"
	"time"
)

// Message is one chat line between a customer and a consultant.
type Message struct {
	ID          int64        `json:"id" db:"id"`
	SenderID    int64        `json:"sender_id" db:"sender_id"`
	RecipientID int64        `json:"recipient_id" db:"recipient_id"`
	Body        string       `json:"body" db:"body"`
	ReadAt      sql.NullTime `json:"read_at,omitempty" db:"read_at"`
	SentAt      time.Time    `json:"sent_at" db:"sent_at"`
}

// SendRequest is the websocket payload for an outbound chat message.
type SendRequest struct {
	RecipientID int64  `json:"recipient_id"`
	Body        string `json:"body"`
}

// HistoryFilter narrows chat history reads
type HistoryFilter struct {
	UserID int64
	PeerID int64
	Limit  int
	Before time.Time
}
