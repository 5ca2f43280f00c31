// internal/service/chat/chat.go
package chat

import (
	"context"
	"strings"
	"time"

	"carecycle-service/internal/domain/chat"
	xerrors "carecycle-service/internal/pkg/errors"
	"carecycle-service/internal/repository/postgres"

	"go.uber.org/zap"
)

type ChatService struct {
	chatRepo *postgres.ChatRepository
	logger   *zap.Logger
}

func NewChatService(chatRepo *postgres.ChatRepository, logger *zap.Logger) *ChatService {
	return &ChatService{chatRepo: chatRepo, logger: logger}
}

// Send persists an outbound message and returns the stored row
func (s *ChatService) Send(ctx context.Context, senderID int64, req *chat.SendRequest) (*chat.Message, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" || req.RecipientID == 0 || req.RecipientID == senderID {
		return nil, xerrors.ErrInvalidInput
	}

	m := &chat.Message{
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Body:        body,
		SentAt:      time.Now(),
	}

	if err := s.chatRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

// History returns the conversation between the caller and a peer
func (s *ChatService) History(ctx context.Context, filter *chat.HistoryFilter) ([]chat.Message, error) {
	return s.chatRepo.History(ctx, filter)
}

// MarkRead stamps messages from peer to caller as read
func (s *ChatService) MarkRead(ctx context.Context, userID, peerID int64) error {
	return s.chatRepo.MarkRead(ctx, userID, peerID)
}

// UnreadCount reports how many messages await the caller
func (s *ChatService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.chatRepo.UnreadCount(ctx, userID)
}
