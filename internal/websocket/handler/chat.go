// internal/websocket/handler/chat.go
package handler

import (
	"context"
	"encoding/json"

	chatdomain "carecycle-service/internal/domain/chat"
	wstypes "carecycle-service/internal/domain/websocket"
	chatservice "carecycle-service/internal/service/chat"
	ws "carecycle-service/internal/websocket"

	"go.uber.org/zap"
)

// ChatHandler routes chat events between connected clients and storage.
type ChatHandler struct {
	hub     *ws.Hub
	service *chatservice.ChatService
	logger  *zap.Logger
}

func NewChatHandler(hub *ws.Hub, service *chatservice.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{hub: hub, service: service, logger: logger}
}

func (h *ChatHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{
		wstypes.EventTypeChatSend,
		wstypes.EventTypeChatHistory,
		wstypes.EventTypeChatRead,
	}
}

func (h *ChatHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	switch msg.Type {
	case wstypes.EventTypeChatSend:
		return h.handleSend(ctx, client, msg)
	case wstypes.EventTypeChatHistory:
		return h.handleHistory(ctx, client, msg)
	case wstypes.EventTypeChatRead:
		return h.handleRead(ctx, client, msg)
	}
	return nil
}

func (h *ChatHandler) handleSend(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	var req chatdomain.SendRequest
	if err := decode(msg.Data, &req); err != nil {
		return err
	}

	stored, err := h.service.Send(ctx, client.GetUserID(), &req)
	if err != nil {
		return err
	}

	// Echo to the sender so all their tabs stay in sync, then push to the peer
	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeChatMessage, stored))
	h.hub.PushChatMessage(stored.RecipientID, stored)

	return nil
}

func (h *ChatHandler) handleHistory(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	var req struct {
		PeerID int64 `json:"peer_id"`
		Limit  int   `json:"limit"`
	}
	if err := decode(msg.Data, &req); err != nil {
		return err
	}

	messages, err := h.service.History(ctx, &chatdomain.HistoryFilter{
		UserID: client.GetUserID(),
		PeerID: req.PeerID,
		Limit:  req.Limit,
	})
	if err != nil {
		return err
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeChatHistory, map[string]interface{}{
		"peer_id":  req.PeerID,
		"messages": messages,
	}))

	return nil
}

func (h *ChatHandler) handleRead(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	var req struct {
		PeerID int64 `json:"peer_id"`
	}
	if err := decode(msg.Data, &req); err != nil {
		return err
	}

	if err := h.service.MarkRead(ctx, client.GetUserID(), req.PeerID); err != nil {
		return err
	}

	// Let the peer know their messages were seen
	h.hub.PushChatMessage(req.PeerID, map[string]interface{}{
		"read_by": client.GetUserID(),
	})

	return nil
}

func decode(data interface{}, target interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}
