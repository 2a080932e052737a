package handler

import (
	"strings"
	"time"

	"github.com/palemoky/chess-arena/internal/protocol"
	"github.com/palemoky/chess-arena/internal/types"
)

const maxChatLength = 500

// handleChat 处理聊天消息，在房间内转发
func (h *Handler) handleChat(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.ChatPayload](msg)
	if err != nil {
		return
	}

	payload.Message = strings.TrimSpace(payload.Message)
	if payload.Message == "" {
		return
	}
	if len(payload.Message) > maxChatLength {
		payload.Message = payload.Message[:maxChatLength]
	}

	// 聊天限流检查
	if h.chatLimiter != nil {
		allowed, reason := h.chatLimiter.AllowChat(client.GetID())
		if !allowed {
			client.SendMessage(protocol.NewErrorMessageWithText(
				protocol.ErrCodeRateLimit, reason))
			return
		}
	}

	code := client.GetRoom()
	if code == "" {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeNotInRoom, "不在房间中，无法发送消息"))
		return
	}

	room := h.roomManager.GetRoom(code)
	if room == nil {
		return
	}

	// 填充发送者信息，客户端伪造的字段一律覆盖
	payload.SenderID = client.GetID()
	payload.SenderName = client.GetName()
	payload.IsAdmin = room.IsAdminClient(client.GetID())
	payload.Time = time.Now().Unix()

	room.Broadcast(protocol.MustNewMessage(protocol.MsgChat, *payload))
}
