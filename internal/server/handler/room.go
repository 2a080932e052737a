package handler

import (
	"strings"

	"github.com/palemoky/chess-arena/internal/protocol"
	"github.com/palemoky/chess-arena/internal/types"
)

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	// 维护模式检查
	if h.server.IsMaintenanceMode() {
		client.SendMessage(protocol.NewErrorMessageWithText(
			protocol.ErrCodeServerMaintenance, "服务器维护中，暂停创建房间"))
		return
	}

	var playerName string
	if len(msg.Payload) > 0 {
		payload, err := protocol.ParsePayload[protocol.CreateRoomPayload](msg)
		if err != nil {
			client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			return
		}
		playerName = strings.TrimSpace(payload.PlayerName)
	}
	if playerName == "" {
		playerName = client.GetName()
	}

	room, admin, err := h.roomManager.CreateRoom(client, playerName)
	if err != nil {
		h.replyErr(client, err)
		return
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomCode:    room.Code,
		AdminToken:  admin.Token,
		PlayerToken: admin.Token,
		Player:      room.PlayerInfo(admin),
	}))
}

// handleJoinRoom 处理加入房间（含断线重连）
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	// 维护模式检查。重连（携带凭证）放行，让断线玩家回到残局
	payload, err := protocol.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if h.server.IsMaintenanceMode() && payload.PlayerToken == "" {
		client.SendMessage(protocol.NewErrorMessageWithText(
			protocol.ErrCodeServerMaintenance, "服务器维护中，暂停加入房间"))
		return
	}

	if strings.TrimSpace(payload.PlayerName) == "" {
		payload.PlayerName = client.GetName()
	}

	result, err := h.roomManager.JoinRoom(client, payload)
	if err != nil {
		h.replyErr(client, err)
		return
	}

	joined := protocol.RoomJoinedPayload{
		RoomCode:    result.Room.Code,
		IsAdmin:     result.IsAdmin,
		PlayerToken: result.Identity.Token,
		Player:      result.Room.PlayerInfo(result.Identity),
	}
	if result.IsAdmin {
		joined.AdminToken = result.Room.AdminToken
	}
	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomJoined, joined))

	// 对局进行中：补发恢复数据，棋钟已按当前时刻重算
	if result.Resume != nil {
		client.SendMessage(protocol.MustNewMessage(protocol.MsgGameResumed, *result.Resume))
	}
}
