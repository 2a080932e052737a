package handler

import (
	"github.com/palemoky/chess-arena/internal/protocol"
	"github.com/palemoky/chess-arena/internal/types"
)

// handleAssignSeat 处理席位分配（管理员）
func (h *Handler) handleAssignSeat(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.AssignSeatPayload](msg)
	if err != nil || !payload.Seat.Valid() {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.replyErr(client, h.roomManager.AssignSeat(client, payload.PlayerID, payload.Seat))
}

// handleVacateSeat 处理清空席位（管理员）
func (h *Handler) handleVacateSeat(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.VacateSeatPayload](msg)
	if err != nil || !payload.Seat.Valid() {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.replyErr(client, h.roomManager.VacateSeat(client, payload.Seat))
}

// handleKickPlayer 处理踢人（管理员）
func (h *Handler) handleKickPlayer(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.KickPlayerPayload](msg)
	if err != nil || payload.PlayerID == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.replyErr(client, h.roomManager.KickPlayer(client, payload.PlayerID))
}

// handleSetShineColor 处理设置高亮颜色（管理员）
func (h *Handler) handleSetShineColor(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.SetShineColorPayload](msg)
	if err != nil || payload.PlayerID == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.replyErr(client, h.roomManager.SetShineColor(client, payload.PlayerID, payload.Color))
}

// handleStartGame 处理开始对局（管理员）
func (h *Handler) handleStartGame(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.StartGamePayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.replyErr(client, h.roomManager.StartGame(client, payload.DurationMinutes))
}
