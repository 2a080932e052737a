package handler

import (
	"github.com/palemoky/chess-arena/internal/protocol"
	"github.com/palemoky/chess-arena/internal/types"
)

// handleSubmitMove 处理走子
func (h *Handler) handleSubmitMove(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.SubmitMovePayload](msg)
	if err != nil || len(payload.Move) == 0 || payload.FEN == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.replyErr(client, h.roomManager.SubmitMove(client, payload))
}

// handleClaimGameOver 处理客户端申报终局（将死、逼和等棋规终局）
func (h *Handler) handleClaimGameOver(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.ClaimGameOverPayload](msg)
	if err != nil || payload.Reason == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.replyErr(client, h.roomManager.ClaimGameOver(client, payload))
}
