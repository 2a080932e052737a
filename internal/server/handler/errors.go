package handler

import (
	"errors"

	"github.com/palemoky/chess-arena/internal/apperrors"
	"github.com/palemoky/chess-arena/internal/protocol"
	"github.com/palemoky/chess-arena/internal/types"
)

// replyErr 将操作错误转为错误消息回发。nil 错误为空操作。
func (h *Handler) replyErr(client types.ClientInterface, err error) {
	if err == nil {
		return
	}

	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(protocol.NewErrorMessage(gameErr.Code))
		return
	}
	client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error()))
}
