package apperrors

import (
	"github.com/palemoky/chess-arena/internal/protocol"
)

// GameError 游戏错误（房间和对局共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrRoomNotFound    = &GameError{Code: protocol.ErrCodeRoomNotFound, Message: "房间不存在"}
	ErrNotInRoom       = &GameError{Code: protocol.ErrCodeNotInRoom, Message: "您不在房间中"}
	ErrUnauthorized    = &GameError{Code: protocol.ErrCodeUnauthorized, Message: "仅房间管理员可执行此操作"}
	ErrPlayerNotFound  = &GameError{Code: protocol.ErrCodePlayerNotFound, Message: "玩家不存在"}
	ErrGameNotStarted  = &GameError{Code: protocol.ErrCodeGameNotStarted, Message: "对局尚未开始"}
	ErrGameInProgress  = &GameError{Code: protocol.ErrCodeGameInProgress, Message: "对局进行中，无法执行此操作"}
	ErrSeatsNotFilled  = &GameError{Code: protocol.ErrCodeSeatsNotFilled, Message: "双方席位均有人才能开始对局"}
	ErrInvalidDuration = &GameError{Code: protocol.ErrCodeInvalidDuration, Message: "无效的对局时长"}
)
