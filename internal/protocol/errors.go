package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002 // 速率限制
	ErrCodeRoomNotFound      = 2001
	ErrCodeNotInRoom         = 2002
	ErrCodeUnauthorized      = 2003 // 非管理员执行管理员操作
	ErrCodePlayerNotFound    = 2004
	ErrCodeGameNotStarted    = 3001
	ErrCodeGameInProgress    = 3002
	ErrCodeSeatsNotFilled    = 3003
	ErrCodeInvalidDuration   = 3004
	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "未知错误",
	ErrCodeInvalidMsg:        "无效的消息格式",
	ErrCodeRateLimit:         "请求过于频繁",
	ErrCodeRoomNotFound:      "房间不存在",
	ErrCodeNotInRoom:         "您不在房间中",
	ErrCodeUnauthorized:      "仅房间管理员可执行此操作",
	ErrCodePlayerNotFound:    "玩家不存在",
	ErrCodeGameNotStarted:    "对局尚未开始",
	ErrCodeGameInProgress:    "对局进行中，无法执行此操作",
	ErrCodeSeatsNotFilled:    "双方席位均有人才能开始对局",
	ErrCodeInvalidDuration:   "无效的对局时长",
	ErrCodeServerMaintenance: "服务器维护中",
}
