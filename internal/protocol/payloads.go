package protocol

import "encoding/json"

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	PlayerName string `json:"player_name"`
}

// JoinRoomPayload 加入房间请求。携带 token 时视为重连：
// player_token 恢复玩家身份，admin_token 恢复管理员身份。
type JoinRoomPayload struct {
	RoomCode    string `json:"room_code"`
	PlayerName  string `json:"player_name"`
	AdminToken  string `json:"admin_token,omitempty"`
	PlayerToken string `json:"player_token,omitempty"`
}

// AssignSeatPayload 分配席位请求
type AssignSeatPayload struct {
	PlayerID string `json:"player_id"`
	Seat     Seat   `json:"seat"`
}

// VacateSeatPayload 清空席位请求
type VacateSeatPayload struct {
	Seat Seat `json:"seat"`
}

// KickPlayerPayload 踢人请求
type KickPlayerPayload struct {
	PlayerID string `json:"player_id"`
}

// SetShineColorPayload 设置高亮颜色请求，空颜色表示取消高亮
type SetShineColorPayload struct {
	PlayerID string `json:"player_id"`
	Color    string `json:"color,omitempty"`
}

// StartGamePayload 开始对局请求
type StartGamePayload struct {
	DurationMinutes int `json:"duration_minutes"` // 3/5/7
}

// SubmitMovePayload 走子请求。Move 与 FEN 对服务端不透明，
// 合法性由客户端裁定，服务端原样转发。
type SubmitMovePayload struct {
	Move    json.RawMessage `json:"move"`
	FEN     string          `json:"fen"`
	MoveLog string          `json:"move_log,omitempty"`
}

// ClaimGameOverPayload 客户端申报终局请求
type ClaimGameOverPayload struct {
	Reason   string          `json:"reason"` // checkmate/stalemate/...
	Winner   string          `json:"winner"` // white/black/draw
	FEN      string          `json:"fen,omitempty"`
	LastMove json.RawMessage `json:"last_move,omitempty"`
}

// ChatPayload 聊天消息（请求与广播共用）
type ChatPayload struct {
	Message    string `json:"message"`
	SenderID   string `json:"sender_id,omitempty"`
	SenderName string `json:"sender_name,omitempty"`
	IsAdmin    bool   `json:"is_admin,omitempty"`
	Time       int64  `json:"time,omitempty"`
}

// --- 服务端响应 Payloads ---

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// PlayerInfo 玩家公开信息
type PlayerInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Online     bool   `json:"online"`
	IsAdmin    bool   `json:"is_admin"`
	ShineColor string `json:"shine_color,omitempty"`
}

// SeatsInfo 两个执棋席位的占用情况
type SeatsInfo struct {
	White *PlayerInfo `json:"white"`
	Black *PlayerInfo `json:"black"`
}

// LobbyStatePayload 大厅状态快照（房间内广播）
type LobbyStatePayload struct {
	RoomCode        string       `json:"room_code"`
	Players         []PlayerInfo `json:"players"`
	Seats           SeatsInfo    `json:"seats"`
	GameActive      bool         `json:"game_active"`
	DurationMinutes int          `json:"duration_minutes,omitempty"`
}

// RoomCreatedPayload 房间创建成功响应（仅发给创建者）
type RoomCreatedPayload struct {
	RoomCode    string     `json:"room_code"`
	AdminToken  string     `json:"admin_token"`
	PlayerToken string     `json:"player_token"`
	Player      PlayerInfo `json:"player"`
}

// RoomJoinedPayload 加入房间成功响应（仅发给加入者）
type RoomJoinedPayload struct {
	RoomCode    string     `json:"room_code"`
	IsAdmin     bool       `json:"is_admin"`
	AdminToken  string     `json:"admin_token,omitempty"` // 仅管理员可见
	PlayerToken string     `json:"player_token"`
	Player      PlayerInfo `json:"player"`
}

// GameStartedPayload 对局开始广播
type GameStartedPayload struct {
	White           PlayerInfo `json:"white"`
	Black           PlayerInfo `json:"black"`
	DurationMinutes int        `json:"duration_minutes"`
	WhiteTime       float64    `json:"white_time"`
	BlackTime       float64    `json:"black_time"`
	Turn            Seat       `json:"turn"`
}

// GameResumedPayload 重连恢复对局响应（仅发给重连者，棋钟为实时重算值）
type GameResumedPayload struct {
	FEN       string     `json:"fen"`
	MoveLog   string     `json:"move_log,omitempty"`
	Turn      Seat       `json:"turn"`
	WhiteTime float64    `json:"white_time"`
	BlackTime float64    `json:"black_time"`
	White     PlayerInfo `json:"white"`
	Black     PlayerInfo `json:"black"`
}

// MoveMadePayload 走子广播。棋钟以服务端为准，走子方也以此校准本地显示。
type MoveMadePayload struct {
	Move      json.RawMessage `json:"move"`
	FEN       string          `json:"fen"`
	MoveLog   string          `json:"move_log,omitempty"`
	Turn      Seat            `json:"turn"`
	WhiteTime float64         `json:"white_time"`
	BlackTime float64         `json:"black_time"`
}

// GameOverPayload 对局结束广播
type GameOverPayload struct {
	Reason   string          `json:"reason"`
	Winner   string          `json:"winner"` // white/black/draw
	Message  string          `json:"message"`
	FEN      string          `json:"fen,omitempty"`
	LastMove json.RawMessage `json:"last_move,omitempty"`
}

// SeatOfflinePayload 执棋方掉线广播
type SeatOfflinePayload struct {
	Seat    Seat       `json:"seat"`
	Player  PlayerInfo `json:"player"`
	Timeout int        `json:"timeout"` // 弃局倒计时（秒）
}

// SeatOnlinePayload 执棋方重连广播
type SeatOnlinePayload struct {
	Seat   Seat       `json:"seat"`
	Player PlayerInfo `json:"player"`
}

// RoomClosedPayload 房间关闭广播
type RoomClosedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// ErrorPayload 错误消息
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
