package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgCreateRoom    MessageType = "create_room"     // 创建房间
	MsgJoinRoom      MessageType = "join_room"       // 加入房间（含断线重连）
	MsgAssignSeat    MessageType = "assign_seat"     // 分配执棋席位（管理员）
	MsgVacateSeat    MessageType = "vacate_seat"     // 清空执棋席位（管理员）
	MsgKickPlayer    MessageType = "kick_player"     // 踢出玩家（管理员）
	MsgSetShineColor MessageType = "set_shine_color" // 设置玩家高亮颜色（管理员）
	MsgStartGame     MessageType = "start_game"      // 开始对局（管理员）

	// 对局操作
	MsgSubmitMove    MessageType = "submit_move"     // 提交走子
	MsgClaimGameOver MessageType = "claim_game_over" // 客户端申报终局
	MsgResign        MessageType = "resign"          // 认输
	MsgOfferDraw     MessageType = "offer_draw"      // 提和
	MsgAcceptDraw    MessageType = "accept_draw"     // 接受和棋
	MsgRejectDraw    MessageType = "reject_draw"     // 拒绝和棋

	// 聊天
	MsgChat MessageType = "chat" // 聊天消息
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgPong MessageType = "pong" // 心跳 pong

	// 房间相关
	MsgRoomCreated MessageType = "room_created" // 房间创建成功
	MsgRoomJoined  MessageType = "room_joined"  // 加入房间成功
	MsgLobbyUpdate MessageType = "lobby_update" // 大厅状态变更
	MsgKicked      MessageType = "kicked"       // 您已被踢出
	MsgRoomClosed  MessageType = "room_closed"  // 房间已关闭

	// 对局流程
	MsgGameStarted  MessageType = "game_started"  // 对局开始
	MsgGameResumed  MessageType = "game_resumed"  // 重连恢复对局（携带重算后的棋钟）
	MsgMoveMade     MessageType = "move_made"     // 走子已生效
	MsgGameOver     MessageType = "game_over"     // 对局结束
	MsgSeatOffline  MessageType = "seat_offline"  // 执棋方掉线，弃局倒计时开始
	MsgSeatOnline   MessageType = "seat_online"   // 执棋方重连成功
	MsgDrawOffered  MessageType = "draw_offered"  // 对手提和
	MsgDrawRejected MessageType = "draw_rejected" // 对手拒绝和棋

	// 错误
	MsgError MessageType = "error" // 错误消息
)

// Seat 执棋席位
type Seat string

const (
	SeatWhite Seat = "white" // 先手
	SeatBlack Seat = "black" // 后手
)

// Opponent 返回对方席位
func (s Seat) Opponent() Seat {
	if s == SeatWhite {
		return SeatBlack
	}
	return SeatWhite
}

// Valid 检查席位是否合法
func (s Seat) Valid() bool {
	return s == SeatWhite || s == SeatBlack
}

// 终局结果
const (
	WinnerWhite = "white"
	WinnerBlack = "black"
	WinnerDraw  = "draw"
)

// 终局原因
const (
	EndReasonCheckmate   = "checkmate"
	EndReasonStalemate   = "stalemate"
	EndReasonTimeout     = "timeout"
	EndReasonResignation = "resignation"
	EndReasonAbandonment = "abandonment"
	EndReasonAgreement   = "agreement"
	EndReasonForfeit     = "forfeit" // 执棋方被移出席位或被踢出
)
