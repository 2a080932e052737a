package handler

import (
	"log"
	"runtime/debug"

	"github.com/palemoky/chess-arena/internal/game/room"
	"github.com/palemoky/chess-arena/internal/protocol"
	"github.com/palemoky/chess-arena/internal/types"
)

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server      types.ServerInterface
	RoomManager *room.RoomManager
	ChatLimiter types.ChatLimiter
}

// Handler 消息处理器
type Handler struct {
	server      types.ServerInterface
	roomManager *room.RoomManager
	chatLimiter types.ChatLimiter
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:      deps.Server,
		roomManager: deps.RoomManager,
		chatLimiter: deps.ChatLimiter,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing: h.handlePing,

		// 房间操作
		protocol.MsgCreateRoom:    h.handleCreateRoom,
		protocol.MsgJoinRoom:      h.handleJoinRoom,
		protocol.MsgAssignSeat:    h.handleAssignSeat,
		protocol.MsgVacateSeat:    h.handleVacateSeat,
		protocol.MsgKickPlayer:    h.handleKickPlayer,
		protocol.MsgSetShineColor: h.handleSetShineColor,
		protocol.MsgStartGame:     h.handleStartGame,

		// 对局操作
		protocol.MsgSubmitMove:    h.handleSubmitMove,
		protocol.MsgClaimGameOver: h.handleClaimGameOver,
		protocol.MsgResign:        func(c types.ClientInterface, _ *protocol.Message) { h.replyErr(c, h.roomManager.Resign(c)) },
		protocol.MsgOfferDraw:     func(c types.ClientInterface, _ *protocol.Message) { h.replyErr(c, h.roomManager.OfferDraw(c)) },
		protocol.MsgAcceptDraw:    func(c types.ClientInterface, _ *protocol.Message) { h.replyErr(c, h.roomManager.AcceptDraw(c)) },
		protocol.MsgRejectDraw:    func(c types.ClientInterface, _ *protocol.Message) { h.replyErr(c, h.roomManager.RejectDraw(c)) },

		// 聊天
		protocol.MsgChat: h.handleChat,
	}
}

// Handle 处理消息。单条消息的 panic 只断送本次处理，
// 不波及其他连接和房间。
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("🚨 处理消息 '%s' 时 panic: %v\n%s", msg.Type, r, debug.Stack())
			client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeUnknown))
		}
	}()

	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Printf("⚠️  未知消息类型: '%s' (来自玩家: %s, ID: %s)", msg.Type, client.GetName(), client.GetID())
	client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}
