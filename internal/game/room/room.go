package room

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/palemoky/chess-arena/internal/clock"
	"github.com/palemoky/chess-arena/internal/protocol"
	"github.com/palemoky/chess-arena/internal/server/storage"
	"github.com/palemoky/chess-arena/internal/types"
)

const (
	roomCodeLength = 6            // 房间号长度
	roomCodeChars  = "0123456789" // 房间号字符集

	// 初始局面标记，客户端据此摆出起始棋盘
	initialFEN = "start"
)

// GameStatus 对局状态
type GameStatus int

const (
	GameActive GameStatus = iota + 1 // 对局进行中
	GameEnded                        // 对局已结束
)

// Game 一局棋的服务端权威状态。
// FEN 与 MoveLog 对服务端不透明，由客户端（合法性裁判）维护。
type Game struct {
	Status    GameStatus
	FEN       string
	MoveLog   string
	Turn      protocol.Seat
	WhiteTime float64 // 剩余秒
	BlackTime float64
	LastTick  time.Time // 上次结算棋钟的时刻
}

// Identity 房间内的持久玩家身份，跨连接存活。
// Client 为 nil 表示离线；同一身份同时最多绑定一个连接。
type Identity struct {
	ID         string // 公开 ID
	Token      string // 重连凭证，仅本人可见
	Name       string
	ShineColor string
	Client     types.ClientInterface

	// 弃局宽限定时器。gen 在每次取消/重置时递增，
	// 到期回调持锁校验 gen，输掉竞争的回调自动失效。
	abandonTimer *time.Timer
	abandonGen   uint64
}

// Online 检查身份当前是否有活跃连接
func (i *Identity) Online() bool {
	return i.Client != nil
}

// Room 一个对局房间
type Room struct {
	Code            string
	AdminToken      string
	DurationMinutes int
	CreatedAt       time.Time

	// 当前绑定的管理员连接 ID，管理员离线时为空。
	// AdminToken 始终有效，离线管理员可凭 token 重新认证。
	adminClientID   string
	adminGraceTimer *time.Timer
	adminGraceGen   uint64

	Identities map[string]*Identity // token -> identity
	White      *Identity
	Black      *Identity
	Game       *Game

	lastActive time.Time

	mu sync.RWMutex
}

// MoveValidator 走子合法性校验接口。缺省实现无条件信任客户端——
// 客户端是合法性裁判，服务端只做编排与仲裁。需要服务端校验的
// 部署可注入真正的规则引擎，而无需改动会话状态机。
type MoveValidator interface {
	ValidateMove(fen string, move json.RawMessage) error
}

// trustClient 缺省校验器：信任客户端申报
type trustClient struct{}

func (trustClient) ValidateMove(string, json.RawMessage) error { return nil }

// Config 房间管理器配置
type Config struct {
	GracePeriod   time.Duration // 断线宽限期（管理员离线与弃局共用）
	RoomTimeout   time.Duration // 全员离线房间回收超时
	SweepInterval time.Duration // 棋钟巡检间隔
	Validator     MoveValidator // 为 nil 时信任客户端
}

// RoomManager 房间管理器
type RoomManager struct {
	store     *storage.RedisStore
	clk       clock.Clock
	validator MoveValidator

	gracePeriod   time.Duration
	roomTimeout   time.Duration
	sweepInterval time.Duration

	rooms map[string]*Room
	mu    sync.RWMutex
}

// NewRoomManager 创建房间管理器
func NewRoomManager(store *storage.RedisStore, clk clock.Clock, cfg Config) *RoomManager {
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = 60 * time.Second
	}
	if cfg.RoomTimeout <= 0 {
		cfg.RoomTimeout = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Second
	}
	if cfg.Validator == nil {
		cfg.Validator = trustClient{}
	}

	rm := &RoomManager{
		store:         store,
		clk:           clk,
		validator:     cfg.Validator,
		gracePeriod:   cfg.GracePeriod,
		roomTimeout:   cfg.RoomTimeout,
		sweepInterval: cfg.SweepInterval,
		rooms:         make(map[string]*Room),
	}

	// 启动棋钟巡检与空闲房间回收协程
	go rm.sweepLoop()
	go rm.cleanupLoop()

	return rm
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[code]
}

// GetActiveGamesCount 获取进行中的对局数量
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	count := 0
	for _, room := range rm.rooms {
		room.mu.RLock()
		if room.Game != nil && room.Game.Status == GameActive {
			count++
		}
		room.mu.RUnlock()
	}
	return count
}

// --- Room 内部辅助（调用方须持有 r.mu） ---

// identityByClientLocked 通过连接找到对应身份
func (r *Room) identityByClientLocked(clientID string) *Identity {
	for _, identity := range r.Identities {
		if identity.Client != nil && identity.Client.GetID() == clientID {
			return identity
		}
	}
	return nil
}

// identityByIDLocked 通过公开 ID 找到身份
func (r *Room) identityByIDLocked(playerID string) *Identity {
	for _, identity := range r.Identities {
		if identity.ID == playerID {
			return identity
		}
	}
	return nil
}

// seatOfLocked 返回身份占据的席位，未执棋返回空
func (r *Room) seatOfLocked(identity *Identity) protocol.Seat {
	switch {
	case identity == nil:
		return ""
	case r.White == identity:
		return protocol.SeatWhite
	case r.Black == identity:
		return protocol.SeatBlack
	}
	return ""
}

// seatIdentityLocked 返回席位上的身份
func (r *Room) seatIdentityLocked(seat protocol.Seat) *Identity {
	if seat == protocol.SeatWhite {
		return r.White
	}
	return r.Black
}

// setSeatLocked 设置席位占用
func (r *Room) setSeatLocked(seat protocol.Seat, identity *Identity) {
	if seat == protocol.SeatWhite {
		r.White = identity
	} else {
		r.Black = identity
	}
}

// isAdminLocked 检查连接是否为当前管理员
func (r *Room) isAdminLocked(clientID string) bool {
	return r.adminClientID != "" && r.adminClientID == clientID
}

// gameActiveLocked 检查对局是否进行中
func (r *Room) gameActiveLocked() bool {
	return r.Game != nil && r.Game.Status == GameActive
}

// touchLocked 记录房间活跃时间
func (r *Room) touchLocked() {
	r.lastActive = time.Now()
}

// playerInfoLocked 构建玩家公开信息
func (r *Room) playerInfoLocked(identity *Identity) protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:         identity.ID,
		Name:       identity.Name,
		Online:     identity.Online(),
		IsAdmin:    identity.Token == r.AdminToken,
		ShineColor: identity.ShineColor,
	}
}

// buildLobbyStateLocked 构建大厅状态快照
func (r *Room) buildLobbyStateLocked() protocol.LobbyStatePayload {
	state := protocol.LobbyStatePayload{
		RoomCode:        r.Code,
		Players:         make([]protocol.PlayerInfo, 0, len(r.Identities)),
		GameActive:      r.gameActiveLocked(),
		DurationMinutes: r.DurationMinutes,
	}

	for _, identity := range r.Identities {
		state.Players = append(state.Players, r.playerInfoLocked(identity))
	}

	if r.White != nil {
		info := r.playerInfoLocked(r.White)
		state.Seats.White = &info
	}
	if r.Black != nil {
		info := r.playerInfoLocked(r.Black)
		state.Seats.Black = &info
	}

	return state
}

// broadcastLocked 向房间内所有在线玩家推送消息
func (r *Room) broadcastLocked(msg *protocol.Message) {
	for _, identity := range r.Identities {
		if identity.Client != nil {
			identity.Client.SendMessage(msg)
		}
	}
}

// broadcastExceptLocked 向除指定身份外的在线玩家推送消息
func (r *Room) broadcastExceptLocked(exceptToken string, msg *protocol.Message) {
	for token, identity := range r.Identities {
		if token != exceptToken && identity.Client != nil {
			identity.Client.SendMessage(msg)
		}
	}
}

// broadcastLobbyLocked 广播大厅状态
func (r *Room) broadcastLobbyLocked() {
	r.broadcastLocked(protocol.MustNewMessage(protocol.MsgLobbyUpdate, r.buildLobbyStateLocked()))
}

// Broadcast 向房间内所有在线玩家推送消息
func (r *Room) Broadcast(msg *protocol.Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.broadcastLocked(msg)
}

// BuildLobbyState 构建大厅状态快照
func (r *Room) BuildLobbyState() protocol.LobbyStatePayload {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.buildLobbyStateLocked()
}

// PlayerInfo 构建玩家公开信息
func (r *Room) PlayerInfo(identity *Identity) protocol.PlayerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.playerInfoLocked(identity)
}

// IsAdminToken 校验管理员凭证
func (r *Room) IsAdminToken(token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return token != "" && token == r.AdminToken
}

// IsAdminClient 检查连接是否为当前管理员连接
func (r *Room) IsAdminClient(clientID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isAdminLocked(clientID)
}
