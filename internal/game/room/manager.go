package room

import (
	"context"
	"log"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/palemoky/chess-arena/internal/apperrors"
	"github.com/palemoky/chess-arena/internal/protocol"
	"github.com/palemoky/chess-arena/internal/types"
)

// JoinResult 加入房间的结果，供处理器构造单播响应
type JoinResult struct {
	Room        *Room
	Identity    *Identity
	IsAdmin     bool
	Reconnected bool
	// 对局进行中时携带重算棋钟后的恢复数据
	Resume *protocol.GameResumedPayload
}

// CreateRoom 创建房间。创建者即管理员，其身份凭证同时是管理员凭证。
func (rm *RoomManager) CreateRoom(client types.ClientInterface, playerName string) (*Room, *Identity, error) {
	rm.mu.Lock()

	code := rm.generateRoomCode()
	adminToken := generateToken()

	room := &Room{
		Code:       code,
		AdminToken: adminToken,
		CreatedAt:  time.Now(),
		Identities: make(map[string]*Identity),
	}
	room.touchLocked()

	rm.rooms[code] = room
	rm.mu.Unlock()

	room.mu.Lock()
	defer room.mu.Unlock()

	admin := &Identity{
		ID:     uuid.New().String(),
		Token:  adminToken,
		Name:   playerName,
		Client: client,
	}
	room.Identities[adminToken] = admin
	room.adminClientID = client.GetID()
	client.SetRoom(code)
	client.SetName(playerName)

	room.broadcastLobbyLocked()
	rm.persistLocked(room)

	log.Printf("🏠 房间 %s 已创建，管理员 %s", code, playerName)

	return room, admin, nil
}

// JoinRoom 加入房间。凭证命中时为断线重连：重绑连接、撤销弃局
// 倒计时并通知对手；否则铸造新身份。管理员凭 AdminToken 重新认证。
func (rm *RoomManager) JoinRoom(client types.ClientInterface, payload *protocol.JoinRoomPayload) (*JoinResult, error) {
	rm.mu.RLock()
	room, exists := rm.rooms[payload.RoomCode]
	rm.mu.RUnlock()
	if !exists {
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	identity, reconnected := room.resolveIdentityLocked(payload.PlayerToken, payload.PlayerName, client)
	client.SetRoom(room.Code)
	client.SetName(identity.Name)

	if reconnected {
		rm.handleReconnectLocked(room, identity)
	}

	isAdmin := room.authenticateAdminLocked(payload.AdminToken, client)

	result := &JoinResult{
		Room:        room,
		Identity:    identity,
		IsAdmin:     isAdmin,
		Reconnected: reconnected,
	}

	// 对局进行中：按当前时刻重算棋钟，让重连客户端与权威时间对齐
	if room.gameActiveLocked() && room.White != nil && room.Black != nil {
		game := room.Game
		whiteTime, blackTime := rm.projectedClocksLocked(game)
		result.Resume = &protocol.GameResumedPayload{
			FEN:       game.FEN,
			MoveLog:   game.MoveLog,
			Turn:      game.Turn,
			WhiteTime: whiteTime,
			BlackTime: blackTime,
			White:     room.playerInfoLocked(room.White),
			Black:     room.playerInfoLocked(room.Black),
		}
	}

	room.touchLocked()
	room.broadcastLobbyLocked()
	rm.persistLocked(room)

	log.Printf("👤 玩家 %s 加入房间 %s（重连=%v 管理员=%v）", identity.Name, room.Code, reconnected, isAdmin)

	return result, nil
}

// handleReconnectLocked 处理重连副作用：撤销弃局倒计时并通知房间
func (rm *RoomManager) handleReconnectLocked(room *Room, identity *Identity) {
	if !room.cancelAbandonLocked(identity) {
		return
	}

	log.Printf("📶 玩家 %s 重连房间 %s，弃局倒计时已取消", identity.Name, room.Code)

	if seat := room.seatOfLocked(identity); seat != "" && room.gameActiveLocked() {
		room.broadcastLocked(protocol.MustNewMessage(protocol.MsgSeatOnline, protocol.SeatOnlinePayload{
			Seat:   seat,
			Player: room.playerInfoLocked(identity),
		}))
	}
}

// projectedClocksLocked 按当前时刻推算双方剩余时间，不结算到对局状态
func (rm *RoomManager) projectedClocksLocked(game *Game) (whiteTime, blackTime float64) {
	whiteTime, blackTime = game.WhiteTime, game.BlackTime
	elapsed := rm.clk.Now().Sub(game.LastTick).Seconds()
	if game.Turn == protocol.SeatWhite {
		whiteTime = max(0, whiteTime-elapsed)
	} else {
		blackTime = max(0, blackTime-elapsed)
	}
	return whiteTime, blackTime
}

// deleteRoom 删除房间：撤销全部定时器、通知玩家、清理快照。
// 对已删除房间的重复删除是无害的空操作。
func (rm *RoomManager) deleteRoom(code, reason string) {
	rm.mu.Lock()
	room, exists := rm.rooms[code]
	if exists {
		delete(rm.rooms, code)
	}
	rm.mu.Unlock()
	if !exists {
		return
	}

	room.mu.Lock()
	room.cancelAdminGraceLocked()
	for _, identity := range room.Identities {
		room.cancelAbandonLocked(identity)
	}
	if reason != "" {
		room.broadcastLocked(protocol.MustNewMessage(protocol.MsgRoomClosed, protocol.RoomClosedPayload{Reason: reason}))
	}
	for _, identity := range room.Identities {
		if identity.Client != nil {
			identity.Client.SetRoom("")
		}
	}
	room.mu.Unlock()

	if rm.store != nil {
		go func() { _ = rm.store.DeleteRoom(context.Background(), code) }()
	}

	log.Printf("🏠 房间 %s 已解散", code)
}

// persistLocked 异步保存房间快照，不阻塞广播路径
func (rm *RoomManager) persistLocked(room *Room) {
	if rm.store == nil {
		return
	}
	code := room.Code
	go func() {
		if err := rm.store.SaveRoom(context.Background(), code, rm.snapshotRoom(room)); err != nil {
			log.Printf("⚠️ 房间 %s 快照保存失败: %v", code, err)
		}
	}()
}

// generateRoomCode 生成唯一 6 位数字房间号（调用方须持有 rm.mu）
func (rm *RoomManager) generateRoomCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		codeStr := string(code)
		if _, exists := rm.rooms[codeStr]; !exists {
			return codeStr
		}
	}
}

// cleanupLoop 定期回收全员离线的房间
func (rm *RoomManager) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rm.cleanup()
	}
}

// cleanup 回收全员离线且超时的房间。重启恢复后无人回归的房间
// 也由此兜底清理（宽限定时器不跨进程存活）。
func (rm *RoomManager) cleanup() {
	rm.mu.RLock()
	var stale []string
	now := time.Now()
	for code, room := range rm.rooms {
		room.mu.RLock()
		allOffline := true
		for _, identity := range room.Identities {
			if identity.Online() {
				allOffline = false
				break
			}
		}
		if allOffline && now.Sub(room.lastActive) > rm.roomTimeout {
			stale = append(stale, code)
		}
		room.mu.RUnlock()
	}
	rm.mu.RUnlock()

	for _, code := range stale {
		log.Printf("🧹 房间 %s 全员离线超时，回收", code)
		rm.deleteRoom(code, "")
	}
}
