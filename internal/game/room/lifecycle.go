package room

import (
	"log"
	"time"

	"github.com/palemoky/chess-arena/internal/protocol"
	"github.com/palemoky/chess-arena/internal/types"
)

// HandleDisconnect 处理连接断开。三类身份三种待遇：
//   - 管理员：对局未开时启动关房倒计时（对局进行中不启动，凭 token 可随时回归）；
//   - 执棋方且对局进行中：启动弃局倒计时并广播，宽限期内重连可取消；
//   - 普通大厅玩家：立即移除，无宽限。
func (rm *RoomManager) HandleDisconnect(client types.ClientInterface) {
	code := client.GetRoom()
	if code == "" {
		return
	}

	rm.mu.RLock()
	room, exists := rm.rooms[code]
	rm.mu.RUnlock()
	if !exists {
		return
	}

	room.mu.Lock()

	identity := room.identityByClientLocked(client.GetID())
	isAdmin := room.isAdminLocked(client.GetID())

	if identity != nil {
		identity.Client = nil
	}
	if isAdmin {
		// 管理员连接失效，之后只能凭 token 重新认证
		room.adminClientID = ""
	}

	gameActive := room.gameActiveLocked()
	seat := room.seatOfLocked(identity)

	if isAdmin && !gameActive {
		rm.armAdminGraceLocked(room)
		log.Printf("⏳ 房间 %s 管理员掉线，%v 后关闭房间", room.Code, rm.gracePeriod)
	}

	if seat != "" && gameActive {
		// 执棋方掉线：广播弃局倒计时，身份保留等待重连
		rm.armAbandonLocked(room, identity)
		room.broadcastLocked(protocol.MustNewMessage(protocol.MsgSeatOffline, protocol.SeatOfflinePayload{
			Seat:    seat,
			Player:  room.playerInfoLocked(identity),
			Timeout: int(rm.gracePeriod.Seconds()),
		}))
		log.Printf("📴 房间 %s %s（%s）掉线，弃局倒计时开始", room.Code, seatName(seat), identity.Name)
	}

	// 无保护身份（非管理员、非对局中执棋方）立即移除
	protected := isAdmin || (seat != "" && gameActive)
	if identity != nil && !protected {
		rm.removeIdentityLocked(room, identity)
		log.Printf("👋 玩家 %s 离开房间 %s", identity.Name, room.Code)
	}

	// 身份清空且无对局的房间直接解散
	if len(room.Identities) == 0 && !room.gameActiveLocked() {
		room.mu.Unlock()
		rm.deleteRoom(code, "")
		return
	}

	room.touchLocked()
	room.broadcastLobbyLocked()
	rm.persistLocked(room)
	room.mu.Unlock()
}

// --- 管理员关房倒计时 ---

// armAdminGraceLocked 启动管理员离线关房倒计时，覆盖旧倒计时
func (rm *RoomManager) armAdminGraceLocked(room *Room) {
	room.cancelAdminGraceLocked()
	room.adminGraceGen++
	gen := room.adminGraceGen
	code := room.Code
	room.adminGraceTimer = time.AfterFunc(rm.gracePeriod, func() {
		rm.onAdminGraceExpired(code, gen)
	})
}

// cancelAdminGraceLocked 撤销关房倒计时，返回是否撤销了待决倒计时。
// gen 递增使已进入排队的到期回调失效。
func (r *Room) cancelAdminGraceLocked() bool {
	if r.adminGraceTimer == nil {
		return false
	}
	r.adminGraceTimer.Stop()
	r.adminGraceTimer = nil
	r.adminGraceGen++
	return true
}

// onAdminGraceExpired 关房倒计时到期。房间已删除或倒计时已被
// 撤销（gen 不匹配）时为空操作。
func (rm *RoomManager) onAdminGraceExpired(code string, gen uint64) {
	rm.mu.RLock()
	room, exists := rm.rooms[code]
	rm.mu.RUnlock()
	if !exists {
		return
	}

	room.mu.Lock()
	if room.adminGraceTimer == nil || room.adminGraceGen != gen {
		room.mu.Unlock()
		return
	}
	room.adminGraceTimer = nil
	if room.gameActiveLocked() {
		// 防御：对局进行中不应有关房倒计时
		room.mu.Unlock()
		return
	}
	room.mu.Unlock()

	log.Printf("🚪 房间 %s 管理员宽限期结束，关闭房间", code)
	rm.deleteRoom(code, "管理员离开，房间已关闭")
}

// --- 弃局倒计时 ---

// armAbandonLocked 为掉线执棋方启动弃局倒计时，覆盖旧倒计时
func (rm *RoomManager) armAbandonLocked(room *Room, identity *Identity) {
	room.cancelAbandonLocked(identity)
	identity.abandonGen++
	gen := identity.abandonGen
	code := room.Code
	token := identity.Token
	identity.abandonTimer = time.AfterFunc(rm.gracePeriod, func() {
		rm.onAbandonExpired(code, token, gen)
	})
}

// cancelAbandonLocked 撤销弃局倒计时，返回是否撤销了待决倒计时
func (r *Room) cancelAbandonLocked(identity *Identity) bool {
	if identity == nil || identity.abandonTimer == nil {
		return false
	}
	identity.abandonTimer.Stop()
	identity.abandonTimer = nil
	identity.abandonGen++
	return true
}

// onAbandonExpired 弃局倒计时到期：对局以对方获胜结束，弃局者被
// 彻底移出房间。已重连（gen 不匹配）或房间已删除时为空操作；
// 回调一旦通过校验便完整执行，与重连的竞争由房间锁定序。
func (rm *RoomManager) onAbandonExpired(code, token string, gen uint64) {
	rm.mu.RLock()
	room, exists := rm.rooms[code]
	rm.mu.RUnlock()
	if !exists {
		return
	}

	room.mu.Lock()

	identity, ok := room.Identities[token]
	if !ok || identity.abandonTimer == nil || identity.abandonGen != gen {
		room.mu.Unlock()
		return
	}
	identity.abandonTimer = nil

	if seat := room.seatOfLocked(identity); seat != "" && room.gameActiveLocked() {
		winner := seat.Opponent()
		log.Printf("🏳️ 房间 %s %s（%s）弃局，%s 获胜", code, seatName(seat), identity.Name, seatName(winner))
		rm.endGameLocked(room, endResult{
			Reason:  protocol.EndReasonAbandonment,
			Winner:  string(winner),
			Message: seatName(seat) + " 掉线未归，" + seatName(winner) + " 获胜！",
		})
	}

	rm.removeIdentityLocked(room, identity)

	if len(room.Identities) == 0 {
		room.mu.Unlock()
		rm.deleteRoom(code, "")
		return
	}

	room.touchLocked()
	room.broadcastLobbyLocked()
	rm.persistLocked(room)
	room.mu.Unlock()
}
