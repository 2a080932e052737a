package room

import (
	"fmt"
	"log"

	"github.com/palemoky/chess-arena/internal/apperrors"
	"github.com/palemoky/chess-arena/internal/protocol"
	"github.com/palemoky/chess-arena/internal/types"
)

// 允许的对局时长（分钟）
var allowedDurations = map[int]bool{3: true, 5: true, 7: true}

// roomByClient 通过连接定位房间
func (rm *RoomManager) roomByClient(client types.ClientInterface) (*Room, error) {
	code := client.GetRoom()
	if code == "" {
		return nil, apperrors.ErrNotInRoom
	}

	rm.mu.RLock()
	room, exists := rm.rooms[code]
	rm.mu.RUnlock()
	if !exists {
		return nil, apperrors.ErrRoomNotFound
	}
	return room, nil
}

// AssignSeat 将玩家分配到执棋席位（管理员）。玩家同时只占一个席位，
// 占另一席位时先腾出。对局进行中禁止换人，须先结束对局。
func (rm *RoomManager) AssignSeat(client types.ClientInterface, playerID string, seat protocol.Seat) error {
	room, err := rm.roomByClient(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.isAdminLocked(client.GetID()) {
		return apperrors.ErrUnauthorized
	}
	if room.gameActiveLocked() {
		return apperrors.ErrGameInProgress
	}

	identity := room.identityByIDLocked(playerID)
	if identity == nil {
		return apperrors.ErrPlayerNotFound
	}

	// 先腾出已占席位
	if prev := room.seatOfLocked(identity); prev != "" {
		room.setSeatLocked(prev, nil)
	}
	room.setSeatLocked(seat, identity)

	room.touchLocked()
	room.broadcastLobbyLocked()
	rm.persistLocked(room)

	return nil
}

// VacateSeat 清空执棋席位（管理员）。对局进行中清空等同于强制认输：
// 留守一方直接获胜，然后才更新大厅。
func (rm *RoomManager) VacateSeat(client types.ClientInterface, seat protocol.Seat) error {
	room, err := rm.roomByClient(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.isAdminLocked(client.GetID()) {
		return apperrors.ErrUnauthorized
	}

	occupant := room.seatIdentityLocked(seat)
	if occupant == nil {
		return nil
	}

	if room.gameActiveLocked() {
		winner := seat.Opponent()
		rm.endGameLocked(room, endResult{
			Reason:  protocol.EndReasonForfeit,
			Winner:  string(winner),
			Message: fmt.Sprintf("%s 被移出席位，%s 获胜！", seatName(seat), seatName(winner)),
		})
	}

	room.setSeatLocked(seat, nil)

	room.touchLocked()
	room.broadcastLobbyLocked()
	rm.persistLocked(room)

	return nil
}

// KickPlayer 踢出玩家（管理员）。先单播 kicked 给被踢者，再做移除和
// 大厅广播；被踢者若在对局中执棋，对局以对方获胜强制结束。
func (rm *RoomManager) KickPlayer(client types.ClientInterface, playerID string) error {
	room, err := rm.roomByClient(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.isAdminLocked(client.GetID()) {
		return apperrors.ErrUnauthorized
	}

	identity := room.identityByIDLocked(playerID)
	if identity == nil {
		return apperrors.ErrPlayerNotFound
	}
	if identity.Token == room.AdminToken {
		// 管理员不能踢出自己
		return apperrors.ErrUnauthorized
	}

	if identity.Client != nil {
		identity.Client.SendMessage(protocol.MustNewMessage(protocol.MsgKicked, nil))
	}

	if seat := room.seatOfLocked(identity); seat != "" && room.gameActiveLocked() {
		winner := seat.Opponent()
		rm.endGameLocked(room, endResult{
			Reason:  protocol.EndReasonForfeit,
			Winner:  string(winner),
			Message: fmt.Sprintf("%s 被请出房间，%s 获胜！", identity.Name, seatName(winner)),
		})
	}

	rm.removeIdentityLocked(room, identity)

	log.Printf("🥾 玩家 %s 被踢出房间 %s", identity.Name, room.Code)

	room.touchLocked()
	room.broadcastLobbyLocked()
	rm.persistLocked(room)

	return nil
}

// SetShineColor 设置玩家高亮颜色（管理员），空颜色表示取消
func (rm *RoomManager) SetShineColor(client types.ClientInterface, playerID, color string) error {
	room, err := rm.roomByClient(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.isAdminLocked(client.GetID()) {
		return apperrors.ErrUnauthorized
	}

	identity := room.identityByIDLocked(playerID)
	if identity == nil {
		return apperrors.ErrPlayerNotFound
	}

	identity.ShineColor = color

	room.touchLocked()
	room.broadcastLobbyLocked()
	rm.persistLocked(room)

	return nil
}

// StartGame 开始对局（管理员）。双方席位须有人，时长限 3/5/7 分钟。
// 双方棋钟重置为时长全额，白方先行，立即开表。
func (rm *RoomManager) StartGame(client types.ClientInterface, durationMinutes int) error {
	room, err := rm.roomByClient(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.isAdminLocked(client.GetID()) {
		return apperrors.ErrUnauthorized
	}
	if room.gameActiveLocked() {
		return apperrors.ErrGameInProgress
	}
	if room.White == nil || room.Black == nil {
		return apperrors.ErrSeatsNotFilled
	}
	if !allowedDurations[durationMinutes] {
		return apperrors.ErrInvalidDuration
	}

	seconds := float64(durationMinutes * 60)
	room.DurationMinutes = durationMinutes
	room.Game = &Game{
		Status:    GameActive,
		FEN:       initialFEN,
		Turn:      protocol.SeatWhite,
		WhiteTime: seconds,
		BlackTime: seconds,
		LastTick:  rm.clk.Now(),
	}

	room.broadcastLocked(protocol.MustNewMessage(protocol.MsgGameStarted, protocol.GameStartedPayload{
		White:           room.playerInfoLocked(room.White),
		Black:           room.playerInfoLocked(room.Black),
		DurationMinutes: durationMinutes,
		WhiteTime:       seconds,
		BlackTime:       seconds,
		Turn:            protocol.SeatWhite,
	}))

	log.Printf("♟️ 房间 %s 对局开始（%d 分钟）", room.Code, durationMinutes)

	room.touchLocked()
	room.broadcastLobbyLocked()
	rm.persistLocked(room)

	return nil
}

// removeIdentityLocked 将身份从房间彻底移除：撤销其定时器并清空席位
func (rm *RoomManager) removeIdentityLocked(room *Room, identity *Identity) {
	room.cancelAbandonLocked(identity)
	if seat := room.seatOfLocked(identity); seat != "" {
		room.setSeatLocked(seat, nil)
	}
	delete(room.Identities, identity.Token)
	if identity.Client != nil {
		identity.Client.SetRoom("")
	}
}
