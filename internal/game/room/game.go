package room

import (
	"fmt"
	"log"
	"time"

	"github.com/palemoky/chess-arena/internal/apperrors"
	"github.com/palemoky/chess-arena/internal/protocol"
	"github.com/palemoky/chess-arena/internal/types"
)

// endResult 终局裁定
type endResult struct {
	Reason   string
	Winner   string // white/black/draw
	Message  string
	FEN      string
	LastMove []byte
}

// endGameLocked 结束对局并广播。对已结束对局重复调用是空操作——
// 双方可能几乎同时申报同一个终局，终局转移必须幂等。
func (rm *RoomManager) endGameLocked(room *Room, result endResult) {
	if !room.gameActiveLocked() {
		return
	}

	game := room.Game
	game.Status = GameEnded
	if result.FEN != "" {
		game.FEN = result.FEN
	}

	// 终局后不存在弃局问题，撤销所有弃局倒计时
	for _, identity := range room.Identities {
		room.cancelAbandonLocked(identity)
	}

	room.broadcastLocked(protocol.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		Reason:   result.Reason,
		Winner:   result.Winner,
		Message:  result.Message,
		FEN:      result.FEN,
		LastMove: result.LastMove,
	}))
	room.broadcastLobbyLocked()

	log.Printf("🏁 房间 %s 对局结束：%s（%s）", room.Code, result.Winner, result.Reason)
}

// healInconsistentLocked 自愈防御：对局进行中却有空席位在结构上
// 不应出现，一旦出现立即强制终局并回到大厅。
func (rm *RoomManager) healInconsistentLocked(room *Room) bool {
	if !room.gameActiveLocked() || (room.White != nil && room.Black != nil) {
		return false
	}

	log.Printf("🚨 房间 %s 状态异常：对局进行中但席位为空，强制终局", room.Code)
	room.Game.Status = GameEnded
	room.broadcastLobbyLocked()
	rm.persistLocked(room)
	return true
}

// SubmitMove 提交走子。仅当对局进行中且提交者恰好执轮到的席位时生效；
// 轮次不符的提交静默丢弃。走法与局面原样采信并转发（客户端是合法性
// 裁判），服务端只做轮次与棋钟仲裁。
func (rm *RoomManager) SubmitMove(client types.ClientInterface, payload *protocol.SubmitMovePayload) error {
	room, err := rm.roomByClient(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if rm.healInconsistentLocked(room) || !room.gameActiveLocked() {
		return nil
	}

	game := room.Game
	identity := room.identityByClientLocked(client.GetID())
	seat := room.seatOfLocked(identity)
	if seat == "" || seat != game.Turn {
		// 非执棋方或非本方轮次，静默丢弃
		return nil
	}

	if err := rm.validator.ValidateMove(game.FEN, payload.Move); err != nil {
		log.Printf("⚠️ 房间 %s 走子校验未通过: %v", room.Code, err)
		return nil
	}

	// 结算走子方耗时：从上次开表起的真实流逝时间记在走子方头上
	now := rm.clk.Now()
	elapsed := now.Sub(game.LastTick).Seconds()
	if seat == protocol.SeatWhite {
		game.WhiteTime -= elapsed
	} else {
		game.BlackTime -= elapsed
	}

	// 超时判负：不应用本次走子
	if game.WhiteTime <= 0 || game.BlackTime <= 0 {
		rm.settleTimeoutLocked(room)
		return nil
	}

	game.FEN = payload.FEN
	game.MoveLog = payload.MoveLog
	game.Turn = game.Turn.Opponent()
	game.LastTick = now

	// 广播给全员（含走子方），所有客户端的棋钟显示都以此为准
	room.broadcastLocked(protocol.MustNewMessage(protocol.MsgMoveMade, protocol.MoveMadePayload{
		Move:      payload.Move,
		FEN:       game.FEN,
		MoveLog:   game.MoveLog,
		Turn:      game.Turn,
		WhiteTime: game.WhiteTime,
		BlackTime: game.BlackTime,
	}))

	room.touchLocked()
	rm.persistLocked(room)

	return nil
}

// settleTimeoutLocked 棋钟耗尽，对方获胜
func (rm *RoomManager) settleTimeoutLocked(room *Room) {
	game := room.Game
	winner := protocol.SeatWhite
	if game.WhiteTime <= 0 {
		winner = protocol.SeatBlack
	}
	game.WhiteTime = max(0, game.WhiteTime)
	game.BlackTime = max(0, game.BlackTime)

	rm.endGameLocked(room, endResult{
		Reason:  protocol.EndReasonTimeout,
		Winner:  string(winner),
		Message: fmt.Sprintf("时间耗尽！%s 获胜！", seatName(winner)),
	})
	rm.persistLocked(room)
}

// ClaimGameOver 客户端申报终局（将死、逼和等）。服务端不复算棋局，
// 采信申报并广播；对已结束的对局是空操作。
func (rm *RoomManager) ClaimGameOver(client types.ClientInterface, payload *protocol.ClaimGameOverPayload) error {
	room, err := rm.roomByClient(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	// 从未开局与已结束不同：前者明确报错，后者幂等空操作
	if room.Game == nil {
		return apperrors.ErrGameNotStarted
	}
	if !room.gameActiveLocked() {
		return nil
	}

	message := fmt.Sprintf("将死！%s 获胜！", winnerName(payload.Winner))
	if payload.Winner == protocol.WinnerDraw {
		message = fmt.Sprintf("和棋（%s）", payload.Reason)
	}

	rm.endGameLocked(room, endResult{
		Reason:   payload.Reason,
		Winner:   payload.Winner,
		Message:  message,
		FEN:      payload.FEN,
		LastMove: payload.LastMove,
	})

	room.touchLocked()
	rm.persistLocked(room)

	return nil
}

// Resign 认输。仅执棋方可认输，对方获胜。
func (rm *RoomManager) Resign(client types.ClientInterface) error {
	room, err := rm.roomByClient(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Game == nil {
		return apperrors.ErrGameNotStarted
	}
	if !room.gameActiveLocked() {
		return nil
	}

	identity := room.identityByClientLocked(client.GetID())
	seat := room.seatOfLocked(identity)
	if seat == "" {
		return nil
	}

	winner := seat.Opponent()
	rm.endGameLocked(room, endResult{
		Reason:  protocol.EndReasonResignation,
		Winner:  string(winner),
		Message: fmt.Sprintf("%s 认输，%s 获胜！", identity.Name, seatName(winner)),
	})

	room.touchLocked()
	rm.persistLocked(room)

	return nil
}

// OfferDraw 提和：一次性转发给对手，不保留待接受状态
func (rm *RoomManager) OfferDraw(client types.ClientInterface) error {
	return rm.relayToOpponent(client, protocol.MustNewMessage(protocol.MsgDrawOffered, nil))
}

// RejectDraw 拒和：一次性通知对手
func (rm *RoomManager) RejectDraw(client types.ClientInterface) error {
	return rm.relayToOpponent(client, protocol.MustNewMessage(protocol.MsgDrawRejected, nil))
}

// relayToOpponent 将消息转发给提交者的对手（须为执棋方且对局进行中）
func (rm *RoomManager) relayToOpponent(client types.ClientInterface, msg *protocol.Message) error {
	room, err := rm.roomByClient(client)
	if err != nil {
		return err
	}

	room.mu.RLock()
	defer room.mu.RUnlock()

	if room.Game == nil {
		return apperrors.ErrGameNotStarted
	}
	if !room.gameActiveLocked() {
		return nil
	}

	seat := room.seatOfLocked(room.identityByClientLocked(client.GetID()))
	if seat == "" {
		return nil
	}

	if opponent := room.seatIdentityLocked(seat.Opponent()); opponent != nil && opponent.Client != nil {
		opponent.Client.SendMessage(msg)
	}
	return nil
}

// AcceptDraw 受和。不保留提和状态，没有待决提和时的接受同样以
// 和棋终局（与线上行为一致的宽松处理，而非校验缺失）。
func (rm *RoomManager) AcceptDraw(client types.ClientInterface) error {
	room, err := rm.roomByClient(client)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Game == nil {
		return apperrors.ErrGameNotStarted
	}
	if !room.gameActiveLocked() {
		return nil
	}

	if room.seatOfLocked(room.identityByClientLocked(client.GetID())) == "" {
		return nil
	}

	rm.endGameLocked(room, endResult{
		Reason:  protocol.EndReasonAgreement,
		Winner:  protocol.WinnerDraw,
		Message: "双方同意和棋",
	})

	room.touchLocked()
	rm.persistLocked(room)

	return nil
}

// sweepLoop 定期巡检棋钟，兜住双方都不走子的超时
func (rm *RoomManager) sweepLoop() {
	ticker := time.NewTicker(rm.sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		rm.sweepClocks()
	}
}

// sweepClocks 巡检所有进行中的对局：按当前时刻推算执棋方剩余时间，
// 耗尽则终局。未耗尽时不结算、不落盘，推算只读。
func (rm *RoomManager) sweepClocks() {
	rm.mu.RLock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		rooms = append(rooms, room)
	}
	rm.mu.RUnlock()

	for _, room := range rooms {
		room.mu.Lock()
		if room.gameActiveLocked() && !rm.healInconsistentLocked(room) {
			game := room.Game
			whiteTime, blackTime := rm.projectedClocksLocked(game)
			if whiteTime <= 0 || blackTime <= 0 {
				game.WhiteTime = whiteTime
				game.BlackTime = blackTime
				rm.settleTimeoutLocked(room)
			}
		}
		room.mu.Unlock()
	}
}

// winnerName 终局赢家的显示名称
func winnerName(winner string) string {
	switch winner {
	case protocol.WinnerWhite:
		return "白方"
	case protocol.WinnerBlack:
		return "黑方"
	}
	return "无人"
}
