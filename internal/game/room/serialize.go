package room

import (
	"context"
	"log"
	"time"

	"github.com/palemoky/chess-arena/internal/protocol"
	"github.com/palemoky/chess-arena/internal/server/storage"
)

// snapshotRoom 生成房间的持久化快照。
// 在保存协程中调用，自行加读锁。
func (rm *RoomManager) snapshotRoom(room *Room) *storage.RoomData {
	room.mu.RLock()
	defer room.mu.RUnlock()

	data := &storage.RoomData{
		Code:            room.Code,
		AdminToken:      room.AdminToken,
		DurationMinutes: room.DurationMinutes,
		CreatedAt:       room.CreatedAt.UnixMilli(),
	}

	for _, identity := range room.Identities {
		data.Players = append(data.Players, storage.PlayerData{
			ID:         identity.ID,
			Token:      identity.Token,
			Name:       identity.Name,
			ShineColor: identity.ShineColor,
		})
	}
	if room.White != nil {
		data.WhiteToken = room.White.Token
	}
	if room.Black != nil {
		data.BlackToken = room.Black.Token
	}

	if room.Game != nil {
		data.Game = &storage.GameData{
			Status:    int(room.Game.Status),
			FEN:       room.Game.FEN,
			MoveLog:   room.Game.MoveLog,
			Turn:      string(room.Game.Turn),
			WhiteTime: room.Game.WhiteTime,
			BlackTime: room.Game.BlackTime,
			LastTick:  room.Game.LastTick.UnixMilli(),
		}
	}

	return data
}

// rebuildRoom 从快照重建房间。所有身份以离线状态恢复，
// 进行中对局的棋钟从恢复时刻起算，停机时间不计入任何一方。
func (rm *RoomManager) rebuildRoom(data *storage.RoomData) *Room {
	room := &Room{
		Code:            data.Code,
		AdminToken:      data.AdminToken,
		DurationMinutes: data.DurationMinutes,
		CreatedAt:       time.UnixMilli(data.CreatedAt),
		Identities:      make(map[string]*Identity),
		lastActive:      time.Now(),
	}

	for _, p := range data.Players {
		room.Identities[p.Token] = &Identity{
			ID:         p.ID,
			Token:      p.Token,
			Name:       p.Name,
			ShineColor: p.ShineColor,
		}
	}
	if data.WhiteToken != "" {
		room.White = room.Identities[data.WhiteToken]
	}
	if data.BlackToken != "" {
		room.Black = room.Identities[data.BlackToken]
	}

	if data.Game != nil {
		room.Game = &Game{
			Status:    GameStatus(data.Game.Status),
			FEN:       data.Game.FEN,
			MoveLog:   data.Game.MoveLog,
			Turn:      protocol.Seat(data.Game.Turn),
			WhiteTime: data.Game.WhiteTime,
			BlackTime: data.Game.BlackTime,
			LastTick:  rm.clk.Now(),
		}
	}

	return room
}

// RestoreRooms 启动时从 Redis 恢复房间。恢复失败只记录日志，
// 以空房间表启动，不阻断服务。
func (rm *RoomManager) RestoreRooms(ctx context.Context) {
	if rm.store == nil {
		return
	}

	codes, err := rm.store.GetAllRoomCodes(ctx)
	if err != nil {
		log.Printf("⚠️ 读取房间快照列表失败，以空房间表启动: %v", err)
		return
	}

	restored := 0
	for _, code := range codes {
		data, err := rm.store.LoadRoom(ctx, code)
		if err != nil {
			log.Printf("⚠️ 房间 %s 快照损坏，跳过: %v", code, err)
			continue
		}
		if data == nil {
			continue
		}

		room := rm.rebuildRoom(data)
		rm.mu.Lock()
		rm.rooms[code] = room
		rm.mu.Unlock()
		restored++
	}

	if restored > 0 {
		log.Printf("♻️ 已从快照恢复 %d 个房间", restored)
	}
}
