package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前缀
	roomKeyPrefix = "room:"

	// 房间快照过期时间
	roomExpiration = 12 * time.Hour
)

// RoomData 房间快照（用于 Redis 序列化）。
// 定时器不在快照之内：进程重启后宽限期不恢复，由空闲房间回收兜底。
type RoomData struct {
	Code            string       `json:"code"`
	AdminToken      string       `json:"admin_token"`
	DurationMinutes int          `json:"duration_minutes"`
	Players         []PlayerData `json:"players"`
	WhiteToken      string       `json:"white_token,omitempty"`
	BlackToken      string       `json:"black_token,omitempty"`
	Game            *GameData    `json:"game,omitempty"`
	CreatedAt       int64        `json:"created_at"`
}

// PlayerData 玩家快照
type PlayerData struct {
	ID         string `json:"id"`
	Token      string `json:"token"`
	Name       string `json:"name"`
	ShineColor string `json:"shine_color,omitempty"`
}

// GameData 对局快照
type GameData struct {
	Status    int     `json:"status"`
	FEN       string  `json:"fen"`
	MoveLog   string  `json:"move_log,omitempty"`
	Turn      string  `json:"turn"`
	WhiteTime float64 `json:"white_time"`
	BlackTime float64 `json:"black_time"`
	LastTick  int64   `json:"last_tick"` // Unix 毫秒
}

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// SaveRoom 保存房间快照到 Redis
func (rs *RedisStore) SaveRoom(ctx context.Context, roomCode string, data *RoomData) error {
	if data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化房间快照失败: %w", err)
	}

	key := roomKeyPrefix + roomCode
	return rs.client.Set(ctx, key, jsonData, roomExpiration).Err()
}

// LoadRoom 从 Redis 加载房间快照（仅返回数据，需要外部重建）
func (rs *RedisStore) LoadRoom(ctx context.Context, code string) (*RoomData, error) {
	key := roomKeyPrefix + code
	data, err := rs.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // 房间不存在
		}
		return nil, err
	}

	var roomData RoomData
	if err := json.Unmarshal(data, &roomData); err != nil {
		return nil, fmt.Errorf("反序列化房间快照失败: %w", err)
	}

	return &roomData, nil
}

// DeleteRoom 从 Redis 删除房间快照
func (rs *RedisStore) DeleteRoom(ctx context.Context, code string) error {
	key := roomKeyPrefix + code
	return rs.client.Del(ctx, key).Err()
}

// GetAllRoomCodes 获取所有已保存的房间号
func (rs *RedisStore) GetAllRoomCodes(ctx context.Context) ([]string, error) {
	keys, err := rs.client.Keys(ctx, roomKeyPrefix+"*").Result()
	if err != nil {
		return nil, err
	}

	codes := make([]string, len(keys))
	for i, key := range keys {
		codes[i] = key[len(roomKeyPrefix):]
	}
	return codes, nil
}
