package room

import (
	"crypto/rand"
	"encoding/hex"
	"log"

	"github.com/google/uuid"

	"github.com/palemoky/chess-arena/internal/protocol"
	"github.com/palemoky/chess-arena/internal/types"
)

// generateToken 生成随机凭证。128 位随机空间，房间生命周期内
// 碰撞概率可忽略。
func generateToken() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// resolveIdentityLocked 将连接解析为持久身份：凭证命中既有身份时
// 重绑连接（即断线重连），否则铸造新身份。返回身份与是否为重连。
func (r *Room) resolveIdentityLocked(playerToken, playerName string, client types.ClientInterface) (*Identity, bool) {
	if playerToken != "" {
		if identity, ok := r.Identities[playerToken]; ok {
			// 同一身份最多一个活跃连接，挤掉旧连接
			if identity.Client != nil && identity.Client.GetID() != client.GetID() {
				identity.Client.SetRoom("")
				identity.Client.Close()
			}
			identity.Client = client
			return identity, true
		}
	}

	identity := &Identity{
		ID:     uuid.New().String(),
		Token:  generateToken(),
		Name:   playerName,
		Client: client,
	}
	r.Identities[identity.Token] = identity
	return identity, false
}

// authenticateAdminLocked 校验并重绑管理员身份。连接已是管理员，
// 或出示了正确的 AdminToken 时返回 true；token 认证会重新绑定
// 管理员连接并撤销待决的关房倒计时。
func (r *Room) authenticateAdminLocked(adminToken string, client types.ClientInterface) bool {
	if r.isAdminLocked(client.GetID()) {
		return true
	}

	if adminToken != "" && adminToken == r.AdminToken {
		r.adminClientID = client.GetID()
		if r.cancelAdminGraceLocked() {
			log.Printf("🔑 管理员重连，房间 %s 关闭倒计时已取消", r.Code)
		}
		return true
	}

	return false
}

// seatName 席位的显示名称
func seatName(seat protocol.Seat) string {
	if seat == protocol.SeatWhite {
		return "白方"
	}
	return "黑方"
}
