//go:build !production

package testutil

import (
	"sync"
	"time"

	"github.com/palemoky/chess-arena/internal/clock"
)

// MockClock 可手动推进的时钟，用于棋钟结算测试
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ clock.Clock = (*MockClock)(nil)

// NewMockClock 创建固定在指定时刻的时钟
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now 返回当前模拟时间
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance 将时钟向前推进
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
