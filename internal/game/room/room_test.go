package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/chess-arena/internal/protocol"
	"github.com/palemoky/chess-arena/internal/testutil"
)

// newTestManager creates a manager with a mock clock and no persistence.
// Grace period defaults to 50ms so lifecycle tests stay fast.
func newTestManager(t *testing.T, cfg Config) (*RoomManager, *testutil.MockClock) {
	t.Helper()

	if cfg.GracePeriod == 0 {
		cfg.GracePeriod = 50 * time.Millisecond
	}
	if cfg.SweepInterval == 0 {
		// Keep the background sweeper quiet unless the test wants it
		cfg.SweepInterval = time.Hour
	}

	clk := testutil.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewRoomManager(nil, clk, cfg), clk
}

// createRoom is a shorthand for the admin flow
func createRoom(t *testing.T, rm *RoomManager, client *testutil.SimpleClient, name string) (*Room, *Identity) {
	t.Helper()

	room, admin, err := rm.CreateRoom(client, name)
	require.NoError(t, err)
	require.NotNil(t, room)
	require.NotNil(t, admin)
	return room, admin
}

// joinRoom is a shorthand for the player flow
func joinRoom(t *testing.T, rm *RoomManager, client *testutil.SimpleClient, payload *protocol.JoinRoomPayload) *JoinResult {
	t.Helper()

	result, err := rm.JoinRoom(client, payload)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

// startedGame wires up the standard two-player game: admin on white,
// guest on black, 5 minute clocks.
func startedGame(t *testing.T, rm *RoomManager) (*Room, *testutil.SimpleClient, *testutil.SimpleClient) {
	t.Helper()

	white := testutil.NewSimpleClient("conn-white", "Alice")
	black := testutil.NewSimpleClient("conn-black", "Bob")

	room, admin := createRoom(t, rm, white, "Alice")
	guest := joinRoom(t, rm, black, &protocol.JoinRoomPayload{RoomCode: room.Code, PlayerName: "Bob"})

	require.NoError(t, rm.AssignSeat(white, admin.ID, protocol.SeatWhite))
	require.NoError(t, rm.AssignSeat(white, guest.Identity.ID, protocol.SeatBlack))
	require.NoError(t, rm.StartGame(white, 5))

	white.ClearMessages()
	black.ClearMessages()
	return room, white, black
}

func TestCreateRoom(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	client := testutil.NewSimpleClient("conn-1", "Alice")

	room, admin := createRoom(t, rm, client, "Alice")

	assert.Len(t, room.Code, 6)
	assert.Regexp(t, `^\d{6}$`, room.Code)
	assert.Equal(t, room.Code, client.GetRoom())

	// The creator's player token doubles as the admin token
	assert.Equal(t, room.AdminToken, admin.Token)
	assert.NotEmpty(t, admin.ID)
	assert.NotEqual(t, admin.ID, admin.Token, "public ID must not leak the credential")

	// Creator got the initial lobby snapshot
	updates := client.MessagesOfType(protocol.MsgLobbyUpdate)
	require.NotEmpty(t, updates)
	state, err := protocol.ParsePayload[protocol.LobbyStatePayload](updates[len(updates)-1])
	require.NoError(t, err)
	assert.Equal(t, room.Code, state.RoomCode)
	require.Len(t, state.Players, 1)
	assert.True(t, state.Players[0].IsAdmin)
	assert.False(t, state.GameActive)
}

func TestCreateRoom_UniqueCodes(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		client := testutil.NewSimpleClient("conn", "p")
		room, _ := createRoom(t, rm, client, "p")
		assert.False(t, seen[room.Code], "room code %s issued twice", room.Code)
		seen[room.Code] = true
	}
}

func TestJoinRoom_NewPlayer(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	c1 := testutil.NewSimpleClient("conn-1", "Alice")
	c2 := testutil.NewSimpleClient("conn-2", "Bob")

	room, admin := createRoom(t, rm, c1, "Alice")
	result := joinRoom(t, rm, c2, &protocol.JoinRoomPayload{RoomCode: room.Code, PlayerName: "Bob"})

	assert.False(t, result.IsAdmin)
	assert.False(t, result.Reconnected)
	assert.Nil(t, result.Resume)
	assert.NotEqual(t, admin.Token, result.Identity.Token)
	assert.Equal(t, room.Code, c2.GetRoom())

	// Both players see the two-player lobby
	for _, c := range []*testutil.SimpleClient{c1, c2} {
		updates := c.MessagesOfType(protocol.MsgLobbyUpdate)
		require.NotEmpty(t, updates)
		state, err := protocol.ParsePayload[protocol.LobbyStatePayload](updates[len(updates)-1])
		require.NoError(t, err)
		assert.Len(t, state.Players, 2)
	}
}

func TestJoinRoom_RoomNotFound(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	client := testutil.NewSimpleClient("conn-1", "Alice")

	result, err := rm.JoinRoom(client, &protocol.JoinRoomPayload{RoomCode: "000000", PlayerName: "Alice"})
	assert.Nil(t, result)
	assert.ErrorContains(t, err, "房间不存在")
}

func TestJoinRoom_ReconnectRestoresIdentity(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	c1 := testutil.NewSimpleClient("conn-1", "Bob")
	c2 := testutil.NewSimpleClient("conn-2", "Bob")

	admin := testutil.NewSimpleClient("conn-admin", "Alice")
	room, _ := createRoom(t, rm, admin, "Alice")
	first := joinRoom(t, rm, c1, &protocol.JoinRoomPayload{RoomCode: room.Code, PlayerName: "Bob"})

	rm.HandleDisconnect(c1)

	// Same token, new connection: identity survives the reconnect
	second := joinRoom(t, rm, c2, &protocol.JoinRoomPayload{
		RoomCode:    room.Code,
		PlayerName:  "Bob",
		PlayerToken: first.Identity.Token,
	})

	assert.True(t, second.Reconnected)
	assert.Equal(t, first.Identity.ID, second.Identity.ID)
	assert.Equal(t, first.Identity.Token, second.Identity.Token)
}

func TestJoinRoom_UnknownTokenMintsFreshIdentity(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	admin := testutil.NewSimpleClient("conn-admin", "Alice")
	room, _ := createRoom(t, rm, admin, "Alice")

	client := testutil.NewSimpleClient("conn-2", "Bob")
	result := joinRoom(t, rm, client, &protocol.JoinRoomPayload{
		RoomCode:    room.Code,
		PlayerName:  "Bob",
		PlayerToken: "stale-token-from-another-life",
	})

	assert.False(t, result.Reconnected)
	assert.NotEqual(t, "stale-token-from-another-life", result.Identity.Token)
}

func TestJoinRoom_AdminReauthentication(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	c1 := testutil.NewSimpleClient("conn-1", "Alice")
	c2 := testutil.NewSimpleClient("conn-2", "Alice")

	room, admin := createRoom(t, rm, c1, "Alice")
	rm.HandleDisconnect(c1)

	result := joinRoom(t, rm, c2, &protocol.JoinRoomPayload{
		RoomCode:    room.Code,
		PlayerName:  "Alice",
		AdminToken:  room.AdminToken,
		PlayerToken: admin.Token,
	})

	assert.True(t, result.IsAdmin)
	assert.True(t, result.Reconnected)
	assert.True(t, room.IsAdminClient(c2.GetID()))
}

func TestJoinRoom_SecondConnectionEvictsFirst(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	admin := testutil.NewSimpleClient("conn-admin", "Alice")
	room, _ := createRoom(t, rm, admin, "Alice")

	c1 := testutil.NewSimpleClient("conn-1", "Bob")
	first := joinRoom(t, rm, c1, &protocol.JoinRoomPayload{RoomCode: room.Code, PlayerName: "Bob"})

	// Same token from a second live connection takes over the identity
	c2 := testutil.NewSimpleClient("conn-2", "Bob")
	joinRoom(t, rm, c2, &protocol.JoinRoomPayload{
		RoomCode:    room.Code,
		PlayerName:  "Bob",
		PlayerToken: first.Identity.Token,
	})

	assert.Empty(t, c1.GetRoom(), "evicted connection should be detached from the room")
	assert.Equal(t, room.Code, c2.GetRoom())
}

func TestJoinRoom_ResumeCarriesProjectedClocks(t *testing.T) {
	t.Parallel()

	// Long grace so the abandonment timer cannot interfere here
	rm, clk := newTestManager(t, Config{GracePeriod: time.Hour})
	room, _, black := startedGame(t, rm)

	// Black drops mid-game with white to move
	blackToken := func() string {
		room.mu.RLock()
		defer room.mu.RUnlock()
		return room.Black.Token
	}()
	rm.HandleDisconnect(black)

	clk.Advance(30 * time.Second)

	c2 := testutil.NewSimpleClient("conn-black-2", "Bob")
	result := joinRoom(t, rm, c2, &protocol.JoinRoomPayload{
		RoomCode:    room.Code,
		PlayerName:  "Bob",
		PlayerToken: blackToken,
	})

	require.NotNil(t, result.Resume)
	assert.Equal(t, protocol.SeatWhite, result.Resume.Turn)
	// 30s of thinking time is charged to white, the side to move
	assert.InDelta(t, 270, result.Resume.WhiteTime, 0.001)
	assert.InDelta(t, 300, result.Resume.BlackTime, 0.001)
	assert.Equal(t, initialFEN, result.Resume.FEN)
}
