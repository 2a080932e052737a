package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/chess-arena/internal/apperrors"
	"github.com/palemoky/chess-arena/internal/protocol"
	"github.com/palemoky/chess-arena/internal/testutil"
)

func TestAssignSeat_AdminOnly(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	admin := testutil.NewSimpleClient("conn-admin", "Alice")
	guest := testutil.NewSimpleClient("conn-guest", "Bob")

	room, _ := createRoom(t, rm, admin, "Alice")
	result := joinRoom(t, rm, guest, &protocol.JoinRoomPayload{RoomCode: room.Code, PlayerName: "Bob"})

	err := rm.AssignSeat(guest, result.Identity.ID, protocol.SeatWhite)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.NoError(t, rm.AssignSeat(admin, result.Identity.ID, protocol.SeatWhite))
	assert.Equal(t, protocol.SeatWhite, func() protocol.Seat {
		room.mu.RLock()
		defer room.mu.RUnlock()
		return room.seatOfLocked(result.Identity)
	}())
}

func TestAssignSeat_MovingPlayerVacatesPreviousSeat(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	admin := testutil.NewSimpleClient("conn-admin", "Alice")
	room, adminID := createRoom(t, rm, admin, "Alice")

	require.NoError(t, rm.AssignSeat(admin, adminID.ID, protocol.SeatWhite))
	require.NoError(t, rm.AssignSeat(admin, adminID.ID, protocol.SeatBlack))

	room.mu.RLock()
	defer room.mu.RUnlock()
	assert.Nil(t, room.White, "previous seat must be vacated")
	assert.Equal(t, adminID, room.Black)
}

func TestAssignSeat_RejectedDuringActiveGame(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	room, white, _ := startedGame(t, rm)

	extra := testutil.NewSimpleClient("conn-extra", "Carol")
	result := joinRoom(t, rm, extra, &protocol.JoinRoomPayload{RoomCode: room.Code, PlayerName: "Carol"})

	err := rm.AssignSeat(white, result.Identity.ID, protocol.SeatBlack)
	assert.ErrorIs(t, err, apperrors.ErrGameInProgress)
}

func TestAssignSeat_UnknownPlayer(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	admin := testutil.NewSimpleClient("conn-admin", "Alice")
	createRoom(t, rm, admin, "Alice")

	err := rm.AssignSeat(admin, "no-such-id", protocol.SeatWhite)
	assert.ErrorIs(t, err, apperrors.ErrPlayerNotFound)
}

func TestVacateSeat_DuringGameForfeitsForOpponent(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	_, white, black := startedGame(t, rm)

	require.NoError(t, rm.VacateSeat(white, protocol.SeatBlack))

	// Remaining side wins by forfeit, both players notified
	for _, c := range []*testutil.SimpleClient{white, black} {
		overs := c.MessagesOfType(protocol.MsgGameOver)
		require.Len(t, overs, 1)
		over, err := protocol.ParsePayload[protocol.GameOverPayload](overs[0])
		require.NoError(t, err)
		assert.Equal(t, protocol.EndReasonForfeit, over.Reason)
		assert.Equal(t, protocol.WinnerWhite, over.Winner)
	}
}

func TestVacateSeat_EmptySeatIsNoop(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	admin := testutil.NewSimpleClient("conn-admin", "Alice")
	createRoom(t, rm, admin, "Alice")

	assert.NoError(t, rm.VacateSeat(admin, protocol.SeatWhite))
}

func TestKickPlayer_UnicastBeforeLobbyBroadcast(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	admin := testutil.NewSimpleClient("conn-admin", "Alice")
	guest := testutil.NewSimpleClient("conn-guest", "Bob")

	room, _ := createRoom(t, rm, admin, "Alice")
	result := joinRoom(t, rm, guest, &protocol.JoinRoomPayload{RoomCode: room.Code, PlayerName: "Bob"})
	guest.ClearMessages()
	admin.ClearMessages()

	require.NoError(t, rm.KickPlayer(admin, result.Identity.ID))

	// The victim gets exactly the kicked notice and nothing after it
	msgs := guest.SentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, protocol.MsgKicked, msgs[0].Type)
	assert.Empty(t, guest.GetRoom())

	// Survivors see a lobby without the kicked player
	updates := admin.MessagesOfType(protocol.MsgLobbyUpdate)
	require.NotEmpty(t, updates)
	state, err := protocol.ParsePayload[protocol.LobbyStatePayload](updates[len(updates)-1])
	require.NoError(t, err)
	assert.Len(t, state.Players, 1)
}

func TestKickPlayer_SeatedVictimForfeitsGame(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	room, white, black := startedGame(t, rm)

	blackID := func() string {
		room.mu.RLock()
		defer room.mu.RUnlock()
		return room.Black.ID
	}()

	require.NoError(t, rm.KickPlayer(white, blackID))

	overs := white.MessagesOfType(protocol.MsgGameOver)
	require.Len(t, overs, 1)
	over, err := protocol.ParsePayload[protocol.GameOverPayload](overs[0])
	require.NoError(t, err)
	assert.Equal(t, protocol.EndReasonForfeit, over.Reason)
	assert.Equal(t, protocol.WinnerWhite, over.Winner)

	// Kicked player heard about being kicked, then nothing else
	kicked := black.MessagesOfType(protocol.MsgKicked)
	assert.Len(t, kicked, 1)
}

func TestKickPlayer_AdminCannotKickSelf(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	admin := testutil.NewSimpleClient("conn-admin", "Alice")
	_, identity := createRoom(t, rm, admin, "Alice")

	err := rm.KickPlayer(admin, identity.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSetShineColor(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	admin := testutil.NewSimpleClient("conn-admin", "Alice")
	guest := testutil.NewSimpleClient("conn-guest", "Bob")

	room, _ := createRoom(t, rm, admin, "Alice")
	result := joinRoom(t, rm, guest, &protocol.JoinRoomPayload{RoomCode: room.Code, PlayerName: "Bob"})

	require.NoError(t, rm.SetShineColor(admin, result.Identity.ID, "#ff00ff"))
	assert.Equal(t, "#ff00ff", result.Identity.ShineColor)

	// Empty color clears the highlight
	require.NoError(t, rm.SetShineColor(admin, result.Identity.ID, ""))
	assert.Empty(t, result.Identity.ShineColor)

	// Guests cannot recolor anyone
	err := rm.SetShineColor(guest, result.Identity.ID, "#00ff00")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestStartGame_Validation(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	admin := testutil.NewSimpleClient("conn-admin", "Alice")
	guest := testutil.NewSimpleClient("conn-guest", "Bob")

	room, adminIdentity := createRoom(t, rm, admin, "Alice")
	result := joinRoom(t, rm, guest, &protocol.JoinRoomPayload{RoomCode: room.Code, PlayerName: "Bob"})

	// Both seats must be occupied
	assert.ErrorIs(t, rm.StartGame(admin, 5), apperrors.ErrSeatsNotFilled)

	require.NoError(t, rm.AssignSeat(admin, adminIdentity.ID, protocol.SeatWhite))
	require.NoError(t, rm.AssignSeat(admin, result.Identity.ID, protocol.SeatBlack))

	// Only 3/5/7 minute clocks are offered
	assert.ErrorIs(t, rm.StartGame(admin, 10), apperrors.ErrInvalidDuration)
	assert.ErrorIs(t, rm.StartGame(admin, 0), apperrors.ErrInvalidDuration)

	// Guests cannot start the game
	assert.ErrorIs(t, rm.StartGame(guest, 5), apperrors.ErrUnauthorized)

	require.NoError(t, rm.StartGame(admin, 3))

	// No restart while a game is running
	assert.ErrorIs(t, rm.StartGame(admin, 3), apperrors.ErrGameInProgress)
}

func TestStartGame_BroadcastAndClocks(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, Config{})
	admin := testutil.NewSimpleClient("conn-admin", "Alice")
	guest := testutil.NewSimpleClient("conn-guest", "Bob")

	room, adminIdentity := createRoom(t, rm, admin, "Alice")
	result := joinRoom(t, rm, guest, &protocol.JoinRoomPayload{RoomCode: room.Code, PlayerName: "Bob"})
	require.NoError(t, rm.AssignSeat(admin, adminIdentity.ID, protocol.SeatWhite))
	require.NoError(t, rm.AssignSeat(admin, result.Identity.ID, protocol.SeatBlack))

	require.NoError(t, rm.StartGame(admin, 7))

	for _, c := range []*testutil.SimpleClient{admin, guest} {
		started := c.MessagesOfType(protocol.MsgGameStarted)
		require.Len(t, started, 1)
		payload, err := protocol.ParsePayload[protocol.GameStartedPayload](started[0])
		require.NoError(t, err)
		assert.Equal(t, 7, payload.DurationMinutes)
		assert.InDelta(t, 420, payload.WhiteTime, 0.001)
		assert.InDelta(t, 420, payload.BlackTime, 0.001)
		assert.Equal(t, protocol.SeatWhite, payload.Turn)
	}

	room.mu.RLock()
	defer room.mu.RUnlock()
	assert.Equal(t, initialFEN, room.Game.FEN)
	assert.Equal(t, GameActive, room.Game.Status)
}
