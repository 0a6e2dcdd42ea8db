//go:build integration

package moneygame_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	moneygameservice "github.com/fairway-collective/moneygames/app/modules/moneygame/application"
	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
	moneygamenotify "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/notifications"
	moneygamedb "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/repositories"
	moneygamerouter "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/router"
	rosterdb "github.com/fairway-collective/moneygames/app/modules/roster/infrastructure/repositories"
	"github.com/fairway-collective/moneygames/integration_tests/testutils"
	"github.com/fairway-collective/moneygames/internal/eventbus"
	"github.com/fairway-collective/moneygames/realtime"
)

// TestMoneyGameLifecycle drives a full game through real Postgres and NATS:
// create, responses, quorum flip, manual start, and realtime fan-out.
func TestMoneyGameLifecycle(t *testing.T) {
	env, err := testutils.NewTestEnvironment(t)
	require.NoError(t, err)
	t.Cleanup(env.Cleanup)

	ctx := env.Ctx
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	roster, err := testutils.SeedRoster(ctx, env.DB, 5)
	require.NoError(t, err)
	creator := roster.Members[0]
	invitees := roster.Members[1:4]

	bus, err := eventbus.NewNatsEventBus(env.NatsURL, watermill.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })

	transport := realtime.NewInMemoryTransport()
	fanout := moneygamenotify.NewFanout(transport, logger, nil)

	wmRouter, err := message.NewRouter(message.RouterConfig{}, watermill.NopLogger{})
	require.NoError(t, err)
	wmRouter.AddMiddleware(middleware.CorrelationID)

	gameRouter := moneygamerouter.NewMoneyGameRouter(logger, wmRouter, bus)
	require.NoError(t, gameRouter.Configure(ctx, fanout))

	routerCtx, stopRouter := context.WithCancel(ctx)
	t.Cleanup(stopRouter)
	go func() { _ = wmRouter.Run(routerCtx) }()
	select {
	case <-wmRouter.Running():
	case <-time.After(30 * time.Second):
		t.Fatal("watermill router did not start")
	}

	svc := moneygameservice.NewMoneyGameService(
		moneygamedb.NewRepository(env.DB),
		rosterdb.NewRepository(env.DB),
		bus,
		logger,
		nil,
		nil,
		env.DB,
	)

	invitedIDs := make([]uuid.UUID, 0, len(invitees))
	for _, m := range invitees {
		invitedIDs = append(invitedIDs, m.PlayerID)
	}

	created, err := svc.CreateGame(ctx, creator.Identity, moneygameservice.CreateGameInput{
		LeagueID:         roster.LeagueID,
		ChapterID:        roster.ChapterID,
		GameType:         moneygametypes.GameTypeTwoVsTwoAutoPress,
		CourseID:         roster.CourseID,
		Currency:         "USD",
		InvitedPlayerIDs: invitedIDs,
	})
	require.NoError(t, err)
	assert.Equal(t, moneygametypes.GameStatusWaitingForPlayers, created.Status)
	assert.Equal(t, 1, created.AcceptedCount)

	// The first two acceptances leave the game short of quorum.
	for _, m := range invitees[:2] {
		snap, err := svc.RecordResponse(ctx, m.Identity, created.GameID, moneygametypes.InvitationStatusAccepted)
		require.NoError(t, err)
		assert.False(t, snap.CanStart)
	}

	// The third acceptance completes the foursome.
	snap, err := svc.RecordResponse(ctx, invitees[2].Identity, created.GameID, moneygametypes.InvitationStatusAccepted)
	require.NoError(t, err)
	assert.True(t, snap.CanStart)
	assert.Equal(t, moneygametypes.GameStatusReadyToStart, snap.GameStatus)
	assert.Equal(t, 4, snap.AcceptedCount)

	// A decline reverts the flip.
	snap, err = svc.RecordResponse(ctx, invitees[0].Identity, created.GameID, moneygametypes.InvitationStatusDeclined)
	require.NoError(t, err)
	assert.Equal(t, moneygametypes.GameStatusWaitingForPlayers, snap.GameStatus)

	// The revert already happened, so a start attempt is an invalid
	// transition from the waiting state.
	_, err = svc.ChangeGameStatus(ctx, creator.Identity, created.GameID, moneygametypes.GameStatusInProgress)
	var failure *moneygameservice.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, moneygameservice.FailureInvalidTransition, failure.Code)

	// Re-accept and start for real.
	_, err = svc.RecordResponse(ctx, invitees[0].Identity, created.GameID, moneygametypes.InvitationStatusAccepted)
	require.NoError(t, err)

	change, err := svc.ChangeGameStatus(ctx, creator.Identity, created.GameID, moneygametypes.GameStatusInProgress)
	require.NoError(t, err)
	require.NotNil(t, change.StartedAt)
	assert.Equal(t, moneygametypes.GameStatusReadyToStart, change.PreviousStatus)

	lobby, err := svc.GetLobby(ctx, creator.Identity, created.GameID)
	require.NoError(t, err)
	assert.Equal(t, moneygametypes.GameStatusInProgress, lobby.Status)
	assert.Len(t, lobby.Participants, 4)

	// Realtime fan-out is asynchronous through NATS; poll for the lobby
	// broadcasts to land on the transport.
	lobbyChannel := realtime.LobbyChannelName(created.GameID.String())
	require.Eventually(t, func() bool {
		return len(transport.PublishedTo(lobbyChannel)) >= 5
	}, 30*time.Second, 100*time.Millisecond, "expected lobby broadcasts for each response and status change")

	events := map[string]bool{}
	for _, e := range transport.PublishedTo(lobbyChannel) {
		events[e.Event] = true
	}
	assert.True(t, events["player-response"])
	assert.True(t, events["game-status-change"])

	// Invitees received private invitations; the creator did not.
	require.Eventually(t, func() bool {
		return len(transport.PublishedTo(realtime.PrivateChannelName(invitees[0].Identity))) >= 1
	}, 30*time.Second, 100*time.Millisecond)
	assert.Empty(t, transport.PublishedTo(realtime.PrivateChannelName(creator.Identity)))
}
