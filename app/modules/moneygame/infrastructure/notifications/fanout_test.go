package moneygamenotify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	moneygameevents "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/events"
	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
	"github.com/fairway-collective/moneygames/realtime"
)

func newFanout(transport realtime.Transport) *Fanout {
	return NewFanout(transport, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func TestHandleGameCreated(t *testing.T) {
	transport := realtime.NewInMemoryTransport()
	fanout := newFanout(transport)

	err := fanout.HandleGameCreated(context.Background(), &moneygameevents.GameCreatedPayloadV1{
		GameID: "game-1",
		InvitedPlayers: []moneygameevents.InvitedPlayer{
			{PlayerID: "p1", Identity: "alice"},
			{PlayerID: "p2", Identity: "bob"},
			{PlayerID: "p3"}, // no identity resolved, skipped
		},
		InvitedAt: time.Now(),
	})
	require.NoError(t, err)

	assert.Len(t, transport.PublishedTo("private-user-alice"), 1)
	assert.Len(t, transport.PublishedTo("private-user-bob"), 1)
	assert.Len(t, transport.Published(), 2)
	assert.Equal(t, "game-invitation", transport.Published()[0].Event)
}

func TestHandleLobbyBroadcasts(t *testing.T) {
	transport := realtime.NewInMemoryTransport()
	fanout := newFanout(transport)
	ctx := context.Background()

	require.NoError(t, fanout.HandleResponseRecorded(ctx, &moneygameevents.ResponseRecordedPayloadV1{GameID: "g1"}))
	require.NoError(t, fanout.HandleGameStatusChanged(ctx, &moneygameevents.GameStatusChangedPayloadV1{GameID: "g1"}))

	events := transport.PublishedTo("game-g1-lobby")
	require.Len(t, events, 2)
	assert.Equal(t, "player-response", events[0].Event)
	assert.Equal(t, "game-status-change", events[1].Event)
}

func TestHandleParticipantNotice(t *testing.T) {
	transport := realtime.NewInMemoryTransport()
	fanout := newFanout(transport)
	ctx := context.Background()

	require.NoError(t, fanout.HandleParticipantNotice(ctx, &moneygameevents.ParticipantNoticePayloadV1{
		GameID:   "g1",
		Status:   moneygametypes.GameStatusInProgress,
		Identity: "alice",
	}))
	require.NoError(t, fanout.HandleParticipantNotice(ctx, &moneygameevents.ParticipantNoticePayloadV1{
		GameID:   "g1",
		Status:   moneygametypes.GameStatusCancelled,
		Identity: "alice",
	}))

	events := transport.PublishedTo("private-user-alice")
	require.Len(t, events, 2)
	assert.Equal(t, "game-started", events[0].Event)
	assert.Equal(t, "game-cancelled", events[1].Event)
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	transport := realtime.NewInMemoryTransport()
	transport.FailChannels["game-g1-lobby"] = errors.New("transport down")
	fanout := newFanout(transport)

	err := fanout.HandleResponseRecorded(context.Background(), &moneygameevents.ResponseRecordedPayloadV1{GameID: "g1"})
	assert.NoError(t, err)
	assert.Empty(t, transport.Published())
}
