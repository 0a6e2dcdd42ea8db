// Package moneygamenotify fans lifecycle events out to the realtime
// transport. Delivery is best-effort: a failed publish is logged and
// swallowed because the durable record already committed, and clients
// reconcile by refetching the lobby.
package moneygamenotify

import (
	"context"
	"log/slog"

	moneygameevents "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/events"
	moneygametypes "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/types"
	"github.com/fairway-collective/moneygames/internal/observability/attr"
	"github.com/fairway-collective/moneygames/internal/observability/metrics"
	"github.com/fairway-collective/moneygames/realtime"
)

// Fanout consumes lifecycle events and broadcasts them.
type Fanout struct {
	transport realtime.Transport
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewFanout creates a Fanout.
func NewFanout(transport realtime.Transport, logger *slog.Logger, m *metrics.Metrics) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Fanout{transport: transport, logger: logger, metrics: m}
}

// publish sends one realtime event, logging and counting failures instead of
// propagating them.
func (f *Fanout) publish(ctx context.Context, channel, event string, payload any) {
	if err := f.transport.Channel(channel).Publish(ctx, event, payload); err != nil {
		f.logger.ErrorContext(ctx, "Realtime publish failed, dropping event",
			attr.ExtractCorrelationID(ctx),
			attr.String("channel", channel),
			attr.String("event", event),
			attr.Error(err),
		)
		f.metrics.NotificationFailures.WithLabelValues(event).Inc()
	}
}

// HandleGameCreated sends one invitation to each invited registered player's
// private channel. Guests receive nothing; someone vouched for them and
// informs them out-of-band.
func (f *Fanout) HandleGameCreated(ctx context.Context, payload *moneygameevents.GameCreatedPayloadV1) error {
	for _, invited := range payload.InvitedPlayers {
		if invited.Identity == "" {
			continue
		}
		f.publish(ctx, realtime.PrivateChannelName(invited.Identity), moneygameevents.RealtimeGameInvitation, payload)
	}
	return nil
}

// HandleResponseRecorded broadcasts the response to the game's lobby channel.
func (f *Fanout) HandleResponseRecorded(ctx context.Context, payload *moneygameevents.ResponseRecordedPayloadV1) error {
	f.publish(ctx, realtime.LobbyChannelName(payload.GameID), moneygameevents.RealtimePlayerResponse, payload)
	return nil
}

// HandleGameStatusChanged broadcasts the transition to the lobby channel.
func (f *Fanout) HandleGameStatusChanged(ctx context.Context, payload *moneygameevents.GameStatusChangedPayloadV1) error {
	f.publish(ctx, realtime.LobbyChannelName(payload.GameID), moneygameevents.RealtimeGameStatusChange, payload)
	return nil
}

// HandleParticipantNotice addresses one participant's private channel when a
// game starts or is cancelled.
func (f *Fanout) HandleParticipantNotice(ctx context.Context, payload *moneygameevents.ParticipantNoticePayloadV1) error {
	event := moneygameevents.RealtimeGameStarted
	if payload.Status == moneygametypes.GameStatusCancelled {
		event = moneygameevents.RealtimeGameCancelled
	}
	f.publish(ctx, realtime.PrivateChannelName(payload.Identity), event, payload)
	return nil
}
