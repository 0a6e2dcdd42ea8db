// Package moneygamerouter wires lifecycle event topics to the notification
// fan-out on a Watermill router.
package moneygamerouter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	moneygameevents "github.com/fairway-collective/moneygames/app/modules/moneygame/domain/events"
	moneygamenotify "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/notifications"
	"github.com/fairway-collective/moneygames/internal/eventbus"
	"github.com/fairway-collective/moneygames/internal/observability/attr"
)

// MoneyGameRouter handles Watermill handler registration for lifecycle
// events.
type MoneyGameRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
}

// NewMoneyGameRouter creates a new MoneyGameRouter.
func NewMoneyGameRouter(logger *slog.Logger, router *message.Router, subscriber eventbus.EventBus) *MoneyGameRouter {
	return &MoneyGameRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
	}
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	logger     *slog.Logger
}

// Configure registers the fan-out handlers.
func (r *MoneyGameRouter) Configure(_ context.Context, fanout *moneygamenotify.Fanout) error {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		logger:     r.logger,
	}

	r.logger.Info("Registering money game fan-out handlers",
		slog.String("created_topic", moneygameevents.GameCreatedV1),
		slog.String("response_topic", moneygameevents.ResponseRecordedV1),
		slog.String("status_topic", moneygameevents.GameStatusChangedV1),
		slog.String("notice_topic", moneygameevents.ParticipantNoticeV1),
	)

	registerHandler(deps, moneygameevents.GameCreatedV1, fanout.HandleGameCreated)
	registerHandler(deps, moneygameevents.ResponseRecordedV1, fanout.HandleResponseRecorded)
	registerHandler(deps, moneygameevents.GameStatusChangedV1, fanout.HandleGameStatusChanged)
	registerHandler(deps, moneygameevents.ParticipantNoticeV1, fanout.HandleParticipantNotice)

	return nil
}

// registerHandler is a generic function for type-safe Watermill handler
// registration. Decode failures are logged and acked; the payload will never
// become valid on redelivery.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) error,
) {
	handlerName := "moneygame." + topic

	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		func(msg *message.Message) error {
			ctx := msg.Context()
			if cid := middleware.MessageCorrelationID(msg); cid != "" {
				ctx = attr.WithCorrelationID(ctx, cid)
			}

			payload := new(T)
			if err := json.Unmarshal(msg.Payload, payload); err != nil {
				deps.logger.ErrorContext(ctx, "Dropping undecodable event",
					attr.ExtractCorrelationID(ctx),
					attr.String("handler", handlerName),
					attr.Error(err),
				)
				return nil
			}

			return handler(ctx, payload)
		},
	)
}

// Close shuts down the router.
func (r *MoneyGameRouter) Close() error {
	return r.router.Close()
}
