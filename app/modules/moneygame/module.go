package moneygame

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"

	moneygameservice "github.com/fairway-collective/moneygames/app/modules/moneygame/application"
	moneygamehandlers "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/handlers"
	moneygamenotify "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/notifications"
	moneygamedb "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/repositories"
	moneygamerouter "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/router"
	rosterdb "github.com/fairway-collective/moneygames/app/modules/roster/infrastructure/repositories"
	"github.com/fairway-collective/moneygames/internal/eventbus"
	"github.com/fairway-collective/moneygames/internal/observability/metrics"
	"github.com/fairway-collective/moneygames/realtime"
)

// Module wires the money game service to its HTTP, bus, and realtime edges.
type Module struct {
	Service    moneygameservice.Service
	Handlers   *moneygamehandlers.MoneyGameHandlers
	Router     *moneygamerouter.MoneyGameRouter
	logger     *slog.Logger
	cancelFunc context.CancelFunc
}

// NewModule creates and initializes the money game module.
func NewModule(
	ctx context.Context,
	logger *slog.Logger,
	m *metrics.Metrics,
	tracer trace.Tracer,
	bus eventbus.EventBus,
	router *message.Router,
	transport realtime.Transport,
	routerCtx context.Context,
	db *bun.DB,
) (*Module, error) {
	logger.InfoContext(ctx, "moneygame.NewModule initializing")

	repo := moneygamedb.NewRepository(db)
	roster := rosterdb.NewRepository(db)

	service := moneygameservice.NewMoneyGameService(repo, roster, bus, logger, m, tracer, db)
	handlers := moneygamehandlers.NewMoneyGameHandlers(service, logger)

	fanout := moneygamenotify.NewFanout(transport, logger, m)

	gameRouter := moneygamerouter.NewMoneyGameRouter(logger, router, bus)
	if err := gameRouter.Configure(routerCtx, fanout); err != nil {
		return nil, fmt.Errorf("failed to configure money game router: %w", err)
	}

	return &Module{
		Service:  service,
		Handlers: handlers,
		Router:   gameRouter,
		logger:   logger,
	}, nil
}

// Run keeps the module alive until the context is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting money game module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Money game module goroutine stopped")
}

// Close shuts down the module.
func (m *Module) Close() error {
	m.logger.Info("Stopping money game module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.Router != nil {
		if err := m.Router.Close(); err != nil {
			m.logger.Error("Error closing money game router", "error", err)
			return fmt.Errorf("error closing money game router: %w", err)
		}
	}

	m.logger.Info("Money game module stopped")
	return nil
}
