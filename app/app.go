package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	authservice "github.com/fairway-collective/moneygames/app/modules/auth/application"
	authhandlers "github.com/fairway-collective/moneygames/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/fairway-collective/moneygames/app/modules/auth/infrastructure/jwt"
	"github.com/fairway-collective/moneygames/app/modules/moneygame"
	rosterdb "github.com/fairway-collective/moneygames/app/modules/roster/infrastructure/repositories"
	"github.com/fairway-collective/moneygames/config"
	"github.com/fairway-collective/moneygames/db/bundb"
	"github.com/fairway-collective/moneygames/internal/eventbus"
	"github.com/fairway-collective/moneygames/internal/observability"
	"github.com/fairway-collective/moneygames/internal/observability/metrics"
	"github.com/fairway-collective/moneygames/realtime"
)

// App assembles the service: database, event bus, realtime transport, and
// the HTTP and watermill edges.
type App struct {
	Config          *config.Config
	Logger          *slog.Logger
	Registry        *prometheus.Registry
	WatermillRouter *message.Router

	dbService *bundb.DBService
	bus       eventbus.EventBus
	transport realtime.Transport
	module    *moneygame.Module
	httpSrv   *http.Server
	metricSrv *http.Server
}

// NewApp wires every component from the loaded configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := observability.NewLogger(cfg.Observability.Environment, cfg.Observability.LogLevel)
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)
	tracer := otel.Tracer("moneygames")

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	bus, err := eventbus.NewNatsEventBus(cfg.NATS.URL, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}
	router.AddMiddleware(middleware.CorrelationID, middleware.Recoverer)

	transport, err := realtime.NewNatsTransport(cfg.NATS.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create realtime transport: %w", err)
	}

	db := dbService.GetDB()

	gameModule, err := moneygame.NewModule(ctx, logger, m, tracer, bus, router, transport, ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize money game module: %w", err)
	}

	tokens := realtime.NewTokenService(cfg.JWT.Secret, cfg.Realtime.TokenTTL)
	identityProvider := authjwt.NewProvider(cfg.JWT.Secret)
	authSvc := authservice.NewAuthService(rosterdb.NewRepository(db), tokens, logger, db)
	authH := authhandlers.NewAuthHandlers(authSvc, logger)

	httpHandler := NewHTTPRouter(cfg, logger, identityProvider, authH, gameModule.Handlers)

	app := &App{
		Config:          cfg,
		Logger:          logger,
		Registry:        registry,
		WatermillRouter: router,
		dbService:       dbService,
		bus:             bus,
		transport:       transport,
		module:          gameModule,
		httpSrv: &http.Server{
			Addr:    cfg.HTTP.Address,
			Handler: httpHandler,
		},
		metricSrv: &http.Server{
			Addr:    cfg.HTTP.MetricsAddress,
			Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		},
	}
	return app, nil
}

// Run starts the watermill router and both HTTP listeners, then blocks until
// the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.WatermillRouter.Run(ctx); err != nil {
			errCh <- fmt.Errorf("watermill router stopped: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.Logger.Info("HTTP server listening", "address", a.httpSrv.Addr)
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server stopped: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.Logger.Info("Metrics server listening", "address", a.metricSrv.Addr)
		if err := a.metricSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("metrics server stopped: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		wg.Wait()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("HTTP server shutdown failed", "error", err)
	}
	if err := a.metricSrv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("Metrics server shutdown failed", "error", err)
	}
	wg.Wait()
	return nil
}

// Close releases all held resources in dependency order.
func (a *App) Close() error {
	if a.module != nil {
		if err := a.module.Close(); err != nil {
			a.Logger.Error("Error closing money game module", "error", err)
		}
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.Logger.Error("Error closing event bus", "error", err)
		}
	}
	if a.transport != nil {
		if err := a.transport.Close(); err != nil {
			a.Logger.Error("Error closing realtime transport", "error", err)
		}
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Logger.Error("Error closing database", "error", err)
			return err
		}
	}
	return nil
}
