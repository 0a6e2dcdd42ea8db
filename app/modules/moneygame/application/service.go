package moneygameservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	moneygamedb "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/repositories"
	moneygameutil "github.com/fairway-collective/moneygames/app/modules/moneygame/utils"
	rosterdb "github.com/fairway-collective/moneygames/app/modules/roster/infrastructure/repositories"
	"github.com/fairway-collective/moneygames/internal/eventbus"
	"github.com/fairway-collective/moneygames/internal/observability/attr"
	"github.com/fairway-collective/moneygames/internal/observability/metrics"
	"github.com/fairway-collective/moneygames/internal/results"
)

// MoneyGameService implements the Service interface.
type MoneyGameService struct {
	repo     moneygamedb.Repository
	roster   rosterdb.Repository
	bus      eventbus.EventBus
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	db       *bun.DB
	schedule moneygameutil.ScheduleParser
	now      func() time.Time
}

// NewMoneyGameService creates a new MoneyGameService.
func NewMoneyGameService(
	repo moneygamedb.Repository,
	roster rosterdb.Repository,
	bus eventbus.EventBus,
	logger *slog.Logger,
	m *metrics.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
) *MoneyGameService {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	return &MoneyGameService{
		repo:     repo,
		roster:   roster,
		bus:      bus,
		logger:   logger,
		metrics:  m,
		tracer:   tracer,
		db:       db,
		schedule: moneygameutil.NewScheduleParser(),
		now:      time.Now,
	}
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any] func(ctx context.Context) (results.OperationResult[S, *Failure], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any](
	s *MoneyGameService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S],
) (result results.OperationResult[S, *Failure], err error) {

	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	startTime := time.Now()
	defer func() {
		s.metrics.OperationDuration.WithLabelValues(operationName).Observe(time.Since(startTime).Seconds())
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			span.RecordError(err)
			result = results.OperationResult[S, *Failure]{}
		}
	}()

	result, err = op(ctx)

	// Infrastructure error
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	// Domain failure
	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.String("failure_code", string((*result.Failure).Code)),
			attr.String("failure_message", (*result.Failure).Message),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any](
	s *MoneyGameService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, *Failure], error),
) (results.OperationResult[S, *Failure], error) {

	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, *Failure]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}

// unwrap converts an operation result into the service's public (value, error)
// shape: domain failures travel as *Failure on the error return.
func unwrap[S any](result results.OperationResult[S, *Failure], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	return *result.Success, nil
}

// publishEvent hands a lifecycle event to the bus after the owning
// transaction committed. Failures are logged and swallowed; the durable
// record is already the source of truth.
func (s *MoneyGameService) publishEvent(ctx context.Context, topic string, payload any) {
	if s.bus == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to marshal lifecycle event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.Error(err),
		)
		s.metrics.NotificationFailures.WithLabelValues(topic).Inc()
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if cid, ok := ctx.Value(attr.CorrelationIDKey).(string); ok && cid != "" {
		middleware.SetCorrelationID(cid, msg)
	}

	if err := s.bus.Publish(topic, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish lifecycle event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.Error(err),
		)
		s.metrics.NotificationFailures.WithLabelValues(topic).Inc()
	}
}
