package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"predictor/config"
	"predictor/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the prediction game
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	reader        sdkmetric.Reader // overrides the configured exporter, used by tests
	initialized   bool
	mu            sync.RWMutex

	// Metric instruments
	questionsCreatedCounter      metric.Int64Counter
	questionsResolvedCounter     metric.Int64Counter
	votesCastCounter             metric.Int64Counter
	predictionsScoredCounter     metric.Int64Counter
	xpAwardedCounter             metric.Int64Counter
	usersCreatedCounter          metric.Int64Counter
	leaderboardRefreshesCounter  metric.Int64Counter
	expirySweptCounter           metric.Int64Counter
	natsMessagesPublishedCounter metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	reader := mp.reader
	if reader == nil {
		var exporter sdkmetric.Exporter
		switch mp.config.OTelExporterType {
		case "console":
			exporter, err = stdoutmetric.New()
			if err != nil {
				return fmt.Errorf("failed to create console exporter: %w", err)
			}
			log.Info("Using console metric exporter")

		case "otlp":
			dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			exporter, err = otlpmetricgrpc.New(dialCtx,
				otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
				otlpmetricgrpc.WithInsecure(),
			)
			if err != nil {
				return fmt.Errorf("failed to create OTLP exporter: %w", err)
			}
			log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

		case "none":
			log.Info("Metrics export disabled (exporter_type='none')")
			mp.initialized = true
			return nil

		default:
			return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
		}

		reader = sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
		)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("predictor")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.questionsCreatedCounter, QuestionsCreatedTotal, "Total number of questions created"},
		{&mp.questionsResolvedCounter, QuestionsResolvedTotal, "Total number of questions resolved"},
		{&mp.votesCastCounter, VotesCastTotal, "Total number of votes recorded"},
		{&mp.predictionsScoredCounter, PredictionsScoredTotal, "Total number of voter predictions scored"},
		{&mp.xpAwardedCounter, XPAwardedTotal, "Total XP awarded to correct predictors"},
		{&mp.usersCreatedCounter, UsersCreatedTotal, "Total number of players registered"},
		{&mp.leaderboardRefreshesCounter, LeaderboardRefreshesTotal, "Total number of leaderboard refresh attempts"},
		{&mp.expirySweptCounter, ExpirySweptTotal, "Total number of expired questions handled by the startup sweep"},
		{&mp.natsMessagesPublishedCounter, NATSMessagesPublishedTotal, "Total number of NATS messages published"},
	}

	for _, c := range counters {
		counter, err := mp.meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit("1"),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
		*c.target = counter
	}
	return nil
}

// Attach records every event emitted on the bus
func (mp *MetricsProvider) Attach(bus *events.Bus) {
	bus.SubscribeAll(mp.HandleEvent)
}

// HandleEvent updates the counters matching one event
func (mp *MetricsProvider) HandleEvent(ctx context.Context, event events.Event) {
	if !mp.isEnabled() {
		return
	}

	switch e := event.(type) {
	case events.QuestionCreatedEvent:
		mp.questionsCreatedCounter.Add(ctx, 1)

	case events.VoteCastEvent:
		mp.votesCastCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String(LabelChoice, e.Choice),
		))

	case events.QuestionResolvedEvent:
		mp.questionsResolvedCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String(LabelOutcome, strconv.FormatBool(e.Outcome)),
		))

	case events.PredictionScoredEvent:
		mp.predictionsScoredCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.Bool(LabelCorrect, e.Correct),
		))
		if e.XPAwarded > 0 {
			mp.xpAwardedCounter.Add(ctx, e.XPAwarded)
		}

	case events.UserCreatedEvent:
		mp.usersCreatedCounter.Add(ctx, 1)

	case events.LeaderboardRefreshedEvent:
		mp.leaderboardRefreshesCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String(LabelResult, e.Result),
		))

	case events.ExpirySweepCompletedEvent:
		mp.addSweep(ctx, SweepResultResolveControls, e.WithResolveButton)
		mp.addSweep(ctx, SweepResultVotingOnly, e.VotingOnly)
		mp.addSweep(ctx, SweepResultFailed, e.Failed)
	}
}

func (mp *MetricsProvider) addSweep(ctx context.Context, result string, n int) {
	if n == 0 {
		return
	}
	mp.expirySweptCounter.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String(LabelResult, result),
	))
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelEventType, eventType),
		),
	)
}

// Shutdown flushes and stops the exporter
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// isEnabled checks if metrics are enabled and instruments exist
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meter != nil
}
