package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"mangaverse/config"
	"mangaverse/domain/events"

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

// MetricsProvider manages OpenTelemetry metrics for the settlement service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	exporting     bool
	mu            sync.RWMutex

	gamesCompletedCounter        metric.Int64Counter
	rewardDistributionsCounter   metric.Int64Counter
	rewardRecipientsCounter      metric.Int64Counter
	referralGrantsCounter        metric.Int64Counter
	airdropClaimsCounter         metric.Int64Counter
	balanceTransactionsCounter   metric.Int64Counter
	natsMessagesPublishedCounter metric.Int64Counter
	httpRequestsCounter          metric.Int64Counter
	httpRequestDurationHist      metric.Float64Histogram
	dbTransactionsCounter        metric.Int64Counter
	dbTransactionDurationHist    metric.Float64Histogram
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

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
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

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
			),
		),
	)
	otel.SetMeterProvider(mp.meterProvider)

	if err := mp.createInstruments(mp.meterProvider.Meter("mangaverse-settlement")); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.exporting = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// InitializeWithReader wires the provider to a caller-supplied reader
func (mp *MetricsProvider) InitializeWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	if err := mp.createInstruments(mp.meterProvider.Meter("mangaverse-settlement")); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}
	mp.initialized = true
	mp.exporting = true
	return nil
}

func (mp *MetricsProvider) createInstruments(meter metric.Meter) error {
	mp.meter = meter

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.gamesCompletedCounter, GamesCompletedTotal, "Total number of settled games"},
		{&mp.rewardDistributionsCounter, RewardDistributionsTotal, "Total number of weekly distributions"},
		{&mp.rewardRecipientsCounter, RewardRecipientsTotal, "Total number of weekly reward credits"},
		{&mp.referralGrantsCounter, ReferralGrantsTotal, "Total number of referral grants"},
		{&mp.airdropClaimsCounter, AirdropClaimsTotal, "Total number of airdrop claims by status"},
		{&mp.balanceTransactionsCounter, BalanceTransactionsTotal, "Total number of balance transactions"},
		{&mp.natsMessagesPublishedCounter, NATSMessagesPublishedTotal, "Total number of NATS messages published"},
		{&mp.httpRequestsCounter, HTTPRequestsTotal, "Total number of HTTP requests"},
		{&mp.dbTransactionsCounter, DatabaseTransactionsTotal, "Total number of units of work"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.description), metric.WithUnit("1"))
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.name, err)
		}
		*c.target = counter
	}

	var err error
	mp.httpRequestDurationHist, err = meter.Float64Histogram(
		HTTPRequestDuration,
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create http request duration histogram: %w", err)
	}

	mp.dbTransactionDurationHist, err = meter.Float64Histogram(
		DatabaseTransactionDuration,
		metric.WithDescription("Duration of units of work in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create database transaction duration histogram: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordEvent counts a published settlement event
func (mp *MetricsProvider) RecordEvent(ctx context.Context, event events.Event) error {
	if !mp.isEnabled() {
		return nil
	}

	mp.natsMessagesPublishedCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelEventType, string(event.Type())),
	))

	switch e := event.(type) {
	case events.BalanceChangeEvent:
		mp.balanceTransactionsCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String(LabelType, string(e.TransactionType)),
		))
	case events.GameCompletedEvent:
		mp.gamesCompletedCounter.Add(ctx, 1)
	case events.RewardDistributionEvent:
		mp.rewardDistributionsCounter.Add(ctx, 1)
		mp.rewardRecipientsCounter.Add(ctx, int64(e.Recipients))
	case events.ReferralGrantedEvent:
		mp.referralGrantsCounter.Add(ctx, 1)
	case events.AirdropClaimEvent:
		mp.airdropClaimsCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String(LabelStatus, string(e.Status)),
		))
	}
	return nil
}

// RecordHTTPRequest records one served request
func (mp *MetricsProvider) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelMethod, method),
		attribute.String(LabelRoute, route),
		attribute.String(LabelStatus, strconv.Itoa(status)),
	)
	mp.httpRequestsCounter.Add(context.Background(), 1, attrs)
	mp.httpRequestDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// RecordTransaction records one unit of work
func (mp *MetricsProvider) RecordTransaction(operation string, duration time.Duration, err error) {
	if !mp.isEnabled() {
		return
	}

	outcome := "committed"
	if err != nil {
		outcome = "rolled_back"
	}
	attrs := metric.WithAttributes(
		attribute.String(LabelOperation, operation),
		attribute.String(LabelOutcome, outcome),
	)
	mp.dbTransactionsCounter.Add(context.Background(), 1, attrs)
	mp.dbTransactionDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// MeasureTransaction returns a function recording a unit of work's duration
// Usage:
//
//	defer mp.MeasureTransaction("submit_move")(&err)
func (mp *MetricsProvider) MeasureTransaction(operation string) func(*error) {
	start := time.Now()
	return func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		mp.RecordTransaction(operation, time.Since(start), err)
	}
}

// isEnabled checks if metrics are initialized with a live meter
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.exporting
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider. A nil provider records nothing.
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
