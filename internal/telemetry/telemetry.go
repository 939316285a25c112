// Package telemetry provides OpenTelemetry instrumentation for the audit
// service. It exports Prometheus metrics and provides tracing capabilities.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "brand-safety-audit"

// Metrics holds all audit Prometheus metrics.
type Metrics struct {
	// Scoring metrics
	VideosScored    *prometheus.CounterVec
	ChannelsScored  *prometheus.CounterVec
	ItemsFailed     *prometheus.CounterVec
	ScoringDuration *prometheus.HistogramVec
	BatchSize       prometheus.Histogram

	// Lexicon metrics
	LexiconCompileDuration prometheus.Histogram
	LexiconRules           prometheus.Gauge
	KeywordHits            prometheus.Counter

	// Orchestration metrics
	PagesProcessed *prometheus.CounterVec
	ActiveWorkers  prometheus.Gauge
	RescoreQueued  prometheus.Counter
	RescoreDepth   prometheus.Gauge

	// Persistence metrics
	UpsertDuration prometheus.Histogram
	UpsertFailed   prometheus.Counter
}

// Provider wraps telemetry providers.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics.
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initScoringMetrics(m)
	initLexiconMetrics(m)
	initOrchestrationMetrics(m)
	initPersistenceMetrics(m)
	return m
}

func initScoringMetrics(m *Metrics) {
	m.VideosScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_videos_scored_total",
		Help: "Total videos scored, by run mode",
	}, []string{"mode"})

	m.ChannelsScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_channels_scored_total",
		Help: "Total channels aggregated, by run mode",
	}, []string{"mode"})

	m.ItemsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_items_failed_total",
		Help: "Total items that failed scoring",
	}, []string{"kind"})

	m.ScoringDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "audit_scoring_duration_seconds",
		Help:    "Time to score a single item",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"kind"})

	m.BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "audit_batch_size",
		Help:    "Number of items per processed page",
		Buckets: []float64{1, 5, 10, 25, 40, 100, 200, 500},
	})
}

func initLexiconMetrics(m *Metrics) {
	m.LexiconCompileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "audit_lexicon_compile_duration_seconds",
		Help:    "Time to compile the keyword lexicon",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	m.LexiconRules = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audit_lexicon_rules",
		Help: "Keyword rules in the last compiled lexicon",
	})

	m.KeywordHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_keyword_hits_total",
		Help: "Total keyword occurrences found",
	})
}

func initOrchestrationMetrics(m *Metrics) {
	m.PagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_pages_processed_total",
		Help: "Total cursor pages processed, by run mode",
	}, []string{"mode"})

	m.ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audit_active_workers",
		Help: "Currently active scoring workers",
	})

	m.RescoreQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_rescore_queued_total",
		Help: "Total channels queued for rescoring",
	})

	m.RescoreDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audit_rescore_queue_depth",
		Help: "Channels currently waiting in the rescore queue",
	})
}

func initPersistenceMetrics(m *Metrics) {
	m.UpsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "audit_upsert_duration_seconds",
		Help:    "Time to persist a result batch",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	m.UpsertFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_upsert_failed_total",
		Help: "Total result batches that failed to persist",
	})
}

// RecordVideoScored records metrics for one scored video.
func (p *Provider) RecordVideoScored(_ context.Context, mode string, duration time.Duration) {
	p.Metrics.VideosScored.WithLabelValues(mode).Inc()
	p.Metrics.ScoringDuration.WithLabelValues("video").Observe(duration.Seconds())
}

// RecordChannelScored records metrics for one aggregated channel.
func (p *Provider) RecordChannelScored(_ context.Context, mode string, duration time.Duration) {
	p.Metrics.ChannelsScored.WithLabelValues(mode).Inc()
	p.Metrics.ScoringDuration.WithLabelValues("channel").Observe(duration.Seconds())
}

// RecordItemFailed records a scoring failure.
func (p *Provider) RecordItemFailed(_ context.Context, kind string) {
	p.Metrics.ItemsFailed.WithLabelValues(kind).Inc()
}

// RecordLexiconCompile records a lexicon build.
func (p *Provider) RecordLexiconCompile(_ context.Context, duration time.Duration, rules int) {
	p.Metrics.LexiconCompileDuration.Observe(duration.Seconds())
	p.Metrics.LexiconRules.Set(float64(rules))
}

// RecordKeywordHits adds to the running occurrence counter.
func (p *Provider) RecordKeywordHits(_ context.Context, hits int) {
	p.Metrics.KeywordHits.Add(float64(hits))
}

// RecordPage records one processed cursor page.
func (p *Provider) RecordPage(_ context.Context, mode string, items int) {
	p.Metrics.PagesProcessed.WithLabelValues(mode).Inc()
	p.Metrics.BatchSize.Observe(float64(items))
}

// RecordUpsert records a persistence attempt.
func (p *Provider) RecordUpsert(_ context.Context, duration time.Duration, err error) {
	p.Metrics.UpsertDuration.Observe(duration.Seconds())
	if err != nil {
		p.Metrics.UpsertFailed.Inc()
	}
}

// RecordRescoreQueued counts channels pushed to the rescore queue.
func (p *Provider) RecordRescoreQueued(_ context.Context, count int) {
	p.Metrics.RescoreQueued.Add(float64(count))
}

// SetRescoreDepth sets the current rescore queue depth.
func (p *Provider) SetRescoreDepth(depth int64) {
	p.Metrics.RescoreDepth.Set(float64(depth))
}

// SetActiveWorkers sets the current active worker count.
func (p *Provider) SetActiveWorkers(count int) {
	p.Metrics.ActiveWorkers.Set(float64(count))
}

// StartSpan starts a trace span.
func (p *Provider) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, name)
}
