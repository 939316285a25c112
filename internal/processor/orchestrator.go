// Package processor orchestrates audit runs: it walks the channel corpus in
// cursor-paged batches, fans channels out to a bounded worker pool for
// scoring, persists results and queues rescores.
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/santidev10/brand-safety-audit/internal/audit"
	"github.com/santidev10/brand-safety-audit/internal/domain"
	"github.com/santidev10/brand-safety-audit/internal/lexicon"
	"github.com/santidev10/brand-safety-audit/internal/logging"
	"github.com/santidev10/brand-safety-audit/internal/rescore"
	"github.com/santidev10/brand-safety-audit/internal/retry"
	"github.com/santidev10/brand-safety-audit/internal/storage"
	"github.com/santidev10/brand-safety-audit/internal/telemetry"
)

// ErrNotFound is returned by the manual entry points when the requested item
// does not exist in the document store.
var ErrNotFound = errors.New("item not found")

// DocumentStore is the slice of the storage adapter the orchestrator needs.
type DocumentStore interface {
	SearchChannels(ctx context.Context, query *storage.Query) ([]*domain.Channel, error)
	GetVideos(ctx context.Context, ids []string) ([]*domain.Video, error)
	GetChannels(ctx context.Context, ids []string) ([]*domain.Channel, error)
	VideosByChannel(ctx context.Context, channelID string, limit int) ([]*domain.Video, error)
	UpsertVideos(ctx context.Context, videos []*domain.Video) error
	UpsertChannels(ctx context.Context, channels []*domain.Channel) error
}

// CursorStore persists run progress between pages and runs.
type CursorStore interface {
	Get(ctx context.Context, mode domain.AuditMode) (*domain.Cursor, error)
	Save(ctx context.Context, cursor *domain.Cursor) error
	Reset(ctx context.Context, mode domain.AuditMode) error
}

// LexiconBuilder builds compiled lexicons; each worker builds its own.
type LexiconBuilder interface {
	Build(ctx context.Context) (*lexicon.Lexicon, error)
}

// Config holds orchestrator tunables.
type Config struct {
	Mode             domain.AuditMode
	BatchSize        int
	SubBatchSize     int
	BatchLimit       int
	RescoreThreshold int
	UpdateThreshold  time.Duration
	MinSubscribers   int64
	SearchLimit      int

	Concurrency        int
	OffHoursMultiplier int
	WorkingHoursStart  int
	WorkingHoursEnd    int
}

// RunStats summarizes one orchestrator run.
type RunStats struct {
	RunID           string
	Mode            domain.AuditMode
	Pages           int
	PagesFailed     int
	ChannelsScored  int
	VideosScored    int
	Failures        int
	RescoreQueued   int
	CorpusExhausted bool
}

// Orchestrator drives audit runs end to end.
type Orchestrator struct {
	store      DocumentStore
	cursors    CursorStore
	lexicons   LexiconBuilder
	scorer     *audit.VideoScorer
	aggregator *audit.ChannelAggregator
	queue      rescore.Queue
	limiter    *RateLimiter
	telemetry  *telemetry.Provider
	logger     logging.Logger
	cfg        Config

	now func() time.Time
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(
	store DocumentStore,
	cursors CursorStore,
	lexicons LexiconBuilder,
	queue rescore.Queue,
	limiter *RateLimiter,
	tel *telemetry.Provider,
	logger logging.Logger,
	cfg Config,
) *Orchestrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 40
	}
	if cfg.SubBatchSize <= 0 {
		cfg.SubBatchSize = 10
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 500
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.OffHoursMultiplier <= 0 {
		cfg.OffHoursMultiplier = 1
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 10000
	}

	return &Orchestrator{
		store:      store,
		cursors:    cursors,
		lexicons:   lexicons,
		scorer:     audit.NewVideoScorer(logger),
		aggregator: audit.NewChannelAggregator(logger),
		queue:      queue,
		limiter:    limiter,
		telemetry:  tel,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Run walks the corpus for the configured mode until the corpus is exhausted
// or the page safety valve trips. The cursor is saved after every page's
// persistence attempt, so an interrupted run resumes without skipping items.
// Store failures mid-walk never abort the run: a page whose fetch or persist
// outlasts its retries is counted as failed and the walk moves on.
func (o *Orchestrator) Run(ctx context.Context) (*RunStats, error) {
	if !o.cfg.Mode.Valid() {
		return nil, fmt.Errorf("unknown audit mode %q", o.cfg.Mode)
	}

	stats := &RunStats{RunID: uuid.New().String(), Mode: o.cfg.Mode}
	log := o.logger.With(
		logging.String("run_id", stats.RunID),
		logging.String("mode", string(o.cfg.Mode)),
	)
	log.Info("audit run starting")

	cursor, err := o.cursors.Get(ctx, o.cfg.Mode)
	if err != nil {
		return nil, fmt.Errorf("load cursor: %w", err)
	}

	if err := o.drainRescoreQueue(ctx, log, stats); err != nil {
		// A broken rescore queue should not block the main walk.
		log.Warn("rescore queue drain failed", logging.Error(err))
	}

	for stats.Pages < o.cfg.BatchLimit {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return stats, err
			}
		}

		channels, err := o.fetchPage(ctx, cursor)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			// Without the page there is no boundary to skip past; end the
			// walk here and resume from the saved cursor next run.
			log.Error("channel page fetch failed, ending walk", logging.Error(err))
			stats.PagesFailed++
			break
		}
		if len(channels) == 0 {
			stats.CorpusExhausted = true
			break
		}

		due := channels
		if o.cfg.Mode == domain.ModeUpdate {
			due = o.dueChannels(channels)
		}

		if len(due) > 0 {
			outcome := o.processPage(ctx, due)
			stats.VideosScored += outcome.videosScored
			stats.Failures += outcome.failures

			if err := o.persist(ctx, outcome); err != nil {
				if ctx.Err() != nil {
					return stats, ctx.Err()
				}
				// Upsert was attempted; skip the page so the walk continues.
				// The channels come back around on the next update walk.
				log.Error("page persist failed, skipping page",
					logging.Int("channels", len(due)),
					logging.Error(err))
				stats.PagesFailed++
				stats.Failures += outcome.channelsScored
			} else {
				stats.ChannelsScored += outcome.channelsScored
				o.enqueueRescores(ctx, log, outcome.rescoreChannels, stats)
			}
		}

		stats.Pages++
		if o.telemetry != nil {
			o.telemetry.RecordPage(ctx, string(o.cfg.Mode), len(channels))
		}

		// Advance past the last seen channel, processed or skipped.
		cursor.LastItemID = nextCursorID(channels[len(channels)-1].ID)
		if err := o.cursors.Save(ctx, cursor); err != nil {
			return stats, fmt.Errorf("save cursor: %w", err)
		}

		if len(channels) < o.cfg.BatchSize {
			stats.CorpusExhausted = true
			break
		}
	}

	if stats.CorpusExhausted {
		// Start from the top next run.
		if err := o.cursors.Reset(ctx, o.cfg.Mode); err != nil {
			log.Warn("cursor reset failed", logging.Error(err))
		}
	}

	log.Info("audit run finished",
		logging.Int("pages", stats.Pages),
		logging.Int("pages_failed", stats.PagesFailed),
		logging.Int("channels_scored", stats.ChannelsScored),
		logging.Int("videos_scored", stats.VideosScored),
		logging.Int("failures", stats.Failures),
		logging.Int("rescore_queued", stats.RescoreQueued),
		logging.Bool("corpus_exhausted", stats.CorpusExhausted))
	return stats, nil
}

// fetchPage pulls the next channel page, retrying transient store failures.
func (o *Orchestrator) fetchPage(ctx context.Context, cursor *domain.Cursor) ([]*domain.Channel, error) {
	var channels []*domain.Channel
	err := retry.RetryWithDefaults(ctx, func() error {
		var err error
		channels, err = o.store.SearchChannels(ctx, o.pageQuery(cursor))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch channel page: %w", err)
	}
	return channels, nil
}

// pageQuery builds the channel page query for the current mode and cursor.
func (o *Orchestrator) pageQuery(cursor *domain.Cursor) *storage.Query {
	query := storage.NewQuery(
		storage.RangeGte("subscribers", o.cfg.MinSubscribers),
	).Size(o.cfg.BatchSize).SortAsc("id")

	switch o.cfg.Mode {
	case domain.ModeDiscovery:
		query.Where(storage.NotExists("brand_safety"))
	case domain.ModeUpdate:
		query.Where(storage.Exists("brand_safety"))
	}

	if cursor.LastItemID != "" {
		query.Where(storage.RangeGte("id", cursor.LastItemID))
	}
	return query
}

// dueChannels filters an update-mode page down to channels whose result is
// stale or no longer covers all their videos.
func (o *Orchestrator) dueChannels(channels []*domain.Channel) []*domain.Channel {
	now := o.now()
	due := make([]*domain.Channel, 0, len(channels))
	for _, c := range channels {
		if c.BrandSafety == nil {
			due = append(due, c)
			continue
		}
		stale := now.Sub(c.BrandSafety.UpdatedAt) > o.cfg.UpdateThreshold
		incomplete := c.VideoCount > 0 && c.BrandSafety.VideosScored != c.VideoCount
		if stale || incomplete {
			due = append(due, c)
		}
	}
	return due
}

// drainRescoreQueue audits channels flagged for rescoring before the main
// walk so bad channels do not wait for the cursor to come back around.
func (o *Orchestrator) drainRescoreQueue(ctx context.Context, log logging.Logger, stats *RunStats) error {
	if o.queue == nil {
		return nil
	}

	ids, err := o.queue.Pop(ctx, o.cfg.BatchSize)
	if err != nil {
		if errors.Is(err, rescore.ErrEmpty) {
			o.recordQueueDepth(ctx)
			return nil
		}
		return err
	}
	o.recordQueueDepth(ctx)

	channels, err := o.store.GetChannels(ctx, ids)
	if err != nil {
		return fmt.Errorf("fetch rescore channels: %w", err)
	}
	if len(channels) == 0 {
		return nil
	}

	log.Info("rescoring flagged channels", logging.Int("count", len(channels)))
	outcome := o.processPage(ctx, channels)
	stats.ChannelsScored += outcome.channelsScored
	stats.VideosScored += outcome.videosScored
	stats.Failures += outcome.failures

	if err := o.persist(ctx, outcome); err != nil {
		return fmt.Errorf("persist rescore results: %w", err)
	}
	return nil
}

// recordQueueDepth refreshes the rescore queue depth gauge.
func (o *Orchestrator) recordQueueDepth(ctx context.Context) {
	if o.queue == nil || o.telemetry == nil {
		return
	}
	if depth, err := o.queue.Len(ctx); err == nil {
		o.telemetry.SetRescoreDepth(depth)
	}
}

// persist upserts the page's videos then channels, retrying transient
// failures. Channels go second so a channel result never outlives the video
// scores it was averaged from.
func (o *Orchestrator) persist(ctx context.Context, outcome *pageOutcome) error {
	start := o.now()
	err := retry.RetryWithDefaults(ctx, func() error {
		if err := o.store.UpsertVideos(ctx, outcome.videos); err != nil {
			return err
		}
		return o.store.UpsertChannels(ctx, outcome.channels)
	})
	if o.telemetry != nil {
		o.telemetry.RecordUpsert(ctx, o.now().Sub(start), err)
	}
	return err
}

// enqueueRescores pushes flagged channels to the rescore queue. Queue
// failures are logged, not fatal: the affected channels get picked up by the
// next update walk anyway.
func (o *Orchestrator) enqueueRescores(ctx context.Context, log logging.Logger, channelIDs []string, stats *RunStats) {
	if o.queue == nil || len(channelIDs) == 0 {
		return
	}
	if err := o.queue.Push(ctx, channelIDs...); err != nil {
		log.Warn("rescore enqueue failed",
			logging.Int("channels", len(channelIDs)),
			logging.Error(err))
		return
	}
	stats.RescoreQueued += len(channelIDs)
	if o.telemetry != nil {
		o.telemetry.RecordRescoreQueued(ctx, len(channelIDs))
	}
	o.recordQueueDepth(ctx)
}

// poolSize returns the worker pool size for the given instant. Outside the
// working-hours window the corpus has the machine to itself, so the pool
// grows by the off-hours multiplier.
func (o *Orchestrator) poolSize(t time.Time) int {
	hour := t.Hour()
	if hour >= o.cfg.WorkingHoursStart && hour < o.cfg.WorkingHoursEnd {
		return o.cfg.Concurrency
	}
	return o.cfg.Concurrency * o.cfg.OffHoursMultiplier
}

// nextCursorID returns the smallest id strictly greater than id, so resuming
// with a gte filter never reprocesses the last item of a page.
func nextCursorID(id string) string {
	return id + "\x00"
}
