package processor

import (
	"context"
	"sync"

	"github.com/santidev10/brand-safety-audit/internal/domain"
	"github.com/santidev10/brand-safety-audit/internal/lexicon"
	"github.com/santidev10/brand-safety-audit/internal/logging"
)

// pageOutcome collects everything a processed page produced.
type pageOutcome struct {
	videos          []*domain.Video
	channels        []*domain.Channel
	rescoreChannels []string
	channelsScored  int
	videosScored    int
	failures        int
}

// subBatchResult is one worker's output for one sub-batch.
type subBatchResult struct {
	videos          []*domain.Video
	channels        []*domain.Channel
	rescoreChannels []string
	videosScored    int
	failures        int
}

// processPage fans a page of channels out to a worker pool in sub-batches.
// The pool is sized per page so a long run follows the working-hours window
// as it crosses it. Each worker compiles its own lexicon from the shared
// snapshot; a panic in one sub-batch fails that sub-batch only.
func (o *Orchestrator) processPage(ctx context.Context, channels []*domain.Channel) *pageOutcome {
	subBatches := splitChannels(channels, o.cfg.SubBatchSize)

	size := o.poolSize(o.now())
	if size > len(subBatches) {
		size = len(subBatches)
	}
	if o.telemetry != nil {
		o.telemetry.SetActiveWorkers(size)
		defer o.telemetry.SetActiveWorkers(0)
	}

	jobs := make(chan []*domain.Channel, len(subBatches))
	results := make(chan *subBatchResult, len(subBatches))

	var wg sync.WaitGroup
	for i := 0; i < size; i++ {
		wg.Add(1)
		go o.worker(ctx, i, jobs, results, &wg)
	}

	for _, batch := range subBatches {
		jobs <- batch
	}
	close(jobs)
	wg.Wait()
	close(results)

	outcome := &pageOutcome{}
	for result := range results {
		outcome.videos = append(outcome.videos, result.videos...)
		outcome.channels = append(outcome.channels, result.channels...)
		outcome.rescoreChannels = append(outcome.rescoreChannels, result.rescoreChannels...)
		outcome.channelsScored += len(result.channels)
		outcome.videosScored += result.videosScored
		outcome.failures += result.failures
	}
	return outcome
}

// worker compiles a lexicon once and processes sub-batches until the jobs
// channel drains.
func (o *Orchestrator) worker(ctx context.Context, id int, jobs <-chan []*domain.Channel, results chan<- *subBatchResult, wg *sync.WaitGroup) {
	defer wg.Done()

	lex, err := o.lexicons.Build(ctx)
	if err != nil {
		o.logger.Error("worker lexicon build failed",
			logging.Int("worker", id),
			logging.Error(err))
		for batch := range jobs {
			results <- &subBatchResult{failures: len(batch)}
		}
		return
	}

	for batch := range jobs {
		results <- o.processSubBatch(ctx, lex, batch)
	}
}

// processSubBatch audits a slice of channels. A panic while scoring is
// contained here: the sub-batch is reported as failed and the worker moves
// on to the next one.
func (o *Orchestrator) processSubBatch(ctx context.Context, lex *lexicon.Lexicon, batch []*domain.Channel) (result *subBatchResult) {
	result = &subBatchResult{}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("sub-batch panicked",
				logging.Int("channels", len(batch)),
				logging.Any("panic", r))
			result = &subBatchResult{failures: len(batch)}
		}
	}()

	for _, channel := range batch {
		if err := ctx.Err(); err != nil {
			result.failures++
			continue
		}
		scored, err := o.auditChannel(ctx, lex, channel)
		if err != nil {
			o.logger.Error("channel audit failed",
				logging.String("channel_id", channel.ID),
				logging.Error(err))
			if o.telemetry != nil {
				o.telemetry.RecordItemFailed(ctx, "channel")
			}
			result.failures++
			continue
		}
		if scored == nil {
			continue
		}

		result.channels = append(result.channels, channel)
		result.videos = append(result.videos, scored.videos...)
		result.videosScored += len(scored.videos)
		if scored.rescore {
			result.rescoreChannels = append(result.rescoreChannels, channel.ID)
		}
	}
	return result
}

// channelOutcome reports what auditing one channel produced.
type channelOutcome struct {
	videos  []*domain.Video
	rescore bool
}

// auditChannel scores every video of a channel and aggregates the channel
// result. It returns nil when the channel produced no result (no scorable
// videos and no override).
func (o *Orchestrator) auditChannel(ctx context.Context, lex *lexicon.Lexicon, channel *domain.Channel) (*channelOutcome, error) {
	if !channel.Valid() {
		o.logger.Warn("skipping channel with missing fields",
			logging.String("channel_id", channel.ID))
		return nil, nil
	}

	videos, err := o.store.VideosByChannel(ctx, channel.ID, o.cfg.SearchLimit)
	if err != nil {
		return nil, err
	}
	channel.Videos = videos

	now := o.now()
	outcome := &channelOutcome{}
	for _, video := range videos {
		if !video.Valid() {
			o.logger.Warn("skipping video with missing fields",
				logging.String("video_id", video.ID),
				logging.String("channel_id", channel.ID))
			continue
		}

		start := o.now()
		video.BrandSafety = o.scorer.Score(video, channel, lex, now)
		if o.telemetry != nil {
			o.telemetry.RecordVideoScored(ctx, string(o.cfg.Mode), o.now().Sub(start))
			if hits := video.BrandSafety.KeywordHits(); hits > 0 {
				o.telemetry.RecordKeywordHits(ctx, hits)
			}
		}
		outcome.videos = append(outcome.videos, video)

		if video.BrandSafety.OverallScore < o.cfg.RescoreThreshold {
			video.BrandSafety.Rescore = true
			outcome.rescore = true
		}
	}

	start := o.now()
	channel.BrandSafety = o.aggregator.Aggregate(channel, lex, now)
	if channel.BrandSafety == nil {
		return nil, nil
	}
	if o.telemetry != nil {
		o.telemetry.RecordChannelScored(ctx, string(o.cfg.Mode), o.now().Sub(start))
	}
	return outcome, nil
}

// splitChannels slices channels into sub-batches of at most size.
func splitChannels(channels []*domain.Channel, size int) [][]*domain.Channel {
	if size <= 0 {
		size = len(channels)
	}
	var batches [][]*domain.Channel
	for start := 0; start < len(channels); start += size {
		end := start + size
		if end > len(channels) {
			end = len(channels)
		}
		batches = append(batches, channels[start:end])
	}
	return batches
}
