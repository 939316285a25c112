package processor

import (
	"context"
	"fmt"

	"github.com/santidev10/brand-safety-audit/internal/domain"
	"github.com/santidev10/brand-safety-audit/internal/logging"
)

// AuditVideo scores one video on demand and persists the result. Unlike the
// batch walk, every failure surfaces to the caller.
func (o *Orchestrator) AuditVideo(ctx context.Context, videoID string) (*domain.Video, error) {
	videos, err := o.store.GetVideos(ctx, []string{videoID})
	if err != nil {
		return nil, fmt.Errorf("fetch video %s: %w", videoID, err)
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	}
	video := videos[0]
	if !video.Valid() {
		return nil, fmt.Errorf("video %s is missing required fields", videoID)
	}

	var channel *domain.Channel
	if video.ChannelID != "" {
		channels, err := o.store.GetChannels(ctx, []string{video.ChannelID})
		if err != nil {
			return nil, fmt.Errorf("fetch channel %s: %w", video.ChannelID, err)
		}
		if len(channels) > 0 {
			channel = channels[0]
		}
	}

	lex, err := o.lexicons.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build lexicon: %w", err)
	}

	video.BrandSafety = o.scorer.Score(video, channel, lex, o.now())
	if video.BrandSafety.OverallScore < o.cfg.RescoreThreshold {
		video.BrandSafety.Rescore = true
	}
	if err := o.store.UpsertVideos(ctx, []*domain.Video{video}); err != nil {
		return nil, fmt.Errorf("persist video result: %w", err)
	}

	if video.BrandSafety.OverallScore < o.cfg.RescoreThreshold && o.queue != nil && video.ChannelID != "" {
		if err := o.queue.Push(ctx, video.ChannelID); err != nil {
			o.logger.Warn("rescore enqueue failed after manual video audit",
				logging.String("video_id", video.ID),
				logging.String("channel_id", video.ChannelID),
				logging.Error(err))
		}
	}
	return video, nil
}

// AuditChannel audits one channel on demand: all of its videos are scored,
// the channel result is aggregated, and everything is persisted.
func (o *Orchestrator) AuditChannel(ctx context.Context, channelID string) (*domain.Channel, error) {
	channels, err := o.store.GetChannels(ctx, []string{channelID})
	if err != nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}
	channel := channels[0]

	lex, err := o.lexicons.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build lexicon: %w", err)
	}

	scored, err := o.auditChannel(ctx, lex, channel)
	if err != nil {
		return nil, fmt.Errorf("audit channel %s: %w", channelID, err)
	}
	if scored == nil {
		return channel, nil
	}

	if err := o.store.UpsertVideos(ctx, scored.videos); err != nil {
		return nil, fmt.Errorf("persist video results: %w", err)
	}
	if err := o.store.UpsertChannels(ctx, []*domain.Channel{channel}); err != nil {
		return nil, fmt.Errorf("persist channel result: %w", err)
	}
	return channel, nil
}
