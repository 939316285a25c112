package audit

import (
	"time"

	"github.com/santidev10/brand-safety-audit/internal/domain"
	"github.com/santidev10/brand-safety-audit/internal/lexicon"
	"github.com/santidev10/brand-safety-audit/internal/logging"
)

// Channel metadata hit multipliers. A keyword in the channel title weighs
// far more than one buried in the description.
var metadataWeights = map[domain.Location]int{
	domain.LocationTitle:       4,
	domain.LocationDescription: 1,
}

// ChannelAggregator rolls a channel's video scores up into a channel score
// and then applies penalties for keywords in the channel's own metadata.
// The order is fixed: averaging first, metadata penalties strictly after, so
// a dirty channel title cannot be diluted across many clean videos.
type ChannelAggregator struct {
	logger logging.Logger
}

// NewChannelAggregator creates a channel aggregator.
func NewChannelAggregator(logger logging.Logger) *ChannelAggregator {
	return &ChannelAggregator{logger: logger}
}

// Aggregate computes the channel's brand-safety result from the scored
// videos attached to it. Blocklist and vetting short-circuit like they do
// for videos. A channel with no scored videos and no override returns nil
// and keeps whatever result it had.
func (a *ChannelAggregator) Aggregate(channel *domain.Channel, lex *lexicon.Lexicon, now time.Time) *domain.ChannelAuditResult {
	scored := scoredVideos(channel.Videos)

	if channel.Blocklisted {
		return &domain.ChannelAuditResult{
			OverallScore: domain.MinScore,
			VideosScored: len(scored),
			Language:     channel.Language,
			Categories:   uniformCategories(lex.CategoryIDs(), domain.MinScore),
			UpdatedAt:    now,
		}
	}

	if channel.Vetting != nil {
		return &domain.ChannelAuditResult{
			OverallScore: vettingScore(channel.Vetting, lex),
			VideosScored: len(scored),
			Language:     channel.Language,
			Categories:   vettingCategories(lex.CategoryIDs(), channel.Vetting),
			UpdatedAt:    now,
		}
	}

	if len(scored) == 0 {
		return nil
	}

	overall, categories := averageVideoScores(scored, lex.CategoryIDs())

	// Metadata penalties come strictly after averaging.
	matcher := lex.MatcherFor(channel.Language)
	var hits []domain.KeywordHit
	hits = append(hits, matcher.FindHits(channel.Title, domain.LocationTitle)...)
	hits = append(hits, matcher.FindHits(channel.Description, domain.LocationDescription)...)

	for _, tally := range tallyKeywords(hits, matcher, metadataWeights, a.logger) {
		overall -= tally.score.Penalty()

		for i := range categories {
			if categories[i].CategoryID == tally.categoryID {
				categories[i] = categories[i].AddKeyword(tally.score)
				break
			}
		}
	}

	for i := range categories {
		categories[i].Score = domain.ClampScore(categories[i].Score)
	}

	return &domain.ChannelAuditResult{
		OverallScore: domain.ClampScore(overall),
		VideosScored: len(scored),
		Language:     channel.Language,
		Categories:   categories,
		UpdatedAt:    now,
	}
}

// scoredVideos filters the channel's videos down to the ones carrying a
// brand-safety result.
func scoredVideos(videos []*domain.Video) []*domain.Video {
	scored := make([]*domain.Video, 0, len(videos))
	for _, v := range videos {
		if v != nil && v.BrandSafety != nil {
			scored = append(scored, v)
		}
	}
	return scored
}

// averageVideoScores floor-averages the overall and per-category scores of
// the scored videos. A video without a given category contributes the
// maximum score for it. Keyword lists and severity tallies are merged across
// videos so the channel result shows what drove the average down.
func averageVideoScores(videos []*domain.Video, categoryIDs []int64) (int, []domain.CategoryScore) {
	n := len(videos)

	overallSum := 0
	sums := make(map[int64]int, len(categoryIDs))
	merged := make(map[int64]domain.CategoryScore, len(categoryIDs))
	for _, id := range categoryIDs {
		merged[id] = domain.CategoryScore{CategoryID: id}
	}

	for _, v := range videos {
		overallSum += v.BrandSafety.OverallScore

		seen := make(map[int64]struct{}, len(v.BrandSafety.Categories))
		for _, cat := range v.BrandSafety.Categories {
			seen[cat.CategoryID] = struct{}{}
			sums[cat.CategoryID] += cat.Score

			if prev, ok := merged[cat.CategoryID]; ok {
				merged[cat.CategoryID] = domain.MergeCategoryScores(prev, domain.CategoryScore{
					CategoryID:     cat.CategoryID,
					Keywords:       cat.Keywords,
					SeverityCounts: cat.SeverityCounts,
				})
			}
		}
		for _, id := range categoryIDs {
			if _, ok := seen[id]; !ok {
				sums[id] += domain.MaxScore
			}
		}
	}

	categories := make([]domain.CategoryScore, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		cat := merged[id]
		cat.Score = sums[id] / n
		categories = append(categories, cat)
	}
	domain.SortCategoryScores(categories)

	return overallSum / n, categories
}
