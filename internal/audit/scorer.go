// Package audit scores videos and aggregates channel scores from keyword
// hits, blocklist state and manual vetting results.
package audit

import (
	"time"

	"github.com/santidev10/brand-safety-audit/internal/domain"
	"github.com/santidev10/brand-safety-audit/internal/lexicon"
	"github.com/santidev10/brand-safety-audit/internal/logging"
)

// VideoScorer computes a full brand-safety result for a single video.
// Blocklist and vetting short-circuit keyword matching entirely; everything
// else starts from the maximum score and loses severity points per keyword
// occurrence.
type VideoScorer struct {
	logger logging.Logger
}

// NewVideoScorer creates a video scorer.
func NewVideoScorer(logger logging.Logger) *VideoScorer {
	return &VideoScorer{logger: logger}
}

// Score computes the brand-safety result for video. channel may be nil when
// the channel document is unavailable; only its blocklist state is consulted
// here. The returned result always replaces the stored one whole, which also
// clears any pending rescore flag.
func (s *VideoScorer) Score(video *domain.Video, channel *domain.Channel, lex *lexicon.Lexicon, now time.Time) *domain.VideoAuditResult {
	if video.HasBlocklist(channel) {
		return &domain.VideoAuditResult{
			OverallScore: domain.MinScore,
			Language:     video.Language,
			Categories:   uniformCategories(lex.CategoryIDs(), domain.MinScore),
			UpdatedAt:    now,
		}
	}

	if video.Vetting != nil {
		return &domain.VideoAuditResult{
			OverallScore: vettingScore(video.Vetting, lex),
			Language:     video.Language,
			Categories:   vettingCategories(lex.CategoryIDs(), video.Vetting),
			UpdatedAt:    now,
		}
	}

	matcher := lex.MatcherFor(video.Language)
	hits := s.collectHits(video, matcher)

	categories, overall := s.scoreHits(hits, matcher, lex.CategoryIDs())
	return &domain.VideoAuditResult{
		OverallScore: overall,
		Language:     video.Language,
		Categories:   categories,
		UpdatedAt:    now,
	}
}

// collectHits runs the matcher over every text field of the video. A single
// transcript is chosen by language priority: english first, then the video's
// own language, then whatever comes first.
func (s *VideoScorer) collectHits(video *domain.Video, matcher *lexicon.Matcher) []domain.KeywordHit {
	var hits []domain.KeywordHit
	hits = append(hits, matcher.FindHits(video.Title, domain.LocationTitle)...)
	hits = append(hits, matcher.FindHits(video.Description, domain.LocationDescription)...)
	for _, tag := range video.Tags {
		hits = append(hits, matcher.FindHits(tag, domain.LocationTags)...)
	}
	if t := selectTranscript(video); t != nil {
		hits = append(hits, matcher.FindHits(t.Text, domain.LocationTranscript)...)
	}
	return hits
}

// scoreHits turns raw hits into per-category scores plus the overall score.
// Every category starts at the maximum and loses severity points per
// occurrence; both the categories and the overall score are clamped at 0.
func (s *VideoScorer) scoreHits(hits []domain.KeywordHit, matcher *lexicon.Matcher, categoryIDs []int64) ([]domain.CategoryScore, int) {
	byCategory := make(map[int64]domain.CategoryScore)
	for _, id := range categoryIDs {
		byCategory[id] = domain.CategoryScore{CategoryID: id, Score: domain.MaxScore}
	}

	overall := domain.MaxScore
	for _, tally := range tallyKeywords(hits, matcher, nil, s.logger) {
		overall -= tally.score.Penalty()

		cat, ok := byCategory[tally.categoryID]
		if !ok {
			cat = domain.CategoryScore{CategoryID: tally.categoryID, Score: domain.MaxScore}
		}
		byCategory[tally.categoryID] = cat.AddKeyword(tally.score)
	}

	categories := make([]domain.CategoryScore, 0, len(byCategory))
	for _, cat := range byCategory {
		cat.Score = domain.ClampScore(cat.Score)
		categories = append(categories, cat)
	}
	domain.SortCategoryScores(categories)

	return categories, domain.ClampScore(overall)
}

// selectTranscript picks the transcript to score: english when available,
// then the video's own language, then the first non-empty one.
func selectTranscript(video *domain.Video) *domain.Transcript {
	var fallback *domain.Transcript
	for i := range video.Transcripts {
		t := &video.Transcripts[i]
		if t.Text == "" {
			continue
		}
		if t.Language == "en" {
			return t
		}
		if fallback == nil || (t.Language == video.Language && fallback.Language != video.Language) {
			fallback = t
		}
	}
	return fallback
}

// vettingScore maps a vetting result to an overall score: any unsafe
// category forces 0 unless the category is vetted-excluded, a clean review
// forces the maximum.
func vettingScore(v *domain.Vetting, lex *lexicon.Lexicon) int {
	for _, id := range v.UnsafeCategories {
		if !lex.VettedExcluded(id) {
			return domain.MinScore
		}
	}
	return domain.MaxScore
}

// vettingCategories builds per-category scores for a vetted item: unsafe
// categories score 0, everything else scores the maximum.
func vettingCategories(categoryIDs []int64, v *domain.Vetting) []domain.CategoryScore {
	unsafe := make(map[int64]struct{}, len(v.UnsafeCategories))
	for _, id := range v.UnsafeCategories {
		unsafe[id] = struct{}{}
	}

	categories := make([]domain.CategoryScore, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		score := domain.MaxScore
		if _, ok := unsafe[id]; ok {
			score = domain.MinScore
		}
		categories = append(categories, domain.CategoryScore{CategoryID: id, Score: score})
	}
	return categories
}

// uniformCategories builds a category list where every category carries the
// same score.
func uniformCategories(categoryIDs []int64, score int) []domain.CategoryScore {
	categories := make([]domain.CategoryScore, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		categories = append(categories, domain.CategoryScore{CategoryID: id, Score: score})
	}
	return categories
}
