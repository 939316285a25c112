package audit

import (
	"sort"

	"github.com/santidev10/brand-safety-audit/internal/domain"
	"github.com/santidev10/brand-safety-audit/internal/lexicon"
	"github.com/santidev10/brand-safety-audit/internal/logging"
)

// keywordTally is one keyword's aggregated occurrences with its category.
type keywordTally struct {
	categoryID int64
	score      domain.KeywordScore
}

// tallyKeywords aggregates raw hits per keyword and resolves each keyword's
// category and severity through the matcher. weights maps a location to its
// hit multiplier; a nil map counts every hit once, a missing location drops
// the hit. Keywords the matcher matched but can no longer score are logged
// and skipped. The result is sorted by keyword.
func tallyKeywords(hits []domain.KeywordHit, matcher *lexicon.Matcher, weights map[domain.Location]int, logger logging.Logger) []keywordTally {
	type agg struct {
		score domain.RuleScore
		hits  int
	}
	byKeyword := make(map[string]*agg)

	for _, hit := range hits {
		weight := 1
		if weights != nil {
			weight = weights[hit.Location]
			if weight == 0 {
				continue
			}
		}

		a, ok := byKeyword[hit.Keyword]
		if !ok {
			score, found := matcher.Score(hit.Keyword)
			if !found {
				logger.Warn("keyword missing from rule set, skipping",
					logging.String("keyword", hit.Keyword),
					logging.String("language", matcher.Language()))
				continue
			}
			a = &agg{score: score}
			byKeyword[hit.Keyword] = a
		}
		a.hits += weight
	}

	keywords := make([]string, 0, len(byKeyword))
	for kw := range byKeyword {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	tallies := make([]keywordTally, 0, len(keywords))
	for _, kw := range keywords {
		a := byKeyword[kw]
		tallies = append(tallies, keywordTally{
			categoryID: a.score.CategoryID,
			score: domain.KeywordScore{
				Keyword:  kw,
				Hits:     a.hits,
				Severity: a.score.Severity,
			},
		})
	}
	return tallies
}
