package domain

import (
	"sort"
	"strconv"
)

// Location identifies where in an item's metadata a keyword hit was found.
type Location string

// Hit locations.
const (
	LocationTitle       Location = "title"
	LocationDescription Location = "description"
	LocationTags        Location = "tags"
	LocationTranscript  Location = "transcript"
)

// Score bounds. 100 is the safest possible score, 0 the worst.
const (
	MaxScore = 100
	MinScore = 0
)

// KeywordHit is a single occurrence of a lexicon keyword found in an item's
// text. Hits are transient; only the scores derived from them are persisted.
type KeywordHit struct {
	Keyword  string   `json:"keyword"`
	Location Location `json:"location"`
}

// KeywordScore aggregates all occurrences of one keyword within a scored item.
type KeywordScore struct {
	Keyword  string `json:"keyword"`
	Hits     int    `json:"hits"`
	Severity int    `json:"severity"`
}

// Penalty returns the total score deduction this keyword contributes.
func (k KeywordScore) Penalty() int {
	return k.Severity * k.Hits
}

// CategoryScore holds the score of one brand-safety category for an item,
// along with the keyword hits that produced it. It is treated as a value:
// combining two category scores always produces a new one.
type CategoryScore struct {
	CategoryID     int64          `json:"category_id"`
	Score          int            `json:"category_score"`
	Keywords       []KeywordScore `json:"keywords,omitempty"`
	SeverityCounts map[string]int `json:"severity_counts,omitempty"`
}

// MergeCategoryScores combines two category scores for the same category by
// summing their scores and keyword hit counts. Both inputs are left untouched.
func MergeCategoryScores(a, b CategoryScore) CategoryScore {
	merged := CategoryScore{
		CategoryID:     a.CategoryID,
		Score:          a.Score + b.Score,
		SeverityCounts: map[string]int{},
	}

	byKeyword := make(map[string]KeywordScore, len(a.Keywords)+len(b.Keywords))
	for _, ks := range a.Keywords {
		byKeyword[ks.Keyword] = ks
	}
	for _, ks := range b.Keywords {
		if prev, ok := byKeyword[ks.Keyword]; ok {
			prev.Hits += ks.Hits
			byKeyword[ks.Keyword] = prev
		} else {
			byKeyword[ks.Keyword] = ks
		}
	}

	keywords := make([]KeywordScore, 0, len(byKeyword))
	for _, ks := range byKeyword {
		keywords = append(keywords, ks)
	}
	sort.Slice(keywords, func(i, j int) bool { return keywords[i].Keyword < keywords[j].Keyword })
	merged.Keywords = keywords

	for sev, count := range a.SeverityCounts {
		merged.SeverityCounts[sev] += count
	}
	for sev, count := range b.SeverityCounts {
		merged.SeverityCounts[sev] += count
	}
	if len(merged.SeverityCounts) == 0 {
		merged.SeverityCounts = nil
	}

	return merged
}

// AddKeyword returns a copy of the category score with one keyword's
// occurrences applied: the category score is reduced by severity*hits and the
// severity tally is incremented per occurrence.
func (c CategoryScore) AddKeyword(ks KeywordScore) CategoryScore {
	out := c
	out.Score -= ks.Penalty()
	out.Keywords = append(append([]KeywordScore(nil), c.Keywords...), ks)

	out.SeverityCounts = make(map[string]int, len(c.SeverityCounts)+1)
	for sev, count := range c.SeverityCounts {
		out.SeverityCounts[sev] = count
	}
	out.SeverityCounts[strconv.Itoa(ks.Severity)] += ks.Hits

	return out
}

// ClampScore bounds a score to [MinScore, MaxScore].
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// SortCategoryScores orders category scores by category id for deterministic
// persistence and comparison.
func SortCategoryScores(scores []CategoryScore) {
	sort.Slice(scores, func(i, j int) bool { return scores[i].CategoryID < scores[j].CategoryID })
}
