// Package lexicon compiles keyword rules into per-language multi-pattern
// matchers with script-aware word boundaries.
package lexicon

import (
	"sort"
	"strings"
	"unicode"

	"github.com/cloudflare/ahocorasick"

	"github.com/santidev10/brand-safety-audit/internal/domain"
)

// Matcher finds keyword occurrences in text for a single language. Matching
// is case-insensitive and token-bounded: a keyword only counts when it lines
// up with word boundaries under the language's charset, so "ass" never fires
// inside "associate".
type Matcher struct {
	language  string
	charset   *Charset
	automaton *ahocorasick.Matcher
	names     []string   // original keyword per pattern index
	sequences [][]string // normalized token sequence per pattern index
	scores    map[string]domain.RuleScore
}

// newMatcher builds a matcher from keyword scores. Keywords are sorted
// before compilation so the automaton layout is deterministic.
func newMatcher(language string, charset *Charset, scores map[string]domain.RuleScore) *Matcher {
	m := &Matcher{
		language: language,
		charset:  charset,
		scores:   scores,
	}

	keywords := make([]string, 0, len(scores))
	for kw := range scores {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	patterns := make([][]byte, 0, len(keywords))
	for _, kw := range keywords {
		norm := m.normalize(kw)
		tokens := strings.Fields(norm)
		if len(tokens) == 0 {
			continue
		}
		m.names = append(m.names, kw)
		m.sequences = append(m.sequences, tokens)
		patterns = append(patterns, []byte(strings.Join(tokens, " ")))
	}
	m.automaton = ahocorasick.NewMatcher(patterns)
	return m
}

// Language returns the language code this matcher was compiled for.
func (m *Matcher) Language() string {
	return m.language
}

// Size returns the number of compiled keywords.
func (m *Matcher) Size() int {
	return len(m.names)
}

// Score returns the category and severity of a compiled keyword.
func (m *Matcher) Score(keyword string) (domain.RuleScore, bool) {
	s, ok := m.scores[keyword]
	return s, ok
}

// FindHits returns one hit per keyword occurrence in text, tagged with the
// given location. The automaton narrows the candidate set; occurrences are
// then counted against token boundaries.
func (m *Matcher) FindHits(text string, location domain.Location) []domain.KeywordHit {
	norm := m.normalize(text)
	if norm == "" {
		return nil
	}

	candidates := m.automaton.Match([]byte(norm))
	if len(candidates) == 0 {
		return nil
	}
	sort.Ints(candidates)

	tokens := strings.Fields(norm)
	var hits []domain.KeywordHit
	for _, idx := range candidates {
		count := countOccurrences(tokens, m.sequences[idx])
		for i := 0; i < count; i++ {
			hits = append(hits, domain.KeywordHit{
				Keyword:  m.names[idx],
				Location: location,
			})
		}
	}
	return hits
}

// normalize lowercases text and replaces every rune outside the charset
// with a space, leaving only token boundaries between words.
func (m *Matcher) normalize(text string) string {
	return strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if m.charset.Contains(r) {
			return r
		}
		return ' '
	}, text)
}

// countOccurrences counts positions in tokens where seq matches as a
// contiguous token run.
func countOccurrences(tokens, seq []string) int {
	if len(seq) == 0 || len(seq) > len(tokens) {
		return 0
	}
	count := 0
	for i := 0; i+len(seq) <= len(tokens); i++ {
		match := true
		for j, s := range seq {
			if tokens[i+j] != s {
				match = false
				break
			}
		}
		if match {
			count++
		}
	}
	return count
}
