package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santidev10/brand-safety-audit/internal/domain"
)

func buildMatcher(t *testing.T, language string, rules ...domain.KeywordRule) *Matcher {
	t.Helper()
	lex := Compile(rules)
	m := lex.MatcherFor(language)
	require.NotNil(t, m)
	return m
}

func TestFindHitsWordBoundaries(t *testing.T) {
	m := buildMatcher(t, "en",
		domain.KeywordRule{Name: "ass", Language: "en", CategoryID: 1, Severity: 4},
	)

	assert.Empty(t, m.FindHits("associate professor passes class", domain.LocationTitle))

	hits := m.FindHits("what an ass!", domain.LocationTitle)
	require.Len(t, hits, 1)
	assert.Equal(t, "ass", hits[0].Keyword)
	assert.Equal(t, domain.LocationTitle, hits[0].Location)
}

func TestFindHitsAccentedLatinStaysOneToken(t *testing.T) {
	m := buildMatcher(t, "sv",
		domain.KeywordRule{Name: "mma", Language: "sv", CategoryID: 1, Severity: 2},
	)

	// The diacritic must not split the word and expose an "mma" boundary.
	assert.Empty(t, m.FindHits("vi ska bestämma oss", domain.LocationDescription))
	assert.Len(t, m.FindHits("mma fight night", domain.LocationDescription), 1)
}

func TestFindHitsCountsEveryOccurrence(t *testing.T) {
	m := buildMatcher(t, "en",
		domain.KeywordRule{Name: "blood", Language: "en", CategoryID: 2, Severity: 3},
	)

	hits := m.FindHits("Blood, more blood... so much BLOOD", domain.LocationDescription)
	assert.Len(t, hits, 3)
}

func TestFindHitsMultiWordKeyword(t *testing.T) {
	m := buildMatcher(t, "en",
		domain.KeywordRule{Name: "school shooting", Language: "en", CategoryID: 3, Severity: 9},
	)

	assert.Len(t, m.FindHits("coverage of the school shooting today", domain.LocationTitle), 1)
	assert.Empty(t, m.FindHits("school trip and target shooting", domain.LocationTitle))
	// Punctuation between the words breaks the phrase.
	assert.Empty(t, m.FindHits("school. shooting range", domain.LocationTitle))
}

func TestFindHitsCaseAndPunctuationInsensitive(t *testing.T) {
	m := buildMatcher(t, "en",
		domain.KeywordRule{Name: "scam", Language: "en", CategoryID: 4, Severity: 5},
	)

	hits := m.FindHits("SCAM?! total (scam)", domain.LocationTags)
	assert.Len(t, hits, 2)
}

func TestFindHitsCyrillic(t *testing.T) {
	m := buildMatcher(t, "ru",
		domain.KeywordRule{Name: "оружие", Language: "ru", CategoryID: 5, Severity: 6},
	)

	hits := m.FindHits("Продаю оружие недорого", domain.LocationTitle)
	require.Len(t, hits, 1)
	assert.Equal(t, "оружие", hits[0].Keyword)
}

func TestScoreLookup(t *testing.T) {
	m := buildMatcher(t, "en",
		domain.KeywordRule{Name: "scam", Language: "en", CategoryID: 4, Severity: 5},
	)

	score, ok := m.Score("scam")
	require.True(t, ok)
	assert.Equal(t, int64(4), score.CategoryID)
	assert.Equal(t, 5, score.Severity)

	_, ok = m.Score("unknown")
	assert.False(t, ok)
}

func TestCountOccurrencesOverlap(t *testing.T) {
	tokens := []string{"a", "a", "a"}
	assert.Equal(t, 2, countOccurrences(tokens, []string{"a", "a"}))
	assert.Equal(t, 3, countOccurrences(tokens, []string{"a"}))
	assert.Equal(t, 0, countOccurrences(tokens, []string{"b"}))
}
