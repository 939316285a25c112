package lexicon

import (
	"sort"

	"golang.org/x/text/language"

	"github.com/santidev10/brand-safety-audit/internal/domain"
)

// AllLanguages is the language key of the fallback matcher compiled from
// every rule regardless of language.
const AllLanguages = "all"

// Lexicon is the compiled form of the keyword rule set: one matcher per
// language that has rules, plus the language-agnostic fallback.
type Lexicon struct {
	matchers       map[string]*Matcher
	categories     []int64
	vettedExcluded map[int64]struct{}
}

// Compile builds a lexicon from keyword rules. Rules with an empty keyword
// are dropped. When the same keyword appears under multiple languages, the
// fallback matcher keeps the entry with the highest severity so collisions
// resolve deterministically. Categories marked vetted-excluded are recorded
// so vetting overrides can ignore them.
func Compile(rules []domain.KeywordRule, categories ...domain.Category) *Lexicon {
	byLanguage := make(map[string]map[string]domain.RuleScore)
	all := make(map[string]domain.RuleScore)
	categorySet := make(map[int64]struct{})

	for _, rule := range rules {
		if rule.Name == "" {
			continue
		}
		categorySet[rule.CategoryID] = struct{}{}

		scores := byLanguage[rule.Language]
		if scores == nil {
			scores = make(map[string]domain.RuleScore)
			byLanguage[rule.Language] = scores
		}
		entry := domain.RuleScore{CategoryID: rule.CategoryID, Severity: rule.Severity}
		scores[rule.Name] = maxSeverity(scores[rule.Name], entry)
		all[rule.Name] = maxSeverity(all[rule.Name], entry)
	}

	matchers := make(map[string]*Matcher, len(byLanguage)+1)
	for language, scores := range byLanguage {
		matchers[language] = newMatcher(language, CharsetFor(language), scores)
	}
	matchers[AllLanguages] = newMatcher(AllLanguages, UniversalCharset(), all)

	ids := make([]int64, 0, len(categorySet))
	for id := range categorySet {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	vettedExcluded := make(map[int64]struct{})
	for _, category := range categories {
		if category.VettedExcluded {
			vettedExcluded[category.ID] = struct{}{}
		}
	}

	return &Lexicon{matchers: matchers, categories: ids, vettedExcluded: vettedExcluded}
}

// maxSeverity keeps the more severe of two score entries. A zero-value
// current entry always loses.
func maxSeverity(current, candidate domain.RuleScore) domain.RuleScore {
	if current.CategoryID == 0 && current.Severity == 0 {
		return candidate
	}
	if candidate.Severity > current.Severity {
		return candidate
	}
	return current
}

// MatcherFor returns the matcher for a language, falling back to the
// language-agnostic matcher when the language has no rules of its own.
// Full BCP 47 tags resolve to their base language, so "en-US" and "en-GB"
// both hit the "en" matcher.
func (l *Lexicon) MatcherFor(lang string) *Matcher {
	if m, ok := l.matchers[lang]; ok {
		return m
	}
	if tag, err := language.Parse(lang); err == nil {
		if base, conf := tag.Base(); conf > language.No {
			if m, ok := l.matchers[base.String()]; ok {
				return m
			}
		}
	}
	return l.matchers[AllLanguages]
}

// Languages returns the language codes with dedicated matchers, sorted.
func (l *Lexicon) Languages() []string {
	langs := make([]string, 0, len(l.matchers))
	for lang := range l.matchers {
		if lang != AllLanguages {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs
}

// CategoryIDs returns every category referenced by the rule set, sorted.
func (l *Lexicon) CategoryIDs() []int64 {
	return l.categories
}

// VettedExcluded reports whether a category is exempt from forcing a vetted
// item's overall score to zero.
func (l *Lexicon) VettedExcluded(categoryID int64) bool {
	_, ok := l.vettedExcluded[categoryID]
	return ok
}
