package lexicon

import (
	"context"
	"fmt"
	"time"

	"github.com/santidev10/brand-safety-audit/internal/domain"
	"github.com/santidev10/brand-safety-audit/internal/logging"
	"github.com/santidev10/brand-safety-audit/internal/telemetry"
)

// RuleSource lists keyword rules and categories from the configuration store.
type RuleSource interface {
	ListRules(ctx context.Context) ([]domain.KeywordRule, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// Loader builds lexicons from the configuration store, going through the
// disk cache so workers spawned close together compile from the same
// snapshot without re-querying.
type Loader struct {
	source    RuleSource
	cache     *Cache
	telemetry *telemetry.Provider
	logger    logging.Logger
}

// NewLoader creates a lexicon loader. A nil cache disables snapshotting, a
// nil telemetry provider disables compile metrics.
func NewLoader(source RuleSource, cache *Cache, tel *telemetry.Provider, logger logging.Logger) *Loader {
	return &Loader{source: source, cache: cache, telemetry: tel, logger: logger}
}

// Build returns a compiled lexicon. Cached rules are used when fresh;
// otherwise rules are fetched, snapshotted and compiled. Compilation is
// deterministic, so two builds from the same snapshot produce matchers
// with identical behavior.
func (l *Loader) Build(ctx context.Context) (*Lexicon, error) {
	if l.cache != nil {
		if rules, categories, ok := l.cache.Load(); ok {
			l.logger.Debug("compiling lexicon from cached snapshot",
				logging.Int("rules", len(rules)))
			return l.compile(ctx, rules, categories), nil
		}
	}

	rules, err := l.source.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keyword rules: %w", err)
	}
	categories, err := l.source.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	if l.cache != nil {
		if err := l.cache.Save(rules, categories); err != nil {
			// A failed snapshot only costs the next build a query.
			l.logger.Warn("failed to snapshot lexicon rules", logging.Error(err))
		}
	}

	lex := l.compile(ctx, rules, categories)
	l.logger.Info("compiled lexicon",
		logging.Int("rules", len(rules)),
		logging.Int("languages", len(lex.Languages())),
		logging.Int("categories", len(lex.CategoryIDs())))
	return lex, nil
}

func (l *Loader) compile(ctx context.Context, rules []domain.KeywordRule, categories []domain.Category) *Lexicon {
	start := time.Now()
	lex := Compile(rules, categories...)
	if l.telemetry != nil {
		l.telemetry.RecordLexiconCompile(ctx, time.Since(start), len(rules))
	}
	return lex
}
