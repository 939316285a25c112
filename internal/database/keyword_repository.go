package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/santidev10/brand-safety-audit/internal/domain"
)

// KeywordRepository handles database operations for keyword rules and
// categories.
type KeywordRepository struct {
	db *sqlx.DB
}

// NewKeywordRepository creates a new keyword repository.
func NewKeywordRepository(db *sqlx.DB) *KeywordRepository {
	return &KeywordRepository{db: db}
}

// ListRules retrieves every keyword rule, ordered for deterministic
// compilation.
func (r *KeywordRepository) ListRules(ctx context.Context) ([]domain.KeywordRule, error) {
	query := `
		SELECT id, name, language, category_id, severity, created_at, updated_at
		FROM keyword_rules
		ORDER BY language, name
	`

	var rules []domain.KeywordRule
	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		return nil, fmt.Errorf("list keyword rules: %w", err)
	}
	return rules, nil
}

// ListRulesByLanguage retrieves the rules for one language.
func (r *KeywordRepository) ListRulesByLanguage(ctx context.Context, language string) ([]domain.KeywordRule, error) {
	query := `
		SELECT id, name, language, category_id, severity, created_at, updated_at
		FROM keyword_rules
		WHERE language = $1
		ORDER BY name
	`

	var rules []domain.KeywordRule
	if err := r.db.SelectContext(ctx, &rules, query, language); err != nil {
		return nil, fmt.Errorf("list keyword rules for %s: %w", language, err)
	}
	return rules, nil
}

// CreateRule inserts a keyword rule and fills in its generated fields.
func (r *KeywordRepository) CreateRule(ctx context.Context, rule *domain.KeywordRule) error {
	query := `
		INSERT INTO keyword_rules (name, language, category_id, severity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		rule.Name, rule.Language, rule.CategoryID, rule.Severity,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create keyword rule: %w", err)
	}
	return nil
}

// DeleteRule removes a keyword rule.
func (r *KeywordRepository) DeleteRule(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM keyword_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete keyword rule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete keyword rule: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("keyword rule not found: %d", id)
	}
	return nil
}

// ListCategories retrieves every brand-safety category.
func (r *KeywordRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT id, title, vetted_excluded
		FROM categories
		ORDER BY id
	`

	var categories []domain.Category
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// GetCategory retrieves one category by id.
func (r *KeywordRepository) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var category domain.Category
	query := `SELECT id, title, vetted_excluded FROM categories WHERE id = $1`

	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category not found: %d", id)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &category, nil
}
