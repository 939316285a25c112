package database

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santidev10/brand-safety-audit/internal/domain"
)

// The repositories stick to placeholders and ON CONFLICT syntax SQLite also
// understands, so tests run against an in-memory database.
const testSchema = `
CREATE TABLE categories (
	id              INTEGER PRIMARY KEY,
	title           TEXT NOT NULL,
	vetted_excluded BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE keyword_rules (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	language    TEXT NOT NULL,
	category_id INTEGER NOT NULL REFERENCES categories(id),
	severity    INTEGER NOT NULL,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (name, language)
);

CREATE TABLE audit_cursors (
	mode         TEXT PRIMARY KEY,
	last_item_id TEXT NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);
`

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db
}

func seedCategories(t *testing.T, db *sqlx.DB) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO categories (id, title, vetted_excluded) VALUES
		(1, 'Scams & Fraud', 0),
		(2, 'Violence', 0),
		(3, 'Kids Content', 1)`)
	require.NoError(t, err)
}

func TestKeywordRepositoryRules(t *testing.T) {
	db := testDB(t)
	seedCategories(t, db)
	repo := NewKeywordRepository(db)
	ctx := context.Background()

	rule := &domain.KeywordRule{Name: "scam", Language: "en", CategoryID: 1, Severity: 5}
	require.NoError(t, repo.CreateRule(ctx, rule))
	assert.NotZero(t, rule.ID)
	assert.False(t, rule.CreatedAt.IsZero())

	require.NoError(t, repo.CreateRule(ctx, &domain.KeywordRule{
		Name: "estafa", Language: "es", CategoryID: 1, Severity: 5,
	}))
	require.NoError(t, repo.CreateRule(ctx, &domain.KeywordRule{
		Name: "violence", Language: "en", CategoryID: 2, Severity: 7,
	}))

	rules, err := repo.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	// Ordered by language then name.
	assert.Equal(t, "scam", rules[0].Name)
	assert.Equal(t, "violence", rules[1].Name)
	assert.Equal(t, "estafa", rules[2].Name)

	enRules, err := repo.ListRulesByLanguage(ctx, "en")
	require.NoError(t, err)
	require.Len(t, enRules, 2)

	require.NoError(t, repo.DeleteRule(ctx, rule.ID))
	err = repo.DeleteRule(ctx, rule.ID)
	assert.ErrorContains(t, err, "not found")
}

func TestKeywordRepositoryCategories(t *testing.T) {
	db := testDB(t)
	seedCategories(t, db)
	repo := NewKeywordRepository(db)
	ctx := context.Background()

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Scams & Fraud", categories[0].Title)
	assert.True(t, categories[2].VettedExcluded)

	cat, err := repo.GetCategory(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Violence", cat.Title)

	_, err = repo.GetCategory(ctx, 99)
	assert.ErrorContains(t, err, "not found")
}

func TestCursorRepositoryRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewCursorRepository(db)
	ctx := context.Background()

	// A mode that has never run yields a zero cursor.
	cursor, err := repo.Get(ctx, domain.ModeDiscovery)
	require.NoError(t, err)
	assert.Empty(t, cursor.LastItemID)
	assert.Equal(t, domain.ModeDiscovery, cursor.Mode)

	cursor.LastItemID = "video-100"
	require.NoError(t, repo.Save(ctx, cursor))

	got, err := repo.Get(ctx, domain.ModeDiscovery)
	require.NoError(t, err)
	assert.Equal(t, "video-100", got.LastItemID)

	// Saving again updates in place.
	got.LastItemID = "video-200"
	require.NoError(t, repo.Save(ctx, got))
	got, err = repo.Get(ctx, domain.ModeDiscovery)
	require.NoError(t, err)
	assert.Equal(t, "video-200", got.LastItemID)

	// Modes keep independent cursors.
	updateCursor, err := repo.Get(ctx, domain.ModeUpdate)
	require.NoError(t, err)
	assert.Empty(t, updateCursor.LastItemID)

	require.NoError(t, repo.Reset(ctx, domain.ModeDiscovery))
	got, err = repo.Get(ctx, domain.ModeDiscovery)
	require.NoError(t, err)
	assert.Empty(t, got.LastItemID)
}
