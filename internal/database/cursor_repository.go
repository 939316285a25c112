package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/santidev10/brand-safety-audit/internal/domain"
)

// CursorRepository persists audit cursors so interrupted runs resume where
// they left off. One row per mode.
type CursorRepository struct {
	db *sqlx.DB
}

// NewCursorRepository creates a new cursor repository.
func NewCursorRepository(db *sqlx.DB) *CursorRepository {
	return &CursorRepository{db: db}
}

// Get retrieves the cursor for a mode. A mode that has never run returns a
// zero cursor, not an error.
func (r *CursorRepository) Get(ctx context.Context, mode domain.AuditMode) (*domain.Cursor, error) {
	var cursor domain.Cursor
	query := `SELECT mode, last_item_id, updated_at FROM audit_cursors WHERE mode = $1`

	if err := r.db.GetContext(ctx, &cursor, query, string(mode)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.Cursor{Mode: mode}, nil
		}
		return nil, fmt.Errorf("get cursor: %w", err)
	}
	return &cursor, nil
}

// Save upserts the cursor for its mode.
func (r *CursorRepository) Save(ctx context.Context, cursor *domain.Cursor) error {
	cursor.UpdatedAt = time.Now()
	query := `
		INSERT INTO audit_cursors (mode, last_item_id, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (mode) DO UPDATE SET
			last_item_id = EXCLUDED.last_item_id,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, string(cursor.Mode), cursor.LastItemID, cursor.UpdatedAt); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}

// Reset clears the cursor for a mode so the next run starts from the
// beginning of the corpus.
func (r *CursorRepository) Reset(ctx context.Context, mode domain.AuditMode) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM audit_cursors WHERE mode = $1`, string(mode)); err != nil {
		return fmt.Errorf("reset cursor: %w", err)
	}
	return nil
}
