package domain

import "time"

// AuditMode selects which slice of the corpus a run walks.
type AuditMode string

// Audit modes. Discovery finds items with no brand-safety result yet; update
// finds items whose result has gone stale.
const (
	ModeDiscovery AuditMode = "discovery"
	ModeUpdate    AuditMode = "update"
)

// Valid reports whether the mode is one the orchestrator knows.
func (m AuditMode) Valid() bool {
	return m == ModeDiscovery || m == ModeUpdate
}

// Cursor is the durable bookmark of batch-processing progress through the
// corpus. It is persisted after every processed page; resuming from it must
// not skip unseen items.
type Cursor struct {
	LastItemID string    `db:"last_item_id" json:"last_item_id"`
	Mode       AuditMode `db:"mode"         json:"mode"`
	UpdatedAt  time.Time `db:"updated_at"   json:"updated_at"`
}
