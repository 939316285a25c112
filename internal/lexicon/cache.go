package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/santidev10/brand-safety-audit/internal/domain"
)

// snapshot is the on-disk form of a rule set.
type snapshot struct {
	SavedAt    time.Time            `json:"saved_at"`
	Rules      []domain.KeywordRule `json:"rules"`
	Categories []domain.Category    `json:"categories,omitempty"`
}

// Cache persists rule snapshots to disk so repeated lexicon builds within
// the TTL skip the configuration store. Snapshots are keyed by process id:
// each process owns its file, so concurrent runs never race on writes, and
// a restart naturally starts fresh.
type Cache struct {
	dir string
	ttl time.Duration
}

// NewCache creates a snapshot cache rooted at dir. An empty dir falls back
// to the OS temp dir.
func NewCache(dir string, ttl time.Duration) *Cache {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Cache{dir: dir, ttl: ttl}
}

func (c *Cache) path() string {
	return filepath.Join(c.dir, fmt.Sprintf("brand_safety_lexicon_%d.json", os.Getpid()))
}

// Load returns the cached rules, or ok=false when no snapshot exists, the
// snapshot is older than the TTL, or it cannot be decoded. A corrupt file
// is treated as a miss rather than an error so a build always proceeds.
func (c *Cache) Load() ([]domain.KeywordRule, []domain.Category, bool) {
	data, err := os.ReadFile(c.path())
	if err != nil {
		return nil, nil, false
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nil, false
	}
	if time.Since(snap.SavedAt) > c.ttl {
		return nil, nil, false
	}
	return snap.Rules, snap.Categories, true
}

// Save writes a rule snapshot, replacing any previous one for this process.
func (c *Cache) Save(rules []domain.KeywordRule, categories []domain.Category) error {
	snap := snapshot{SavedAt: time.Now(), Rules: rules, Categories: categories}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal lexicon snapshot: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp := c.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write lexicon snapshot: %w", err)
	}
	if err := os.Rename(tmp, c.path()); err != nil {
		return fmt.Errorf("commit lexicon snapshot: %w", err)
	}
	return nil
}

// Remove deletes this process's snapshot.
func (c *Cache) Remove() error {
	err := os.Remove(c.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lexicon snapshot: %w", err)
	}
	return nil
}
