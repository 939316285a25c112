package domain

import "time"

// KeywordRule represents a brand-safety keyword loaded from the configuration
// store. Rules are unique per (name, language) and immutable once compiled
// into a matcher.
type KeywordRule struct {
	ID         int64     `db:"id"          json:"id"`
	Name       string    `db:"name"        json:"name"`
	Language   string    `db:"language"    json:"language"`
	CategoryID int64     `db:"category_id" json:"category_id"`
	Severity   int       `db:"severity"    json:"severity"` // score deducted per occurrence
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"  json:"updated_at"`
}

// Category represents a brand-safety category keyword rules belong to.
type Category struct {
	ID    int64  `db:"id"    json:"id"`
	Title string `db:"title" json:"title"`
	// VettedExcluded marks categories whose presence in a vetting result does
	// not force the overall score to zero (e.g. kids content).
	VettedExcluded bool `db:"vetted_excluded" json:"vetted_excluded"`
}

// RuleScore is the score lookup entry for a compiled keyword: which category
// it belongs to and how many points a single occurrence deducts.
type RuleScore struct {
	CategoryID int64 `json:"category_id"`
	Severity   int   `json:"severity"`
}
