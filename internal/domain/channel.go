package domain

import "time"

// Channel is a channel document in the document store. Videos is transient:
// the orchestrator attaches the channel's video documents before aggregation
// and it is never persisted.
type Channel struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Subscribers int64  `json:"subscribers,omitempty"`
	VideoCount  int    `json:"video_count,omitempty"`

	Blocklisted bool     `json:"blocklisted,omitempty"`
	Vetting     *Vetting `json:"vetting,omitempty"`

	BrandSafety *ChannelAuditResult `json:"brand_safety,omitempty"`

	Videos []*Video `json:"-"`
}

// ChannelAuditResult is the persisted brand-safety section of a channel
// document. Like the video result it is recomputed whole, never patched, so
// the average stays well-defined.
type ChannelAuditResult struct {
	OverallScore int             `json:"overall_score"`
	VideosScored int             `json:"videos_scored"`
	Language     string          `json:"language,omitempty"`
	Categories   []CategoryScore `json:"categories,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Valid reports whether the channel carries the fields required for scoring.
func (c *Channel) Valid() bool {
	return c.ID != "" && c.Title != ""
}
