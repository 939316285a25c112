package domain

import "time"

// Transcript is one transcript candidate attached to a video, in a specific
// language.
type Transcript struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

// Vetting is a manual human review attached to an item. A vetting result with
// any unsafe category forces the overall score to 0; an empty one forces 100.
// Vetted items never go through keyword matching.
type Vetting struct {
	VettedAt         time.Time `json:"vetted_at"`
	UnsafeCategories []int64   `json:"unsafe_categories,omitempty"`
}

// Video is a video document in the document store.
type Video struct {
	ID           string       `json:"id"`
	ChannelID    string       `json:"channel_id"`
	ChannelTitle string       `json:"channel_title,omitempty"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Language     string       `json:"language,omitempty"` // declared or detected language code
	Transcripts  []Transcript `json:"transcripts,omitempty"`
	Views        int64        `json:"views,omitempty"`

	Blocklisted bool     `json:"blocklisted,omitempty"`
	Vetting     *Vetting `json:"vetting,omitempty"`

	BrandSafety *VideoAuditResult `json:"brand_safety,omitempty"`
}

// VideoAuditResult is the persisted brand-safety section of a video document.
// It is created whole on each scoring pass and fully replaces the previous
// result.
type VideoAuditResult struct {
	OverallScore int             `json:"overall_score"`
	Language     string          `json:"language,omitempty"`
	Categories   []CategoryScore `json:"categories,omitempty"`
	// Rescore marks a video that scored low enough to flag its channel for
	// rescoring; cleared when a later pass scores the video above the
	// threshold.
	Rescore   bool      `json:"rescore,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KeywordHits returns the total keyword occurrences across all categories.
func (r *VideoAuditResult) KeywordHits() int {
	total := 0
	for _, cat := range r.Categories {
		for _, ks := range cat.Keywords {
			total += ks.Hits
		}
	}
	return total
}

// HasBlocklist reports whether the video is blocklisted directly or through
// its channel.
func (v *Video) HasBlocklist(channel *Channel) bool {
	if v.Blocklisted {
		return true
	}
	return channel != nil && channel.Blocklisted
}

// Valid reports whether the video carries the fields required for scoring.
// Items missing them are skipped and stay eligible for a later pass.
func (v *Video) Valid() bool {
	return v.ID != "" && v.ChannelID != "" && v.Title != ""
}
