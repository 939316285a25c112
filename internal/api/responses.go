package api

import (
	"github.com/santidev10/brand-safety-audit/internal/domain"
)

// VideoAuditResponse is the result of a manual video audit.
type VideoAuditResponse struct {
	VideoID   string                   `json:"video_id"`
	ChannelID string                   `json:"channel_id,omitempty"`
	Result    *domain.VideoAuditResult `json:"result"`
}

// ChannelAuditResponse is the result of a manual channel audit.
type ChannelAuditResponse struct {
	ChannelID string                     `json:"channel_id"`
	Result    *domain.ChannelAuditResult `json:"result"`
}

// KeywordListResponse is a list of keyword rules with a total count.
type KeywordListResponse struct {
	Keywords []domain.KeywordRule `json:"keywords"`
	Total    int                  `json:"total"`
}

// CreateKeywordRequest is a request to add a keyword rule.
type CreateKeywordRequest struct {
	Name       string `json:"name" binding:"required"`
	Language   string `json:"language" binding:"required"`
	CategoryID int64  `json:"category_id" binding:"required"`
	Severity   int    `json:"severity" binding:"required,min=1,max=100"`
}

// CategoryListResponse is a list of unsafe content categories.
type CategoryListResponse struct {
	Categories []domain.Category `json:"categories"`
	Total      int               `json:"total"`
}

// StatsResponse carries operational counters for the dashboard.
type StatsResponse struct {
	RescoreQueueDepth int64 `json:"rescore_queue_depth"`
}

func toVideoAuditResponse(video *domain.Video) VideoAuditResponse {
	return VideoAuditResponse{
		VideoID:   video.ID,
		ChannelID: video.ChannelID,
		Result:    video.BrandSafety,
	}
}

func toChannelAuditResponse(channel *domain.Channel) ChannelAuditResponse {
	return ChannelAuditResponse{
		ChannelID: channel.ID,
		Result:    channel.BrandSafety,
	}
}
