package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/santidev10/brand-safety-audit/internal/domain"
	"github.com/santidev10/brand-safety-audit/internal/logging"
	"github.com/santidev10/brand-safety-audit/internal/processor"
)

// Auditor runs on-demand audits for single documents.
type Auditor interface {
	AuditVideo(ctx context.Context, videoID string) (*domain.Video, error)
	AuditChannel(ctx context.Context, channelID string) (*domain.Channel, error)
}

// KeywordStore manages keyword rules and their categories.
type KeywordStore interface {
	ListRules(ctx context.Context) ([]domain.KeywordRule, error)
	ListRulesByLanguage(ctx context.Context, language string) ([]domain.KeywordRule, error)
	CreateRule(ctx context.Context, rule *domain.KeywordRule) error
	DeleteRule(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// RescoreQueue exposes the depth of the pending rescore backlog.
type RescoreQueue interface {
	Len(ctx context.Context) (int64, error)
}

// ReadyChecker reports whether a backing dependency is reachable.
type ReadyChecker func(ctx context.Context) error

// Handler handles HTTP requests for the audit API.
type Handler struct {
	auditor  Auditor
	keywords KeywordStore
	queue    RescoreQueue
	checks   map[string]ReadyChecker
	logger   logging.Logger
}

// NewHandler creates a new API handler. checks maps dependency names to
// readiness probes and may be nil.
func NewHandler(
	auditor Auditor,
	keywords KeywordStore,
	queue RescoreQueue,
	checks map[string]ReadyChecker,
	logger logging.Logger,
) *Handler {
	return &Handler{
		auditor:  auditor,
		keywords: keywords,
		queue:    queue,
		checks:   checks,
		logger:   logger,
	}
}

// AuditVideo handles POST /api/v1/audit/videos/:id
func (h *Handler) AuditVideo(c *gin.Context) {
	videoID := c.Param("id")
	if videoID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video id is required"})
		return
	}

	h.logger.Info("manual video audit requested", logging.String("video_id", videoID))

	video, err := h.auditor.AuditVideo(c.Request.Context(), videoID)
	if err != nil {
		if errors.Is(err, processor.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		h.logger.Error("manual video audit failed",
			logging.String("video_id", videoID),
			logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "audit failed"})
		return
	}

	c.JSON(http.StatusOK, toVideoAuditResponse(video))
}

// AuditChannel handles POST /api/v1/audit/channels/:id
func (h *Handler) AuditChannel(c *gin.Context) {
	channelID := c.Param("id")
	if channelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel id is required"})
		return
	}

	h.logger.Info("manual channel audit requested", logging.String("channel_id", channelID))

	channel, err := h.auditor.AuditChannel(c.Request.Context(), channelID)
	if err != nil {
		if errors.Is(err, processor.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
			return
		}
		h.logger.Error("manual channel audit failed",
			logging.String("channel_id", channelID),
			logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "audit failed"})
		return
	}

	c.JSON(http.StatusOK, toChannelAuditResponse(channel))
}

// ListKeywords handles GET /api/v1/keywords
func (h *Handler) ListKeywords(c *gin.Context) {
	var (
		rules []domain.KeywordRule
		err   error
	)
	if language := c.Query("language"); language != "" {
		rules, err = h.keywords.ListRulesByLanguage(c.Request.Context(), language)
	} else {
		rules, err = h.keywords.ListRules(c.Request.Context())
	}
	if err != nil {
		h.logger.Error("failed to list keyword rules", logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load keywords"})
		return
	}

	c.JSON(http.StatusOK, KeywordListResponse{
		Keywords: rules,
		Total:    len(rules),
	})
}

// CreateKeyword handles POST /api/v1/keywords
func (h *Handler) CreateKeyword(c *gin.Context) {
	var req CreateKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create keyword request", logging.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule := &domain.KeywordRule{
		Name:       req.Name,
		Language:   req.Language,
		CategoryID: req.CategoryID,
		Severity:   req.Severity,
	}
	if err := h.keywords.CreateRule(c.Request.Context(), rule); err != nil {
		h.logger.Error("failed to create keyword rule",
			logging.String("name", req.Name),
			logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create keyword"})
		return
	}

	h.logger.Info("keyword rule created",
		logging.Int64("id", rule.ID),
		logging.String("name", rule.Name),
		logging.String("language", rule.Language))

	c.JSON(http.StatusCreated, rule)
}

// DeleteKeyword handles DELETE /api/v1/keywords/:id
func (h *Handler) DeleteKeyword(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid keyword id"})
		return
	}

	if err := h.keywords.DeleteRule(c.Request.Context(), id); err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "keyword not found"})
			return
		}
		h.logger.Error("failed to delete keyword rule",
			logging.Int64("id", id),
			logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete keyword"})
		return
	}

	h.logger.Info("keyword rule deleted", logging.Int64("id", id))

	c.JSON(http.StatusOK, gin.H{"message": "keyword deleted"})
}

// ListCategories handles GET /api/v1/categories
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.keywords.ListCategories(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list categories", logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load categories"})
		return
	}

	c.JSON(http.StatusOK, CategoryListResponse{
		Categories: categories,
		Total:      len(categories),
	})
}

// GetStats handles GET /api/v1/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats := StatsResponse{}
	if h.queue != nil {
		depth, err := h.queue.Len(c.Request.Context())
		if err != nil {
			h.logger.Warn("failed to read rescore queue depth", logging.Error(err))
		} else {
			stats.RescoreQueueDepth = depth
		}
	}

	c.JSON(http.StatusOK, stats)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ReadyCheck handles GET /ready. It probes every registered dependency and
// reports 503 if any of them is unreachable.
func (h *Handler) ReadyCheck(c *gin.Context) {
	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(c.Request.Context()); err != nil {
			h.logger.Warn("readiness probe failed",
				logging.String("dependency", name),
				logging.Error(err))
			deps[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := gin.H{"status": "ready"}
	if status != http.StatusOK {
		body["status"] = "not ready"
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	c.JSON(status, body)
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}
