package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santidev10/brand-safety-audit/internal/domain"
	"github.com/santidev10/brand-safety-audit/internal/logging"
	"github.com/santidev10/brand-safety-audit/internal/processor"
)

type fakeAuditor struct {
	videos   map[string]*domain.Video
	channels map[string]*domain.Channel
	err      error
}

func (f *fakeAuditor) AuditVideo(_ context.Context, videoID string) (*domain.Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	video, ok := f.videos[videoID]
	if !ok {
		return nil, fmt.Errorf("video %s: %w", videoID, processor.ErrNotFound)
	}
	return video, nil
}

func (f *fakeAuditor) AuditChannel(_ context.Context, channelID string) (*domain.Channel, error) {
	if f.err != nil {
		return nil, f.err
	}
	channel, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %s: %w", channelID, processor.ErrNotFound)
	}
	return channel, nil
}

type fakeKeywordStore struct {
	rules      []domain.KeywordRule
	categories []domain.Category
	nextID     int64
	deleted    []int64
	err        error
}

func (f *fakeKeywordStore) ListRules(_ context.Context) ([]domain.KeywordRule, error) {
	return f.rules, f.err
}

func (f *fakeKeywordStore) ListRulesByLanguage(_ context.Context, language string) ([]domain.KeywordRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.KeywordRule
	for _, rule := range f.rules {
		if rule.Language == language {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (f *fakeKeywordStore) CreateRule(_ context.Context, rule *domain.KeywordRule) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	rule.ID = f.nextID
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *fakeKeywordStore) DeleteRule(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	for _, rule := range f.rules {
		if rule.ID == id {
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return fmt.Errorf("keyword rule %d not found", id)
}

func (f *fakeKeywordStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	return f.categories, f.err
}

type fakeDepthQueue struct {
	depth int64
	err   error
}

func (f *fakeDepthQueue) Len(_ context.Context) (int64, error) {
	return f.depth, f.err
}

func newTestRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, handler, nil)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuditVideoEndpoint(t *testing.T) {
	auditor := &fakeAuditor{
		videos: map[string]*domain.Video{
			"v1": {
				ID:        "v1",
				ChannelID: "c1",
				Title:     "gardening tips",
				BrandSafety: &domain.VideoAuditResult{
					OverallScore: 88,
					Language:     "en",
				},
			},
		},
	}
	handler := NewHandler(auditor, &fakeKeywordStore{}, nil, nil, logging.NewNop())
	router := newTestRouter(handler)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/audit/videos/v1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp VideoAuditResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "v1", resp.VideoID)
	assert.Equal(t, "c1", resp.ChannelID)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 88, resp.Result.OverallScore)
}

func TestAuditVideoNotFound(t *testing.T) {
	handler := NewHandler(&fakeAuditor{}, &fakeKeywordStore{}, nil, nil, logging.NewNop())
	router := newTestRouter(handler)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/audit/videos/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuditVideoInternalError(t *testing.T) {
	auditor := &fakeAuditor{err: errors.New("cluster unavailable")}
	handler := NewHandler(auditor, &fakeKeywordStore{}, nil, nil, logging.NewNop())
	router := newTestRouter(handler)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/audit/videos/v1", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuditChannelEndpoint(t *testing.T) {
	auditor := &fakeAuditor{
		channels: map[string]*domain.Channel{
			"c1": {
				ID:    "c1",
				Title: "cooking channel",
				BrandSafety: &domain.ChannelAuditResult{
					OverallScore: 97,
					VideosScored: 2,
				},
			},
		},
	}
	handler := NewHandler(auditor, &fakeKeywordStore{}, nil, nil, logging.NewNop())
	router := newTestRouter(handler)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/audit/channels/c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChannelAuditResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "c1", resp.ChannelID)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 97, resp.Result.OverallScore)
	assert.Equal(t, 2, resp.Result.VideosScored)
}

func TestAuditChannelNotFound(t *testing.T) {
	handler := NewHandler(&fakeAuditor{}, &fakeKeywordStore{}, nil, nil, logging.NewNop())
	router := newTestRouter(handler)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/audit/channels/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListKeywords(t *testing.T) {
	store := &fakeKeywordStore{
		rules: []domain.KeywordRule{
			{ID: 1, Name: "scam", Language: "en", CategoryID: 1, Severity: 5},
			{ID: 2, Name: "estafa", Language: "es", CategoryID: 1, Severity: 5},
		},
	}
	handler := NewHandler(&fakeAuditor{}, store, nil, nil, logging.NewNop())
	router := newTestRouter(handler)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/keywords", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp KeywordListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/keywords?language=es", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "estafa", resp.Keywords[0].Name)
}

func TestCreateKeyword(t *testing.T) {
	store := &fakeKeywordStore{}
	handler := NewHandler(&fakeAuditor{}, store, nil, nil, logging.NewNop())
	router := newTestRouter(handler)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/keywords", CreateKeywordRequest{
		Name:       "violence",
		Language:   "en",
		CategoryID: 2,
		Severity:   7,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var rule domain.KeywordRule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rule))
	assert.Equal(t, int64(1), rule.ID)
	assert.Equal(t, "violence", rule.Name)
	require.Len(t, store.rules, 1)
}

func TestCreateKeywordValidation(t *testing.T) {
	handler := NewHandler(&fakeAuditor{}, &fakeKeywordStore{}, nil, nil, logging.NewNop())
	router := newTestRouter(handler)

	// missing severity
	rec := doRequest(t, router, http.MethodPost, "/api/v1/keywords", map[string]any{
		"name":        "scam",
		"language":    "en",
		"category_id": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteKeyword(t *testing.T) {
	store := &fakeKeywordStore{
		rules: []domain.KeywordRule{{ID: 7, Name: "scam", Language: "en"}},
	}
	handler := NewHandler(&fakeAuditor{}, store, nil, nil, logging.NewNop())
	router := newTestRouter(handler)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/keywords/7", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{7}, store.deleted)

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/keywords/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/keywords/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCategories(t *testing.T) {
	store := &fakeKeywordStore{
		categories: []domain.Category{
			{ID: 1, Title: "Scams & Fraud"},
			{ID: 2, Title: "Violence", VettedExcluded: true},
		},
	}
	handler := NewHandler(&fakeAuditor{}, store, nil, nil, logging.NewNop())
	router := newTestRouter(handler)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CategoryListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.True(t, resp.Categories[1].VettedExcluded)
}

func TestGetStats(t *testing.T) {
	handler := NewHandler(&fakeAuditor{}, &fakeKeywordStore{}, &fakeDepthQueue{depth: 12}, nil, logging.NewNop())
	router := newTestRouter(handler)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(12), resp.RescoreQueueDepth)
}

func TestHealthAndReady(t *testing.T) {
	checks := map[string]ReadyChecker{
		"postgres":      func(context.Context) error { return nil },
		"elasticsearch": func(context.Context) error { return nil },
	}
	handler := NewHandler(&fakeAuditor{}, &fakeKeywordStore{}, nil, checks, logging.NewNop())
	router := newTestRouter(handler)

	rec := doRequest(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyCheckFailingDependency(t *testing.T) {
	checks := map[string]ReadyChecker{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	}
	handler := NewHandler(&fakeAuditor{}, &fakeKeywordStore{}, nil, checks, logging.NewNop())
	router := newTestRouter(handler)

	rec := doRequest(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
}
