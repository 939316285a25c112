package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santidev10/brand-safety-audit/internal/domain"
)

func testStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	// The v8 client rejects servers that do not identify as Elasticsearch.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := es.NewClient(es.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	return NewStore(client, Config{
		VideoIndex:        "videos",
		ChannelIndex:      "channels",
		UpsertChunkSize:   2,
		UpsertConcurrency: 2,
	})
}

func TestSearchVideosDecodesHits(t *testing.T) {
	store := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/videos/_search")

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "query")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"hits": {"hits": [
				{"_id": "v1", "_source": {"id": "v1", "channel_id": "c1", "title": "first"}},
				{"_id": "v2", "_source": {"channel_id": "c1", "title": "second"}}
			]}
		}`))
	})

	videos, err := store.SearchVideos(context.Background(), NewQuery(Term("channel_id", "c1")))
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "v1", videos[0].ID)
	// The document id backfills a missing source id.
	assert.Equal(t, "v2", videos[1].ID)
	assert.Equal(t, "second", videos[1].Title)
}

func TestSearchChannelsErrorStatus(t *testing.T) {
	store := testStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"reason": "bad query"}}`))
	})

	_, err := store.SearchChannels(context.Background(), NewQuery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search channels")
}

func TestUpsertVideosBulkPayload(t *testing.T) {
	var lines []string
	store := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_bulk", r.URL.Path)
		scanner := bufio.NewScanner(r.Body)
		for scanner.Scan() {
			if text := strings.TrimSpace(scanner.Text()); text != "" {
				lines = append(lines, text)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors": false, "items": []}`))
	})

	videos := []*domain.Video{
		{ID: "v1", BrandSafety: &domain.VideoAuditResult{OverallScore: 88}},
		{ID: "v2"}, // no result, skipped
	}
	require.NoError(t, store.UpsertVideos(context.Background(), videos))

	require.Len(t, lines, 2)
	var meta map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &meta))
	assert.Equal(t, "videos", meta["update"]["_index"])
	assert.Equal(t, "v1", meta["update"]["_id"])

	var action map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &action))
	assert.Equal(t, true, action["doc_as_upsert"])
	doc := action["doc"].(map[string]any)["brand_safety"].(map[string]any)
	assert.InDelta(t, 88, doc["overall_score"], 0)
}

func TestUpsertChannelsChunksLargeBatches(t *testing.T) {
	requests := make(chan int, 10)
	store := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		count := 0
		scanner := bufio.NewScanner(r.Body)
		for scanner.Scan() {
			if strings.Contains(scanner.Text(), "doc_as_upsert") {
				count++
			}
		}
		requests <- count
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors": false, "items": []}`))
	})

	channels := make([]*domain.Channel, 5)
	for i := range channels {
		channels[i] = &domain.Channel{
			ID:          string(rune('a' + i)),
			BrandSafety: &domain.ChannelAuditResult{OverallScore: 90},
		}
	}
	require.NoError(t, store.UpsertChannels(context.Background(), channels))
	close(requests)

	total, calls := 0, 0
	for n := range requests {
		total += n
		calls++
	}
	// Chunk size 2 splits 5 docs into 3 requests.
	assert.Equal(t, 5, total)
	assert.Equal(t, 3, calls)
}

func TestBulkUpsertReportsItemErrors(t *testing.T) {
	store := testStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"errors": true,
			"items": [
				{"update": {"_id": "v1"}},
				{"update": {"_id": "v2", "error": {"type": "mapper_parsing_exception", "reason": "bad field"}}}
			]
		}`))
	})

	err := store.UpsertVideos(context.Background(), []*domain.Video{
		{ID: "v1", BrandSafety: &domain.VideoAuditResult{}},
		{ID: "v2", BrandSafety: &domain.VideoAuditResult{}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 items failed")
	assert.Contains(t, err.Error(), "mapper_parsing_exception")
}

func TestEnsureIndicesCreatesMissing(t *testing.T) {
	var created []string
	store := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/videos":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodHead && r.URL.Path == "/channels":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/videos":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Contains(t, body, "settings")
			assert.Contains(t, body, "mappings")
			created = append(created, "videos")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"acknowledged": true}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	require.NoError(t, store.EnsureIndices(context.Background()))
	// The channel index already exists and is not recreated.
	assert.Equal(t, []string{"videos"}, created)
}

func TestResetVideoResultsNullsSection(t *testing.T) {
	var lines []string
	store := testStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_bulk", r.URL.Path)
		scanner := bufio.NewScanner(r.Body)
		for scanner.Scan() {
			if text := strings.TrimSpace(scanner.Text()); text != "" {
				lines = append(lines, text)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors": false, "items": []}`))
	})

	require.NoError(t, store.ResetVideoResults(context.Background(), []string{"v1", ""}))

	// Empty ids are dropped, leaving one meta plus one action line.
	require.Len(t, lines, 2)
	var action map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &action))
	doc := action["doc"].(map[string]any)
	value, present := doc["brand_safety"]
	assert.True(t, present)
	assert.Nil(t, value)
}
