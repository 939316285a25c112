// Package storage adapts the document store (Elasticsearch) for the audit
// engine: typed search over video and channel documents, multi-get, and
// chunked concurrent upserts of brand-safety results.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"
	"golang.org/x/sync/errgroup"

	"github.com/santidev10/brand-safety-audit/internal/domain"
)

// Config shapes store behavior: index names and upsert chunking.
type Config struct {
	VideoIndex        string
	ChannelIndex      string
	UpsertChunkSize   int
	UpsertConcurrency int
}

// Store implements document store operations for the audit engine.
type Store struct {
	client *es.Client
	cfg    Config
}

// NewStore creates a document store adapter.
func NewStore(client *es.Client, cfg Config) *Store {
	if cfg.UpsertChunkSize <= 0 {
		cfg.UpsertChunkSize = 500
	}
	if cfg.UpsertConcurrency <= 0 {
		cfg.UpsertConcurrency = 1
	}
	return &Store{client: client, cfg: cfg}
}

// SearchVideos runs a composed query against the video index.
func (s *Store) SearchVideos(ctx context.Context, query *Query) ([]*domain.Video, error) {
	var videos []*domain.Video
	if err := s.search(ctx, s.cfg.VideoIndex, query, func(id string, source json.RawMessage) error {
		var v domain.Video
		if err := json.Unmarshal(source, &v); err != nil {
			return err
		}
		if v.ID == "" {
			v.ID = id
		}
		videos = append(videos, &v)
		return nil
	}); err != nil {
		return nil, err
	}
	return videos, nil
}

// SearchChannels runs a composed query against the channel index.
func (s *Store) SearchChannels(ctx context.Context, query *Query) ([]*domain.Channel, error) {
	var channels []*domain.Channel
	if err := s.search(ctx, s.cfg.ChannelIndex, query, func(id string, source json.RawMessage) error {
		var c domain.Channel
		if err := json.Unmarshal(source, &c); err != nil {
			return err
		}
		if c.ID == "" {
			c.ID = id
		}
		channels = append(channels, &c)
		return nil
	}); err != nil {
		return nil, err
	}
	return channels, nil
}

// GetVideos fetches videos by id. Missing ids are silently absent from the
// result.
func (s *Store) GetVideos(ctx context.Context, ids []string) ([]*domain.Video, error) {
	return s.SearchVideos(ctx, NewQuery(Terms("id", toAny(ids)...)).Size(len(ids)))
}

// GetChannels fetches channels by id. Missing ids are silently absent from
// the result.
func (s *Store) GetChannels(ctx context.Context, ids []string) ([]*domain.Channel, error) {
	return s.SearchChannels(ctx, NewQuery(Terms("id", toAny(ids)...)).Size(len(ids)))
}

// VideosByChannel fetches up to limit videos belonging to a channel.
func (s *Store) VideosByChannel(ctx context.Context, channelID string, limit int) ([]*domain.Video, error) {
	return s.SearchVideos(ctx, NewQuery(Term("channel_id", channelID)).Size(limit).SortAsc("id"))
}

// UpsertVideos persists the brand-safety section of each video as a partial
// update, creating the document when it does not exist.
func (s *Store) UpsertVideos(ctx context.Context, videos []*domain.Video) error {
	docs := make([]upsertDoc, 0, len(videos))
	for _, v := range videos {
		if v.BrandSafety == nil {
			continue
		}
		docs = append(docs, upsertDoc{
			id:  v.ID,
			doc: map[string]any{"brand_safety": v.BrandSafety},
		})
	}
	return s.upsertChunked(ctx, s.cfg.VideoIndex, docs)
}

// UpsertChannels persists the brand-safety section of each channel as a
// partial update, creating the document when it does not exist.
func (s *Store) UpsertChannels(ctx context.Context, channels []*domain.Channel) error {
	docs := make([]upsertDoc, 0, len(channels))
	for _, c := range channels {
		if c.BrandSafety == nil {
			continue
		}
		docs = append(docs, upsertDoc{
			id:  c.ID,
			doc: map[string]any{"brand_safety": c.BrandSafety},
		})
	}
	return s.upsertChunked(ctx, s.cfg.ChannelIndex, docs)
}

// ResetVideoResults clears the persisted brand-safety section of the given
// video documents. Missing documents are created empty, which is harmless.
func (s *Store) ResetVideoResults(ctx context.Context, ids []string) error {
	return s.upsertChunked(ctx, s.cfg.VideoIndex, resetDocs(ids))
}

// ResetChannelResults clears the persisted brand-safety section of the given
// channel documents.
func (s *Store) ResetChannelResults(ctx context.Context, ids []string) error {
	return s.upsertChunked(ctx, s.cfg.ChannelIndex, resetDocs(ids))
}

func resetDocs(ids []string) []upsertDoc {
	docs := make([]upsertDoc, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		docs = append(docs, upsertDoc{
			id:  id,
			doc: map[string]any{"brand_safety": nil},
		})
	}
	return docs
}

// Ping verifies the document store connection.
func (s *Store) Ping(ctx context.Context) error {
	return ping(ctx, s.client)
}

// search runs the query body against index and feeds each hit to collect.
func (s *Store) search(ctx context.Context, index string, query *Query, collect func(id string, source json.RawMessage) error) error {
	body, err := json.Marshal(query.Build())
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("search %s: %s", index, res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				ID     string          `json:"_id"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode search response: %w", err)
	}

	for _, hit := range result.Hits.Hits {
		if err := collect(hit.ID, hit.Source); err != nil {
			return fmt.Errorf("decode document %s: %w", hit.ID, err)
		}
	}
	return nil
}

type upsertDoc struct {
	id  string
	doc map[string]any
}

// upsertChunked writes docs in bulk. Batches at or below the chunk size go
// out in one request; larger batches are split across concurrent workers so
// a big channel rollup does not serialize behind one slow bulk call.
func (s *Store) upsertChunked(ctx context.Context, index string, docs []upsertDoc) error {
	if len(docs) == 0 {
		return nil
	}
	if len(docs) <= s.cfg.UpsertChunkSize {
		return s.bulkUpsert(ctx, index, docs)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.UpsertConcurrency)
	for start := 0; start < len(docs); start += s.cfg.UpsertChunkSize {
		end := start + s.cfg.UpsertChunkSize
		if end > len(docs) {
			end = len(docs)
		}
		chunk := docs[start:end]
		g.Go(func() error {
			return s.bulkUpsert(gctx, index, chunk)
		})
	}
	return g.Wait()
}

// bulkUpsert issues one bulk request of partial-document upserts and checks
// per-item results, not just the envelope status.
func (s *Store) bulkUpsert(ctx context.Context, index string, docs []upsertDoc) error {
	var buf bytes.Buffer
	for _, d := range docs {
		meta := map[string]any{
			"update": map[string]any{"_index": index, "_id": d.id},
		}
		if err := json.NewEncoder(&buf).Encode(meta); err != nil {
			return fmt.Errorf("encode bulk meta: %w", err)
		}
		action := map[string]any{"doc": d.doc, "doc_as_upsert": true}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return fmt.Errorf("encode bulk action: %w", err)
		}
	}

	res, err := s.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("bulk upsert %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk upsert %s: %s", index, res.String())
	}

	var result struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID    string `json:"_id"`
			Error *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if !result.Errors {
		return nil
	}

	failed := 0
	var first string
	for _, item := range result.Items {
		for _, op := range item {
			if op.Error != nil {
				failed++
				if first == "" {
					first = fmt.Sprintf("%s: %s %s", op.ID, op.Error.Type, op.Error.Reason)
				}
			}
		}
	}
	return fmt.Errorf("bulk upsert %s: %d of %d items failed, first: %s", index, failed, len(docs), first)
}

func toAny(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
