package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/santidev10/brand-safety-audit/internal/elasticsearch/mappings"
)

// EnsureIndices creates the video and channel indices when they do not exist.
// Existing indices are left untouched.
func (s *Store) EnsureIndices(ctx context.Context) error {
	indices := []struct {
		name    string
		mapping mappings.IndexMapping
	}{
		{s.cfg.VideoIndex, mappings.NewVideoMapping()},
		{s.cfg.ChannelIndex, mappings.NewChannelMapping()},
	}

	for _, index := range indices {
		if err := s.ensureIndex(ctx, index.name, index.mapping); err != nil {
			return fmt.Errorf("ensure index %s: %w", index.name, err)
		}
	}
	return nil
}

func (s *Store) ensureIndex(ctx context.Context, name string, mapping mappings.IndexMapping) error {
	res, err := s.client.Indices.Exists(
		[]string{name},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("check index: %s", res.Status())
	}

	if err := mapping.Validate(); err != nil {
		return fmt.Errorf("validate mapping: %w", err)
	}
	body, err := mapping.GetJSON()
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}

	createRes, err := s.client.Indices.Create(
		name,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(strings.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("create index: %s", createRes.Status())
	}
	return nil
}
