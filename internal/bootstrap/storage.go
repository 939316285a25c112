package bootstrap

import (
	"context"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/santidev10/brand-safety-audit/internal/config"
	"github.com/santidev10/brand-safety-audit/internal/logging"
	"github.com/santidev10/brand-safety-audit/internal/storage"
)

// StorageComponents holds the document store client and adapter.
type StorageComponents struct {
	Client *es.Client
	Store  *storage.Store
}

// SetupStorage connects to Elasticsearch and builds the store adapter.
func SetupStorage(ctx context.Context, cfg *config.Config, logger logging.Logger) (*StorageComponents, error) {
	client, err := storage.NewClient(ctx, cfg.Elasticsearch, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to document store: %w", err)
	}

	store := storage.NewStore(client, storage.Config{
		VideoIndex:        cfg.Elasticsearch.VideoIndex,
		ChannelIndex:      cfg.Elasticsearch.ChannelIndex,
		UpsertChunkSize:   cfg.Audit.UpsertChunkSize,
		UpsertConcurrency: cfg.Audit.UpsertConcurrency,
	})

	if err := store.EnsureIndices(ctx); err != nil {
		return nil, fmt.Errorf("ensure indices: %w", err)
	}
	logger.Info("document store ready",
		logging.String("video_index", cfg.Elasticsearch.VideoIndex),
		logging.String("channel_index", cfg.Elasticsearch.ChannelIndex),
	)

	return &StorageComponents{Client: client, Store: store}, nil
}
