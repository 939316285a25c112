package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/santidev10/brand-safety-audit/internal/api"
	"github.com/santidev10/brand-safety-audit/internal/config"
	"github.com/santidev10/brand-safety-audit/internal/domain"
	"github.com/santidev10/brand-safety-audit/internal/lexicon"
	"github.com/santidev10/brand-safety-audit/internal/logging"
	"github.com/santidev10/brand-safety-audit/internal/processor"
	"github.com/santidev10/brand-safety-audit/internal/telemetry"
)

// Engine holds every wired component of the audit service.
type Engine struct {
	Config       *config.Config
	Logger       logging.Logger
	Database     *DatabaseComponents
	Storage      *StorageComponents
	Queue        *QueueComponents
	Telemetry    *telemetry.Provider
	Orchestrator *processor.Orchestrator
}

// NewEngine connects to every backing service and wires the orchestrator.
func NewEngine(ctx context.Context, cfg *config.Config, logger logging.Logger, mode domain.AuditMode) (*Engine, error) {
	dbComps, err := SetupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	storageComps, err := SetupStorage(ctx, cfg, logger)
	if err != nil {
		_ = dbComps.DB.Close()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	queueComps, err := SetupRescoreQueue(ctx, cfg, logger)
	if err != nil {
		_ = dbComps.DB.Close()
		return nil, fmt.Errorf("setup rescore queue: %w", err)
	}

	cacheDir := cfg.Audit.LexiconCacheDir
	if cacheDir == "" {
		cacheDir = os.TempDir()
	}
	tel := telemetry.NewProvider()
	cache := lexicon.NewCache(cacheDir, cfg.Audit.LexiconCacheTTL)
	lexicons := lexicon.NewLoader(dbComps.Keywords, cache, tel, logger)

	limiter := processor.NewRateLimiter(cfg.Audit.QueryRPS, 0)

	orch := processor.NewOrchestrator(
		storageComps.Store,
		dbComps.Cursors,
		lexicons,
		queueComps.Queue,
		limiter,
		tel,
		logger,
		processor.Config{
			Mode:               mode,
			BatchSize:          cfg.Audit.BatchSize,
			SubBatchSize:       cfg.Audit.SubBatchSize,
			BatchLimit:         cfg.Audit.BatchLimit,
			RescoreThreshold:   cfg.Audit.RescoreThreshold,
			UpdateThreshold:    cfg.Audit.UpdateThreshold,
			MinSubscribers:     cfg.Audit.MinSubscribers,
			SearchLimit:        cfg.Audit.SearchLimit,
			Concurrency:        cfg.Audit.Concurrency,
			OffHoursMultiplier: cfg.Audit.OffHoursMultiplier,
			WorkingHoursStart:  cfg.Audit.WorkingHoursStart,
			WorkingHoursEnd:    cfg.Audit.WorkingHoursEnd,
		},
	)

	return &Engine{
		Config:       cfg,
		Logger:       logger,
		Database:     dbComps,
		Storage:      storageComps,
		Queue:        queueComps,
		Telemetry:    tel,
		Orchestrator: orch,
	}, nil
}

// NewServer builds the HTTP server over the engine's components.
func (e *Engine) NewServer() *api.Server {
	handler := api.NewHandler(
		e.Orchestrator,
		e.Database.Keywords,
		e.Queue.Queue,
		e.readyChecks(),
		e.Logger,
	)
	return api.NewServer(handler, api.ServerConfig{
		Port:  e.Config.Service.Port,
		Debug: e.Config.Service.Debug,
	}, e.Telemetry.Handler(), e.Logger)
}

// Close releases every connection held by the engine.
func (e *Engine) Close() {
	if e.Database != nil && e.Database.DB != nil {
		if err := e.Database.DB.Close(); err != nil {
			e.Logger.Warn("closing database connection", logging.Error(err))
		}
	}
	if e.Queue != nil && e.Queue.Client != nil {
		if err := e.Queue.Client.Close(); err != nil {
			e.Logger.Warn("closing Redis connection", logging.Error(err))
		}
	}
}

func (e *Engine) readyChecks() map[string]api.ReadyChecker {
	checks := map[string]api.ReadyChecker{
		"postgres": func(ctx context.Context) error {
			return e.Database.DB.PingContext(ctx)
		},
		"elasticsearch": func(ctx context.Context) error {
			res, err := e.Storage.Client.Ping(e.Storage.Client.Ping.WithContext(ctx))
			if err != nil {
				return err
			}
			defer res.Body.Close()
			if res.IsError() {
				return fmt.Errorf("document store ping: %s", res.Status())
			}
			return nil
		},
	}
	if e.Queue.Client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return e.Queue.Client.Ping(ctx).Err()
		}
	}
	return checks
}
