// Command httpd serves the brand-safety audit HTTP API: on-demand audits,
// keyword rule management and operational endpoints.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/santidev10/brand-safety-audit/internal/bootstrap"
	"github.com/santidev10/brand-safety-audit/internal/domain"
	"github.com/santidev10/brand-safety-audit/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	engine, err := bootstrap.NewEngine(ctx, cfg, logger, domain.ModeDiscovery)
	if err != nil {
		return fmt.Errorf("wire engine: %w", err)
	}
	defer engine.Close()

	server := engine.NewServer()

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("graceful shutdown failed", logging.Error(err))
		return err
	}

	logger.Info("server stopped")
	return nil
}
