// Command auditd runs the brand-safety audit engine: batch walks over the
// channel corpus and on-demand audits of single videos or channels.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/santidev10/brand-safety-audit/internal/bootstrap"
	"github.com/santidev10/brand-safety-audit/internal/domain"
	"github.com/santidev10/brand-safety-audit/internal/logging"
)

const version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "auditd",
		Short: "Brand-safety audit engine",
		Long: `auditd scores videos and channels against keyword lexicons and
persists brand-safety results to the document store.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(newRunCmd(), newAuditCmd(), newResetCmd(), newVersionCmd())
	return root
}

// newRunCmd creates the batch run command.
func newRunCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a batch audit over the channel corpus",
		Long: `Run walks the channel corpus page by page, scoring videos and
aggregating channel results. Discovery mode targets channels that were never
audited; update mode refreshes stale or incomplete results.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			auditMode := domain.AuditMode(mode)
			if !auditMode.Valid() {
				return fmt.Errorf("invalid mode %q (expected %s or %s)",
					mode, domain.ModeDiscovery, domain.ModeUpdate)
			}

			engine, err := setupEngine(cmd.Context(), auditMode)
			if err != nil {
				return err
			}
			defer engine.Close()

			stats, err := engine.Orchestrator.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("audit run: %w", err)
			}

			engine.Logger.Info("audit run finished",
				logging.String("run_id", stats.RunID),
				logging.String("mode", string(stats.Mode)),
				logging.Int("pages", stats.Pages),
				logging.Int("pages_failed", stats.PagesFailed),
				logging.Int("channels_scored", stats.ChannelsScored),
				logging.Int("videos_scored", stats.VideosScored),
				logging.Int("failures", stats.Failures),
				logging.Int("rescore_queued", stats.RescoreQueued),
				logging.Bool("corpus_exhausted", stats.CorpusExhausted),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(domain.ModeDiscovery), "audit mode: discovery or update")
	return cmd
}

// newAuditCmd creates the on-demand audit subcommands.
func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit a single video or channel on demand",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "video <id>",
			Short: "Score one video and persist the result",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				engine, err := setupEngine(cmd.Context(), domain.ModeDiscovery)
				if err != nil {
					return err
				}
				defer engine.Close()

				video, err := engine.Orchestrator.AuditVideo(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("audit video: %w", err)
				}
				return printResult(video.BrandSafety)
			},
		},
		&cobra.Command{
			Use:   "channel <id>",
			Short: "Score one channel and all of its videos",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				engine, err := setupEngine(cmd.Context(), domain.ModeDiscovery)
				if err != nil {
					return err
				}
				defer engine.Close()

				channel, err := engine.Orchestrator.AuditChannel(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("audit channel: %w", err)
				}
				return printResult(channel.BrandSafety)
			},
		},
	)
	return cmd
}

// newResetCmd creates the command that clears persisted results.
func newResetCmd() *cobra.Command {
	var videoIDs, channelIDs []string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear persisted brand-safety results for the given ids",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(videoIDs) == 0 && len(channelIDs) == 0 {
				return fmt.Errorf("nothing to reset: pass --videos and/or --channels")
			}

			engine, err := setupEngine(cmd.Context(), domain.ModeDiscovery)
			if err != nil {
				return err
			}
			defer engine.Close()

			if len(videoIDs) > 0 {
				if err := engine.Storage.Store.ResetVideoResults(cmd.Context(), videoIDs); err != nil {
					return fmt.Errorf("reset videos: %w", err)
				}
			}
			if len(channelIDs) > 0 {
				if err := engine.Storage.Store.ResetChannelResults(cmd.Context(), channelIDs); err != nil {
					return fmt.Errorf("reset channels: %w", err)
				}
			}

			engine.Logger.Info("results reset",
				logging.Int("videos", len(videoIDs)),
				logging.Int("channels", len(channelIDs)))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&videoIDs, "videos", nil, "video ids to reset")
	cmd.Flags().StringSliceVar(&channelIDs, "channels", nil, "channel ids to reset")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(*cobra.Command, []string) {
			fmt.Printf("auditd version %s\n", version)
		},
	}
}

func setupEngine(ctx context.Context, mode domain.AuditMode) (*bootstrap.Engine, error) {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	engine, err := bootstrap.NewEngine(ctx, cfg, logger, mode)
	if err != nil {
		return nil, fmt.Errorf("wire engine: %w", err)
	}
	return engine, nil
}

func printResult(result any) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
