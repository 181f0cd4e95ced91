// Command ingest runs the sync pipeline once from the command line.
//
// Usage:
//
//	courtside-ingest                      full sweep, same as the daily job
//	courtside-ingest migrate
//	courtside-ingest seasons
//	courtside-ingest season sr:season:118689
//	courtside-ingest statistics sr:season:118689
//	courtside-ingest advice
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtside/ingestion/internal/app"
	"courtside/ingestion/internal/config"
	"courtside/ingestion/internal/identifier"
	"courtside/ingestion/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "courtside-ingest",
		Short:        "Courtside data ingestion CLI",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(func(ctx context.Context, pipeline *app.App) error {
				return pipeline.Scheduler.RunOnce(ctx)
			})
		},
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(seasonsCmd())
	root.AddCommand(seasonCmd())
	root.AddCommand(statisticsCmd())
	root.AddCommand(adviceCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			setupLogger(cfg)
			return repository.Migrate(app.DatabaseConfig(cfg))
		},
	}
}

func seasonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seasons",
		Short: "Discover seasons from the provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(func(ctx context.Context, pipeline *app.App) error {
				res, err := pipeline.Syncer.SyncSeasons(ctx)
				log.Info().Str("summary", res.Summary()).Msg("Seasons sync finished")
				return err
			})
		},
	}
}

func seasonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "season <season-id>",
		Short: "Sync one season with its competitors, players, matches and statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(func(ctx context.Context, pipeline *app.App) error {
				res, err := pipeline.Scheduler.RunSeason(ctx, args[0])
				if err != nil {
					return err
				}
				for _, e := range res.Errors {
					log.Error().Str("error", e).Msg("Sync error")
				}
				return nil
			})
		},
	}
}

func statisticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "statistics <season-id>",
		Short: "Run the staggered statistics refresh for a stored season",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(func(ctx context.Context, pipeline *app.App) error {
				seasonID := identifier.Strip(args[0], identifier.Season)
				season, err := pipeline.Store.Seasons.FindBySpecialID(ctx, seasonID)
				if err != nil {
					return err
				}
				if season == nil {
					return fmt.Errorf("season %s not found locally, run `season %s` first", seasonID, seasonID)
				}

				results, err := pipeline.Fanout.RefreshSeasonStatistics(ctx, season)
				if err != nil {
					return err
				}
				for _, r := range results {
					if r.Err != nil {
						log.Error().Err(r.Err).Str("competitor_id", r.CompetitorID).Msg("Statistics refresh failed")
					}
				}
				return nil
			})
		},
	}
}

func adviceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advice",
		Short: "Generate today's advice for competitors with statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(func(ctx context.Context, pipeline *app.App) error {
				if pipeline.Advisor == nil {
					return fmt.Errorf("LLM_API_KEY is required")
				}
				report, err := pipeline.Advisor.Run(ctx)
				if err != nil {
					return err
				}
				log.Info().
					Int("candidates", report.Candidates).
					Int("generated", report.Generated).
					Int("already_advised", report.AlreadyAdvised).
					Int("failed", report.Failed).
					Msg("Advice run finished")
				return nil
			})
		},
	}
}

// runPipeline loads config, wires the pipeline, verifies the store and
// cancels on interrupt.
func runPipeline(fn func(ctx context.Context, pipeline *app.App) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(cfg)

	pipeline, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	if err := pipeline.DB.Health(ctx); err != nil {
		return err
	}

	start := time.Now()
	if err := fn(ctx, pipeline); err != nil {
		log.Error().Err(err).Msg("Command failed")
		return err
	}
	log.Info().Dur("duration", time.Since(start)).Msg("Command complete")
	return nil
}

// setupLogger configures the zerolog logger the same way the worker does
func setupLogger(cfg *config.Config) {
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		level = parsed
	}
	zerolog.SetGlobalLevel(level)
}
