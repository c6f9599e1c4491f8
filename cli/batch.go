package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gridsearch/batch"
	"gridsearch/store"
)

type batchOptions struct {
	Workers  int
	Searches int
	DB       string
}

// NewBatchCommand creates the batch subcommand, which runs many searches between random
// walkable cells of one grid and prints a summary.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run many searches concurrently and summarize them",
		Long: `Run searches between random walkable cells of one grid, spread over a pool
of workers, and print how many found a path along with the mean cost and the mean
number of cells expanded. With --seed the pairs are reproducible.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "number of concurrent workers (default from config)")
	cmd.Flags().IntVar(&opts.Searches, "searches", 0, "number of searches (default from config)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "sqlite file to record every run in")

	return cmd
}

func runBatch(cmd *cobra.Command, rootOpts *RootOptions, opts *batchOptions) error {
	cfg, logger := rootOpts.Config, rootOpts.Logger
	if cmd.Flags().Changed("workers") {
		cfg.Batch.Workers = opts.Workers
	}
	if cmd.Flags().Changed("searches") {
		cfg.Batch.Searches = opts.Searches
	}
	if cmd.Flags().Changed("db") {
		cfg.Batch.DB = opts.DB
	}
	if cfg.Batch.Workers < 1 || cfg.Batch.Searches < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf(
			"invalid batch: %d workers, %d searches", cfg.Batch.Workers, cfg.Batch.Searches))
	}

	rng, seed := newRand(cfg, logger)
	grid, err := loadGrid(cfg, rng)
	if err != nil {
		return err
	}
	policy, err := closedPolicy(cfg)
	if err != nil {
		return err
	}

	ctx, cancel, err := cfg.WithSearchDeadline(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}
	defer cancel()

	var sink batch.Sink
	if cfg.Batch.DB != "" {
		db, err := store.Open(cfg.Batch.DB)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to open run history", err)
		}
		defer db.Close()

		sink = func(ctx context.Context, record batch.Record) error {
			run := store.NewRun("batch", grid, record.Start, record.Goal, policy, record.Result, record.Elapsed)
			_, err := db.Record(ctx, run)
			return err
		}
	}

	every := cfg.Batch.Searches / 10
	if every == 0 {
		every = 1
	}
	summary, err := batch.Run(ctx, grid, batch.Params{
		Workers:      cfg.Batch.Workers,
		Searches:     cfg.Batch.Searches,
		Seed:         seed,
		ClosedPolicy: policy,
		Logger:       logger,
		Progress: func(_ context.Context, completed int) {
			if completed%every == 0 {
				logger.Info("batch progress", "completed", completed, "of", cfg.Batch.Searches)
			}
		},
	}, sink)

	fmt.Fprintln(cmd.OutOrStdout(), summary)
	if err != nil {
		return WrapExitError(ExitFailure, "batch stopped early", err)
	}
	return nil
}
