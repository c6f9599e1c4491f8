package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"gridsearch/astar"
	"gridsearch/console"
	"gridsearch/store"
)

type consoleOptions struct {
	Delay time.Duration
	Clear bool
	Color bool
	DB    string
}

// NewConsoleCommand creates the console subcommand, which prints a frame of the grid
// for every improvement the search makes and then the outcome.
func NewConsoleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &consoleOptions{}

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Run one search and draw it in the terminal",
		Long: `Run one search and draw each improvement as a text frame: '#' walls,
't' traversed cells, 'x' the best path so far and 'G' the goal.

Exits 1 when no path exists or the search deadline passes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Delay, "delay", 0, "pause after every frame, e.g. 100ms")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "clear the terminal before every frame")
	cmd.Flags().BoolVar(&opts.Color, "color", false, "color the goal, path and traversed cells")
	cmd.Flags().StringVar(&opts.DB, "db", "", "sqlite file to record the run in")

	return cmd
}

func runConsole(cmd *cobra.Command, rootOpts *RootOptions, opts *consoleOptions) error {
	cfg, logger := rootOpts.Config, rootOpts.Logger

	rng, _ := newRand(cfg, logger)
	grid, err := loadGrid(cfg, rng)
	if err != nil {
		return err
	}
	start, goal, err := resolveEndpoints(cfg, grid, rng)
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

	renderOpts := []console.Option{console.WithDelay(opts.Delay)}
	if opts.Clear {
		renderOpts = append(renderOpts, console.WithClear())
	}
	if opts.Color {
		renderOpts = append(renderOpts, console.WithColor())
	}
	renderer := console.NewRenderer(cmd.OutOrStdout(), grid, goal, renderOpts...)

	logger.Debug("search started", "start", start, "goal", goal, "policy", policy)
	begin := time.Now()
	result := astar.FindPath(ctx, grid, start, goal,
		astar.WithObserver(renderer),
		astar.WithClosedPolicy(policy))
	elapsed := time.Since(begin)
	logger.Info("search finished",
		"outcome", result.Outcome,
		"cost", result.Cost,
		"expanded", result.Expanded,
		"elapsed", elapsed)

	if err := renderer.Final(result); err != nil {
		return WrapExitError(ExitFailure, "failed to draw the search", err)
	}
	if opts.DB != "" {
		run := store.NewRun("console", grid, start, goal, policy, result, elapsed)
		if err := recordRun(cmd.Context(), opts.DB, run); err != nil {
			return err
		}
	}
	return outcomeError(result)
}

// recordRun appends one run to the history database.
func recordRun(ctx context.Context, path string, run store.Run) error {
	db, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to open run history", err)
	}
	defer db.Close()

	if _, err := db.Record(ctx, run); err != nil {
		return WrapExitError(ExitFailure, "failed to record run", err)
	}
	return nil
}
