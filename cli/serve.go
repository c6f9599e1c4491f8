package cli

import (
	"time"

	"github.com/spf13/cobra"

	"gridsearch/server"
)

type serveOptions struct {
	Host      string
	Port      string
	StepDelay time.Duration
}

// NewServeCommand creates the serve subcommand, which runs one search behind a live web view.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run one search and watch it in the browser",
		Long: `Serve a page that draws the grid and updates over a websocket as the search
progresses. The search advances while a page is connected. The result is also
available as json from /api/result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Host, "host", "", "listen host (default from config)")
	cmd.Flags().StringVar(&opts.Port, "port", "", "listen port (default from config)")
	cmd.Flags().DurationVar(&opts.StepDelay, "step-delay", 0, "pause between progress events (default from config)")

	return cmd
}

func runServe(cmd *cobra.Command, rootOpts *RootOptions, opts *serveOptions) error {
	cfg, logger := rootOpts.Config, rootOpts.Logger
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = opts.Host
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = opts.Port
	}
	if cmd.Flags().Changed("step-delay") {
		cfg.Server.StepDelay = opts.StepDelay
	}

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

	deadline, err := cfg.SearchDeadline()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	srv, err := server.NewServer(cmd.Context(), logger, grid, server.Params{
		Addr:         cfg.Server.Addr(),
		Start:        start,
		Goal:         goal,
		ClosedPolicy: policy,
		StepDelay:    cfg.Server.StepDelay,
		Deadline:     deadline,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build server", err)
	}

	if err := srv.Serve(cmd.Context()); err != nil {
		return WrapExitError(ExitFailure, "server failed", err)
	}
	return nil
}
