package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type genOptions struct {
	Out string
}

// NewGenCommand creates the gen subcommand, which writes a random grid in the text format
// the other commands read with --grid.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &genOptions{}

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a random grid file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default stdout)")

	return cmd
}

func runGen(cmd *cobra.Command, rootOpts *RootOptions, opts *genOptions) error {
	cfg, logger := rootOpts.Config, rootOpts.Logger
	if cfg.Grid.File != "" {
		return NewExitError(ExitCommandError, "gen does not read --grid")
	}

	rng, seed := newRand(cfg, logger)
	grid, err := loadGrid(cfg, rng)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.Out != "" {
		f, err := os.Create(opts.Out)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to create grid file", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := fmt.Fprintln(w, strings.Join(grid.Rows(), "\n")); err != nil {
		return WrapExitError(ExitFailure, "failed to write grid", err)
	}
	logger.Info("grid generated",
		"width", grid.Width(),
		"height", grid.Height(),
		"walkable", len(grid.WalkablePoints()),
		"seed", seed)
	return nil
}
