package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gridsearch/astar"
	"gridsearch/store"
)

type historyOptions struct {
	DB    string
	Limit int
}

// NewHistoryCommand creates the history subcommand, which lists recorded runs.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the runs recorded by console and batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "sqlite file holding the runs (required)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of recent runs to list")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *historyOptions) error {
	if opts.Limit < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --limit %d", opts.Limit))
	}

	db, err := store.Open(opts.DB)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to open run history", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	counts, err := db.CountByOutcome(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to count runs", err)
	}
	runs, err := db.Recent(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list runs", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d found, %d not found, %d cancelled\n",
		counts[astar.Found], counts[astar.NotFound], counts[astar.Cancelled])

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tSOURCE\tGRID\tSTART\tGOAL\tPOLICY\tOUTCOME\tCOST\tEXPANDED\tELAPSED")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%v\t%v\t%v\t%v\t%d\t%d\t%v\n",
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Source,
			run.Width, run.Height,
			run.Start, run.Goal,
			run.ClosedPolicy, run.Outcome,
			run.Cost, run.Expanded, run.Elapsed)
	}
	return tw.Flush()
}
