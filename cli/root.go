package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gridsearch/config"
)

// RootOptions holds global flags for all commands, and the configuration and logger
// resolved from them before any command runs.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string

	GridFile string
	Width    int
	Height   int
	Walkable float64
	MinCost  int
	MaxCost  int
	Seed     int64
	Policy   string
	Start    string
	Goal     string

	Config *config.AppConfig
	Logger *slog.Logger
}

// ValidFormats defines the allowed log formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the gridsearch CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gridsearch",
		Short: "A* pathfinding on cost grids",
		Long: `Find minimum-cost paths on 4-connected grids of walls and weighted cells
with A* and a Manhattan heuristic. Watch a search in the console or the browser,
generate grids, and run batches of searches.

Grid files are text, one row per line: '#' is a wall, '.' costs 1, and a digit
is a cell of that cost.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.LogFormat) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid log format %q: must be one of %v", opts.LogFormat, ValidFormats))
			}
			opts.Logger = newLogger(opts.LogLevel, opts.LogFormat, cmd.ErrOrStderr())
			return loadConfig(cmd.Flags(), opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "yaml config file (kind: gridsearch)")
	flags.StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	flags.StringVar(&opts.LogFormat, "log-format", "text", "log format (json|text)")
	flags.StringVar(&opts.GridFile, "grid", "", "grid text file; a random grid is generated when empty")
	flags.IntVar(&opts.Width, "width", 0, "random grid width")
	flags.IntVar(&opts.Height, "height", 0, "random grid height")
	flags.Float64Var(&opts.Walkable, "walkable", 0, "probability that a random cell is walkable, within [0,1]")
	flags.IntVar(&opts.MinCost, "min-cost", 0, "lowest random cell cost")
	flags.IntVar(&opts.MaxCost, "max-cost", 0, "highest random cell cost")
	flags.Int64Var(&opts.Seed, "seed", 0, "random seed; 0 seeds from the clock")
	flags.StringVar(&opts.Policy, "policy", "", "closed set policy (final|reopen)")
	flags.StringVar(&opts.Start, "start", "", "start cell as x,y; random walkable cell when empty")
	flags.StringVar(&opts.Goal, "goal", "", "goal cell as x,y; random walkable cell when empty")

	cmd.AddCommand(NewConsoleCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))
	cmd.AddCommand(NewGenCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// loadConfig reads the config file, or the defaults, and applies the flags the user set.
func loadConfig(flags *pflag.FlagSet, opts *RootOptions) (err error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		if cfg, err = config.FromYaml(opts.ConfigPath); err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
	}

	if flags.Changed("grid") {
		cfg.Grid.File = opts.GridFile
	}
	if flags.Changed("width") {
		cfg.Grid.Width = opts.Width
	}
	if flags.Changed("height") {
		cfg.Grid.Height = opts.Height
	}
	if flags.Changed("walkable") {
		cfg.Grid.WalkableProbability = opts.Walkable
	}
	if flags.Changed("min-cost") {
		cfg.Grid.MinCost = opts.MinCost
	}
	if flags.Changed("max-cost") {
		cfg.Grid.MaxCost = opts.MaxCost
	}
	if flags.Changed("seed") {
		cfg.Grid.Seed = opts.Seed
	}
	if flags.Changed("policy") {
		cfg.Search.ClosedPolicy = opts.Policy
	}
	if flags.Changed("start") {
		if cfg.Search.Start, err = parsePoint(opts.Start); err != nil {
			return WrapExitError(ExitCommandError, "invalid --start", err)
		}
	}
	if flags.Changed("goal") {
		if cfg.Search.Goal, err = parsePoint(opts.Goal); err != nil {
			return WrapExitError(ExitCommandError, "invalid --goal", err)
		}
	}

	opts.Config = cfg
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
