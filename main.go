/*
gridsearch finds minimum-cost paths on 4-connected grids with A* and a Manhattan
heuristic. A search can be watched frame by frame in the terminal (console) or live in
the browser (serve), and batches of random searches can be run across a pool of
workers and recorded to sqlite for later comparison (batch, history).

	gridsearch console --grid maze.txt --start 0,0 --goal 24,24 --delay 100ms --clear
	gridsearch serve --seed 42 --port 8080
	gridsearch batch --config config.yaml --db runs.db
*/

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"gridsearch/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := cli.NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
	}
	return cli.GetExitCode(err)
}
