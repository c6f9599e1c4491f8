package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"gridsearch/grid_world"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromYaml(t *testing.T) {
	Convey("When a config file is loaded", t, func() {
		Convey("Def values override the defaults and omitted keys keep them", func() {
			path := writeConfig(t, `
kind: gridsearch
def:
  grid:
    width: 40
    walkableProbability: 0.75
    maxCost: 9
  search:
    goal: {x: 3, y: 4}
    closedPolicy: reopen
  server:
    stepDelay: 5ms
`)
			cfg, err := FromYaml(path)
			So(err, ShouldBeNil)
			So(cfg.Grid.Width, ShouldEqual, 40)
			So(cfg.Grid.Height, ShouldEqual, 25)
			So(cfg.Grid.WalkableProbability, ShouldEqual, 0.75)
			So(cfg.Grid.MinCost, ShouldEqual, 1)
			So(cfg.Grid.MaxCost, ShouldEqual, 9)
			So(cfg.Search.Start, ShouldBeNil)
			So(cfg.Search.Goal.Point(), ShouldResemble, grid_world.Point{X: 3, Y: 4})
			So(cfg.Search.ClosedPolicy, ShouldEqual, "reopen")
			So(cfg.Server.StepDelay, ShouldEqual, 5*time.Millisecond)
			So(cfg.Server.Addr(), ShouldEqual, ":8080")
			So(cfg.Batch.Workers, ShouldEqual, 4)
		})

		Convey("A different kind is rejected", func() {
			path := writeConfig(t, "kind: racetrack\ndef:\n  grid:\n    width: 3\n")
			_, err := FromYaml(path)
			So(errors.Is(err, ErrWrongKind), ShouldBeTrue)
		})

		Convey("A missing file is an error", func() {
			_, err := FromYaml(filepath.Join(t.TempDir(), "missing.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestWithSearchDeadline(t *testing.T) {
	Convey("When a search deadline is configured", t, func() {
		cfg := Default()

		Convey("A duration bounds the context", func() {
			cfg.Search.Deadline = map[string]string{"duration": "1h"}
			ctx, cancel, err := cfg.WithSearchDeadline(context.Background())
			So(err, ShouldBeNil)
			defer cancel()
			deadline, ok := ctx.Deadline()
			So(ok, ShouldBeTrue)
			So(time.Until(deadline), ShouldBeGreaterThan, 59*time.Minute)
		})

		Convey("No duration yields a cancellable context without deadline", func() {
			ctx, cancel, err := cfg.WithSearchDeadline(context.Background())
			So(err, ShouldBeNil)
			_, ok := ctx.Deadline()
			So(ok, ShouldBeFalse)
			cancel()
			So(ctx.Err(), ShouldEqual, context.Canceled)
		})

		Convey("A malformed duration is an error", func() {
			cfg.Search.Deadline = map[string]string{"duration": "soon"}
			_, _, err := cfg.WithSearchDeadline(context.Background())
			So(err, ShouldNotBeNil)
		})

		Convey("The raw duration is available to callers that bound only the search", func() {
			cfg.Search.Deadline = map[string]string{"duration": "250ms"}
			duration, err := cfg.SearchDeadline()
			So(err, ShouldBeNil)
			So(duration, ShouldEqual, 250*time.Millisecond)

			cfg.Search.Deadline = nil
			duration, err = cfg.SearchDeadline()
			So(err, ShouldBeNil)
			So(duration, ShouldEqual, time.Duration(0))
		})
	})
}

func TestDefault(t *testing.T) {
	Convey("The default grid matches the console demo", t, func() {
		So(Default().Grid.GenParams(), ShouldResemble, grid_world.ConsoleParams)
	})
}
