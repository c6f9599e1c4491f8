package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"gridsearch/astar"
	"gridsearch/grid_world"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestOpen(t *testing.T) {
	Convey("When the database is opened", t, func() {
		s, path := openTemp(t)

		Convey("WAL mode is enabled", func() {
			var mode string
			So(s.db.QueryRow("PRAGMA journal_mode").Scan(&mode), ShouldBeNil)
			So(mode, ShouldEqual, "wal")
		})

		Convey("Reopening an existing database keeps its runs", func() {
			_, err := s.Record(context.Background(), Run{Source: "test"})
			So(err, ShouldBeNil)
			So(s.Close(), ShouldBeNil)

			again, err := Open(path)
			So(err, ShouldBeNil)
			defer again.Close()
			runs, err := again.Recent(context.Background(), 10)
			So(err, ShouldBeNil)
			So(runs, ShouldHaveLength, 1)
		})
	})
}

func TestRecord(t *testing.T) {
	Convey("When runs are recorded", t, func() {
		s, _ := openTemp(t)
		ctx := context.Background()
		grid, err := grid_world.FromRows([]string{"...", ".#.", "..."})
		So(err, ShouldBeNil)

		start, goal := grid_world.Point{}, grid_world.Point{X: 2, Y: 2}
		result := astar.FindPath(ctx, grid, start, goal)
		run := NewRun("console", grid, start, goal, astar.ClosedFinal, result, 3*time.Millisecond)
		run.CreatedAt = time.Unix(100, 0)

		id, err := s.Record(ctx, run)
		So(err, ShouldBeNil)
		_, err = uuid.Parse(id)
		So(err, ShouldBeNil)

		Convey("They read back with every field intact", func() {
			runs, err := s.Recent(ctx, 5)
			So(err, ShouldBeNil)
			So(runs, ShouldHaveLength, 1)

			got := runs[0]
			So(got.ID, ShouldEqual, id)
			So(got.CreatedAt.Equal(run.CreatedAt), ShouldBeTrue)
			So(got.Source, ShouldEqual, "console")
			So(got.Width, ShouldEqual, 3)
			So(got.Height, ShouldEqual, 3)
			So(got.Start, ShouldResemble, start)
			So(got.Goal, ShouldResemble, goal)
			So(got.ClosedPolicy, ShouldEqual, astar.ClosedFinal)
			So(got.Outcome, ShouldEqual, astar.Found)
			So(got.Cost, ShouldEqual, 4)
			So(got.PathLen, ShouldEqual, 5)
			So(got.Expanded, ShouldEqual, result.Expanded)
			So(got.Elapsed, ShouldEqual, 3*time.Millisecond)
		})

		Convey("Recent returns the newest first and honors the limit", func() {
			for i, outcome := range []astar.Outcome{astar.NotFound, astar.Cancelled, astar.NotFound} {
				_, err := s.Record(ctx, Run{
					Source:    "batch",
					Outcome:   outcome,
					CreatedAt: time.Unix(int64(200+i), 0),
				})
				So(err, ShouldBeNil)
			}

			runs, err := s.Recent(ctx, 2)
			So(err, ShouldBeNil)
			So(runs, ShouldHaveLength, 2)
			So(runs[0].CreatedAt.Unix(), ShouldEqual, 202)
			So(runs[1].CreatedAt.Unix(), ShouldEqual, 201)

			Convey("And outcomes are tallied", func() {
				counts, err := s.CountByOutcome(ctx)
				So(err, ShouldBeNil)
				So(counts, ShouldResemble, map[astar.Outcome]int{
					astar.Found:     1,
					astar.NotFound:  2,
					astar.Cancelled: 1,
				})
			})
		})

		Convey("A duplicate id is rejected", func() {
			run.ID = id
			_, err := s.Record(ctx, run)
			So(err, ShouldNotBeNil)
		})
	})
}
