package cell_views

import (
	"bytes"
	"context"
	"html/template"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"gridsearch/astar"
	"gridsearch/grid_world"
	"gridsearch/models"
)

func trackedFrames(t *testing.T, rows []string, start, goal grid_world.Point) (first, last models.Frame) {
	t.Helper()
	grid, err := grid_world.FromRows(rows)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	frames := make(chan models.Frame, grid.Width()*grid.Height()*4+1)
	tracker := models.NewTracker(ctx, grid, start, goal, frames, 0)
	first = tracker.Latest()
	tracker.Finish(astar.FindPath(ctx, grid, start, goal, astar.WithObserver(tracker)))
	return first, tracker.Latest()
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"add":  func(i, j int) int { return i + j },
		"mult": func(i, j int) int { return i * j },
		"div":  func(i, j int) int { return i / j },
	}
}

func TestConvert(t *testing.T) {
	Convey("When frames are converted to boards", t, func() {
		first, last := trackedFrames(t, []string{".3.", ".#.", "..."}, grid_world.Point{}, grid_world.Point{X: 2, Y: 2})

		Convey("The initial board shows the terrain", func() {
			board := Convert(first)
			So(board.Cells, ShouldHaveLength, 3)
			So(board.Cells[1][1].Fill, ShouldEqual, "dimgray")
			So(board.Cells[0][0].Fill, ShouldEqual, "lightblue")
			So(board.Cells[2][2].Fill, ShouldEqual, "lightyellow")
			So(board.Cells[1][0].Label, ShouldEqual, "3")
			So(board.Cells[0][1].Label, ShouldEqual, "")
			So(board.Stats.Message, ShouldEqual, "searching")
		})

		Convey("The final board shows the path in the final color", func() {
			board := Convert(last)
			So(board.Cells[0][1].Fill, ShouldEqual, "gold")
			So(board.Cells[1][2].Fill, ShouldEqual, "gold")
			So(board.Stats.Message, ShouldEqual, "Path found: cost 4")
			So(board.Stats.G, ShouldEqual, "4")
		})
	})

	Convey("When no path exists the board says so", t, func() {
		_, last := trackedFrames(t, []string{"..", ".#"}, grid_world.Point{}, grid_world.Point{X: 1, Y: 1})
		board := Convert(last)
		So(board.Stats.Message, ShouldEqual, "No path found")
		So(board.Cells[0][1].Fill, ShouldEqual, "lightpink")
	})
}

func TestGridView(t *testing.T) {
	Convey("When boards flow through the grid view", t, func() {
		first, last := trackedFrames(t, []string{"...", ".#.", "..."}, grid_world.Point{}, grid_world.Point{X: 2, Y: 2})
		done := make(chan struct{})
		defer close(done)

		boards := make(chan Board)
		gv := NewGridView(done, boards)

		Convey("The first board updates every cell and later boards only the changes", func() {
			boards <- Convert(first)
			initial := <-gv.Updates()
			So(initial, ShouldHaveLength, 9)

			boards <- Convert(first)
			So(<-gv.Updates(), ShouldBeEmpty)

			boards <- Convert(last)
			changed := <-gv.Updates()
			So(len(changed), ShouldBeGreaterThan, 0)
			for _, update := range changed {
				So(update.Ops[0].Key, ShouldEqual, "fill")
			}
		})

		Convey("The template renders a rect per cell", func() {
			page := template.New("page").Funcs(funcs())
			name, err := gv.Parse(page)
			So(err, ShouldBeNil)

			var buf bytes.Buffer
			So(page.ExecuteTemplate(&buf, name, Convert(first)), ShouldBeNil)
			So(bytes.Count(buf.Bytes(), []byte("<rect ")), ShouldEqual, 9)
			So(buf.String(), ShouldContainSubstring, `id="1-1-cell-rect"`)
		})
	})
}

func TestStatsView(t *testing.T) {
	Convey("When boards flow through the stats view", t, func() {
		_, last := trackedFrames(t, []string{"..."}, grid_world.Point{}, grid_world.Point{X: 2})
		done := make(chan struct{})
		defer close(done)

		boards := make(chan Board)
		sv := NewStatsView(done, boards)
		boards <- Convert(last)
		updates := <-sv.Updates()

		texts := map[string]string{}
		for _, update := range updates {
			texts[update.EleId] = update.Ops[0].Value
		}
		So(texts["stats-message"], ShouldEqual, "Path found: cost 2")
		So(texts["stats-g"], ShouldEqual, "2")

		page := template.New("page")
		name, err := sv.Parse(page)
		So(err, ShouldBeNil)
		var buf bytes.Buffer
		So(page.ExecuteTemplate(&buf, name, Convert(last)), ShouldBeNil)
		So(buf.String(), ShouldContainSubstring, "Path found: cost 2")
	})
}
