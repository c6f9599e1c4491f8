package models

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"gridsearch/astar"
	"gridsearch/grid_world"
)

func TestTracker(t *testing.T) {
	Convey("When a search is tracked", t, func() {
		grid, err := grid_world.FromRows([]string{"...", ".#.", "..."})
		So(err, ShouldBeNil)
		ctx := context.Background()
		start, goal := grid_world.Point{}, grid_world.Point{X: 2, Y: 2}

		frames := make(chan Frame)
		tracker := NewTracker(ctx, grid, start, goal, frames, 0)

		Convey("The initial frame shows walls and endpoints only", func() {
			initial := tracker.Latest()
			So(initial.Width(), ShouldEqual, 3)
			So(initial.Height(), ShouldEqual, 3)
			So(initial.Marks[1][1], ShouldEqual, Wall)
			So(initial.Marks[0][0], ShouldEqual, Start)
			So(initial.Marks[2][2], ShouldEqual, Goal)
			So(initial.Marks[1][0], ShouldEqual, Empty)
			So(initial.Costs[2][1], ShouldEqual, 1)
			So(initial.Done, ShouldBeFalse)
		})

		Convey("Every progress event and the finish produce a frame", func() {
			var received []Frame
			drained := make(chan struct{})
			go func() {
				defer close(drained)
				for frame := range frames {
					received = append(received, frame)
				}
			}()

			result := astar.FindPath(ctx, grid, start, goal, astar.WithObserver(tracker))
			tracker.Finish(result)
			close(frames)
			<-drained

			// five improvements, then the final frame
			So(received, ShouldHaveLength, 6)
			first := received[0]
			So(first.Step, ShouldEqual, 1)
			So(first.Marks[0][1], ShouldEqual, Path)
			So(first.Open, ShouldEqual, 1)

			last := received[len(received)-1]
			So(last.Done, ShouldBeTrue)
			So(last.Result.Outcome, ShouldEqual, astar.Found)
			So(last.G, ShouldEqual, 4)
			So(last.Marks[0][1], ShouldEqual, Path)
			So(last.Marks[1][2], ShouldEqual, Path)
			So(last.Marks[1][0], ShouldEqual, Reached)
			So(tracker.Latest().Done, ShouldBeTrue)
		})

		Convey("A cancelled context releases a blocked publisher", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			blocked := NewTracker(cancelled, grid, start, goal, make(chan Frame), 0)
			blocked.Finish(astar.Result{Outcome: astar.Cancelled})
			So(blocked.Latest().Done, ShouldBeTrue)
		})
	})
}
