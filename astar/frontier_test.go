package astar

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFrontier(t *testing.T) {
	Convey("When cells are admitted to the frontier", t, func() {
		grid := mustGrid("....", "....")
		a := newArena(grid)
		fr := newFrontier(a)
		So(fr.isEmpty(), ShouldBeTrue)

		Convey("The lowest f-cost is popped first", func() {
			fr.insertOrImprove(0, 5, 1, noParent)
			fr.insertOrImprove(1, 2, 1, noParent)
			fr.insertOrImprove(2, 4, 1, noParent)
			So(fr.popBest(), ShouldEqual, 1)
			So(fr.popBest(), ShouldEqual, 2)
			So(fr.popBest(), ShouldEqual, 0)
			So(fr.isEmpty(), ShouldBeTrue)
		})

		Convey("Equal f-costs are broken by the lower h-cost", func() {
			fr.insertOrImprove(0, 1, 3, noParent)
			fr.insertOrImprove(1, 3, 1, noParent)
			So(fr.popBest(), ShouldEqual, 1)
		})

		Convey("Equal f and h are broken by admission order", func() {
			fr.insertOrImprove(5, 2, 2, noParent)
			fr.insertOrImprove(3, 2, 2, noParent)
			fr.insertOrImprove(7, 2, 2, noParent)
			So(fr.popBest(), ShouldEqual, 5)
			So(fr.popBest(), ShouldEqual, 3)
			So(fr.popBest(), ShouldEqual, 7)
		})

		Convey("An open cell is only updated by a strictly lower g-cost", func() {
			So(fr.insertOrImprove(0, 6, 1, noParent), ShouldBeTrue)
			So(fr.insertOrImprove(1, 4, 1, noParent), ShouldBeTrue)
			So(fr.insertOrImprove(0, 6, 1, 4), ShouldBeFalse)
			So(a.at(0).parent, ShouldEqual, noParent)
			So(fr.insertOrImprove(0, 3, 1, 4), ShouldBeTrue)
			So(a.at(0).parent, ShouldEqual, 4)
			So(fr.contains(0), ShouldBeTrue)
			So(fr.popBest(), ShouldEqual, 0)
			So(fr.contains(0), ShouldBeFalse)
		})
	})
}

func TestReconstruct(t *testing.T) {
	Convey("When parent links are walked", t, func() {
		grid := mustGrid("...")
		a := newArena(grid)
		a.at(0).g, a.at(0).parent = 0, noParent
		a.at(1).g, a.at(1).parent = 1, 0
		a.at(2).g, a.at(2).parent = 2, 1

		So(a.reconstruct(2), ShouldResemble, Path{pt(0, 0), pt(1, 0), pt(2, 0)})
		So(a.reconstruct(0), ShouldResemble, Path{pt(0, 0)})

		Convey("An unreached cell has no path", func() {
			b := newArena(grid)
			So(b.reconstruct(2), ShouldBeNil)
		})
	})
}
