package acwr_test

import (
	"testing"

	"github.com/athlos-ai/athlos/internal/domain/acwr"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRatio(t *testing.T) {
	Convey("Given load histories of various shapes", t, func() {
		Convey("When the history is empty", func() {
			Convey("Then the ratio is neutral", func() {
				So(acwr.Ratio(nil), ShouldEqual, 1.0)
				So(acwr.Ratio([]float64{}), ShouldEqual, 1.0)
			})
		})

		Convey("When there is load but no chronic baseline yet", func() {
			Convey("Then the ratio reads as elevated", func() {
				So(acwr.Ratio([]float64{10}), ShouldEqual, 2.0)
				So(acwr.Ratio([]float64{10, 20, 30}), ShouldEqual, 2.0)
				So(acwr.Ratio([]float64{5, 5, 5, 5, 5, 5, 5}), ShouldEqual, 2.0)
			})
		})

		Convey("When the history is all zeros", func() {
			loads := make([]float64, 10)

			Convey("Then the ratio is neutral", func() {
				So(acwr.Ratio(loads), ShouldEqual, 1.0)
			})
		})

		Convey("When a load spike follows a steady week", func() {
			// 7x10 then 1x100: acute = 160/7, chronic = 170/8.
			loads := []float64{10, 10, 10, 10, 10, 10, 10, 100}

			Convey("Then the ratio is rounded to 2 decimals", func() {
				So(acwr.Ratio(loads), ShouldEqual, 1.08)
			})
		})

		Convey("When the raw ratio exceeds the cap", func() {
			// 21 rest days then a heavy week: acute=100, chronic=25, raw=4.0.
			loads := make([]float64, 28)
			for i := 21; i < 28; i++ {
				loads[i] = 100
			}

			Convey("Then the ratio is capped at 3.0", func() {
				So(acwr.Ratio(loads), ShouldEqual, 3.0)
			})
		})

		Convey("When rounding lands between hundredths", func() {
			// acute=31, chronic=847/28=30.25, raw=1.0247...
			loads := make([]float64, 28)
			for i := 0; i < 21; i++ {
				loads[i] = 30
			}
			for i := 21; i < 28; i++ {
				loads[i] = 31
			}

			Convey("Then the ratio rounds to 2 decimal places", func() {
				So(acwr.Ratio(loads), ShouldEqual, 1.02)
			})
		})

		Convey("When the same input is evaluated repeatedly", func() {
			loads := []float64{12, 48, 30, 7, 19, 55, 41, 23, 38, 10}

			Convey("Then the result is identical every time", func() {
				first := acwr.Ratio(loads)
				for i := 0; i < 100; i++ {
					So(acwr.Ratio(loads), ShouldEqual, first)
				}
			})
		})
	})
}
