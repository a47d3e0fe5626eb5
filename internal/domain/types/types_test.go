package types_test

import (
	"testing"

	types "github.com/runtogether/pacer/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecommendation(t *testing.T) {
	Convey("Given a Recommendation struct", t, func() {
		Convey("When the session is warming up", func() {
			rec := types.Recommendation{
				Recommendation: "Warm-up phase - maintain steady pace",
			}

			Convey("Then both predictions are absent", func() {
				So(rec.PredHR, ShouldBeNil)
				So(rec.PredSpeed, ShouldBeNil)
				So(rec.Recommendation, ShouldNotBeEmpty)
			})
		})

		Convey("When the session is in full mode", func() {
			hr := 151.3
			speed := 3.14
			rec := types.Recommendation{
				PredHR:         &hr,
				PredSpeed:      &speed,
				Recommendation: "Maintain current pace",
			}

			Convey("Then both predictions carry values", func() {
				So(*rec.PredHR, ShouldEqual, 151.3)
				So(*rec.PredSpeed, ShouldEqual, 3.14)
			})
		})
	})
}

func TestHealthReady(t *testing.T) {
	Convey("Given a Health snapshot", t, func() {
		full := types.Health{
			Status:         "ok",
			HRModel:        true,
			SpeedModel:     true,
			ScalerHR:       true,
			ScalerSpeed:    true,
			HRFeaturesN:    17,
			SpeedFeaturesN: 17,
		}

		Convey("Then it is ready when every artifact loaded", func() {
			So(full.Ready(), ShouldBeTrue)
		})

		Convey("Then a single missing artifact degrades it", func() {
			broken := full
			broken.SpeedModel = false
			So(broken.Ready(), ShouldBeFalse)
		})

		Convey("Then empty feature lists degrade it", func() {
			broken := full
			broken.HRFeaturesN = 0
			So(broken.Ready(), ShouldBeFalse)
		})
	})
}
