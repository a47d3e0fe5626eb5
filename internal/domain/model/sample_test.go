package model_test

import (
	"testing"
	"time"

	"github.com/runtogether/pacer/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func fp(v float64) *float64 { return &v }

func TestMetric(t *testing.T) {
	Convey("Given the Metric option type", t, func() {
		Convey("When a value is present", func() {
			m := model.Some(3.5)
			v, ok := m.Value()
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 3.5)
			So(m.Or(0), ShouldEqual, 3.5)
			So(m.Present(), ShouldBeTrue)
		})

		Convey("When the value is missing", func() {
			m := model.None()
			_, ok := m.Value()
			So(ok, ShouldBeFalse)
			So(m.Or(42), ShouldEqual, 42)
			So(m.Ptr(), ShouldBeNil)
		})

		Convey("When converting from a nil pointer", func() {
			So(model.FromPtr(nil).Present(), ShouldBeFalse)
			So(model.FromPtr(fp(7)).Or(0), ShouldEqual, 7)
		})

		Convey("Then a measured zero is distinct from missing", func() {
			So(model.Some(0).Present(), ShouldBeTrue)
			So(model.None().Present(), ShouldBeFalse)
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given the sample normalizer", t, func() {
		now := time.Unix(1_700_000_000, 0)

		Convey("When speed arrives in km/h", func() {
			s := model.Normalize(model.RawSample{SpeedKMH: fp(12.6)}, now)
			So(s.Speed.Or(0), ShouldAlmostEqual, 3.5, 1e-9)
		})

		Convey("When multiple speed encodings are present", func() {
			s := model.Normalize(model.RawSample{
				EnhancedSpeed: fp(2.0),
				SpeedMPS:      fp(3.0),
				SpeedKMH:      fp(36.0),
			}, now)

			Convey("Then enhanced_speed wins", func() {
				So(s.Speed.Or(0), ShouldEqual, 2.0)
			})
		})

		Convey("When speed_mps is the only encoding", func() {
			s := model.Normalize(model.RawSample{SpeedMPS: fp(3.0)}, now)
			So(s.Speed.Or(0), ShouldEqual, 3.0)
		})

		Convey("When the timestamp is absent", func() {
			s := model.Normalize(model.RawSample{}, now)
			So(s.Timestamp, ShouldEqual, float64(now.Unix()))
		})

		Convey("When fields are absent", func() {
			s := model.Normalize(model.RawSample{Timestamp: fp(10)}, now)

			Convey("Then they normalize to missing, not zero", func() {
				So(s.HeartRate.Present(), ShouldBeFalse)
				So(s.Speed.Present(), ShouldBeFalse)
				So(s.Cadence.Present(), ShouldBeFalse)
				So(s.Power.Present(), ShouldBeFalse)
			})
		})

		Convey("When normalizing an already-canonical sample", func() {
			first := model.Normalize(model.RawSample{
				Timestamp:     fp(100),
				HeartRate:     fp(140),
				EnhancedSpeed: fp(3.2),
				Cadence:       fp(170),
				Power:         fp(250),
			}, now)
			second := model.Normalize(first.Raw(), now)

			Convey("Then it is a no-op", func() {
				So(second, ShouldResemble, first)
			})
		})
	})
}
