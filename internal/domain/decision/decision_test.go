package decision_test

import (
	"errors"
	"testing"

	"github.com/runtogether/pacer/internal/domain/decision"
	"github.com/runtogether/pacer/internal/domain/feature"
	"github.com/runtogether/pacer/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// running builds a sample with both measurements present.
func running(hr, speed float64) model.Sample {
	return model.Sample{HeartRate: model.Some(hr), Speed: model.Some(speed)}
}

func TestLevelFromInt(t *testing.T) {
	Convey("Given wire-format runner levels", t, func() {
		Convey("Then 1..3 map to the three skill levels", func() {
			for n, want := range map[int]decision.Level{
				1: decision.Beginner,
				2: decision.Intermediate,
				3: decision.Advanced,
			} {
				l, err := decision.LevelFromInt(n)
				So(err, ShouldBeNil)
				So(l, ShouldEqual, want)
			}
		})

		Convey("Then anything else is rejected", func() {
			for _, n := range []int{0, 4, -1, 99} {
				_, err := decision.LevelFromInt(n)
				So(errors.Is(err, decision.ErrInvalidLevel), ShouldBeTrue)
			}
		})
	})
}

func TestWarmup(t *testing.T) {
	Convey("Given a session still in warm-up", t, func() {
		Convey("Then a relaxed steady effort keeps the default message", func() {
			// HR 120 at max 190 is ~0.63, between the low and high bands.
			So(decision.Warmup(running(120, 3.0), decision.Intermediate),
				ShouldEqual, "Warm-up phase - maintain steady pace")
		})

		Convey("Then a high heart rate wins over everything", func() {
			So(decision.Warmup(running(170, 3.0), decision.Intermediate),
				ShouldEqual, "You're starting too fast - slow down to warm up properly")
		})

		Convey("Then low HR at high speed asks for a smoother warm-up", func() {
			// 0.4*190=76 < HR < 0.5*190=95, speed above 7 km/h.
			So(decision.Warmup(running(80, 2.5), decision.Intermediate),
				ShouldEqual, "Consider slowing down a bit for a smoother warm-up")
		})

		Convey("Then very low HR at walking speed asks for more pace", func() {
			So(decision.Warmup(running(70, 1.0), decision.Intermediate),
				ShouldEqual, "Try to gradually increase your pace")
		})

		Convey("Then the high-HR boundary follows the skill level", func() {
			// HR 160 is ~0.842 of max: above beginner's 0.80, below
			// intermediate's 0.85 and advanced's 0.90.
			So(decision.Warmup(running(160, 3.0), decision.Beginner),
				ShouldEqual, "You're starting too fast - slow down to warm up properly")
			So(decision.Warmup(running(160, 3.0), decision.Intermediate),
				ShouldEqual, "Warm-up phase - maintain steady pace")
			So(decision.Warmup(running(160, 3.0), decision.Advanced),
				ShouldEqual, "Warm-up phase - maintain steady pace")
		})

		Convey("Then a missing heart rate holds the default at any speed", func() {
			// A dropped HR sensor is not a very low heart rate: at walking
			// speed the pace rule must stay quiet rather than push harder.
			noHR := model.Sample{Speed: model.Some(0.5)}
			So(decision.Warmup(noHR, decision.Intermediate),
				ShouldEqual, "Warm-up phase - maintain steady pace")
			noHR.Speed = model.Some(3.5)
			So(decision.Warmup(noHR, decision.Intermediate),
				ShouldEqual, "Warm-up phase - maintain steady pace")
		})

		Convey("Then a missing speed disables the speed-gated rules", func() {
			noSpeed := model.Sample{HeartRate: model.Some(70)}
			So(decision.Warmup(noSpeed, decision.Intermediate),
				ShouldEqual, "Warm-up phase - maintain steady pace")
		})
	})
}

// calmVec is a baseline full-mode vector with every safety signal quiet.
func calmVec() feature.Vector {
	return feature.Vector{
		"hr_trend_30_past":   0,
		"fatigue_index_past": 1.0,
		"speed_variation":    0,
	}
}

func TestFullSafetyChecks(t *testing.T) {
	Convey("Given a session in full mode", t, func() {
		Convey("Then building fatigue at elevated HR fires first", func() {
			v := calmVec()
			v["fatigue_index_past"] = 1.3
			// 165/190 ~ 0.868 > 0.85-0.05
			So(decision.Full(v, running(165, 3.0), 150, 3.0, decision.Intermediate),
				ShouldEqual, "Fatigue building up - slow down or shorten your stride")
		})

		Convey("Then fatigue alone is not enough at a calm heart rate", func() {
			v := calmVec()
			v["fatigue_index_past"] = 1.3
			So(decision.Full(v, running(120, 3.0), 120, 3.0, decision.Intermediate),
				ShouldEqual, "Maintain current pace")
		})

		Convey("Then a rising HR trend above prediction asks to reduce pace", func() {
			v := calmVec()
			v["hr_trend_30_past"] = 0.4
			So(decision.Full(v, running(130, 3.0), 125, 3.0, decision.Intermediate),
				ShouldEqual, "Rising heart rate - consider reducing pace")
		})

		Convey("Then a rising trend below prediction stays quiet", func() {
			v := calmVec()
			v["hr_trend_30_past"] = 0.4
			So(decision.Full(v, running(130, 3.0), 140, 3.0, decision.Intermediate),
				ShouldEqual, "Maintain current pace")
		})

		Convey("Then erratic speed asks for stabilization", func() {
			v := calmVec()
			v["speed_variation"] = 0.6
			So(decision.Full(v, running(130, 3.0), 130, 3.0, decision.Intermediate),
				ShouldEqual, "Try to stabilize your speed for better endurance")
		})

		Convey("Then past-only variants are preferred over same-time", func() {
			v := calmVec()
			delete(v, "hr_trend_30_past")
			v["hr_trend_30"] = 0.4
			So(decision.Full(v, running(130, 3.0), 125, 3.0, decision.Intermediate),
				ShouldEqual, "Rising heart rate - consider reducing pace")
		})
	})
}

func TestFullGapRules(t *testing.T) {
	Convey("Given a session in full mode with quiet safety signals", t, func() {
		Convey("Then low HR below target speed invites more pace", func() {
			So(decision.Full(calmVec(), running(90, 2.5), 90, 3.0, decision.Intermediate),
				ShouldEqual, "Increase pace slightly")
		})

		Convey("Then a high heart rate asks to slow down", func() {
			So(decision.Full(calmVec(), running(175, 3.0), 175, 3.0, decision.Intermediate),
				ShouldEqual, "Slow down to reduce heart rate")
		})

		Convey("Then a large HR gap maps to intensity advice in both directions", func() {
			So(decision.Full(calmVec(), running(145, 3.0), 130, 3.0, decision.Intermediate),
				ShouldEqual, "Reduce intensity - heart rate is too high")
			So(decision.Full(calmVec(), running(118, 3.0), 130, 3.0, decision.Intermediate),
				ShouldEqual, "Increase intensity - heart rate is too low")
		})

		Convey("Then a large speed gap maps to pace advice in both directions", func() {
			So(decision.Full(calmVec(), running(130, 3.6), 130, 3.0, decision.Intermediate),
				ShouldEqual, "You're running too fast - slow down a bit")
			So(decision.Full(calmVec(), running(130, 2.4), 130, 3.0, decision.Intermediate),
				ShouldEqual, "Try to reach your target pace")
		})

		Convey("Then everything inside tolerance holds the pace", func() {
			So(decision.Full(calmVec(), running(130, 3.0), 128, 3.1, decision.Intermediate),
				ShouldEqual, "Maintain current pace")
		})

		Convey("Then a missing heart rate holds the pace instead of alarming", func() {
			// The HR-gap rule must not read a dropped sensor as an HR of
			// zero far below prediction.
			noHR := model.Sample{Speed: model.Some(3.0)}
			So(decision.Full(calmVec(), noHR, 130, 3.0, decision.Intermediate),
				ShouldEqual, "Maintain current pace")
		})

		Convey("Then a missing speed silences the speed-gap rule", func() {
			noSpeed := model.Sample{HeartRate: model.Some(130)}
			So(decision.Full(calmVec(), noSpeed, 130, 3.0, decision.Intermediate),
				ShouldEqual, "Maintain current pace")
		})
	})
}

func TestFullSkillOrdering(t *testing.T) {
	Convey("Given identical input streams across skill levels", t, func() {
		Convey("Then an HR gap of 9 bpm only alarms the beginner profile", func() {
			cur := running(139, 3.0)
			So(decision.Full(calmVec(), cur, 130, 3.0, decision.Beginner),
				ShouldEqual, "Reduce intensity - heart rate is too high")
			So(decision.Full(calmVec(), cur, 130, 3.0, decision.Intermediate),
				ShouldEqual, "Maintain current pace")
			So(decision.Full(calmVec(), cur, 130, 3.0, decision.Advanced),
				ShouldEqual, "Maintain current pace")
		})

		Convey("Then a speed gap of 0.28 m/s only alarms the beginner profile", func() {
			cur := running(130, 3.28)
			So(decision.Full(calmVec(), cur, 130, 3.0, decision.Beginner),
				ShouldEqual, "You're running too fast - slow down a bit")
			So(decision.Full(calmVec(), cur, 130, 3.0, decision.Intermediate),
				ShouldEqual, "Maintain current pace")
		})

		Convey("Then a fatigue index of 1.22 never alarms the advanced profile", func() {
			v := calmVec()
			v["fatigue_index_past"] = 1.22
			So(decision.Full(v, running(165, 3.0), 160, 3.0, decision.Intermediate),
				ShouldEqual, "Fatigue building up - slow down or shorten your stride")
			So(decision.Full(v, running(165, 3.0), 160, 3.0, decision.Advanced),
				ShouldEqual, "Maintain current pace")
		})
	})
}

func TestRounding(t *testing.T) {
	Convey("Given raw model predictions", t, func() {
		So(decision.RoundHR(151.26), ShouldAlmostEqual, 151.3, 1e-9)
		So(decision.RoundSpeed(3.14159), ShouldAlmostEqual, 3.14, 1e-9)
	})
}
