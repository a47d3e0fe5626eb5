// Package decision turns the current session state into one pacing
// recommendation string. It is a pure rule layer: warm-up mode runs on
// raw heart rate and speed alone, full mode combines the feature vector
// with the two model predictions, and every threshold is parameterized
// by the runner's skill level.
package decision

import (
	"fmt"
	"math"

	"github.com/runtogether/pacer/internal/domain/feature"
	"github.com/runtogether/pacer/internal/domain/model"
)

// Level is the runner's skill level as submitted by the client.
type Level int

const (
	Beginner     Level = 1
	Intermediate Level = 2
	Advanced     Level = 3
)

// ErrInvalidLevel reports a runner level outside {1,2,3}.
var ErrInvalidLevel = fmt.Errorf("runner level must be 1, 2 or 3")

// LevelFromInt validates and converts the wire-format runner level.
func LevelFromInt(n int) (Level, error) {
	switch n {
	case 1, 2, 3:
		return Level(n), nil
	}
	return 0, fmt.Errorf("%w: got %d", ErrInvalidLevel, n)
}

func (l Level) String() string {
	switch l {
	case Beginner:
		return "beginner"
	case Advanced:
		return "advanced"
	default:
		return "intermediate"
	}
}

const (
	// HRMax is the assumed maximum heart rate; no personalization.
	HRMax = 190.0

	// WarmupSamples is the history length below which the engine stays
	// in warm-up mode and never consults the models.
	WarmupSamples = 30

	lowHRFraction     = 0.50
	veryLowHRFraction = 0.40
	warmupFastSpeed   = 7.0 / 3.6 // m/s
	warmupSlowSpeed   = 4.0 / 3.6 // m/s

	hrTrendThreshold = 0.05
	speedVarCeiling  = 0.35
	fatigueHRSlack   = 0.05
)

// thresholds carries the per-level rule parameters.
type thresholds struct {
	highHR      float64 // fraction of HRMax
	fatigueCeil float64
	hrGap       float64 // bpm
	speedGap    float64 // m/s
}

func (l Level) thresholds() thresholds {
	switch l {
	case Beginner:
		return thresholds{highHR: 0.80, fatigueCeil: 1.15, hrGap: 8, speedGap: 0.25}
	case Advanced:
		return thresholds{highHR: 0.90, fatigueCeil: 1.25, hrGap: 12, speedGap: 0.35}
	default:
		return thresholds{highHR: 0.85, fatigueCeil: 1.20, hrGap: 10, speedGap: 0.30}
	}
}

// Warmup picks the conservative cold-start recommendation from the raw
// heart rate (bpm) and speed (m/s) of the newest sample. First matching
// rule wins. A missing measurement is carried as NaN so no rule can
// fire off it; a sensor dropout lands on the steady default, not on
// pace advice derived from a phantom zero.
func Warmup(current model.Sample, level Level) string {
	t := level.thresholds()
	hr := current.HeartRate.Or(math.NaN())
	speed := current.Speed.Or(math.NaN())
	pct := hr / HRMax

	switch {
	case pct > t.highHR:
		return "You're starting too fast - slow down to warm up properly"
	case pct < lowHRFraction && speed > warmupFastSpeed:
		return "Consider slowing down a bit for a smoother warm-up"
	case pct < veryLowHRFraction && speed < warmupSlowSpeed:
		return "Try to gradually increase your pace"
	default:
		return "Warm-up phase - maintain steady pace"
	}
}

// Full evaluates the safety checks and then the prediction-gap rules,
// in strict order with first match winning. Safety checks prefer the
// past-only feature variants so a rule can never fire off the value a
// model was asked to predict. The current heart rate and speed come
// from the newest sample, not from the feature vector: the vector
// zero-fills missing measurements for the models, and a rule comparing
// against that zero would mistake a dropped sensor for a resting
// runner. Missing measurements are NaN here, so every rule reading one
// is false and the default holds the pace.
func Full(vec feature.Vector, current model.Sample, predHR, predSpeed float64, level Level) string {
	t := level.thresholds()

	currentHR := current.HeartRate.Or(math.NaN())
	currentSpeed := current.Speed.Or(math.NaN())
	pct := currentHR / HRMax

	hrTrend := vec.Get("hr_trend_30_past", "hr_trend_30", 0)
	fatigue := vec.Get("fatigue_index_past", "fatigue_index", 1.0)
	speedVar := vec.Get("speed_variation", "speed_variation", 0)

	switch {
	case fatigue > t.fatigueCeil && pct > t.highHR-fatigueHRSlack:
		return "Fatigue building up - slow down or shorten your stride"
	case hrTrend > hrTrendThreshold && currentHR > predHR:
		return "Rising heart rate - consider reducing pace"
	case speedVar > speedVarCeiling:
		return "Try to stabilize your speed for better endurance"
	}

	switch {
	case pct < lowHRFraction && currentSpeed < predSpeed:
		return "Increase pace slightly"
	case pct > t.highHR:
		return "Slow down to reduce heart rate"
	case math.Abs(currentHR-predHR) > t.hrGap:
		if currentHR > predHR {
			return "Reduce intensity - heart rate is too high"
		}
		return "Increase intensity - heart rate is too low"
	case math.Abs(currentSpeed-predSpeed) > t.speedGap:
		if currentSpeed > predSpeed {
			return "You're running too fast - slow down a bit"
		}
		return "Try to reach your target pace"
	}
	return "Maintain current pace"
}

// RoundHR rounds a heart-rate prediction to one decimal place for
// presentation. Never feed the result back into the engine.
func RoundHR(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundSpeed rounds a speed prediction to two decimal places for
// presentation.
func RoundSpeed(v float64) float64 {
	return math.Round(v*100) / 100
}
