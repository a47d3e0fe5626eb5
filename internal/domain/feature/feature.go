// Package feature computes causal rolling statistics over a session's
// sample history. Every value in the produced vector describes the most
// recent sample and is derived only from samples at or before it; the
// *_past variants additionally ignore the newest sample's own
// measurement (one-step lag), so they can never leak the value a model
// is asked to predict.
package feature

import (
	"math"

	"github.com/runtogether/pacer/internal/domain/model"
)

// Window sizes and the fatigue-index denominator guard.
const (
	shortWindow    = 5
	trendWindow    = 30
	fatigueShort   = 30
	fatigueLong    = 60
	speedVarWin    = 30
	fatigueEpsilon = 1e-6
)

// Vector maps feature names to numeric values for one sample.
type Vector map[string]float64

// Get returns the named feature, falling back to an alternate name and
// then a default. Mirrors how the decision layer prefers *_past
// variants with a same-time fallback.
func (v Vector) Get(name, fallback string, def float64) float64 {
	if val, ok := v[name]; ok {
		return val
	}
	if val, ok := v[fallback]; ok {
		return val
	}
	return def
}

// Compute derives the feature vector for the last sample of history.
// Windows never bleed across sessions because the engine only ever sees
// one session's buffer. Undefined features (insufficient history, or a
// non-finite intermediate) resolve to zero in the final cleanup.
func Compute(history []model.Sample) Vector {
	n := len(history)
	if n == 0 {
		return Vector{}
	}
	i := n - 1
	last := history[i]

	hr := series(history, func(s model.Sample) model.Metric { return s.HeartRate })
	speed := series(history, func(s model.Sample) model.Metric { return s.Speed })
	cadence := series(history, func(s model.Sample) model.Metric { return s.Cadence })
	power := series(history, func(s model.Sample) model.Metric { return s.Power })

	v := Vector{}
	put := func(name string, m model.Metric) {
		v[name] = clean(m)
	}

	// Raw measurements of the newest sample.
	v["timestamp"] = last.Timestamp
	put("heart_rate", last.HeartRate)
	put("enhanced_speed", last.Speed)
	put("cadence", last.Cadence)
	put("power", last.Power)
	put("distance_km", last.DistanceKM)
	put("elevation_m", last.ElevationM)

	// Deltas against the previous sample.
	put("speed_change", delta(speed, i))
	put("hr_change", delta(hr, i))
	put("cadence_change", delta(cadence, i))
	put("power_change", delta(power, i))

	// Short same-time window stats. These include the newest sample, so
	// they are unsafe as training inputs for a same-time target.
	put("speed_ma_5", rollingMean(speed, i, shortWindow, 1))
	put("speed_std_5", rollingStd(speed, i, shortWindow, 1))
	put("hr_ma_5", rollingMean(hr, i, shortWindow, 1))

	// Lags.
	put("speed_lag_1", lag(speed, i, 1))
	put("speed_lag_5", lag(speed, i, 5))
	put("hr_lag_1", lag(hr, i, 1))
	put("hr_lag_5", lag(hr, i, 5))
	put("cadence_lag_1", lag(cadence, i, 1))
	put("power_lag_1", lag(power, i, 1))

	// Past-only moving averages: window ends one step before the newest
	// sample and requires every slot present.
	put("speed_ma_5_past", rollingMean(speed, i-1, shortWindow, shortWindow))
	put("hr_ma_5_past", rollingMean(hr, i-1, shortWindow, shortWindow))

	// Trend slopes over the trailing 30 samples.
	put("speed_trend_30_past", slope(speed, i-1, trendWindow))
	put("hr_trend_30_past", slope(hr, i-1, trendWindow))
	put("speed_trend_30", slope(speed, i, trendWindow))
	put("hr_trend_30", slope(hr, i, trendWindow))

	// Fatigue: short-over-long heart-rate average ratio.
	put("fatigue_index", fatigue(hr, i, 1, 1))
	put("fatigue_index_past", fatigue(hr, i-1, fatigueShort, fatigueLong))

	// Speed variability.
	put("speed_variation", rollingStd(speed, i, speedVarWin, 1))

	// Cumulative load from the start of the buffer.
	put("cumulative_power_past", cumulativePast(power, i))
	put("cumulative_hr_past", cumulativePast(hr, i))
	put("cumulative_power", cumulative(power, i))
	put("cumulative_hr", cumulative(hr, i))

	// Position within the session.
	if n > 1 {
		v["progress_ratio"] = float64(i) / float64(n-1)
	} else {
		v["progress_ratio"] = 0
	}

	// Previous-sample aliases kept for older feature lists.
	v["speed_prev"] = v["speed_lag_1"]
	v["hr_prev"] = v["hr_lag_1"]
	v["cadence_prev"] = v["cadence_lag_1"]
	v["power_prev"] = v["power_lag_1"]

	return v
}

// series extracts one metric column from the history.
func series(history []model.Sample, sel func(model.Sample) model.Metric) []model.Metric {
	out := make([]model.Metric, len(history))
	for i, s := range history {
		out[i] = sel(s)
	}
	return out
}

// clean is the final cleanup pass: missing and non-finite values both
// resolve to zero.
func clean(m model.Metric) float64 {
	v, ok := m.Value()
	if !ok || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// delta is s[end] - s[end-1]; missing at the first sample or when
// either operand is missing.
func delta(s []model.Metric, end int) model.Metric {
	if end < 1 {
		return model.None()
	}
	cur, ok1 := s[end].Value()
	prev, ok2 := s[end-1].Value()
	if !ok1 || !ok2 {
		return model.None()
	}
	return model.Some(cur - prev)
}

// lag is the value k samples before end; missing if not enough history.
func lag(s []model.Metric, end, k int) model.Metric {
	if end-k < 0 {
		return model.None()
	}
	return s[end-k]
}

// windowPresent collects the present values inside the window of the
// given size ending at end.
func windowPresent(s []model.Metric, end, window int) []float64 {
	if end < 0 {
		return nil
	}
	start := end - window + 1
	if start < 0 {
		start = 0
	}
	var vals []float64
	for j := start; j <= end; j++ {
		if v, ok := s[j].Value(); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

// rollingMean averages the present values in the trailing window;
// missing when fewer than minPresent values are available.
func rollingMean(s []model.Metric, end, window, minPresent int) model.Metric {
	vals := windowPresent(s, end, window)
	if len(vals) < minPresent || len(vals) == 0 {
		return model.None()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return model.Some(sum / float64(len(vals)))
}

// rollingStd is the sample standard deviation of the present values in
// the trailing window; missing with fewer than two values.
func rollingStd(s []model.Metric, end, window, minPresent int) model.Metric {
	vals := windowPresent(s, end, window)
	if len(vals) < minPresent || len(vals) < 2 {
		return model.None()
	}
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	ss := 0.0
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return model.Some(math.Sqrt(ss / float64(len(vals)-1)))
}

// slope fits a first-degree least-squares line of the metric against
// position over exactly window samples ending at end. Missing unless
// the window is full and every value is present.
func slope(s []model.Metric, end, window int) model.Metric {
	start := end - window + 1
	if start < 0 {
		return model.None()
	}
	vals := make([]float64, 0, window)
	for j := start; j <= end; j++ {
		v, ok := s[j].Value()
		if !ok {
			return model.None()
		}
		vals = append(vals, v)
	}

	// Positions 0..window-1; x-mean is (window-1)/2.
	xMean := float64(window-1) / 2
	yMean := 0.0
	for _, v := range vals {
		yMean += v
	}
	yMean /= float64(window)

	var num, den float64
	for j, v := range vals {
		dx := float64(j) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}
	if den == 0 {
		return model.None()
	}
	return model.Some(num / den)
}

// fatigue is the ratio of the short heart-rate average to the long one,
// with a small additive constant guarding the denominator. end denotes
// the last included sample; minShort/minLong are the per-window
// minimum-present requirements.
func fatigue(s []model.Metric, end, minShort, minLong int) model.Metric {
	recent, ok1 := rollingMean(s, end, fatigueShort, minShort).Value()
	longer, ok2 := rollingMean(s, end, fatigueLong, minLong).Value()
	if !ok1 || !ok2 {
		return model.None()
	}
	return model.Some(recent / (longer + fatigueEpsilon))
}

// cumulative is the running total of present values through end;
// missing when the value at end itself is missing.
func cumulative(s []model.Metric, end int) model.Metric {
	if end < 0 || !s[end].Present() {
		return model.None()
	}
	sum := 0.0
	for j := 0; j <= end; j++ {
		if v, ok := s[j].Value(); ok {
			sum += v
		}
	}
	return model.Some(sum)
}

// cumulativePast is the running total through end-1, carrying the same
// missing-at-the-lagged-position rule as cumulative.
func cumulativePast(s []model.Metric, end int) model.Metric {
	return cumulative(s, end-1)
}
