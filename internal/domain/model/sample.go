// Package model contains domain models passed between layers.
package model

import "time"

// KMHPerMPS converts meters/second to kilometers/hour.
const KMHPerMPS = 3.6

// Metric is an optional measurement: a present float64 or an explicit
// missing marker. Missing is distinct from a measured zero so windowed
// statistics can skip absent values instead of averaging zeros in.
type Metric struct {
	val     float64
	present bool
}

// Some returns a present Metric.
func Some(v float64) Metric {
	return Metric{val: v, present: true}
}

// None returns a missing Metric.
func None() Metric {
	return Metric{}
}

// FromPtr converts an optional wire field into a Metric.
func FromPtr(p *float64) Metric {
	if p == nil {
		return None()
	}
	return Some(*p)
}

// Present reports whether the metric carries a value.
func (m Metric) Present() bool {
	return m.present
}

// Value returns the measurement and whether it is present.
func (m Metric) Value() (float64, bool) {
	return m.val, m.present
}

// Or returns the measurement, or def when missing.
func (m Metric) Or(def float64) float64 {
	if m.present {
		return m.val
	}
	return def
}

// Ptr returns the measurement as an optional wire field.
func (m Metric) Ptr() *float64 {
	if !m.present {
		return nil
	}
	v := m.val
	return &v
}

// RawSample mirrors one observation as submitted by clients. Speed may
// arrive in exactly one of three encodings; enhanced_speed and speed_mps
// are meters/second, speed_kmh is kilometers/hour.
type RawSample struct {
	Timestamp     *float64 `json:"timestamp,omitempty"`
	HeartRate     *float64 `json:"heart_rate,omitempty"`
	SpeedKMH      *float64 `json:"speed_kmh,omitempty"`
	SpeedMPS      *float64 `json:"speed_mps,omitempty"`
	EnhancedSpeed *float64 `json:"enhanced_speed,omitempty"`
	Cadence       *float64 `json:"cadence,omitempty"`
	Power         *float64 `json:"power,omitempty"`
	DistanceKM    *float64 `json:"distance_km,omitempty"`
	ElevationM    *float64 `json:"elevation_m,omitempty"`
}

// Sample is one canonical, timestamped observation. Speed is always
// meters/second. Immutable once recorded into a session buffer.
type Sample struct {
	Timestamp  float64
	HeartRate  Metric
	Speed      Metric
	Cadence    Metric
	Power      Metric
	DistanceKM Metric
	ElevationM Metric
}

// Normalize converts a raw observation into canonical form. The first
// non-missing of enhanced_speed, speed_mps, speed_kmh wins; km/h is
// divided by 3.6. A missing timestamp defaults to now.
func Normalize(raw RawSample, now time.Time) Sample {
	ts := float64(now.UnixNano()) / float64(time.Second)
	if raw.Timestamp != nil {
		ts = *raw.Timestamp
	}

	var speed Metric
	switch {
	case raw.EnhancedSpeed != nil:
		speed = Some(*raw.EnhancedSpeed)
	case raw.SpeedMPS != nil:
		speed = Some(*raw.SpeedMPS)
	case raw.SpeedKMH != nil:
		speed = Some(*raw.SpeedKMH / KMHPerMPS)
	default:
		speed = None()
	}

	return Sample{
		Timestamp:  ts,
		HeartRate:  FromPtr(raw.HeartRate),
		Speed:      speed,
		Cadence:    FromPtr(raw.Cadence),
		Power:      FromPtr(raw.Power),
		DistanceKM: FromPtr(raw.DistanceKM),
		ElevationM: FromPtr(raw.ElevationM),
	}
}

// Raw converts a canonical sample back into its wire form, with the
// speed carried in the canonical enhanced_speed field.
func (s Sample) Raw() RawSample {
	ts := s.Timestamp
	return RawSample{
		Timestamp:     &ts,
		HeartRate:     s.HeartRate.Ptr(),
		EnhancedSpeed: s.Speed.Ptr(),
		Cadence:       s.Cadence.Ptr(),
		Power:         s.Power.Ptr(),
		DistanceKM:    s.DistanceKM.Ptr(),
		ElevationM:    s.ElevationM.Ptr(),
	}
}
