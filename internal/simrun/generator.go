package simrun

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"

	"github.com/runtogether/pacer/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Run profile constants. The simulated run has four phases: warm-up,
// steady cruising, a mid-run surge, and a fading finish.
const (
	warmupSeconds = 120
	surgeStart    = 0.55 // fraction of the run where the surge begins
	surgeEnd      = 0.65

	restingHR = 95.0
	cruiseHR  = 152.0
	surgeHR   = 172.0
	driftHR   = 8.0 // cardiac drift added linearly over the back half

	warmupSpeed = 2.1 // m/s
	cruiseSpeed = 3.2
	surgeSpeed  = 3.8
	fadeSpeed   = 2.9

	baseCadence = 168.0

	hrJitter    = 2.0
	speedJitter = 0.08
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// jitter returns a value in [-scale, scale).
func jitter(scale float64) float64 {
	return (getRandomFloat()*2 - 1) * scale
}

// generateRun creates one second of telemetry per elapsed second of the
// simulated run.
func generateRun(ctx context.Context, config *Config, stats *Stats) []Sample {
	logger.Get().Info(ctx, "generating simulated run",
		logger.Int("durationSeconds", config.DurationSeconds))

	samples := make([]Sample, config.DurationSeconds)
	distance := 0.0

	for i := 0; i < config.DurationSeconds; i++ {
		progress := float64(i) / float64(config.DurationSeconds)

		hr, speed := phaseTargets(i, progress)
		hr += jitter(hrJitter)
		speed += jitter(speedJitter)
		if speed < 0.5 {
			speed = 0.5
		}

		distance += speed / 1000.0 // one second of travel, in km

		samples[i] = Sample{
			Timestamp:     float64(i),
			HeartRate:     math.Round(hr),
			EnhancedSpeed: math.Round(speed*100) / 100,
			Cadence:       math.Round(baseCadence + jitter(4)),
			DistanceKM:    math.Round(distance*1000) / 1000,
			ElevationM:    math.Round(10*math.Sin(progress*4*math.Pi)*10) / 10,
		}
	}

	stats.SamplesGenerated = len(samples)
	return samples
}

// phaseTargets returns the target heart rate and speed for the given
// second of the run, before jitter.
func phaseTargets(second int, progress float64) (hr, speed float64) {
	switch {
	case second < warmupSeconds:
		ramp := float64(second) / warmupSeconds
		return restingHR + (cruiseHR-restingHR)*ramp,
			warmupSpeed + (cruiseSpeed-warmupSpeed)*ramp
	case progress >= surgeStart && progress < surgeEnd:
		return surgeHR, surgeSpeed
	case progress >= surgeEnd:
		fade := (progress - surgeEnd) / (1 - surgeEnd)
		drift := driftHR * fade
		return cruiseHR + drift, cruiseSpeed + (fadeSpeed-cruiseSpeed)*fade
	default:
		return cruiseHR, cruiseSpeed
	}
}
