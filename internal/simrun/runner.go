// Package simrun replays a synthetic run against a live pacing service,
// driving the tick endpoint the way a watch or phone app would.
package simrun

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/runtogether/pacer/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete simulated run.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	if config.SessionID == "" {
		config.SessionID = uuid.NewString()
	}
	if config.BatchSize < 1 {
		config.BatchSize = 1
	}

	logger.Get().Info(ctx, "starting simulated run",
		logger.String("baseURL", config.BaseURL),
		logger.String("sessionID", config.SessionID),
		logger.Int("runnerLevel", config.RunnerLevel),
		logger.Int("durationSeconds", config.DurationSeconds),
		logger.Int("batchSize", config.BatchSize),
		logger.String("interval", config.Interval.String()))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	var samples []Sample
	if config.InputFile != "" {
		var err error
		samples, err = loadSamplesFromFile(ctx, config, stats)
		if err != nil {
			return fmt.Errorf("loading recorded run failed: %w", err)
		}
	} else {
		samples = generateRun(ctx, config, stats)
	}

	if err := replayRun(ctx, config, samples, stats); err != nil {
		return fmt.Errorf("run replay failed: %w", err)
	}

	if config.OutputFile != "" {
		if err := saveSamplesToFile(ctx, config, samples); err != nil {
			logger.Get().Warn(ctx, "failed to save samples to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulated run completed")
	return nil
}

// checkServiceHealth verifies the service is up and its artifacts loaded.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(ctx, config.BaseURL+"/health")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &health); err == nil && health.Status != "ok" {
		logger.Get().Warn(ctx, "service is degraded; full-mode ticks may fail",
			logger.String("status", health.Status))
	}

	logger.Get().Info(ctx, "service is reachable")
	return nil
}

// replayRun posts the samples batch by batch and prints the engine's
// advice as the run unfolds.
func replayRun(ctx context.Context, config *Config, samples []Sample, stats *Stats) error {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/tick"

	for start := 0; start < len(samples); start += config.BatchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end := start + config.BatchSize
		if end > len(samples) {
			end = len(samples)
		}
		batch := samples[start:end]

		resp, err := postTick(ctx, client, url, config, batch)
		stats.TicksSubmitted++
		if err != nil {
			stats.TicksFailed++
			logger.Get().Warn(ctx, "tick failed",
				logger.Int("second", end-1),
				logger.Error(err))
		} else {
			stats.TicksSuccessful++
			if resp.DisplayRecommendation {
				stats.DisplayTicks++
			}
			if config.Verbose || resp.DisplayRecommendation {
				printTick(end-1, batch[len(batch)-1], resp)
			}
		}

		if config.Interval > 0 && end < len(samples) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(config.Interval):
			}
		}
	}

	return nil
}

// postTick submits one batch and decodes the response.
func postTick(ctx context.Context, client *HTTPClient, url string, config *Config, batch []Sample) (*TickResponse, error) {
	resp, err := client.Post(ctx, url, TickRequest{
		SessionID:   config.SessionID,
		RunnerLevel: config.RunnerLevel,
		Samples:     batch,
	})
	if err != nil {
		return nil, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tick returned status %d: %s", resp.StatusCode, body)
	}

	var out TickResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode tick response: %w", err)
	}
	return &out, nil
}

// printTick renders one line of run progress.
func printTick(second int, newest Sample, resp *TickResponse) {
	predHR := "-"
	predSpeed := "-"
	if resp.Result.PredHR != nil {
		predHR = fmt.Sprintf("%.1f", *resp.Result.PredHR)
	}
	if resp.Result.PredSpeed != nil {
		predSpeed = fmt.Sprintf("%.2f", *resp.Result.PredSpeed)
	}
	fmt.Printf("[%4d] HR %3.0f | Speed %.2f | Pred HR %s | Pred Speed %s | %s\n",
		second, newest.HeartRate, newest.EnhancedSpeed, predHR, predSpeed,
		resp.Result.Recommendation)
}

// loadSamplesFromFile reads a previously recorded run from a JSON file.
func loadSamplesFromFile(ctx context.Context, config *Config, stats *Stats) ([]Sample, error) {
	data, err := os.ReadFile(config.InputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var samples []Sample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("failed to decode samples: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("recorded run %s holds no samples", config.InputFile)
	}

	stats.SamplesGenerated = len(samples)
	logger.Get().Info(ctx, "loaded recorded run",
		logger.String("filename", config.InputFile),
		logger.Int("samples", len(samples)))
	return samples, nil
}

// saveSamplesToFile saves the generated run to a JSON file.
func saveSamplesToFile(ctx context.Context, config *Config, samples []Sample) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples to save")
	}

	filename := config.OutputFile
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal samples: %w", err)
	}
	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "samples saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var ticksPerSecond float64
	if stats.Duration > 0 {
		ticksPerSecond = float64(stats.TicksSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("samplesGenerated", stats.SamplesGenerated),
		logger.Int("ticksSubmitted", stats.TicksSubmitted),
		logger.Int("ticksSuccessful", stats.TicksSuccessful),
		logger.Int("ticksFailed", stats.TicksFailed),
		logger.Int("displayTicks", stats.DisplayTicks),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("ticksPerSecond", ticksPerSecond))
}
