package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/runtogether/pacer/internal/simrun"
)

// Default configuration constants.
const (
	defaultDuration   = 600
	defaultBatchSize  = 1
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 2 * time.Hour
	defaultLevel      = 2
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8000", "Base URL of the service")
		sessionID = flag.String("session", "", "Session id (default: a fresh UUID)")
		level     = flag.Int("level", defaultLevel, "Runner skill level: 1 beginner, 2 intermediate, 3 advanced")
		duration  = flag.Int("duration", defaultDuration, "Length of the simulated run in seconds")
		batchSize = flag.Int("batch", defaultBatchSize, "Samples per tick request")
		interval  = flag.Duration("interval", 0, "Delay between tick requests (use 1s for real time)")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		input     = flag.String("input", "", "Recorded run (JSON) to replay instead of generating one")
		output    = flag.String("output", "", "Output file for the generated samples")
		logFile   = flag.String("log", "", "Log file for run output (default: simrun_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Print every tick instead of only display ticks")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simrun.ShowHelp()
		return
	}

	if err := simrun.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &simrun.Config{
		BaseURL:         *baseURL,
		SessionID:       *sessionID,
		RunnerLevel:     *level,
		DurationSeconds: *duration,
		BatchSize:       *batchSize,
		Interval:        *interval,
		Timeout:         *timeout,
		InputFile:       *input,
		OutputFile:      *output,
		LogFile:         *logFile,
		Verbose:         *verbose,
	}

	if err := simrun.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulated run failed: " + err.Error() + "\n")
		return
	}
}
