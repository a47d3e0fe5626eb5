package simrun

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/runtogether/pacer/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "simrun_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the run simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Pacer Run Simulator
===================

Replays a synthetic run against a live pacing service, one tick at a
time, and prints the advice the engine would show the runner.

Usage:
  go run cmd/simulate/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -session string
        Session id (default: a fresh UUID)
  -level int
        Runner skill level: 1 beginner, 2 intermediate, 3 advanced (default 2)
  -duration int
        Length of the simulated run in seconds (default 600)
  -batch int
        Samples per tick request (default 1)
  -interval duration
        Delay between tick requests (default 0; use 1s for real time)
  -timeout duration
        HTTP request timeout (default 30s)
  -input string
        Recorded run (JSON) to replay instead of generating one
  -output string
        Output file for the generated samples (default: not saved)
  -log string
        Log file for run output (default: simrun_TIMESTAMP.log)
  -verbose
        Print every tick instead of only display ticks
  -help
        Show this help message

Examples:
  # Replay a 10-minute run as fast as the service allows
  go run cmd/simulate/main.go

  # Real-time replay for an advanced runner
  go run cmd/simulate/main.go -level 3 -interval 1s

  # Longer run, batched uploads, samples kept for inspection
  go run cmd/simulate/main.go -duration 1800 -batch 5 -output run.json

  # Replay a previously recorded run
  go run cmd/simulate/main.go -input run.json -interval 1s
`)
}
