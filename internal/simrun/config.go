package simrun

import "time"

// Config holds configuration for a simulated run.
type Config struct {
	BaseURL         string        // Base URL of the service
	SessionID       string        // Session id, generated when empty
	RunnerLevel     int           // Runner skill level (1-3)
	DurationSeconds int           // Length of the simulated run in seconds
	BatchSize       int           // Samples per tick request
	Interval        time.Duration // Delay between tick requests
	Timeout         time.Duration // HTTP request timeout
	InputFile       string        // Recorded run (JSON) to replay instead of generating one
	OutputFile      string        // Output file for generated samples
	LogFile         string        // Log file for run output
	Verbose         bool          // Print every tick, not only display ticks
}

// Sample is one second of simulated telemetry on the wire.
type Sample struct {
	Timestamp     float64 `json:"timestamp"`
	HeartRate     float64 `json:"heart_rate"`
	EnhancedSpeed float64 `json:"enhanced_speed"`
	Cadence       float64 `json:"cadence"`
	DistanceKM    float64 `json:"distance_km"`
	ElevationM    float64 `json:"elevation_m"`
}

// TickRequest is the request body for the tick endpoint.
type TickRequest struct {
	SessionID   string   `json:"session_id"`
	RunnerLevel int      `json:"runner_level"`
	Samples     []Sample `json:"samples"`
}

// Recommendation is the engine output inside a tick response.
type Recommendation struct {
	PredHR         *float64 `json:"pred_hr"`
	PredSpeed      *float64 `json:"pred_speed"`
	Recommendation string   `json:"recommendation"`
}

// TickResponse is the response body from the tick endpoint.
type TickResponse struct {
	SessionID             string         `json:"session_id"`
	DisplayRecommendation bool           `json:"display_recommendation"`
	Result                Recommendation `json:"result"`
	ServerTime            float64        `json:"server_time"`
}

// Stats holds run statistics.
type Stats struct {
	SamplesGenerated int
	TicksSubmitted   int
	TicksSuccessful  int
	TicksFailed      int
	DisplayTicks     int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
