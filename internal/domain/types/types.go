// Package types contains common types used across the application
package types

// Recommendation is the engine output for one tick. Predictions are
// nil while a session is still warming up.
type Recommendation struct {
	PredHR         *float64 `json:"pred_hr"`
	PredSpeed      *float64 `json:"pred_speed"` // m/s
	Recommendation string   `json:"recommendation"`
}

// TickResult is the full outcome of processing one batch of samples.
type TickResult struct {
	SessionID string
	Display   bool
	Result    Recommendation
	Timestamp float64 // newest sample's timestamp
}

// Health reports which model artifacts loaded at startup.
type Health struct {
	Status         string  `json:"status"`
	ModelsDir      string  `json:"models_dir"`
	HRModel        bool    `json:"hr_model"`
	SpeedModel     bool    `json:"speed_model"`
	ScalerHR       bool    `json:"scaler_hr"`
	ScalerSpeed    bool    `json:"scaler_speed"`
	HRFeaturesN    int     `json:"hr_features_n"`
	SpeedFeaturesN int     `json:"speed_features_n"`
	SpeedLeadSteps int     `json:"speed_lead_steps"`
	ServerTime     float64 `json:"server_time"`
}

// Ready reports whether every artifact the full-mode engine needs is
// available.
func (h Health) Ready() bool {
	return h.HRModel && h.SpeedModel && h.ScalerHR && h.ScalerSpeed &&
		h.HRFeaturesN > 0 && h.SpeedFeaturesN > 0
}
