package artifact

import "errors"

var (
	// ErrUnavailable means a model or scaler did not load at startup;
	// full-mode ticks that need it fail with this.
	ErrUnavailable = errors.New("model artifacts not available")

	// ErrTransform means the aligned feature row does not match the
	// shape a scaler or model was fitted with.
	ErrTransform = errors.New("feature transform failed")

	// ErrMetadata means the required metadata file is missing or
	// malformed. Unlike models and scalers this is fatal at startup.
	ErrMetadata = errors.New("model metadata unavailable")
)
