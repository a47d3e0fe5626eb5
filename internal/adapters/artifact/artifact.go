// Package artifact loads the trained model files and adapts feature
// vectors into predictions. Each target (heart rate, speed) gets an
// independent bundle of ridge coefficients, a fitted standard scaler
// and an ordered feature-column list from the shared metadata record.
//
// Metadata is required at startup. Models and scalers are safe-loaded:
// a file that is missing or malformed leaves its slot nil and degrades
// health instead of failing the process, matching the warm-up-only
// behavior a session sees until artifacts are restored.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runtogether/pacer/internal/domain/feature"
	"github.com/runtogether/pacer/internal/domain/types"
	"github.com/runtogether/pacer/pkg/logger"
)

// Artifact file names inside the models directory.
const (
	hrModelFile    = "heart_rate_model.json"
	speedModelFile = "speed_model.json"
	hrScalerFile   = "scaler_hr.json"
	spdScalerFile  = "scaler_speed.json"
	metadataFile   = "model_metadata.json"
)

// Scaler is a fitted standard scaler: x' = (x - mean) / scale.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform standardizes one feature row in place-order.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) || len(x) != len(s.Scale) {
		return nil, fmt.Errorf("%w: got %d features, scaler fitted with %d",
			ErrTransform, len(x), len(s.Mean))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}

// Ridge is a fitted linear regressor.
type Ridge struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// Predict evaluates the linear model on one scaled feature row.
func (r *Ridge) Predict(x []float64) (float64, error) {
	if len(x) != len(r.Coef) {
		return 0, fmt.Errorf("%w: got %d features, model fitted with %d",
			ErrTransform, len(x), len(r.Coef))
	}
	y := r.Intercept
	for i, v := range x {
		y += r.Coef[i] * v
	}
	return y, nil
}

// Metadata is the shared training record. Field names follow the file
// written by the training pipeline.
type Metadata struct {
	SpeedLeadSteps   int      `json:"SPEED_LEAD_STEPS"`
	HRFeatureCols    []string `json:"hr_feature_cols"`
	SpeedFeatureCols []string `json:"speed_feature_cols"`
}

// Bundle pairs one regressor with its scaler and expected columns.
type Bundle struct {
	model  *Ridge
	scaler *Scaler
	cols   []string
}

// Loaded reports whether both halves of the bundle are usable.
func (b *Bundle) Loaded() bool {
	return b != nil && b.model != nil && b.scaler != nil
}

// Columns returns the ordered feature-column list the bundle expects.
func (b *Bundle) Columns() []string {
	if b == nil {
		return nil
	}
	return b.cols
}

// Predict aligns the vector to the bundle's column order, standardizes
// it and evaluates the regressor. Columns absent from the vector get a
// neutral 0.0; extra vector entries are ignored.
func (b *Bundle) Predict(vec feature.Vector) (float64, error) {
	if !b.Loaded() {
		return 0, ErrUnavailable
	}
	x := make([]float64, len(b.cols))
	for i, col := range b.cols {
		x[i] = vec[col] // missing key yields 0.0
	}
	scaled, err := b.scaler.Transform(x)
	if err != nil {
		return 0, err
	}
	return b.model.Predict(scaled)
}

// Registry holds both loaded bundles and the metadata record.
type Registry struct {
	dir   string
	meta  Metadata
	hr    *Bundle
	speed *Bundle
}

// Load reads the artifact files from dir. A missing metadata file is a
// startup error; missing models or scalers only degrade health.
func Load(ctx context.Context, dir string) (*Registry, error) {
	log := logger.Named("artifact")

	var meta Metadata
	if err := readJSON(filepath.Join(dir, metadataFile), &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadata, err)
	}

	r := &Registry{
		dir:   dir,
		meta:  meta,
		hr:    &Bundle{cols: meta.HRFeatureCols},
		speed: &Bundle{cols: meta.SpeedFeatureCols},
	}

	r.hr.model = safeLoad[Ridge](ctx, log, filepath.Join(dir, hrModelFile))
	r.speed.model = safeLoad[Ridge](ctx, log, filepath.Join(dir, speedModelFile))
	r.hr.scaler = safeLoad[Scaler](ctx, log, filepath.Join(dir, hrScalerFile))
	r.speed.scaler = safeLoad[Scaler](ctx, log, filepath.Join(dir, spdScalerFile))

	log.Info(ctx, "model artifacts loaded",
		logger.String("dir", dir),
		logger.Int("hr_features", len(meta.HRFeatureCols)),
		logger.Int("speed_features", len(meta.SpeedFeatureCols)),
		logger.Any("hr_ready", r.hr.Loaded()),
		logger.Any("speed_ready", r.speed.Loaded()))

	return r, nil
}

// HR returns the heart-rate bundle.
func (r *Registry) HR() *Bundle { return r.hr }

// Speed returns the speed bundle.
func (r *Registry) Speed() *Bundle { return r.speed }

// Metadata returns the shared training record.
func (r *Registry) Metadata() Metadata { return r.meta }

// Health summarizes artifact availability. Status and server time are
// filled in by the caller.
func (r *Registry) Health() types.Health {
	return types.Health{
		ModelsDir:      r.dir,
		HRModel:        r.hr.model != nil,
		SpeedModel:     r.speed.model != nil,
		ScalerHR:       r.hr.scaler != nil,
		ScalerSpeed:    r.speed.scaler != nil,
		HRFeaturesN:    len(r.meta.HRFeatureCols),
		SpeedFeaturesN: len(r.meta.SpeedFeatureCols),
		SpeedLeadSteps: r.meta.SpeedLeadSteps,
	}
}

// safeLoad reads one artifact file, returning nil on any failure.
func safeLoad[T any](ctx context.Context, log logger.Logger, path string) *T {
	var v T
	if err := readJSON(path, &v); err != nil {
		log.Warn(ctx, "artifact not loaded",
			logger.String("path", path),
			logger.Error(err))
		return nil
	}
	return &v
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
