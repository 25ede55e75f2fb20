package posetrack

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/swdee/go-posetrack/analysis"
	"github.com/swdee/go-posetrack/filter"
	"github.com/swdee/go-posetrack/tracker"
)

// maxParamsFileSize is the largest params file LoadParams will read
const maxParamsFileSize = 1 * 1024 * 1024

// Smoothing selects the per track filter applied to matched detections
type Smoothing string

const (
	SmoothOneEuro Smoothing = "oneeuro"
	SmoothKalman  Smoothing = "kalman"
	SmoothNone    Smoothing = "none"
)

// Params holds the configuration of a Pipeline
type Params struct {
	// ModelWidth and ModelHeight are the pose model input dimensions the
	// camera frame was letterboxed into.  Zero means the frame was stretched
	ModelWidth  float64
	ModelHeight float64
	// Tracker configures identity matching and track lifetime
	Tracker tracker.Config
	// Smoothing selects the filter used per track
	Smoothing Smoothing
	// OneEuro configures the One-Euro filter when selected
	OneEuro filter.OneEuroParams
	// Kalman configures the Kalman smoother when selected
	Kalman filter.KalmanParams
	// TrailSize is the number of body centre points kept per track
	TrailSize int
	// Lift is the initial lift type analysed
	Lift string
	// Profile is the initial user profile
	Profile analysis.Profile
}

// DefaultParams returns the default pipeline parameters
func DefaultParams() Params {
	return Params{
		Tracker:   tracker.DefaultConfig(),
		Smoothing: SmoothOneEuro,
		OneEuro:   filter.DefaultOneEuroParams(),
		Kalman:    filter.DefaultKalmanParams(),
		TrailSize: 30,
	}
}

// ParamsFile is the JSON schema of a params file.  Omitted fields keep the
// value of the Params they are applied to
type ParamsFile struct {
	// Model input
	ModelWidth  *float64 `json:"model_width,omitempty"`
	ModelHeight *float64 `json:"model_height,omitempty"`

	// Tracker params
	MaxAge            *string  `json:"max_age,omitempty"` // duration string like "1s"
	MinSimilarity     *float64 `json:"min_similarity,omitempty"`
	MaxPersons        *int     `json:"max_persons,omitempty"`
	KeypointThreshold *float64 `json:"keypoint_threshold,omitempty"`
	MinKeypoints      *int     `json:"min_keypoints,omitempty"`

	// Filter params
	Smoothing        *string  `json:"smoothing,omitempty"`
	FrameInterval    *string  `json:"frame_interval,omitempty"` // duration string like "33ms"
	MinCutoff        *float64 `json:"min_cutoff,omitempty"`
	Beta             *float64 `json:"beta,omitempty"`
	DCutoff          *float64 `json:"d_cutoff,omitempty"`
	DeadZone         *float64 `json:"dead_zone,omitempty"`
	ScoreWeight      *float64 `json:"score_weight,omitempty"`
	Acceleration     *float64 `json:"acceleration,omitempty"`
	MeasurementNoise *float64 `json:"measurement_noise,omitempty"`

	// Session params
	TrailSize *int     `json:"trail_size,omitempty"`
	Lift      *string  `json:"lift,omitempty"`
	HeightCm  *float64 `json:"height_cm,omitempty"`
	WeightKg  *float64 `json:"weight_kg,omitempty"`
}

// LoadParams reads the JSON params file at path and applies it over
// DefaultParams.  The file must have a .json extension and be no larger
// than 1MiB
func LoadParams(path string) (Params, error) {

	cleanPath := filepath.Clean(path)

	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Params{}, errors.Errorf("params file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)

	if err != nil {
		return Params{}, errors.Wrap(err, "failed to stat params file")
	}

	if info.Size() > maxParamsFileSize {
		return Params{}, errors.Errorf("params file too large: %d bytes (max %d)", info.Size(), maxParamsFileSize)
	}

	data, err := os.ReadFile(cleanPath)

	if err != nil {
		return Params{}, errors.Wrap(err, "failed to read params file")
	}

	file := &ParamsFile{}

	if err := json.Unmarshal(data, file); err != nil {
		return Params{}, errors.Wrap(err, "failed to parse params JSON")
	}

	if err := file.Validate(); err != nil {
		return Params{}, errors.Wrap(err, "invalid params")
	}

	return file.Apply(DefaultParams()), nil
}

// Validate checks the values set in the file are usable
func (f *ParamsFile) Validate() error {

	if f.MaxAge != nil {
		if d, err := time.ParseDuration(*f.MaxAge); err != nil {
			return errors.Wrapf(err, "invalid max_age '%s'", *f.MaxAge)
		} else if d <= 0 {
			return errors.Errorf("max_age must be positive, got %s", d)
		}
	}

	if f.FrameInterval != nil {
		if d, err := time.ParseDuration(*f.FrameInterval); err != nil {
			return errors.Wrapf(err, "invalid frame_interval '%s'", *f.FrameInterval)
		} else if d <= 0 {
			return errors.Errorf("frame_interval must be positive, got %s", d)
		}
	}

	if f.MinSimilarity != nil && (*f.MinSimilarity < 0 || *f.MinSimilarity > 1) {
		return errors.Errorf("min_similarity must be between 0 and 1, got %f", *f.MinSimilarity)
	}

	if f.KeypointThreshold != nil && (*f.KeypointThreshold < 0 || *f.KeypointThreshold > 1) {
		return errors.Errorf("keypoint_threshold must be between 0 and 1, got %f", *f.KeypointThreshold)
	}

	if f.ScoreWeight != nil && (*f.ScoreWeight < 0 || *f.ScoreWeight > 1) {
		return errors.Errorf("score_weight must be between 0 and 1, got %f", *f.ScoreWeight)
	}

	if f.MaxPersons != nil && *f.MaxPersons < 1 {
		return errors.Errorf("max_persons must be at least 1, got %d", *f.MaxPersons)
	}

	if f.TrailSize != nil && *f.TrailSize < 1 {
		return errors.Errorf("trail_size must be at least 1, got %d", *f.TrailSize)
	}

	if f.Smoothing != nil {
		switch Smoothing(strings.ToLower(*f.Smoothing)) {
		case SmoothOneEuro, SmoothKalman, SmoothNone:
		default:
			return errors.Errorf("unknown smoothing %q", *f.Smoothing)
		}
	}

	return nil
}

// Apply returns p with every field set in the file overridden.  The file
// must have passed Validate
func (f *ParamsFile) Apply(p Params) Params {

	if f.ModelWidth != nil {
		p.ModelWidth = *f.ModelWidth
	}
	if f.ModelHeight != nil {
		p.ModelHeight = *f.ModelHeight
	}

	if f.MaxAge != nil {
		if d, err := time.ParseDuration(*f.MaxAge); err == nil {
			p.Tracker.MaxAge = d
		}
	}
	if f.MinSimilarity != nil {
		p.Tracker.MinSimilarity = *f.MinSimilarity
	}
	if f.MaxPersons != nil {
		p.Tracker.MaxPersons = *f.MaxPersons
	}
	if f.KeypointThreshold != nil {
		p.Tracker.Similarity.Threshold = *f.KeypointThreshold
		p.OneEuro.Threshold = *f.KeypointThreshold
		p.Kalman.Threshold = *f.KeypointThreshold
	}
	if f.MinKeypoints != nil {
		p.Tracker.Similarity.MinKeypoints = *f.MinKeypoints
	}

	if f.Smoothing != nil {
		p.Smoothing = Smoothing(strings.ToLower(*f.Smoothing))
	}
	if f.FrameInterval != nil {
		if d, err := time.ParseDuration(*f.FrameInterval); err == nil {
			p.OneEuro.FrameInterval = d.Seconds()
			p.Kalman.FrameInterval = d.Seconds()
		}
	}
	if f.MinCutoff != nil {
		p.OneEuro.MinCutoff = *f.MinCutoff
	}
	if f.Beta != nil {
		p.OneEuro.Beta = *f.Beta
	}
	if f.DCutoff != nil {
		p.OneEuro.DCutoff = *f.DCutoff
	}
	if f.DeadZone != nil {
		p.OneEuro.DeadZone = *f.DeadZone
	}
	if f.ScoreWeight != nil {
		p.OneEuro.ScoreWeight = *f.ScoreWeight
		p.Kalman.ScoreWeight = *f.ScoreWeight
	}
	if f.Acceleration != nil {
		p.Kalman.Acceleration = *f.Acceleration
	}
	if f.MeasurementNoise != nil {
		p.Kalman.MeasurementNoise = *f.MeasurementNoise
	}

	if f.TrailSize != nil {
		p.TrailSize = *f.TrailSize
	}
	if f.Lift != nil {
		p.Lift = *f.Lift
	}
	if f.HeightCm != nil {
		p.Profile.HeightCm = *f.HeightCm
	}
	if f.WeightKg != nil {
		p.Profile.WeightKg = *f.WeightKg
	}

	return p
}
