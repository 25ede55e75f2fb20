package filter

import (
	"math"

	"github.com/swdee/go-posetrack/pose"
)

// OneEuroParams defines the tuning of the One-Euro filter
type OneEuroParams struct {
	// MinCutoff is the cutoff frequency in Hz used when the keypoint is
	// stationary, lower values smooth more
	MinCutoff float64 `json:"min_cutoff"`
	// Beta scales how quickly the cutoff rises with keypoint speed in
	// pixels per second, higher values reduce lag during fast motion
	Beta float64 `json:"beta"`
	// DCutoff is the fixed cutoff frequency in Hz for the derivative
	DCutoff float64 `json:"d_cutoff"`
	// FrameInterval is the time between processed frames in seconds
	FrameInterval float64 `json:"frame_interval"`
	// DeadZone is the fraction of the screen width a confident keypoint must
	// move before the filtered value is updated
	DeadZone float64 `json:"dead_zone"`
	// ScoreWeight is the weight of the raw score in the score moving average
	ScoreWeight float64 `json:"score_weight"`
	// Threshold is the minimum score for a keypoint to use the dead zone
	Threshold float64 `json:"threshold"`
}

// DefaultOneEuroParams returns parameters tuned for a 30 FPS camera feed
func DefaultOneEuroParams() OneEuroParams {
	return OneEuroParams{
		MinCutoff:     1.0,
		Beta:          0.005,
		DCutoff:       1.0,
		FrameInterval: 1.0 / 30,
		DeadZone:      0.01,
		ScoreWeight:   0.7,
		Threshold:     pose.KeypointThreshold,
	}
}

// SlotState is the filter state of a single keypoint slot
type SlotState struct {
	// X, Y is the last filtered position
	X, Y float64
	// Score is the last smoothed confidence
	Score float64
	// DX, DY is the last smoothed velocity in pixels per second
	DX, DY float64
	// set is true once the slot has received a sample
	set bool
}

func (s *SlotState) keypoint() pose.Keypoint {
	return pose.Keypoint{X: s.X, Y: s.Y, Score: s.Score}
}

// OneEuro is an adaptive low pass filter over the 17 keypoints of a pose.
// The cutoff frequency rises with keypoint speed so slow movement is heavily
// smoothed while fast movement is followed with little lag
type OneEuro struct {
	params OneEuroParams
	slots  [pose.NumKeypoints]SlotState
}

// NewOneEuro returns a One-Euro filter with empty state
func NewOneEuro(params OneEuroParams) *OneEuro {

	def := DefaultOneEuroParams()

	if !positive(params.FrameInterval) {
		params.FrameInterval = def.FrameInterval
	}
	if !positive(params.MinCutoff) {
		params.MinCutoff = def.MinCutoff
	}
	if !positive(params.DCutoff) {
		params.DCutoff = def.DCutoff
	}
	if params.ScoreWeight <= 0 || params.ScoreWeight > 1 {
		params.ScoreWeight = def.ScoreWeight
	}

	return &OneEuro{params: params}
}

// Params returns the filter parameters in use
func (f *OneEuro) Params() OneEuroParams {
	return f.params
}

// Slot returns the state of keypoint slot i and whether it holds a sample
func (f *OneEuro) Slot(i pose.Index) (SlotState, bool) {
	if int(i) < 0 || int(i) >= pose.NumKeypoints {
		return SlotState{}, false
	}
	return f.slots[i], f.slots[i].set
}

// Reset clears all slots
func (f *OneEuro) Reset() {
	f.slots = [pose.NumKeypoints]SlotState{}
}

// Smooth filters raw against the previous samples.  If raw is not a full
// pose or the screen dimensions are invalid it is returned unchanged
func (f *OneEuro) Smooth(raw pose.Pose, width, height float64) pose.Pose {

	if passthrough(raw, width, height) {
		return raw
	}

	out := make(pose.Pose, len(raw))
	deadZone := f.params.DeadZone * width
	dt := f.params.FrameInterval
	alphaD := alpha(f.params.DCutoff, dt)

	for i, kp := range raw {
		s := &f.slots[i]

		if !kp.Finite() {
			// keep the last good value rather than poisoning the state
			if s.set {
				out[i] = s.keypoint()
			} else {
				out[i] = pose.Keypoint{}
			}
			continue
		}

		if !s.set {
			*s = SlotState{X: kp.X, Y: kp.Y, Score: kp.Score, set: true}
			out[i] = kp
			continue
		}

		deltaX := kp.X - s.X
		deltaY := kp.Y - s.Y

		// near static subject, hold the cached value so filter lag does not
		// show up as drift
		if math.Hypot(deltaX, deltaY) < deadZone && kp.Score >= f.params.Threshold {
			out[i] = s.keypoint()
			continue
		}

		// smooth the derivative at its own fixed cutoff
		s.DX = alphaD*(deltaX/dt) + (1-alphaD)*s.DX
		s.DY = alphaD*(deltaY/dt) + (1-alphaD)*s.DY

		speed := math.Hypot(s.DX, s.DY)
		cutoff := f.params.MinCutoff + f.params.Beta*speed
		a := alpha(cutoff, dt)

		s.X = a*kp.X + (1-a)*s.X
		s.Y = a*kp.Y + (1-a)*s.Y
		s.Score = f.params.ScoreWeight*kp.Score + (1-f.params.ScoreWeight)*s.Score

		out[i] = s.keypoint()
	}

	return out
}
