// Package filter provides temporal smoothing of pose keypoints between
// frames.  Smoothers are memoryful, their output depends on call history, so
// callers own the lifecycle and must Reset them when tracking restarts or the
// camera is deactivated.
package filter

import (
	"math"

	"github.com/swdee/go-posetrack/pose"
)

// Smoother smooths successive raw poses of a single body
type Smoother interface {
	// Smooth returns the filtered version of raw for a frame of the given
	// screen dimensions
	Smooth(raw pose.Pose, width, height float64) pose.Pose
	// Reset clears all filter state
	Reset()
}

// passthrough returns true when the inputs cannot be filtered and the raw
// pose should be returned unchanged
func passthrough(raw pose.Pose, width, height float64) bool {
	return len(raw) != pose.NumKeypoints || !positive(width) || !positive(height)
}

// positive returns true for finite numbers above zero
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// alpha converts a cutoff frequency into an exponential smoothing factor for
// samples taken every interval seconds
func alpha(cutoff, interval float64) float64 {
	tau := 1.0 / (2 * math.Pi * cutoff)
	return 1.0 / (1.0 + tau/interval)
}
