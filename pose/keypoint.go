package pose

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// KeypointThreshold is the minimum confidence score a keypoint needs before
// it is treated as detected
const KeypointThreshold = 0.3

// Keypoint is a single body joint location with its detection confidence.
// X and Y are either normalized [0,1] model coordinates or screen pixels
// depending on the pipeline stage
type Keypoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score"`
}

// Vec returns the keypoint position as a vector
func (k Keypoint) Vec() r2.Vec {
	return r2.Vec{X: k.X, Y: k.Y}
}

// Confident returns true if the keypoint score clears the detection threshold
func (k Keypoint) Confident() bool {
	return k.Score >= KeypointThreshold
}

// Finite returns true if all keypoint fields are finite numbers
func (k Keypoint) Finite() bool {
	return isFinite(k.X) && isFinite(k.Y) && isFinite(k.Score)
}

// Pose is a fixed length ordered set of keypoints indexed by Index.  Storage
// is a flat slice so poses can be compared positionally
type Pose []Keypoint

// New returns a zeroed pose of NumKeypoints length
func New() Pose {
	return make(Pose, NumKeypoints)
}

// Valid returns true if the pose has exactly NumKeypoints entries
func (p Pose) Valid() bool {
	return len(p) == NumKeypoints
}

// At returns the keypoint at index i, or a zero keypoint if the pose does not
// hold that index
func (p Pose) At(i Index) Keypoint {
	if int(i) < 0 || int(i) >= len(p) {
		return Keypoint{}
	}
	return p[i]
}

// Clone returns a copy of the pose that shares no memory with p
func (p Pose) Clone() Pose {
	if p == nil {
		return nil
	}
	out := make(Pose, len(p))
	copy(out, p)
	return out
}

// ConfidentCount returns the number of keypoints clearing the detection
// threshold
func (p Pose) ConfidentCount() int {
	n := 0
	for _, kp := range p {
		if kp.Confident() {
			n++
		}
	}
	return n
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
