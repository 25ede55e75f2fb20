package analysis

import (
	"math"

	"github.com/swdee/go-posetrack/pose"
	"gonum.org/v1/gonum/spatial/r2"
)

// minSegment is the shortest segment, in coordinate units, an angle can be
// computed from without being dominated by detection noise
const minSegment = 1.0

// Landmark is a keypoint derived from one or both sides of the body
type Landmark struct {
	Pos   r2.Vec
	Score float64
}

// Midpoint returns the virtual landmark between the left and right keypoint.
// When both sides are confident the positions are averaged weighted by their
// scores, otherwise the confident side is used.  The boolean result is false
// when neither side clears the detection threshold
func Midpoint(p pose.Pose, left, right pose.Index) (Landmark, bool) {

	l := p.At(left)
	r := p.At(right)

	lok := l.Confident() && l.Finite()
	rok := r.Confident() && r.Finite()

	switch {
	case lok && rok:
		w := l.Score + r.Score
		pos := r2.Scale(1/w, r2.Add(r2.Scale(l.Score, l.Vec()), r2.Scale(r.Score, r.Vec())))
		return Landmark{Pos: pos, Score: w / 2}, true
	case lok:
		return Landmark{Pos: l.Vec(), Score: l.Score}, true
	case rok:
		return Landmark{Pos: r.Vec(), Score: r.Score}, true
	}

	return Landmark{}, false
}

// Angle returns the angle in degrees [0,180] at b formed by the points a, b
// and c.  The boolean result is false if either arm is shorter than one unit
func Angle(a, b, c r2.Vec) (float64, bool) {

	ba := r2.Sub(a, b)
	bc := r2.Sub(c, b)

	if r2.Norm(ba) < minSegment || r2.Norm(bc) < minSegment {
		return 0, false
	}

	deg := math.Abs(math.Atan2(ba.Y, ba.X)-math.Atan2(bc.Y, bc.X)) * 180 / math.Pi

	if deg > 180 {
		deg = 360 - deg
	}

	return deg, true
}

// Lean returns the angle in degrees between the segment from bottom to top
// and the vertical axis
func Lean(top, bottom r2.Vec) (float64, bool) {

	d := r2.Sub(top, bottom)

	if r2.Norm(d) < minSegment {
		return 0, false
	}

	return math.Atan2(math.Abs(d.X), math.Abs(d.Y)) * 180 / math.Pi, true
}

// distance returns the Euclidean distance between two points
func distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// pair returns both keypoints of a bilateral joint if both are confident
func pair(p pose.Pose, left, right pose.Index) (pose.Keypoint, pose.Keypoint, bool) {
	l := p.At(left)
	r := p.At(right)
	return l, r, l.Confident() && r.Confident() && l.Finite() && r.Finite()
}
