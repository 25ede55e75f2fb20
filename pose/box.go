package pose

import "gonum.org/v1/gonum/spatial/r2"

// Box is an axis aligned bounding box in the same coordinate space as the
// keypoints it was built from
type Box struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// BoundingBox returns the box enclosing every keypoint with a score at or
// above threshold.  The boolean result is false if no keypoint qualified
func BoundingBox(p Pose, threshold float64) (Box, bool) {

	var box Box
	found := false

	for _, kp := range p {
		if kp.Score < threshold || !kp.Finite() {
			continue
		}

		if !found {
			box = Box{MinX: kp.X, MinY: kp.Y, MaxX: kp.X, MaxY: kp.Y}
			found = true
			continue
		}

		if kp.X < box.MinX {
			box.MinX = kp.X
		}
		if kp.X > box.MaxX {
			box.MaxX = kp.X
		}
		if kp.Y < box.MinY {
			box.MinY = kp.Y
		}
		if kp.Y > box.MaxY {
			box.MaxY = kp.Y
		}
	}

	return box, found
}

// Width returns the width of the box
func (b Box) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the height of the box
func (b Box) Height() float64 {
	return b.MaxY - b.MinY
}

// Area returns width * height of the box
func (b Box) Area() float64 {
	return b.Width() * b.Height()
}

// Center returns the center point of the box
func (b Box) Center() r2.Vec {
	return r2.Vec{
		X: b.MinX + b.Width()/2,
		Y: b.MinY + b.Height()/2,
	}
}
