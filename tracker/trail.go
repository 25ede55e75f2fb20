package tracker

import (
	"sync"

	"github.com/swdee/go-posetrack/pose"
	"gonum.org/v1/gonum/spatial/r2"
)

// Trail is the struct to keep a history of body centre positions per track,
// used for drawing motion trails and bar path checks
type Trail struct {
	// size is the maximum number of most recent points to keep in history
	size int
	// history of tracked points by track ID
	history map[int][]r2.Vec
	sync.Mutex
}

// NewTrail returns a new trail history instance.  Size is the maximum length
// of the trail to maintain per track
func NewTrail(size int) *Trail {
	if size < 1 {
		size = 1
	}
	return &Trail{
		size:    size,
		history: make(map[int][]r2.Vec),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.history = make(map[int][]r2.Vec)
}

// Add appends the body centre of the track to its history.  Tracks with no
// confident keypoints are skipped
func (t *Trail) Add(track Track) {

	centre, ok := BodyCentre(track.Pose)

	if !ok {
		return
	}

	t.Lock()
	defer t.Unlock()

	points := append(t.history[track.ID], centre)

	// check if history is exceeded and drop oldest point
	if len(points) > t.size {
		points = points[len(points)-t.size:]
	}

	t.history[track.ID] = points
}

// Points returns a copy of the point history for a track id, oldest first
func (t *Trail) Points(id int) []r2.Vec {
	t.Lock()
	defer t.Unlock()

	points, exists := t.history[id]

	if !exists {
		// no history yet
		return nil
	}

	out := make([]r2.Vec, len(points))
	copy(out, points)
	return out
}

// Forget drops the history of a track id
func (t *Trail) Forget(id int) {
	t.Lock()
	defer t.Unlock()

	delete(t.history, id)
}

// Retain drops the history of every track not in tracks
func (t *Trail) Retain(tracks []Track) {
	t.Lock()
	defer t.Unlock()

	keep := make(map[int]bool, len(tracks))
	for _, tr := range tracks {
		keep[tr.ID] = true
	}

	for id := range t.history {
		if !keep[id] {
			delete(t.history, id)
		}
	}
}

// BodyCentre returns the mid point of the hips when both are confident,
// otherwise the centre of the confident keypoint bounding box
func BodyCentre(p pose.Pose) (r2.Vec, bool) {

	if !p.Valid() {
		return r2.Vec{}, false
	}

	left := p.At(pose.LeftHip)
	right := p.At(pose.RightHip)

	if left.Confident() && right.Confident() {
		return r2.Scale(0.5, r2.Add(left.Vec(), right.Vec())), true
	}

	box, ok := pose.BoundingBox(p, pose.KeypointThreshold)

	if !ok {
		return r2.Vec{}, false
	}

	return box.Center(), true
}
