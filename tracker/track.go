package tracker

import (
	"time"

	"github.com/swdee/go-posetrack/pose"
)

// State represents the lifecycle state of a tracked body.  Only membership in
// the registry is stored, Live and Stale are computed from the track age
type State int

const (
	// Absent means the ID has not been issued yet
	Absent State = 0
	// Live tracks were seen within the maximum age
	Live State = 1
	// Stale tracks have exceeded the maximum age and await the next sweep
	Stale State = 2
	// Removed tracks have been swept from the registry, their ID is retired
	Removed State = 3
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Live:
		return "live"
	case Stale:
		return "stale"
	case Removed:
		return "removed"
	default:
		return "absent"
	}
}

// Track is a single tracked body
type Track struct {
	// ID is the unique identity of the body
	ID int `json:"id"`
	// Pose is the smoothed screen space pose from the last matched detection
	Pose pose.Pose `json:"pose"`
	// LastSeenAt is the time of the last matched detection
	LastSeenAt time.Time `json:"lastSeenAt"`
	// FirstSeenAt is the time the track was created
	FirstSeenAt time.Time `json:"firstSeenAt"`
	// Hits is the number of frames the track was matched in, including the
	// frame that created it
	Hits int `json:"hits"`
}

// Age returns how long ago the track was last matched
func (t Track) Age(now time.Time) time.Duration {
	return now.Sub(t.LastSeenAt)
}

// Lifetime returns how long the track has existed
func (t Track) Lifetime(now time.Time) time.Duration {
	return now.Sub(t.FirstSeenAt)
}

// clone returns a copy of the track not sharing the pose slice
func (t Track) clone() Track {
	t.Pose = t.Pose.Clone()
	return t
}
