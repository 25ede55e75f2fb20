package tracker

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/swdee/go-posetrack/pose"
)

// Config holds the parameters of the identity tracker
type Config struct {
	// MaxAge is how long a track survives without a matching detection
	MaxAge time.Duration
	// MinSimilarity is the OKS a detection must exceed to match a track
	MinSimilarity float64
	// MaxPersons is the maximum number of live tracks
	MaxPersons int
	// Similarity configures the OKS calculation used for matching
	Similarity pose.SimilarityParams
}

// DefaultConfig returns the default tracker configuration
func DefaultConfig() Config {
	return Config{
		MaxAge:        1000 * time.Millisecond,
		MinSimilarity: 0.15,
		MaxPersons:    18,
		Similarity:    pose.DefaultSimilarityParams(),
	}
}

// PoseSmoother smooths the detections matched to a track.  Filter state is
// keyed by track ID and dropped when the track is removed
type PoseSmoother interface {
	Apply(id int, raw pose.Pose) pose.Pose
	Forget(id int)
	Reset()
}

// Tracker maintains the registry of tracked bodies and matches each frame's
// detections to it.  It is not safe for concurrent use, a single frame must
// finish its Update before the next one starts
type Tracker struct {
	// cfg is the tracker configuration
	cfg Config
	// idGen assigns IDs to new tracks
	idGen *IDGenerator
	// tracks is the registry ordered by ascending ID
	tracks []*Track
	// smoother is the optional per track filter
	smoother PoseSmoother
	// log for diagnostics
	log logrus.FieldLogger
	// dropped is the number of detections dropped during the last Update
	dropped int
}

// Option configures a Tracker
type Option func(*Tracker)

// WithSmoother smooths every matched or new detection with s before it is
// stored on the track
func WithSmoother(s PoseSmoother) Option {
	return func(tr *Tracker) {
		tr.smoother = s
	}
}

// WithLogger sets the logger used for diagnostics
func WithLogger(l logrus.FieldLogger) Option {
	return func(tr *Tracker) {
		tr.log = l
	}
}

// WithIDGenerator shares an ID generator between trackers
func WithIDGenerator(g *IDGenerator) Option {
	return func(tr *Tracker) {
		tr.idGen = g
	}
}

// New returns a tracker with an empty registry.  Zero valued configuration
// fields are replaced by their defaults
func New(cfg Config, opts ...Option) *Tracker {

	def := DefaultConfig()

	if cfg.MaxAge <= 0 {
		cfg.MaxAge = def.MaxAge
	}
	if cfg.MaxPersons <= 0 {
		cfg.MaxPersons = def.MaxPersons
	}
	if cfg.Similarity.Threshold <= 0 && cfg.Similarity.MinKeypoints <= 0 {
		cfg.Similarity = def.Similarity
	}

	tr := &Tracker{
		cfg:   cfg,
		idGen: NewIDGenerator(),
		log:   logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(tr)
	}

	return tr
}

// Config returns the tracker configuration in use
func (tr *Tracker) Config() Config {
	return tr.cfg
}

// Update matches the detections of a frame captured at now to the tracked
// bodies and returns the live tracks ordered by ID.
//
// Detections are processed in input order, each claiming the unclaimed live
// track with the best similarity above MinSimilarity.  Unmatched detections
// start a new track while fewer than MaxPersons tracks are live, otherwise
// they are dropped.  Finally every track not seen for MaxAge is removed
func (tr *Tracker) Update(detections []pose.Pose, now time.Time) []Track {

	tr.dropped = 0

	// Step 1: tracks still live at this frame are the match candidates
	var active []*Track

	for _, t := range tr.tracks {
		if t.Age(now) < tr.cfg.MaxAge {
			active = append(active, t)
		}
	}

	claimed := make([]bool, len(active))
	liveCount := len(active)

	var created []*Track

	for i, det := range detections {

		if !det.Valid() {
			tr.log.WithFields(logrus.Fields{
				"detection": i,
				"keypoints": len(det),
			}).Debug("skipping malformed detection")
			continue
		}

		// Step 2: greedy best match against unclaimed tracks
		best := -1
		bestScore := tr.cfg.MinSimilarity

		for ti, t := range active {
			if claimed[ti] {
				continue
			}

			if s := pose.SimilarityWith(det, t.Pose, tr.cfg.Similarity); s > bestScore {
				best = ti
				bestScore = s
			}
		}

		// Step 3: matched, replace pose and timestamp together
		if best >= 0 {
			claimed[best] = true
			t := active[best]

			*t = Track{
				ID:          t.ID,
				Pose:        tr.smooth(t.ID, det),
				LastSeenAt:  now,
				FirstSeenAt: t.FirstSeenAt,
				Hits:        t.Hits + 1,
			}
			continue
		}

		// Step 5: at capacity, the body gets no identity this frame
		if liveCount >= tr.cfg.MaxPersons {
			tr.dropped++
			tr.log.WithFields(logrus.Fields{
				"detection":  i,
				"maxPersons": tr.cfg.MaxPersons,
			}).Debug("tracker at capacity, dropping detection")
			continue
		}

		// Step 4: new identity
		id := tr.idGen.GetNext()

		created = append(created, &Track{
			ID:          id,
			Pose:        tr.smooth(id, det),
			LastSeenAt:  now,
			FirstSeenAt: now,
			Hits:        1,
		})
		liveCount++
	}

	// new IDs are higher than every existing one so ordering is kept
	tr.tracks = append(tr.tracks, created...)

	// Step 6: sweep every track that has aged out
	tr.sweep(now)

	return tr.snapshot()
}

// sweep removes tracks not seen for MaxAge and forgets their filter state
func (tr *Tracker) sweep(now time.Time) {

	kept := tr.tracks[:0]

	for _, t := range tr.tracks {
		if t.Age(now) >= tr.cfg.MaxAge {
			if tr.smoother != nil {
				tr.smoother.Forget(t.ID)
			}
			tr.log.WithFields(logrus.Fields{
				"track": t.ID,
				"hits":  t.Hits,
			}).Debug("track removed")
			continue
		}
		kept = append(kept, t)
	}

	// clear the tail so removed tracks can be collected
	for i := len(kept); i < len(tr.tracks); i++ {
		tr.tracks[i] = nil
	}

	tr.tracks = kept
}

// smooth passes the detection through the smoother when one is set
func (tr *Tracker) smooth(id int, det pose.Pose) pose.Pose {
	if tr.smoother == nil {
		return det.Clone()
	}
	return tr.smoother.Apply(id, det.Clone())
}

// snapshot returns copies of the tracks in the registry
func (tr *Tracker) snapshot() []Track {
	out := make([]Track, 0, len(tr.tracks))
	for _, t := range tr.tracks {
		out = append(out, t.clone())
	}
	return out
}

// Tracks returns the tracks that are live at now, ordered by ID
func (tr *Tracker) Tracks(now time.Time) []Track {
	out := make([]Track, 0, len(tr.tracks))
	for _, t := range tr.tracks {
		if t.Age(now) < tr.cfg.MaxAge {
			out = append(out, t.clone())
		}
	}
	return out
}

// Get returns the track with the given ID if it is in the registry
func (tr *Tracker) Get(id int) (Track, bool) {
	for _, t := range tr.tracks {
		if t.ID == id {
			return t.clone(), true
		}
	}
	return Track{}, false
}

// State returns the lifecycle state of the track ID at now
func (tr *Tracker) State(id int, now time.Time) State {

	if t, ok := tr.Get(id); ok {
		if t.Age(now) < tr.cfg.MaxAge {
			return Live
		}
		return Stale
	}

	if id > 0 && id <= tr.idGen.Last() {
		return Removed
	}

	return Absent
}

// Len returns the number of tracks in the registry
func (tr *Tracker) Len() int {
	return len(tr.tracks)
}

// Dropped returns the number of detections dropped for capacity during the
// last Update
func (tr *Tracker) Dropped() int {
	return tr.dropped
}

// Reset clears the registry and all filter state.  IDs keep increasing after
// a reset
func (tr *Tracker) Reset() {
	tr.tracks = nil
	tr.dropped = 0

	if tr.smoother != nil {
		tr.smoother.Reset()
	}
}
