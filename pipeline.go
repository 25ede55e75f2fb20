package posetrack

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/swdee/go-posetrack/analysis"
	"github.com/swdee/go-posetrack/filter"
	"github.com/swdee/go-posetrack/pose"
	"github.com/swdee/go-posetrack/preprocess"
	"github.com/swdee/go-posetrack/tracker"
	"gonum.org/v1/gonum/spatial/r2"
)

// Frame is the pose model output for one camera frame
type Frame struct {
	// Bodies holds one model output buffer per detected body, each
	// pose.BodyBufferLength floats in (y, x, score) order
	Bodies [][]float32
	// Width and Height are the screen dimensions of the camera frame
	Width  float64
	Height float64
	// Timestamp is the capture time, the current time is used if zero
	Timestamp time.Time
}

// Result is the output of processing a Frame
type Result struct {
	// Tracks are the live tracks ordered by ID
	Tracks []tracker.Track `json:"tracks"`
	// Focus is the ID of the analysed track, 0 when there is none
	Focus int `json:"focus"`
	// Feedback is the form analysis of the focus track
	Feedback analysis.Feedback `json:"feedback"`
	// Dropped is the number of detections dropped for tracker capacity
	Dropped int `json:"dropped"`
}

// Pipeline processes camera frames into tracked, smoothed and analysed
// poses.  Only one frame is processed at a time
type Pipeline struct {
	params Params
	// slot holds the single processing token
	slot chan struct{}
	// tracker of identities
	tracker *tracker.Tracker
	// bank of per track smoothers, nil when smoothing is disabled
	bank *filter.Bank
	// trail of body centre positions per track
	trail *tracker.Trail
	// session identifies the pipeline instance in logs
	session uuid.UUID
	log     logrus.FieldLogger

	// mu guards the session settings below
	mu      sync.Mutex
	lift    string
	profile analysis.Profile
	focus   int
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger, entries are tagged with the session ID
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithSessionID sets the session ID instead of generating a random one
func WithSessionID(id uuid.UUID) Option {
	return func(p *Pipeline) {
		p.session = id
	}
}

// New returns a pipeline configured by params
func New(params Params, opts ...Option) *Pipeline {

	p := &Pipeline{
		params:  params,
		slot:    make(chan struct{}, 1),
		session: uuid.New(),
		log:     logrus.StandardLogger(),
		lift:    params.Lift,
		profile: params.Profile,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.log = p.log.WithField("session", p.session.String())

	topts := []tracker.Option{tracker.WithLogger(p.log)}

	switch params.Smoothing {
	case SmoothNone:
	case SmoothKalman:
		p.bank = filter.NewKalmanBank(params.Kalman)
	default:
		p.bank = filter.NewOneEuroBank(params.OneEuro)
	}

	if p.bank != nil {
		topts = append(topts, tracker.WithSmoother(p.bank))
	}

	p.tracker = tracker.New(params.Tracker, topts...)
	p.trail = tracker.NewTrail(params.TrailSize)

	// make the token available
	p.release()

	p.log.WithFields(logrus.Fields{
		"smoothing":  params.Smoothing,
		"maxPersons": p.tracker.Config().MaxPersons,
		"maxAge":     p.tracker.Config().MaxAge,
	}).Debug("pipeline created")

	return p
}

// acquire blocks until the processing token is free or ctx is done
func (p *Pipeline) acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.slot:
		return nil
	}
}

// release returns the processing token
func (p *Pipeline) release() {
	select {
	case p.slot <- struct{}{}:
	default:
		// token already available
	}
}

// Process waits for any frame in flight to finish then processes f.  If ctx
// is done first its error is returned and no state is changed
func (p *Pipeline) Process(ctx context.Context, f Frame) (Result, error) {

	if err := p.acquire(ctx); err != nil {
		return Result{}, err
	}

	defer p.release()

	return p.process(f), nil
}

// TryProcess processes f unless another frame is in flight, in which case f
// is dropped and false returned
func (p *Pipeline) TryProcess(f Frame) (Result, bool) {

	select {
	case <-p.slot:
	default:
		p.log.Debug("pipeline busy, dropping frame")
		return Result{}, false
	}

	defer p.release()

	return p.process(f), true
}

// process runs all stages over the frame, the caller holds the token
func (p *Pipeline) process(f Frame) Result {

	if !validDimension(f.Width) || !validDimension(f.Height) {
		p.log.WithFields(logrus.Fields{
			"width":  f.Width,
			"height": f.Height,
		}).Debug("malformed frame dimensions, skipping frame")
		return Result{}
	}

	now := f.Timestamp
	if now.IsZero() {
		now = time.Now()
	}

	lb := preprocess.NewLetterbox(f.Width, f.Height, p.params.ModelWidth, p.params.ModelHeight)
	detections := make([]pose.Pose, 0, len(f.Bodies))

	for i, buf := range f.Bodies {
		raw, err := pose.FromModelOutput(buf)

		if err != nil {
			p.log.WithError(err).WithField("body", i).Debug("skipping malformed body")
			continue
		}

		detections = append(detections, lb.ToScreen(raw))
	}

	if p.bank != nil {
		p.bank.SetFrameSize(f.Width, f.Height)
	}

	tracks := p.tracker.Update(detections, now)

	// only tracks matched this frame have a new position
	for _, t := range tracks {
		if t.LastSeenAt.Equal(now) {
			p.trail.Add(t)
		}
	}
	p.trail.Retain(tracks)

	lift, profile, focus := p.settings()

	res := Result{
		Tracks:  tracks,
		Dropped: p.tracker.Dropped(),
	}

	if t, ok := selectFocus(tracks, focus); ok {
		res.Focus = t.ID
		res.Feedback = analysis.Analyze(t.Pose, profile, lift)
	}

	return res
}

// settings returns a consistent copy of the session settings
func (p *Pipeline) settings() (string, analysis.Profile, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lift, p.profile, p.focus
}

// selectFocus returns the track with ID focus if it is live, otherwise the
// track with the largest confident bounding box.  Ties go to the lowest ID
func selectFocus(tracks []tracker.Track, focus int) (tracker.Track, bool) {

	if focus > 0 {
		for _, t := range tracks {
			if t.ID == focus {
				return t, true
			}
		}
	}

	best := -1
	bestArea := -1.0

	for i, t := range tracks {
		box, ok := pose.BoundingBox(t.Pose, pose.KeypointThreshold)

		if !ok {
			continue
		}

		if a := box.Area(); a > bestArea {
			best = i
			bestArea = a
		}
	}

	if best < 0 {
		return tracker.Track{}, false
	}

	return tracks[best], true
}

// SetLift sets the lift type analysed in following frames
func (p *Pipeline) SetLift(lift string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lift = lift
}

// SetProfile sets the user profile used by the form analysis
func (p *Pipeline) SetProfile(profile analysis.Profile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile = profile
}

// SetFocus selects the track analysed in following frames, 0 selects the
// largest body automatically
func (p *Pipeline) SetFocus(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.focus = id
}

// Reset clears all tracks, smoother state and trails, used when the camera
// restarts.  It waits for any frame in flight to finish.  Track IDs keep
// increasing after a reset
func (p *Pipeline) Reset() {

	_ = p.acquire(context.Background())
	defer p.release()

	p.tracker.Reset()
	p.trail.Reset()

	p.mu.Lock()
	p.focus = 0
	p.mu.Unlock()

	p.log.Debug("pipeline reset")
}

// Trail returns the recent body centre positions of track id, oldest first
func (p *Pipeline) Trail(id int) []r2.Vec {
	return p.trail.Points(id)
}

// SessionID returns the ID tagging this pipeline's log entries
func (p *Pipeline) SessionID() uuid.UUID {
	return p.session
}

// validDimension returns true for finite screen dimensions above zero
func validDimension(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
