// Package analysis scores lifting form from a single smoothed pose.
//
// Checks run as threshold ladders over virtual landmarks (midpoints of the
// bilateral joints) and joint angles.  Ratio thresholds are expressed as
// fractions of a body segment so they hold in any coordinate space, and are
// scaled by the user's height when it is known.
package analysis

import (
	"github.com/swdee/go-posetrack/pose"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

const msgGoodForm = "Good form, keep it up"

// joint names a bilateral pair of keypoints resolved to a single Midpoint
type joint struct {
	left, right pose.Index
}

var (
	shoulders = joint{pose.LeftShoulder, pose.RightShoulder}
	elbows    = joint{pose.LeftElbow, pose.RightElbow}
	wrists    = joint{pose.LeftWrist, pose.RightWrist}
	hips      = joint{pose.LeftHip, pose.RightHip}
	knees     = joint{pose.LeftKnee, pose.RightKnee}
	ankles    = joint{pose.LeftAnkle, pose.RightAnkle}
)

// resolve returns the midpoint position of every joint, or false if any of
// them is unavailable
func resolve(p pose.Pose, joints ...joint) ([]r2.Vec, bool) {

	out := make([]r2.Vec, len(joints))

	for i, j := range joints {
		lm, ok := Midpoint(p, j.left, j.right)
		if !ok {
			return nil, false
		}
		out[i] = lm.Pos
	}

	return out, true
}

// Analyze evaluates the pose against the checks for the named lift
func Analyze(p pose.Pose, profile Profile, lift string) Feedback {

	fb := Feedback{
		QualityScore: Quality(p),
	}

	l, ok := ParseLift(lift)

	if !ok {
		fb.LiftFeedback = []string{MsgNoLift}
		return fb
	}

	fb.LiftType = string(l)
	r := newReport()

	if !p.Valid() {
		r.add(MsgPosition, positionPenalty)
	} else {
		switch l {
		case Squat:
			analyzeSquat(p, profile, r)
		case Bench:
			analyzeBench(p, profile, r)
		case Deadlift:
			analyzeDeadlift(p, profile, r)
		}
	}

	if r.clean() {
		r.add(msgGoodForm, 0)
	}

	fb.LiftFeedback = r.feedback()
	fb.LiftScore = r.score

	return fb
}

// Quality returns 100 times the mean keypoint score, 0 for an invalid pose
func Quality(p pose.Pose) float64 {

	if !p.Valid() {
		return 0
	}

	scores := make([]float64, len(p))

	for i, kp := range p {
		if !kp.Finite() {
			continue
		}
		scores[i] = kp.Score
	}

	return 100 * stat.Mean(scores, nil)
}
