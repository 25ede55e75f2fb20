package analysis

import (
	"strings"
)

// MaxFeedback is the number of feedback messages returned for a frame
const MaxFeedback = 4

const (
	// MsgNoLift is returned when the lift type is not recognised
	MsgNoLift = "No lift type selected"
	// MsgPosition is returned when landmarks a lift needs are not visible
	MsgPosition = "Position yourself so your full body is visible"
	// positionPenalty is deducted when required landmarks are missing
	positionPenalty = 50
	maxScore        = 100
)

// Lift is a supported lift type
type Lift string

const (
	Squat    Lift = "squat"
	Bench    Lift = "bench"
	Deadlift Lift = "deadlift"
)

// ParseLift returns the Lift named by s ignoring case and surrounding
// whitespace
func ParseLift(s string) (Lift, bool) {

	switch l := Lift(strings.ToLower(strings.TrimSpace(s))); l {
	case Squat, Bench, Deadlift:
		return l, true
	}

	return "", false
}

// Feedback is the per frame form-analysis payload
type Feedback struct {
	// QualityScore is 100 times the mean keypoint confidence
	QualityScore float64 `json:"qualityScore"`
	// LiftFeedback holds at most MaxFeedback messages, most recent last
	LiftFeedback []string `json:"liftFeedback"`
	// LiftScore is the form score in [0,100]
	LiftScore int `json:"liftScore"`
	// LiftType is the normalised lift name, empty when none was selected
	LiftType string `json:"liftType"`
}

// report accumulates messages and penalties while a lift is evaluated
type report struct {
	messages []string
	score    int
}

func newReport() *report {
	return &report{score: maxScore}
}

// add appends a message and deducts the penalty from the score
func (r *report) add(msg string, penalty int) {
	r.messages = append(r.messages, msg)
	r.score -= penalty
	if r.score < 0 {
		r.score = 0
	}
}

// clean returns true if no penalty has been applied
func (r *report) clean() bool {
	return r.score == maxScore
}

// feedback returns the most recent MaxFeedback messages
func (r *report) feedback() []string {

	msgs := r.messages

	if len(msgs) > MaxFeedback {
		msgs = msgs[len(msgs)-MaxFeedback:]
	}

	out := make([]string, len(msgs))
	copy(out, msgs)

	return out
}
