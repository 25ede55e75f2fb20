package analysis

import (
	"math"

	"github.com/swdee/go-posetrack/pose"
)

// squat thresholds, ratios are fractions of torso length
const (
	squatShallow    = 0.45
	squatNear       = 0.15
	squatTightKnee  = 45.0
	squatLeanFault  = 50.0
	squatLeanWarn   = 35.0
	squatKneeTravel = 0.45
	squatKneeCave   = 0.7
	// frontalStance is the ankle spread, as a fraction of torso length, from
	// which the camera is treated as facing the lifter
	frontalStance = 0.25
)

func analyzeSquat(p pose.Pose, profile Profile, r *report) {

	pts, ok := resolve(p, shoulders, hips, knees, ankles)

	if !ok {
		r.add(MsgPosition, positionPenalty)
		return
	}

	s, h, k, a := pts[0], pts[1], pts[2], pts[3]
	torso := distance(s, h)

	if torso < minSegment {
		r.add(MsgPosition, positionPenalty)
		return
	}

	hf := profile.heightFactor()

	// image y grows downward so a positive depth means hips above knees
	depth := (k.Y - h.Y) / torso

	switch {
	case depth > squatShallow*hf:
		r.add("Squat deeper, your hips are well above your knees", 20)
	case depth > squatNear*hf:
		r.add("Almost there, sink until your hips reach knee level", 10)
	default:
		r.add("Good depth", 0)
	}

	if angle, ok := Angle(h, k, a); ok && angle < squatTightKnee {
		r.add("Control the bottom, don't bounce out of the hole", 5)
	}

	if lean, ok := Lean(s, h); ok {
		allow := profile.leanAllowance()

		switch {
		case lean > squatLeanFault+allow:
			r.add("Keep your chest up, your torso is leaning too far forward", 15)
		case lean > squatLeanWarn+allow:
			r.add("Slight forward lean, brace your core", 5)
		}
	}

	if math.Abs(k.X-a.X)/torso > squatKneeTravel*hf {
		r.add("Your knees are travelling far past your toes", 10)
	}

	lk, rk, kok := pair(p, pose.LeftKnee, pose.RightKnee)
	la, ra, aok := pair(p, pose.LeftAnkle, pose.RightAnkle)

	if kok && aok {
		stance := math.Abs(la.X - ra.X)

		if stance >= frontalStance*torso && math.Abs(lk.X-rk.X) < squatKneeCave*stance {
			r.add("Push your knees out, they are caving in", 15)
		}
	}
}

// bench thresholds, ratios are fractions of forearm or shoulder width
const (
	benchLockout   = 160.0
	benchDeepElbow = 60.0
	benchStack     = 0.35
	benchUneven    = 0.15
	benchFlare     = 1.6
)

func analyzeBench(p pose.Pose, profile Profile, r *report) {

	pts, ok := resolve(p, shoulders, elbows, wrists)

	if !ok {
		r.add(MsgPosition, positionPenalty)
		return
	}

	s, e, w := pts[0], pts[1], pts[2]
	forearm := distance(e, w)

	if distance(s, e) < minSegment || forearm < minSegment {
		r.add(MsgPosition, positionPenalty)
		return
	}

	hf := profile.heightFactor()

	if angle, ok := Angle(s, e, w); ok {
		switch {
		case angle >= benchLockout:
			r.add("Strong lockout", 0)
		case angle < benchDeepElbow:
			r.add("Touch your chest lightly, don't bounce the bar", 5)
		}
	}

	if math.Abs(w.X-e.X) > benchStack*hf*forearm {
		r.add("Stack your wrists directly over your elbows", 10)
	}

	ls, rs, ok := pair(p, pose.LeftShoulder, pose.RightShoulder)

	if !ok {
		return
	}

	width := distance(ls.Vec(), rs.Vec())

	if width < minSegment {
		return
	}

	if lw, rw, ok := pair(p, pose.LeftWrist, pose.RightWrist); ok && math.Abs(lw.Y-rw.Y) > benchUneven*hf*width {
		r.add("The bar is uneven, press both sides together", 15)
	}

	if le, re, ok := pair(p, pose.LeftElbow, pose.RightElbow); ok && math.Abs(le.X-re.X) > benchFlare*width {
		r.add("Tuck your elbows, they are flaring out", 10)
	}
}

// deadlift thresholds, ratios are fractions of torso length
const (
	deadliftLockout   = 165.0
	deadliftBarPath   = 0.3
	deadliftHipsLow   = 0.05
	deadliftLeanFault = 70.0
)

func analyzeDeadlift(p pose.Pose, profile Profile, r *report) {

	pts, ok := resolve(p, shoulders, hips, knees, ankles, wrists)

	if !ok {
		r.add(MsgPosition, positionPenalty)
		return
	}

	s, h, k, a, w := pts[0], pts[1], pts[2], pts[3], pts[4]
	torso := distance(s, h)

	if torso < minSegment {
		r.add(MsgPosition, positionPenalty)
		return
	}

	hf := profile.heightFactor()

	if angle, ok := Angle(s, h, k); ok && angle >= deadliftLockout {
		r.add("Full lockout, squeeze your glutes", 0)
	}

	if math.Abs(w.X-a.X)/torso > deadliftBarPath*hf {
		r.add("Keep the bar close to your legs", 15)
	}

	if (h.Y-k.Y)/torso > deadliftHipsLow*hf {
		r.add("Your hips are too low, don't squat the weight up", 15)
	}

	if lean, ok := Lean(s, h); ok && lean > deadliftLeanFault+profile.leanAllowance() {
		r.add("Keep your back flat, your torso is nearly horizontal", 20)
	}
}
