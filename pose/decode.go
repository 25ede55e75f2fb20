package pose

import (
	"math"

	"github.com/pkg/errors"
)

// ValuesPerKeypoint is the number of floats the pose model emits per
// keypoint in (y, x, score) order
const ValuesPerKeypoint = 3

// BodyBufferLength is the length of a single body output buffer
const BodyBufferLength = NumKeypoints * ValuesPerKeypoint

var (
	// ErrBufferLength is returned when a model output buffer does not hold
	// whole bodies of keypoint triples
	ErrBufferLength = errors.New("invalid keypoint buffer length")
	// ErrNonFinite is returned when a model output buffer holds NaN or Inf
	ErrNonFinite = errors.New("non-finite value in keypoint buffer")
	// ErrNegativeScore is returned when a keypoint score is below zero
	ErrNegativeScore = errors.New("negative keypoint score")
)

// FromModelOutput converts a single body model output buffer of 17 (y, x,
// score) triples into a Pose of (x, y, score) keypoints in normalized model
// space.  Scores above 1 are clamped, negative scores are rejected
func FromModelOutput(buf []float32) (Pose, error) {

	if len(buf) != BodyBufferLength {
		return nil, errors.Wrapf(ErrBufferLength, "got %d values, expected %d",
			len(buf), BodyBufferLength)
	}

	p := make(Pose, NumKeypoints)

	for i := 0; i < NumKeypoints; i++ {
		y := float64(buf[i*ValuesPerKeypoint+0])
		x := float64(buf[i*ValuesPerKeypoint+1])
		score := float64(buf[i*ValuesPerKeypoint+2])

		if !isFinite(x) || !isFinite(y) || !isFinite(score) {
			return nil, errors.Wrapf(ErrNonFinite, "keypoint %s", Index(i))
		}

		if score < 0 {
			return nil, errors.Wrapf(ErrNegativeScore, "keypoint %s score %f", Index(i), score)
		}

		p[i] = Keypoint{
			X:     x,
			Y:     y,
			Score: math.Min(1, score),
		}
	}

	return p, nil
}

// FromModelOutputs splits a flat buffer holding one or more bodies and
// decodes each of them with FromModelOutput
func FromModelOutputs(buf []float32) ([]Pose, error) {

	if len(buf)%BodyBufferLength != 0 {
		return nil, errors.Wrapf(ErrBufferLength, "got %d values, not a multiple of %d",
			len(buf), BodyBufferLength)
	}

	poses := make([]Pose, 0, len(buf)/BodyBufferLength)

	for off := 0; off < len(buf); off += BodyBufferLength {
		p, err := FromModelOutput(buf[off : off+BodyBufferLength])

		if err != nil {
			return nil, errors.Wrapf(err, "body %d", off/BodyBufferLength)
		}

		poses = append(poses, p)
	}

	return poses, nil
}
