package pose

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// MinKeypoints is the minimum number of mutually confident keypoints two
	// poses must share before a similarity is reported
	MinKeypoints = 4
	// areaEpsilon keeps the normalization area above zero
	areaEpsilon = 1e-6
	// fallbackArea is used when no keypoint clears the threshold
	fallbackArea = 1.0
)

// Sigmas are the per keypoint fall-off constants from the COCO keypoint
// evaluation.  Extremities get more tolerance than the face
var Sigmas = [NumKeypoints]float64{
	0.026,        // nose
	0.025, 0.025, // eyes
	0.035, 0.035, // ears
	0.079, 0.079, // shoulders
	0.072, 0.072, // elbows
	0.062, 0.062, // wrists
	0.107, 0.107, // hips
	0.087, 0.087, // knees
	0.089, 0.089, // ankles
}

// SimilarityParams configures the Object Keypoint Similarity calculation
type SimilarityParams struct {
	// Threshold is the minimum keypoint score for a keypoint to take part
	Threshold float64 `json:"threshold"`
	// MinKeypoints is the number of keypoints both poses must have above
	// Threshold for a non zero result
	MinKeypoints int `json:"min_keypoints"`
	// Sigmas overrides the per keypoint fall-off constants when set, it must
	// then be the same length as the poses compared
	Sigmas []float64 `json:"sigmas,omitempty"`
}

// DefaultSimilarityParams returns the COCO based similarity parameters
func DefaultSimilarityParams() SimilarityParams {
	return SimilarityParams{
		Threshold:    KeypointThreshold,
		MinKeypoints: MinKeypoints,
	}
}

// KeypointArea returns the bounding box area of the confident keypoints of
// p plus a small epsilon.  If no keypoint is confident 1 is returned
func KeypointArea(p Pose) float64 {
	return keypointArea(p, KeypointThreshold)
}

func keypointArea(p Pose, threshold float64) float64 {

	box, ok := BoundingBox(p, threshold)

	if !ok {
		return fallbackArea
	}

	area := box.Area() + areaEpsilon

	switch {
	case math.IsInf(area, 1):
		// extent too large to square, keep the widest representable scale
		return math.MaxFloat64
	case !isFinite(area) || area <= 0:
		return fallbackArea
	}

	return area
}

// Similarity returns the Object Keypoint Similarity between poses a and b in
// the range [0,1].  Pose b is the reference pose used for scale.  Poses of
// different length, or sharing fewer than MinKeypoints confident keypoints,
// have a similarity of 0
func Similarity(a, b Pose) float64 {
	return SimilarityWith(a, b, DefaultSimilarityParams())
}

// SimilarityWith is Similarity using the given parameters
func SimilarityWith(a, b Pose, params SimilarityParams) float64 {

	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	sigmas := params.Sigmas

	if sigmas == nil {
		if len(a) > NumKeypoints {
			return 0
		}
		sigmas = Sigmas[:len(a)]
	}

	if len(sigmas) != len(a) {
		return 0
	}

	area := keypointArea(b, params.Threshold)

	var sum float64
	validCount := 0

	for i := range a {

		if a[i].Score < params.Threshold || b[i].Score < params.Threshold {
			continue
		}

		if !a[i].Finite() || !b[i].Finite() {
			continue
		}

		d2 := r2.Norm2(r2.Sub(a[i].Vec(), b[i].Vec()))
		k := 2 * sigmas[i]
		denom := 2 * (k * k * area)

		s := 0.0
		if denom > 0 {
			s = math.Exp(-d2 / denom)
		}

		if !isFinite(s) {
			s = 0
		}

		sum += s
		validCount++
	}

	if validCount < params.MinKeypoints || validCount == 0 {
		return 0
	}

	res := sum / float64(validCount)

	switch {
	case !isFinite(res), res < 0:
		return 0
	case res > 1:
		return 1
	}

	return res
}
