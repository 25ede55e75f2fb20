package analysis

import "math"

const (
	// referenceHeightCm is the height the fixed thresholds were tuned for
	referenceHeightCm = 170.0
	minHeightFactor   = 0.85
	maxHeightFactor   = 1.15
	// obeseBMI is the BMI above which torso lean tolerance is relaxed
	obeseBMI = 30.0
	// heavyLeanAllowance is the extra forward lean in degrees tolerated for
	// users above obeseBMI
	heavyLeanAllowance = 5.0
)

// Profile holds the optional user anthropometrics.  Zero, negative or non
// finite values mean unknown
type Profile struct {
	HeightCm float64 `json:"heightCm"`
	WeightKg float64 `json:"weightKg"`
}

// HasHeight returns true if a usable height is set
func (p Profile) HasHeight() bool {
	return usable(p.HeightCm)
}

// HasWeight returns true if a usable weight is set
func (p Profile) HasWeight() bool {
	return usable(p.WeightKg)
}

// heightFactor scales ratio thresholds for the user's height, 1 when the
// height is unknown
func (p Profile) heightFactor() float64 {

	if !p.HasHeight() {
		return 1
	}

	return math.Max(minHeightFactor, math.Min(maxHeightFactor, referenceHeightCm/p.HeightCm))
}

// BMI returns the body mass index, or 0 if height or weight is unknown
func (p Profile) BMI() float64 {

	if !p.HasHeight() || !p.HasWeight() {
		return 0
	}

	m := p.HeightCm / 100

	return p.WeightKg / (m * m)
}

// leanAllowance returns the extra torso lean in degrees tolerated for the user
func (p Profile) leanAllowance() float64 {
	if p.BMI() >= obeseBMI {
		return heavyLeanAllowance
	}
	return 0
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
