package filter

import (
	"math"

	"github.com/pkg/errors"
	"github.com/swdee/go-posetrack/pose"
	"gonum.org/v1/gonum/mat"
)

// KalmanParams defines the tuning of the constant velocity Kalman smoother
type KalmanParams struct {
	// FrameInterval is the time between processed frames in seconds
	FrameInterval float64 `json:"frame_interval"`
	// Acceleration is the standard deviation of the unmodelled keypoint
	// acceleration in pixels per second squared
	Acceleration float64 `json:"acceleration"`
	// MeasurementNoise is the standard deviation in pixels of a keypoint
	// detected with full confidence.  Lower scores inflate it
	MeasurementNoise float64 `json:"measurement_noise"`
	// ScoreWeight is the weight of the raw score in the score moving average
	ScoreWeight float64 `json:"score_weight"`
	// Threshold is the minimum score for a keypoint to be used as a
	// measurement, below it the slot only predicts
	Threshold float64 `json:"threshold"`
}

// DefaultKalmanParams returns parameters tuned for a 30 FPS camera feed
func DefaultKalmanParams() KalmanParams {
	return KalmanParams{
		FrameInterval:    1.0 / 30,
		Acceleration:     800,
		MeasurementNoise: 4,
		ScoreWeight:      0.7,
		Threshold:        pose.KeypointThreshold,
	}
}

// minMeasurementScore bounds the noise inflation for low confidence samples
const minMeasurementScore = 0.05

// kalmanSlot is the filter state of one keypoint, state vector is
// [x, y, vx, vy]
type kalmanSlot struct {
	mean  *mat.VecDense
	cov   *mat.Dense
	score float64
	set   bool
}

// Kalman smooths each keypoint with a constant velocity Kalman filter
type Kalman struct {
	params    KalmanParams
	motionMat *mat.Dense
	updateMat *mat.Dense
	motionCov *mat.Dense
	slots     [pose.NumKeypoints]kalmanSlot
}

// NewKalman returns a Kalman smoother with empty state
func NewKalman(params KalmanParams) *Kalman {

	def := DefaultKalmanParams()

	if !positive(params.FrameInterval) {
		params.FrameInterval = def.FrameInterval
	}
	if !positive(params.Acceleration) {
		params.Acceleration = def.Acceleration
	}
	if !positive(params.MeasurementNoise) {
		params.MeasurementNoise = def.MeasurementNoise
	}
	if params.ScoreWeight <= 0 || params.ScoreWeight > 1 {
		params.ScoreWeight = def.ScoreWeight
	}

	dt := params.FrameInterval

	// identity with dt coupling position to velocity
	motionMat := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		motionMat.Set(i, i, 1)
	}
	motionMat.Set(0, 2, dt)
	motionMat.Set(1, 3, dt)

	// we only observe position
	updateMat := mat.NewDense(2, 4, nil)
	updateMat.Set(0, 0, 1)
	updateMat.Set(1, 1, 1)

	// process noise from a random acceleration model
	posStd := params.Acceleration * dt * dt / 2
	velStd := params.Acceleration * dt
	motionCov := mat.NewDense(4, 4, nil)
	motionCov.Set(0, 0, posStd*posStd)
	motionCov.Set(1, 1, posStd*posStd)
	motionCov.Set(2, 2, velStd*velStd)
	motionCov.Set(3, 3, velStd*velStd)

	return &Kalman{
		params:    params,
		motionMat: motionMat,
		updateMat: updateMat,
		motionCov: motionCov,
	}
}

// Reset clears all slots
func (k *Kalman) Reset() {
	k.slots = [pose.NumKeypoints]kalmanSlot{}
}

// Smooth filters raw against the previous samples.  If raw is not a full
// pose or the screen dimensions are invalid it is returned unchanged
func (k *Kalman) Smooth(raw pose.Pose, width, height float64) pose.Pose {

	if passthrough(raw, width, height) {
		return raw
	}

	out := make(pose.Pose, len(raw))

	for i, kp := range raw {
		s := &k.slots[i]

		if !kp.Finite() {
			if s.set {
				out[i] = s.keypoint()
			}
			continue
		}

		if !s.set {
			k.initiate(s, kp)
			out[i] = kp
			continue
		}

		k.predict(s)

		if kp.Score >= k.params.Threshold {
			if err := k.update(s, kp); err != nil {
				// covariance degenerated, restart the slot from the sample
				k.initiate(s, kp)
			}
		}

		s.score = k.params.ScoreWeight*kp.Score + (1-k.params.ScoreWeight)*s.score
		out[i] = s.keypoint()
	}

	return out
}

func (s *kalmanSlot) keypoint() pose.Keypoint {
	return pose.Keypoint{
		X:     s.mean.AtVec(0),
		Y:     s.mean.AtVec(1),
		Score: s.score,
	}
}

// initiate sets the slot mean to the measurement with zero velocity
func (k *Kalman) initiate(s *kalmanSlot, kp pose.Keypoint) {

	s.mean = mat.NewVecDense(4, []float64{kp.X, kp.Y, 0, 0})

	posStd := 2 * k.params.MeasurementNoise
	velStd := 10 * k.params.MeasurementNoise / k.params.FrameInterval

	s.cov = mat.NewDense(4, 4, nil)
	s.cov.Set(0, 0, posStd*posStd)
	s.cov.Set(1, 1, posStd*posStd)
	s.cov.Set(2, 2, velStd*velStd)
	s.cov.Set(3, 3, velStd*velStd)

	s.score = kp.Score
	s.set = true
}

// predict advances the slot state by one frame interval
func (k *Kalman) predict(s *kalmanSlot) {

	var mean mat.VecDense
	mean.MulVec(k.motionMat, s.mean)
	s.mean = &mean

	var cov mat.Dense
	cov.Mul(k.motionMat, s.cov)
	cov.Mul(&cov, k.motionMat.T())
	cov.Add(&cov, k.motionCov)
	s.cov = &cov
}

// update corrects the slot state with the measured keypoint
func (k *Kalman) update(s *kalmanSlot, kp pose.Keypoint) error {

	// measurement noise grows as confidence drops
	std := k.params.MeasurementNoise / math.Max(kp.Score, minMeasurementScore)

	// project the state covariance to measurement space
	var temp mat.Dense
	temp.Mul(k.updateMat, s.cov)
	var projected mat.Dense
	projected.Mul(&temp, k.updateMat.T())

	projectedCov := mat.NewSymDense(2, nil)
	for i := 0; i < 2; i++ {
		for j := i; j < 2; j++ {
			projectedCov.SetSym(i, j, projected.At(i, j))
		}
		projectedCov.SetSym(i, i, projectedCov.At(i, i)+std*std)
	}

	chol := mat.Cholesky{}
	if ok := chol.Factorize(projectedCov); !ok {
		return errors.New("failed to factorize projected covariance")
	}

	// B = P Hᵀ, gain is solved transposed as S⁻¹ Bᵀ
	var b mat.Dense
	b.Mul(s.cov, k.updateMat.T())

	var kalmanGain mat.Dense
	if err := chol.SolveTo(&kalmanGain, b.T()); err != nil {
		return errors.Wrap(err, "failed to compute kalman gain")
	}

	innovation := mat.NewVecDense(2, []float64{
		kp.X - s.mean.AtVec(0),
		kp.Y - s.mean.AtVec(1),
	})

	var correction mat.VecDense
	correction.MulVec(kalmanGain.T(), innovation)

	var mean mat.VecDense
	mean.AddVec(s.mean, &correction)

	// P = P - Kᵀ S K
	var t1 mat.Dense
	t1.Mul(kalmanGain.T(), projectedCov)
	var t2 mat.Dense
	t2.Mul(&t1, &kalmanGain)

	var cov mat.Dense
	cov.Sub(s.cov, &t2)

	s.mean = &mean
	s.cov = &cov

	return nil
}
