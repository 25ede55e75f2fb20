package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-posetrack/pose"
)

const (
	screenWidth  = 640.0
	screenHeight = 480.0
)

// uniformPose returns a pose with every keypoint at x, y
func uniformPose(x, y, score float64) pose.Pose {
	p := pose.New()
	for i := range p {
		p[i] = pose.Keypoint{X: x, Y: y, Score: score}
	}
	return p
}

func TestOneEuroFirstSamplePassesThrough(t *testing.T) {

	f := NewOneEuro(DefaultOneEuroParams())
	raw := uniformPose(100, 200, 0.9)

	out := f.Smooth(raw, screenWidth, screenHeight)
	assert.Equal(t, raw, out)

	slot, ok := f.Slot(pose.LeftHip)
	require.True(t, ok)
	assert.Equal(t, 100.0, slot.X)
	assert.Equal(t, 0.0, slot.DX)
}

func TestOneEuroDeadZoneHoldsCachedValue(t *testing.T) {

	f := NewOneEuro(DefaultOneEuroParams())
	f.Smooth(uniformPose(100, 200, 0.9), screenWidth, screenHeight)

	// 1% of 640 is 6.4px, move less than that
	out := f.Smooth(uniformPose(103, 204, 0.95), screenWidth, screenHeight)

	for _, kp := range out {
		assert.Equal(t, pose.Keypoint{X: 100, Y: 200, Score: 0.9}, kp)
	}
}

func TestOneEuroDeadZoneNeedsConfidence(t *testing.T) {

	f := NewOneEuro(DefaultOneEuroParams())
	f.Smooth(uniformPose(100, 200, 0.9), screenWidth, screenHeight)

	out := f.Smooth(uniformPose(103, 200, 0.1), screenWidth, screenHeight)

	assert.Greater(t, out[pose.Nose].X, 100.0)
	assert.Less(t, out[pose.Nose].X, 103.0)
}

func TestOneEuroLagsBehindLargeMoves(t *testing.T) {

	f := NewOneEuro(DefaultOneEuroParams())
	f.Smooth(uniformPose(100, 100, 0.9), screenWidth, screenHeight)

	out := f.Smooth(uniformPose(200, 100, 0.9), screenWidth, screenHeight)

	assert.Greater(t, out[pose.Nose].X, 100.0)
	assert.Less(t, out[pose.Nose].X, 200.0)
	assert.InDelta(t, 100.0, out[pose.Nose].Y, 1e-9)
}

func TestOneEuroFasterMotionLessLag(t *testing.T) {

	fraction := func(jump float64) float64 {
		f := NewOneEuro(DefaultOneEuroParams())
		f.Smooth(uniformPose(0, 0, 0.9), screenWidth, screenHeight)
		out := f.Smooth(uniformPose(jump, 0, 0.9), screenWidth, screenHeight)
		return out[pose.Nose].X / jump
	}

	slow := fraction(20)
	fast := fraction(200)

	assert.Greater(t, fast, slow)
}

func TestOneEuroScoreMovingAverage(t *testing.T) {

	f := NewOneEuro(DefaultOneEuroParams())
	f.Smooth(uniformPose(0, 0, 1.0), screenWidth, screenHeight)

	out := f.Smooth(uniformPose(100, 0, 0.5), screenWidth, screenHeight)

	assert.InDelta(t, 0.7*0.5+0.3*1.0, out[pose.Nose].Score, 1e-12)
}

func TestOneEuroSuppressesJitter(t *testing.T) {

	f := NewOneEuro(DefaultOneEuroParams())

	// dead zone at width 100 is 1px, so the 5px jitter is filtered
	const width = 100.0

	minX, maxX := math.Inf(1), math.Inf(-1)

	for frame := 0; frame < 60; frame++ {
		x := 300.0 + 5
		if frame%2 == 1 {
			x = 300.0 - 5
		}

		out := f.Smooth(uniformPose(x, 50, 0.9), width, screenHeight)

		if frame < 20 {
			continue
		}

		minX = math.Min(minX, out[pose.Nose].X)
		maxX = math.Max(maxX, out[pose.Nose].X)
	}

	assert.Less(t, maxX-minX, 5.0)
}

func TestOneEuroPassthrough(t *testing.T) {

	f := NewOneEuro(DefaultOneEuroParams())

	short := uniformPose(1, 2, 0.9)[:10]
	assert.Equal(t, short, f.Smooth(short, screenWidth, screenHeight))

	raw := uniformPose(1, 2, 0.9)

	for _, dims := range [][2]float64{{0, 480}, {640, -1}, {math.NaN(), 480}, {640, math.Inf(1)}} {
		assert.Equal(t, raw, f.Smooth(raw, dims[0], dims[1]))
	}

	_, ok := f.Slot(pose.Nose)
	assert.False(t, ok, "passthrough must not touch filter state")
}

func TestOneEuroNonFiniteSampleKeepsState(t *testing.T) {

	f := NewOneEuro(DefaultOneEuroParams())
	f.Smooth(uniformPose(100, 100, 0.9), screenWidth, screenHeight)

	bad := uniformPose(100, 100, 0.9)
	bad[pose.LeftKnee].X = math.NaN()

	out := f.Smooth(bad, screenWidth, screenHeight)

	assert.Equal(t, 100.0, out[pose.LeftKnee].X)
	slot, _ := f.Slot(pose.LeftKnee)
	assert.False(t, math.IsNaN(slot.X))
}

func TestOneEuroReset(t *testing.T) {

	f := NewOneEuro(DefaultOneEuroParams())
	f.Smooth(uniformPose(100, 100, 0.9), screenWidth, screenHeight)
	f.Reset()

	_, ok := f.Slot(pose.Nose)
	assert.False(t, ok)

	raw := uniformPose(400, 400, 0.9)
	assert.Equal(t, raw, f.Smooth(raw, screenWidth, screenHeight))
}

func TestNewOneEuroFillsInvalidParams(t *testing.T) {

	f := NewOneEuro(OneEuroParams{})
	def := DefaultOneEuroParams()

	assert.Equal(t, def.FrameInterval, f.Params().FrameInterval)
	assert.Equal(t, def.MinCutoff, f.Params().MinCutoff)
	assert.Equal(t, def.ScoreWeight, f.Params().ScoreWeight)
}
