package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/swdee/go-posetrack/pose"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestMidpoint(t *testing.T) {

	p := pose.New()
	p[pose.LeftHip] = pose.Keypoint{X: 0, Y: 0, Score: 0.9}
	p[pose.RightHip] = pose.Keypoint{X: 10, Y: 0, Score: 0.3}

	lm, ok := Midpoint(p, pose.LeftHip, pose.RightHip)
	assert.True(t, ok)
	assert.InDelta(t, 2.5, lm.Pos.X, 1e-9)
	assert.InDelta(t, 0.6, lm.Score, 1e-9)

	p[pose.RightHip].Score = 0.1
	lm, ok = Midpoint(p, pose.LeftHip, pose.RightHip)
	assert.True(t, ok)
	assert.Equal(t, r2.Vec{}, lm.Pos)

	p[pose.LeftHip].Score = 0.2
	_, ok = Midpoint(p, pose.LeftHip, pose.RightHip)
	assert.False(t, ok)

	_, ok = Midpoint(pose.Pose{}, pose.LeftHip, pose.RightHip)
	assert.False(t, ok)
}

func TestAngle(t *testing.T) {

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	tests := []struct {
		name    string
		a, b, c r2.Vec
		want    float64
		ok      bool
	}{
		{"right", r2.Vec{X: 1}, r2.Vec{}, r2.Vec{Y: 1}, 90, true},
		{"straight", r2.Vec{X: -5}, r2.Vec{}, r2.Vec{X: 5}, 180, true},
		{"folded", r2.Vec{X: 5}, r2.Vec{}, r2.Vec{X: 7}, 0, true},
		{
			"wraps past 180",
			r2.Vec{X: 10 * math.Cos(rad(170)), Y: 10 * math.Sin(rad(170))},
			r2.Vec{},
			r2.Vec{X: 10 * math.Cos(rad(-170)), Y: 10 * math.Sin(rad(-170))},
			20, true,
		},
		{"short arm", r2.Vec{X: 0.5}, r2.Vec{}, r2.Vec{Y: 5}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Angle(tt.a, tt.b, tt.c)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestLean(t *testing.T) {

	lean, ok := Lean(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 0, Y: 100})
	assert.True(t, ok)
	assert.InDelta(t, 0, lean, 1e-9)

	lean, ok = Lean(r2.Vec{X: 100, Y: 0}, r2.Vec{X: 0, Y: 100})
	assert.True(t, ok)
	assert.InDelta(t, 45, lean, 1e-9)

	_, ok = Lean(r2.Vec{}, r2.Vec{})
	assert.False(t, ok)
}

func TestProfile(t *testing.T) {

	tests := []struct {
		name   string
		p      Profile
		factor float64
		bmi    float64
	}{
		{"unknown", Profile{}, 1, 0},
		{"reference", Profile{HeightCm: 170, WeightKg: 0}, 1, 0},
		{"short", Profile{HeightCm: 100}, maxHeightFactor, 0},
		{"tall", Profile{HeightCm: 250}, minHeightFactor, 0},
		{"not a number", Profile{HeightCm: math.NaN(), WeightKg: 80}, 1, 0},
		{"negative", Profile{HeightCm: -170, WeightKg: 80}, 1, 0},
		{"bmi", Profile{HeightCm: 200, WeightKg: 100}, 0.85, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.factor, tt.p.heightFactor(), 1e-9)
			assert.InDelta(t, tt.bmi, tt.p.BMI(), 1e-9)
		})
	}
}
