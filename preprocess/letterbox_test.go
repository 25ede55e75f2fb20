package preprocess

import (
	"math"
	"testing"

	"github.com/swdee/go-posetrack/pose"
)

func TestLetterboxPadding(t *testing.T) {

	tests := []struct {
		srcWidth      float64
		srcHeight     float64
		resizeWidth   float64
		resizeHeight  float64
		expectedXPad  float64
		expectedYPad  float64
		expectedScale float64
	}{
		{1280, 720, 640, 640, 0, 140, 0.50},
		{800, 1000, 640, 640, 64, 0, 0.64},
		{800, 800, 640, 640, 0, 0, 0.8},
	}

	for _, tc := range tests {
		lb := NewLetterbox(tc.srcWidth, tc.srcHeight, tc.resizeWidth, tc.resizeHeight)

		if lb.XPad() != tc.expectedXPad || lb.YPad() != tc.expectedYPad {
			t.Errorf("Test failed for src (%v, %v): Padding values wrong, expected XPad=%v, YPad=%v, got xPad=%v, yPad=%v",
				tc.srcWidth, tc.srcHeight, tc.expectedXPad, tc.expectedYPad, lb.XPad(), lb.YPad())
		}

		if math.Abs(lb.ScaleFactor()-tc.expectedScale) > 1e-9 {
			t.Errorf("Test failed for src (%v, %v): Scalefactor incorrect, expected %f, got %f",
				tc.srcWidth, tc.srcHeight, tc.expectedScale, lb.ScaleFactor())
		}
	}
}

func TestLetterboxToScreen(t *testing.T) {

	// 1280x720 frame letterboxed into a 640x640 model input has 140px bars
	// top and bottom, so the model centre maps to the frame centre
	lb := NewLetterbox(1280, 720, 640, 640)

	p := pose.New()
	p[pose.Nose] = pose.Keypoint{X: 0.5, Y: 0.5, Score: 0.9}
	p[pose.LeftEye] = pose.Keypoint{X: 0, Y: 140.0 / 640.0, Score: 0.8}

	out := lb.ToScreen(p)

	if math.Abs(out[pose.Nose].X-640) > 1e-9 || math.Abs(out[pose.Nose].Y-360) > 1e-9 {
		t.Errorf("expected nose at (640,360), got (%v,%v)", out[pose.Nose].X, out[pose.Nose].Y)
	}

	if math.Abs(out[pose.LeftEye].Y) > 1e-9 {
		t.Errorf("expected top of image at y=0, got %v", out[pose.LeftEye].Y)
	}

	if out[pose.Nose].Score != 0.9 {
		t.Errorf("score should be untouched, got %v", out[pose.Nose].Score)
	}

	// the input must not be modified
	if p[pose.Nose].X != 0.5 {
		t.Errorf("input pose was modified")
	}
}

func TestLetterboxStretch(t *testing.T) {

	lb := NewLetterbox(400, 800, 0, 0)

	p := pose.New()
	p[pose.Nose] = pose.Keypoint{X: 0.25, Y: 0.5, Score: 1}

	out := lb.ToScreen(p)

	if out[pose.Nose].X != 100 || out[pose.Nose].Y != 400 {
		t.Errorf("expected (100,400), got (%v,%v)", out[pose.Nose].X, out[pose.Nose].Y)
	}
}

func TestLetterboxInvalidDimensions(t *testing.T) {

	p := pose.New()
	p[pose.Nose] = pose.Keypoint{X: 0.25, Y: 0.5, Score: 1}

	for _, dims := range [][2]float64{{0, 100}, {100, -1}, {math.NaN(), 100}, {math.Inf(1), 100}} {
		lb := NewLetterbox(dims[0], dims[1], 640, 640)

		if lb.Valid() {
			t.Errorf("dimensions %v should be invalid", dims)
		}

		out := lb.ToScreen(p)
		if out[pose.Nose] != p[pose.Nose] {
			t.Errorf("invalid dimensions %v should pass the pose through", dims)
		}
	}
}
