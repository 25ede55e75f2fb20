package preprocess

import (
	"math"

	"github.com/swdee/go-posetrack/pose"
)

// Letterbox maps keypoints from the normalized coordinate space of the pose
// model input tensor to screen pixels.  When the camera frame was letterbox
// resized to the model input the padding is removed before scaling
type Letterbox struct {
	// srcWidth is the width of the screen/camera frame
	srcWidth float64
	// srcHeight is the height of the screen/camera frame
	srcHeight float64
	// destWidth is the width of the model input tensor, zero when the model
	// input is a plain stretch of the frame
	destWidth float64
	// destHeight is the height of the model input tensor
	destHeight float64
	// letterbox parameters used in scaling
	xPad  float64
	yPad  float64
	scale float64
}

// NewLetterbox returns a transform for a frame of srcWidth x srcHeight that
// was letterbox resized to a model input of destWidth x destHeight.  If the
// model dimensions are not positive the frame is treated as stretched to the
// model input, so normalized coordinates scale directly to the frame size
func NewLetterbox(srcWidth, srcHeight, destWidth, destHeight float64) *Letterbox {
	l := &Letterbox{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		destWidth:  destWidth,
		destHeight: destHeight,
	}

	// precalculate scaling dimensions
	l.preCalc()

	return l
}

// preCalc the scaling factors and padding between frame and model input
func (l *Letterbox) preCalc() {

	if !positive(l.destWidth) || !positive(l.destHeight) || !l.Valid() {
		l.destWidth = 0
		l.destHeight = 0
		l.scale = 1
		return
	}

	resizeW := l.destWidth
	resizeH := l.destHeight

	scaleW := l.destWidth / l.srcWidth
	scaleH := l.destHeight / l.srcHeight
	l.scale = scaleH

	if scaleW < scaleH {
		l.scale = scaleW
		resizeH = math.Floor(l.srcHeight * l.scale)
	} else {
		resizeW = math.Floor(l.srcWidth * l.scale)
	}

	l.yPad = math.Floor((l.destHeight - resizeH) / 2)
	l.xPad = math.Floor((l.destWidth - resizeW) / 2)
}

// Valid returns true if the frame dimensions are positive finite numbers
func (l *Letterbox) Valid() bool {
	return positive(l.srcWidth) && positive(l.srcHeight)
}

// ScaleFactor returns the scale factor used in letterbox resize
func (l *Letterbox) ScaleFactor() float64 {
	return l.scale
}

// XPad returns the x padding used in letterbox resize
func (l *Letterbox) XPad() float64 {
	return l.xPad
}

// YPad returns the y padding used in letterbox resize
func (l *Letterbox) YPad() float64 {
	return l.yPad
}

// ToScreen returns a copy of p with every keypoint converted from normalized
// model coordinates to screen pixels.  Scores are left untouched.  If the
// frame dimensions are invalid p is returned unchanged
func (l *Letterbox) ToScreen(p pose.Pose) pose.Pose {

	if !l.Valid() {
		return p
	}

	out := make(pose.Pose, len(p))

	for i, kp := range p {
		out[i] = pose.Keypoint{
			X:     l.toScreenX(kp.X),
			Y:     l.toScreenY(kp.Y),
			Score: kp.Score,
		}
	}

	return out
}

func (l *Letterbox) toScreenX(x float64) float64 {
	if l.destWidth == 0 {
		return x * l.srcWidth
	}
	return (x*l.destWidth - l.xPad) / l.scale
}

func (l *Letterbox) toScreenY(y float64) float64 {
	if l.destHeight == 0 {
		return y * l.srcHeight
	}
	return (y*l.destHeight - l.yPad) / l.scale
}

// positive returns true for finite numbers above zero
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
