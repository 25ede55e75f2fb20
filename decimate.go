package posetrack

// Decimator admits every Nth frame of a feed, used to run the pipeline at a
// fraction of the camera frame rate
type Decimator struct {
	// Every is the admission interval, values below 2 admit every frame
	Every int
	// count of frames seen
	count int
}

// Admit returns true if the next frame should be processed.  The first frame
// is always admitted
func (d *Decimator) Admit() bool {

	d.count++

	if d.Every < 2 {
		return true
	}

	return (d.count-1)%d.Every == 0
}

// Reset restarts the admission count
func (d *Decimator) Reset() {
	d.count = 0
}
