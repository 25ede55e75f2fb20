package filter

import (
	"sort"

	"github.com/swdee/go-posetrack/pose"
)

// Bank holds one Smoother per tracked body keyed by track ID, so each
// identity keeps its own filter history
type Bank struct {
	// newSmoother creates the smoother for a track seen the first time
	newSmoother func() Smoother
	// smoothers by track ID
	smoothers map[int]Smoother
	// screen dimensions of the frame currently being processed
	width, height float64
}

// NewBank returns an empty Bank that creates smoothers with factory
func NewBank(factory func() Smoother) *Bank {
	return &Bank{
		newSmoother: factory,
		smoothers:   make(map[int]Smoother),
	}
}

// NewOneEuroBank returns a Bank of One-Euro filters
func NewOneEuroBank(params OneEuroParams) *Bank {
	return NewBank(func() Smoother {
		return NewOneEuro(params)
	})
}

// NewKalmanBank returns a Bank of Kalman smoothers
func NewKalmanBank(params KalmanParams) *Bank {
	return NewBank(func() Smoother {
		return NewKalman(params)
	})
}

// SetFrameSize sets the screen dimensions used by the following Apply calls
func (b *Bank) SetFrameSize(width, height float64) {
	b.width = width
	b.height = height
}

// Apply smooths raw with the smoother of track id, creating it if needed
func (b *Bank) Apply(id int, raw pose.Pose) pose.Pose {

	if passthrough(raw, b.width, b.height) {
		return raw
	}

	s, ok := b.smoothers[id]

	if !ok {
		s = b.newSmoother()
		b.smoothers[id] = s
	}

	return s.Smooth(raw, b.width, b.height)
}

// Forget drops the filter state of track id
func (b *Bank) Forget(id int) {
	delete(b.smoothers, id)
}

// Reset drops the filter state of all tracks
func (b *Bank) Reset() {
	b.smoothers = make(map[int]Smoother)
}

// Len returns the number of tracks with filter state
func (b *Bank) Len() int {
	return len(b.smoothers)
}

// IDs returns the track IDs with filter state in ascending order
func (b *Bank) IDs() []int {
	ids := make([]int, 0, len(b.smoothers))
	for id := range b.smoothers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
