package tracker

import "sync"

// IDGenerator hands out incremental track IDs.  IDs are never reused for the
// lifetime of the generator, it may be shared between trackers so IDs stay
// unique across camera streams
type IDGenerator struct {
	id int
	sync.Mutex
}

// NewIDGenerator returns a generator whose first ID is 1
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GetNext returns the next incremental ID
func (g *IDGenerator) GetNext() int {
	g.Lock()
	defer g.Unlock()
	g.id++
	return g.id
}

// Last returns the most recently issued ID, or 0 if none has been issued
func (g *IDGenerator) Last() int {
	g.Lock()
	defer g.Unlock()
	return g.id
}
