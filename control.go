package mix

import (
	"math"
	"sync/atomic"
)

// Control publishes the latest danger level from a UI goroutine to the audio
// goroutine. A single float32 is stored atomically, so the reader always sees
// a complete, most-recent value and neither side can block the other. Only
// the latest value matters; the engine smooths transitions itself.
type Control struct {
	bits atomic.Uint32
}

// NewControl returns a Control publishing the given initial danger level.
func NewControl(level float32) *Control {
	c := &Control{}
	c.Set(level)
	return c
}

// Set publishes a new danger level. Values outside [0, 1] are clamped.
// Safe to call at arbitrary rate from one goroutine.
func (c *Control) Set(level float32) {
	if level < 0 || level != level {
		level = 0
	} else if level > 1 {
		level = 1
	}
	c.bits.Store(math.Float32bits(level))
}

// Level returns the most recently published danger level.
func (c *Control) Level() float32 {
	return math.Float32frombits(c.bits.Load())
}
