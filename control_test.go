package mix

import (
	"math"
	"sync"
	"testing"
)

func TestControlClamp(t *testing.T) {
	c := NewControl(0.5)
	if v := c.Level(); v != 0.5 {
		t.Error("invalid initial level:", v)
	}

	c.Set(2)
	if v := c.Level(); v != 1 {
		t.Error("level not clamped to 1:", v)
	}
	c.Set(-3)
	if v := c.Level(); v != 0 {
		t.Error("level not clamped to 0:", v)
	}
	c.Set(float32(math.NaN()))
	if v := c.Level(); v != 0 {
		t.Error("NaN not rejected:", v)
	}
}

// TestControlHandoff hammers the control from a writer goroutine while the
// reader samples it. Run with -race: the rendezvous must be lock-free and
// every observed value complete and in range.
func TestControlHandoff(t *testing.T) {
	c := NewControl(0)
	const writes = 10000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i <= writes; i++ {
			c.Set(float32(i) / writes)
		}
	}()

	prev := float32(-1)
	for i := 0; i < writes; i++ {
		v := c.Level()
		if v < 0 || v > 1 {
			t.Fatal("torn or out-of-range read:", v)
		}
		// Single monotone writer: reads may repeat but never go back.
		if v < prev {
			t.Fatal("level went backwards:", prev, "->", v)
		}
		prev = v
	}
	wg.Wait()

	if v := c.Level(); v != 1 {
		t.Error("reader must see the final published value, got", v)
	}
}
