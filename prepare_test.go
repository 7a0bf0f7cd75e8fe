package mix

import (
	"testing"
	"time"
)

const testRate = 1000

// testClip builds a mono clip: head leading zeros, body samples at amp,
// tail trailing zeros.
func testClip(head, body, tail int, amp float32) Clip {
	data := NewBuffer(Tz(head + body + tail))
	for i := head; i < head+body; i++ {
		data[i] = amp
	}
	return Clip{Rate: testRate, Data: []Buffer{data}}
}

var testTrim = TrimConfig{Threshold: 0.01, MinRun: 10 * time.Millisecond}

func TestTrimSilence(t *testing.T) {
	// 10ms MinRun at 1kHz is 10 samples.
	p, err := PreparePiece("p", []RawLayer{
		{Name: "a", Clip: testClip(30, 100, 20, 0.5)},
	}, testTrim)
	if err != nil {
		t.Fatal("prepare failed:", err)
	}
	if p.Length() != 100 {
		t.Error("invalid loop length after trimming:", p.Length())
	}
	if v := p.Layers()[0].Loop(0, 0, 1)[0]; v != 0.5 {
		t.Error("loop does not start at first loud sample:", v)
	}
	if v := p.Layers()[0].Loop(0, 99, 1)[0]; v != 0.5 {
		t.Error("loop does not end at last loud sample:", v)
	}
}

func TestTrimKeepsShortQuietEdges(t *testing.T) {
	// Quiet runs shorter than MinRun are genuine material, not padding.
	p, err := PreparePiece("p", []RawLayer{
		{Name: "a", Clip: testClip(5, 100, 3, 0.5)},
	}, testTrim)
	if err != nil {
		t.Fatal("prepare failed:", err)
	}
	if p.Length() != 108 {
		t.Error("short quiet edges were trimmed, length:", p.Length())
	}
}

func TestTrimIdempotent(t *testing.T) {
	p1, err := PreparePiece("p", []RawLayer{
		{Name: "a", Clip: testClip(30, 100, 20, 0.5)},
	}, testTrim)
	if err != nil {
		t.Fatal("prepare failed:", err)
	}

	again := p1.Layers()[0].clip
	p2, err := PreparePiece("p", []RawLayer{{Name: "a", Clip: again}}, testTrim)
	if err != nil {
		t.Fatal("second prepare failed:", err)
	}
	if p2.Length() != p1.Length() {
		t.Errorf("trimming is not idempotent: %v then %v", p1.Length(), p2.Length())
	}
	a := p1.Layers()[0].Loop(0, 0, p1.Length())
	b := p2.Layers()[0].Loop(0, 0, p2.Length())
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("re-trimmed buffer differs at", i)
		}
	}
}

func TestTrimExplicit(t *testing.T) {
	trim := TrimConfig{Head: 20 * time.Millisecond, Tail: 10 * time.Millisecond}
	p, err := PreparePiece("p", []RawLayer{
		{Name: "a", Clip: testClip(0, 150, 0, 0.5)},
	}, trim)
	if err != nil {
		t.Fatal("prepare failed:", err)
	}
	if p.Length() != 120 {
		t.Error("explicit trim produced length", p.Length())
	}
}

func TestAlignToShortestLayer(t *testing.T) {
	p, err := PreparePiece("p", []RawLayer{
		{Name: "a", Clip: testClip(30, 100, 20, 0.5)},
		{Name: "b", Clip: testClip(25, 97, 28, 0.5)},
	}, testTrim)
	if err != nil {
		t.Fatal("prepare failed:", err)
	}
	if p.Length() != 97 {
		t.Error("layers not aligned to shortest, length:", p.Length())
	}
	for _, l := range p.Layers() {
		if l.Length() != p.Length() {
			t.Error("layer", l.Name(), "length", l.Length(), "differs from piece", p.Length())
		}
	}
}

func TestPrepareErrors(t *testing.T) {
	if _, err := PreparePiece("p", nil, testTrim); err == nil {
		t.Error("expected error for piece without layers")
	}

	silent := testClip(120, 0, 0, 0)
	if _, err := PreparePiece("p", []RawLayer{{Name: "a", Clip: silent}}, testTrim); err == nil {
		t.Error("expected error for all-silent layer")
	}

	other := testClip(0, 100, 0, 0.5)
	other.Rate = 2 * testRate
	if _, err := PreparePiece("p", []RawLayer{
		{Name: "a", Clip: testClip(0, 100, 0, 0.5)},
		{Name: "b", Clip: other},
	}, testTrim); err == nil {
		t.Error("expected error for sample rate mismatch")
	}

	stereo := Clip{Rate: testRate, Data: []Buffer{NewBuffer(100), NewBuffer(100)}}
	stereo.Data[0][0] = 0.5
	stereo.Data[1][0] = 0.5
	if _, err := PreparePiece("p", []RawLayer{
		{Name: "a", Clip: testClip(0, 100, 0, 0.5)},
		{Name: "b", Clip: stereo},
	}, testTrim); err == nil {
		t.Error("expected error for channel count mismatch")
	}
}
