package mix

import (
	"errors"
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"golang.org/x/sync/errgroup"
)

// Default trimming parameters. See TrimConfig.
const (
	DefaultTrimThreshold = 0.001 // about -60 dBFS
	DefaultTrimMinRun    = 20 * time.Millisecond
)

// TrimConfig controls silence trimming during piece preparation.
type TrimConfig struct {
	// Threshold is the amplitude below which a sample counts as silence.
	// Zero means DefaultTrimThreshold.
	Threshold float32
	// MinRun is the shortest silent run that gets trimmed. Shorter quiet
	// passages at the edges are kept, so a deliberately soft intro is not
	// eaten. Zero means DefaultTrimMinRun.
	MinRun time.Duration
	// Head and Tail, when positive, trim fixed durations from the edges
	// instead of scanning for silence. The Solar Rift OST ships with known
	// per-area silence paddings, so its manifests set these explicitly.
	Head, Tail time.Duration
}

func (c TrimConfig) threshold() float32 {
	if c.Threshold == 0 {
		return DefaultTrimThreshold
	}
	return c.Threshold
}

func (c TrimConfig) minRun(rate Tz) Tz {
	if c.MinRun == 0 {
		return DurationToTz(DefaultTrimMinRun, rate)
	}
	return DurationToTz(c.MinRun, rate)
}

// RawLayer is one decoded but unprepared stem handed to PreparePiece.
type RawLayer struct {
	Name string
	Clip Clip
	// Gain is the author-specified base loudness. Zero means 1.
	Gain float32
	// Pan is the stereo position in [-1, 1].
	Pan float32
	// Curve is the danger-level activation curve.
	Curve Curve
}

// PreparePiece trims silence from every raw layer, aligns them to one common
// loop length and returns an immutable Piece. Layers are scanned concurrently;
// the first preparation error aborts the whole piece, so a Piece is never
// partially usable.
//
// Trimming is idempotent: preparing an already-trimmed clip again removes
// nothing further.
func PreparePiece(name string, raw []RawLayer, trim TrimConfig) (*Piece, error) {
	if len(raw) == 0 {
		return nil, errors.New("piece has no layers")
	}

	rate := raw[0].Clip.Rate
	channels := raw[0].Clip.NumChannels()
	for _, r := range raw {
		if r.Clip.Rate != rate {
			return nil, fmt.Errorf("layer %q: sample rate %d differs from %d", r.Name, r.Clip.Rate, rate)
		}
		if r.Clip.NumChannels() != channels {
			return nil, fmt.Errorf("layer %q: channel count %d differs from %d", r.Name, r.Clip.NumChannels(), channels)
		}
	}
	if rate <= 0 {
		return nil, errors.New("invalid sample rate")
	}
	if channels < 1 || channels > 2 {
		return nil, errors.New("only mono and stereo layers are supported")
	}

	bounds := make([][2]Tz, len(raw))
	var g errgroup.Group
	for i, r := range raw {
		i, r := i, r
		g.Go(func() error {
			from, to := trimBounds(r.Clip, trim, rate)
			if to <= from {
				return fmt.Errorf("layer %q: empty after silence trimming", r.Name)
			}
			bounds[i] = [2]Tz{from, to}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Layers of one piece may carry slightly different recorded silence.
	// Anchor every layer at its trimmed onset and cut tails down to the
	// shortest layer; never stretch or resample.
	common := bounds[0][1] - bounds[0][0]
	for _, b := range bounds[1:] {
		if n := b[1] - b[0]; n < common {
			common = n
		}
	}

	p := &Piece{
		name:     name,
		layers:   make([]*Layer, len(raw)),
		length:   common,
		rate:     rate,
		channels: channels,
	}
	for i, r := range raw {
		base := r.Gain
		if base == 0 {
			base = 1
		}
		p.layers[i] = &Layer{
			name:  r.Name,
			clip:  r.Clip.slice(bounds[i][0], bounds[i][0]+common),
			base:  base,
			pan:   r.Pan,
			curve: r.Curve,
		}
	}
	return p, nil
}

// trimBounds returns the [from, to) region of c that survives trimming.
func trimBounds(c Clip, trim TrimConfig, rate Tz) (from, to Tz) {
	length := c.Length()
	if trim.Head > 0 || trim.Tail > 0 {
		from = DurationToTz(trim.Head, rate)
		to = length - DurationToTz(trim.Tail, rate)
		if from > length {
			from = length
		}
		if to < from {
			to = from
		}
		return from, to
	}

	threshold := trim.threshold()
	minRun := trim.minRun(rate)

	head := Tz(0)
	for head < length && frameMagnitude(c, head) < threshold {
		head++
	}
	tail := length
	for tail > head && frameMagnitude(c, tail-1) < threshold {
		tail--
	}

	from, to = 0, length
	if head >= minRun {
		from = head
	}
	if length-tail >= minRun {
		to = tail
	}
	return from, to
}

// frameMagnitude returns the largest absolute sample value across channels at
// frame i.
func frameMagnitude(c Clip, i Tz) float32 {
	var m float32
	for _, ch := range c.Data {
		if v := math32.Abs(ch[i]); v > m {
			m = v
		}
	}
	return m
}
