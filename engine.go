package mix

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// NumOutChannels is the number of output channels the engine produces.
// Mono layers are panned into the stereo field, stereo layers pass through.
const NumOutChannels = 2

const numChannels = NumOutChannels

// Default engine timing parameters. See Config.
const (
	DefaultRamp       = 30 * time.Millisecond
	DefaultSwitchFade = 100 * time.Millisecond
)

// Config holds engine parameters. The zero value of every field except
// SampleRate selects a documented default.
type Config struct {
	// SampleRate of the output stream in frames per second. Required.
	SampleRate Tz
	// Ramp is the time a layer gain takes to traverse the full 0..1 range
	// when the danger level jumps. Zero means DefaultRamp.
	Ramp time.Duration
	// SwitchFade is the time the active piece takes to fade out on a piece
	// switch. Zero means DefaultSwitchFade.
	SwitchFade time.Duration
	// MasterGain scales the summed output before limiting. The original
	// player capped all stems at 0.5. Zero means 1.
	MasterGain float32
}

type gainState struct {
	current, target float32
}

// switchRequest is the piece-change handoff from the control goroutine to the
// audio goroutine. A nil piece fades to silence.
type switchRequest struct {
	piece *Piece
}

// Engine blends the layers of the active Piece according to the danger level
// published on its Control.
//
// AddPiece, SetPiece, Silence, Selected and PieceNames may be called from any
// goroutine. Render and ReadInterleaved must be driven by a single goroutine
// (normally the audio sink callback); they never block, never fail, and
// always produce a full block, falling back to silence when no piece is
// active.
type Engine struct {
	rate       Tz
	master     float32
	rampFrames Tz
	fadeFrames Tz
	control    *Control

	mu       sync.Mutex
	pieces   map[string]*Piece
	selected string

	pending atomic.Pointer[switchRequest]

	// Owned by the audio goroutine.
	cur     *Piece
	next    *Piece
	fading  bool
	cursor  Tz
	gains   []gainState
	buffer  []Buffer
	scratch Buffer
}

// NewEngine creates an Engine reading danger levels from control. A nil
// control gets a fresh one at level 0.
func NewEngine(cfg Config, control *Control) (*Engine, error) {
	if cfg.SampleRate <= 0 {
		return nil, errors.New("invalid sample rate")
	}
	if control == nil {
		control = NewControl(0)
	}
	ramp := cfg.Ramp
	if ramp == 0 {
		ramp = DefaultRamp
	}
	fade := cfg.SwitchFade
	if fade == 0 {
		fade = DefaultSwitchFade
	}
	master := cfg.MasterGain
	if master == 0 {
		master = 1
	}
	return &Engine{
		rate:       cfg.SampleRate,
		master:     master,
		rampFrames: DurationToTz(ramp, cfg.SampleRate),
		fadeFrames: DurationToTz(fade, cfg.SampleRate),
		control:    control,
		pieces:     make(map[string]*Piece),
	}, nil
}

// Control returns the danger-level control feeding the engine.
func (e *Engine) Control() *Control {
	return e.control
}

// SampleRate returns the engine output sample rate.
func (e *Engine) SampleRate() Tz {
	return e.rate
}

// NumChannels returns the number of output channels.
func (e *Engine) NumChannels() int {
	return numChannels
}

// AddPiece registers a prepared piece under its name. The piece must match
// the engine sample rate.
func (e *Engine) AddPiece(p *Piece) error {
	if p == nil {
		return errors.New("nil piece")
	}
	if p.rate != e.rate {
		return fmt.Errorf("piece %q: sample rate %d differs from engine %d", p.name, p.rate, e.rate)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, dup := e.pieces[p.name]; dup {
		return fmt.Errorf("piece %q already added", p.name)
	}
	e.pieces[p.name] = p
	return nil
}

// SetPiece requests a switch to the named piece. The current piece fades out
// over the configured switch fade, then the new one starts at cursor 0 with
// gains ramping in from silence. Requesting an unknown piece is an error and
// leaves the engine on whatever it was playing.
func (e *Engine) SetPiece(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.pieces[name]
	if !ok {
		return fmt.Errorf("unknown piece %q", name)
	}
	e.selected = name
	e.pending.Store(&switchRequest{piece: p})
	return nil
}

// Silence fades the active piece out and stops on silence.
func (e *Engine) Silence() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = ""
	e.pending.Store(&switchRequest{})
}

// Selected returns the name of the most recently requested piece, or "" for
// silence.
func (e *Engine) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// PieceNames returns the names of all registered pieces, sorted.
func (e *Engine) PieceNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.pieces))
	for n := range e.pieces {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Render mixes length output frames and advances the cursor.
// The returned buffers are reused by the next call.
func (e *Engine) Render(length Tz) []Buffer {
	buf := e.allocateBuffer(length)
	e.mix(buf)
	return buf
}

// ReadInterleaved fills dst with interleaved frames, mixing exactly
// len(dst)/NumChannels() frames.
func (e *Engine) ReadInterleaved(dst []float32) {
	frames := Tz(len(dst) / numChannels)
	buf := e.Render(frames)
	Interleave(dst[:frames*numChannels], buf)
}

func (e *Engine) allocateBuffer(length Tz) []Buffer {
	if len(e.buffer) != numChannels {
		e.buffer = make([]Buffer, numChannels)
	}
	for i := range e.buffer {
		if Tz(cap(e.buffer[i])) >= length {
			e.buffer[i] = e.buffer[i][0:length]
			e.buffer[i].Zero()
		} else {
			e.buffer[i] = NewBuffer(length)
		}
	}
	return e.buffer
}

func (e *Engine) mix(buffer []Buffer) {
	length := Tz(len(buffer[0]))
	danger := e.control.Level()

	if req := e.pending.Swap(nil); req != nil {
		e.beginSwitch(req.piece, danger)
	}
	if e.fading && e.quiet() {
		e.install(e.next, danger)
	}
	if e.cur == nil || length == 0 {
		return
	}

	if Tz(len(e.scratch)) < length {
		e.scratch = NewBuffer(length)
	}

	limit := e.gainStep(length)
	for i, l := range e.cur.layers {
		g := &e.gains[i]
		if !e.fading {
			g.target = l.curve.Gain(danger)
		}
		next := approach(g.current, g.target, limit)
		if next == 0 && g.current == 0 {
			continue
		}

		var gain [numChannels][numChannels]float32
		if e.cur.channels == 1 {
			gain[0][0], gain[0][1] = panMonoGain(l.pan)
		} else {
			gain[0][0], gain[0][1], gain[1][0], gain[1][1] = panStereoGain(l.pan)
		}

		for c := 0; c < e.cur.channels; c++ {
			src := e.scratch[:length]
			l.copyLoop(src, c, e.cursor)
			src.LinearRamp(g.current*l.base, next*l.base)
			for j := 0; j < numChannels; j++ {
				if gain[c][j] != 0 {
					buffer[j].MixGain(src, gain[c][j])
				}
			}
		}
		g.current = next
	}
	e.cursor += length

	for _, c := range buffer {
		if e.master != 1 {
			c.Gain(e.master)
		}
		c.Limit()
	}
}

// gainStep returns the largest gain change allowed within one block. During a
// piece-switch fade the switch-fade time constant applies.
func (e *Engine) gainStep(block Tz) float32 {
	frames := e.rampFrames
	if e.fading {
		frames = e.fadeFrames
	}
	if frames <= 0 {
		return 1
	}
	s := float32(block) / float32(frames)
	if s > 1 {
		s = 1
	}
	return s
}

func approach(current, target, limit float32) float32 {
	d := target - current
	if d > limit {
		return current + limit
	}
	if d < -limit {
		return current - limit
	}
	return target
}

func (e *Engine) beginSwitch(p *Piece, danger float32) {
	if e.cur == nil {
		e.install(p, danger)
		return
	}
	if p == e.cur && !e.fading {
		return
	}
	e.next = p
	e.fading = true
	for i := range e.gains {
		e.gains[i].target = 0
	}
}

func (e *Engine) quiet() bool {
	for _, g := range e.gains {
		if g.current != 0 {
			return false
		}
	}
	return true
}

// install makes p the active piece at cursor 0. Gains start at silence with
// targets taken from the current danger level, so the new piece fades in
// instead of clicking.
func (e *Engine) install(p *Piece, danger float32) {
	e.fading = false
	e.next = nil
	e.cur = p
	e.cursor = 0
	if p == nil {
		e.gains = e.gains[:0]
		return
	}
	if cap(e.gains) >= len(p.layers) {
		e.gains = e.gains[:len(p.layers)]
	} else {
		e.gains = make([]gainState, len(p.layers))
	}
	for i, l := range p.layers {
		e.gains[i] = gainState{current: 0, target: l.curve.Gain(danger)}
	}
}

// Position returns the loop cursor of the active piece. Like Render it
// belongs to the audio goroutine; it is exposed for offline rendering and
// tests.
func (e *Engine) Position() Tz {
	return e.cursor
}

// Gains returns a snapshot of the per-layer current gains of the active
// piece. Audio-goroutine side, like Position.
func (e *Engine) Gains() []float32 {
	out := make([]float32, len(e.gains))
	for i, g := range e.gains {
		out[i] = g.current
	}
	return out
}
