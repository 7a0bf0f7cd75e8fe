// Package player drives a mixing engine from the system audio device using
// oto. The device pulls interleaved float32 frames through an io.Reader
// callback; the engine always has a block ready, so the callback never
// blocks.
package player

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"

	mix "github.com/thelabcat/solar-rift-music-player"
)

const (
	bytesPerSample = 4
	bytesPerFrame  = bytesPerSample * mix.NumOutChannels
)

// Player owns the audio device and feeds it from an attached engine. Before
// an engine is attached it plays silence.
type Player struct {
	ctx     *oto.Context
	player  *oto.Player
	engine  atomic.Pointer[mix.Engine]
	scratch []float32
	started bool
	mutex   sync.Mutex
}

// New opens the audio device at the given sample rate in stereo float32 and
// waits until it is ready.
func New(sampleRate mix.Tz) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: mix.NumOutChannels,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	p := &Player{ctx: ctx}
	p.player = ctx.NewPlayer(p)
	p.scratch = make([]float32, 4096)
	return p, nil
}

// Attach switches the player to pull from e. Safe to call while playing.
func (p *Player) Attach(e *mix.Engine) {
	p.engine.Store(e)
}

// Read implements io.Reader for the device callback. It mixes exactly the
// requested number of frames and encodes them as little-endian float32.
func (p *Player) Read(b []byte) (int, error) {
	n := len(b) / bytesPerFrame * bytesPerFrame
	e := p.engine.Load()
	if e == nil {
		for i := range b[:n] {
			b[i] = 0
		}
		return n, nil
	}

	samples := n / bytesPerSample
	if len(p.scratch) < samples {
		p.scratch = make([]float32, samples)
	}
	out := p.scratch[:samples]
	e.ReadInterleaved(out)

	for i, v := range out {
		binary.LittleEndian.PutUint32(b[i*bytesPerSample:], math.Float32bits(v))
	}
	return n, nil
}

// Start begins playback.
func (p *Player) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

// Close stops playback and releases the device player.
func (p *Player) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.player != nil {
		err := p.player.Close()
		p.player = nil
		p.started = false
		return err
	}
	return nil
}
