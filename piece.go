package mix

// Piece is an ordered set of Layers sharing one sample-accurate loop length.
// All layers of a Piece have identical sample rate, channel count and length,
// and are always read at the same cursor offset by the engine. Pieces are
// built by PreparePiece and immutable afterwards.
type Piece struct {
	name     string
	layers   []*Layer
	length   Tz
	rate     Tz
	channels int
}

// Name returns the piece name.
func (p *Piece) Name() string {
	return p.name
}

// Layers returns the layers of the piece in declaration order.
func (p *Piece) Layers() []*Layer {
	return p.layers
}

// Length returns the common loop length in samples.
func (p *Piece) Length() Tz {
	return p.length
}

// SampleRate returns the sample rate shared by all layers.
func (p *Piece) SampleRate() Tz {
	return p.rate
}

// NumChannels returns the channel count shared by all layers.
func (p *Piece) NumChannels() int {
	return p.channels
}
