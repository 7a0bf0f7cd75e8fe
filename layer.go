package mix

// Layer is one prepared stem of a Piece: a trimmed clip plus the mixing
// parameters declared for it. Layers are immutable after preparation and are
// owned by exactly one Piece.
type Layer struct {
	name  string
	clip  Clip
	base  float32
	pan   float32
	curve Curve
}

// Name returns the layer name.
func (l *Layer) Name() string {
	return l.name
}

// BaseGain returns the author-specified default loudness of the layer.
func (l *Layer) BaseGain() float32 {
	return l.base
}

// Pan returns the stereo position of the layer in [-1, 1].
func (l *Layer) Pan() float32 {
	return l.pan
}

// Curve returns the layer's danger-level activation curve.
func (l *Layer) Curve() Curve {
	return l.curve
}

// Length returns the loop length of the layer in samples.
func (l *Layer) Length() Tz {
	return l.clip.Length()
}

// NumChannels returns the number of channels in the layer's clip.
func (l *Layer) NumChannels() int {
	return l.clip.NumChannels()
}

// SampleRate returns the sample rate of the layer's clip.
func (l *Layer) SampleRate() Tz {
	return l.clip.Rate
}

// Loop returns length samples of one channel starting at offset modulo the
// loop length. The loop point is exact: a read spanning the boundary
// concatenates the tail and the head with no gap or repeated sample.
// The returned buffer is freshly allocated; for the zero-allocation path used
// by the engine see copyLoop.
func (l *Layer) Loop(channel int, offset, length Tz) Buffer {
	dst := NewBuffer(length)
	l.copyLoop(dst, channel, offset)
	return dst
}

// copyLoop fills dst from channel starting at offset modulo loop length,
// wrapping as many times as needed.
func (l *Layer) copyLoop(dst Buffer, channel int, offset Tz) {
	loop := l.clip.Length()
	src := l.clip.Data[channel]
	pos := offset % loop
	if pos < 0 {
		pos += loop
	}
	for len(dst) > 0 {
		n := copy(dst, src[pos:])
		dst = dst[n:]
		pos = 0
	}
}
