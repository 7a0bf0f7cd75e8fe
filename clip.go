package mix

// Clip holds decoded PCM audio in memory, one Buffer per channel.
// Clips are filled once by a decoder and must not be modified afterwards.
type Clip struct {
	Data []Buffer
	Rate Tz
}

// Samples returns Buffer holding length samples from channel starting at offset.
// Will return internal buffer. Copy it, if you want to modify.
func (c Clip) Samples(channel int, offset, length Tz) Buffer {
	return c.Data[channel][offset : offset+length]
}

// SampleRate returns number of samples per second in Clip.
func (c Clip) SampleRate() Tz {
	return c.Rate
}

// NumChannels returns number of channels in Clip.
func (c Clip) NumChannels() int {
	return len(c.Data)
}

// Length returns number of samples per channel in Clip.
func (c Clip) Length() Tz {
	if len(c.Data) == 0 {
		return 0
	}
	return Tz(len(c.Data[0]))
}

// slice returns a Clip sharing data with c, cut to [from, to) per channel.
func (c Clip) slice(from, to Tz) Clip {
	out := Clip{Rate: c.Rate, Data: make([]Buffer, len(c.Data))}
	for i, ch := range c.Data {
		out.Data[i] = ch[from:to]
	}
	return out
}
