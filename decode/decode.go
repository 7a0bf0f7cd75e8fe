// Package decode loads stem audio files and piece manifests for the mixing
// engine. WAV, Ogg Vorbis and MP3 sources are decoded fully into memory;
// preparation needs the whole clip anyway to trim both ends.
package decode

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	wav "github.com/youpy/go-wav"

	mix "github.com/thelabcat/solar-rift-music-player"
)

// File decodes an audio file into a Clip, dispatching on the extension.
func File(path string) (mix.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return mix.Clip{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return WAV(f)
	case ".ogg":
		return OGG(f)
	case ".mp3":
		return MP3(f)
	}
	return mix.Clip{}, fmt.Errorf("unsupported audio format: %s", path)
}

// WAV decodes a RIFF WAV stream into a Clip.
func WAV(r io.Reader) (mix.Clip, error) {
	// wav.NewReader needs an io.ReaderAt; the whole clip is decoded into
	// memory anyway, so buffer the stream.
	data, err := io.ReadAll(r)
	if err != nil {
		return mix.Clip{}, fmt.Errorf("failed to read wav: %w", err)
	}
	reader := wav.NewReader(bytes.NewReader(data))
	format, err := reader.Format()
	if err != nil {
		return mix.Clip{}, fmt.Errorf("failed to read wav format: %w", err)
	}
	channels := int(format.NumChannels)
	if channels < 1 || channels > 2 {
		return mix.Clip{}, fmt.Errorf("unsupported wav channel count %d", channels)
	}

	clip := mix.Clip{
		Rate: mix.Tz(format.SampleRate),
		Data: make([]mix.Buffer, channels),
	}
	for {
		samples, err := reader.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return mix.Clip{}, fmt.Errorf("failed to decode wav: %w", err)
		}
		for _, s := range samples {
			for c := 0; c < channels; c++ {
				clip.Data[c] = append(clip.Data[c], float32(reader.FloatValue(s, uint(c))))
			}
		}
	}
	return clip, nil
}

// OGG decodes an Ogg Vorbis stream into a Clip.
func OGG(r io.Reader) (mix.Clip, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return mix.Clip{}, fmt.Errorf("failed to open ogg: %w", err)
	}
	channels := reader.Channels()
	if channels < 1 || channels > 2 {
		return mix.Clip{}, fmt.Errorf("unsupported ogg channel count %d", channels)
	}

	clip := mix.Clip{
		Rate: mix.Tz(reader.SampleRate()),
		Data: make([]mix.Buffer, channels),
	}
	buf := make([]float32, 2048*channels)
	for {
		n, err := reader.Read(buf)
		for i := 0; i < n; i += channels {
			for c := 0; c < channels; c++ {
				clip.Data[c] = append(clip.Data[c], buf[i+c])
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return mix.Clip{}, fmt.Errorf("failed to decode ogg: %w", err)
		}
	}
	return clip, nil
}

// MP3 decodes an MPEG-1 layer 3 stream into a Clip. go-mp3 always outputs
// 16-bit stereo at the source sample rate.
func MP3(r io.Reader) (mix.Clip, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return mix.Clip{}, fmt.Errorf("failed to open mp3: %w", err)
	}

	clip := mix.Clip{
		Rate: mix.Tz(dec.SampleRate()),
		Data: make([]mix.Buffer, 2),
	}
	const scale = 1.0 / (1 << 15)
	buf := make([]byte, 4*2048)
	for {
		n, err := dec.Read(buf)
		for i := 0; i+3 < n; i += 4 {
			l := int16(uint16(buf[i]) | uint16(buf[i+1])<<8)
			r := int16(uint16(buf[i+2]) | uint16(buf[i+3])<<8)
			clip.Data[0] = append(clip.Data[0], float32(l)*scale)
			clip.Data[1] = append(clip.Data[1], float32(r)*scale)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return mix.Clip{}, fmt.Errorf("failed to decode mp3: %w", err)
		}
	}
	return clip, nil
}
