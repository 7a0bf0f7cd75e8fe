package mix_test

import (
	"math"
	"os"

	mix "github.com/thelabcat/solar-rift-music-player"
)

func Example() {
	const sampleRate = 44100

	// It's only example. Handle your errors properly!
	tone := func(freq float64) mix.Clip {
		data := mix.NewBuffer(2 * sampleRate)
		for i := range data {
			data[i] = 0.8 * float32(math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
		}
		return mix.Clip{Rate: sampleRate, Data: []mix.Buffer{data}}
	}

	piece, _ := mix.PreparePiece("area", []mix.RawLayer{
		{Name: "calm", Clip: tone(220), Gain: 0.5, Curve: mix.Window(0, 0.6, 0.2)},
		{Name: "danger", Clip: tone(440), Gain: 0.5, Curve: mix.Window(0.4, 1, 0.2)},
	}, mix.TrimConfig{})

	control := mix.NewControl(0)
	engine, _ := mix.NewEngine(mix.Config{SampleRate: sampleRate}, control)
	engine.AddPiece(piece)
	engine.SetPiece("area")

	out := mix.NewWAVWriter(os.Stdout, sampleRate)
	const chunk = 1024
	total := mix.Tz(4 * sampleRate)
	for pos := mix.Tz(0); pos < total; pos += chunk {
		control.Set(float32(pos) / float32(total))
		out.Write(engine.Render(chunk))
	}
}
