// Package mix implements the adaptive layered-music engine from Solar Rift.
//
// A musical piece is a set of stem recordings ("layers") that loop together.
// Each layer declares an activation curve over a single scalar control value,
// the danger level. Moving the danger level crossfades layers smoothly while
// the whole piece stays sample-locked on one shared loop cursor.
//
// Demo:
//	go run examples/wav_stdout/main.go | aplay
package mix

import "time"

// Tz represents time in number of samples.
type Tz int64

// DurationToTz converts d to a number of samples at the given sample rate.
func DurationToTz(d time.Duration, sampleRate Tz) Tz {
	return Tz(d * time.Duration(sampleRate) / time.Second)
}

// TzToDuration converts a number of samples at the given sample rate to a
// time.Duration.
func TzToDuration(n, sampleRate Tz) time.Duration {
	return time.Duration(n * Tz(time.Second) / sampleRate)
}
