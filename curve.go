package mix

import (
	"github.com/chewxy/math32"
	"github.com/tanema/gween/ease"
)

// Curve maps danger level to a layer's target gain. The layer is active over
// danger in [Lo, Hi]; gain rises from 0 to 1 over the first FadeIn of the
// window and falls back to 0 over the last FadeOut. A zero fade width means a
// hard edge at full gain.
type Curve struct {
	Lo, Hi  float32
	FadeIn  float32
	FadeOut float32
	// Ease shapes the fade ramps. nil means linear.
	Ease ease.TweenFunc
}

// Window returns a Curve active over [lo, hi] with the given fade margin at
// each end that lies strictly inside the danger scale. A window touching an
// end of the scale holds full gain there, so a layer with lo == 0 is at full
// gain when danger is 0.
func Window(lo, hi, fade float32) Curve {
	c := Curve{Lo: lo, Hi: hi}
	if lo > 0 {
		c.FadeIn = fade
	}
	if hi < 1 {
		c.FadeOut = fade
	}
	return c
}

// Gain evaluates the curve at the given danger level.
func (c Curve) Gain(danger float32) float32 {
	if danger < c.Lo || danger > c.Hi {
		return 0
	}
	t := float32(1)
	if c.FadeIn > 0 {
		if r := (danger - c.Lo) / c.FadeIn; r < t {
			t = r
		}
	}
	if c.FadeOut > 0 {
		if r := (c.Hi - danger) / c.FadeOut; r < t {
			t = r
		}
	}
	if t >= 1 {
		return 1
	}
	f := c.Ease
	if f == nil {
		f = ease.Linear
	}
	return f(t, 0, 1, 1)
}

// EqualPower is an ease function for equal-power crossfades: gain follows
// sqrt(t) so that two complementary fades sum to constant acoustic power.
func EqualPower(t, b, c, d float32) float32 {
	return b + c*math32.Sqrt(t/d)
}

// LadderCurves returns the classic stacked-stem danger mapping used by the
// Solar Rift player: the first of n layers is always on, and each further
// layer i fades in over danger in [(i-1)/(n-1), i/(n-1)] and then holds at
// full gain. n must be at least 2.
func LadderCurves(n int) []Curve {
	curves := make([]Curve, n)
	curves[0] = Curve{Lo: 0, Hi: 1}
	span := 1 / float32(n-1)
	for i := 1; i < n; i++ {
		curves[i] = Curve{
			Lo:     float32(i-1) * span,
			Hi:     1,
			FadeIn: span,
		}
	}
	return curves
}
