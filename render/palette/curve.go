package palette

// Curve is a CSS style cubic-bezier easing curve {x1, y1, x2, y2} running from (0,0)
// to (1,1).
type Curve [4]float64

// Common curves.
var (
	Linear    = Curve{0, 0, 1, 1}
	Ease      = Curve{0.25, 0.1, 0.25, 1}
	EaseIn    = Curve{0.42, 0, 1, 1}
	EaseOut   = Curve{0, 0, 0.58, 1}
	EaseInOut = Curve{0.42, 0, 0.58, 1}
)

const bisectSteps = 48

func bezier(p1, p2, t float64) float64 {
	u := 1 - t
	return 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t
}

// At evaluates the curve at @x, clamped to [0,1]. The parameter is found by a fixed
// number of bisection steps, so the result only depends on the inputs.
func (c Curve) At(x float64) float64 {
	if !(x > 0) {
		return 0
	}
	if x >= 1 {
		return 1
	}
	x1, y1, x2, y2 := clamp01(c[0]), c[1], clamp01(c[2]), c[3]
	lo, hi := 0.0, 1.0
	t := x
	for i := 0; i < bisectSteps; i++ {
		t = (lo + hi) / 2
		if bezier(x1, x2, t) < x {
			lo = t
		} else {
			hi = t
		}
	}
	return bezier(y1, y2, t)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
