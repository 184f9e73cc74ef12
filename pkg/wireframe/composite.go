package wireframe

import "math"

// Color is a straight-alpha RGBA color with float components, nominally in
// [0, 1]. The compositor works in floats so the fade band doesn't quantize.
type Color struct {
	R, G, B, A float64
}

// Lerp returns the linear blend from c toward to by weight t.
func (c Color) Lerp(to Color, t float64) Color {
	return Color{
		R: c.R + (to.R-c.R)*t,
		G: c.G + (to.G-c.G)*t,
		B: c.B + (to.B-c.B)*t,
		A: c.A + (to.A-c.A)*t,
	}
}

// Overlay holds the wireframe compositing settings: the line color, the
// line half-width and the fade width, both in pixels. The solid core of a
// line covers distances below LineWidth-FadeWidth; the fade band covers
// distances up to LineWidth.
type Overlay struct {
	Color     Color
	LineWidth float64
	FadeWidth float64
}

// Composite blends the wireframe overlay over the shaded base color given
// the fragment's distance to the nearest edge.
//
// Inside the solid core the output is the wireframe color. Inside the fade
// band the base is blended toward the wireframe color by exp2(-2t²), t
// being the depth into the band. Beyond LineWidth the base passes through
// untouched. A base fragment whose alpha falls below discardThreshold would
// ordinarily be discarded outright, so the fade blends from transparent
// black instead of from whatever color the dead fragment happened to carry.
// Total over all real inputs; never errors.
func (o Overlay) Composite(base Color, discardThreshold, distance float64) Color {
	switch {
	case distance < o.LineWidth-o.FadeWidth:
		return o.Color

	case distance < o.LineWidth:
		t := distance - (o.LineWidth - o.FadeWidth)
		s := math.Exp2(-2 * t * t)
		if base.A < discardThreshold {
			base = Color{}
		}
		return base.Lerp(o.Color, s)

	default:
		return base
	}
}
