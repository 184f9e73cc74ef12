// Package wireframe implements a single-pass solid wireframe overlay.
//
// The per-primitive stage classifies a clip-space triangle by which of its
// vertices survive near-plane clipping, then builds screen-space edge
// geometry for that case: the three triangle altitudes when everything is
// visible, or reconstructed infinite lines when part of the triangle lies
// behind the viewer. The per-fragment stage turns the interpolated edge
// geometry into a distance to the nearest polygon edge and blends a line
// color over the shaded base color with a two-zone falloff.
//
// Every function is pure; nothing persists between primitives or fragments,
// so the stages may run from any number of goroutines without coordination.
package wireframe

import (
	"github.com/WowDevTools/Everlook-sub002/pkg/math3d"
)

// ScreenPoint is a clip-space vertex projected to pixel coordinates.
//
// Sign carries the sign of the clip-space depth: positive means the vertex
// lies in front of the near plane. The screen position of a behind-camera
// vertex is directionally inverted by the perspective divide, so Sign, not
// the position, is what visibility decisions must use.
type ScreenPoint struct {
	Pos  math3d.Vec2
	Sign float64
}

// Visible reports whether the vertex survived near-plane clipping.
func (p ScreenPoint) Visible() bool {
	return p.Sign > 0
}

// Project maps a clip-space vertex into screen space through the given
// viewport matrix (see math3d.Viewport).
//
// Vertices in front of the near plane are perspective-divided first.
// Behind-camera vertices are passed through undivided: dividing by a
// negative depth would mirror the point through the viewport center, and
// the only meaningful output for such a vertex is its Sign.
func Project(clip math3d.Vec4, viewport math3d.Mat3) ScreenPoint {
	x, y := clip.X, clip.Y
	if clip.Z > 0 && clip.W != 0 {
		x /= clip.W
		y /= clip.W
	}
	return ScreenPoint{
		Pos:  viewport.MulPoint(math3d.V2(x, y)),
		Sign: clip.Z,
	}
}
