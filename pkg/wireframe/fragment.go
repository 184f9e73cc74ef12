package wireframe

import (
	"math"

	"github.com/WowDevTools/Everlook-sub002/pkg/math3d"
)

// FragmentEdgeState is the rasterizer-interpolated view of an
// EdgeDescriptor at one fragment: the altitude slots after linear
// screen-space interpolation, plus the flat line descriptors and case
// flags. See EdgeDescriptor.Interpolate.
type FragmentEdgeState struct {
	Altitudes [3]float64

	A, B       math3d.Vec2
	ADir, BDir math3d.Vec2
	ABDir      math3d.Vec2

	SimpleCase          bool
	SingleVertexVisible bool
}

// DistanceToNearestEdge returns the perpendicular distance in pixels from
// the fragment at frag to the nearest drawable polygon edge.
//
// In the simple case the interpolated altitude slots already are the three
// edge distances, so frag is not consulted. In the complex cases the
// fragment is tested against the infinite lines through the visible
// vertices; that over-extends each clipped edge, but the rasterizer only
// emits fragments inside the clipped triangle, where the lines and the
// edges coincide.
func (s FragmentEdgeState) DistanceToNearestEdge(frag math3d.Vec2) float64 {
	if s.SimpleCase {
		return min3(s.Altitudes[0], s.Altitudes[1], s.Altitudes[2])
	}
	da := DistanceToLine(frag, s.A, s.ADir)
	db := DistanceToLine(frag, s.B, s.BDir)
	if s.SingleVertexVisible {
		return math.Min(da, db)
	}
	return min3(da, db, DistanceToLine(frag, s.A, s.ABDir))
}

// DistanceToLine returns the perpendicular distance from the point f to the
// infinite line through q with unit direction dir: the square root of
// |q-f|² minus the squared projection of q-f onto dir. A zero dir (a
// degenerate edge that failed to normalize) makes the line a point and the
// result the plain point distance.
func DistanceToLine(f, q, dir math3d.Vec2) float64 {
	diff := q.Sub(f)
	adjacent := diff.Dot(dir)
	sq := diff.LenSq() - adjacent*adjacent
	if sq <= 0 {
		// Floating-point cancellation for fragments on or almost on
		// the line.
		return 0
	}
	return math.Sqrt(sq)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}
