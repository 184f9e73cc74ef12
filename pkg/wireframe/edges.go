package wireframe

import (
	"math"

	"github.com/WowDevTools/Everlook-sub002/pkg/math3d"
)

// edgeNudge is the clip-space step taken from a visible vertex toward its
// invisible neighbor when recovering a clipped edge's screen direction.
// The step happens before the perspective divide, so the nudged point stays
// on the visible side of the near plane and projects without inversion.
const edgeNudge = 1e-4

// EdgeDescriptor is the per-primitive output of the edge geometry builder,
// constant (flat) across all fragments of one triangle.
//
// For the simple case only Altitudes is populated; for the complex cases
// only the line descriptors are. An EdgeDescriptor for the NoneVisible case
// carries no geometry at all and contributes no wireframe fragments.
type EdgeDescriptor struct {
	Case ProjectionCase

	// Altitudes holds the triangle's three altitudes in pixels: slot i is
	// the perpendicular distance from vertex i to the line through the
	// other two vertices. Simple case only.
	Altitudes [3]float64

	// A and B are the screen positions of the visible vertices bounding
	// the drawable edges; ADir and BDir are the unit screen directions of
	// those edges, reconstructed when the far endpoint is behind the
	// camera. Complex cases only.
	A, B       math3d.Vec2
	ADir, BDir math3d.Vec2

	// ABDir is the unit direction of the edge connecting A to B, used only
	// when two vertices are visible (both endpoints on-screen, no
	// reconstruction needed).
	ABDir math3d.Vec2
}

// BuildEdgeDescriptor runs the per-primitive stage: classify the triangle's
// near-plane visibility and derive the screen-space edge geometry for its
// case. The viewport matrix maps normalized device coordinates to pixels
// (math3d.Viewport).
func BuildEdgeDescriptor(clip [3]math3d.Vec4, viewport math3d.Mat3) EdgeDescriptor {
	c := Classify(clip[0].Z, clip[1].Z, clip[2].Z)
	d := EdgeDescriptor{Case: c}

	switch {
	case c == NoneVisible:
		// Fully clipped. The rasterizer emits no fragments for this
		// triangle; the explicit guard keeps the sentinel role-table
		// entries from ever being indexed on pre-clip input.
		return d

	case c.IsSimple():
		var p [3]math3d.Vec2
		for i := range clip {
			p[i] = Project(clip[i], viewport).Pos
		}
		d.Altitudes = altitudes(p)
		return d
	}

	a, aPrime, b, bPrime := c.roles()
	d.A = Project(clip[a], viewport).Pos
	d.B = Project(clip[b], viewport).Pos
	d.ADir = clippedEdgeDir(clip[a], clip[aPrime], d.A, viewport)
	d.BDir = clippedEdgeDir(clip[b], clip[bPrime], d.B, viewport)
	if !c.IsSingleVisible() {
		d.ABDir = d.B.Sub(d.A).Normalize()
	}
	return d
}

// VertexAltitudes returns the altitude slots to emit at vertex i for the
// simple case: the slot for vertex i carries its altitude and the other two
// are zeroed. After linear screen-space interpolation each fragment's slot
// j then holds exactly its perpendicular distance to edge j, which a uniform
// three-value passthrough would not produce (and which would leave artifacts
// at the vertices).
func (d EdgeDescriptor) VertexAltitudes(i int) [3]float64 {
	var out [3]float64
	out[i] = d.Altitudes[i]
	return out
}

// Interpolate returns the fragment-stage view of the descriptor at the
// given barycentric weights. Altitude slots interpolate linearly in screen
// space, without perspective correction; line descriptors and case flags
// are per-primitive constants.
//
// A NoneVisible descriptor interpolates to a state whose nearest-edge
// distance is +Inf, so any fragment evaluated against it (degenerate input;
// the rasterizer emits none) composites to the unmodified base color.
func (d EdgeDescriptor) Interpolate(bc math3d.Vec3) FragmentEdgeState {
	if d.Case == NoneVisible {
		inf := math.Inf(1)
		return FragmentEdgeState{
			Altitudes:  [3]float64{inf, inf, inf},
			SimpleCase: true,
		}
	}
	return FragmentEdgeState{
		Altitudes: [3]float64{
			bc.X * d.Altitudes[0],
			bc.Y * d.Altitudes[1],
			bc.Z * d.Altitudes[2],
		},
		A:                   d.A,
		B:                   d.B,
		ADir:                d.ADir,
		BDir:                d.BDir,
		ABDir:               d.ABDir,
		SimpleCase:          d.Case.IsSimple(),
		SingleVertexVisible: d.Case.IsSingleVisible(),
	}
}

// altitudes computes the three triangle altitudes: twice the triangle's
// area divided by each opposite edge length. A degenerate edge yields a
// zero altitude rather than a NaN.
func altitudes(p [3]math3d.Vec2) [3]float64 {
	area := math.Abs(p[1].Sub(p[0]).Cross(p[2].Sub(p[0])))
	var h [3]float64
	for i := range p {
		base := p[(i+2)%3].Distance(p[(i+1)%3])
		if base == 0 {
			continue
		}
		h[i] = area / base
	}
	return h
}

// clippedEdgeDir reconstructs the screen-space direction of an edge whose
// far endpoint lies behind the camera. The interpolation toward the
// invisible neighbor happens in clip space, before division; dividing first
// and interpolating screen positions would mirror the neighbor through the
// viewer and invert the direction. Coincident projections normalize to the
// zero vector.
func clippedEdgeDir(visible, invisible math3d.Vec4, visibleScreen math3d.Vec2, viewport math3d.Mat3) math3d.Vec2 {
	stepped := visible.Add(invisible.Sub(visible).Scale(edgeNudge))
	return Project(stepped, viewport).Pos.Sub(visibleScreen).Normalize()
}
