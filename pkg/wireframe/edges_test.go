package wireframe

import (
	"math"
	"testing"

	"github.com/WowDevTools/Everlook-sub002/pkg/math3d"
)

// testViewport maps NDC to a 2x2 pixel target, so screen = (x+1, 1-y) for
// clip vertices with w=1. clipAt inverts that: a visible clip vertex that
// projects to the given screen position.
var testViewport = math3d.Viewport(2, 2)

func clipAt(sx, sy float64) math3d.Vec4 {
	return math3d.V4(sx-1, 1-sy, 1, 1)
}

func TestSimpleCaseAltitudes(t *testing.T) {
	tests := []struct {
		name string
		// Screen-space triangle and its expected altitudes.
		p    [3]math3d.Vec2
		want [3]float64
	}{
		{
			// Right isoceles: the altitude from (10,0) to the line
			// x=0 is the leg length.
			"right isoceles",
			[3]math3d.Vec2{math3d.V2(0, 0), math3d.V2(10, 0), math3d.V2(0, 10)},
			[3]float64{10 / math.Sqrt2, 10, 10},
		},
		{
			// Scalene 3-4-5: twice the area is 12; altitudes are
			// 12 over each opposite edge length.
			"scalene",
			[3]math3d.Vec2{math3d.V2(0, 0), math3d.V2(4, 0), math3d.V2(0, 3)},
			[3]float64{12.0 / 5, 4, 3},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clip := [3]math3d.Vec4{
				clipAt(tc.p[0].X, tc.p[0].Y),
				clipAt(tc.p[1].X, tc.p[1].Y),
				clipAt(tc.p[2].X, tc.p[2].Y),
			}
			d := BuildEdgeDescriptor(clip, testViewport)

			if !d.Case.IsSimple() {
				t.Fatalf("case = %03b, want all visible", d.Case)
			}
			for i := range d.Altitudes {
				if math.Abs(d.Altitudes[i]-tc.want[i]) > 1e-9 {
					t.Errorf("altitude %d = %v, want %v", i, d.Altitudes[i], tc.want[i])
				}
			}
		})
	}
}

func TestVertexAltitudesZeroesOtherSlots(t *testing.T) {
	clip := [3]math3d.Vec4{clipAt(0, 0), clipAt(4, 0), clipAt(0, 3)}
	d := BuildEdgeDescriptor(clip, testViewport)

	for i := range 3 {
		out := d.VertexAltitudes(i)
		for j := range 3 {
			switch {
			case j == i && out[j] != d.Altitudes[i]:
				t.Errorf("vertex %d: slot %d = %v, want %v", i, j, out[j], d.Altitudes[i])
			case j != i && out[j] != 0:
				t.Errorf("vertex %d: slot %d = %v, want 0", i, j, out[j])
			}
		}
	}
}

func TestSingleVisibleReconstruction(t *testing.T) {
	// v0 is on-screen at (1,1); v1 and v2 are behind the camera, one
	// straight up in clip space, one straight right. The reconstructed
	// directions must leave the visible vertex toward where each clipped
	// edge exits the screen, without sign inversion.
	clip := [3]math3d.Vec4{
		math3d.V4(0, 0, 1, 1),
		math3d.V4(0, 2, -1, -1),
		math3d.V4(2, 0, -1, -1),
	}
	d := BuildEdgeDescriptor(clip, testViewport)

	if d.Case != 0b001 {
		t.Fatalf("case = %03b, want 001", d.Case)
	}
	if d.A != d.B {
		t.Errorf("single-visible A = %v and B = %v should coincide", d.A, d.B)
	}
	if d.A != (math3d.Vec2{X: 1, Y: 1}) {
		t.Errorf("A = %v, want (1, 1)", d.A)
	}

	// Clip +y maps to screen -y, clip +x to screen +x.
	if math.Abs(d.ADir.X) > 1e-6 || d.ADir.Y >= 0 {
		t.Errorf("ADir = %v, want direction (0, -1)", d.ADir)
	}
	if math.Abs(d.BDir.Y) > 1e-6 || d.BDir.X <= 0 {
		t.Errorf("BDir = %v, want direction (1, 0)", d.BDir)
	}
	if d.ABDir != (math3d.Vec2{}) {
		t.Errorf("ABDir = %v, want zero in a single-visible case", d.ABDir)
	}

	// Reconstructed directions are unit length.
	if math.Abs(d.ADir.Len()-1) > 1e-9 {
		t.Errorf("|ADir| = %v, want 1", d.ADir.Len())
	}
	if math.Abs(d.BDir.Len()-1) > 1e-9 {
		t.Errorf("|BDir| = %v, want 1", d.BDir.Len())
	}
}

func TestTwoVisibleReconstruction(t *testing.T) {
	// v0 and v1 visible, v2 behind the camera above them.
	clip := [3]math3d.Vec4{
		math3d.V4(-0.5, 0, 1, 1),
		math3d.V4(0.5, 0, 1, 1),
		math3d.V4(0, 1, -1, -1),
	}
	d := BuildEdgeDescriptor(clip, testViewport)

	if d.Case != 0b011 {
		t.Fatalf("case = %03b, want 011", d.Case)
	}
	if d.A != (math3d.Vec2{X: 0.5, Y: 1}) || d.B != (math3d.Vec2{X: 1.5, Y: 1}) {
		t.Errorf("A = %v, B = %v, want (0.5, 1) and (1.5, 1)", d.A, d.B)
	}
	if math.Abs(d.ABDir.X-1) > 1e-9 || math.Abs(d.ABDir.Y) > 1e-9 {
		t.Errorf("ABDir = %v, want (1, 0)", d.ABDir)
	}

	// Edges toward a behind-camera apex flare outward on screen: both
	// point up-screen (negative Y) and away from each other, the left
	// vertex's edge leaning further left, the right one's further right.
	if d.ADir.Y >= 0 || d.BDir.Y >= 0 {
		t.Errorf("ADir = %v, BDir = %v: both should point up-screen", d.ADir, d.BDir)
	}
	if d.ADir.X >= 0 || d.BDir.X <= 0 {
		t.Errorf("ADir = %v should lean left, BDir = %v should lean right", d.ADir, d.BDir)
	}
}

func TestNoneVisibleShortCircuits(t *testing.T) {
	clip := [3]math3d.Vec4{
		math3d.V4(0, 0, -1, -1),
		math3d.V4(1, 0, -1, -1),
		math3d.V4(0, 1, -1, -1),
	}
	d := BuildEdgeDescriptor(clip, testViewport)

	if d.Case != NoneVisible {
		t.Fatalf("case = %03b, want 000", d.Case)
	}
	if d.Altitudes != [3]float64{} || d.ADir != (math3d.Vec2{}) || d.BDir != (math3d.Vec2{}) {
		t.Error("fully clipped triangle should carry no edge geometry")
	}

	// Any fragment evaluated against it lands outside every band.
	state := d.Interpolate(math3d.V3(1.0/3, 1.0/3, 1.0/3))
	if dist := state.DistanceToNearestEdge(math3d.V2(0, 0)); !math.IsInf(dist, 1) {
		t.Errorf("distance = %v, want +Inf sentinel", dist)
	}
}

func TestDegenerateEdgeDirectionIsZero(t *testing.T) {
	// The visible vertex and its clipped neighbor project to the same
	// screen point; normalizing the zero difference must yield a zero
	// vector, not NaN.
	clip := [3]math3d.Vec4{
		math3d.V4(0, 0, 1, 1),
		math3d.V4(0, 0, -1, 1),
		math3d.V4(2, 0, -1, -1),
	}
	d := BuildEdgeDescriptor(clip, testViewport)

	if d.ADir != (math3d.Vec2{}) {
		t.Errorf("ADir = %v, want zero vector for coincident projections", d.ADir)
	}
	if math.IsNaN(d.ADir.X) || math.IsNaN(d.ADir.Y) {
		t.Error("degenerate direction must not be NaN")
	}
}

func TestInterpolateScalesAltitudesByBarycentric(t *testing.T) {
	clip := [3]math3d.Vec4{clipAt(0, 0), clipAt(4, 0), clipAt(0, 3)}
	d := BuildEdgeDescriptor(clip, testViewport)

	state := d.Interpolate(math3d.V3(0.5, 0.25, 0.25))
	want := [3]float64{0.5 * d.Altitudes[0], 0.25 * d.Altitudes[1], 0.25 * d.Altitudes[2]}
	for i := range want {
		if math.Abs(state.Altitudes[i]-want[i]) > 1e-12 {
			t.Errorf("slot %d = %v, want %v", i, state.Altitudes[i], want[i])
		}
	}
	if !state.SimpleCase || state.SingleVertexVisible {
		t.Errorf("flags = (%v, %v), want (true, false)", state.SimpleCase, state.SingleVertexVisible)
	}

	// At vertex 0 the interpolated slots are exactly the per-vertex
	// emission: the vertex's own altitude and two zeros.
	atV0 := d.Interpolate(math3d.V3(1, 0, 0))
	if atV0.Altitudes != d.VertexAltitudes(0) {
		t.Errorf("slots at vertex 0 = %v, want %v", atV0.Altitudes, d.VertexAltitudes(0))
	}
}

func TestBuildEdgeDescriptorIdempotent(t *testing.T) {
	clip := [3]math3d.Vec4{
		math3d.V4(-0.5, 0, 1, 1),
		math3d.V4(0.5, 0, 1, 1),
		math3d.V4(0, 1, -1, -1),
	}

	d1 := BuildEdgeDescriptor(clip, testViewport)
	d2 := BuildEdgeDescriptor(clip, testViewport)
	if d1 != d2 {
		t.Errorf("two runs disagree: %+v vs %+v", d1, d2)
	}

	bc := math3d.V3(0.2, 0.3, 0.5)
	frag := math3d.V2(1, 1)
	dist1 := d1.Interpolate(bc).DistanceToNearestEdge(frag)
	dist2 := d2.Interpolate(bc).DistanceToNearestEdge(frag)
	if dist1 != dist2 {
		t.Errorf("distances differ: %v vs %v", dist1, dist2)
	}
}

func BenchmarkBuildEdgeDescriptorSimple(b *testing.B) {
	clip := [3]math3d.Vec4{clipAt(0, 0), clipAt(10, 0), clipAt(0, 10)}
	for b.Loop() {
		_ = BuildEdgeDescriptor(clip, testViewport)
	}
}

func BenchmarkBuildEdgeDescriptorComplex(b *testing.B) {
	clip := [3]math3d.Vec4{
		math3d.V4(-0.5, 0, 1, 1),
		math3d.V4(0.5, 0, 1, 1),
		math3d.V4(0, 1, -1, -1),
	}
	for b.Loop() {
		_ = BuildEdgeDescriptor(clip, testViewport)
	}
}
