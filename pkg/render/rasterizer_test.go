package render

import (
	"math"
	"testing"

	"github.com/WowDevTools/Everlook-sub002/pkg/math3d"
	"github.com/WowDevTools/Everlook-sub002/pkg/wireframe"
)

// mockMesh implements MeshRenderer for testing.
type mockMesh struct {
	vertices []struct {
		pos    math3d.Vec3
		normal math3d.Vec3
		uv     math3d.Vec2
	}
	faces [][3]int
}

func (m *mockMesh) VertexCount() int     { return len(m.vertices) }
func (m *mockMesh) TriangleCount() int   { return len(m.faces) }
func (m *mockMesh) GetFace(i int) [3]int { return m.faces[i] }
func (m *mockMesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.vertices[i]
	return v.pos, v.normal, v.uv
}

// createTestRasterizer creates a rasterizer with the camera at (0, 0, 10)
// looking at the origin.
func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	camera := NewCamera()
	camera.SetPosition(math3d.V3(0, 0, 10))
	camera.LookAt(math3d.Zero3())
	camera.SetAspectRatio(float64(width) / float64(height))
	camera.SetFOV(math.Pi / 3)
	rasterizer := NewRasterizer(camera, fb)
	return rasterizer, fb
}

// frontTriangle is a large front-facing triangle at z=0 (CW winding in
// screen space due to the Y flip).
func frontTriangle(color Color) Triangle {
	return Triangle{
		V: [3]Vertex{
			{Position: math3d.V3(-5, -5, 0), Normal: math3d.V3(0, 0, 1), UV: math3d.V2(0, 0), Color: color},
			{Position: math3d.V3(0, 5, 0), Normal: math3d.V3(0, 0, 1), UV: math3d.V2(0.5, 1), Color: color},
			{Position: math3d.V3(5, -5, 0), Normal: math3d.V3(0, 0, 1), UV: math3d.V2(1, 0), Color: color},
		},
	}
}

func countLitPixels(fb *Framebuffer) int {
	n := 0
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.GetPixel(x, y)
			if c.R > 0 || c.G > 0 || c.B > 0 {
				n++
			}
		}
	}
	return n
}

func TestBarycentric(t *testing.T) {
	tests := []struct {
		name     string
		px, py   float64
		expected math3d.Vec3
	}{
		{"vertex 0", 0, 0, math3d.V3(1, 0, 0)},
		{"vertex 1", 1, 0, math3d.V3(0, 1, 0)},
		{"vertex 2", 0, 1, math3d.V3(0, 0, 1)},
		{"centroid", 1.0 / 3, 1.0 / 3, math3d.V3(1.0/3, 1.0/3, 1.0/3)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Triangle: (0,0), (1,0), (0,1)
			bc := barycentric(0, 0, 1, 0, 0, 1, tc.px, tc.py)

			if math.Abs(bc.X-tc.expected.X) > 0.001 ||
				math.Abs(bc.Y-tc.expected.Y) > 0.001 ||
				math.Abs(bc.Z-tc.expected.Z) > 0.001 {
				t.Errorf("barycentric(%v, %v) = %v, want %v", tc.px, tc.py, bc, tc.expected)
			}
		})
	}

	t.Run("outside triangle", func(t *testing.T) {
		bc := barycentric(0, 0, 1, 0, 0, 1, -1, -1)
		if bc.X >= 0 && bc.Y >= 0 && bc.Z >= 0 {
			t.Error("point outside triangle should have negative barycentric coordinate")
		}
	})
}

func TestInterpolateColor3(t *testing.T) {
	c0 := RGB(255, 0, 0)
	c1 := RGB(0, 255, 0)
	c2 := RGB(0, 0, 255)

	tests := []struct {
		name     string
		bc       math3d.Vec3
		expected Color
	}{
		{"full red", math3d.V3(1, 0, 0), RGB(255, 0, 0)},
		{"full green", math3d.V3(0, 1, 0), RGB(0, 255, 0)},
		{"full blue", math3d.V3(0, 0, 1), RGB(0, 0, 255)},
		{"equal mix", math3d.V3(1.0/3, 1.0/3, 1.0/3), RGB(85, 85, 85)},
		{"half red half green", math3d.V3(0.5, 0.5, 0), RGB(127, 127, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := interpolateColor3(c0, c1, c2, tc.bc)
			// Allow 1 unit tolerance due to rounding
			if absInt(int(result.R)-int(tc.expected.R)) > 1 ||
				absInt(int(result.G)-int(tc.expected.G)) > 1 ||
				absInt(int(result.B)-int(tc.expected.B)) > 1 {
				t.Errorf("interpolateColor3 with bc=%v = %v, want %v", tc.bc, result, tc.expected)
			}
		})
	}
}

func TestDrawTriangle(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.ClearDepth()
	fb.Clear(RGB(0, 0, 0))

	r.DrawTriangle(frontTriangle(RGB(200, 200, 200)))

	if countLitPixels(fb) == 0 {
		t.Error("DrawTriangle should draw visible pixels")
	}
}

func TestDrawTriangleBackfaceCulling(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.ClearDepth()
	fb.Clear(RGB(0, 0, 0))

	// CCW winding in screen space: back-facing, should be culled
	tri := Triangle{
		V: [3]Vertex{
			{Position: math3d.V3(-5, -5, 0), Color: RGB(255, 255, 255)},
			{Position: math3d.V3(5, -5, 0), Color: RGB(255, 255, 255)},
			{Position: math3d.V3(0, 5, 0), Color: RGB(255, 255, 255)},
		},
	}
	r.DrawTriangle(tri)

	if n := countLitPixels(fb); n > 0 {
		t.Errorf("back-facing triangle should be culled, got %d pixels", n)
	}
}

func TestDrawTriangleOverlayBanding(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.ClearDepth()
	fb.Clear(RGB(0, 0, 0))

	settings := OverlaySettings{
		Overlay: wireframe.Overlay{
			Color:     wireframe.Color{R: 1, A: 1},
			LineWidth: 3,
			FadeWidth: 1,
		},
		AlphaThreshold: 0.5,
	}

	r.DrawTriangleOverlay(frontTriangle(RGB(255, 255, 255)), nil, math3d.V3(0, 0, 1), settings)

	// The bottom edge projects to y ≈ 93.3, so (50, 92) sits inside the
	// solid band and must be the pure wire color.
	edge := fb.GetPixel(50, 92)
	if edge.R != 255 || edge.G != 0 || edge.B != 0 {
		t.Errorf("edge pixel = %v, want solid wire color", edge)
	}

	// (50, 60) is tens of pixels from every edge: base shading only.
	interior := fb.GetPixel(50, 60)
	if interior.G == 0 {
		t.Errorf("interior pixel = %v, want shaded base, got wire color", interior)
	}
	if interior.R == 0 && interior.G == 0 && interior.B == 0 {
		t.Error("interior pixel should be covered by the base fill")
	}
}

func TestDrawTriangleOverlayFullyBehindCamera(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.ClearDepth()
	fb.Clear(RGB(0, 0, 0))
	r.DisableBackfaceCulling = true

	// Camera sits at z=10 looking toward -z; z=25 is behind it.
	tri := Triangle{
		V: [3]Vertex{
			{Position: math3d.V3(-5, -5, 25), Color: RGB(255, 255, 255)},
			{Position: math3d.V3(0, 5, 25), Color: RGB(255, 255, 255)},
			{Position: math3d.V3(5, -5, 25), Color: RGB(255, 255, 255)},
		},
	}
	r.DrawTriangleOverlay(tri, nil, math3d.V3(0, 0, 1), DefaultOverlaySettings())

	if n := countLitPixels(fb); n > 0 {
		t.Errorf("fully clipped triangle should draw nothing, got %d pixels", n)
	}
}

func TestDrawTriangleOverlayPartiallyBehindCamera(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.ClearDepth()
	fb.Clear(RGB(0, 0, 0))
	r.DisableBackfaceCulling = true

	// One vertex behind the camera: the edge directions are reconstructed
	// and the visible part still rasterizes.
	tri := Triangle{
		V: [3]Vertex{
			{Position: math3d.V3(-5, -5, 0), Color: RGB(255, 255, 255)},
			{Position: math3d.V3(0, 5, 25), Color: RGB(255, 255, 255)},
			{Position: math3d.V3(5, -5, 0), Color: RGB(255, 255, 255)},
		},
	}
	r.DrawTriangleOverlay(tri, nil, math3d.V3(0, 0, 1), DefaultOverlaySettings())

	if countLitPixels(fb) == 0 {
		t.Error("partially clipped triangle should still draw pixels")
	}
}

func TestDrawMeshWireframeDiscardsFill(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.ClearDepth()
	fb.Clear(RGB(0, 0, 0))

	mesh := quadMesh()
	overlay := wireframe.Overlay{LineWidth: 3, FadeWidth: 1}
	r.DrawMeshWireframe(mesh, math3d.Identity(), ColorGreen, overlay)

	// (70, 80) is far from every quad edge and from the split diagonal:
	// the fill is discarded there.
	if c := fb.GetPixel(70, 80); c.R > 0 || c.G > 0 || c.B > 0 {
		t.Errorf("fill pixel = %v, want discarded (background)", c)
	}

	// (50, 92) hugs the bottom edge: wire color.
	if c := fb.GetPixel(50, 92); c.G != 255 {
		t.Errorf("edge pixel = %v, want green wire", c)
	}
}

func TestOverlayOptMatchesReferenceCoverage(t *testing.T) {
	rRef, fbRef := createTestRasterizer(100, 100)
	rOpt, fbOpt := createTestRasterizer(100, 100)
	rRef.ClearDepth()
	rOpt.ClearDepth()
	fbRef.Clear(RGB(0, 0, 0))
	fbOpt.Clear(RGB(0, 0, 0))

	tri := frontTriangle(RGB(255, 255, 255))
	settings := DefaultOverlaySettings()
	light := math3d.V3(0, 0, 1)

	rRef.DrawTriangleOverlay(tri, nil, light, settings)
	rOpt.DrawTriangleOverlayOpt(tri, nil, light, settings)

	nRef := countLitPixels(fbRef)
	nOpt := countLitPixels(fbOpt)
	if nRef == 0 || nOpt == 0 {
		t.Fatalf("both paths should draw pixels: ref=%d opt=%d", nRef, nOpt)
	}

	// The two traversals may disagree on boundary pixels; coverage must
	// agree within a small margin.
	diff := absInt(nRef - nOpt)
	if diff > nRef/50 {
		t.Errorf("coverage mismatch: ref=%d opt=%d", nRef, nOpt)
	}
}

func TestDrawMeshOverlay(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.ClearDepth()
	fb.Clear(RGB(0, 0, 0))

	tex := NewCheckerTexture(8, 8, 2, RGB(255, 255, 255), RGB(100, 100, 100))
	r.DrawMeshOverlay(quadMesh(), math3d.Identity(), tex, math3d.V3(0, 0, 1), DefaultOverlaySettings())

	if countLitPixels(fb) == 0 {
		t.Error("DrawMeshOverlay should render visible pixels")
	}
}

// quadMesh is a 10x10 quad at z=0 split along the 0-2 diagonal, CW winding.
func quadMesh() *mockMesh {
	return &mockMesh{
		vertices: []struct {
			pos    math3d.Vec3
			normal math3d.Vec3
			uv     math3d.Vec2
		}{
			{math3d.V3(-5, -5, 0), math3d.V3(0, 0, 1), math3d.V2(0, 0)},
			{math3d.V3(5, -5, 0), math3d.V3(0, 0, 1), math3d.V2(1, 0)},
			{math3d.V3(5, 5, 0), math3d.V3(0, 0, 1), math3d.V2(1, 1)},
			{math3d.V3(-5, 5, 0), math3d.V3(0, 0, 1), math3d.V2(0, 1)},
		},
		faces: [][3]int{
			{0, 3, 2},
			{0, 2, 1},
		},
	}
}

func TestMin3Max3(t *testing.T) {
	if min3(1, 2, 3) != 1 || min3(3, 1, 2) != 1 || min3(2, 3, 1) != 1 {
		t.Error("min3 failed")
	}
	if max3(1, 2, 3) != 3 || max3(3, 1, 2) != 3 || max3(2, 3, 1) != 3 {
		t.Error("max3 failed")
	}
}

func TestRasterizerClearDepth(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)

	r.setDepth(5, 5, 1.0)
	if r.getDepth(5, 5) != 1.0 {
		t.Error("setDepth/getDepth failed")
	}

	r.ClearDepth()
	if r.getDepth(5, 5) != math.MaxFloat64 {
		t.Error("ClearDepth should reset to MaxFloat64")
	}
}

func TestRasterizerDepthBoundsCheck(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)

	if r.getDepth(-1, 0) != math.MaxFloat64 {
		t.Error("Out of bounds getDepth should return MaxFloat64")
	}
	if r.getDepth(100, 0) != math.MaxFloat64 {
		t.Error("Out of bounds getDepth should return MaxFloat64")
	}

	// setDepth out of bounds should not panic
	r.setDepth(-1, 0, 1.0)
	r.setDepth(100, 0, 1.0)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func BenchmarkDrawTriangleOverlay(b *testing.B) {
	r, _ := createTestRasterizer(200, 200)
	tri := frontTriangle(RGB(255, 255, 255))
	settings := DefaultOverlaySettings()
	light := math3d.V3(0, 0, 1)

	for b.Loop() {
		r.ClearDepth()
		r.DrawTriangleOverlay(tri, nil, light, settings)
	}
}

func BenchmarkDrawTriangleOverlayOpt(b *testing.B) {
	r, _ := createTestRasterizer(200, 200)
	tri := frontTriangle(RGB(255, 255, 255))
	settings := DefaultOverlaySettings()
	light := math3d.V3(0, 0, 1)

	for b.Loop() {
		r.ClearDepth()
		r.DrawTriangleOverlayOpt(tri, nil, light, settings)
	}
}

func BenchmarkDrawMeshOverlayOpt(b *testing.B) {
	r, _ := createTestRasterizer(200, 200)
	tex := NewCheckerTexture(8, 8, 2, RGB(255, 255, 255), RGB(100, 100, 100))
	mesh := quadMesh()
	settings := DefaultOverlaySettings()
	light := math3d.V3(0, 0, 1)

	for b.Loop() {
		r.ClearDepth()
		r.DrawMeshOverlayOpt(mesh, math3d.Identity(), tex, light, settings)
	}
}
