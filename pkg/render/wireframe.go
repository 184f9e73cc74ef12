package render

import (
	"github.com/WowDevTools/Everlook-sub002/pkg/math3d"
	"github.com/WowDevTools/Everlook-sub002/pkg/wireframe"
)

// DrawMeshWireframe renders only a mesh's polygon edges: the overlay pass
// with every base fragment below threshold, so the fill is discarded and
// the anti-aliased lines remain. Depth testing against previously drawn
// geometry still applies.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Mat4, color Color, overlay wireframe.Overlay) {
	settings := OverlaySettings{
		Overlay: overlay,
		// Above any representable base alpha: the fill never survives.
		AlphaThreshold: 2,
	}
	settings.Overlay.Color = toOverlayColor(color)

	if r.tryFrustumCull(mesh, transform) {
		return
	}
	for i := 0; i < mesh.TriangleCount(); i++ {
		tri := r.meshTriangle(mesh, transform, i)
		r.DrawTriangleOverlayOpt(tri, nil, math3d.Up(), settings)
	}
}

// DrawAxes draws the coordinate axes at the origin.
func (r *Rasterizer) DrawAxes(length float64) {
	origin := math3d.Zero3()
	r.drawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)   // X axis
	r.drawLine3D(origin, math3d.V3(0, length, 0), ColorGreen) // Y axis
	r.drawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)  // Z axis
}

// DrawGrid draws a reference grid on the XZ plane at y=0.
func (r *Rasterizer) DrawGrid(size, step float64, color Color) {
	half := size / 2
	for x := -half; x <= half; x += step {
		r.drawLine3D(math3d.V3(x, 0, -half), math3d.V3(x, 0, half), color)
	}
	for z := -half; z <= half; z += step {
		r.drawLine3D(math3d.V3(-half, 0, z), math3d.V3(half, 0, z), color)
	}
}

// drawLine3D draws a world-space line segment, projected to the screen.
// Used for scene furniture (grid, axes); mesh edges go through the
// overlay pass instead.
func (r *Rasterizer) drawLine3D(a, b math3d.Vec3, color Color) {
	x0, y0, _, vis0 := r.camera.WorldToScreen(a, r.Width(), r.Height())
	x1, y1, _, vis1 := r.camera.WorldToScreen(b, r.Width(), r.Height())
	if !vis0 && !vis1 {
		return
	}
	r.fb.DrawLine(int(x0), int(y0), int(x1), int(y1), color)
}
