// Optimized overlay rasterization using incremental edge functions: the
// three edge equations are evaluated once at the bounding box corner and
// stepped per pixel, avoiding the full barycentric solve of the reference
// path.
package render

import (
	"math"

	"github.com/WowDevTools/Everlook-sub002/pkg/math3d"
	"github.com/WowDevTools/Everlook-sub002/pkg/wireframe"
)

// edgeCoeffs returns A, B, C for the edge function edge(x,y) = A*x + B*y + C.
// Positive = left of edge, negative = right, zero = on edge.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1 // dy
	B = x1 - x0 // -dx
	C = x0*y1 - x1*y0
	return
}

// edgeFunc evaluates an edge function at point (x, y).
func edgeFunc(A, B, C, x, y float64) float64 {
	return A*x + B*y + C
}

// DrawTriangleOverlayOpt is the incremental-edge-function version of
// DrawTriangleOverlay. Produces the same image; roughly twice as fast on
// large triangles.
func (r *Rasterizer) DrawTriangleOverlayOpt(tri Triangle, tex *Texture, lightDir math3d.Vec3, settings OverlaySettings) {
	clip := r.clipPositions(tri)

	desc := wireframe.BuildEdgeDescriptor(clip, r.viewportMatrix())
	if desc.Case == wireframe.NoneVisible {
		return
	}

	var sv [3]screenVertex
	if !r.toScreen(tri, clip, &sv) {
		return
	}

	// Backface culling
	edge1X := sv[1].X - sv[0].X
	edge1Y := sv[1].Y - sv[0].Y
	edge2X := sv[2].X - sv[0].X
	edge2Y := sv[2].Y - sv[0].Y
	cross := edge1X*edge2Y - edge1Y*edge2X
	if cross < 0 && !r.DisableBackfaceCulling {
		return
	}

	// Face normal lighting
	e1 := tri.V[1].Position.Sub(tri.V[0].Position)
	e2 := tri.V[2].Position.Sub(tri.V[0].Position)
	faceNormal := e1.Cross(e2).Normalize()
	intensity := math.Max(0.2, faceNormal.Dot(lightDir.Normalize()))
	intensity = 0.3 + 0.7*intensity

	minX, maxX, minY, maxY := r.boundingBox(&sv)
	if minX > maxX || minY > maxY {
		return
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	A1, B1, C1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	A2, B2, C2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)

	area2 := cross // 2 * signed area
	if area2 == 0 {
		return
	}
	invArea := 1.0 / area2

	var invW [3]float64
	for i := range 3 {
		if sv[i].W != 0 {
			invW[i] = 1.0 / sv[i].W
		}
	}

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5

	w0Row := edgeFunc(A0, B0, C0, px, py)
	w1Row := edgeFunc(A1, B1, C1, px, py)
	w2Row := edgeFunc(A2, B2, C2, px, py)

	width := r.Width()
	zbuffer := r.zbuffer

	for y := minY; y <= maxY; y++ {
		w0 := w0Row
		w1 := w1Row
		w2 := w2Row
		rowOffset := y * width

		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				bc0 := w0 * invArea
				bc1 := w1 * invArea
				bc2 := w2 * invArea

				z := bc0*sv[0].Z + bc1*sv[1].Z + bc2*sv[2].Z

				idx := rowOffset + x
				if idx < len(zbuffer) && z < zbuffer[idx] {
					bc := math3d.V3(bc0, bc1, bc2)

					if base, ok := overlayBase(&sv, bc, invW, tex, intensity); ok {
						state := desc.Interpolate(bc)
						dist := state.DistanceToNearestEdge(math3d.V2(float64(x)+0.5, float64(y)+0.5))

						discarded := dist >= settings.Overlay.LineWidth && colorAlpha(base) < settings.AlphaThreshold
						if !discarded {
							out := settings.Overlay.Composite(toOverlayColor(base), settings.AlphaThreshold, dist)
							if out.A > 0 {
								zbuffer[idx] = z
								r.blendPixel(x, y, out)
							}
						}
					}
				}
			}

			w0 += A0
			w1 += A1
			w2 += A2
		}

		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}

// DrawMeshOverlayOpt renders a mesh through the optimized overlay path.
// Frustum culling applies when the mesh provides bounds.
func (r *Rasterizer) DrawMeshOverlayOpt(mesh MeshRenderer, transform math3d.Mat4, tex *Texture, lightDir math3d.Vec3, settings OverlaySettings) {
	if r.tryFrustumCull(mesh, transform) {
		return
	}

	for i := 0; i < mesh.TriangleCount(); i++ {
		tri := r.meshTriangle(mesh, transform, i)
		r.DrawTriangleOverlayOpt(tri, tex, lightDir, settings)
	}
}
