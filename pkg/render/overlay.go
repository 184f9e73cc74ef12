package render

import (
	"github.com/WowDevTools/Everlook-sub002/pkg/math3d"
	"github.com/WowDevTools/Everlook-sub002/pkg/wireframe"
)

// OverlaySettings bundles the wireframe overlay pass parameters.
type OverlaySettings struct {
	Overlay        wireframe.Overlay
	AlphaThreshold float64 // Base fragments below this alpha are discarded
}

// DefaultOverlaySettings returns the viewer's stock overlay: a light gray
// line two pixels wide with a one pixel fade.
func DefaultOverlaySettings() OverlaySettings {
	return OverlaySettings{
		Overlay: wireframe.Overlay{
			Color:     wireframe.Color{R: 0.8, G: 0.8, B: 0.8, A: 1},
			LineWidth: 2,
			FadeWidth: 1,
		},
		AlphaThreshold: 0.5,
	}
}

// viewportMatrix returns the NDC-to-pixel mapping matching toScreen's
// convention (Y down, origin at the top left).
func (r *Rasterizer) viewportMatrix() math3d.Mat3 {
	return math3d.Viewport(r.Width(), r.Height())
}

// DrawTriangleOverlay rasterizes a triangle with its shaded base color and
// the wireframe overlay composited per fragment. The triangle's edge
// geometry is evaluated once up front; every covered pixel then receives
// its distance to the nearest polygon edge through the interpolated
// altitudes or the reconstructed clip-case lines.
//
// A nil texture falls back to interpolated vertex colors for the base.
func (r *Rasterizer) DrawTriangleOverlay(tri Triangle, tex *Texture, lightDir math3d.Vec3, settings OverlaySettings) {
	clip := r.clipPositions(tri)

	desc := wireframe.BuildEdgeDescriptor(clip, r.viewportMatrix())
	if desc.Case == wireframe.NoneVisible {
		return
	}

	var sv [3]screenVertex
	if !r.toScreen(tri, clip, &sv) {
		return
	}
	if r.backFacing(&sv) {
		return
	}

	// Face normal lighting, same as the plain textured pass
	e1 := tri.V[1].Position.Sub(tri.V[0].Position)
	e2 := tri.V[2].Position.Sub(tri.V[0].Position)
	faceNormal := e1.Cross(e2).Normalize()
	intensity := maxf(0.2, faceNormal.Dot(lightDir.Normalize()))
	intensity = 0.3 + 0.7*intensity

	minX, maxX, minY, maxY := r.boundingBox(&sv)

	var invW [3]float64
	for i := range 3 {
		if sv[i].W != 0 {
			invW[i] = 1.0 / sv[i].W
		}
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				px, py,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z >= r.getDepth(x, y) {
				continue
			}

			base, ok := overlayBase(&sv, bc, invW, tex, intensity)
			if !ok {
				continue
			}

			state := desc.Interpolate(bc)
			dist := state.DistanceToNearestEdge(math3d.V2(px, py))

			// Outside the overlay band a sub-threshold base fragment is
			// discarded outright: no color, no depth.
			if dist >= settings.Overlay.LineWidth && colorAlpha(base) < settings.AlphaThreshold {
				continue
			}

			out := settings.Overlay.Composite(toOverlayColor(base), settings.AlphaThreshold, dist)
			if out.A <= 0 {
				continue
			}

			r.setDepth(x, y, z)
			r.blendPixel(x, y, out)
		}
	}
}

// DrawMeshOverlay renders a mesh with the wireframe overlay on top of its
// textured base. Frustum culling applies when the mesh provides bounds.
func (r *Rasterizer) DrawMeshOverlay(mesh MeshRenderer, transform math3d.Mat4, tex *Texture, lightDir math3d.Vec3, settings OverlaySettings) {
	if r.tryFrustumCull(mesh, transform) {
		return
	}

	for i := 0; i < mesh.TriangleCount(); i++ {
		tri := r.meshTriangle(mesh, transform, i)
		r.DrawTriangleOverlay(tri, tex, lightDir, settings)
	}
}

// overlayBase computes the lit base color at a fragment: a perspective-
// correct texture sample, or interpolated vertex colors when tex is nil.
// Returns false when the perspective weights degenerate.
func overlayBase(sv *[3]screenVertex, bc math3d.Vec3, invW [3]float64, tex *Texture, intensity float64) (Color, bool) {
	if tex == nil {
		return MultiplyColor(interpolateColor3(sv[0].Color, sv[1].Color, sv[2].Color, bc), intensity), true
	}
	w0, w1, w2 := bc.X*invW[0], bc.Y*invW[1], bc.Z*invW[2]
	oneOverW := w0 + w1 + w2
	if oneOverW == 0 {
		return Color{}, false
	}
	u := (w0*sv[0].UV.X + w1*sv[1].UV.X + w2*sv[2].UV.X) / oneOverW
	v := (w0*sv[0].UV.Y + w1*sv[1].UV.Y + w2*sv[2].UV.Y) / oneOverW
	return MultiplyColor(tex.Sample(u, v), intensity), true
}

// blendPixel composites src over the framebuffer pixel using src's alpha.
func (r *Rasterizer) blendPixel(x, y int, src wireframe.Color) {
	if src.A >= 1 {
		r.fb.SetPixel(x, y, fromOverlayColor(src))
		return
	}
	dst := toOverlayColor(r.fb.GetPixel(x, y))
	r.fb.SetPixel(x, y, fromOverlayColor(dst.Lerp(src, src.A)))
}

// toOverlayColor converts an 8-bit color to normalized channels.
func toOverlayColor(c Color) wireframe.Color {
	return wireframe.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}

// fromOverlayColor converts normalized channels back to 8-bit, clamping.
func fromOverlayColor(c wireframe.Color) Color {
	return Color{
		R: clamp8(c.R * 255),
		G: clamp8(c.G * 255),
		B: clamp8(c.B * 255),
		A: clamp8(c.A * 255),
	}
}

func colorAlpha(c Color) float64 {
	return float64(c.A) / 255
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
