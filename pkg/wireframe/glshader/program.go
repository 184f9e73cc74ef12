package glshader

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/WowDevTools/Everlook-sub002/pkg/math3d"
	"github.com/WowDevTools/Everlook-sub002/pkg/wireframe"
)

// Program is the compiled overlay pipeline with its uniform locations
// resolved. All methods must run on the thread holding the GL context.
type Program struct {
	id uint32

	mvpLoc      int32
	viewportLoc int32

	baseColorLoc   int32
	baseTexLoc     int32
	useTexLoc      int32
	lightDirLoc    int32
	alphaThreshLoc int32

	wireEnabledLoc int32
	wireColorLoc   int32
	lineWidthLoc   int32
	fadeWidthLoc   int32
}

// Compile builds the vertex/geometry/fragment program and looks up every
// uniform. A GL context must be current.
func Compile() (*Program, error) {
	vert, err := compileStage(gl.VERTEX_SHADER, VertexSource)
	if err != nil {
		return nil, fmt.Errorf("vertex stage: %w", err)
	}
	geom, err := compileStage(gl.GEOMETRY_SHADER, GeometrySource)
	if err != nil {
		gl.DeleteShader(vert)
		return nil, fmt.Errorf("geometry stage: %w", err)
	}
	frag, err := compileStage(gl.FRAGMENT_SHADER, FragmentSource)
	if err != nil {
		gl.DeleteShader(vert)
		gl.DeleteShader(geom)
		return nil, fmt.Errorf("fragment stage: %w", err)
	}

	id := gl.CreateProgram()
	gl.AttachShader(id, vert)
	gl.AttachShader(id, geom)
	gl.AttachShader(id, frag)
	gl.LinkProgram(id)

	gl.DeleteShader(vert)
	gl.DeleteShader(geom)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(id, logLength, nil, gl.Str(log))
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("link: %v", strings.TrimRight(log, "\x00"))
	}

	p := &Program{id: id}
	p.mvpLoc = p.uniform("uModelViewProjection")
	p.viewportLoc = p.uniform("uViewportMatrix")
	p.baseColorLoc = p.uniform("uBaseColor")
	p.baseTexLoc = p.uniform("uBaseTexture")
	p.useTexLoc = p.uniform("uUseTexture")
	p.lightDirLoc = p.uniform("uLightDir")
	p.alphaThreshLoc = p.uniform("uAlphaThreshold")
	p.wireEnabledLoc = p.uniform("uWireframeEnabled")
	p.wireColorLoc = p.uniform("uWireframeColor")
	p.lineWidthLoc = p.uniform("uLineWidth")
	p.fadeWidthLoc = p.uniform("uFadeWidth")
	return p, nil
}

func (p *Program) uniform(name string) int32 {
	return gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
}

// Use makes the program current.
func (p *Program) Use() {
	gl.UseProgram(p.id)
}

// Delete releases the program object.
func (p *Program) Delete() {
	gl.DeleteProgram(p.id)
	p.id = 0
}

// SetModelViewProjection uploads the clip-space transform.
func (p *Program) SetModelViewProjection(m math3d.Mat4) {
	var buf [16]float32
	for i, v := range m {
		buf[i] = float32(v)
	}
	gl.UniformMatrix4fv(p.mvpLoc, 1, false, &buf[0])
}

// SetViewport uploads the NDC-to-pixel matrix for a framebuffer of the
// given size. gl_FragCoord has its origin at the bottom left, so unlike
// the software path this mapping keeps Y pointing up.
func (p *Program) SetViewport(width, height int) {
	w := float32(width)
	h := float32(height)
	buf := [9]float32{
		w / 2, 0, 0,
		0, h / 2, 0,
		w / 2, h / 2, 1,
	}
	gl.UniformMatrix3fv(p.viewportLoc, 1, false, &buf[0])
}

// SetOverlay uploads the wireframe color and band widths, or disables the
// overlay entirely when enabled is false.
func (p *Program) SetOverlay(overlay wireframe.Overlay, enabled bool) {
	if !enabled {
		gl.Uniform1i(p.wireEnabledLoc, 0)
		return
	}
	gl.Uniform1i(p.wireEnabledLoc, 1)
	c := overlay.Color
	gl.Uniform4f(p.wireColorLoc, float32(c.R), float32(c.G), float32(c.B), float32(c.A))
	gl.Uniform1f(p.lineWidthLoc, float32(overlay.LineWidth))
	gl.Uniform1f(p.fadeWidthLoc, float32(overlay.FadeWidth))
}

// SetBase configures the fill shading: a tint color, an optional texture
// unit, the light direction, and the alpha discard threshold.
func (p *Program) SetBase(color wireframe.Color, textureUnit int32, useTexture bool, lightDir math3d.Vec3, alphaThreshold float64) {
	gl.Uniform4f(p.baseColorLoc, float32(color.R), float32(color.G), float32(color.B), float32(color.A))
	if useTexture {
		gl.Uniform1i(p.useTexLoc, 1)
		gl.Uniform1i(p.baseTexLoc, textureUnit)
	} else {
		gl.Uniform1i(p.useTexLoc, 0)
	}
	gl.Uniform3f(p.lightDirLoc, float32(lightDir.X), float32(lightDir.Y), float32(lightDir.Z))
	gl.Uniform1f(p.alphaThreshLoc, float32(alphaThreshold))
}

func compileStage(stage uint32, source string) (uint32, error) {
	shader := gl.CreateShader(stage)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile: %v", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}
