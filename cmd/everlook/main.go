// everlook - Terminal 3D asset viewer with solid wireframe overlay.
// View GLB/glTF files in your terminal with shaded, wireframe-overlaid,
// or wireframe-only rendering.
//
// Controls:
//
//	Mouse drag  - Rotate model (yaw/pitch)
//	Scroll      - Zoom in/out
//	W/S         - Pitch up/down
//	A/D         - Yaw left/right
//	Q/E         - Roll left/right
//	Space       - Apply random impulse
//	R           - Reset rotation
//	T           - Toggle texture on/off
//	O           - Toggle wireframe overlay
//	X           - Wireframe-only mode (fill discarded)
//	[ / ]       - Decrease/increase wire line width
//	G           - Toggle ground grid and axes
//	P           - Save a PNG screenshot
//	?           - Toggle HUD overlay
//	+/-         - Adjust zoom
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/WowDevTools/Everlook-sub002/pkg/math3d"
	"github.com/WowDevTools/Everlook-sub002/pkg/models"
	"github.com/WowDevTools/Everlook-sub002/pkg/render"
	"github.com/WowDevTools/Everlook-sub002/pkg/wireframe"
)

var (
	texturePath    = flag.String("texture", "", "Path to texture image (PNG/JPG), overrides embedded texture")
	targetFPS      = flag.Int("fps", 60, "Target FPS")
	bgColor        = flag.String("bg", "30,30,40", "Background color (R,G,B)")
	wireColor      = flag.String("wire-color", "204,204,204", "Wireframe color (R,G,B)")
	wireWidth      = flag.Float64("wire-width", 2, "Wireframe line width in pixels")
	wireFade       = flag.Float64("wire-fade", 1, "Wireframe edge fade width in pixels")
	alphaThreshold = flag.Float64("alpha-threshold", 0.5, "Base alpha below which fragments are discarded")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "everlook - Terminal 3D asset viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: everlook [options] <model.glb|model.gltf>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Rotate model\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  Q/E         - Roll left/right\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  T           - Toggle texture\n")
		fmt.Fprintf(os.Stderr, "  O           - Toggle wireframe overlay\n")
		fmt.Fprintf(os.Stderr, "  X           - Wireframe-only mode\n")
		fmt.Fprintf(os.Stderr, "  [ / ]       - Wire line width\n")
		fmt.Fprintf(os.Stderr, "  G           - Toggle grid and axes\n")
		fmt.Fprintf(os.Stderr, "  P           - Save PNG screenshot\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// RotationAxis tracks position and velocity for one rotation axis with spring decay.
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewRotationAxis creates an axis with harmonica spring for smooth velocity decay.
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0 using the spring.
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// RotationState holds model rotation with harmonica spring physics.
type RotationState struct {
	Pitch, Yaw, Roll RotationAxis
	fps              int
}

func NewRotationState(fps int) *RotationState {
	return &RotationState{
		Pitch: NewRotationAxis(fps),
		Yaw:   NewRotationAxis(fps),
		Roll:  NewRotationAxis(fps),
		fps:   fps,
	}
}

func (r *RotationState) Update() {
	r.Pitch.Update()
	r.Yaw.Update()
	r.Roll.Update()
}

func (r *RotationState) ApplyImpulse(pitch, yaw, roll float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
	r.Roll.Velocity += roll
}

func (r *RotationState) Reset() {
	r.Pitch = NewRotationAxis(r.fps)
	r.Yaw = NewRotationAxis(r.fps)
	r.Roll = NewRotationAxis(r.fps)
}

// RenderMode controls how the mesh is drawn.
type RenderMode int

const (
	RenderModeShaded   RenderMode = iota // Shaded fill, no wireframe
	RenderModeOverlay                    // Shaded fill with wireframe overlay
	RenderModeWireOnly                   // Wireframe only, fill discarded
)

// ViewState holds all view-related settings (UI state, not library code).
type ViewState struct {
	TextureEnabled bool
	RenderMode     RenderMode
	ShowScene      bool // grid and axes
	ShowHUD        bool
	LightDir       math3d.Vec3
	Overlay        render.OverlaySettings
}

// NewViewState creates the default view state from the command-line flags.
func NewViewState() *ViewState {
	settings := render.DefaultOverlaySettings()
	settings.Overlay.LineWidth = *wireWidth
	settings.Overlay.FadeWidth = *wireFade
	settings.Overlay.Color = parseWireColor(*wireColor)
	settings.AlphaThreshold = *alphaThreshold
	return &ViewState{
		TextureEnabled: true,
		RenderMode:     RenderModeOverlay,
		ShowScene:      true,
		ShowHUD:        true,
		LightDir:       math3d.V3(0.5, 1, 0.3).Normalize(),
		Overlay:        settings,
	}
}

func parseWireColor(s string) wireframe.Color {
	var r, g, b uint8 = 204, 204, 204
	fmt.Sscanf(s, "%d,%d,%d", &r, &g, &b)
	return wireframe.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: 1,
	}
}

// HUD renders an overlay with model info and controls.
type HUD struct {
	filename  string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func NewHUD(filename string, polyCount int) *HUD {
	return &HUD{
		filename:  filename,
		polyCount: polyCount,
		fpsTime:   time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame).
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD overlay directly to the terminal.
func (h *HUD) Render(width, height int, viewState *ViewState, stats render.CullingStats) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows (so toggling off works)
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)

	if !viewState.ShowHUD {
		return
	}

	// Top left: FPS
	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	// Top middle: filename
	titleCol := max((width-len(h.filename)-2)/2, 1)
	fmt.Printf("%s%s%s%s %s %s", moveTo(1, titleCol), bold, bgBlack, fgWhite, h.filename, reset)

	// Top right: polygon count plus culling stats
	polyStr := fmt.Sprintf(" %d polys, %d/%d culled ", h.polyCount, stats.MeshesCulled, stats.MeshesTested)
	polyCol := max(width-len(polyStr)-1, 1)
	fmt.Printf("%s%s%s%s%s%s", moveTo(1, polyCol), bgBlack, fgCyan, bold, polyStr, reset)

	// Bottom: mode checkboxes
	checkTex := "[ ]"
	if viewState.TextureEnabled && viewState.RenderMode != RenderModeWireOnly {
		checkTex = "[✓]"
	}
	checkWire := "[ ]"
	if viewState.RenderMode != RenderModeShaded {
		checkWire = "[✓]"
	}
	checkOnly := "[ ]"
	if viewState.RenderMode == RenderModeWireOnly {
		checkOnly = "[✓]"
	}
	modeStr := fmt.Sprintf("%s%s %s Texture  %s Wireframe  %s Wire only  width %.1f %s",
		bgBlack, fgWhite, checkTex, checkWire, checkOnly, viewState.Overlay.Overlay.LineWidth, reset)
	fmt.Print(moveTo(height, 1) + modeStr)

	hint := fmt.Sprintf("%s%s%s O: overlay  X: wire only %s", bgBlack, dim, fgYellow, reset)
	hintCol := max(width-28, 1)
	fmt.Print(moveTo(height, hintCol) + hint)
}

func run(modelPath string) error {
	var bgR, bgG, bgB uint8 = 30, 30, 40
	fmt.Sscanf(*bgColor, "%d,%d,%d", &bgR, &bgG, &bgB)

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := termRenderer.FramebufferSize()
	fb := render.NewFramebuffer(fbWidth, fbHeight)

	camera := render.NewCamera()
	camera.SetAspectRatio(float64(fbWidth) / float64(fbHeight))
	camera.SetFOV(math.Pi / 3)
	camera.SetClipPlanes(0.1, 100)

	const camPitch = 0.35
	cameraDist := 5.0
	camera.Orbit(math3d.V3(0, 0, 0), 0, camPitch, cameraDist)

	rasterizer := render.NewRasterizer(camera, fb)

	// Load texture if specified
	var texture *render.Texture
	if *texturePath != "" {
		texture, err = render.LoadTexture(*texturePath)
		if err != nil {
			fmt.Printf("Warning: could not load texture: %v\n", err)
		}
	}

	ext := strings.ToLower(filepath.Ext(modelPath))
	var mesh *models.Mesh

	switch ext {
	case ".glb", ".gltf":
		var embeddedImg image.Image
		mesh, embeddedImg, err = models.LoadGLBWithTexture(modelPath)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		if texture == nil && embeddedImg != nil {
			texture = render.TextureFromImage(embeddedImg)
		}
	default:
		return fmt.Errorf("unsupported format: %s (use .glb or .gltf)", ext)
	}

	if texture == nil {
		texture = render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100))
	}

	hud := NewHUD(filepath.Base(modelPath), mesh.TriangleCount())

	// Center and scale the model to a unit-ish cube at the origin
	mesh.CalculateBounds()
	center := mesh.Center()
	size := mesh.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim > 0 {
		scale := 2.0 / maxDim
		transform := math3d.Scale(math3d.V3(scale, scale, scale)).Mul(math3d.Translate(center.Scale(-1)))
		mesh.Transform(transform)
	}

	rotation := NewRotationState(*targetFPS)
	viewState := NewViewState()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	inputTorque := struct{ pitch, yaw, roll float64 }{}
	const torqueStrength = 3.0

	var mouseDown bool
	var lastMouseX, lastMouseY int

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				termRenderer = render.NewTerminalRenderer(term, width, height)
				fbWidth, fbHeight = termRenderer.FramebufferSize()
				fb = render.NewFramebuffer(fbWidth, fbHeight)
				rasterizer = render.NewRasterizer(camera, fb)
				camera.SetAspectRatio(float64(fbWidth) / float64(fbHeight))

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"), ev.MatchString("ctrl+c"):
					cancel()
					return
				case ev.MatchString("q"):
					inputTorque.roll = -torqueStrength
				case ev.MatchString("r"):
					rotation.Reset()
					cameraDist = 5.0
					camera.Orbit(math3d.V3(0, 0, 0), 0, camPitch, cameraDist)
				case ev.MatchString("w", "up"):
					inputTorque.pitch = -torqueStrength
				case ev.MatchString("s", "down"):
					inputTorque.pitch = torqueStrength
				case ev.MatchString("a", "left"):
					inputTorque.yaw = -torqueStrength
				case ev.MatchString("d", "right"):
					inputTorque.yaw = torqueStrength
				case ev.MatchString("e"):
					inputTorque.roll = torqueStrength
				case ev.MatchString("space"):
					rotation.ApplyImpulse(
						(rand.Float64()-0.5)*1.5,
						(rand.Float64()-0.5)*1.5,
						(rand.Float64()-0.5)*1.5,
					)
				case ev.MatchString("+", "="):
					cameraDist = math.Max(1, cameraDist-0.5)
					camera.Orbit(math3d.V3(0, 0, 0), 0, camPitch, cameraDist)
				case ev.MatchString("-", "_"):
					cameraDist = math.Min(20, cameraDist+0.5)
					camera.Orbit(math3d.V3(0, 0, 0), 0, camPitch, cameraDist)
				case ev.MatchString("t"):
					viewState.TextureEnabled = !viewState.TextureEnabled
				case ev.MatchString("o"):
					if viewState.RenderMode == RenderModeOverlay {
						viewState.RenderMode = RenderModeShaded
					} else {
						viewState.RenderMode = RenderModeOverlay
					}
				case ev.MatchString("x"):
					if viewState.RenderMode == RenderModeWireOnly {
						viewState.RenderMode = RenderModeOverlay
					} else {
						viewState.RenderMode = RenderModeWireOnly
					}
				case ev.MatchString("["):
					viewState.Overlay.Overlay.LineWidth = math.Max(0.5, viewState.Overlay.Overlay.LineWidth-0.5)
				case ev.MatchString("]"):
					viewState.Overlay.Overlay.LineWidth = math.Min(10, viewState.Overlay.Overlay.LineWidth+0.5)
				case ev.MatchString("g"):
					viewState.ShowScene = !viewState.ShowScene
				case ev.MatchString("p"):
					// Best effort: the frame being written concurrently is acceptable
					// for a screenshot.
					_ = fb.SavePNG(fmt.Sprintf("everlook-%d.png", time.Now().Unix()))
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					viewState.ShowHUD = !viewState.ShowHUD
				}

			case uv.KeyReleaseEvent:
				switch {
				case ev.MatchString("w"), ev.MatchString("up"), ev.MatchString("s"), ev.MatchString("down"):
					inputTorque.pitch = 0
				case ev.MatchString("a"), ev.MatchString("left"), ev.MatchString("d"), ev.MatchString("right"):
					inputTorque.yaw = 0
				case ev.MatchString("q"), ev.MatchString("e"):
					inputTorque.roll = 0
				}

			case uv.MouseClickEvent:
				mouseDown = true
				lastMouseX, lastMouseY = ev.X, ev.Y

			case uv.MouseReleaseEvent:
				mouseDown = false

			case uv.MouseMotionEvent:
				if mouseDown {
					dx := ev.X - lastMouseX
					dy := ev.Y - lastMouseY
					rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03, 0)
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					cameraDist = math.Max(1, cameraDist-0.5)
				case uv.MouseWheelDown:
					cameraDist = math.Min(20, cameraDist+0.5)
				}
				camera.Orbit(math3d.V3(0, 0, 0), 0, camPitch, cameraDist)
			}
		}
	}()

	targetDuration := time.Second / time.Duration(*targetFPS)
	lastFrame := time.Now()

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now

		if dt > 0.1 {
			dt = 0.1
		}

		// Apply input torque and decay it (key release events unreliable)
		rotation.ApplyImpulse(
			inputTorque.pitch*dt,
			inputTorque.yaw*dt,
			inputTorque.roll*dt,
		)
		inputTorque.pitch *= 0.9
		inputTorque.yaw *= 0.9
		inputTorque.roll *= 0.9

		rotation.Update()

		transform := math3d.RotateX(rotation.Pitch.Position).
			Mul(math3d.RotateY(rotation.Yaw.Position)).
			Mul(math3d.RotateZ(rotation.Roll.Position))

		fb.Clear(render.RGB(bgR, bgG, bgB))
		rasterizer.ClearDepth()
		rasterizer.ResetCullingStats()

		if viewState.ShowScene {
			rasterizer.DrawGrid(4, 0.5, render.RGB(60, 60, 70))
			rasterizer.DrawAxes(1.5)
		}

		tex := texture
		if !viewState.TextureEnabled {
			tex = nil
		}

		switch viewState.RenderMode {
		case RenderModeWireOnly:
			rasterizer.DrawMeshWireframe(mesh, transform, render.RGB(0, 255, 128), viewState.Overlay.Overlay)
		case RenderModeOverlay:
			rasterizer.DrawMeshOverlayOpt(mesh, transform, tex, viewState.LightDir, viewState.Overlay)
		default:
			if tex != nil {
				rasterizer.DrawMeshTextured(mesh, transform, tex, viewState.LightDir)
			} else {
				rasterizer.DrawMesh(mesh, transform, render.RGB(200, 200, 200), viewState.LightDir)
			}
		}

		termRenderer.Render(fb)
		if err := termRenderer.Flush(); err != nil {
			cleanup()
			return fmt.Errorf("flush: %w", err)
		}

		hud.UpdateFPS()
		hud.Render(width, height, viewState, rasterizer.CullingStats)

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
