// Package viewer implements the SDL2 viewer loop.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/prt-relight/internal/app"
	"github.com/Faultbox/prt-relight/internal/config"
	"github.com/Faultbox/prt-relight/internal/engine/camera"
	"github.com/Faultbox/prt-relight/internal/engine/debug"
	"github.com/Faultbox/prt-relight/internal/engine/framebuffer"
	"github.com/Faultbox/prt-relight/internal/engine/input"
	"github.com/Faultbox/prt-relight/internal/engine/renderer"
	"github.com/Faultbox/prt-relight/internal/engine/window"
	"github.com/Faultbox/prt-relight/internal/logger"
)

// ScreenshotDir is where F12 screenshots are written.
const ScreenshotDir = "screenshots"

// Viewer is the main viewer instance.
type Viewer struct {
	config   *config.Config
	ctrl     *app.Controller
	running  bool
	window   *window.Window
	renderer *renderer.MeshRenderer
	input    *input.Input
	camera   *camera.OrbitCamera
	shots    *debug.ScreenshotCapture
	log      *zap.Logger

	title      string
	screenshot bool
}

// New creates the window and GL resources.
func New(cfg *config.Config, ctrl *app.Controller) (*Viewer, error) {
	v := &Viewer{
		config: cfg,
		ctrl:   ctrl,
		log:    logger.Named("viewer"),
	}

	v.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	// Window first: the renderer needs its GL context.
	var err error
	v.window, err = window.New(cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w, h := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      w,
		Height:     h,
		ClearColor: cfg.Viewer.ClearColor,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.renderer.Resize(w, h)

	vc := cfg.Viewer
	v.camera = camera.NewOrbitCamera(vc.CameraDistance, vc.FOVDegrees, vc.Near, vc.Far)
	v.input = input.New()
	v.shots = debug.NewScreenshotCapture(ScreenshotDir, "prt")

	return v, nil
}

// Run starts the main loop and returns when the window closes or ctx ends.
func (v *Viewer) Run(ctx context.Context) error {
	v.running = true
	v.ctrl.Start(ctx)

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		if ctx.Err() != nil {
			break
		}

		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}

		for _, event := range v.input.Events() {
			v.handleEvent(ctx, event)
		}
		if !v.running {
			break
		}

		if err := v.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		if v.screenshot {
			v.takeScreenshot()
			v.screenshot = false
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount), zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvent(ctx context.Context, event input.Event) {
	switch event.Type {
	case input.EventWindowResize:
		w, h := v.window.DrawableSize()
		v.renderer.Resize(w, h)

	case input.EventMouseMove:
		if v.input.Dragging() {
			v.camera.HandleDrag(float32(event.DeltaX), float32(event.DeltaY))
		}

	case input.EventMouseWheel:
		v.camera.HandleZoom(event.Wheel)

	case input.EventKeyDown:
		switch event.Key {
		case sdl.SCANCODE_ESCAPE:
			v.running = false
			return
		case sdl.SCANCODE_F11:
			v.window.ToggleFullscreen()
			return
		case sdl.SCANCODE_F12:
			v.screenshot = true
			return
		}
		if event.Repeat && event.Rune == '\t' {
			return
		}
		cmd, ok := v.ctrl.CommandForKey(event.Rune, event.Shift)
		if !ok {
			return
		}
		// Rejected commands are logged by the controller.
		_, _ = v.ctrl.Handle(ctx, cmd)
	}
}

// render draws the current frame.
func (v *Viewer) render() error {
	frame, err := v.ctrl.Frame()
	if err != nil {
		return err
	}

	if frame.NewAsset {
		v.renderer.Upload(frame.Asset)
		v.shots.SetPrefix(frame.Asset.ID)
	}
	if frame.Changed {
		if err := v.renderer.UpdateColors(frame.Colors); err != nil {
			return err
		}
	}
	v.updateTitle()

	v.renderer.Begin()
	if frame.Asset != nil {
		v.renderer.Draw(v.camera.ViewProjection(v.renderer.Aspect()))
	}
	return nil
}

// takeScreenshot reads the back buffer before it is presented.
func (v *Viewer) takeScreenshot() {
	w, h := v.window.DrawableSize()
	path, err := v.shots.Capture(framebuffer.ReadDefault(int32(w), int32(h)))
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

func (v *Viewer) updateTitle() {
	view := v.ctrl.View()
	title := v.config.Window.Title
	if view.ModelIndex >= 0 {
		title = fmt.Sprintf("%s - %s / %s", title, view.Models[view.ModelIndex].Label, view.Lights[view.Light])
	}
	if view.Loading {
		title += " (loading)"
	}
	if title != v.title {
		v.window.SetTitle(title)
		v.title = title
	}
}

// Close releases GL and window resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
