// PRT Inspector - an ImGui tool for relighting PRT meshes interactively.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/prt-relight/internal/app"
	"github.com/Faultbox/prt-relight/internal/assets"
	"github.com/Faultbox/prt-relight/internal/config"
	"github.com/Faultbox/prt-relight/internal/engine/camera"
	"github.com/Faultbox/prt-relight/internal/engine/debug"
	"github.com/Faultbox/prt-relight/internal/engine/framebuffer"
	"github.com/Faultbox/prt-relight/internal/engine/renderer"
	"github.com/Faultbox/prt-relight/internal/engine/ui"
	"github.com/Faultbox/prt-relight/internal/logger"
	"github.com/Faultbox/prt-relight/pkg/sh"
)

func main() {
	runtime.LockOSThread()

	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	inspector, err := NewInspector(cfg)
	if err != nil {
		logger.Error("failed to start inspector", zap.Error(err))
		os.Exit(1)
	}
	defer inspector.Close()

	inspector.Run()
}

// Inspector is the ImGui application state.
type Inspector struct {
	cfg     *config.Config
	ctx     context.Context
	cancel  context.CancelFunc
	backend *ui.Backend
	log     *zap.Logger

	mgr    *assets.Manager
	loader *assets.Loader
	ctrl   *app.Controller

	panel    ui.Panel
	renderer *renderer.MeshRenderer
	fb       *framebuffer.Framebuffer
	camera   *camera.OrbitCamera

	lastMousePos imgui.Vec2

	shots               *debug.ScreenshotCapture
	screenshotRequested bool
	statusMsg           string
	statusTime          time.Time

	// Folder picked in the dialog goroutine, applied on the main thread.
	pendingDir chan string
}

// NewInspector creates the window, GL resources and asset pipeline.
func NewInspector(cfg *config.Config) (*Inspector, error) {
	ctx, cancel := context.WithCancel(context.Background())
	in := &Inspector{
		cfg:        cfg,
		ctx:        ctx,
		cancel:     cancel,
		log:        logger.Named("inspector"),
		shots:      debug.NewScreenshotCapture("screenshots", "prt"),
		pendingDir: make(chan string, 1),
	}

	var err error
	in.backend, err = ui.NewBackend("PRT Inspector", int32(cfg.Window.Width), int32(cfg.Window.Height), cfg.Viewer.ClearColor)
	if err != nil {
		cancel()
		return nil, err
	}

	in.renderer, err = renderer.New(renderer.Config{
		Width:      cfg.Viewer.TargetWidth,
		Height:     cfg.Viewer.TargetHeight,
		ClearColor: cfg.Viewer.ClearColor,
	})
	if err != nil {
		cancel()
		return nil, err
	}
	in.fb, err = framebuffer.New(int32(cfg.Viewer.TargetWidth), int32(cfg.Viewer.TargetHeight))
	if err != nil {
		in.renderer.Close()
		cancel()
		return nil, err
	}

	vc := cfg.Viewer
	in.camera = camera.NewOrbitCamera(vc.CameraDistance, vc.FOVDegrees, vc.Near, vc.Far)

	in.mgr = assets.NewManagerFromConfig(cfg.Assets, logger.Named("assets"))
	in.loader = assets.NewLoader(in.mgr, logger.Named("loader"))
	in.ctrl, err = app.New(cfg, sh.DefaultLibrary(), in.loader, logger.Named("app"))
	if err != nil {
		in.Close()
		return nil, err
	}
	in.ctrl.Start(ctx)

	return in, nil
}

// Run starts the main loop.
func (in *Inspector) Run() {
	in.backend.Run(in.render)
}

// Close cancels loads and releases resources.
func (in *Inspector) Close() {
	in.cancel()
	if in.loader != nil {
		in.loader.Close()
	}
	if in.mgr != nil {
		in.mgr.Close()
	}
	if in.fb != nil {
		in.fb.Destroy()
	}
	if in.renderer != nil {
		in.renderer.Close()
	}
}

// openFolderDialog asks for a directory of asset files. The dialog runs
// off the main thread; the result is applied in render.
func (in *Inspector) openFolderDialog() {
	go func() {
		dir, err := dialog.Directory().Title("Open asset folder").Browse()
		if err != nil {
			if err != dialog.ErrCancelled {
				in.log.Warn("folder dialog failed", zap.Error(err))
			}
			return
		}
		select {
		case in.pendingDir <- dir:
		default:
		}
	}()
}

// addFolder registers dir as the highest-priority source and reloads.
func (in *Inspector) addFolder(dir string) {
	in.mgr.AddSource(assets.NewDirSource(dir))
	in.mgr.Cache().Clear()
	in.ctrl.Reload(in.ctx)
	in.notify(fmt.Sprintf("Added source: %s", dir))
	in.log.Info("asset folder added", zap.String("dir", dir))
}

// saveSettings writes the current session to the config file so the next
// start resumes from it.
func (in *Inspector) saveSettings() {
	path, err := config.SaveSession("", in.ctrl.SessionConfig())
	if err != nil {
		in.log.Warn("saving settings failed", zap.Error(err))
		in.notify(fmt.Sprintf("Save failed: %v", err))
		return
	}
	in.log.Info("settings saved", zap.String("path", path))
	in.notify(fmt.Sprintf("Settings saved to %s", path))
}

func (in *Inspector) notify(msg string) {
	in.statusMsg = msg
	in.statusTime = time.Now()
}

// render is called each frame.
func (in *Inspector) render() {
	select {
	case dir := <-in.pendingDir:
		in.addFolder(dir)
	default:
	}

	if ui.IsKeyPressed(imgui.KeyF12) {
		in.screenshotRequested = true
	}

	if err := in.renderMesh(); err != nil {
		in.log.Error("render failed", zap.Error(err))
	}
	if in.screenshotRequested {
		in.screenshotRequested = false
		in.captureScreenshot()
	}

	if imgui.BeginMainMenuBar() {
		if imgui.BeginMenu("File") {
			if imgui.MenuItemBool("Open asset folder...") {
				in.openFolderDialog()
			}
			if imgui.MenuItemBool("Save settings") {
				in.saveSettings()
			}
			if imgui.MenuItemBool("Screenshot (F12)") {
				in.screenshotRequested = true
			}
			imgui.Separator()
			if imgui.MenuItemBool("Exit") {
				in.Close()
				os.Exit(0)
			}
			imgui.EndMenu()
		}
		imgui.EndMainMenuBar()
	}

	posX, posY, width, height := in.backend.Viewport()
	panelWidth := float32(300)
	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse

	imgui.SetNextWindowPos(imgui.NewVec2(posX, posY))
	imgui.SetNextWindowSize(imgui.NewVec2(panelWidth, height))
	if imgui.BeginV("Controls", nil, flags) {
		for _, cmd := range in.panel.Draw(in.ctrl.View()) {
			// Rejected commands are logged by the controller.
			_, _ = in.ctrl.Handle(in.ctx, cmd)
		}
		if in.statusMsg != "" && time.Since(in.statusTime) < 3*time.Second {
			imgui.Separator()
			imgui.TextDisabled(in.statusMsg)
		}
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(posX+panelWidth, posY))
	imgui.SetNextWindowSize(imgui.NewVec2(width-panelWidth, height))
	if imgui.BeginV("Preview", nil, flags) {
		in.renderPreview()
	}
	imgui.End()
}

// renderMesh shades and draws the current asset into the framebuffer.
func (in *Inspector) renderMesh() error {
	frame, err := in.ctrl.Frame()
	if err != nil {
		return err
	}
	if frame.NewAsset {
		in.renderer.Upload(frame.Asset)
		in.shots.SetPrefix(frame.Asset.ID)
		in.backend.SetWindowTitle(fmt.Sprintf("PRT Inspector - %s", frame.Asset.ID))
	}
	if frame.Changed {
		if err := in.renderer.UpdateColors(frame.Colors); err != nil {
			return err
		}
	}

	in.fb.Render(func() {
		in.renderer.Begin()
		if frame.Asset != nil {
			in.renderer.Draw(in.camera.ViewProjection(in.fb.Aspect()))
		}
	})
	return nil
}

// renderPreview shows the framebuffer and handles orbit input over it.
func (in *Inspector) renderPreview() {
	fbW, fbH := in.fb.Size()
	avail := imgui.ContentRegionAvail()

	// Fit while keeping the aspect ratio.
	aspect := float32(fbW) / float32(fbH)
	displayW, displayH := avail.X, avail.X/aspect
	if displayH > avail.Y {
		displayH = avail.Y
		displayW = displayH * aspect
	}

	startX := imgui.CursorPosX()
	if displayW < avail.X {
		imgui.SetCursorPosX(startX + (avail.X-displayW)/2)
	}

	texRef := imgui.NewTextureRefTextureID(imgui.TextureID(in.fb.ColorTexture()))
	imgui.ImageWithBgV(
		*texRef,
		imgui.NewVec2(displayW, displayH),
		imgui.NewVec2(0, 1), // UV flipped
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0, 0, 0, 1),
		imgui.NewVec4(1, 1, 1, 1),
	)

	if imgui.IsItemHovered() {
		mousePos := imgui.MousePos()
		if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
			in.camera.HandleDrag(mousePos.X-in.lastMousePos.X, mousePos.Y-in.lastMousePos.Y)
		}
		in.lastMousePos = mousePos

		if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 {
			in.camera.HandleZoom(wheel)
		}
	}
}

// captureScreenshot saves the framebuffer contents as PNG.
func (in *Inspector) captureScreenshot() {
	path, err := in.shots.Capture(in.fb.ReadImage())
	if err != nil {
		in.notify(fmt.Sprintf("Screenshot failed: %v", err))
		in.log.Error("screenshot failed", zap.Error(err))
		return
	}
	in.notify(fmt.Sprintf("Saved: %s", path))
	in.log.Info("screenshot saved", zap.String("path", path))
}
