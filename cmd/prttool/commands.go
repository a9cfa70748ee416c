package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/prt-relight/internal/assets"
	"github.com/Faultbox/prt-relight/internal/config"
	"github.com/Faultbox/prt-relight/internal/engine/camera"
	"github.com/Faultbox/prt-relight/internal/logger"
	"github.com/Faultbox/prt-relight/internal/raster"
	"github.com/Faultbox/prt-relight/internal/session"
	"github.com/Faultbox/prt-relight/pkg/prt"
	"github.com/Faultbox/prt-relight/pkg/sh"
)

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errUsage
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

// assetFlags are shared by the commands that load models.
type assetFlags struct {
	config  string
	dir     string
	baseURL string
	debug   bool
}

func (a *assetFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&a.config, "config", "", "Config file path")
	fs.StringVar(&a.dir, "assets", "", "Local asset directory")
	fs.StringVar(&a.baseURL, "base-url", "", "Remote asset base URL")
	fs.BoolVar(&a.debug, "debug", false, "Log asset loading to stderr")
}

func (a *assetFlags) load() (*config.Config, *assets.Manager, error) {
	cfg, err := config.LoadFile(a.config)
	if err != nil {
		return nil, nil, err
	}
	if a.dir != "" {
		cfg.Assets.Dir = a.dir
	}
	if a.baseURL != "" {
		cfg.Assets.BaseURL = a.baseURL
	}
	if a.debug {
		if err := logger.InitWithFileConfig("debug", logger.FileConfig{}, true); err != nil {
			return nil, nil, err
		}
	}
	return cfg, assets.NewManagerFromConfig(cfg.Assets, logger.Named("assets")), nil
}

// shadeFlags select the light, mode and rotation. Unset flags fall back to
// the config's session section.
type shadeFlags struct {
	light int
	mode  string
	rot   [3]float64
}

func (s *shadeFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&s.light, "light", -1, "Light preset index (default from config)")
	fs.StringVar(&s.mode, "mode", "", "Shading mode: color or light (default from config)")
	fs.Float64Var(&s.rot[0], "rx", 0, "Light rotation about X, degrees")
	fs.Float64Var(&s.rot[1], "ry", 0, "Light rotation about Y, degrees")
	fs.Float64Var(&s.rot[2], "rz", 0, "Light rotation about Z, degrees")
}

func (s *shadeFlags) state(fs *flag.FlagSet, cfg *config.Config, modelID string) (*session.State, error) {
	light := cfg.Session.Light
	if s.light >= 0 {
		light = s.light
	}
	mode := cfg.Session.Mode
	if s.mode != "" {
		m, err := prt.ParseMode(s.mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	st, err := session.New(sh.DefaultLibrary(), modelID, light, mode)
	if err != nil {
		return nil, err
	}

	deg := cfg.Session.Rotation
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rx":
			deg[0] = s.rot[0]
		case "ry":
			deg[1] = s.rot[1]
		case "rz":
			deg[2] = s.rot[2]
		}
	})
	st.SetRotation(
		session.DegreesToRadians(deg[0]),
		session.DegreesToRadians(deg[1]),
		session.DegreesToRadians(deg[2]))
	return st, nil
}

// shadeModel loads modelID and computes its vertex colours for st.
func shadeModel(ctx context.Context, mgr *assets.Manager, st *session.State) (*prt.Asset, []float32, error) {
	a, err := mgr.Load(ctx, st.Model)
	if err != nil {
		return nil, nil, err
	}
	e := prt.NewEngine()
	if err := e.Prepare(st.Preset().Coefficients, st.RotationMatrix(), st.Mode); err != nil {
		return nil, nil, err
	}
	colors, err := e.ShadeAsset(a, nil)
	if err != nil {
		return nil, nil, err
	}
	return a, colors, nil
}

// presetDoc is the YAML form of a light preset.
type presetDoc struct {
	Index        int          `yaml:"index"`
	Name         string       `yaml:"name"`
	Coefficients [][3]float64 `yaml:"coefficients,flow"`
}

func cmdLights(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("lights", stderr)
	format := fs.String("format", "text", "Output format: text or yaml")
	if err := parse(fs, args); err != nil {
		return err
	}

	lib := sh.DefaultLibrary()
	switch *format {
	case "text":
		for i, name := range lib.Names() {
			p, _ := lib.Get(i)
			dc := p.Coefficients[0]
			fmt.Fprintf(stdout, "%d  %-12s dc=(%.4f, %.4f, %.4f)\n", i, name, dc[0], dc[1], dc[2])
		}
		return nil
	case "yaml":
		docs := make([]presetDoc, 0, lib.Len())
		for i := 0; i < lib.Len(); i++ {
			p, _ := lib.Get(i)
			doc := presetDoc{Index: i, Name: p.Name}
			for _, c := range p.Coefficients {
				doc.Coefficients = append(doc.Coefficients, [3]float64(c))
			}
			docs = append(docs, doc)
		}
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(docs); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: unknown format %q", errUsage, *format)
	}
}

func cmdValidate(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("validate", stderr)
	var af assetFlags
	af.register(fs)
	all := fs.Bool("all", false, "Validate every configured model")
	if err := parse(fs, args); err != nil {
		return err
	}

	cfg, mgr, err := af.load()
	if err != nil {
		return err
	}
	defer mgr.Close()

	ids := fs.Args()
	if *all {
		ids = cfg.ModelIDs()
	}
	if len(ids) == 0 {
		fmt.Fprintln(stderr, "Usage: prttool validate [options] <model>... | -all")
		return errUsage
	}

	var errs error
	for _, id := range ids {
		a, err := mgr.Load(context.Background(), id)
		if err != nil {
			fmt.Fprintf(stdout, "FAIL  %s\n", id)
			errs = multierr.Append(errs, err)
			continue
		}
		lo, hi := a.Bounds()
		fmt.Fprintf(stdout, "OK    %s  vertices=%d triangles=%d bounds=[%.3f %.3f %.3f]..[%.3f %.3f %.3f]\n",
			id, a.VertexCount(), a.TriangleCount(), lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
	}
	return errs
}

// shadeOutput is the JSON document written by shade.
type shadeOutput struct {
	Model           string     `json:"model"`
	Light           string     `json:"light"`
	Mode            string     `json:"mode"`
	RotationDegrees [3]float64 `json:"rotation_degrees"`
	Vertices        int        `json:"vertices"`
	Colors          []float32  `json:"colors"`
}

func cmdShade(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("shade", stderr)
	var af assetFlags
	var sf shadeFlags
	af.register(fs)
	sf.register(fs)
	output := fs.String("o", "", "Output file (default stdout)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: prttool shade [options] <model>")
		return errUsage
	}

	cfg, mgr, err := af.load()
	if err != nil {
		return err
	}
	defer mgr.Close()

	st, err := sf.state(fs, cfg, fs.Arg(0))
	if err != nil {
		return err
	}
	a, colors, err := shadeModel(context.Background(), mgr, st)
	if err != nil {
		return err
	}

	w := stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	return enc.Encode(shadeOutput{
		Model:           a.ID,
		Light:           st.Preset().Name,
		Mode:            st.Mode.String(),
		RotationDegrees: st.RotationDegrees(),
		Vertices:        a.VertexCount(),
		Colors:          colors,
	})
}

func cmdRender(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("render", stderr)
	var af assetFlags
	var sf shadeFlags
	af.register(fs)
	sf.register(fs)
	output := fs.String("o", "", "Output PNG file")
	size := fs.Int("size", 0, "Image width and height (default from config)")
	azimuth := fs.Float64("azimuth", 0, "Camera azimuth, degrees")
	cull := fs.Bool("cull", true, "Skip back faces")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 || *output == "" {
		fmt.Fprintln(stderr, "Usage: prttool render [options] -o out.png <model>")
		return errUsage
	}

	cfg, mgr, err := af.load()
	if err != nil {
		return err
	}
	defer mgr.Close()

	st, err := sf.state(fs, cfg, fs.Arg(0))
	if err != nil {
		return err
	}
	a, colors, err := shadeModel(context.Background(), mgr, st)
	if err != nil {
		return err
	}

	width, height := cfg.Viewer.TargetWidth, cfg.Viewer.TargetHeight
	if *size > 0 {
		width, height = *size, *size
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: image size %dx%d", errUsage, width, height)
	}

	vc := cfg.Viewer
	cam := camera.NewOrbitCamera(vc.CameraDistance, vc.FOVDegrees, vc.Near, vc.Far)
	cam.Azimuth = mgl32.DegToRad(float32(*azimuth))

	r := raster.New(width, height)
	r.CullBackFaces = *cull
	r.Clear(toRGBA(vc.ClearColor))
	if err := r.DrawMesh(a, colors, cam.ViewProjection(float32(width)/float32(height))); err != nil {
		return err
	}

	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	if err := png.Encode(f, r.Image()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Wrote %s (%dx%d, %s, %s)\n", *output, width, height, st.Preset().Name, st.Mode)
	return nil
}

func toRGBA(c [3]float32) color.RGBA {
	b := func(v float32) uint8 { return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5) }
	return color.RGBA{b(c[0]), b(c[1]), b(c[2]), 255}
}
