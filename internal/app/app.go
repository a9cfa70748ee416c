// Package app wires the viewer state, the asset loader and the shading
// engine together. It has no GL dependency so front ends and tools share it.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/prt-relight/internal/assets"
	"github.com/Faultbox/prt-relight/internal/config"
	"github.com/Faultbox/prt-relight/internal/session"
	"github.com/Faultbox/prt-relight/pkg/prt"
	"github.com/Faultbox/prt-relight/pkg/sh"
)

// Frame is the shading output for one asset.
type Frame struct {
	Asset  *prt.Asset
	Colors []float32 // 3 floats per vertex
	// Changed is set when Colors differ from the previous frame.
	Changed bool
	// NewAsset is set when Asset differs from the previous frame.
	NewAsset bool
}

// Controller owns the session and recomputes vertex colours on demand.
// All methods except those of the loader must be called from one goroutine.
type Controller struct {
	state  *session.State
	loader *assets.Loader
	engine *prt.Engine
	models []config.ModelEntry
	log    *zap.Logger

	shaded *prt.Asset
	colors []float32
	dirty  bool
}

// New creates a controller. The initial model is not requested until Start.
func New(cfg *config.Config, lights *sh.Library, loader *assets.Loader, log *zap.Logger) (*Controller, error) {
	if log == nil {
		log = zap.NewNop()
	}
	st, err := session.New(lights, cfg.Session.Model, cfg.Session.Light, cfg.Session.Mode)
	if err != nil {
		return nil, fmt.Errorf("initial session: %w", err)
	}
	r := cfg.Session.Rotation
	st.SetRotation(
		session.DegreesToRadians(r[0]),
		session.DegreesToRadians(r[1]),
		session.DegreesToRadians(r[2]))

	return &Controller{
		state:  st,
		loader: loader,
		engine: prt.NewEngine(),
		models: append([]config.ModelEntry(nil), cfg.Assets.Models...),
		log:    log,
		dirty:  true,
	}, nil
}

// State returns the live session state. Mutate it only through Handle.
func (c *Controller) State() *session.State {
	return c.state
}

// Models returns the selectable models.
func (c *Controller) Models() []config.ModelEntry {
	return c.models
}

// ModelIndex returns the position of the selected model in Models, or -1.
func (c *Controller) ModelIndex() int {
	for i, m := range c.models {
		if m.ID == c.state.Model {
			return i
		}
	}
	return -1
}

// Start requests the initial model.
func (c *Controller) Start(ctx context.Context) {
	c.log.Info("starting", zap.String("model", c.state.Model), zap.String("light", c.state.Preset().Name))
	c.Reload(ctx)
}

// Reload requests the selected model again, for example after a source was
// added. The installed asset stays visible until the new one arrives.
func (c *Controller) Reload(ctx context.Context) {
	c.loader.Request(ctx, c.state.Model)
}

// Handle applies a command and schedules whatever it invalidates.
func (c *Controller) Handle(ctx context.Context, cmd session.Command) (session.Recompute, error) {
	r, err := c.state.Apply(cmd)
	if err != nil {
		c.log.Warn("command rejected", zap.String("command", fmt.Sprintf("%T", cmd)), zap.Error(err))
		return r, err
	}
	if r.Has(session.ReloadAsset) {
		c.loader.Request(ctx, c.state.Model)
	}
	if r.NeedsShading() {
		c.dirty = true
	}
	if r != session.RecomputeNone {
		c.log.Debug("state changed", zap.Stringer("recompute", r))
	}
	return r, nil
}

// NextModel returns the command that selects the model after the current one.
func (c *Controller) NextModel() session.Command {
	if len(c.models) == 0 {
		return session.SelectModel{ID: c.state.Model}
	}
	i := (c.ModelIndex() + 1) % len(c.models)
	return session.SelectModel{ID: c.models[i].ID}
}

// Loading reports whether the selected model is not yet the installed one.
func (c *Controller) Loading() bool {
	cur := c.loader.Current()
	return cur == nil || cur.ID != c.state.Model
}

// LoadErr returns the last load failure, if any.
func (c *Controller) LoadErr() error {
	return c.loader.Err()
}

// Frame returns the colours for the installed asset, recomputing them only
// when the asset or the lighting changed since the previous call.
func (c *Controller) Frame() (Frame, error) {
	cur := c.loader.Current()
	if cur == nil {
		return Frame{}, nil
	}

	newAsset := cur != c.shaded
	if !newAsset && !c.dirty {
		return Frame{Asset: cur, Colors: c.colors}, nil
	}

	if err := c.engine.Prepare(c.state.Preset().Coefficients, c.state.RotationMatrix(), c.state.Mode); err != nil {
		return Frame{}, err
	}
	colors, err := c.engine.ShadeAsset(cur, c.colors)
	if err != nil {
		return Frame{}, err
	}
	c.colors = colors
	c.shaded = cur
	c.dirty = false

	return Frame{Asset: cur, Colors: colors, Changed: true, NewAsset: newAsset}, nil
}

// SessionConfig returns the current state in the form the config file
// stores it, so a restart resumes where the user left off.
func (c *Controller) SessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Model:    c.state.Model,
		Light:    c.state.Light,
		Mode:     c.state.Mode,
		Rotation: c.state.RotationDegrees(),
	}
}

// View is a read-only snapshot for drawing UI widgets.
type View struct {
	Models          []config.ModelEntry
	ModelIndex      int
	Lights          []string
	Light           int
	LightOnly       bool
	RotationDegrees [3]float64
	Loading         bool
	LoadErr         error
	Vertices        int
	Triangles       int
}

// View returns the current UI snapshot.
func (c *Controller) View() View {
	v := View{
		Models:          c.models,
		ModelIndex:      c.ModelIndex(),
		Lights:          c.state.Lights().Names(),
		Light:           c.state.Light,
		LightOnly:       c.state.Mode == prt.ModeLight,
		RotationDegrees: c.state.RotationDegrees(),
		Loading:         c.Loading(),
		LoadErr:         c.LoadErr(),
	}
	if a := c.loader.Current(); a != nil {
		v.Vertices = a.VertexCount()
		v.Triangles = a.TriangleCount()
	}
	return v
}
