// Package pinboard is the embeddable surface of the drag-to-place layout
// engine: a pure gesture state machine, spatial snapping, persistent control
// positions and visual attributes, grouping, and full-state presets.
//
// # Basic Usage
//
// Create an engine over an in-memory store and feed it pointer events:
//
//	eng, err := pinboard.New(pinboard.WithControls("jump", "fire", "menu"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer eng.Close()
//
//	ctl := eng.Controller("jump")
//	for _, eff := range ctl.PointerDown(p) {
//		if t, ok := eff.(drag.ScheduleTimer); ok {
//			// deliver ctl.TimerFired(t.Seq) after t.Delay
//		}
//	}
//
// # Persistence
//
// Supply a file- or redis-backed store to keep layouts across runs:
//
//	kv, err := store.NewFile(dir)
//	eng, err := pinboard.New(pinboard.WithStore(kv))
//
// # Interactive Demo
//
// The playground package wraps an Engine in a Bubble Tea program; run the
// pinboard command for the full experience.
package pinboard

import (
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/dodorz/pinboard/internal/config"
	"github.com/dodorz/pinboard/internal/drag"
	"github.com/dodorz/pinboard/internal/geom"
	"github.com/dodorz/pinboard/internal/group"
	"github.com/dodorz/pinboard/internal/layout"
	"github.com/dodorz/pinboard/internal/playground"
	"github.com/dodorz/pinboard/internal/preset"
	"github.com/dodorz/pinboard/internal/snap"
	"github.com/dodorz/pinboard/internal/store"
)

// Options configures an Engine.
type Options struct {
	// Store is the persistence backend. Defaults to in-memory.
	Store store.KV

	// UserConfig carries gesture and snapping tuning. If nil, defaults
	// are used.
	UserConfig *config.UserConfig

	// Viewport is the usable area in pixels.
	Viewport geom.Size

	// HalfSize is half the control extent, used for clamping and edge
	// snapping.
	HalfSize geom.Size

	// Controls is the set of draggable control ids.
	Controls []string

	// Logger receives storage warnings. Defaults to the standard logger.
	Logger *log.Logger
}

// Option is a functional option for configuring an Engine.
type Option func(*Options)

// WithStore sets the persistence backend.
func WithStore(kv store.KV) Option {
	return func(o *Options) { o.Store = kv }
}

// WithUserConfig sets gesture and snapping tuning.
func WithUserConfig(cfg *config.UserConfig) Option {
	return func(o *Options) { o.UserConfig = cfg }
}

// WithViewport sets the usable area.
func WithViewport(width, height float64) Option {
	return func(o *Options) { o.Viewport = geom.Size{Width: width, Height: height} }
}

// WithControlSize sets the full control extent.
func WithControlSize(width, height float64) Option {
	return func(o *Options) { o.HalfSize = geom.Size{Width: width / 2, Height: height / 2} }
}

// WithControls declares the draggable control ids.
func WithControls(ids ...string) Option {
	return func(o *Options) { o.Controls = ids }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		Viewport: geom.Size{Width: config.DefaultViewportWidth, Height: config.DefaultViewportHeight},
		HalfSize: geom.Size{Width: config.DefaultControlHalfWidth, Height: config.DefaultControlHalfHeight},
	}
}

// Engine owns the stores and one drag controller per control.
type Engine struct {
	opts Options
	cfg  *config.UserConfig

	kv       store.KV
	bus      *store.Bus
	layout   *layout.Store
	registry *group.Registry
	presets  *preset.Manager

	controllers map[string]*drag.Controller
}

// New creates an engine.
func New(opts ...Option) (*Engine, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Store == nil {
		options.Store = store.NewMemory()
	}
	if options.UserConfig == nil {
		options.UserConfig = config.DefaultConfig()
	}
	if options.Logger == nil {
		options.Logger = log.Default()
	}

	bus := store.NewBus()
	ls := layout.New(options.Store, bus, options.Logger)
	reg := group.NewRegistry(options.Store, bus, ls, options.Logger)
	pm := preset.NewManager(options.Store, bus, ls, reg, options.Logger)

	e := &Engine{
		opts:        options,
		cfg:         options.UserConfig,
		kv:          options.Store,
		bus:         bus,
		layout:      ls,
		registry:    reg,
		presets:     pm,
		controllers: make(map[string]*drag.Controller, len(options.Controls)),
	}
	for _, id := range options.Controls {
		e.controllers[id] = e.newController(id)
	}
	return e, nil
}

func (e *Engine) newController(id string) *drag.Controller {
	return drag.NewController(id, drag.Config{
		LongPressDelay: e.cfg.LongPressDelay(),
		MoveThreshold:  e.cfg.Gesture.MoveThreshold,
		Clamp: func(p geom.Point) geom.Point {
			return geom.ClampToViewport(p, e.opts.Viewport, e.opts.HalfSize, e.cfg.Snapping.EdgePadding)
		},
		Resolve: func(p geom.Point) snap.Result {
			if g := e.cfg.Snapping.GridSize; g > 0 {
				return snap.ResolveGrid(p, g)
			}
			return snap.Resolve(p, e.snapOptions(), e.layout.Points())
		},
	}, e.layout, e.registry)
}

func (e *Engine) snapOptions() snap.Options {
	return snap.Options{
		Viewport:      e.opts.Viewport,
		HalfSize:      e.opts.HalfSize,
		EdgePadding:   e.cfg.Snapping.EdgePadding,
		EdgeThreshold: e.cfg.Snapping.EdgeThreshold,
		MagnetRadius:  e.cfg.Snapping.MagnetRadius,
	}
}

// Controller returns the drag controller for a control id, creating one for
// ids not declared up front.
func (e *Engine) Controller(id string) *drag.Controller {
	ctl, ok := e.controllers[id]
	if !ok {
		ctl = e.newController(id)
		e.controllers[id] = ctl
	}
	return ctl
}

// Layout exposes the position and attribute store.
func (e *Engine) Layout() *layout.Store { return e.layout }

// Groups exposes the group registry.
func (e *Engine) Groups() *group.Registry { return e.registry }

// Presets exposes the preset manager.
func (e *Engine) Presets() *preset.Manager { return e.presets }

// Bus exposes the change-notification bus.
func (e *Engine) Bus() *store.Bus { return e.bus }

// Close releases the storage backend.
func (e *Engine) Close() error {
	return e.kv.Close()
}

// NewPlayground builds the interactive terminal demo as a tea.Model.
func NewPlayground(cfg *config.UserConfig, kv store.KV, controls []string, logger *log.Logger) tea.Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if kv == nil {
		kv = store.NewMemory()
	}
	return playground.New(cfg, kv, controls, logger)
}
