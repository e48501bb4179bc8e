// Package playground is an interactive terminal demo of the layout engine:
// draggable controls on a canvas with live snapping, grouping and presets.
// Terminal cells stand in for pixels, so the snap distances here are scaled
// down from the engine defaults.
package playground

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"

	"github.com/dodorz/pinboard/internal/config"
	"github.com/dodorz/pinboard/internal/drag"
	"github.com/dodorz/pinboard/internal/geom"
	"github.com/dodorz/pinboard/internal/group"
	"github.com/dodorz/pinboard/internal/layout"
	"github.com/dodorz/pinboard/internal/preset"
	"github.com/dodorz/pinboard/internal/snap"
	"github.com/dodorz/pinboard/internal/store"
)

// Cell-scale tuning. A terminal cell is roughly 8x16 real pixels, so the
// engine's pixel distances shrink accordingly.
const (
	controlWidth  = 11
	controlHeight = 3

	cellEdgePadding   = 2.0
	cellEdgeThreshold = 4.0
	cellMagnetRadius  = 5.0
	cellMoveThreshold = 1.0

	statusHeight = 2
)

// timerMsg delivers a long-press timer to one control's machine. Seq guards
// against timers outliving their gesture.
type timerMsg struct {
	ID  string
	Seq int
}

// flashClearMsg ends the snap feedback flash.
type flashClearMsg struct{}

// Model is the playground's bubbletea model.
type Model struct {
	cfg *config.UserConfig
	log *log.Logger

	layout   *layout.Store
	registry *group.Registry
	presets  *preset.Manager

	controls    []string
	controllers map[string]*drag.Controller

	width  int
	height int

	// active is the control owning the in-flight gesture, if any.
	active string

	// preview overrides the stored position of the dragged control.
	preview    map[string]geom.Point
	hasPreview bool

	selecting bool
	selected  map[string]bool

	snapFlash bool
	status    string
	showHelp  bool
	quitting  bool
}

// New wires a playground over the given stores. controls is the set of
// draggable control ids, rendered in declaration order when unplaced.
func New(cfg *config.UserConfig, kv store.KV, controls []string, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.Default()
	}
	bus := store.NewBus()
	ls := layout.New(kv, bus, logger)
	reg := group.NewRegistry(kv, bus, ls, logger)
	pm := preset.NewManager(kv, bus, ls, reg, logger)

	m := &Model{
		cfg:         cfg,
		log:         logger,
		layout:      ls,
		registry:    reg,
		presets:     pm,
		controls:    controls,
		controllers: make(map[string]*drag.Controller, len(controls)),
		preview:     make(map[string]geom.Point),
		selected:    make(map[string]bool),
		width:       80,
		height:      24,
		status:      "hold a button to drag; ? for help",
	}
	for _, id := range controls {
		m.controllers[id] = m.newController(id)
	}
	return m
}

func (m *Model) newController(id string) *drag.Controller {
	ctl := drag.NewController(id, drag.Config{
		LongPressDelay: m.cfg.LongPressDelay(),
		MoveThreshold:  cellMoveThreshold,
		Clamp: func(p geom.Point) geom.Point {
			return geom.ClampToViewport(p, m.viewport(), m.halfSize(), cellEdgePadding)
		},
		Resolve: func(p geom.Point) snap.Result {
			if g := m.cfg.Snapping.GridSize; g > 0 {
				return snap.ResolveGrid(p, g)
			}
			return snap.Resolve(p, m.snapOptions(), m.layout.Points())
		},
	}, m.layout, m.registry)
	ctl.OnCommit = func(id string, pos geom.Point) {
		m.status = fmt.Sprintf("%s placed at (%.0f, %.0f)", id, pos.X, pos.Y)
	}
	ctl.OnSnapChange = func(_ string, snapped bool) {
		m.snapFlash = snapped
	}
	ctl.SelectionActive = func() bool { return m.selecting }
	ctl.ToggleSelect = func(id string) {
		m.selected[id] = !m.selected[id]
		if !m.selected[id] {
			delete(m.selected, id)
		}
		m.status = fmt.Sprintf("%d selected", len(m.selected))
	}
	return ctl
}

func (m *Model) viewport() geom.Size {
	return geom.Size{Width: float64(m.width), Height: float64(m.height - statusHeight)}
}

func (m *Model) halfSize() geom.Size {
	return geom.Size{Width: controlWidth / 2.0, Height: controlHeight / 2.0}
}

func (m *Model) snapOptions() snap.Options {
	return snap.Options{
		Viewport:      m.viewport(),
		HalfSize:      m.halfSize(),
		EdgePadding:   cellEdgePadding,
		EdgeThreshold: cellEdgeThreshold,
		MagnetRadius:  cellMagnetRadius,
	}
}

// positionOf returns where a control is drawn: live preview, stored position,
// or its default in-flow slot.
func (m *Model) positionOf(id string) geom.Point {
	if p, ok := m.preview[id]; ok {
		return p
	}
	if p, ok := m.layout.Position(id); ok {
		return p
	}
	return m.defaultPos(id)
}

// defaultPos lays unplaced controls out in a row across the top.
func (m *Model) defaultPos(id string) geom.Point {
	idx := 0
	for i, c := range m.controls {
		if c == id {
			idx = i
			break
		}
	}
	x := cellEdgePadding + m.halfSize().Width + float64(idx)*(controlWidth+2)
	return geom.Point{X: x, Y: cellEdgePadding + m.halfSize().Height}
}

// hitTest returns the topmost control under the pointer. The dragged control
// always wins so fast motion cannot drop the grab.
func (m *Model) hitTest(x, y float64) (string, bool) {
	if m.active != "" {
		return m.active, true
	}
	half := m.halfSize()
	for i := len(m.controls) - 1; i >= 0; i-- {
		id := m.controls[i]
		if m.layout.IsHidden(id) {
			continue
		}
		p := m.positionOf(id)
		if x >= p.X-half.Width-config.DefaultGrabSlack/4 && x <= p.X+half.Width+config.DefaultGrabSlack/4 &&
			y >= p.Y-half.Height && y <= p.Y+half.Height {
			return id, true
		}
	}
	return "", false
}

// Engaged reports whether a pointer gesture is in flight. Hosts use it to
// drop idle mouse motion before it reaches Update.
func (m *Model) Engaged() bool {
	return m.active != ""
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.MouseClickMsg:
		return m.handleMouseDown(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMove(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseUp(msg)

	case timerMsg:
		if ctl, ok := m.controllers[msg.ID]; ok {
			m.applyEffects(msg.ID, ctl.TimerFired(msg.Seq))
		}
		return m, nil

	case flashClearMsg:
		m.snapFlash = false
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleMouseDown(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	mouse := msg.Mouse()
	if mouse.Button != tea.MouseLeft {
		return m, nil
	}
	x, y := float64(mouse.X), float64(mouse.Y)
	id, ok := m.hitTest(x, y)
	if !ok {
		return m, nil
	}
	m.active = id
	effects := m.controllers[id].PointerDown(geom.Point{X: x, Y: y})
	return m, m.applyEffects(id, effects)
}

func (m *Model) handleMouseMove(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if m.active == "" {
		return m, nil
	}
	mouse := msg.Mouse()
	effects := m.controllers[m.active].PointerMove(geom.Point{X: float64(mouse.X), Y: float64(mouse.Y)})
	return m, m.applyEffects(m.active, effects)
}

func (m *Model) handleMouseUp(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if m.active == "" {
		return m, nil
	}
	mouse := msg.Mouse()
	id := m.active
	effects := m.controllers[id].PointerUp(geom.Point{X: float64(mouse.X), Y: float64(mouse.Y)})
	cmd := m.applyEffects(id, effects)
	if m.controllers[id].State() == drag.Idle {
		m.active = ""
	}
	return m, cmd
}

// applyEffects folds the machine's effects into model state and returns any
// commands (timer scheduling, flash expiry) they require.
func (m *Model) applyEffects(id string, effects []drag.Effect) tea.Cmd {
	var cmds []tea.Cmd
	for _, e := range effects {
		switch e := e.(type) {
		case drag.ScheduleTimer:
			seq := e.Seq
			cmds = append(cmds, tea.Tick(e.Delay, func(time.Time) tea.Msg {
				return timerMsg{ID: id, Seq: seq}
			}))
		case drag.DragStarted:
			m.preview[id] = e.Pos
			m.hasPreview = true
			m.status = fmt.Sprintf("dragging %s", id)
		case drag.PreviewAt:
			m.preview[id] = e.Pos
		case drag.SnapFeedback:
			if e.Snapped {
				cmds = append(cmds, tea.Tick(config.SnapFlashDuration, func(time.Time) tea.Msg {
					return flashClearMsg{}
				}))
			}
		case drag.Commit, drag.Revert:
			delete(m.preview, id)
			m.hasPreview = len(m.preview) > 0
			m.snapFlash = false
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "G":
		m.selecting = !m.selecting
		if m.selecting {
			m.status = "selection mode: click buttons, then g or U"
		} else {
			m.selected = make(map[string]bool)
			m.status = "selection cancelled"
		}
		return m, nil

	case "g":
		return m.createGroup(true)

	case "U":
		return m.createGroup(false)

	case "u":
		if g, ok := m.registry.PositionGroupOf(m.lastSelected()); ok {
			_ = m.registry.DeletePositionGroup(g.ID)
			m.status = fmt.Sprintf("ungrouped %q", g.Name)
		}
		return m, nil

	case "m":
		center := geom.Point{X: m.viewport().Width / 2, Y: m.viewport().Height / 2}
		pt := m.layout.AddPoint(fmt.Sprintf("point %d", len(m.layout.Points())+1), center)
		m.status = fmt.Sprintf("magnetic point %q at (%.0f, %.0f)", pt.Name, pt.Position.X, pt.Position.Y)
		return m, nil

	case "x":
		pts := m.layout.Points()
		if len(pts) == 0 {
			m.status = "no magnetic points"
			return m, nil
		}
		last := pts[len(pts)-1]
		m.layout.RemovePoint(last.ID)
		m.status = fmt.Sprintf("removed magnetic point %q", last.Name)
		return m, nil

	case "p":
		saved := m.presets.Save(time.Now().Format("15:04:05"), true)
		m.status = fmt.Sprintf("saved preset %q", saved.Name)
		return m, nil

	case "r":
		list := m.presets.List()
		if len(list) == 0 {
			m.status = "no presets saved"
			return m, nil
		}
		if err := m.presets.Restore(list[0].ID); err != nil {
			m.status = fmt.Sprintf("restore failed: %v", err)
			return m, nil
		}
		m.status = fmt.Sprintf("restored preset %q", list[0].Name)
		return m, nil

	case "e":
		text, err := m.presets.ExportLayoutText()
		if err != nil {
			m.status = fmt.Sprintf("export failed: %v", err)
			return m, nil
		}
		if err := clipboard.WriteAll(text); err != nil {
			m.status = fmt.Sprintf("clipboard unavailable: %v", err)
			return m, nil
		}
		m.status = "layout copied to clipboard"
		return m, nil

	case "R":
		m.layout.ClearPositions()
		m.status = "positions reset to default flow"
		return m, nil
	}
	return m, nil
}

// createGroup makes a position group (positional == true) or a UI group from
// the current selection, then leaves selection mode.
func (m *Model) createGroup(positional bool) (tea.Model, tea.Cmd) {
	ids := make([]string, 0, len(m.selected))
	for _, c := range m.controls {
		if m.selected[c] {
			ids = append(ids, c)
		}
	}
	if positional {
		g, err := m.registry.CreatePositionGroup(ids, fmt.Sprintf("group %d", len(m.registry.PositionGroups())+1))
		if err != nil {
			m.status = fmt.Sprintf("cannot group: %v", err)
			return m, nil
		}
		m.status = fmt.Sprintf("position group %q with %d buttons", g.Name, len(g.ButtonIDs))
	} else {
		if len(ids) == 0 {
			m.status = "nothing selected"
			return m, nil
		}
		g := m.registry.CreateUIGroup(ids, fmt.Sprintf("panel %d", len(m.registry.UIGroups())+1))
		m.status = fmt.Sprintf("ui group %q with %d buttons", g.Name, len(g.ButtonIDs))
	}
	m.selecting = false
	m.selected = make(map[string]bool)
	return m, nil
}

func (m *Model) lastSelected() string {
	for _, c := range m.controls {
		if m.selected[c] {
			return c
		}
	}
	if m.active != "" {
		return m.active
	}
	if len(m.controls) > 0 {
		return m.controls[0]
	}
	return ""
}
