package drag

import (
	"github.com/dodorz/pinboard/internal/geom"
	"github.com/dodorz/pinboard/internal/group"
	"github.com/dodorz/pinboard/internal/layout"
)

// Controller binds one control's machine to the stores: it resolves the drag
// origin, persists commits, synchronizes position groups, and surfaces the
// snap feedback signal. Timer scheduling stays with the host — the returned
// ScheduleTimer effects must be fed back via TimerFired.
type Controller struct {
	id       string
	machine  *Machine
	layout   *layout.Store
	registry *group.Registry

	// DefaultPos supplies the in-flow position used when the control has no
	// stored placement yet.
	DefaultPos geom.Point

	// OnCommit is called after a committed position (and any group
	// synchronization) has been written.
	OnCommit func(id string, pos geom.Point)

	// OnSnapChange is the discrete feedback hook, fired when the live
	// position crosses between snapped and unsnapped.
	OnSnapChange func(id string, snapped bool)

	// SelectionActive and ToggleSelect implement the grouping-selection
	// intercept: while active, pointer downs toggle membership in the
	// transient selection set and never start a gesture.
	SelectionActive func() bool
	ToggleSelect    func(id string)
}

// NewController builds a controller for one control.
func NewController(id string, cfg Config, ls *layout.Store, reg *group.Registry) *Controller {
	return &Controller{
		id:       id,
		machine:  NewMachine(cfg),
		layout:   ls,
		registry: reg,
	}
}

// ID returns the control id this controller drives.
func (c *Controller) ID() string { return c.id }

// State returns the current gesture state.
func (c *Controller) State() State { return c.machine.State() }

// PointerDown routes a press. In selection mode the press only toggles the
// control's selection membership.
func (c *Controller) PointerDown(pointer geom.Point) []Effect {
	if c.SelectionActive != nil && c.SelectionActive() {
		if c.ToggleSelect != nil {
			c.ToggleSelect(c.id)
		}
		return nil
	}
	origin := c.DefaultPos
	if p, ok := c.layout.Position(c.id); ok {
		origin = p
	}
	return c.machine.PointerDown(pointer, origin)
}

// PointerMove forwards motion and runs the feedback hook.
func (c *Controller) PointerMove(pointer geom.Point) []Effect {
	return c.run(c.machine.PointerMove(pointer))
}

// PointerUp forwards the release; a commit is persisted before returning.
func (c *Controller) PointerUp(pointer geom.Point) []Effect {
	return c.run(c.machine.PointerUp(pointer))
}

// PointerCancel aborts the gesture; nothing is persisted.
func (c *Controller) PointerCancel() []Effect {
	return c.run(c.machine.PointerCancel())
}

// TimerFired delivers a previously scheduled long-press timer.
func (c *Controller) TimerFired(seq int) []Effect {
	return c.run(c.machine.TimerFired(seq))
}

// run executes the side-effecting subset of the machine's output and passes
// everything through for the host's rendering layer.
func (c *Controller) run(effects []Effect) []Effect {
	for _, e := range effects {
		switch e := e.(type) {
		case Commit:
			c.layout.SetPosition(c.id, e.Pos)
			c.registry.MoveOthersTogether(c.id, e.Delta)
			if c.OnCommit != nil {
				c.OnCommit(c.id, e.Pos)
			}
		case SnapFeedback:
			if c.OnSnapChange != nil {
				c.OnSnapChange(c.id, e.Snapped)
			}
		}
	}
	return effects
}
