// Package drag implements the per-control gesture state machine: long-press
// detection, drag tracking with snapping, and commit/cancel. The transition
// core is pure; timers, persistence and feedback are executed at the boundary
// by the Controller (or directly by an embedding host).
package drag

import (
	"time"

	"github.com/dodorz/pinboard/internal/geom"
	"github.com/dodorz/pinboard/internal/snap"
)

// State is the gesture state. Committed and cancelled are transient: the
// machine returns to Idle in the same transition that emits their effects.
type State int

// Gesture states.
const (
	Idle State = iota
	Pending
	Dragging
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Dragging:
		return "dragging"
	}
	return "unknown"
}

// Effect is an output of a transition, executed by the caller.
type Effect interface{ isEffect() }

// ScheduleTimer asks the host to deliver TimerFired(Seq) after Delay.
type ScheduleTimer struct {
	Seq   int
	Delay time.Duration
}

// DragStarted reports that the long press matured into a drag.
type DragStarted struct {
	Pos geom.Point
}

// PreviewAt carries the live (clamped, snapped) candidate position.
type PreviewAt struct {
	Pos     geom.Point
	Snapped bool
}

// SnapFeedback fires when the resolved position crosses between snapped and
// unsnapped, for consumers that want tactile or visual feedback.
type SnapFeedback struct {
	Snapped bool
}

// Commit carries the final position and the translation from the drag origin,
// used to move the rest of a position group.
type Commit struct {
	Pos   geom.Point
	Delta geom.Point
}

// Revert discards the in-progress position; the control shows its last
// committed placement again.
type Revert struct{}

func (ScheduleTimer) isEffect() {}
func (DragStarted) isEffect()   {}
func (PreviewAt) isEffect()     {}
func (SnapFeedback) isEffect()  {}
func (Commit) isEffect()        {}
func (Revert) isEffect()        {}

// Config tunes one machine. Resolve and Clamp are injected pure functions so
// the transition table itself stays deterministic and directly testable.
type Config struct {
	LongPressDelay time.Duration
	MoveThreshold  float64 // px, per axis, measured from the down position

	// Clamp constrains a candidate control position to the usable viewport.
	Clamp func(geom.Point) geom.Point

	// Resolve runs the snap engine over a clamped candidate.
	Resolve func(geom.Point) snap.Result
}

// Machine is the gesture state for one control. Zero value is not usable;
// construct with NewMachine.
type Machine struct {
	cfg Config

	state      State
	seq        int // increments per gesture; stale TimerFired events are ignored
	downPos    geom.Point
	grabOffset geom.Point
	origin     geom.Point // control position at pointer down
	snapped    bool
}

// NewMachine builds a machine with identity clamp/resolve defaults.
func NewMachine(cfg Config) *Machine {
	if cfg.Clamp == nil {
		cfg.Clamp = func(p geom.Point) geom.Point { return p }
	}
	if cfg.Resolve == nil {
		cfg.Resolve = func(p geom.Point) snap.Result { return snap.Result{Position: p} }
	}
	return &Machine{cfg: cfg}
}

// State returns the current gesture state.
func (m *Machine) State() State { return m.state }

// Seq returns the current gesture sequence number.
func (m *Machine) Seq() int { return m.seq }

// PointerDown starts a gesture. origin is the control's current position
// (stored or default in-flow); the grab offset keeps the control from jumping
// under the pointer when the drag starts.
func (m *Machine) PointerDown(pointer, origin geom.Point) []Effect {
	if m.state != Idle {
		return nil
	}
	m.seq++
	m.state = Pending
	m.downPos = pointer
	m.origin = origin
	m.grabOffset = pointer.Sub(origin)
	m.snapped = false
	return []Effect{ScheduleTimer{Seq: m.seq, Delay: m.cfg.LongPressDelay}}
}

// PointerMove updates a gesture. During Pending, movement past the threshold
// on either axis abandons the long press: the gesture becomes a pass-through
// tap and the scheduled timer is invalidated by the sequence guard. During
// Dragging, the candidate position is clamped, resolved and previewed.
func (m *Machine) PointerMove(pointer geom.Point) []Effect {
	switch m.state {
	case Pending:
		d := pointer.Sub(m.downPos)
		if abs(d.X) > m.cfg.MoveThreshold || abs(d.Y) > m.cfg.MoveThreshold {
			m.state = Idle
			m.seq++
		}
		return nil
	case Dragging:
		res := m.resolve(pointer)
		effects := []Effect{PreviewAt{Pos: res.Position, Snapped: res.Snapped}}
		if res.Snapped != m.snapped {
			m.snapped = res.Snapped
			effects = append(effects, SnapFeedback{Snapped: res.Snapped})
		}
		return effects
	}
	return nil
}

// PointerUp ends a gesture. A release during Pending is a normal tap and has
// no engine side effect; a release during Dragging commits the resolved
// position together with the delta from the drag origin.
func (m *Machine) PointerUp(pointer geom.Point) []Effect {
	switch m.state {
	case Pending:
		m.state = Idle
		m.seq++
		return nil
	case Dragging:
		res := m.resolve(pointer)
		m.state = Idle
		m.seq++
		m.snapped = false
		return []Effect{Commit{Pos: res.Position, Delta: res.Position.Sub(m.origin)}}
	}
	return nil
}

// PointerCancel aborts a gesture without persisting anything.
func (m *Machine) PointerCancel() []Effect {
	prev := m.state
	m.state = Idle
	m.seq++
	m.snapped = false
	if prev == Dragging {
		return []Effect{Revert{}}
	}
	return nil
}

// TimerFired delivers a long-press timer. Stale sequences (the gesture ended
// or restarted since the timer was scheduled) are ignored, so no timer ever
// acts after its owning gesture.
func (m *Machine) TimerFired(seq int) []Effect {
	if m.state != Pending || seq != m.seq {
		return nil
	}
	m.state = Dragging
	m.snapped = false
	return []Effect{DragStarted{Pos: m.origin}}
}

// resolve maps a pointer position to a clamped, snapped control position.
func (m *Machine) resolve(pointer geom.Point) snap.Result {
	target := m.cfg.Clamp(pointer.Sub(m.grabOffset))
	return m.cfg.Resolve(target)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
