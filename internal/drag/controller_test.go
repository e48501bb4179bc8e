package drag

import (
	"testing"
	"time"

	"github.com/dodorz/pinboard/internal/geom"
	"github.com/dodorz/pinboard/internal/group"
	"github.com/dodorz/pinboard/internal/layout"
	"github.com/dodorz/pinboard/internal/snap"
	"github.com/dodorz/pinboard/internal/store"
)

func newFixture(t *testing.T) (*layout.Store, *group.Registry) {
	t.Helper()
	bus := store.NewBus()
	ls := layout.New(store.NewMemory(), bus, nil)
	reg := group.NewRegistry(store.NewMemory(), bus, ls, nil)
	return ls, reg
}

func snapConfig() Config {
	opts := snap.Options{
		Viewport:      geom.Size{Width: 800, Height: 600},
		HalfSize:      geom.Size{Width: 24, Height: 24},
		EdgePadding:   16,
		EdgeThreshold: 30,
		MagnetRadius:  50,
	}
	return Config{
		LongPressDelay: 1500 * time.Millisecond,
		MoveThreshold:  10,
		Clamp: func(p geom.Point) geom.Point {
			return geom.ClampToViewport(p, opts.Viewport, opts.HalfSize, opts.EdgePadding)
		},
		Resolve: func(p geom.Point) snap.Result {
			return snap.Resolve(p, opts, nil)
		},
	}
}

// Full gesture against live stores: long press at the control's center, drag
// into the top-left corner, release. With padding 16 and a 48px control the
// commit lands at (40,40) and reports snapped along the way.
func TestControllerCornerDragCommits(t *testing.T) {
	ls, reg := newFixture(t)
	ctl := NewController("jump", snapConfig(), ls, reg)
	ls.SetPosition("jump", geom.Point{X: 100, Y: 100})

	var snapStates []bool
	ctl.OnSnapChange = func(_ string, snapped bool) { snapStates = append(snapStates, snapped) }
	var committed geom.Point
	ctl.OnCommit = func(_ string, pos geom.Point) { committed = pos }

	down := ctl.PointerDown(geom.Point{X: 100, Y: 100})
	ctl.TimerFired(scheduledSeq(t, down))

	effects := ctl.PointerMove(geom.Point{X: 5, Y: 5})
	preview, ok := effects[0].(PreviewAt)
	if !ok {
		t.Fatalf("effect = %T, want PreviewAt", effects[0])
	}
	if preview.Pos != (geom.Point{X: 40, Y: 40}) {
		t.Errorf("corner preview = %v, want (40,40)", preview.Pos)
	}
	if !preview.Snapped {
		t.Error("corner preview should be snapped")
	}
	if len(snapStates) != 1 || !snapStates[0] {
		t.Errorf("snap feedback = %v, want [true]", snapStates)
	}

	ctl.PointerUp(geom.Point{X: 5, Y: 5})

	if committed != (geom.Point{X: 40, Y: 40}) {
		t.Errorf("OnCommit pos = %v, want (40,40)", committed)
	}
	got, ok := ls.Position("jump")
	if !ok {
		t.Fatal("no stored position after commit")
	}
	if got != (geom.Point{X: 40, Y: 40}) {
		t.Errorf("stored position = %v, want (40,40)", got)
	}
	if ctl.State() != Idle {
		t.Errorf("state = %v, want Idle", ctl.State())
	}
}

// First-ever drag of a control with no stored position uses the supplied
// default placement as the origin.
func TestControllerDefaultOrigin(t *testing.T) {
	ls, reg := newFixture(t)
	ctl := NewController("menu", snapConfig(), ls, reg)
	ctl.DefaultPos = geom.Point{X: 400, Y: 300}

	down := ctl.PointerDown(geom.Point{X: 410, Y: 310}) // 10,10 off the default center
	ctl.TimerFired(scheduledSeq(t, down))
	effects := ctl.PointerMove(geom.Point{X: 210, Y: 210})
	preview := effects[0].(PreviewAt)
	if preview.Pos != (geom.Point{X: 200, Y: 200}) {
		t.Errorf("preview = %v, want (200,200)", preview.Pos)
	}
}

func TestControllerMovesPositionGroup(t *testing.T) {
	ls, reg := newFixture(t)
	ls.SetPosition("a", geom.Point{X: 100, Y: 100})
	ls.SetPosition("b", geom.Point{X: 160, Y: 100})
	ls.SetPosition("c", geom.Point{X: 220, Y: 100})
	if _, err := reg.CreatePositionGroup([]string{"a", "b", "c"}, "row"); err != nil {
		t.Fatal(err)
	}

	ctl := NewController("a", snapConfig(), ls, reg)
	down := ctl.PointerDown(geom.Point{X: 100, Y: 100})
	ctl.TimerFired(scheduledSeq(t, down))
	ctl.PointerMove(geom.Point{X: 100, Y: 200})
	ctl.PointerUp(geom.Point{X: 100, Y: 200})

	wants := map[string]geom.Point{
		"a": {X: 100, Y: 200},
		"b": {X: 160, Y: 200},
		"c": {X: 220, Y: 200},
	}
	for id, want := range wants {
		got, ok := ls.Position(id)
		if !ok {
			t.Fatalf("no position for %s", id)
		}
		if got != want {
			t.Errorf("position[%s] = %v, want %v", id, got, want)
		}
	}
}

// Cancelling mid-drag leaves every stored position untouched.
func TestControllerCancelPersistsNothing(t *testing.T) {
	ls, reg := newFixture(t)
	ls.SetPosition("x", geom.Point{X: 100, Y: 100})
	ctl := NewController("x", snapConfig(), ls, reg)

	down := ctl.PointerDown(geom.Point{X: 100, Y: 100})
	ctl.TimerFired(scheduledSeq(t, down))
	ctl.PointerMove(geom.Point{X: 300, Y: 300})
	ctl.PointerCancel()

	got, _ := ls.Position("x")
	if got != (geom.Point{X: 100, Y: 100}) {
		t.Errorf("position after cancel = %v, want (100,100)", got)
	}
}

func TestControllerSelectionModeToggles(t *testing.T) {
	ls, reg := newFixture(t)
	ctl := NewController("pick", snapConfig(), ls, reg)

	active := true
	var toggled []string
	ctl.SelectionActive = func() bool { return active }
	ctl.ToggleSelect = func(id string) { toggled = append(toggled, id) }

	if effects := ctl.PointerDown(geom.Point{X: 50, Y: 50}); len(effects) != 0 {
		t.Errorf("selection-mode press produced effects: %v", effects)
	}
	if ctl.State() != Idle {
		t.Errorf("state = %v, want Idle", ctl.State())
	}
	if len(toggled) != 1 || toggled[0] != "pick" {
		t.Errorf("toggled = %v, want [pick]", toggled)
	}

	// Leaving selection mode restores normal gesture handling.
	active = false
	if effects := ctl.PointerDown(geom.Point{X: 50, Y: 50}); len(effects) != 1 {
		t.Errorf("normal press effects = %v, want ScheduleTimer", effects)
	}
	if ctl.State() != Pending {
		t.Errorf("state = %v, want Pending", ctl.State())
	}
}
