package group

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/dodorz/pinboard/internal/config"
	"github.com/dodorz/pinboard/internal/geom"
	"github.com/dodorz/pinboard/internal/layout"
	"github.com/dodorz/pinboard/internal/store"
)

func newRegistry(t *testing.T) (*Registry, *layout.Store) {
	t.Helper()
	bus := store.NewBus()
	ls := layout.New(store.NewMemory(), bus, nil)
	reg := NewRegistry(store.NewMemory(), bus, ls, nil)
	return reg, ls
}

func TestCreatePositionGroup(t *testing.T) {
	reg, _ := newRegistry(t)

	if _, err := reg.CreatePositionGroup([]string{"only"}, "too small"); !errors.Is(err, ErrTooFewMembers) {
		t.Errorf("single-member create err = %v, want ErrTooFewMembers", err)
	}

	g, err := reg.CreatePositionGroup([]string{"a", "b"}, "pair")
	if err != nil {
		t.Fatal(err)
	}
	if g.Name != "pair" || len(g.ButtonIDs) != 2 {
		t.Errorf("group = %+v", g)
	}
	for _, id := range []string{"a", "b"} {
		got, ok := reg.PositionGroupOf(id)
		if !ok || got.ID != g.ID {
			t.Errorf("PositionGroupOf(%s) = %v, %v", id, got, ok)
		}
	}
}

// A control belongs to at most one position group: regrouping detaches it
// from its old group, dissolving that group if it falls under two members.
func TestRegroupingDetachesAndDissolves(t *testing.T) {
	reg, _ := newRegistry(t)

	old, err := reg.CreatePositionGroup([]string{"a", "b"}, "old")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.CreatePositionGroup([]string{"b", "c"}, "new"); err != nil {
		t.Fatal(err)
	}

	if _, ok := reg.PositionGroupOf("a"); ok {
		t.Error("a still grouped after old group dissolved")
	}
	if _, ok := reg.PositionGroupOf("b"); !ok {
		t.Error("b lost its new group")
	}
	if groups := reg.PositionGroups(); len(groups) != 1 {
		t.Errorf("groups = %d, want 1 (old %s dissolved)", len(groups), old.ID)
	}
}

func TestRemoveMemberDissolvesBelowMinimum(t *testing.T) {
	reg, _ := newRegistry(t)
	g, err := reg.CreatePositionGroup([]string{"a", "b", "c"}, "trio")
	if err != nil {
		t.Fatal(err)
	}

	if err := reg.RemoveMember(g.ID, "c"); err != nil {
		t.Fatal(err)
	}
	if _, ok := reg.PositionGroupOf("a"); !ok {
		t.Fatal("group dissolved too early")
	}

	if err := reg.RemoveMember(g.ID, "b"); err != nil {
		t.Fatal(err)
	}
	if _, ok := reg.PositionGroupOf("a"); ok {
		t.Error("group with one member survived")
	}
	if err := reg.RemoveMember(g.ID, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("remove from dissolved group err = %v, want ErrNotFound", err)
	}
}

func TestMoveTogetherSkipsUnplacedMembers(t *testing.T) {
	reg, ls := newRegistry(t)
	ls.SetPosition("a", geom.Point{X: 10, Y: 10})
	ls.SetPosition("b", geom.Point{X: 50, Y: 10})
	// "c" has no stored position.
	if _, err := reg.CreatePositionGroup([]string{"a", "b", "c"}, "mixed"); err != nil {
		t.Fatal(err)
	}

	reg.MoveOthersTogether("a", geom.Point{X: 5, Y: 20})

	if got, _ := ls.Position("a"); got != (geom.Point{X: 10, Y: 10}) {
		t.Errorf("anchor moved to %v", got)
	}
	if got, _ := ls.Position("b"); got != (geom.Point{X: 55, Y: 30}) {
		t.Errorf("b = %v, want (55,30)", got)
	}
	if _, ok := ls.Position("c"); ok {
		t.Error("unplaced member gained a position")
	}
}

func TestMoveTogetherUngroupedAnchorIsNoop(t *testing.T) {
	reg, ls := newRegistry(t)
	ls.SetPosition("solo", geom.Point{X: 10, Y: 10})
	reg.MoveOthersTogether("solo", geom.Point{X: 100, Y: 100})
	if got, _ := ls.Position("solo"); got != (geom.Point{X: 10, Y: 10}) {
		t.Errorf("ungrouped anchor moved to %v", got)
	}
}

func TestUIGroupLifecycle(t *testing.T) {
	reg, _ := newRegistry(t)

	g := reg.CreateUIGroup([]string{"a"}, "hud")
	if g.HoverEffect != HoverNone {
		t.Errorf("new group hover = %v, want none", g.HoverEffect)
	}

	// UI groups persist below two members.
	if err := reg.ToggleCollapse(g.ID); err != nil {
		t.Fatal(err)
	}
	got, ok := reg.UIGroup(g.ID)
	if !ok || !got.IsCollapsed {
		t.Errorf("after toggle: %+v, %v", got, ok)
	}
	if err := reg.SetHoverEffect(g.ID, HoverGlow); err != nil {
		t.Fatal(err)
	}
	if got, _ := reg.UIGroup(g.ID); got.HoverEffect != HoverGlow {
		t.Errorf("hover = %v, want glow", got.HoverEffect)
	}

	if err := reg.DeleteUIGroup(g.ID); err != nil {
		t.Fatal(err)
	}
	if err := reg.DeleteUIGroup(g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete err = %v, want ErrNotFound", err)
	}
}

func TestReorderWithinUIGroup(t *testing.T) {
	reg, _ := newRegistry(t)

	tests := []struct {
		name     string
		from, to int
		want     []string
		wantErr  bool
	}{
		{name: "forward", from: 0, to: 2, want: []string{"b", "c", "a", "d"}},
		{name: "backward", from: 3, to: 0, want: []string{"d", "a", "b", "c"}},
		{name: "from out of range", from: 4, to: 0, wantErr: true},
		{name: "to out of range", from: 0, to: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fresh := reg.CreateUIGroup([]string{"a", "b", "c", "d"}, "row")
			err := reg.Reorder(fresh.ID, tt.from, tt.to)
			if tt.wantErr {
				if !errors.Is(err, ErrIndexOutOfRange) {
					t.Errorf("err = %v, want ErrIndexOutOfRange", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			got, _ := reg.UIGroup(fresh.ID)
			if !slices.Equal(got.ButtonIDs, tt.want) {
				t.Errorf("order = %v, want %v", got.ButtonIDs, tt.want)
			}
		})
	}
}

func TestMoveBetweenUIGroups(t *testing.T) {
	reg, _ := newRegistry(t)
	src := reg.CreateUIGroup([]string{"a", "b"}, "src")
	dst := reg.CreateUIGroup([]string{"x", "y"}, "dst")

	if err := reg.MoveBetween(src.ID, dst.ID, "a", 1); err != nil {
		t.Fatal(err)
	}
	gotSrc, _ := reg.UIGroup(src.ID)
	gotDst, _ := reg.UIGroup(dst.ID)
	if !slices.Equal(gotSrc.ButtonIDs, []string{"b"}) {
		t.Errorf("src = %v, want [b]", gotSrc.ButtonIDs)
	}
	if !slices.Equal(gotDst.ButtonIDs, []string{"x", "a", "y"}) {
		t.Errorf("dst = %v, want [x a y]", gotDst.ButtonIDs)
	}

	// Appending at len(target) is valid.
	if err := reg.MoveBetween(src.ID, dst.ID, "b", 3); err != nil {
		t.Fatal(err)
	}
	gotSrc, _ = reg.UIGroup(src.ID)
	gotDst, _ = reg.UIGroup(dst.ID)
	if len(gotSrc.ButtonIDs) != 0 {
		t.Errorf("emptied src = %v, want []", gotSrc.ButtonIDs)
	}
	if !slices.Equal(gotDst.ButtonIDs, []string{"x", "a", "y", "b"}) {
		t.Errorf("dst = %v, want [x a y b]", gotDst.ButtonIDs)
	}

	// The emptied source group is kept, not dissolved.
	if _, ok := reg.UIGroup(src.ID); !ok {
		t.Error("emptied source group was dissolved")
	}

	if err := reg.MoveBetween(src.ID, dst.ID, "nope", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing member err = %v, want ErrNotFound", err)
	}
	if err := reg.MoveBetween(dst.ID, src.ID, "x", 5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("bad index err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestMoveBetweenRejectsSameGroup(t *testing.T) {
	reg, _ := newRegistry(t)
	g := reg.CreateUIGroup([]string{"a", "b"}, "hud")

	// targetIndex == len would pass an append bounds check, but moving
	// within one group is Reorder's job.
	if err := reg.MoveBetween(g.ID, g.ID, "a", 2); !errors.Is(err, ErrSameGroup) {
		t.Fatalf("same-group err = %v, want ErrSameGroup", err)
	}

	got, _ := reg.UIGroup(g.ID)
	if !slices.Equal(got.ButtonIDs, []string{"a", "b"}) {
		t.Errorf("members = %v, want [a b] unchanged", got.ButtonIDs)
	}
}

func TestGroupNamesAreClipped(t *testing.T) {
	reg, _ := newRegistry(t)
	long := strings.Repeat("é", config.MaxGroupNameLength+10)

	pg, err := reg.CreatePositionGroup([]string{"a", "b"}, long)
	if err != nil {
		t.Fatal(err)
	}
	if n := len([]rune(pg.Name)); n != config.MaxGroupNameLength {
		t.Errorf("position group name length = %d, want %d", n, config.MaxGroupNameLength)
	}

	ug := reg.CreateUIGroup([]string{"c"}, long)
	if n := len([]rune(ug.Name)); n != config.MaxGroupNameLength {
		t.Errorf("ui group name length = %d, want %d", n, config.MaxGroupNameLength)
	}

	short := reg.CreateUIGroup([]string{"d"}, "hud")
	if short.Name != "hud" {
		t.Errorf("short name = %q, want unchanged", short.Name)
	}
}

func TestRegistryRoundTripsThroughStore(t *testing.T) {
	bus := store.NewBus()
	kv := store.NewMemory()
	ls := layout.New(store.NewMemory(), bus, nil)

	reg := NewRegistry(kv, bus, ls, nil)
	g, err := reg.CreatePositionGroup([]string{"a", "b"}, "persisted")
	if err != nil {
		t.Fatal(err)
	}
	ui := reg.CreateUIGroup([]string{"c"}, "hud")

	// A fresh registry over the same kv sees both groups.
	reloaded := NewRegistry(kv, bus, ls, nil)
	if _, ok := reloaded.PositionGroupOf("a"); !ok {
		t.Error("position group lost across reload")
	}
	if got, ok := reloaded.UIGroup(ui.ID); !ok || got.Name != "hud" {
		t.Errorf("ui group after reload = %v, %v", got, ok)
	}
	if got, ok := reloaded.PositionGroupOf("b"); !ok || got.ID != g.ID {
		t.Errorf("PositionGroupOf(b) = %v, %v", got, ok)
	}
}

func TestInstantiateTemplate(t *testing.T) {
	reg, _ := newRegistry(t)

	tmpl, ok := TemplateByID("movement")
	if !ok {
		t.Fatal("movement template missing")
	}

	g, created := reg.Instantiate(tmpl, []string{"move-up", "move-down", "unrelated"})
	if !created {
		t.Fatal("template with matching controls not instantiated")
	}
	if !slices.Equal(g.ButtonIDs, []string{"move-up", "move-down"}) {
		t.Errorf("members = %v, want intersection only", g.ButtonIDs)
	}

	if _, created := reg.Instantiate(tmpl, []string{"unrelated"}); created {
		t.Error("empty intersection still created a group")
	}
}
