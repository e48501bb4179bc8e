package layout

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/dodorz/pinboard/internal/geom"
	"github.com/dodorz/pinboard/internal/store"
)

func newStore(t *testing.T) (*Store, store.KV, *store.Bus) {
	t.Helper()
	kv := store.NewMemory()
	bus := store.NewBus()
	return New(kv, bus, nil), kv, bus
}

func TestPositionsRoundTripAcrossRestart(t *testing.T) {
	s, kv, bus := newStore(t)
	s.SetPosition("jump", geom.Point{X: 40, Y: 40})
	s.SetPosition("menu", geom.Point{X: 760, Y: 40})
	s.SetAttr(KeyColors, "jump", "#ff0000")
	s.SetHidden("menu", true)
	s.SetAction("jump", "space")
	s.AddPoint("anchor", geom.Point{X: 400, Y: 300})

	// A fresh store over the same kv sees everything.
	again := New(kv, bus, nil)

	if got, ok := again.Position("jump"); !ok || got != (geom.Point{X: 40, Y: 40}) {
		t.Errorf("Position(jump) = %v, %v", got, ok)
	}
	if got := again.Attr(KeyColors, "jump"); got != "#ff0000" {
		t.Errorf("Attr(colors, jump) = %q", got)
	}
	if !again.IsHidden("menu") {
		t.Error("hidden flag lost")
	}
	if got := again.Action("jump"); got != "space" {
		t.Errorf("Action(jump) = %q", got)
	}
	if pts := again.Points(); len(pts) != 1 || pts[0].Name != "anchor" {
		t.Errorf("Points = %v", pts)
	}
}

func TestPositionsReturnsCopy(t *testing.T) {
	s, _, _ := newStore(t)
	s.SetPosition("a", geom.Point{X: 1, Y: 1})

	m := s.Positions()
	m["a"] = geom.Point{X: 99, Y: 99}
	m["b"] = geom.Point{X: 2, Y: 2}

	if got, _ := s.Position("a"); got != (geom.Point{X: 1, Y: 1}) {
		t.Errorf("internal map mutated through snapshot: %v", got)
	}
	if _, ok := s.Position("b"); ok {
		t.Error("entry injected through snapshot")
	}
}

func TestDeleteAndClearPositions(t *testing.T) {
	s, _, _ := newStore(t)
	s.SetPosition("a", geom.Point{X: 1, Y: 1})
	s.SetPosition("b", geom.Point{X: 2, Y: 2})

	s.DeletePosition("a")
	if _, ok := s.Position("a"); ok {
		t.Error("a survived delete")
	}
	if _, ok := s.Position("b"); !ok {
		t.Error("delete removed the wrong entry")
	}

	s.ClearPositions()
	if len(s.Positions()) != 0 {
		t.Error("positions survived clear")
	}
}

func TestHiddenIDsSorted(t *testing.T) {
	s, _, _ := newStore(t)
	s.SetHidden("zeta", true)
	s.SetHidden("alpha", true)
	s.SetHidden("mid", true)
	s.SetHidden("mid", false)

	got := s.HiddenIDs()
	if !slices.Equal(got, []string{"alpha", "zeta"}) {
		t.Errorf("HiddenIDs = %v, want sorted [alpha zeta]", got)
	}
}

func TestPointLifecycle(t *testing.T) {
	s, _, _ := newStore(t)
	p1 := s.AddPoint("left anchor", geom.Point{X: 100, Y: 300})
	p2 := s.AddPoint("right anchor", geom.Point{X: 700, Y: 300})
	if p1.ID == "" || p1.ID == p2.ID {
		t.Fatalf("point ids: %q, %q", p1.ID, p2.ID)
	}

	if !s.RemovePoint(p1.ID) {
		t.Error("RemovePoint(existing) = false")
	}
	if s.RemovePoint(p1.ID) {
		t.Error("RemovePoint(absent) = true")
	}
	pts := s.Points()
	if len(pts) != 1 || pts[0].ID != p2.ID {
		t.Errorf("Points = %v", pts)
	}
}

func TestSetAttrEmptyValueDeletes(t *testing.T) {
	s, _, _ := newStore(t)
	s.SetAttr(KeyIcons, "jump", "⭡")
	s.SetAttr(KeyIcons, "jump", "")
	if m := s.Attrs(KeyIcons); len(m) != 0 {
		t.Errorf("Attrs(icons) = %v, want empty after clearing", m)
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	kv := store.NewMemory()
	bus := store.NewBus()
	s := New(kv, bus, nil)

	var topics []store.Topic
	bus.Subscribe(func(ev store.Event) { topics = append(topics, ev.Topic) })

	s.SetPosition("a", geom.Point{X: 1, Y: 1})

	if !slices.Contains(topics, store.TopicPositions) {
		t.Errorf("topics = %v, want positions event", topics)
	}
	if !slices.Contains(topics, store.TopicStorage) {
		t.Errorf("topics = %v, want generic storage event", topics)
	}
}

// failingKV rejects every write. Mutations must still land in memory.
type failingKV struct{ store.KV }

func (f failingKV) Set(context.Context, string, []byte) error {
	return errors.New("backend down")
}

func TestWriteFailureKeepsInMemoryState(t *testing.T) {
	bus := store.NewBus()
	s := New(failingKV{store.NewMemory()}, bus, nil)

	var published int
	bus.Subscribe(func(store.Event) { published++ })

	s.SetPosition("a", geom.Point{X: 5, Y: 5})

	if got, ok := s.Position("a"); !ok || got != (geom.Point{X: 5, Y: 5}) {
		t.Errorf("in-memory position lost on write failure: %v, %v", got, ok)
	}
	if published == 0 {
		t.Error("no change event published on write failure")
	}
}

// A corrupt namespace blob is discarded, not fatal.
func TestCorruptNamespaceTreatedAsEmpty(t *testing.T) {
	kv := store.NewMemory()
	ctx := context.Background()
	_ = kv.Set(ctx, KeyPositions, []byte("{not json"))

	s := New(kv, store.NewBus(), nil)
	if len(s.Positions()) != 0 {
		t.Errorf("Positions = %v, want empty for corrupt blob", s.Positions())
	}
}

func TestClearAll(t *testing.T) {
	s, _, _ := newStore(t)
	s.SetPosition("a", geom.Point{X: 1, Y: 1})
	s.SetAttr(KeySizes, "a", "large")
	s.SetHidden("a", true)
	s.SetAction("a", "fire")
	s.AddPoint("p", geom.Point{X: 3, Y: 3})

	s.ClearAll()

	if len(s.Positions()) != 0 || len(s.Attrs(KeySizes)) != 0 ||
		len(s.HiddenIDs()) != 0 || len(s.Actions()) != 0 || len(s.Points()) != 0 {
		t.Error("state survived ClearAll")
	}
}
