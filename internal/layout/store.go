// Package layout owns the persisted layout surface: control positions, the
// per-control visual attribute maps, the hidden-control set, action overrides,
// and user-placed magnetic snap points. Everything is cached in memory and
// written through to an injected key-value store under fixed namespace keys.
package layout

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/dodorz/pinboard/internal/geom"
	"github.com/dodorz/pinboard/internal/snap"
	"github.com/dodorz/pinboard/internal/store"
	"github.com/google/uuid"
)

// Namespace keys. One key per state category, as seen by the KV backend.
const (
	KeyPositions  = "positions"
	KeySizes      = "sizes"
	KeyIcons      = "icons"
	KeyColors     = "colors"
	KeyAnimations = "animations"
	KeyOpacities  = "opacities"
	KeyBorders    = "borders"
	KeyShadows    = "shadows"
	KeyHidden     = "hidden"
	KeyActions    = "actions"
	KeyPoints     = "points"
)

// AttrCategories lists the per-control visual attribute namespaces in the
// order they appear in exported presets.
var AttrCategories = []string{
	KeySizes, KeyIcons, KeyColors, KeyAnimations,
	KeyOpacities, KeyBorders, KeyShadows,
}

// Store is the write-through cache over the injected KV. All methods are
// synchronous; persistence failures are logged and the in-memory state keeps
// the intended value until the next reload.
type Store struct {
	kv  store.KV
	bus *store.Bus
	log *log.Logger
	ctx context.Context

	positions map[string]geom.Point
	attrs     map[string]map[string]string
	hidden    map[string]struct{}
	actions   map[string]string
	points    []snap.MagneticPoint
}

// New loads every namespace from kv into memory. Absent keys are normal and
// yield empty state; a corrupt blob is logged and treated as empty.
func New(kv store.KV, bus *store.Bus, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	s := &Store{
		kv:        kv,
		bus:       bus,
		log:       logger,
		ctx:       context.Background(),
		positions: make(map[string]geom.Point),
		attrs:     make(map[string]map[string]string),
		hidden:    make(map[string]struct{}),
		actions:   make(map[string]string),
	}
	for _, cat := range AttrCategories {
		s.attrs[cat] = make(map[string]string)
	}

	s.load(KeyPositions, &s.positions)
	for _, cat := range AttrCategories {
		m := s.attrs[cat]
		s.load(cat, &m)
		s.attrs[cat] = m
	}
	var hidden []string
	s.load(KeyHidden, &hidden)
	for _, id := range hidden {
		s.hidden[id] = struct{}{}
	}
	s.load(KeyActions, &s.actions)
	s.load(KeyPoints, &s.points)
	return s
}

// load unmarshals one namespace into out, tolerating absence and corruption.
func (s *Store) load(key string, out any) {
	data, ok, err := s.kv.Get(s.ctx, key)
	if err != nil {
		s.log.Warn("store read failed", "key", key, "err", err)
		return
	}
	if !ok {
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warn("discarding corrupt namespace", "key", key, "err", err)
	}
}

// persist marshals val under key and publishes the change. A write failure is
// logged and the operation is otherwise a no-op at the storage layer.
func (s *Store) persist(key string, val any, topic store.Topic) {
	data, err := json.Marshal(val)
	if err != nil {
		s.log.Error("marshal failed", "key", key, "err", err)
		return
	}
	if err := s.kv.Set(s.ctx, key, data); err != nil {
		s.log.Warn("store write failed", "key", key, "err", err)
	}
	s.bus.Publish(store.Event{Topic: topic, Key: key})
}

// --- positions ---

// Position returns the stored position for id. Absence means default in-flow
// placement and is not an error.
func (s *Store) Position(id string) (geom.Point, bool) {
	p, ok := s.positions[id]
	return p, ok
}

// SetPosition commits one control's position.
func (s *Store) SetPosition(id string, p geom.Point) {
	s.positions[id] = p
	s.persist(KeyPositions, s.positions, store.TopicPositions)
}

// SetAllPositions replaces the whole position map.
func (s *Store) SetAllPositions(m map[string]geom.Point) {
	s.positions = make(map[string]geom.Point, len(m))
	for id, p := range m {
		s.positions[id] = p
	}
	s.persist(KeyPositions, s.positions, store.TopicPositions)
}

// Positions returns a copy of the position map.
func (s *Store) Positions() map[string]geom.Point {
	out := make(map[string]geom.Point, len(s.positions))
	for id, p := range s.positions {
		out[id] = p
	}
	return out
}

// DeletePosition reverts a control to default placement.
func (s *Store) DeletePosition(id string) {
	delete(s.positions, id)
	s.persist(KeyPositions, s.positions, store.TopicPositions)
}

// ClearPositions reverts every control to default placement.
func (s *Store) ClearPositions() {
	s.positions = make(map[string]geom.Point)
	s.persist(KeyPositions, s.positions, store.TopicPositions)
}

// --- visual attributes ---

// Attr returns one control's value in a category ("" when unset).
func (s *Store) Attr(category, id string) string {
	return s.attrs[category][id]
}

// SetAttr sets one control's value in a category. An empty value deletes.
func (s *Store) SetAttr(category, id, value string) {
	m, ok := s.attrs[category]
	if !ok {
		return
	}
	if value == "" {
		delete(m, id)
	} else {
		m[id] = value
	}
	s.persist(category, m, store.TopicAttrs)
}

// Attrs returns a copy of one category's map.
func (s *Store) Attrs(category string) map[string]string {
	out := make(map[string]string, len(s.attrs[category]))
	for id, v := range s.attrs[category] {
		out[id] = v
	}
	return out
}

// SetAttrs replaces one category's map entirely.
func (s *Store) SetAttrs(category string, m map[string]string) {
	cp := make(map[string]string, len(m))
	for id, v := range m {
		cp[id] = v
	}
	s.attrs[category] = cp
	s.persist(category, cp, store.TopicAttrs)
}

// --- hidden set ---

// IsHidden reports whether a control is hidden.
func (s *Store) IsHidden(id string) bool {
	_, ok := s.hidden[id]
	return ok
}

// SetHidden shows or hides one control.
func (s *Store) SetHidden(id string, hidden bool) {
	if hidden {
		s.hidden[id] = struct{}{}
	} else {
		delete(s.hidden, id)
	}
	s.persist(KeyHidden, s.HiddenIDs(), store.TopicStorage)
}

// HiddenIDs returns the hidden set as a sorted slice.
func (s *Store) HiddenIDs() []string {
	out := make([]string, 0, len(s.hidden))
	for id := range s.hidden {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SetHiddenIDs replaces the hidden set.
func (s *Store) SetHiddenIDs(ids []string) {
	s.hidden = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.hidden[id] = struct{}{}
	}
	s.persist(KeyHidden, s.HiddenIDs(), store.TopicStorage)
}

// --- action overrides ---

// Action returns the override for id ("" when the default action applies).
func (s *Store) Action(id string) string {
	return s.actions[id]
}

// SetAction sets or clears one control's action override.
func (s *Store) SetAction(id, action string) {
	if action == "" {
		delete(s.actions, id)
	} else {
		s.actions[id] = action
	}
	s.persist(KeyActions, s.actions, store.TopicStorage)
}

// Actions returns a copy of the override map.
func (s *Store) Actions() map[string]string {
	out := make(map[string]string, len(s.actions))
	for id, v := range s.actions {
		out[id] = v
	}
	return out
}

// SetActions replaces the override map.
func (s *Store) SetActions(m map[string]string) {
	s.actions = make(map[string]string, len(m))
	for id, v := range m {
		s.actions[id] = v
	}
	s.persist(KeyActions, s.actions, store.TopicStorage)
}

// --- magnetic points ---

// Points returns the magnetic points in insertion order.
func (s *Store) Points() []snap.MagneticPoint {
	out := make([]snap.MagneticPoint, len(s.points))
	copy(out, s.points)
	return out
}

// AddPoint creates and persists a magnetic point at pos.
func (s *Store) AddPoint(name string, pos geom.Point) snap.MagneticPoint {
	p := snap.MagneticPoint{
		ID:       uuid.NewString(),
		Name:     name,
		Position: pos,
	}
	s.points = append(s.points, p)
	s.persist(KeyPoints, s.points, store.TopicPoints)
	return p
}

// RemovePoint deletes a point by id, reporting whether it existed.
func (s *Store) RemovePoint(id string) bool {
	for i, p := range s.points {
		if p.ID == id {
			s.points = append(s.points[:i], s.points[i+1:]...)
			s.persist(KeyPoints, s.points, store.TopicPoints)
			return true
		}
	}
	return false
}

// SetPoints replaces the point list (used by layout preset import).
func (s *Store) SetPoints(points []snap.MagneticPoint) {
	s.points = make([]snap.MagneticPoint, len(points))
	copy(s.points, points)
	s.persist(KeyPoints, s.points, store.TopicPoints)
}

// ClearAll wipes every namespace owned by this store.
func (s *Store) ClearAll() {
	s.positions = make(map[string]geom.Point)
	s.persist(KeyPositions, s.positions, store.TopicPositions)
	for _, cat := range AttrCategories {
		s.attrs[cat] = make(map[string]string)
		s.persist(cat, s.attrs[cat], store.TopicAttrs)
	}
	s.hidden = make(map[string]struct{})
	s.persist(KeyHidden, []string{}, store.TopicStorage)
	s.actions = make(map[string]string)
	s.persist(KeyActions, s.actions, store.TopicStorage)
	s.points = nil
	s.persist(KeyPoints, []snap.MagneticPoint{}, store.TopicPoints)
}
