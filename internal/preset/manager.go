// Package preset captures and restores the full configuration surface:
// positions, per-control visual attributes, the hidden set and action
// overrides — optionally widened to position groups and magnetic points.
// Presets are full-state snapshots, never diffs, and apply atomically.
package preset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dodorz/pinboard/internal/geom"
	"github.com/dodorz/pinboard/internal/group"
	"github.com/dodorz/pinboard/internal/layout"
	"github.com/dodorz/pinboard/internal/snap"
	"github.com/dodorz/pinboard/internal/store"
	"github.com/google/uuid"
)

// KeyPresets is the namespace key named presets are persisted under.
const KeyPresets = "presets"

// Sentinel errors.
var (
	// ErrBadPreset is returned when imported text does not parse as a
	// preset. Import failures never mutate any store.
	ErrBadPreset = errors.New("malformed preset")

	// ErrNotFound is returned when a named preset id does not exist.
	ErrNotFound = errors.New("preset not found")
)

// Data is the narrow "button preset": every per-control store, nothing about
// groups or magnetic points. Absent fields default to empty on import.
type Data struct {
	Positions  map[string]geom.Point `json:"positions"`
	Sizes      map[string]string     `json:"sizes"`
	Icons      map[string]string     `json:"icons"`
	Colors     map[string]string     `json:"colors"`
	Animations map[string]string     `json:"animations"`
	Opacities  map[string]string     `json:"opacities"`
	Borders    map[string]string     `json:"borders"`
	Shadows    map[string]string     `json:"shadows"`
	Hidden     []string              `json:"hidden"`
	Actions    map[string]string     `json:"actions"`
}

// LayoutData is the broad "layout preset": Data plus position groups, UI
// groups and magnetic points.
type LayoutData struct {
	Data
	PositionGroups map[string]*group.PositionGroup `json:"positionGroups"`
	UIGroups       map[string]*group.UIGroup       `json:"uiGroups"`
	Points         []snap.MagneticPoint            `json:"points"`
}

// Preset is a named, timestamped snapshot.
type Preset struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	Broad     bool       `json:"broad"`
	Data      LayoutData `json:"data"`
}

// Manager snapshots and restores the stores, and keeps the named preset list.
type Manager struct {
	kv       store.KV
	bus      *store.Bus
	log      *log.Logger
	ctx      context.Context
	layout   *layout.Store
	registry *group.Registry

	presets map[string]*Preset
}

// NewManager loads the named preset list.
func NewManager(kv store.KV, bus *store.Bus, ls *layout.Store, reg *group.Registry, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	m := &Manager{
		kv:       kv,
		bus:      bus,
		log:      logger,
		ctx:      context.Background(),
		layout:   ls,
		registry: reg,
		presets:  make(map[string]*Preset),
	}
	data, ok, err := kv.Get(m.ctx, KeyPresets)
	if err != nil {
		m.log.Warn("preset read failed", "err", err)
	} else if ok {
		if err := json.Unmarshal(data, &m.presets); err != nil {
			m.log.Warn("discarding corrupt preset namespace", "err", err)
			m.presets = make(map[string]*Preset)
		}
	}
	return m
}

// Snapshot captures the narrow button preset.
func (m *Manager) Snapshot() Data {
	return Data{
		Positions:  m.layout.Positions(),
		Sizes:      m.layout.Attrs(layout.KeySizes),
		Icons:      m.layout.Attrs(layout.KeyIcons),
		Colors:     m.layout.Attrs(layout.KeyColors),
		Animations: m.layout.Attrs(layout.KeyAnimations),
		Opacities:  m.layout.Attrs(layout.KeyOpacities),
		Borders:    m.layout.Attrs(layout.KeyBorders),
		Shadows:    m.layout.Attrs(layout.KeyShadows),
		Hidden:     m.layout.HiddenIDs(),
		Actions:    m.layout.Actions(),
	}
}

// SnapshotLayout captures the broad layout preset, including groups and
// magnetic points.
func (m *Manager) SnapshotLayout() LayoutData {
	pos, ui := m.registry.Snapshot()
	return LayoutData{
		Data:           m.Snapshot(),
		PositionGroups: pos,
		UIGroups:       ui,
		Points:         m.layout.Points(),
	}
}

// Apply overwrites every store covered by the narrow preset. Nil fields are
// treated as empty; state outside the preset's coverage is left alone.
func (m *Manager) Apply(d Data) {
	m.layout.SetAllPositions(orEmptyPoints(d.Positions))
	m.layout.SetAttrs(layout.KeySizes, orEmpty(d.Sizes))
	m.layout.SetAttrs(layout.KeyIcons, orEmpty(d.Icons))
	m.layout.SetAttrs(layout.KeyColors, orEmpty(d.Colors))
	m.layout.SetAttrs(layout.KeyAnimations, orEmpty(d.Animations))
	m.layout.SetAttrs(layout.KeyOpacities, orEmpty(d.Opacities))
	m.layout.SetAttrs(layout.KeyBorders, orEmpty(d.Borders))
	m.layout.SetAttrs(layout.KeyShadows, orEmpty(d.Shadows))
	m.layout.SetHiddenIDs(d.Hidden)
	m.layout.SetActions(orEmpty(d.Actions))
}

// ApplyLayout overwrites the narrow stores plus groups and magnetic points.
func (m *Manager) ApplyLayout(d LayoutData) {
	m.Apply(d.Data)
	m.registry.Restore(d.PositionGroups, d.UIGroups)
	m.layout.SetPoints(d.Points)
}

// ExportText serializes the narrow snapshot to portable JSON text.
func (m *Manager) ExportText() (string, error) {
	data, err := json.MarshalIndent(m.Snapshot(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to export preset: %w", err)
	}
	return string(data), nil
}

// ExportLayoutText serializes the broad snapshot to portable JSON text.
func (m *Manager) ExportLayoutText() (string, error) {
	data, err := json.MarshalIndent(m.SnapshotLayout(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to export layout preset: %w", err)
	}
	return string(data), nil
}

// ImportText parses and applies a narrow preset. Parsing is completed before
// the first write, so malformed text leaves every store untouched.
func (m *Manager) ImportText(text string) error {
	var d Data
	if err := decodeStrictObject(text, &d); err != nil {
		return err
	}
	m.Apply(d)
	return nil
}

// ImportLayoutText parses and applies a broad preset atomically.
func (m *Manager) ImportLayoutText(text string) error {
	var d LayoutData
	if err := decodeStrictObject(text, &d); err != nil {
		return err
	}
	m.ApplyLayout(d)
	return nil
}

// decodeStrictObject rejects anything that is not a JSON object of the
// expected shape.
func decodeStrictObject(text string, out any) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPreset, err)
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPreset, err)
	}
	return nil
}

// --- named presets ---

// Save stores the current state as a named preset and returns it.
func (m *Manager) Save(name string, broad bool) *Preset {
	p := &Preset{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Broad:     broad,
	}
	if broad {
		p.Data = m.SnapshotLayout()
	} else {
		p.Data = LayoutData{Data: m.Snapshot()}
	}
	m.presets[p.ID] = p
	m.persist()
	return p
}

// Get returns a named preset by id.
func (m *Manager) Get(id string) (*Preset, bool) {
	p, ok := m.presets[id]
	return p, ok
}

// List returns all named presets, newest first.
func (m *Manager) List() []*Preset {
	out := make([]*Preset, 0, len(m.presets))
	for _, p := range m.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Delete removes a named preset.
func (m *Manager) Delete(id string) bool {
	if _, ok := m.presets[id]; !ok {
		return false
	}
	delete(m.presets, id)
	m.persist()
	return true
}

// Restore applies a named preset: broad presets restore groups and points,
// narrow ones only the button surface.
func (m *Manager) Restore(id string) error {
	p, ok := m.presets[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if p.Broad {
		m.ApplyLayout(p.Data)
	} else {
		m.Apply(p.Data.Data)
	}
	return nil
}

func (m *Manager) persist() {
	data, err := json.Marshal(m.presets)
	if err != nil {
		m.log.Error("marshal failed", "key", KeyPresets, "err", err)
		return
	}
	if err := m.kv.Set(m.ctx, KeyPresets, data); err != nil {
		m.log.Warn("preset write failed", "err", err)
	}
	m.bus.Publish(store.Event{Topic: store.TopicPresets, Key: KeyPresets})
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func orEmptyPoints(m map[string]geom.Point) map[string]geom.Point {
	if m == nil {
		return map[string]geom.Point{}
	}
	return m
}
