// Package group owns the two kinds of control collections: position groups,
// whose members translate together as a rigid body, and UI groups, which are
// organizational containers with collapse, ordering and a shared hover effect.
// The two kinds are deliberately distinct types; movement synchronization
// never applies to UI groups.
package group

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/dodorz/pinboard/internal/config"
	"github.com/dodorz/pinboard/internal/geom"
	"github.com/dodorz/pinboard/internal/layout"
	"github.com/dodorz/pinboard/internal/store"
	"github.com/google/uuid"
)

// Namespace keys for the two group kinds.
const (
	KeyPositionGroups = "groups"
	KeyUIGroups       = "uigroups"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a group id does not exist.
	ErrNotFound = errors.New("group not found")

	// ErrTooFewMembers is returned when creating a position group with
	// fewer than config.MinPositionGroupSize members.
	ErrTooFewMembers = errors.New("position group needs at least 2 members")

	// ErrIndexOutOfRange is returned by reorder operations; indices are
	// rejected rather than clamped.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrSameGroup is returned by MoveBetween when source and target are the
	// same group; Reorder handles moves within a single group.
	ErrSameGroup = errors.New("source and target are the same group")
)

// HoverEffect is the shared visual effect applied to a UI group's members.
type HoverEffect string

// Hover effects.
const (
	HoverNone  HoverEffect = "none"
	HoverGlow  HoverEffect = "glow"
	HoverPulse HoverEffect = "pulse"
	HoverDim   HoverEffect = "dim"
)

// PositionGroup is a rigid-body collection: dragging any member moves all of
// them by the same delta. Member order only matters for rendering connection
// lines between consecutive members.
type PositionGroup struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ButtonIDs []string `json:"buttonIds"`
}

// UIGroup is an organizational container. Member order is meaningful and
// empty UI groups persist until explicitly deleted.
type UIGroup struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Icon        string      `json:"icon,omitempty"`
	ButtonIDs   []string    `json:"buttonIds"`
	IsCollapsed bool        `json:"isCollapsed"`
	HoverEffect HoverEffect `json:"hoverEffect"`
}

// Registry owns both group kinds, persisting each under its own namespace key.
type Registry struct {
	kv     store.KV
	bus    *store.Bus
	log    *log.Logger
	ctx    context.Context
	layout *layout.Store

	posGroups map[string]*PositionGroup
	uiGroups  map[string]*UIGroup
}

// NewRegistry loads both namespaces. A control's stored positions are needed
// for synchronized movement, so the registry holds the layout store.
func NewRegistry(kv store.KV, bus *store.Bus, ls *layout.Store, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	r := &Registry{
		kv:        kv,
		bus:       bus,
		log:       logger,
		ctx:       context.Background(),
		layout:    ls,
		posGroups: make(map[string]*PositionGroup),
		uiGroups:  make(map[string]*UIGroup),
	}
	r.load(KeyPositionGroups, &r.posGroups)
	r.load(KeyUIGroups, &r.uiGroups)
	return r
}

func (r *Registry) load(key string, out any) {
	data, ok, err := r.kv.Get(r.ctx, key)
	if err != nil {
		r.log.Warn("group read failed", "key", key, "err", err)
		return
	}
	if !ok {
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		r.log.Warn("discarding corrupt group namespace", "key", key, "err", err)
	}
}

func (r *Registry) persist(key string, val any) {
	data, err := json.Marshal(val)
	if err != nil {
		r.log.Error("marshal failed", "key", key, "err", err)
		return
	}
	if err := r.kv.Set(r.ctx, key, data); err != nil {
		r.log.Warn("group write failed", "key", key, "err", err)
	}
	r.bus.Publish(store.Event{Topic: store.TopicGroups, Key: key})
}

// clipName truncates user-supplied group names to config.MaxGroupNameLength
// runes.
func clipName(name string) string {
	runes := []rune(name)
	if len(runes) <= config.MaxGroupNameLength {
		return name
	}
	return string(runes[:config.MaxGroupNameLength])
}

// --- position groups ---

// CreatePositionGroup merges ids into a new position group. Members are
// removed from any previous position group first; a previous group left with
// fewer than two members dissolves.
func (r *Registry) CreatePositionGroup(ids []string, name string) (*PositionGroup, error) {
	if len(ids) < config.MinPositionGroupSize {
		return nil, ErrTooFewMembers
	}
	for _, id := range ids {
		r.detachFromPositionGroup(id)
	}
	g := &PositionGroup{
		ID:        uuid.NewString(),
		Name:      clipName(name),
		ButtonIDs: slices.Clone(ids),
	}
	r.posGroups[g.ID] = g
	r.persist(KeyPositionGroups, r.posGroups)
	return g, nil
}

// RemoveMember removes id from a position group. If the remainder has fewer
// than two members the whole group is deleted; the survivor's own stored
// position is untouched.
func (r *Registry) RemoveMember(groupID, id string) error {
	g, ok := r.posGroups[groupID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, groupID)
	}
	g.ButtonIDs = slices.DeleteFunc(g.ButtonIDs, func(m string) bool { return m == id })
	if len(g.ButtonIDs) < config.MinPositionGroupSize {
		delete(r.posGroups, groupID)
	}
	r.persist(KeyPositionGroups, r.posGroups)
	return nil
}

// DeletePositionGroup removes the group, reverting all members to ungrouped.
func (r *Registry) DeletePositionGroup(groupID string) error {
	if _, ok := r.posGroups[groupID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, groupID)
	}
	delete(r.posGroups, groupID)
	r.persist(KeyPositionGroups, r.posGroups)
	return nil
}

// PositionGroupOf returns the group containing id, if any.
func (r *Registry) PositionGroupOf(id string) (*PositionGroup, bool) {
	for _, g := range r.posGroups {
		if slices.Contains(g.ButtonIDs, id) {
			return g, true
		}
	}
	return nil, false
}

// PositionGroups returns all position groups sorted by id.
func (r *Registry) PositionGroups() []*PositionGroup {
	out := make([]*PositionGroup, 0, len(r.posGroups))
	for _, g := range r.posGroups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MoveTogether translates every stored member position of the anchor's group
// by delta in one synchronous pass. Members without a stored position render
// at default layout and have nothing to translate, so they are skipped. A
// grouped-less anchor is a no-op.
func (r *Registry) MoveTogether(anchorID string, delta geom.Point) {
	g, ok := r.PositionGroupOf(anchorID)
	if !ok {
		return
	}
	positions := r.layout.Positions()
	changed := false
	for _, id := range g.ButtonIDs {
		p, ok := positions[id]
		if !ok {
			continue
		}
		positions[id] = p.Add(delta)
		changed = true
	}
	if changed {
		r.layout.SetAllPositions(positions)
	}
}

// MoveOthersTogether is MoveTogether with the anchor excluded: the anchor's
// final position was already committed by the drag, only the other members
// inherit the delta.
func (r *Registry) MoveOthersTogether(anchorID string, delta geom.Point) {
	g, ok := r.PositionGroupOf(anchorID)
	if !ok {
		return
	}
	positions := r.layout.Positions()
	changed := false
	for _, id := range g.ButtonIDs {
		if id == anchorID {
			continue
		}
		p, ok := positions[id]
		if !ok {
			continue
		}
		positions[id] = p.Add(delta)
		changed = true
	}
	if changed {
		r.layout.SetAllPositions(positions)
	}
}

// detachFromPositionGroup silently removes id from whichever position group
// holds it, dissolving groups that drop below two members.
func (r *Registry) detachFromPositionGroup(id string) {
	for gid, g := range r.posGroups {
		if !slices.Contains(g.ButtonIDs, id) {
			continue
		}
		g.ButtonIDs = slices.DeleteFunc(g.ButtonIDs, func(m string) bool { return m == id })
		if len(g.ButtonIDs) < config.MinPositionGroupSize {
			delete(r.posGroups, gid)
		}
		return
	}
}

// --- UI groups ---

// CreateUIGroup creates an organizational group. Members leave any previous
// UI group; unlike position groups, an emptied previous group persists.
func (r *Registry) CreateUIGroup(ids []string, name string) *UIGroup {
	for _, id := range ids {
		r.detachFromUIGroup(id)
	}
	g := &UIGroup{
		ID:          uuid.NewString(),
		Name:        clipName(name),
		ButtonIDs:   slices.Clone(ids),
		HoverEffect: HoverNone,
	}
	r.uiGroups[g.ID] = g
	r.persist(KeyUIGroups, r.uiGroups)
	return g
}

// DeleteUIGroup removes a UI group entirely.
func (r *Registry) DeleteUIGroup(groupID string) error {
	if _, ok := r.uiGroups[groupID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, groupID)
	}
	delete(r.uiGroups, groupID)
	r.persist(KeyUIGroups, r.uiGroups)
	return nil
}

// ToggleCollapse flips a UI group's collapsed state.
func (r *Registry) ToggleCollapse(groupID string) error {
	g, ok := r.uiGroups[groupID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, groupID)
	}
	g.IsCollapsed = !g.IsCollapsed
	r.persist(KeyUIGroups, r.uiGroups)
	return nil
}

// SetHoverEffect sets the shared visual effect for a UI group.
func (r *Registry) SetHoverEffect(groupID string, effect HoverEffect) error {
	g, ok := r.uiGroups[groupID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, groupID)
	}
	g.HoverEffect = effect
	r.persist(KeyUIGroups, r.uiGroups)
	return nil
}

// Reorder splices a member from one index to another within a UI group.
// Out-of-range indices are rejected, not clamped.
func (r *Registry) Reorder(groupID string, from, to int) error {
	g, ok := r.uiGroups[groupID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, groupID)
	}
	n := len(g.ButtonIDs)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: from=%d to=%d len=%d", ErrIndexOutOfRange, from, to, n)
	}
	id := g.ButtonIDs[from]
	g.ButtonIDs = append(g.ButtonIDs[:from], g.ButtonIDs[from+1:]...)
	g.ButtonIDs = slices.Insert(g.ButtonIDs, to, id)
	r.persist(KeyUIGroups, r.uiGroups)
	return nil
}

// MoveBetween moves controlID from the source UI group into the target at
// targetIndex. An emptied source group is kept; targetIndex may equal the
// target's length (append) but is otherwise bounds-checked. Source and
// target must differ; Reorder covers moves within one group.
func (r *Registry) MoveBetween(sourceID, targetID, controlID string, targetIndex int) error {
	if sourceID == targetID {
		return fmt.Errorf("%w: %s", ErrSameGroup, sourceID)
	}
	src, ok := r.uiGroups[sourceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, sourceID)
	}
	dst, ok := r.uiGroups[targetID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, targetID)
	}
	if !slices.Contains(src.ButtonIDs, controlID) {
		return fmt.Errorf("%w: %s not in %s", ErrNotFound, controlID, sourceID)
	}
	if targetIndex < 0 || targetIndex > len(dst.ButtonIDs) {
		return fmt.Errorf("%w: index=%d len=%d", ErrIndexOutOfRange, targetIndex, len(dst.ButtonIDs))
	}
	src.ButtonIDs = slices.DeleteFunc(src.ButtonIDs, func(m string) bool { return m == controlID })
	dst.ButtonIDs = slices.Insert(dst.ButtonIDs, targetIndex, controlID)
	r.persist(KeyUIGroups, r.uiGroups)
	return nil
}

// UIGroupOf returns the UI group containing id, if any.
func (r *Registry) UIGroupOf(id string) (*UIGroup, bool) {
	for _, g := range r.uiGroups {
		if slices.Contains(g.ButtonIDs, id) {
			return g, true
		}
	}
	return nil, false
}

// UIGroups returns all UI groups sorted by id.
func (r *Registry) UIGroups() []*UIGroup {
	out := make([]*UIGroup, 0, len(r.uiGroups))
	for _, g := range r.uiGroups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UIGroup returns a UI group by id.
func (r *Registry) UIGroup(groupID string) (*UIGroup, bool) {
	g, ok := r.uiGroups[groupID]
	return g, ok
}

// detachFromUIGroup removes id from whichever UI group holds it. Emptied
// groups persist.
func (r *Registry) detachFromUIGroup(id string) {
	for _, g := range r.uiGroups {
		if slices.Contains(g.ButtonIDs, id) {
			g.ButtonIDs = slices.DeleteFunc(g.ButtonIDs, func(m string) bool { return m == id })
			return
		}
	}
}

// --- snapshot plumbing for layout presets ---

// Snapshot returns copies of both group maps for inclusion in a layout preset.
func (r *Registry) Snapshot() (map[string]*PositionGroup, map[string]*UIGroup) {
	pos := make(map[string]*PositionGroup, len(r.posGroups))
	for id, g := range r.posGroups {
		cp := *g
		cp.ButtonIDs = slices.Clone(g.ButtonIDs)
		pos[id] = &cp
	}
	ui := make(map[string]*UIGroup, len(r.uiGroups))
	for id, g := range r.uiGroups {
		cp := *g
		cp.ButtonIDs = slices.Clone(g.ButtonIDs)
		ui[id] = &cp
	}
	return pos, ui
}

// Restore overwrites both group maps from a layout preset.
func (r *Registry) Restore(pos map[string]*PositionGroup, ui map[string]*UIGroup) {
	r.posGroups = make(map[string]*PositionGroup, len(pos))
	for id, g := range pos {
		cp := *g
		cp.ButtonIDs = slices.Clone(g.ButtonIDs)
		r.posGroups[id] = &cp
	}
	r.uiGroups = make(map[string]*UIGroup, len(ui))
	for id, g := range ui {
		cp := *g
		cp.ButtonIDs = slices.Clone(g.ButtonIDs)
		r.uiGroups[id] = &cp
	}
	r.persist(KeyPositionGroups, r.posGroups)
	r.persist(KeyUIGroups, r.uiGroups)
}
