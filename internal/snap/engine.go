// Package snap resolves raw drag coordinates against magnetic points, viewport
// edges, the viewport center, or a fixed grid. Resolution is a pure function
// of its inputs; persistence and feedback live elsewhere.
package snap

import (
	"math"

	"github.com/dodorz/pinboard/internal/geom"
)

// MagneticPoint is a user-placed attractor, independent of any control.
// Insertion order is preserved for display only; snapping uses distance.
type MagneticPoint struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Position geom.Point `json:"position"`
}

// Options holds the geometry inputs for a resolution pass.
type Options struct {
	Viewport      geom.Size
	HalfSize      geom.Size // element half extents, per axis
	EdgePadding   float64   // gap kept between element edge and viewport edge
	EdgeThreshold float64   // activation distance for edge and center snaps
	MagnetRadius  float64   // activation distance for magnetic points
}

// Result is a resolved position plus whether any snap rule fired.
type Result struct {
	Position geom.Point
	Snapped  bool
}

// Resolve applies the snap rules to raw in priority order: the nearest
// magnetic point within MagnetRadius wins outright and overrides both axes;
// otherwise edge and center snaps apply independently per axis and compose.
// An untouched raw comes back with Snapped == false.
func Resolve(raw geom.Point, opts Options, points []MagneticPoint) Result {
	if p, ok := nearestMagnet(raw, opts.MagnetRadius, points); ok {
		return Result{Position: p.Position, Snapped: true}
	}

	out := raw
	snapped := false

	if x, ok := snapAxis(raw.X, opts.Viewport.Width, opts.HalfSize.Width, opts.EdgePadding, opts.EdgeThreshold); ok {
		out.X = x
		snapped = true
	}
	if y, ok := snapAxis(raw.Y, opts.Viewport.Height, opts.HalfSize.Height, opts.EdgePadding, opts.EdgeThreshold); ok {
		out.Y = y
		snapped = true
	}

	return Result{Position: out, Snapped: snapped}
}

// ResolveGrid rounds both coordinates independently to the nearest multiple
// of grid. Grid snapping is a separate mode and is never combined with
// magnetic/edge/center resolution.
func ResolveGrid(raw geom.Point, grid float64) Result {
	if grid <= 0 {
		return Result{Position: raw}
	}
	return Result{
		Position: geom.Point{
			X: math.Round(raw.X/grid) * grid,
			Y: math.Round(raw.Y/grid) * grid,
		},
		Snapped: true,
	}
}

// nearestMagnet returns the closest point within radius, if any.
func nearestMagnet(raw geom.Point, radius float64, points []MagneticPoint) (MagneticPoint, bool) {
	best := MagneticPoint{}
	bestDist := math.Inf(1)
	found := false
	for _, p := range points {
		d := raw.Dist(p.Position)
		if d < radius && d < bestDist {
			best = p
			bestDist = d
			found = true
		}
	}
	return best, found
}

// snapAxis resolves one axis against the near edge, far edge, then center.
// The snapped coordinate places the element edge exactly at the padding.
func snapAxis(v, extent, half, padding, threshold float64) (float64, bool) {
	nearTarget := padding + half
	farTarget := extent - padding - half
	center := extent / 2

	switch {
	case v < threshold+half:
		return nearTarget, true
	case v > extent-threshold-half:
		return farTarget, true
	case math.Abs(v-center) < threshold:
		return center, true
	}
	return v, false
}
