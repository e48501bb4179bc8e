// Package config provides tuning constants, user settings, and CLI flag
// overrides for the layout engine.
package config

import "time"

// =============================================================================
// Gesture Timing
// =============================================================================

const (
	// DefaultLongPressDelay is how long a press must be held before a drag
	// arms. Releases and small movements before this cancel the gesture.
	DefaultLongPressDelay = 1500 * time.Millisecond

	// MinLongPressDelay is the lowest configurable long-press delay
	MinLongPressDelay = 200 * time.Millisecond

	// MaxLongPressDelay is the highest configurable long-press delay
	MaxLongPressDelay = 5 * time.Second

	// SnapFlashDuration is how long snap feedback stays highlighted after
	// the preview position changes snap state
	SnapFlashDuration = 300 * time.Millisecond
)

// =============================================================================
// Gesture Distances
// =============================================================================

const (
	// MoveThreshold is the per-axis movement, in pixels, that cancels a
	// pending press before the long-press delay elapses
	MoveThreshold = 10.0

	// DefaultGrabSlack pads the hit area around a control's visual bounds
	DefaultGrabSlack = 4.0
)

// =============================================================================
// Snapping
// =============================================================================

const (
	// MagnetRadius is the capture distance of a magnetic point. A preview
	// inside this radius locks to the point on both axes.
	MagnetRadius = 50.0

	// DefaultEdgeThreshold is the distance from a viewport edge or axis
	// midline at which edge and center snapping engage
	DefaultEdgeThreshold = 30.0

	// DefaultEdgePadding is the gap kept between a snapped control's
	// bounds and the viewport edge
	DefaultEdgePadding = 16.0

	// DefaultGridSize is the grid cell used when grid snapping is enabled.
	// Zero disables the grid.
	DefaultGridSize = 0.0

	// DefaultControlHalfWidth is half the width of a standard control
	DefaultControlHalfWidth = 24.0

	// DefaultControlHalfHeight is half the height of a standard control
	DefaultControlHalfHeight = 24.0
)

// =============================================================================
// Viewport Defaults
// =============================================================================

const (
	// DefaultViewportWidth is the fallback viewport width before the host
	// reports a real size
	DefaultViewportWidth = 800.0

	// DefaultViewportHeight is the fallback viewport height before the
	// host reports a real size
	DefaultViewportHeight = 600.0
)

// =============================================================================
// Groups
// =============================================================================

const (
	// MinPositionGroupSize is the smallest member count a position group
	// may have; falling below it dissolves the group
	MinPositionGroupSize = 2

	// MaxGroupNameLength caps user-supplied group names
	MaxGroupNameLength = 64
)

// =============================================================================
// Storage
// =============================================================================

const (
	// StoreDirName is the directory under XDG data home used by the file
	// backend
	StoreDirName = "pinboard"

	// DefaultRedisAddr is the redis backend's default address
	DefaultRedisAddr = "localhost:6379"
)
