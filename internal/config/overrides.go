package config

import "time"

// Overrides contains CLI flag values that can override user config.
// Zero values indicate the flag was not set and should use the user config default.
type Overrides struct {
	// StoreBackend selects the persistence backend: memory, file, redis
	StoreBackend string

	// RedisAddr overrides the redis backend address
	RedisAddr string

	// LongPress overrides the long-press delay
	LongPress time.Duration

	// GridSize overrides the grid cell size (0 means use config)
	GridSize float64

	// Debug enables debug logging
	Debug bool
}

// ApplyOverrides merges CLI flag overrides into the user config.
// If userConfig is nil a default config is used as the base.
func ApplyOverrides(overrides Overrides, userConfig *UserConfig) *UserConfig {
	cfg := userConfig
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// Backend - CLI flag takes precedence, otherwise use user config
	if overrides.StoreBackend != "" {
		cfg.Storage.Backend = overrides.StoreBackend
	}

	if overrides.RedisAddr != "" {
		cfg.Storage.RedisAddr = overrides.RedisAddr
	}

	// Long press - clamped to the supported range
	if overrides.LongPress > 0 {
		d := overrides.LongPress
		if d < MinLongPressDelay {
			d = MinLongPressDelay
		} else if d > MaxLongPressDelay {
			d = MaxLongPressDelay
		}
		cfg.Gesture.LongPressMs = int(d / time.Millisecond)
	}

	if overrides.GridSize > 0 {
		cfg.Snapping.GridSize = overrides.GridSize
	}

	return cfg
}
