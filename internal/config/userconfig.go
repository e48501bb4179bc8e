package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// UserConfig represents the user's custom configuration
type UserConfig struct {
	Gesture  GestureConfig  `toml:"gesture"`
	Snapping SnappingConfig `toml:"snapping"`
	Storage  StorageConfig  `toml:"storage"`
}

// GestureConfig holds drag gesture settings
type GestureConfig struct {
	LongPressMs   int     `toml:"long_press_ms"`  // Hold duration before a drag arms, in milliseconds (default: 1500, min: 200, max: 5000)
	MoveThreshold float64 `toml:"move_threshold"` // Per-axis movement that cancels a pending press, in pixels (default: 10)
}

// SnappingConfig holds edge, center, magnet and grid snap settings
type SnappingConfig struct {
	EdgePadding   float64 `toml:"edge_padding"`   // Gap kept between a snapped control and the viewport edge (default: 16)
	EdgeThreshold float64 `toml:"edge_threshold"` // Distance at which edge and center snapping engage (default: 30)
	MagnetRadius  float64 `toml:"magnet_radius"`  // Capture distance of a magnetic point (default: 50)
	GridSize      float64 `toml:"grid_size"`      // Grid cell size; 0 disables grid snapping (default: 0)
}

// StorageConfig holds persistence backend settings
type StorageConfig struct {
	Backend   string `toml:"backend"`    // Storage backend: memory, file, redis (default: file)
	RedisAddr string `toml:"redis_addr"` // Redis address for the redis backend (default: localhost:6379)
	RedisDB   int    `toml:"redis_db"`   // Redis database number (default: 0)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *UserConfig {
	return &UserConfig{
		Gesture: GestureConfig{
			LongPressMs:   int(DefaultLongPressDelay / time.Millisecond),
			MoveThreshold: MoveThreshold,
		},
		Snapping: SnappingConfig{
			EdgePadding:   DefaultEdgePadding,
			EdgeThreshold: DefaultEdgeThreshold,
			MagnetRadius:  MagnetRadius,
			GridSize:      DefaultGridSize,
		},
		Storage: StorageConfig{
			Backend:   "file",
			RedisAddr: DefaultRedisAddr,
			RedisDB:   0,
		},
	}
}

// LongPressDelay returns the configured long-press duration, clamped to the
// supported range.
func (c *UserConfig) LongPressDelay() time.Duration {
	d := time.Duration(c.Gesture.LongPressMs) * time.Millisecond
	if d < MinLongPressDelay {
		return MinLongPressDelay
	}
	if d > MaxLongPressDelay {
		return MaxLongPressDelay
	}
	return d
}

// LoadUserConfig loads the user configuration from XDG config directory
func LoadUserConfig() (*UserConfig, error) {
	configPath, err := xdg.SearchConfigFile("pinboard/config.toml")
	if err != nil {
		// Config doesn't exist, create default
		return createDefaultConfig()
	}

	// #nosec G304 - configPath is from XDG search, reading user config is intentional
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg UserConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	fillMissing(&cfg, DefaultConfig())

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// createDefaultConfig creates a default config file in the user's config directory
func createDefaultConfig() (*UserConfig, error) {
	cfg := DefaultConfig()

	configPath, err := xdg.ConfigFile("pinboard/config.toml")
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	// Build config file with header comments and marshaled data
	var sb strings.Builder
	sb.WriteString("# Pinboard Configuration File\n")
	sb.WriteString("# This file allows you to customize gestures, snapping and storage\n")
	sb.WriteString("#\n")
	sb.WriteString("# Configuration location: " + configPath + "\n")
	sb.WriteString("# Documentation: https://github.com/dodorz/pinboard\n\n")

	sb.WriteString("# ============================================================================\n")
	sb.WriteString("# GESTURE SETTINGS\n")
	sb.WriteString("# ============================================================================\n")
	sb.WriteString("# long_press_ms: How long a press must be held before a drag arms\n")
	sb.WriteString("#   Range: 200 to 5000\n")
	sb.WriteString("#   Default: 1500\n")
	sb.WriteString("#\n")
	sb.WriteString("# move_threshold: Per-axis movement (pixels) that cancels a pending press\n")
	sb.WriteString("#   Default: 10\n")
	sb.WriteString("# ============================================================================\n\n")

	sb.WriteString("# ============================================================================\n")
	sb.WriteString("# SNAPPING SETTINGS\n")
	sb.WriteString("# ============================================================================\n")
	sb.WriteString("# edge_padding: Gap kept between a snapped control and the viewport edge\n")
	sb.WriteString("#   Default: 16\n")
	sb.WriteString("#\n")
	sb.WriteString("# edge_threshold: Distance at which edge and center snapping engage\n")
	sb.WriteString("#   Default: 30\n")
	sb.WriteString("#\n")
	sb.WriteString("# magnet_radius: Capture distance of a magnetic point\n")
	sb.WriteString("#   Default: 50\n")
	sb.WriteString("#\n")
	sb.WriteString("# grid_size: Grid cell size; 0 disables grid snapping\n")
	sb.WriteString("#   Default: 0\n")
	sb.WriteString("# ============================================================================\n\n")

	sb.WriteString("# ============================================================================\n")
	sb.WriteString("# STORAGE SETTINGS\n")
	sb.WriteString("# ============================================================================\n")
	sb.WriteString("# backend: Where layout state is persisted\n")
	sb.WriteString("#   Options: memory, file, redis\n")
	sb.WriteString("#   Default: file\n")
	sb.WriteString("# ============================================================================\n\n")

	if _, err := sb.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write config data: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(sb.String()), 0600); err != nil {
		return nil, fmt.Errorf("failed to write config file: %w", err)
	}

	return cfg, nil
}

// fillMissing fills in any missing settings with defaults
func fillMissing(cfg, defaultCfg *UserConfig) {
	if cfg.Gesture.LongPressMs <= 0 {
		cfg.Gesture.LongPressMs = defaultCfg.Gesture.LongPressMs
	}
	if cfg.Gesture.MoveThreshold <= 0 {
		cfg.Gesture.MoveThreshold = defaultCfg.Gesture.MoveThreshold
	}
	if cfg.Snapping.EdgePadding < 0 {
		cfg.Snapping.EdgePadding = defaultCfg.Snapping.EdgePadding
	}
	if cfg.Snapping.EdgeThreshold <= 0 {
		cfg.Snapping.EdgeThreshold = defaultCfg.Snapping.EdgeThreshold
	}
	if cfg.Snapping.MagnetRadius <= 0 {
		cfg.Snapping.MagnetRadius = defaultCfg.Snapping.MagnetRadius
	}
	if cfg.Snapping.GridSize < 0 {
		cfg.Snapping.GridSize = defaultCfg.Snapping.GridSize
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaultCfg.Storage.Backend
	}
	if cfg.Storage.RedisAddr == "" {
		cfg.Storage.RedisAddr = defaultCfg.Storage.RedisAddr
	}
}

func validate(cfg *UserConfig) error {
	switch cfg.Storage.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("config error in [storage]: backend - unknown backend %q (expected memory, file or redis)", cfg.Storage.Backend)
	}
	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	path, err := xdg.SearchConfigFile("pinboard/config.toml")
	if err != nil {
		// Return where it would be created
		return xdg.ConfigFile("pinboard/config.toml")
	}
	return path, nil
}
