package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/adrg/xdg"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"

	"github.com/dodorz/pinboard/internal/config"
	"github.com/dodorz/pinboard/internal/geom"
	"github.com/dodorz/pinboard/internal/group"
	"github.com/dodorz/pinboard/internal/layout"
	"github.com/dodorz/pinboard/internal/playground"
	"github.com/dodorz/pinboard/internal/preset"
	"github.com/dodorz/pinboard/internal/store"
	"github.com/dodorz/pinboard/pkg/pinboard"
)

// demoControls is the button set the playground starts with.
var demoControls = []string{"jump", "fire", "dodge", "menu", "map"}

// loadConfig merges the user config file with CLI flag overrides.
func loadConfig() *config.UserConfig {
	userConfig, err := config.LoadUserConfig()
	if err != nil {
		log.Warn("failed to load config, using defaults", "err", err)
		userConfig = nil
	}
	return config.ApplyOverrides(config.Overrides{
		StoreBackend: storeBackend,
		RedisAddr:    redisAddr,
		LongPress:    longPress,
		GridSize:     gridSize,
		Debug:        debugMode,
	}, userConfig)
}

// openStore opens the configured persistence backend.
func openStore(cfg *config.UserConfig) (store.KV, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return store.NewMemory(), nil
	case "redis":
		return store.NewRedis(context.Background(), store.RedisConfig{
			Addr: cfg.Storage.RedisAddr,
			DB:   cfg.Storage.RedisDB,
		})
	case "file", "":
		return store.NewFile(filepath.Join(xdg.DataHome, config.StoreDirName))
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Storage.Backend)
	}
}

// newLogger routes debug output to a file so it cannot corrupt the TUI.
func newLogger() *log.Logger {
	logger := log.Default()
	if !debugMode {
		return logger
	}
	f, err := os.OpenFile(filepath.Join(os.TempDir(), "pinboard-debug.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return logger
	}
	logger = log.NewWithOptions(f, log.Options{ReportTimestamp: true})
	logger.SetLevel(log.DebugLevel)
	return logger
}

// filterMouseMotion drops mouse motion outside an active gesture to reduce
// update churn; clicks, releases and keys always pass.
func filterMouseMotion(model tea.Model, msg tea.Msg) tea.Msg {
	if _, ok := msg.(tea.MouseMotionMsg); !ok {
		return msg
	}
	m, ok := model.(*playground.Model)
	if !ok {
		return msg
	}
	if m.Engaged() {
		return msg
	}
	return nil
}

func runPlayground() error {
	cfg := loadConfig()
	logger := newLogger()

	kv, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = kv.Close() }()

	if debugMode {
		configPath, _ := config.GetConfigPath()
		logger.Debug("starting playground", "config", configPath, "backend", cfg.Storage.Backend)
	}

	model := playground.New(cfg, kv, demoControls, logger)

	p := tea.NewProgram(
		model,
		tea.WithoutSignalHandler(),
		tea.WithFilter(filterMouseMotion),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		p.Send(tea.QuitMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

// openEngine builds a headless engine over the configured store for the
// management subcommands.
func openEngine() (*pinboard.Engine, error) {
	cfg := loadConfig()
	kv, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return pinboard.New(
		pinboard.WithStore(kv),
		pinboard.WithUserConfig(cfg),
	)
}

func listPresets() error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	list := eng.Presets().List()
	if len(list) == 0 {
		fmt.Println("No presets saved.")
		return nil
	}
	for _, p := range list {
		kind := "buttons"
		if p.Broad {
			kind = "layout"
		}
		fmt.Printf("%s  %-20s  %s  %s\n", p.ID, p.Name, p.CreatedAt.Format("2006-01-02 15:04"), kind)
	}
	return nil
}

func showPreset(id string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	p, ok := eng.Presets().Get(id)
	if !ok {
		return fmt.Errorf("no preset with id %s", id)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func exportLayout(broad, toClipboard bool) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	var text string
	if broad {
		text, err = eng.Presets().ExportLayoutText()
	} else {
		text, err = eng.Presets().ExportText()
	}
	if err != nil {
		return err
	}
	if toClipboard {
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Println("Layout copied to clipboard")
		return nil
	}
	fmt.Println(text)
	return nil
}

func importLayout(path string, broad bool) error {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(bufio.NewReader(os.Stdin))
	} else {
		// #nosec G304 - path is a user-supplied CLI argument
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read preset: %w", err)
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	if broad {
		err = eng.Presets().ImportLayoutText(string(data))
	} else {
		err = eng.Presets().ImportText(string(data))
	}
	if err != nil {
		return err
	}
	fmt.Println("Layout applied.")
	return nil
}

func deletePreset(id string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	if !eng.Presets().Delete(id) {
		return fmt.Errorf("no preset with id %s", id)
	}
	fmt.Println("Preset deleted.")
	return nil
}

func listPoints() error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	pts := eng.Layout().Points()
	if len(pts) == 0 {
		fmt.Println("No magnetic points.")
		return nil
	}
	for _, pt := range pts {
		fmt.Printf("%s  %-20s  (%.0f, %.0f)\n", pt.ID, pt.Name, pt.Position.X, pt.Position.Y)
	}
	return nil
}

func addPoint(xs, ys, name string) error {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return fmt.Errorf("invalid x %q: %w", xs, err)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return fmt.Errorf("invalid y %q: %w", ys, err)
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	if name == "" {
		name = fmt.Sprintf("point (%.0f, %.0f)", x, y)
	}
	pt := eng.Layout().AddPoint(name, geom.Point{X: x, Y: y})
	fmt.Printf("Added %s (%s)\n", pt.Name, pt.ID)
	return nil
}

func removePoint(id string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	if !eng.Layout().RemovePoint(id) {
		return fmt.Errorf("no magnetic point with id %s", id)
	}
	fmt.Println("Point removed.")
	return nil
}

func printConfigPath() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func editConfigFile() error {
	// Make sure the file exists first.
	if _, err := config.LoadUserConfig(); err != nil {
		return err
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, candidate := range []string{"vim", "vi", "nano", "emacs"} {
			if _, err := exec.LookPath(candidate); err == nil {
				editor = candidate
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found; set $EDITOR")
	}

	// #nosec G204 - intentionally runs the user's editor
	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func resetConfigToDefaults() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("This will overwrite %s. Continue? [y/N] ", path)
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
	}
	if _, err := config.LoadUserConfig(); err != nil {
		return err
	}
	fmt.Printf("Configuration reset: %s\n", path)
	return nil
}

func clearStore() error {
	cfg := loadConfig()
	kv, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = kv.Close() }()

	keys := []string{
		layout.KeyPositions,
		layout.KeyHidden,
		layout.KeyActions,
		layout.KeyPoints,
		group.KeyPositionGroups,
		group.KeyUIGroups,
		preset.KeyPresets,
	}
	keys = append(keys, layout.AttrCategories...)

	ctx := context.Background()
	for _, key := range keys {
		if err := kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	fmt.Println("Store cleared.")
	return nil
}
