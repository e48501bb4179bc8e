// Package main implements Pinboard, a drag-to-place layout engine for
// on-screen controls, with an interactive terminal playground and CLI
// management of presets, magnetic points and stored layouts.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Global flags
var (
	debugMode    bool
	storeBackend string
	redisAddr    string
	longPress    time.Duration
	gridSize     float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pinboard",
		Short: "Drag-to-place layout engine playground",
		Long: `Pinboard - drag-to-place layout engine

Hold a button to pick it up, drag it anywhere, and release to place it.
Positions snap to viewport edges, axis centers and user-defined magnetic
points, persist across runs, and can be grouped, hidden and exported as
presets.`,
		Example: `  # Run the playground
  pinboard

  # Keep layouts in redis instead of the config directory
  pinboard --store redis --redis-addr localhost:6379

  # Shorter hold before a drag starts
  pinboard --long-press 500ms

  # Snap to a 10-pixel grid instead of edges and points
  pinboard --grid 10

  # Export the current layout as JSON
  pinboard preset export

  # Edit configuration
  pinboard config edit`,
		Version: version,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runPlayground()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Storage backend: memory, file, redis (default: from config or file)")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "Redis address for the redis backend (default: from config or localhost:6379)")
	rootCmd.PersistentFlags().DurationVar(&longPress, "long-press", 0, "Hold duration before a drag starts (default: from config or 1.5s, min 200ms, max 5s)")
	rootCmd.PersistentFlags().Float64Var(&gridSize, "grid", 0, "Grid cell size; overrides edge and point snapping when set")

	presetCmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved layout presets",
		Long:  `List, inspect, export, import and delete saved layout presets`,
	}

	presetListCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		RunE: func(_ *cobra.Command, _ []string) error {
			return listPresets()
		},
	}

	presetShowCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one preset as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return showPreset(args[0])
		},
	}

	var exportBroad, exportCopy bool
	presetExportCmd := &cobra.Command{
		Use:   "export",
		Short: "Print the current layout as portable JSON",
		Long: `Print the current layout as portable JSON

By default only button state is exported (positions, visual attributes,
hidden set, action overrides). With --layout the export also carries
groups and magnetic points.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return exportLayout(exportBroad, exportCopy)
		},
	}
	presetExportCmd.Flags().BoolVar(&exportBroad, "layout", false, "Include groups and magnetic points")
	presetExportCmd.Flags().BoolVar(&exportCopy, "copy", false, "Copy to the clipboard instead of printing")

	var importBroad bool
	presetImportCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Apply a layout from JSON (file or stdin)",
		Long: `Apply a layout from JSON

Reads from the given file, or stdin when omitted. The text is validated
before anything is written; malformed input changes nothing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return importLayout(path, importBroad)
		},
	}
	presetImportCmd.Flags().BoolVar(&importBroad, "layout", false, "Treat the input as a layout preset with groups and points")

	presetDeleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return deletePreset(args[0])
		},
	}

	presetCmd.AddCommand(presetListCmd, presetShowCmd, presetExportCmd, presetImportCmd, presetDeleteCmd)

	pointsCmd := &cobra.Command{
		Use:   "points",
		Short: "Manage magnetic snap points",
		Long:  `List, add and remove the magnetic points dragged controls snap to`,
	}

	pointsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List magnetic points",
		RunE: func(_ *cobra.Command, _ []string) error {
			return listPoints()
		},
	}

	var pointName string
	pointsAddCmd := &cobra.Command{
		Use:   "add <x> <y>",
		Short: "Add a magnetic point",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return addPoint(args[0], args[1], pointName)
		},
	}
	pointsAddCmd.Flags().StringVar(&pointName, "name", "", "Display name for the point")

	pointsRemoveCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a magnetic point",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return removePoint(args[0])
		},
	}

	pointsCmd.AddCommand(pointsListCmd, pointsAddCmd, pointsRemoveCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage Pinboard configuration",
		Long:  `Manage Pinboard configuration file and settings`,
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		RunE: func(_ *cobra.Command, _ []string) error {
			return printConfigPath()
		},
	}

	configEditCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration in $EDITOR",
		Long: `Open the Pinboard configuration file in your default editor

The editor is determined by checking $EDITOR, $VISUAL, or common editors
like vim, vi, nano, and emacs in that order.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return editConfigFile()
		},
	}

	configResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		RunE: func(_ *cobra.Command, _ []string) error {
			return resetConfigToDefaults()
		},
	}

	configCmd.AddCommand(configPathCmd, configEditCmd, configResetCmd)

	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the persistence backend",
	}

	storeClearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored layout state",
		Long: `Delete all stored layout state

Removes positions, visual attributes, groups, magnetic points and saved
presets from the configured backend. Controls return to their default
in-flow placement on the next run.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return clearStore()
		},
	}

	storeCmd.AddCommand(storeClearCmd)

	rootCmd.AddCommand(presetCmd, pointsCmd, configCmd, storeCmd)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s\nBy: %s", version, commit, date, builtBy)),
	); err != nil {
		os.Exit(1)
	}
}
