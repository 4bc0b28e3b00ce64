// Package main provides the entry point for the Pool Designer application.
package main

import (
	"fmt"
	"log"
	"os"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"pool-designer/internal/app"
	"pool-designer/internal/config"
	"pool-designer/internal/designer"
	"pool-designer/internal/version"
	"pool-designer/pkg/units"
	"pool-designer/ui/mainwindow"
)

const appID = "com.pooldesigner.app"

var (
	// configDir is set by the --config-dir flag.
	configDir string

	// unitFlag overrides the configured default display unit.
	unitFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pool-designer [site-image]",
	Short: "Pool Designer is a site plan tracing and measurement tool",
	Long: `Pool Designer lets you trace property, house, and pool outlines over
a site photo, derive real-world measurements from a scale reference,
and estimate coping, paver, and fencing materials.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApp,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default: platform user config dir)")
	rootCmd.Flags().StringVar(&unitFlag, "unit", "", "display unit: feet or meters (overrides config)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pool-designer %s (built %s, commit %s)\n",
			version.Version, version.BuildTime, version.GitCommit)
	},
}

func runApp(cmd *cobra.Command, args []string) error {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	dir := configDir
	if dir == "" {
		var err error
		dir, err = config.DefaultDir()
		if err != nil {
			return fmt.Errorf("resolve config dir: %w", err)
		}
	}

	settings, err := config.Load(dir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if unitFlag != "" {
		u, err := units.Parse(unitFlag)
		if err != nil {
			return err
		}
		settings.DefaultUnit = u
	}

	log.Printf("Starting pool-designer v%s (config: %s)", version.Version, dir)

	state := designer.New(settings)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.DesignerTheme{})
	win := mainwindow.New(fyneApp, state)

	if len(args) == 1 {
		if err := state.LoadBackground(args[0]); err != nil {
			log.Printf("Failed to load site image %s: %v", args[0], err)
		}
	}

	win.ShowAndRun()
	return nil
}
