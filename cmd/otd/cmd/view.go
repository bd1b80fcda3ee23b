package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceDie/internal/config"
	"github.com/OpenTraceLab/OpenTraceDie/internal/ui"
)

var (
	viewLink  string
	viewQuery string
)

var viewCmd = &cobra.Command{
	Use:   "view [layout_file]",
	Short: "Open a layout in the interactive viewer",
	Long: `Opens a die layout in a Gio window. Without a file the last layout
opened is shown again.

Controls:
  Drag              - Pan
  Scroll Wheel      - Zoom around the pointer
  Click             - Identify and highlight
  Shift+Click       - Highlight the connected group
  Z / + and X / -   - Zoom in and out (Shift+Z zooms out)
  0                 - Reset zoom
  N / P             - Step the simulation`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().StringVar(&viewLink, "link", "", "deep link to apply, e.g. \"panx=300&pany=300&zoom=2\"")
	viewCmd.Flags().StringVar(&viewQuery, "find", "", "search to run after loading")
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := cfg.LastLayout
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no layout file given and none opened before")
	}
	lay, err := loadLayout(path)
	if err != nil {
		return err
	}
	if abs, err := filepath.Abs(path); err == nil {
		cfg.LastLayout = abs
	}

	return ui.Run(lay, ui.Options{
		Title:   "OpenTraceDie - " + filepath.Base(path),
		Config:  cfg,
		Link:    viewLink,
		Query:   viewQuery,
		Logger:  newLogger(cmd),
		Verbose: verbose,
		Persist: func(c *config.Config) error { return saveConfig(c) },
	})
}
