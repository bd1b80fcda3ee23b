package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceDie/internal/config"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/engine"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/layout"
)

var (
	// Global flags
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "otd",
	Short: "OpenTraceDie - chip die layout viewer",
	Long: `OpenTraceDie (otd) displays a chip die layout and identifies the
nodes and transistors on it:
  - pan and zoom a layered die image
  - find nodes by id or name and transistors by name
  - click to identify what is under the pointer
  - share the current view as a link

Examples:
  otd view die.chip                      # Open the viewer
  otd view die.chip --find "clk0 t1"     # Open framed on a search
  otd find die.chip 42                   # Resolve a query headless
  otd pick die.chip 4500 1500            # Identify a chip coordinate
  otd render die.chip -o die.png         # Write the composited die
  otd link decode "panx=300&pany=300&zoom=2"`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default is the user config directory)")
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

func saveConfig(cfg *config.Config) error {
	if configPath != "" {
		return config.SaveFile(configPath, cfg)
	}
	return config.Save(cfg)
}

// newLogger logs to stderr when verbose, and nowhere otherwise.
func newLogger(cmd *cobra.Command) *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(cmd.ErrOrStderr(), "otd: ", log.Ltime)
}

func loadLayout(path string) (*layout.Layout, error) {
	lay, err := layout.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading layout: %w", err)
	}
	return lay, nil
}

// newEngine loads the settings and layout, starts an engine and runs its
// first hit-buffer build to completion.
func newEngine(cmd *cobra.Command, path string) (*engine.Engine, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	lay, err := loadLayout(path)
	if err != nil {
		return nil, nil, err
	}
	opts := cfg.EngineOptions()
	opts.Logger = newLogger(cmd)
	opts.Verbose = verbose
	eng, err := engine.New(lay, opts)
	if err != nil {
		return nil, nil, err
	}
	for _, l := range cfg.HiddenLayers {
		eng.SetLayerVisible(l, false)
	}
	if err := eng.BuildHits(cmd.Context()); err != nil {
		return nil, nil, err
	}
	return eng, cfg, nil
}
