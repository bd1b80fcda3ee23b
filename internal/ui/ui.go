// Package ui is the Gio front end: one window showing a die layout with
// find, pan, zoom and click-to-identify.
package ui

import (
	"fmt"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/OpenTraceLab/OpenTraceDie/internal/config"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/engine"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/layout"
)

// Options selects what the window opens on.
type Options struct {
	Title   string
	Config  *config.Config
	Link    string // deep link applied after loading
	Query   string // find run after loading when Link is empty
	Logger  *log.Logger
	Verbose bool

	// Persist is called with the settings as the window closes, so hidden
	// layers survive a restart.
	Persist func(*config.Config) error
}

// Run launches the viewer for lay and blocks until the window closes.
func Run(lay *layout.Layout, opts Options) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	title := opts.Title
	if title == "" {
		title = "OpenTraceDie"
	}

	w := new(app.Window)
	w.Option(app.Title(title), app.Size(unit.Dp(1024), unit.Dp(820)))

	sched := newLoop(w.Invalidate)
	eopts := cfg.EngineOptions()
	eopts.Scheduler = sched
	eopts.Logger = opts.Logger
	eopts.Verbose = opts.Verbose
	eng, err := engine.New(lay, eopts)
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	for _, l := range cfg.HiddenLayers {
		eng.SetLayerVisible(l, false)
	}
	switch {
	case opts.Link != "":
		eng.ApplyDeepLink(opts.Link)
	case opts.Query != "":
		eng.Find(opts.Query)
	}

	v := newViewer(w, eng, sched, opts.Logger)
	v.Logf("[BOOT] %d nodes, %d transistors", len(lay.Nodes), len(lay.Transistors))

	go func() {
		if err := v.Run(); err != nil {
			log.Printf("ui: %v", err)
		}
		if opts.Persist != nil {
			cfg.HiddenLayers = eng.Compositor().HiddenLayers()
			if err := opts.Persist(cfg); err != nil {
				log.Printf("ui: saving settings: %v", err)
			}
		}
		os.Exit(0)
	}()

	app.Main()
	return nil
}
