package cmd

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/compositor"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/engine"
)

var (
	renderOutput string
	renderLink   string
	renderQuery  string
	renderTheme  string
	renderWindow bool
	renderLayers []int
	renderNoHL   bool
)

var renderCmd = &cobra.Command{
	Use:   "render <layout_file>",
	Short: "Write the composited die as a PNG",
	Long: `Flattens the background, overlay and highlight surfaces into one
image. With --window only the part visible in the viewport is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "die.png", "output PNG file")
	renderCmd.Flags().StringVar(&renderLink, "link", "", "deep link setting the view and search")
	renderCmd.Flags().StringVar(&renderQuery, "find", "", "search to highlight")
	renderCmd.Flags().StringVar(&renderTheme, "theme", "", "colour theme (classic or muted)")
	renderCmd.Flags().BoolVar(&renderWindow, "window", false, "crop to the visible viewport")
	renderCmd.Flags().IntSliceVar(&renderLayers, "layers", nil, "draw only these layers, e.g. 0,5")
	renderCmd.Flags().BoolVar(&renderNoHL, "no-highlight", false, "leave the highlight surface out")
}

func runRender(cmd *cobra.Command, args []string) error {
	eng, _, err := newEngine(cmd, args[0])
	if err != nil {
		return err
	}
	if renderTheme != "" {
		t, ok := compositor.ThemeByName(renderTheme)
		if !ok {
			return fmt.Errorf("unknown theme %q", renderTheme)
		}
		eng.Compositor().SetTheme(t)
	}
	if len(renderLayers) > 0 {
		eng.Compositor().ShowLayers(renderLayers...)
	}
	if renderNoHL {
		eng.Compositor().SetSurfaceVisible(compositor.SurfaceHighlight, false)
	}
	if renderLink != "" {
		eng.ApplyDeepLink(renderLink)
	}
	if renderQuery != "" {
		eng.Find(renderQuery)
	}
	eng.SettleHighlight()

	var img image.Image = eng.Compositor().Composite()
	if renderWindow {
		img = cropToWindow(eng, img.(*image.RGBA))
	}

	f, err := os.Create(renderOutput)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", renderOutput, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("cannot encode %s: %w", renderOutput, err)
	}
	b := img.Bounds()
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d) view %s\n", renderOutput, b.Dx(), b.Dy(), eng.View())
	return nil
}

func cropToWindow(eng *engine.Engine, img *image.RGBA) image.Image {
	cfg := eng.Config()
	bb := cfg.Visible(eng.View())
	a, b := cfg.ToCanvas(bb.Min), cfg.ToCanvas(bb.Max)
	r := image.Rect(
		int(math.Floor(math.Min(a.X, b.X))), int(math.Floor(math.Min(a.Y, b.Y))),
		int(math.Ceil(math.Max(a.X, b.X))), int(math.Ceil(math.Max(a.Y, b.Y))),
	)
	return img.SubImage(r.Intersect(img.Bounds()))
}
