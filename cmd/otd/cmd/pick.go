package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/layout"
)

var (
	pickLink   string
	pickScreen bool
)

var pickCmd = &cobra.Command{
	Use:   "pick <layout_file> <x> <y>",
	Short: "Identify the object at a point",
	Long: `Reports what a click at a point would select. The point is in chip
coordinates unless --screen is given, in which case it is a viewport pixel
under the view set by --link (the home view by default).`,
	Args: cobra.ExactArgs(3),
	RunE: runPick,
}

func init() {
	rootCmd.AddCommand(pickCmd)
	pickCmd.Flags().StringVar(&pickLink, "link", "", "deep link setting the view")
	pickCmd.Flags().BoolVar(&pickScreen, "screen", false, "treat x and y as viewport pixels")
}

func runPick(cmd *cobra.Command, args []string) error {
	x, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid x %q: %w", args[1], err)
	}
	y, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid y %q: %w", args[2], err)
	}

	eng, _, err := newEngine(cmd, args[0])
	if err != nil {
		return err
	}
	if pickLink != "" {
		eng.ApplyDeepLink(pickLink)
	}

	p := geom.Pt(x, y)
	if !pickScreen {
		cfg, view := eng.Config(), eng.View()
		p = cfg.ToScreen(p, view).Add(cfg.Origin(view))
	}
	res := eng.Click(p, false)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Status.Title)
	fmt.Fprintln(out, res.Status.Detail)
	if !res.Found {
		return nil
	}
	g, _ := eng.Layout().Geometry(res.Ref)
	fmt.Fprintf(out, "segments: %d\n", len(g.Segments))
	if n, ok := eng.Layout().Node(res.Ref.Node); ok && res.Ref.Kind == layout.KindNode && len(n.Aliases) > 0 {
		fmt.Fprintf(out, "aliases: %s\n", strings.Join(n.Aliases, ", "))
	}
	if t, ok := eng.Layout().Transistor(res.Ref.Transistor); ok {
		fmt.Fprintf(out, "gate: %d c1: %d c2: %d\n", t.Gate, t.C1, t.C2)
	}
	return nil
}
