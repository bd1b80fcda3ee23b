package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find <layout_file> <query>...",
	Short: "Resolve a search without opening a window",
	Long: `Resolves node ids, node names and transistor names the way the
viewer's find box does, then prints the status line, the framed view and
the deep link that reproduces it.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	eng, _, err := newEngine(cmd, args[0])
	if err != nil {
		return err
	}
	query := strings.Join(args[1:], " ")
	res := eng.Find(query)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Status)
	for _, ref := range res.Set {
		fmt.Fprintf(out, "  %s\n", ref)
	}
	if len(res.Dropped) > 0 {
		fmt.Fprintf(out, "no match: %s\n", strings.Join(res.Dropped, " "))
	}
	if res.Found() {
		bb := res.Bounds
		fmt.Fprintf(out, "bounds: %.0f,%.0f - %.0f,%.0f\n", bb.Min.X, bb.Min.Y, bb.Max.X, bb.Max.Y)
	}
	fmt.Fprintf(out, "view: %s\n", eng.View())
	fmt.Fprintf(out, "link: ?%s\n", eng.DeepLink())
	return nil
}
