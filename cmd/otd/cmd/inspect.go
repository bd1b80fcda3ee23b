package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/chewxy/sexp"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <layout_file>",
	Short: "Show layout file statistics",
	Long: `Reads a layout file with a generic s-expression reader, then loads it
and lists node, transistor and per-layer segment counts.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	filename := args[0]
	out := cmd.OutOrStdout()

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat file: %w", err)
	}
	fmt.Fprintf(out, "File: %s (%d bytes)\n", filename, info.Size())

	exprs, err := sexp.Parse(file)
	file.Close()
	if err != nil {
		// The generic reader is stricter than the layout parser about
		// comments, so this is only reported.
		fmt.Fprintf(out, "Expressions: unavailable (%v)\n", err)
	} else {
		leaves := 0
		for _, e := range exprs {
			if e.IsLeaf() {
				leaves++
			} else {
				leaves += e.LeafCount()
			}
		}
		fmt.Fprintf(out, "Expressions: %d (%d atoms)\n", len(exprs), leaves)
	}

	lay, err := loadLayout(filename)
	if err != nil {
		return err
	}
	st := lay.Stats()
	fmt.Fprintf(out, "Name: %s\n", lay.Name)
	fmt.Fprintf(out, "Extent: %.0f..%.0f\n", lay.ExtentMin, lay.ExtentMax)
	fmt.Fprintf(out, "Nodes: %d (%d named)\n", st.Nodes, st.Named)
	fmt.Fprintf(out, "Transistors: %d\n", st.Transistors)
	fmt.Fprintf(out, "Segments: %d\n", st.Segments)

	layers := make([]int, 0, len(st.PerLayer))
	for l := range st.PerLayer {
		layers = append(layers, l)
	}
	sort.Ints(layers)
	for _, l := range layers {
		fmt.Fprintf(out, "  %-12s %d\n", lay.LayerName(l), st.PerLayer[l])
	}
	bb := lay.Bounds()
	if !bb.IsEmpty() {
		fmt.Fprintf(out, "Bounds: %.0f,%.0f - %.0f,%.0f\n", bb.Min.X, bb.Min.Y, bb.Max.X, bb.Max.Y)
	}
	return nil
}
