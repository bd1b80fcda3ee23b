package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/deeplink"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/viewport"
)

var (
	linkPanX  float64
	linkPanY  float64
	linkZoom  float64
	linkQuery string
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Encode and decode deep links",
	Long:  `Commands for the query strings that capture a view and a search.`,
}

var linkEncodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Build a deep link from a view",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		v := cfg.ViewportConfig().MoveTo(linkPanX, linkPanY, linkZoom)
		fmt.Fprintf(cmd.OutOrStdout(), "?%s\n", deeplink.Encode(v, linkQuery))
		return nil
	},
}

var linkDecodeCmd = &cobra.Command{
	Use:   "decode <query_string>",
	Short: "Show the view and search a deep link restores",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		d := deeplink.NewDecoder(newLogger(cmd))
		d.Lenient = cfg.LenientLinks
		link := d.Decode(args[0])

		out := cmd.OutOrStdout()
		if link.View == nil {
			fmt.Fprintln(out, "view: unchanged")
		} else {
			vc := cfg.ViewportConfig()
			fmt.Fprintf(out, "view: %s\n", vc.MoveTo(link.View.CenterX, link.View.CenterY, link.View.Zoom))
		}
		if link.Query != "" {
			fmt.Fprintf(out, "find: %s\n", link.Query)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)
	linkCmd.AddCommand(linkEncodeCmd)
	linkCmd.AddCommand(linkDecodeCmd)

	home := viewport.DefaultConfig().Home()
	linkEncodeCmd.Flags().Float64Var(&linkPanX, "panx", home.CenterX, "view centre x")
	linkEncodeCmd.Flags().Float64Var(&linkPanY, "pany", home.CenterY, "view centre y")
	linkEncodeCmd.Flags().Float64Var(&linkZoom, "zoom", home.Zoom, "zoom factor")
	linkEncodeCmd.Flags().StringVar(&linkQuery, "find", "", "search to include")
}
