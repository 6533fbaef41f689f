package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/henkwiedig/msposd/internal/font"
)

// CreateFontInfoCmd builds the font inspector.
func CreateFontInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "font-info [font.mcm]",
		Short: "Inspect a MAX7456 font file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := font.LoadMCM(args[0])
			if err != nil {
				return err
			}

			w, h := table.CellSize()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "glyphs:    %d\n", font.NumGlyphs)
			fmt.Fprintf(out, "cell size: %dx%d\n", w, h)
			fmt.Fprintf(out, "defined:   %d (rest fully transparent)\n", table.Len())
			return nil
		},
	}
}
