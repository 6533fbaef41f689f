package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/henkwiedig/msposd/internal/version"
)

// CreateVersionCmd builds the version command.
func CreateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.Get()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "msposd %s\n", info.Version)
			fmt.Fprintf(out, "  commit:   %s\n", info.GitCommit)
			fmt.Fprintf(out, "  built:    %s\n", info.BuildDate)
			fmt.Fprintf(out, "  go:       %s (%s)\n", info.GoVersion, info.Platform)
		},
	}
}
