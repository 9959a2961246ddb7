package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/msto63/lox/pkg/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, version.String())
		fmt.Fprintf(out, "  Scanner:    %s\n", version.ComponentVersion("scanner"))
		fmt.Fprintf(out, "  Parser:     %s\n", version.ComponentVersion("parser"))
		fmt.Fprintf(out, "  Frontend:   %s\n", version.ComponentVersion("frontend"))
		fmt.Fprintf(out, "  Store:      %s (schema %d)\n", version.ComponentVersion("store"), version.Schema)
		fmt.Fprintf(out, "  Go Version: %s\n", runtime.Version())
		fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
