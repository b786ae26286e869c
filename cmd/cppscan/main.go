// Command cppscan runs the C/C++ static analysis engine: symbol
// resolution, value-flow, and the check registry, the way the
// teacher's demo/cmd builds its cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/cppscan/internal/config"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "cppscan: loading .env:", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "cppscan",
		Short: "C/C++ static analysis engine",
		Long:  "Symbol resolution, bidirectional value-flow, and format-string analysis for C and C++ translation units.",
	}

	rootCmd.AddCommand(newAnalyzeCmd(), newCTUCheckCmd(), newDiffCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
