package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/oxhq/cppscan/internal/diagnostics"
)

// newDiffCmd compares two recorded analyze --json runs, rendering a
// unified diff of their findings the way a library-config change's
// before/after is reviewed.
func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <before.json> <after.json>",
		Short: "Show a unified diff between two analyze --json runs",
		Long:  "Reads two JSON finding lists produced by 'analyze --json', renders each as one line per diagnostic, and diffs them so library-config or source changes can be reviewed by their effect on findings.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := findingLines(args[0])
			if err != nil {
				return fmt.Errorf("cppscan: reading %s: %w", args[0], err)
			}
			after, err := findingLines(args[1])
			if err != nil {
				return fmt.Errorf("cppscan: reading %s: %w", args[1], err)
			}

			text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        before,
				B:        after,
				FromFile: args[0],
				ToFile:   args[1],
				Context:  3,
			})
			if err != nil {
				return fmt.Errorf("cppscan: computing diff: %w", err)
			}
			if text == "" {
				fmt.Println("no difference in findings")
				return nil
			}
			fmt.Print(text)
			return nil
		},
	}
	return cmd
}

// findingLines loads a JSON-encoded []diagnostics.Diagnostic (as
// written by 'analyze --json') and renders each as the same one-line
// text printFindings prints, so the two runs diff as plain text.
func findingLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var findings []diagnostics.Diagnostic
	if err := json.Unmarshal(data, &findings); err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(findings))
	for _, d := range findings {
		lines = append(lines, fmt.Sprintf("%s:%d:%d: %s: %s [%s]\n",
			d.Primary.File, d.Primary.Line, d.Primary.Column, d.Severity, d.Message, d.ID))
	}
	return lines, nil
}
