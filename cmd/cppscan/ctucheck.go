package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/cppscan/internal/odr"
)

func newCTUCheckCmd() *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "ctu-check <db-dsn>",
		Short: "Reconcile class observations recorded by prior analyze --record-db runs",
		Long:  "Reads class observations persisted under one run and reports one-definition-rule violations: the same class name defined with disagreeing bodies across translation units.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := odr.Open(args[0], false)
			if err != nil {
				return err
			}
			defer store.Close()

			violations, err := store.Violations(runID)
			if err != nil {
				return err
			}
			if len(violations) == 0 {
				fmt.Println("no one-definition-rule violations found")
				return nil
			}

			for _, v := range violations {
				d := v.Diagnostic()
				fmt.Printf("%s:%d:%d: %s: %s [%s]\n", d.Primary.File, d.Primary.Line, d.Primary.Column, d.Severity, d.Message, d.ID)
				for _, step := range d.ErrorPath {
					fmt.Printf("  %s:%d:%d: note: %s\n", step.Location.File, step.Location.Line, step.Location.Column, step.Message)
				}
			}
			fmt.Fprintf(os.Stderr, "%d violation(s)\n", len(violations))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run-id", "", "Limit reconciliation to one run (all runs if empty).")
	return cmd
}
