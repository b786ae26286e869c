package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oxhq/cppscan/internal/checks"
	"github.com/oxhq/cppscan/internal/config"
	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/diagnostics"
	"github.com/oxhq/cppscan/internal/odr"
	"github.com/oxhq/cppscan/internal/scanner"
	"github.com/oxhq/cppscan/internal/symbols"
)

// newAnalyzeCmd builds the analyze command. Its CLI-only switches are
// layered on top of BuildFromFlags' engine settings and parsed by a standalone
// pflag.FlagSet that tolerates unknown flags, letting --std,
// --enable-style and the rest of BuildFromFlags' surface pass through
// untouched for config.BuildFromFlags to parse in turn.
func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "analyze [files or directories...]",
		Short:              "Scan one or more translation units and report findings",
		Long:               "Resolves symbols, runs the check registry against each translation unit and prints the findings. Flags are the same surface BuildFromFlags parses.",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, rawArgs []string) error {
			var libraryDir, recordDB, runID string
			var jsonOutput bool

			fs := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
			fs.ParseErrorsWhitelist.UnknownFlags = true
			fs.StringVar(&libraryDir, "library-dir", "libraries", "Directory containing <name>.yaml library configs.")
			fs.BoolVar(&jsonOutput, "json", false, "Print findings as a JSON array instead of text.")
			fs.StringVar(&recordDB, "record-db", "", "If set, persist class observations for cross-TU ODR checking to this sqlite/libsql DSN.")
			fs.StringVar(&runID, "run-id", "default", "Run identifier under which class observations are recorded.")
			if err := fs.Parse(rawArgs); err != nil {
				return err
			}

			settings, targets, err := config.BuildFromFlags(fs.Args())
			if err != nil {
				return err
			}

			library, err := loadLibraries(libraryDir, settings.LibraryNames)
			if err != nil {
				return err
			}

			registry := checks.NewRegistry()
			must(registry.Register(checks.ReturnDangling{}))
			must(registry.Register(checks.FileUsage{}))
			must(registry.Register(checks.FormatString{Library: library}))
			must(registry.Register(checks.DeadStore{}))
			must(registry.Register(checks.UninitRead{}))

			return runAnalyze(cmd.Context(), registry, settings, targets, jsonOutput, recordDB, runID)
		},
	}
	return cmd
}

func runAnalyze(ctx context.Context, registry *checks.Registry, settings config.Settings, targets []string, jsonOutput bool, recordDB, runID string) error {
	sc := scanner.New(scanner.Config{})
	files, err := sc.Scan(ctx, targets)
	if err != nil {
		return fmt.Errorf("cppscan: scanning targets: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "cppscan: no C/C++ files found")
		return nil
	}

	var store *odr.Store
	if recordDB != "" {
		store, err = odr.Open(recordDB, false)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	sink := diagnostics.NewSink()
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := analyzeFile(ctx, registry, settings, f, sink, store, runID); err != nil {
			fmt.Fprintf(os.Stderr, "cppscan: %s: %v\n", f.Path, err)
		}
	}

	findings := sink.Filter(func(d diagnostics.Diagnostic) bool {
		return settings.SeverityEnabled(d.Severity) &&
			(settings.Inconclusive || d.Certainty == diagnostics.CertaintyNormal)
	})
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Primary.File != findings[j].Primary.File {
			return findings[i].Primary.File < findings[j].Primary.File
		}
		return findings[i].Primary.Line < findings[j].Primary.Line
	})

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(findings)
	}
	printFindings(findings)
	return nil
}

func analyzeFile(ctx context.Context, registry *checks.Registry, settings config.Settings, f scanner.Result, sink *diagnostics.Sink, store *odr.Store, runID string) error {
	source, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	tokens, err := cxxtoken.Parse(ctx, f.Grammar, f.Path, 0, source)
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	db := symbols.Build(tokens, settings.Platform)

	if err := checks.RunAll(ctx, registry, db, tokens, sink); err != nil {
		return fmt.Errorf("running checks: %w", err)
	}

	if store != nil {
		records := odr.CollectClassRecords(db, tokens)
		if err := store.Record(runID, records); err != nil {
			return fmt.Errorf("recording class observations: %w", err)
		}
	}
	return nil
}

func loadLibraries(dir string, names []string) (*config.LibraryConfig, error) {
	if len(names) == 0 {
		return nil, nil
	}
	configs := make([]*config.LibraryConfig, 0, len(names))
	for _, name := range names {
		lc, err := config.LoadLibraryConfig(filepath.Join(dir, name+".yaml"))
		if err != nil {
			return nil, err
		}
		configs = append(configs, lc)
	}
	return config.Merge(configs...), nil
}

func printFindings(findings []diagnostics.Diagnostic) {
	for _, d := range findings {
		fmt.Printf("%s:%d:%d: %s: %s [%s]\n",
			d.Primary.File, d.Primary.Line, d.Primary.Column,
			d.Severity, d.Message, d.ID)
		for _, step := range d.ErrorPath {
			fmt.Printf("  %s:%d:%d: note: %s\n", step.Location.File, step.Location.Line, step.Location.Column, step.Message)
		}
	}
	fmt.Fprintf(os.Stderr, "%d finding(s)\n", len(findings))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
