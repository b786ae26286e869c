// Package config loads the platform model, severity/certainty/standard
// toggles and library-config records spec.md §6 describes as the
// engine's external settings input, the way the teacher's own
// internal/config builds a Config from command-line flags.
package config

import (
	"flag"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/oxhq/cppscan/internal/diagnostics"
	"github.com/oxhq/cppscan/internal/symbols"
)

// Standard is the C++ language standard level safe-checks and
// diagnostics are evaluated against.
type Standard int

const (
	StandardC99 Standard = iota
	StandardCpp03
	StandardCpp11
	StandardCpp14
	StandardCpp17
	StandardCpp20
)

func (s Standard) String() string {
	names := [...]string{"c99", "c++03", "c++11", "c++14", "c++17", "c++20"}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

func parseStandard(s string) (Standard, error) {
	switch s {
	case "c99":
		return StandardC99, nil
	case "c++03", "cpp03":
		return StandardCpp03, nil
	case "c++11", "cpp11":
		return StandardCpp11, nil
	case "c++14", "cpp14":
		return StandardCpp14, nil
	case "c++17", "cpp17":
		return StandardCpp17, nil
	case "c++20", "cpp20":
		return StandardCpp20, nil
	default:
		return 0, fmt.Errorf("config: unknown standard %q", s)
	}
}

// Settings is the subset of engine-wide configuration the CLI collects
// once per run: the platform's primitive widths (feeding
// symbols.Settings), which severities are reported, whether
// inconclusive findings are kept, the language standard, safe-checks
// mode, and which library names are active.
type Settings struct {
	Platform symbols.Settings

	Standard           Standard
	Inconclusive        bool
	SafeChecks         bool
	EnabledSeverities  map[diagnostics.Severity]bool
	LibraryNames       []string
}

// DefaultSettings mirrors a typical LP64 platform with every severity
// but style enabled, matching cppcheck's own out-of-the-box defaults.
func DefaultSettings() Settings {
	return Settings{
		Platform: symbols.DefaultSettings(),
		Standard: StandardCpp17,
		EnabledSeverities: map[diagnostics.Severity]bool{
			diagnostics.SeverityError:       true,
			diagnostics.SeverityWarning:     true,
			diagnostics.SeverityPortability: true,
			diagnostics.SeverityPerformance: true,
			diagnostics.SeverityStyle:       false,
		},
	}
}

// SeverityEnabled reports whether findings of the given severity
// should be kept.
func (s Settings) SeverityEnabled(sev diagnostics.Severity) bool {
	return s.EnabledSeverities[sev]
}

// BuildFromFlags parses args against a pflag.FlagSet the same shape as
// the teacher's BuildConfigFromFlags: one flag per setting, validated
// after Parse rather than as each flag is read.
func BuildFromFlags(args []string) (Settings, []string, error) {
	fs := pflag.NewFlagSet("cppscan", pflag.ContinueOnError)

	help := fs.BoolP("help", "h", false, "Show this help message and exit.")
	standard := fs.StringP("std", "s", "c++17", "Language standard: c99, c++03, c++11, c++14, c++17, c++20.")
	inconclusive := fs.Bool("inconclusive", false, "Report inconclusive findings alongside normal-certainty ones.")
	safe := fs.Bool("safe-checks", false, "Assume unknown external code behaves correctly (fewer false positives, more false negatives).")
	enableStyle := fs.Bool("enable-style", false, "Enable style-severity findings.")
	disableWarning := fs.Bool("disable-warning", false, "Disable warning-severity findings.")
	pointerBits := fs.Int("pointer-bits", 64, "Target platform pointer width in bits.")
	intBits := fs.Int("int-bits", 32, "Target platform int width in bits.")
	longBits := fs.Int("long-bits", 64, "Target platform long width in bits.")
	charUnsigned := fs.Bool("char-unsigned", false, "Treat a bare 'char' as unsigned on the target platform.")
	libraries := fs.StringSlice("library", nil, "Library-config names to enable (repeatable).")

	if err := fs.Parse(args); err != nil {
		return Settings{}, nil, err
	}
	if *help {
		return Settings{}, nil, flag.ErrHelp
	}

	std, err := parseStandard(*standard)
	if err != nil {
		return Settings{}, nil, err
	}

	cfg := DefaultSettings()
	cfg.Standard = std
	cfg.Inconclusive = *inconclusive
	cfg.SafeChecks = *safe
	cfg.Platform = symbols.Settings{
		PointerBits:    *pointerBits,
		IntBits:        *intBits,
		LongBits:       *longBits,
		CharIsUnsigned: *charUnsigned,
	}
	cfg.LibraryNames = *libraries
	if *enableStyle {
		cfg.EnabledSeverities[diagnostics.SeverityStyle] = true
	}
	if *disableWarning {
		cfg.EnabledSeverities[diagnostics.SeverityWarning] = false
	}

	return cfg, fs.Args(), nil
}
