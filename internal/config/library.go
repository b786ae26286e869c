package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FunctionRecord is one library-known function's behavior contract:
// whether it returns, whether it is pure/const (safe to assume no
// side effects for value-flow purposes), and which argument (if any)
// is a printf/scanf-style format string.
type FunctionRecord struct {
	Name              string `yaml:"name"`
	Noreturn          bool   `yaml:"noreturn"`
	Pure              bool   `yaml:"pure"`
	Const             bool   `yaml:"const"`
	FormatStringArgNo int    `yaml:"formatStringArgNo"` // 0 = not a format function
	Scanf             bool   `yaml:"scanf"`
}

// ContainerRecord mirrors symbols.ContainerInfo's YAML source: what a
// container's iteration/indexing operations yield.
type ContainerRecord struct {
	Name           string `yaml:"name"`
	StdStringLike  bool   `yaml:"stdStringLike"`
	ElementTypePos int    `yaml:"elementTypePos"`
}

// SmartPointerRecord describes a RAII pointer wrapper's ownership
// semantics for lifetime value tracking.
type SmartPointerRecord struct {
	Name   string `yaml:"name"`
	Unique bool   `yaml:"unique"` // move-only (unique_ptr) vs shared (shared_ptr)
}

// LibraryConfig is one named library's records (e.g. "std", "posix",
// "gnu"), loaded from a YAML file and consulted by value-flow and the
// format-string matcher.
type LibraryConfig struct {
	Name          string                        `yaml:"name"`
	Functions     map[string]FunctionRecord      `yaml:"functions"`
	Containers    map[string]ContainerRecord     `yaml:"containers"`
	SmartPointers map[string]SmartPointerRecord  `yaml:"smartPointers"`
}

// LoadLibraryConfig reads one library-config YAML file.
func LoadLibraryConfig(path string) (*LibraryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading library config %s: %w", path, err)
	}
	var cfg LibraryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing library config %s: %w", path, err)
	}
	return &cfg, nil
}

// IsFormatFunction reports whether name is known to consume a
// printf/scanf-style format string, and if so at which 1-based
// argument position.
func (lc *LibraryConfig) IsFormatFunction(name string) (argNo int, scanf bool, ok bool) {
	rec, found := lc.Functions[name]
	if !found || rec.FormatStringArgNo == 0 {
		return 0, false, false
	}
	return rec.FormatStringArgNo, rec.Scanf, true
}

// IsNoreturn reports whether a library function is known never to
// return control to its caller. No check in this repository consults
// it; the FileUsage check resets stream state on return/continue/break
// and at the end of each function body, not after noreturn calls.
func (lc *LibraryConfig) IsNoreturn(name string) bool {
	return lc.Functions[name].Noreturn
}

// Merge combines several LibraryConfigs (e.g. "std" + "posix") into
// one lookup table, later configs winning on name collision.
func Merge(configs ...*LibraryConfig) *LibraryConfig {
	merged := &LibraryConfig{
		Functions:     make(map[string]FunctionRecord),
		Containers:    make(map[string]ContainerRecord),
		SmartPointers: make(map[string]SmartPointerRecord),
	}
	for _, c := range configs {
		if c == nil {
			continue
		}
		for k, v := range c.Functions {
			merged.Functions[k] = v
		}
		for k, v := range c.Containers {
			merged.Containers[k] = v
		}
		for k, v := range c.SmartPointers {
			merged.SmartPointers[k] = v
		}
	}
	return merged
}
