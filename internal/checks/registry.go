// Package checks supplies the Check seam spec.md treats as an external
// collaborator: a deterministic registry plus representative
// consumers (returnDangling, the file-usage checker, the format-string
// matcher, unreadVariable's forward/SameExpression walk, and
// uninitializedVariable's reverse/SameExpression walk) that exercise
// the symbol database, value-flow engines and diagnostics sink end to
// end. It is not a reimplementation of the full check suite — see
// DESIGN.md.
package checks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/diagnostics"
	"github.com/oxhq/cppscan/internal/symbols"
)

// Check is one independent analysis rule. Run walks a single
// translation unit's token list and symbol database, reporting any
// findings to sink.
type Check interface {
	ID() string
	Run(ctx context.Context, db *symbols.Database, tokens *cxxtoken.List, sink *diagnostics.Sink) error
}

// Registry is a thread-safe collection of Checks keyed by ID, mirroring
// internal/registry's provider registry but retargeted from language
// providers to analysis checks.
type Registry struct {
	mu     sync.RWMutex
	checks map[string]Check
}

// NewRegistry returns an empty registry. Checks must be registered
// explicitly — there is no compiled-in default set, so a caller that
// wants nothing pays for nothing.
func NewRegistry() *Registry {
	return &Registry{checks: make(map[string]Check)}
}

// Register adds a Check. Re-registering the same ID is an error, the
// same conflict rule the provider registry enforces for language names.
func (r *Registry) Register(c Check) error {
	if c == nil {
		return fmt.Errorf("checks: nil check")
	}
	id := c.ID()
	if id == "" {
		return fmt.Errorf("checks: check must have a non-empty ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.checks[id]; exists {
		return fmt.Errorf("checks: %q already registered", id)
	}
	r.checks[id] = c
	return nil
}

// Get looks up a Check by ID.
func (r *Registry) Get(id string) (Check, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.checks[id]
	return c, ok
}

// All returns every registered Check, sorted by ID for deterministic
// run order.
func (r *Registry) All() []Check {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Check, 0, len(r.checks))
	for _, c := range r.checks {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// RunAll runs every registered check in ID order against one
// translation unit, stopping at the first Check that returns an error
// (context cancellation, typically) and reporting that error to the
// caller alongside whatever the sink already collected.
func RunAll(ctx context.Context, r *Registry, db *symbols.Database, tokens *cxxtoken.List, sink *diagnostics.Sink) error {
	for _, c := range r.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Run(ctx, db, tokens, sink); err != nil {
			return fmt.Errorf("checks: %s: %w", c.ID(), err)
		}
	}
	return nil
}
