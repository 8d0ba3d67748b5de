/*
registry.go - Depreciation system registration and lookup

PURPOSE:
  Maps a system name (the BookAsset.System key) to the three functions that
  implement it: a Hydrator, a Translator and a Stepper.

HOW IT WORKS:
  1. The process creates one Registry at startup
  2. Each system package registers itself: timesystem.Register(reg)
  3. The registry is read-only from then on and safe for concurrent readers

USAGE:
  reg := book.NewRegistry()
  if err := timesystem.Register(reg); err != nil {
      log.Fatal(err)
  }
  sys, err := reg.System("time")

WHY NOT A GLOBAL:
  Registration is explicit and owned by whoever runs the pipeline, so tests
  build their own registries and nothing is mutated after setup.
*/
package book

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/warp/depreciation-engine/generic"
)

// =============================================================================
// SYSTEM CONTRACT
// =============================================================================

// Hydrator validates records and fills in computed system data.
//
// It receives every book asset, not only its own, because some selections
// depend on the aggregate (e.g. a convention chosen from the whole year's
// acquisitions). It must return the same number of assets in the same order,
// passing through untouched any asset of another system.
type Hydrator func(assets []BookAsset) ([]BookAsset, error)

// Translator produces the depreciable Asset for one hydrated record.
// It fails with ErrSystemMismatch for records of another system.
type Translator func(a BookAsset) (generic.Asset, error)

// Stepper returns the fraction of taxYear that counts toward depreciation
// for one hydrated record, before any end-of-life truncation (which
// Asset.Depreciate applies). It fails with ErrSystemMismatch for records of
// another system.
type Stepper func(a BookAsset, taxYear int) (decimal.Decimal, error)

// System is a registered depreciation regime.
type System struct {
	Name      string
	Hydrate   Hydrator
	Translate Translator
	Step      Stepper
}

// =============================================================================
// REGISTRY
// =============================================================================

type Registry struct {
	mu      sync.RWMutex
	systems map[string]System
}

func NewRegistry() *Registry {
	return &Registry{systems: make(map[string]System)}
}

// Register adds a system. Registering a name twice is rejected.
func (r *Registry) Register(name string, h Hydrator, t Translator, s Stepper) error {
	if name == "" {
		return fmt.Errorf("register system: empty name")
	}
	if h == nil || t == nil || s == nil {
		return fmt.Errorf("register system %q: missing pipeline function", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.systems[name]; exists {
		return fmt.Errorf("register system %q: %w", name, ErrSystemConflict)
	}
	r.systems[name] = System{Name: name, Hydrate: h, Translate: t, Step: s}
	return nil
}

// System looks up a registered system by name.
func (r *Registry) System(name string) (System, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sys, ok := r.systems[name]
	if !ok {
		return System{}, &SystemNotFoundError{Name: name}
	}
	return sys, nil
}

// Systems returns the registered system names, sorted.
func (r *Registry) Systems() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.systems))
	for name := range r.systems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
