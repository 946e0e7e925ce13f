// Package instruments is the external, read-only instrument catalog.
// Per spec it is "out of scope (external collaborator, specified only by
// interface)" — this package supplies a minimal, embedded seed catalog so
// the rest of the module has a concrete collaborator to exercise in tests.
package instruments

import (
	"encoding/json"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Category is the closed set of instrument classes.
type Category string

const (
	CategoryForex      Category = "forex"
	CategoryCrypto     Category = "crypto"
	CategoryIndex      Category = "index"
	CategoryStock      Category = "stock"
	CategoryCommodity  Category = "commodity"
	CategoryETF        Category = "etf"
	CategoryBond       Category = "bond"
)

// Instrument is the read-only descriptor for a tradable instrument.
type Instrument struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Category       Category   `json:"category"`
	DecimalFactor  uint32     `json:"decimal_factor"`
	StartTickDate  *time.Time `json:"start_tick_date,omitempty"`
}

// DecimalFactorF64 returns the decimal factor as a float64, the form the
// tick normalizer consumes.
func (i Instrument) DecimalFactorF64() float64 {
	return float64(i.DecimalFactor)
}

// HasDataFor reports whether the instrument has data available for date,
// per its StartTickDate (instruments with no known start are assumed to
// have data for any requested date).
func (i Instrument) HasDataFor(date time.Time) bool {
	if i.StartTickDate == nil {
		return true
	}
	return !date.Before(*i.StartTickDate)
}

func (i Instrument) String() string {
	return fmt.Sprintf("%s (%s)", i.Name, i.ID)
}

//go:embed data/instruments.json
var seedCatalog []byte

// Registry is a case-insensitive, read-only lookup of known instruments.
type Registry struct {
	byID map[string]Instrument
}

func loadRegistry(data []byte) (*Registry, error) {
	var list []Instrument
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("instruments: parse catalog: %w", err)
	}
	r := &Registry{byID: make(map[string]Instrument, len(list))}
	for _, inst := range list {
		r.byID[strings.ToLower(inst.ID)] = inst
	}
	return r, nil
}

// Get looks up an instrument by id, case-insensitively.
func (r *Registry) Get(id string) (Instrument, bool) {
	inst, ok := r.byID[strings.ToLower(id)]
	return inst, ok
}

// All returns every instrument in the registry.
func (r *Registry) All() []Instrument {
	out := make([]Instrument, 0, len(r.byID))
	for _, inst := range r.byID {
		out = append(out, inst)
	}
	return out
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry, lazily built from the embedded
// seed catalog on first use. No writes happen after initialization.
func Global() *Registry {
	globalOnce.Do(func() {
		reg, err := loadRegistry(seedCatalog)
		if err != nil {
			panic(err) // embedded catalog is compiled in; a parse failure is a build defect
		}
		globalRegistry = reg
	})
	return globalRegistry
}
