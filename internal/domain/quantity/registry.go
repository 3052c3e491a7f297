package quantity

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
)

// Registry resolves unit symbols, applying SI prefixes to prefixable units.
type Registry struct {
	units map[string]Unit
	mu    sync.RWMutex
}

// siPrefixes lists the prefixes tried when a symbol is not registered verbatim.
var siPrefixes = []struct {
	symbol string
	factor float64
}{
	{"n", 1e-9},
	{"u", 1e-6},
	{"µ", 1e-6},
	{"m", 1e-3},
	{"c", 1e-2},
	{"d", 1e-1},
	{"k", 1e3},
	{"M", 1e6},
	{"G", 1e9},
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{units: make(map[string]Unit)}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry holding SI base, common derived
// and a handful of imperial units.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		r := NewRegistry()
		for _, u := range []Unit{
			{Symbol: "m", Scale: 1, Dim: dimLength, prefixable: true},
			{Symbol: "g", Scale: 1e-3, Dim: dimMass, prefixable: true},
			{Symbol: "s", Scale: 1, Dim: dimTime, prefixable: true},
			{Symbol: "A", Scale: 1, Dim: dimCurrent, prefixable: true},
			{Symbol: "K", Scale: 1, Dim: dimTemperature, prefixable: true},
			{Symbol: "mol", Scale: 1, Dim: dimAmount, prefixable: true},
			{Symbol: "cd", Scale: 1, Dim: dimLuminosity},
			{Symbol: "N", Scale: 1, Dim: dimForce, prefixable: true},
			{Symbol: "Pa", Scale: 1, Dim: dimPressure, prefixable: true},
			{Symbol: "J", Scale: 1, Dim: dimEnergy, prefixable: true},
			{Symbol: "W", Scale: 1, Dim: dimPower, prefixable: true},
			{Symbol: "V", Scale: 1, Dim: dimVoltage, prefixable: true},
			{Symbol: "Hz", Scale: 1, Dim: dimFreq, prefixable: true},
			{Symbol: "L", Scale: 1e-3, Dim: Dimension{3}, prefixable: true},
			{Symbol: "min", Scale: 60, Dim: dimTime},
			{Symbol: "h", Scale: 3600, Dim: dimTime},
			{Symbol: "in", Scale: 0.0254, Dim: dimLength},
			{Symbol: "ft", Scale: 0.3048, Dim: dimLength},
			{Symbol: "lb", Scale: 0.45359237, Dim: dimMass},
			Count,
			{Symbol: "counts", Scale: 1},
		} {
			// the table above has no duplicates
			_ = r.Register(u)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Register adds a unit. Registering a symbol twice is an error.
func (r *Registry) Register(u Unit) error {
	if u.Symbol == "" {
		return fmt.Errorf("unit symbol cannot be empty")
	}
	if u.Scale <= 0 {
		return fmt.Errorf("unit %s: scale must be positive", u.Symbol)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.units[u.Symbol]; exists {
		return fmt.Errorf("unit %s already registered", u.Symbol)
	}
	r.units[u.Symbol] = u
	return nil
}

// Define registers symbol as an alias for the amount q, e.g. "furlong" for
// 201.168 m. The new unit takes q's dimension and its magnitude in base units
// as scale.
func (r *Registry) Define(symbol string, q Quantity, prefixable bool) error {
	if strings.ContainsFunc(symbol, func(c rune) bool { return !unicode.IsLetter(c) }) {
		return fmt.Errorf("unit symbol %q must contain letters only", symbol)
	}
	base := q.ToBase()
	return r.Register(Unit{
		Symbol:     symbol,
		Scale:      base.Magnitude,
		Dim:        base.Unit.Dim,
		prefixable: prefixable,
	})
}

// Clone returns an independent copy, so per-model definitions do not leak
// into the shared default registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := NewRegistry()
	for k, u := range r.units {
		out.units[k] = u
	}
	return out
}

// Lookup resolves a symbol such as "mm", "kg" or "N".
func (r *Registry) Lookup(symbol string) (Unit, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Count, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.units[symbol]; ok {
		return u, nil
	}

	for _, p := range siPrefixes {
		rest, found := strings.CutPrefix(symbol, p.symbol)
		if !found || rest == "" {
			continue
		}
		base, ok := r.units[rest]
		if !ok || !base.prefixable {
			continue
		}
		return Unit{
			Symbol: symbol,
			Scale:  base.Scale * p.factor,
			Dim:    base.Dim,
		}, nil
	}

	return Unit{}, &UndefinedUnitError{Symbol: symbol}
}

// LookupPower resolves a symbol raised to an integer exponent, e.g. ("m", 2)
// for "m2".
func (r *Registry) LookupPower(symbol string, exp int) (Unit, error) {
	u, err := r.Lookup(symbol)
	if err != nil {
		return Unit{}, err
	}
	if exp == 0 {
		return Unit{}, fmt.Errorf("unit %s: exponent cannot be zero", symbol)
	}
	return u.Pow(exp)
}

// Parse builds a quantity from a magnitude and a unit symbol.
func (r *Registry) Parse(magnitude float64, symbol string, exp int) (Quantity, error) {
	if exp == 0 {
		exp = 1
	}
	u, err := r.LookupPower(symbol, exp)
	if err != nil {
		return Quantity{}, err
	}
	return New(magnitude, u), nil
}
