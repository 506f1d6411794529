package adapter

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/kyuscout/kyuscout/internal/types"
)

// Registry holds the known site adapters.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds the registry with every supported site.
func NewRegistry(logger *slog.Logger) *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}
	for _, a := range []Adapter{
		NewKyujinbox(logger),
		NewToranet(logger),
		NewBiyouNurse(logger),
		NewConcier(logger),
		NewIndeed(logger),
	} {
		r.adapters[a.Name()] = a
	}
	return r
}

// Get returns the adapter for the named site.
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", types.ErrNoAdapter, name, r.Names())
	}
	return a, nil
}

// Names lists the registered site names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every registered adapter in name order.
func (r *Registry) All() []Adapter {
	all := make([]Adapter, 0, len(r.adapters))
	for _, name := range r.Names() {
		all = append(all, r.adapters[name])
	}
	return all
}
