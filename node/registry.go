package node

import (
	"fmt"
	"sort"
)

// Registry is the name keyed catalog of node plugin factories. It is built
// once during agent setup and passed by reference to whatever constructs
// workflow instances; there is no removal and no ambient global.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(name string, factory Factory) error {
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("node type %s already registered", name)
	}
	r.factories[name] = factory
	return nil
}

func (r *Registry) Factory(name string) (Factory, bool) {
	factory, ok := r.factories[name]
	return factory, ok
}

// Factories returns a copy of the full catalog, used to bind a workflow
// instance to the step set available at launch time.
func (r *Registry) Factories() map[string]Factory {
	out := make(map[string]Factory, len(r.factories))
	for name, factory := range r.factories {
		out[name] = factory
	}
	return out
}

// Descriptors enumerates registered node descriptors for the read only
// catalog surface, sorted by name.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.factories))
	for _, factory := range r.factories {
		out = append(out, factory().Descriptor())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RegisterBuiltins installs the node types shipped with the server.
func RegisterBuiltins(r *Registry) error {
	builtins := map[string]Factory{
		"manualTrigger": func() Plugin { return &triggerNode{} },
		"javascript":    func() Plugin { return &jsNode{} },
		"jsonMap":       func() Plugin { return &jsonMapNode{} },
		"switch":        func() Plugin { return &switchNode{} },
		"delay":         func() Plugin { return &delayNode{} },
		"walletBalance": func() Plugin { return &walletBalanceNode{} },
	}
	for name, factory := range builtins {
		if err := r.Register(name, factory); err != nil {
			return err
		}
	}
	return nil
}
