package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Registry is the single source of truth for collection structure and
// authorization. It is compiled once at startup; lookups never mutate.
type Registry struct {
	specs map[string]*CollectionSpec
	order []string
}

// Load compiles the embedded declarations and attaches the Go bindings.
// A declared operation without a binding, or a binding without a
// declaration, is a startup failure, not a runtime surprise.
func Load() (*Registry, error) {
	specs, err := compile()
	if err != nil {
		return nil, err
	}

	reg := &Registry{specs: make(map[string]*CollectionSpec, len(specs))}
	for _, spec := range specs {
		b, ok := bindings[spec.Name]
		if !ok {
			return nil, &CompileError{Collection: spec.Name, Message: "no Go binding registered"}
		}
		if b.build == nil {
			return nil, &CompileError{Collection: spec.Name, Field: "constructor", Message: "no builder bound"}
		}
		spec.Constructor.Build = b.build

		bound := make(map[string]bool, len(b.apply))
		for i := range spec.Functions {
			fn := &spec.Functions[i]
			apply, ok := b.apply[fn.Name]
			if !ok {
				return nil, &CompileError{Collection: spec.Name, Field: fn.Name, Message: "no mutator bound"}
			}
			fn.Apply = apply
			bound[fn.Name] = true
		}
		for name := range b.apply {
			if !bound[name] {
				return nil, &CompileError{Collection: spec.Name, Field: name, Message: "mutator bound to undeclared function"}
			}
		}

		reg.specs[spec.Name] = spec
		reg.order = append(reg.order, spec.Name)
	}

	for name := range bindings {
		if _, ok := reg.specs[name]; !ok {
			return nil, &CompileError{Collection: name, Message: "binding registered for undeclared collection"}
		}
	}
	return reg, nil
}

// Collection returns the named collection spec.
func (r *Registry) Collection(name string) (*CollectionSpec, error) {
	spec, ok := r.specs[name]
	if !ok {
		return nil, fmt.Errorf("schema: unknown collection %q", name)
	}
	return spec, nil
}

// Collections returns every spec in declaration order.
func (r *Registry) Collections() []*CollectionSpec {
	out := make([]*CollectionSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

// Names returns the collection names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DumpJSON renders the compiled registry as indented JSON with
// collections in name order. The output is deterministic, which makes
// it suitable for golden comparisons and schema diffing.
func (r *Registry) DumpJSON() ([]byte, error) {
	specs := make([]*CollectionSpec, 0, len(r.specs))
	for _, name := range r.Names() {
		specs = append(specs, r.specs[name])
	}
	return json.MarshalIndent(specs, "", "  ")
}
