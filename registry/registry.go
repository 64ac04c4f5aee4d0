// Package registry holds the generated container formats and encodes them
// in the serde-reflection layout that binding generators read.
package registry

import (
	"maps"
	"slices"

	"github.com/teranos/cruxgen/format"
)

// Registry is an ordered mapping from serialization name to container format.
type Registry struct {
	names      []string
	containers map[string]format.ContainerFormat
}

// New builds a registry from containers. Names are kept sorted.
func New(containers map[string]format.ContainerFormat) *Registry {
	r := &Registry{containers: make(map[string]format.ContainerFormat, len(containers))}
	maps.Copy(r.containers, containers)
	r.names = slices.Sorted(maps.Keys(r.containers))
	return r
}

// Get returns the container registered under name.
func (r *Registry) Get(name string) (format.ContainerFormat, bool) {
	c, ok := r.containers[name]
	return c, ok
}

// Names returns the registered names in ascending order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

func (r *Registry) Len() int {
	return len(r.names)
}

// Each calls fn for every container in name order.
func (r *Registry) Each(fn func(name string, c format.ContainerFormat)) {
	for _, name := range r.names {
		fn(name, r.containers[name])
	}
}

// Equal reports whether both registries map the same names to equal containers.
func (r *Registry) Equal(other *Registry) bool {
	return Diff(r, other).Empty()
}
