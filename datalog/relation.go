// Package datalog is a small bottom-up evaluator for monotone rule programs.
//
// Relations are insert-only sets. A Program groups rules into strata that run
// in order; within a stratum, recursive rules are re-run semi-naively, reading
// only the facts that became visible in the previous round, until a round
// derives nothing new. Negation and aggregation are only sound over relations
// completed by an earlier stratum.
package datalog

// Tracked is implemented by Relation and Keyed. A Stratum uses it to detect a fixpoint.
type Tracked interface {
	Name() string
	Len() int
	advance() bool
}

// Relation is a set of facts that remembers insertion order.
//
// Facts inserted during a round are pending. At the end of the round they
// become recent, and recent facts of the round before become stable.
type Relation[T comparable] struct {
	name   string
	facts  map[T]struct{}
	all    []T
	stable int
	recent int
}

// NewRelation returns an empty relation.
func NewRelation[T comparable](name string) *Relation[T] {
	return &Relation[T]{name: name, facts: make(map[T]struct{})}
}

func (r *Relation[T]) Name() string { return r.name }

// Len returns the number of facts, pending ones included.
func (r *Relation[T]) Len() int { return len(r.all) }

// Insert adds a fact and reports whether it was new.
func (r *Relation[T]) Insert(fact T) bool {
	if _, ok := r.facts[fact]; ok {
		return false
	}
	r.facts[fact] = struct{}{}
	r.all = append(r.all, fact)
	return true
}

// Contains reports whether fact has been derived, pending or not.
func (r *Relation[T]) Contains(fact T) bool {
	_, ok := r.facts[fact]
	return ok
}

// All returns every fact in insertion order. The slice must not be modified.
func (r *Relation[T]) All() []T {
	return r.all
}

// Recent returns the facts that became visible at the end of the last round.
func (r *Relation[T]) Recent() []T {
	return r.all[r.stable:r.recent]
}

// Any reports whether some fact satisfies pred.
func (r *Relation[T]) Any(pred func(T) bool) bool {
	for _, fact := range r.all {
		if pred(fact) {
			return true
		}
	}
	return false
}

func (r *Relation[T]) advance() bool {
	r.stable = r.recent
	r.recent = len(r.all)
	return r.recent > r.stable
}

// Keyed is a relation whose facts carry a value that is not comparable
// (formats hold slices). Facts are identified by key alone; a second
// insert under an existing key is ignored.
type Keyed[K comparable, V any] struct {
	name   string
	index  map[K]int
	keys   []K
	values []V
	stable int
	recent int
}

// NewKeyed returns an empty keyed relation.
func NewKeyed[K comparable, V any](name string) *Keyed[K, V] {
	return &Keyed[K, V]{name: name, index: make(map[K]int)}
}

func (r *Keyed[K, V]) Name() string { return r.name }

func (r *Keyed[K, V]) Len() int { return len(r.keys) }

// Insert adds value under key and reports whether key was new.
func (r *Keyed[K, V]) Insert(key K, value V) bool {
	if _, ok := r.index[key]; ok {
		return false
	}
	r.index[key] = len(r.keys)
	r.keys = append(r.keys, key)
	r.values = append(r.values, value)
	return true
}

// Get returns the value stored under key.
func (r *Keyed[K, V]) Get(key K) (V, bool) {
	i, ok := r.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return r.values[i], true
}

// Each calls fn for every fact in insertion order.
func (r *Keyed[K, V]) Each(fn func(K, V)) {
	for i, key := range r.keys {
		fn(key, r.values[i])
	}
}

// EachRecent calls fn for the facts that became visible at the end of the last round.
func (r *Keyed[K, V]) EachRecent(fn func(K, V)) {
	for i := r.stable; i < r.recent; i++ {
		fn(r.keys[i], r.values[i])
	}
}

func (r *Keyed[K, V]) advance() bool {
	r.stable = r.recent
	r.recent = len(r.keys)
	return r.recent > r.stable
}

// Group collects facts by key, preserving insertion order within each group.
// It is the building block for aggregate rules.
func Group[T comparable, K comparable](r *Relation[T], key func(T) K) map[K][]T {
	groups := make(map[K][]T)
	for _, fact := range r.all {
		k := key(fact)
		groups[k] = append(groups[k], fact)
	}
	return groups
}

// GroupKeyed collects the values of a keyed relation by a derived group key.
func GroupKeyed[K comparable, V any, G comparable](r *Keyed[K, V], group func(K) G) map[G][]V {
	groups := make(map[G][]V)
	for i, key := range r.keys {
		g := group(key)
		groups[g] = append(groups[g], r.values[i])
	}
	return groups
}
