package codegen

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/teranos/cruxgen/datalog"
	"github.com/teranos/cruxgen/rustdoc"
)

// Pair links a parent node to a child node.
type Pair struct {
	Parent rustdoc.Key `json:"parent"`
	Child  rustdoc.Key `json:"child"`
}

// ParseResult holds every relation the reachability program derived.
type ParseResult struct {
	Edges         []Edge
	Apps          []rustdoc.Key
	Effects       []rustdoc.Key
	EffectsOfApps []Pair
	Parents       []Pair
	Roots         []rustdoc.Key
	Output        []Pair
	Stats         datalog.Stats
}

// Reachable returns the roots and both ends of every output pair, ordered by key.
func (r *ParseResult) Reachable() []rustdoc.Key {
	seen := make(map[rustdoc.Key]struct{}, len(r.Roots)+2*len(r.Output))
	for _, k := range r.Roots {
		seen[k] = struct{}{}
	}
	for _, p := range r.Output {
		seen[p.Parent] = struct{}{}
		seen[p.Child] = struct{}{}
	}
	keys := make([]rustdoc.Key, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, rustdoc.Key.Compare)
	return keys
}

// Parse discovers the types that cross the FFI boundary.
//
// The rules, in stratum order:
//
//	app(x)        <- edge(i, _, TraitApp), edge(i, x, Type)
//	effect(x)     <- edge(i, _, TraitEffect), edge(i, x, Type)
//	is_effect_of_app(a, e) <- app(a), effect(e), same_module(a, e)
//	parent(p, c)  <- app(p), app(c), edge(p, f, Field), edge(f, c, Type)
//	root(t)       <- edge(i, _, TraitApp), edge(i, a, Type), !parent(_, a),
//	                 edge(i, x, AssociatedItem), edge(x, t, AssociatedType)
//	root(e)       <- is_effect_of_app(a, e), !parent(_, a)
//	output(r, c)  <- root(r), edge(r, c, Variant|Field)
//	output(p, c)  <- output(_, p), edge(p, c, Variant|Field|Type)
func Parse(ctx context.Context, ix *rustdoc.Index, log *zap.SugaredLogger) (*ParseResult, error) {
	edges := ExtractEdges(ix)
	return parseEdges(ctx, ix, edges, log)
}

func parseEdges(ctx context.Context, ix *rustdoc.Index, edges []Edge, log *zap.SugaredLogger) (*ParseResult, error) {
	edge := datalog.NewRelation[Edge]("edge")
	for _, e := range edges {
		edge.Insert(e)
	}
	from := datalog.Group(edge, func(e Edge) rustdoc.Key { return e.From })
	outgoing := func(k rustdoc.Key, labels ...Label) []Edge {
		var out []Edge
		for _, e := range from[k] {
			if slices.Contains(labels, e.Label) {
				out = append(out, e)
			}
		}
		return out
	}

	var (
		app           = datalog.NewRelation[rustdoc.Key]("app")
		effect        = datalog.NewRelation[rustdoc.Key]("effect")
		isEffectOfApp = datalog.NewRelation[Pair]("is_effect_of_app")
		parent        = datalog.NewRelation[Pair]("parent")
		root          = datalog.NewRelation[rustdoc.Key]("root")
		output        = datalog.NewRelation[Pair]("output")
	)

	implementors := func(trait Label, into *datalog.Relation[rustdoc.Key]) datalog.Rule {
		return func() {
			for _, e := range edge.All() {
				if e.Label != trait {
					continue
				}
				for _, t := range outgoing(e.From, LabelType) {
					into.Insert(t.To)
				}
			}
		}
	}

	prog := datalog.NewProgram("reachability", log)

	prog.Stratum("implementors", app, effect).
		Base("app", implementors(LabelTraitApp, app)).
		Base("effect", implementors(LabelTraitEffect, effect))

	prog.Stratum("hierarchy", isEffectOfApp, parent).
		Base("is_effect_of_app", func() {
			for _, a := range app.All() {
				as, ok := summaryOf(ix, a)
				if !ok {
					continue
				}
				for _, e := range effect.All() {
					if es, ok := summaryOf(ix, e); ok && as.InSameModuleAs(es) {
						isEffectOfApp.Insert(Pair{Parent: a, Child: e})
					}
				}
			}
		}).
		Base("parent", func() {
			for _, p := range app.All() {
				for _, f := range outgoing(p, LabelField) {
					for _, t := range outgoing(f.To, LabelType) {
						if app.Contains(t.To) {
							parent.Insert(Pair{Parent: p, Child: t.To})
						}
					}
				}
			}
		})

	prog.Stratum("roots", root).
		Base("root(associated type)", func() {
			hasParent := childSet(parent)
			for _, trait := range edge.All() {
				if trait.Label != LabelTraitApp {
					continue
				}
				for _, a := range outgoing(trait.From, LabelType) {
					if hasParent[a.To] {
						continue
					}
					for _, item := range outgoing(trait.From, LabelAssociatedItem) {
						for _, t := range outgoing(item.To, LabelAssociatedType) {
							root.Insert(t.To)
						}
					}
				}
			}
		}).
		Base("root(effect)", func() {
			hasParent := childSet(parent)
			for _, p := range isEffectOfApp.All() {
				if !hasParent[p.Parent] {
					root.Insert(p.Child)
				}
			}
		})

	prog.Stratum("output", output).
		Base("output(root)", func() {
			for _, r := range root.All() {
				for _, e := range outgoing(r, LabelVariant, LabelField) {
					output.Insert(Pair{Parent: r, Child: e.To})
				}
			}
		}).
		Recursive("output(transitive)", func() {
			for _, p := range output.Recent() {
				for _, e := range outgoing(p.Child, LabelVariant, LabelField, LabelType) {
					output.Insert(Pair{Parent: p.Child, Child: e.To})
				}
			}
		})

	stats, err := prog.Run(ctx)
	if err != nil {
		return nil, err
	}
	stats.Sizes[edge.Name()] = edge.Len()

	return &ParseResult{
		Edges:         edges,
		Apps:          app.All(),
		Effects:       effect.All(),
		EffectsOfApps: isEffectOfApp.All(),
		Parents:       parent.All(),
		Roots:         root.All(),
		Output:        output.All(),
		Stats:         stats,
	}, nil
}

func summaryOf(ix *rustdoc.Index, k rustdoc.Key) (SummaryNode, bool) {
	node, ok := ix.Node(k)
	if !ok {
		return SummaryNode{}, false
	}
	return NewSummaryNode(node)
}

func childSet(r *datalog.Relation[Pair]) map[rustdoc.Key]bool {
	children := make(map[rustdoc.Key]bool, r.Len())
	for _, p := range r.All() {
		children[p.Child] = true
	}
	return children
}
