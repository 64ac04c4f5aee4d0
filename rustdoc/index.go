package rustdoc

import (
	"fmt"
	"slices"
)

// Key addresses a node. Two nodes are equal iff their keys are equal.
type Key struct {
	Crate uint32 `json:"crate"`
	ID    ID     `json:"id"`
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%s", k.Crate, k.ID)
}

// Compare orders keys by crate, then by id.
func (k Key) Compare(other Key) int {
	switch {
	case k.Crate < other.Crate:
		return -1
	case k.Crate > other.Crate:
		return 1
	}
	return compareIDs(k.ID, other.ID)
}

// Node pairs the optional full item with its optional path summary.
// At least one of the two is always set.
type Node struct {
	Key     Key
	Item    *Item
	Summary *ItemSummary
}

// Name returns the item's declared name, falling back to the last path segment.
func (n *Node) Name() (string, bool) {
	if n.Item != nil && n.Item.Name != nil {
		return *n.Item.Name, true
	}
	if n.Summary != nil && len(n.Summary.Path) > 0 {
		return n.Summary.Path[len(n.Summary.Path)-1], true
	}
	return "", false
}

// Index resolves ids to nodes. It is built once and never mutated.
type Index struct {
	crate *Crate
	nodes map[ID]*Node
	order []*Node
}

// NewIndex builds the node table from the index and paths tables of a crate.
// Items only present in the paths table (external traits such as App) still
// resolve to a node carrying just a summary.
func NewIndex(crate *Crate) *Index {
	ix := &Index{
		crate: crate,
		nodes: make(map[ID]*Node, len(crate.Index)+len(crate.Paths)),
	}

	for id := range crate.Index {
		item := crate.Index[id]
		ix.nodes[id] = &Node{Key: Key{Crate: item.CrateID, ID: id}, Item: &item}
	}
	for id := range crate.Paths {
		summary := crate.Paths[id]
		if node, ok := ix.nodes[id]; ok {
			node.Summary = &summary
			continue
		}
		ix.nodes[id] = &Node{Key: Key{Crate: summary.CrateID, ID: id}, Summary: &summary}
	}

	ix.order = make([]*Node, 0, len(ix.nodes))
	for _, node := range ix.nodes {
		ix.order = append(ix.order, node)
	}
	slices.SortFunc(ix.order, func(a, b *Node) int { return a.Key.Compare(b.Key) })
	return ix
}

// Crate returns the crate the index was built from.
func (ix *Index) Crate() *Crate {
	return ix.crate
}

// Lookup returns the node for id if it appears in either table.
func (ix *Index) Lookup(id ID) (*Node, bool) {
	node, ok := ix.nodes[id]
	return node, ok
}

// Node returns the node addressed by key.
func (ix *Index) Node(key Key) (*Node, bool) {
	node, ok := ix.nodes[key.ID]
	if !ok || node.Key != key {
		return nil, false
	}
	return node, true
}

// Nodes returns every node ordered by key.
func (ix *Index) Nodes() []*Node {
	return ix.order
}

// Len returns the number of nodes.
func (ix *Index) Len() int {
	return len(ix.order)
}
