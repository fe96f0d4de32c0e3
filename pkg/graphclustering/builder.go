package graphclustering

import (
	"context"
	"slices"

	"github.com/c360/orthomerge/errors"
)

type node struct {
	id      string
	adj     []int
	present bool
}

// Builder holds the arena for one clustering pass. It is not safe for
// concurrent use and cannot be reused after Build.
type Builder struct {
	nodes []node
	index map[string]int
	live  int
}

// NewBuilder interns every identifier of adj, keys and targets alike, and
// links each accepted pair in both directions. Self-hits and empty
// identifiers are ignored.
func NewBuilder(adj AdjacencyMap) *Builder {
	ids := make([]string, 0, len(adj))
	seen := make(map[string]struct{}, len(adj))
	note := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for query, targets := range adj {
		note(query)
		for _, t := range targets {
			note(t)
		}
	}
	slices.SortFunc(ids, CompareIDs)

	b := &Builder{
		nodes: make([]node, len(ids)),
		index: make(map[string]int, len(ids)),
		live:  len(ids),
	}
	for i, id := range ids {
		b.nodes[i] = node{id: id, present: true}
		b.index[id] = i
	}

	for query, targets := range adj {
		q, ok := b.index[query]
		if !ok {
			continue
		}
		for _, t := range targets {
			ti, ok := b.index[t]
			if !ok || ti == q {
				continue
			}
			b.nodes[q].adj = append(b.nodes[q].adj, ti)
			b.nodes[ti].adj = append(b.nodes[ti].adj, q)
		}
	}
	return b
}

// Len returns the number of entries not yet absorbed.
func (b *Builder) Len() int {
	return b.live
}

// Index returns the arena position of id.
func (b *Builder) Index(id string) (int, bool) {
	i, ok := b.index[id]
	return i, ok
}

// Absorb removes entry i and returns its neighbours. The second result is
// false when the entry was already absorbed, in which case nothing changes.
func (b *Builder) Absorb(i int) ([]int, bool) {
	if i < 0 || i >= len(b.nodes) || !b.nodes[i].present {
		return nil, false
	}
	n := &b.nodes[i]
	n.present = false
	b.live--
	adj := n.adj
	n.adj = nil
	return adj, true
}

// Build consumes the arena and returns the clusters in seed order with IDs
// starting at 1. Clusters with identical membership are reported once.
func (b *Builder) Build(ctx context.Context) ([]Cluster, error) {
	var clusters []Cluster
	keys := make(map[string]struct{})
	var stack []int

	for seed := range b.nodes {
		if !b.nodes[seed].present {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapTransient(err, "Builder", "Build", "context cancelled")
		}

		var members []string
		stack = append(stack[:0], seed)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			adj, ok := b.Absorb(i)
			if !ok {
				continue
			}
			members = append(members, b.nodes[i].id)
			for _, j := range adj {
				if b.nodes[j].present {
					stack = append(stack, j)
				}
			}
		}

		slices.SortFunc(members, CompareIDs)
		c := Cluster{Members: members}
		// Guard only: absorbed entries are never revisited.
		if _, dup := keys[c.Key()]; dup {
			continue
		}
		keys[c.Key()] = struct{}{}
		c.ID = len(clusters) + 1
		clusters = append(clusters, c)
	}
	return clusters, nil
}

// Build clusters adj in one call.
func Build(ctx context.Context, adj AdjacencyMap) ([]Cluster, error) {
	return NewBuilder(adj).Build(ctx)
}
