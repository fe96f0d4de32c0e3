// Package graphclustering groups sequence identifiers into single-linkage
// clusters over an accepted-hit graph.
//
// The input is an AdjacencyMap from each query to the targets it accepted.
// A Builder interns every identifier into an arena of nodes with
// index-based adjacency, adds the reverse of every edge and then consumes
// the arena destructively: each seed's connected component is collected with
// an explicit worklist, and every node's entry is removed the moment it is
// absorbed, so no identifier can join a second cluster.
//
// Seeds are visited in ascending identifier order and cluster members are
// sorted the same way, so the resulting IDs are deterministic:
//
//	clusters, err := graphclustering.Build(ctx, graphclustering.AdjacencyMap{
//		"1": {"2"},
//		"2": {"1"},
//		"3": {},
//	})
//	// clusters: {ID: 1, Members: [1 2]}, {ID: 2, Members: [3]}
package graphclustering
