package graphclustering

import (
	"cmp"
	"strings"
)

// AdjacencyMap maps each query identifier to its accepted targets.
// A query with no accepted targets is present with an empty list.
type AdjacencyMap map[string][]string

// Add appends targets to query's entry, creating it when absent.
func (m AdjacencyMap) Add(query string, targets ...string) {
	m[query] = append(m[query], targets...)
}

// Cluster is one group of identifiers reachable from each other through
// accepted hits.
type Cluster struct {
	// ID is a positive integer, unique within one build.
	ID int

	// Members are sorted with CompareIDs and never empty.
	Members []string
}

// Key identifies a cluster by its membership alone.
func (c Cluster) Key() string {
	return strings.Join(c.Members, "\x00")
}

// Singleton reports whether the cluster has exactly one member.
func (c Cluster) Singleton() bool {
	return len(c.Members) == 1
}

// CompareIDs orders identifiers numerically when both are unsigned decimal
// integers. Numeric identifiers sort before all others; the rest compare
// lexicographically.
func CompareIDs(a, b string) int {
	an, bn := isDigits(a), isDigits(b)
	switch {
	case an && bn:
		ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if c := cmp.Compare(len(ta), len(tb)); c != 0 {
			return c
		}
		if c := strings.Compare(ta, tb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case an:
		return -1
	case bn:
		return 1
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
