// Package search runs the all-against-all similarity search over the seed
// sequences and exposes its results as per-query reports.
package search

import "context"

// Segment is one local alignment (HSP) between a query and a target.
// QueryLen and HitLen are the segment's extents on each side, in residues.
type Segment struct {
	QueryLen int
	HitLen   int
}

// Hit groups every segment between one query and one target.
// Target is empty when the search output carried no usable name.
type Hit struct {
	Target   string
	Segments []Segment
}

// QueryCoverage sums the query-side segment lengths.
func (h Hit) QueryCoverage() int {
	n := 0
	for _, s := range h.Segments {
		n += s.QueryLen
	}
	return n
}

// HitCoverage sums the target-side segment lengths.
func (h Hit) HitCoverage() int {
	n := 0
	for _, s := range h.Segments {
		n += s.HitLen
	}
	return n
}

// Report holds the hits found for one query.
type Report struct {
	Query string
	Hits  []Hit
}

// Client searches a sequence database against itself.
type Client interface {
	Search(ctx context.Context, databasePath string) ([]Report, error)
}
