// Package catalog resolves sequence identifiers to residues.
//
// Backends read from per-sequence files, a single FASTA file, a JetStream KV
// bucket or NCBI E-utilities. Any backend can be wrapped by Cached, which
// memoises lookups in an LRU and collapses concurrent lookups of the same id.
// All backends are safe for concurrent use.
package catalog

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/c360/orthomerge/alignment"
	"github.com/c360/orthomerge/errors"
)

// Catalog looks up the residues of a sequence by identifier. An unknown
// identifier yields an error wrapping errors.ErrSequenceNotFound.
type Catalog interface {
	Lookup(ctx context.Context, id string) (string, error)
}

// Func adapts a function to the Catalog interface.
type Func func(ctx context.Context, id string) (string, error)

// Lookup implements Catalog.
func (f Func) Lookup(ctx context.Context, id string) (string, error) {
	return f(ctx, id)
}

// LengthFunc returns a function giving the ungapped residue count of id.
func LengthFunc(cat Catalog) func(ctx context.Context, id string) (int, error) {
	return func(ctx context.Context, id string) (int, error) {
		seq, err := cat.Lookup(ctx, id)
		if err != nil {
			return 0, err
		}
		return utf8.RuneCountInString(alignment.Ungapped(seq)), nil
	}
}

func notFound(component, id string) error {
	return errors.Wrap(fmt.Errorf("%w: %s", errors.ErrSequenceNotFound, id), component, "Lookup", "resolve "+id)
}
