package catalog

import (
	"context"

	"github.com/c360/orthomerge/alignment"
	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/pkg/fasta"
)

// FASTA serves sequences from one FASTA file loaded into memory.
type FASTA struct {
	seqs map[string]string
}

// LoadFASTA reads path, keyed by the first token of each defline. When an
// identifier repeats, the first record wins.
func LoadFASTA(path string) (*FASTA, error) {
	records, err := fasta.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "FASTA", "LoadFASTA", "read "+path)
	}

	f := &FASTA{seqs: make(map[string]string, len(records))}
	for _, r := range records {
		id := r.ID()
		if _, dup := f.seqs[id]; dup || id == "" {
			continue
		}
		f.seqs[id] = alignment.Ungapped(r.Seq)
	}
	return f, nil
}

// Len returns the number of distinct identifiers.
func (f *FASTA) Len() int {
	return len(f.seqs)
}

// Lookup implements Catalog.
func (f *FASTA) Lookup(_ context.Context, id string) (string, error) {
	seq, ok := f.seqs[id]
	if !ok {
		return "", notFound("FASTA", id)
	}
	return seq, nil
}
