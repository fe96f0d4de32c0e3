package alignment

import (
	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/pkg/fasta"
)

// ReadFile reads an aligned FASTA file. The returned error keeps the
// underlying fs error so callers can test for fs.ErrNotExist.
func ReadFile(path string) (Alignment, error) {
	records, err := fasta.ReadFile(path)
	if err != nil {
		return Alignment{}, errors.Wrap(err, "alignment", "ReadFile", "read "+path)
	}

	a := Alignment{Records: make([]Record, len(records))}
	for i, r := range records {
		a.Records[i] = Record{Defline: r.Header, Residues: r.Seq}
	}
	return a, nil
}

// WriteFile atomically replaces path with a.
func WriteFile(path string, a Alignment) error {
	records := make([]fasta.Record, len(a.Records))
	for i, r := range a.Records {
		records[i] = fasta.Record{Header: r.Defline, Seq: r.Residues}
	}
	if err := fasta.WriteFile(path, records); err != nil {
		return errors.WrapFatal(err, "alignment", "WriteFile", "write "+path)
	}
	return nil
}
