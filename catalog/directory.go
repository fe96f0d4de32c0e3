package catalog

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/c360/orthomerge/alignment"
	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/pkg/fasta"
)

// Directory reads sequences from <Dir>/<id><Extension>. The record whose
// defline starts with id is used, falling back to the first record; its
// residues are returned ungapped so aligned inputs can serve as seeds.
type Directory struct {
	Dir       string
	Extension string
}

// Lookup implements Catalog.
func (d *Directory) Lookup(_ context.Context, id string) (string, error) {
	if id == "" || filepath.Base(id) != id {
		return "", notFound("Directory", id)
	}

	path := filepath.Join(d.Dir, id+d.Extension)
	records, err := fasta.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", notFound("Directory", id)
		}
		return "", errors.WrapFatal(err, "Directory", "Lookup", "read "+path)
	}
	if len(records) == 0 {
		return "", notFound("Directory", id)
	}

	rec := records[0]
	for _, r := range records {
		if r.ID() == id {
			rec = r
			break
		}
	}
	return alignment.Ungapped(rec.Seq), nil
}
