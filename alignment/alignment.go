// Package alignment models multiple sequence alignments and the operations the
// merge step needs: file IO, mean pairwise distance, row deduplication and
// profile-profile alignment through an external aligner.
package alignment

import (
	"fmt"
	"strings"

	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/pkg/fasta"
)

// Record is one aligned row.
type Record struct {
	Defline  string
	Residues string
}

// ID returns the first token of the defline.
func (r Record) ID() string {
	return fasta.Record{Header: r.Defline}.ID()
}

// Alignment is an ordered set of equal-width rows.
type Alignment struct {
	Records []Record
}

// Len returns the number of rows.
func (a Alignment) Len() int {
	return len(a.Records)
}

// Width returns the column count, taken from the first row.
func (a Alignment) Width() int {
	if len(a.Records) == 0 {
		return 0
	}
	return len(a.Records[0].Residues)
}

// Validate checks that every row has the same width.
func (a Alignment) Validate() error {
	width := a.Width()
	for i, r := range a.Records {
		if len(r.Residues) != width {
			return errors.WrapInvalid(
				fmt.Errorf("%w: row %d (%s) has width %d, expected %d",
					errors.ErrInvalidData, i, r.ID(), len(r.Residues), width),
				"alignment", "Validate", "check row widths")
		}
	}
	return nil
}

// IsGap reports whether b is a gap or missing-data symbol.
func IsGap(b byte) bool {
	return b == '-' || b == '.' || b == '?'
}

// Ungapped returns residues with gap and missing-data symbols removed.
func Ungapped(residues string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x80 && IsGap(byte(r)) {
			return -1
		}
		return r
	}, residues)
}
