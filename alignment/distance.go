package alignment

// PDistance returns the uncorrected proportion of differing sites between two
// aligned rows. Columns where either row holds a gap or missing symbol are not
// compared; letters compare case-insensitively. ok is false when no column is
// comparable.
func PDistance(a, b string) (d float64, ok bool) {
	n := min(len(a), len(b))

	var sites, diffs int
	for i := 0; i < n; i++ {
		x, y := a[i], b[i]
		if IsGap(x) || IsGap(y) {
			continue
		}
		sites++
		if upper(x) != upper(y) {
			diffs++
		}
	}

	if sites == 0 {
		return 0, false
	}
	return float64(diffs) / float64(sites), true
}

// MeanPairwiseDistance averages PDistance over every unordered pair of rows.
// A pair without comparable sites counts as maximally distant (1.0). An
// alignment with fewer than two rows has distance 0.
func MeanPairwiseDistance(a Alignment) float64 {
	rows := a.Records
	if len(rows) < 2 {
		return 0
	}

	var sum float64
	pairs := 0
	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			d, ok := PDistance(rows[i].Residues, rows[j].Residues)
			if !ok {
				d = 1
			}
			sum += d
			pairs++
		}
	}
	return sum / float64(pairs)
}

func upper(b byte) byte {
	if 'a' <= b && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
