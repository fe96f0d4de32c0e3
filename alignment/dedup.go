package alignment

import "strings"

// Deduplicate drops rows whose residues repeat an earlier row, compared
// case-insensitively. The first row of each group keeps its defline and
// position.
func Deduplicate(a Alignment) Alignment {
	seen := make(map[string]struct{}, len(a.Records))
	out := Alignment{Records: make([]Record, 0, len(a.Records))}

	for _, r := range a.Records {
		key := strings.ToUpper(r.Residues)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.Records = append(out.Records, r)
	}
	return out
}
