package alignment

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/orthomerge/errors"
)

func aln(rows ...string) Alignment {
	a := Alignment{}
	for i, r := range rows {
		a.Records = append(a.Records, Record{Defline: string(rune('a' + i)), Residues: r})
	}
	return a
}

func TestMeanPairwiseDistance(t *testing.T) {
	tests := []struct {
		name string
		a    Alignment
		want float64
	}{
		{"empty", aln(), 0},
		{"single row", aln("ACGT"), 0},
		{"identical", aln("ACGT", "ACGT"), 0},
		{"one of four differs", aln("ACGT", "ACGA"), 0.25},
		{"case insensitive", aln("acgt", "ACGT"), 0},
		{"gaps excluded", aln("AC-T", "ACGA"), 1.0 / 3.0},
		{"missing excluded", aln("AC?T", "AC.T"), 0},
		{"no comparable sites", aln("AC--", "--GT"), 1},
		{"three rows", aln("AAAA", "AAAT", "AATT"), (0.25 + 0.5 + 0.25) / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MeanPairwiseDistance(tt.a), 1e-12)
		})
	}
}

func TestMeanPairwiseDistance_Bounded(t *testing.T) {
	d := MeanPairwiseDistance(aln("ACGT", "TGCA", "----", "GGGG"))
	assert.GreaterOrEqual(t, d, 0.0)
	assert.LessOrEqual(t, d, 1.0)
}

func TestDeduplicate(t *testing.T) {
	a := Alignment{Records: []Record{
		{Defline: "1", Residues: "AC-T"},
		{Defline: "2", Residues: "ACGT"},
		{Defline: "3", Residues: "ac-t"},
		{Defline: "4", Residues: "ACGT"},
	}}

	got := Deduplicate(a)
	assert.Equal(t, []Record{
		{Defline: "1", Residues: "AC-T"},
		{Defline: "2", Residues: "ACGT"},
	}, got.Records)

	assert.Len(t, a.Records, 4, "input is not modified")
}

func TestValidate(t *testing.T) {
	require.NoError(t, aln("ACGT", "AC-T").Validate())

	err := aln("ACGT", "ACG").Validate()
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestUngapped(t *testing.T) {
	assert.Equal(t, "ACGT", Ungapped("-A.C?G-T-"))
	assert.Equal(t, "", Ungapped("---"))
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cluster1.fa")
	want := Alignment{Records: []Record{
		{Defline: "1 seed", Residues: "AC-T"},
		{Defline: "2", Residues: "ACGT"},
	}}

	require.NoError(t, WriteFile(path, want))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(), "merged alignments are readable by later steps")

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "1", got.Records[0].ID())

	_, err = ReadFile(filepath.Join(dir, "absent.fa"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

// fakeMuscle concatenates both profiles, which is a valid profile
// alignment when they already share a width.
const fakeMuscle = `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    -in1) a="$2"; shift ;;
    -in2) b="$2"; shift ;;
    -out) o="$2"; shift ;;
  esac
  shift
done
cat "$a" "$b" > "$o"
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "muscle")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func TestMuscleAligner_ProfileAlign(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "1.fa")
	b := filepath.Join(dir, "2.fa")
	require.NoError(t, WriteFile(a, aln("ACGT")))
	require.NoError(t, WriteFile(b, aln("ACGA", "AC-A")))

	m := &MuscleAligner{Path: writeScript(t, fakeMuscle), TempDir: dir}
	got, err := m.ProfileAlign(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())
	assert.Equal(t, 4, got.Width())

	// temporary output is cleaned up
	leftovers, err := filepath.Glob(filepath.Join(dir, "profile-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestMuscleAligner_GateIsRepeatable(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "1.fa")
	b := filepath.Join(dir, "2.fa")
	require.NoError(t, WriteFile(a, aln("ACGTACGTAC")))
	require.NoError(t, WriteFile(b, aln("ACGTACGTAA")))

	m := &MuscleAligner{Path: writeScript(t, fakeMuscle), TempDir: dir}
	for _, maxDistance := range []float64{0.05, 0.5} {
		var decisions []bool
		for n := 0; n < 2; n++ {
			merged, err := m.ProfileAlign(context.Background(), a, b)
			require.NoError(t, err)
			decisions = append(decisions, MeanPairwiseDistance(merged) < maxDistance)
		}
		assert.Equal(t, decisions[0], decisions[1], "max distance %v", maxDistance)
		assert.Equal(t, maxDistance > 0.1, decisions[0], "distance is 0.1")
	}
}

func TestMuscleAligner_Failures(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "1.fa")
	require.NoError(t, WriteFile(a, aln("ACGT")))

	t.Run("non-zero exit", func(t *testing.T) {
		m := &MuscleAligner{Path: writeScript(t, "#!/bin/sh\necho 'bad profile' >&2\nexit 1\n"), TempDir: dir}
		_, err := m.ProfileAlign(context.Background(), a, a)
		require.Error(t, err)
		assert.True(t, errors.IsFatal(err))
		assert.ErrorIs(t, err, errors.ErrExternalTool)
		assert.Contains(t, err.Error(), "bad profile")
	})

	t.Run("empty output", func(t *testing.T) {
		m := &MuscleAligner{Path: writeScript(t, "#!/bin/sh\nexit 0\n"), TempDir: dir}
		_, err := m.ProfileAlign(context.Background(), a, a)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrExternalTool)
	})
}
