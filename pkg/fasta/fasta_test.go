package fasta

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plain = `>seq1 Homo sapiens
ACGT
AC-T

; comment
>seq2
NNnn
>empty
`

func TestReader_ReadAll(t *testing.T) {
	records, err := NewReader(strings.NewReader(plain)).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, Record{Header: "seq1 Homo sapiens", Seq: "ACGTAC-T"}, records[0])
	assert.Equal(t, "seq1", records[0].ID())
	assert.Equal(t, "NNnn", records[1].Seq, "case is preserved")
	assert.Equal(t, Record{Header: "empty"}, records[2])
}

func TestReader_NoTrailingNewline(t *testing.T) {
	records, err := NewReader(strings.NewReader(">a\nAC\r\nGT")).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ACGT", records[0].Seq)
}

func TestReader_DataBeforeHeader(t *testing.T) {
	_, err := NewReader(strings.NewReader("ACGT\n>a\nAC\n")).ReadAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestReader_Empty(t *testing.T) {
	records, err := NewReader(strings.NewReader("\n\n")).ReadAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	long := strings.Repeat("ACGT", 40)
	records := []Record{
		{Header: "1 first", Seq: long},
		{Header: "2", Seq: "AC--GT"},
	}

	path := filepath.Join(t.TempDir(), "out.fa")
	require.NoError(t, WriteFile(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		assert.LessOrEqual(t, len(line), DefaultLineWidth)
	}

	back, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, records, back)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestReadFile_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seqs.fa.gz")
	fh, err := os.Create(path)
	require.NoError(t, err)
	gw := gzip.NewWriter(fh)
	_, err = gw.Write([]byte(plain))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, fh.Close())

	records, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestWriter_NoWrap(t *testing.T) {
	var b strings.Builder
	w := NewWriter(&b, 0)
	require.NoError(t, w.Write(Record{Header: "x", Seq: strings.Repeat("A", 100)}))
	require.NoError(t, w.Flush())
	assert.Equal(t, ">x\n"+strings.Repeat("A", 100)+"\n", b.String())
}
