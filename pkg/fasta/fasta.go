// Package fasta reads and writes FASTA formatted sequence files.
package fasta

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Record is one FASTA entry. Header excludes the leading '>'.
type Record struct {
	Header string
	Seq    string
}

// ID returns the first whitespace-separated token of the header.
func (r Record) ID() string {
	fields := strings.Fields(r.Header)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Reader parses records from a stream one at a time.
type Reader struct {
	r          *bufio.Reader
	pending    string // header already consumed for the next record
	hasPending bool
	line       int
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read returns the next record, or io.EOF when the stream is exhausted.
// Blank lines and ';' comment lines are ignored. Sequence text before the
// first header is an error.
func (fr *Reader) Read() (Record, error) {
	for !fr.hasPending {
		line, err := fr.next()
		if err != nil {
			return Record{}, err
		}
		if skippable(line) {
			continue
		}
		if !strings.HasPrefix(line, ">") {
			return Record{}, fmt.Errorf("line %d: sequence data before first header", fr.line)
		}
		fr.pending, fr.hasPending = strings.TrimSpace(line[1:]), true
	}

	rec := Record{Header: fr.pending}
	fr.hasPending = false

	var seq strings.Builder
	for {
		line, err := fr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Record{}, err
		}
		if strings.HasPrefix(line, ">") {
			fr.pending, fr.hasPending = strings.TrimSpace(line[1:]), true
			break
		}
		if skippable(line) {
			continue
		}
		for _, f := range strings.Fields(line) {
			seq.WriteString(f)
		}
	}

	rec.Seq = seq.String()
	return rec, nil
}

func (fr *Reader) next() (string, error) {
	raw, err := fr.r.ReadString('\n')
	if err != nil && (err != io.EOF || raw == "") {
		return "", err
	}
	fr.line++
	return strings.TrimRight(raw, "\r\n"), nil
}

func skippable(line string) bool {
	return strings.TrimSpace(line) == "" || strings.HasPrefix(line, ";")
}

// ReadAll reads every remaining record.
func (fr *Reader) ReadAll() ([]Record, error) {
	var records []Record
	for {
		rec, err := fr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

// ReadFile reads all records from path. Paths ending in .gz are decompressed.
func ReadFile(path string) ([]Record, error) {
	rc, err := open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	records, err := NewReader(rc).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func open(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return fh, nil
	}
	gr, err := gzip.NewReader(fh)
	if err != nil {
		fh.Close()
		return nil, err
	}
	return struct {
		io.Reader
		io.Closer
	}{Reader: gr, Closer: fh}, nil
}

// DefaultLineWidth is the sequence wrap width used by WriteFile.
const DefaultLineWidth = 60

// Writer writes records, wrapping sequence lines at a fixed width.
type Writer struct {
	w     *bufio.Writer
	width int
}

// NewWriter creates a Writer. width <= 0 writes each sequence on one line.
func NewWriter(w io.Writer, width int) *Writer {
	return &Writer{w: bufio.NewWriter(w), width: width}
}

// Write writes one record.
func (fw *Writer) Write(rec Record) error {
	if _, err := fmt.Fprintf(fw.w, ">%s\n", rec.Header); err != nil {
		return err
	}
	seq := rec.Seq
	if fw.width <= 0 {
		_, err := fmt.Fprintln(fw.w, seq)
		return err
	}
	for len(seq) > 0 {
		n := min(fw.width, len(seq))
		if _, err := fmt.Fprintln(fw.w, seq[:n]); err != nil {
			return err
		}
		seq = seq[n:]
	}
	return nil
}

// Flush writes buffered data to the underlying writer.
func (fw *Writer) Flush() error {
	return fw.w.Flush()
}

// WriteFile replaces path with records. The file is written to a temporary
// sibling and renamed into place.
func WriteFile(path string, records []Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".fasta-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := NewWriter(tmp, DefaultLineWidth)
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
