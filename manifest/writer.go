package manifest

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/c360/orthomerge/errors"
)

// Writer owns the results manifest. The file is created, or truncated, by
// Create and written in full by a single WriteAll call.
type Writer struct {
	path string
}

// Create truncates path, leaving an empty results file behind until WriteAll.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.WrapFatal(err, "manifest", "Create", "create results directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "manifest", "Create", "truncate results file")
	}
	if err := f.Close(); err != nil {
		return nil, errors.WrapFatal(err, "manifest", "Create", "close results file")
	}
	return &Writer{path: path}, nil
}

// fileMode keeps the permissions of an existing results file, 0644 otherwise.
func fileMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}

// Path returns the results file location.
func (w *Writer) Path() string {
	return w.path
}

// WriteAll replaces the results file with one line per entry, in order.
func (w *Writer) WriteAll(lines []string) error {
	tmp, err := os.CreateTemp(filepath.Dir(w.path), "."+filepath.Base(w.path)+".*")
	if err != nil {
		return errors.WrapFatal(err, "Writer", "WriteAll", "create temp file")
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			tmp.Close()
			return errors.WrapFatal(err, "Writer", "WriteAll", "write results")
		}
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return errors.WrapFatal(err, "Writer", "WriteAll", "flush results")
	}
	if err := tmp.Chmod(fileMode(w.path)); err != nil {
		tmp.Close()
		return errors.WrapFatal(err, "Writer", "WriteAll", "set results mode")
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapFatal(err, "Writer", "WriteAll", "close results")
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return errors.WrapFatal(err, "Writer", "WriteAll", "replace results file")
	}
	return nil
}
