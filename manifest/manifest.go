// Package manifest reads the stage's input list of alignment files and
// writes its results list.
package manifest

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/c360/orthomerge/errors"
)

// Read returns the distinct non-blank lines of the manifest at path, trimmed
// and in first-seen order.
func Read(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrMissingManifest, path), "manifest", "Read", "open manifest")
		}
		return nil, errors.WrapFatal(err, "manifest", "Read", "open manifest")
	}
	defer f.Close()

	var entries []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapFatal(err, "manifest", "Read", "scan manifest")
	}

	if len(entries) == 0 {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrEmptyManifest, path), "manifest", "Read", "read manifest")
	}
	return entries, nil
}

// SeedID returns the sequence identifier an alignment file is named after:
// its base name without ext, or without its last extension when ext does
// not match.
func SeedID(path, ext string) string {
	base := filepath.Base(path)
	if ext != "" && strings.HasSuffix(base, ext) && len(base) > len(ext) {
		return strings.TrimSuffix(base, ext)
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Resolve makes a manifest entry absolute relative to dir.
func Resolve(dir, entry string) string {
	if filepath.IsAbs(entry) {
		return entry
	}
	return filepath.Join(dir, entry)
}
