package toolexec

import (
	"bytes"
	"strings"

	"github.com/c360/orthomerge/pkg/buffer"
)

const (
	// tailLines bounds how many trailing stderr lines are kept for errors.
	tailLines = 20

	// maxLineLen truncates a single runaway stderr line.
	maxLineLen = 512
)

// lineTail is an io.Writer keeping the last tailLines lines written to it.
// exec.Cmd copies stderr from a single goroutine, so partial is unguarded.
type lineTail struct {
	lines   buffer.Buffer[string]
	partial []byte
}

func newLineTail() *lineTail {
	return &lineTail{lines: buffer.NewCircularBuffer[string](tailLines, buffer.DropOldest)}
}

func (t *lineTail) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			t.partial = append(t.partial, p...)
			if len(t.partial) > maxLineLen {
				t.partial = t.partial[:maxLineLen]
			}
			break
		}
		t.partial = append(t.partial, p[:i]...)
		t.flush()
		p = p[i+1:]
	}
	return n, nil
}

func (t *lineTail) flush() {
	line := strings.TrimRight(string(t.partial), "\r")
	if len(line) > maxLineLen {
		line = line[:maxLineLen]
	}
	t.partial = t.partial[:0]
	if strings.TrimSpace(line) != "" {
		t.lines.Write(line)
	}
}

// String returns the retained lines, noting how many earlier lines were cut.
func (t *lineTail) String() string {
	if len(t.partial) > 0 {
		t.flush()
	}
	lines := t.lines.Snapshot()
	if d := t.lines.Dropped(); d > 0 {
		lines = append([]string{"..."}, lines...)
	}
	return strings.Join(lines, "\n")
}
