package alignment

import (
	"context"
	"fmt"
	"os"

	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/pkg/toolexec"
)

// ProfileAligner aligns two existing alignments against each other.
type ProfileAligner interface {
	ProfileAlign(ctx context.Context, profileA, profileB string) (Alignment, error)
}

// MuscleAligner runs MUSCLE (v3.8 syntax) in profile-profile mode:
//
//	muscle -profile -in1 A -in2 B -out OUT [args...]
type MuscleAligner struct {
	Path    string
	Args    []string
	TempDir string
	Runner  *toolexec.Runner
}

// ProfileAlign implements ProfileAligner. The result is written to a
// temporary file that is removed before returning.
func (m *MuscleAligner) ProfileAlign(ctx context.Context, profileA, profileB string) (Alignment, error) {
	out, err := os.CreateTemp(m.TempDir, "profile-*.afa")
	if err != nil {
		return Alignment{}, errors.WrapFatal(err, "MuscleAligner", "ProfileAlign", "create output file")
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	args := append([]string{"-profile", "-in1", profileA, "-in2", profileB, "-out", outPath}, m.Args...)
	if err := m.runner().Run(ctx, nil, m.path(), args...); err != nil {
		return Alignment{}, err
	}

	aln, err := ReadFile(outPath)
	if err != nil {
		return Alignment{}, errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrExternalTool, err),
			"MuscleAligner", "ProfileAlign", "read aligner output")
	}
	if aln.Len() == 0 {
		return Alignment{}, errors.WrapFatal(
			fmt.Errorf("%w: empty profile alignment of %s and %s", errors.ErrExternalTool, profileA, profileB),
			"MuscleAligner", "ProfileAlign", "read aligner output")
	}
	if err := aln.Validate(); err != nil {
		return Alignment{}, errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrExternalTool, err),
			"MuscleAligner", "ProfileAlign", "validate aligner output")
	}
	return aln, nil
}

func (m *MuscleAligner) path() string {
	if m.Path == "" {
		return "muscle"
	}
	return m.Path
}

func (m *MuscleAligner) runner() *toolexec.Runner {
	if m.Runner == nil {
		return &toolexec.Runner{}
	}
	return m.Runner
}
