// Package toolexec runs external bioinformatics programs.
//
// Failures are classified as fatal and wrap errors.ErrExternalTool with the
// full command line and captured stderr, so a failing makeblastdb, blastn or
// muscle invocation is reported verbatim.
package toolexec

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/metric"
)

const (
	// waitDelay bounds how long output pipes are drained after the process is killed.
	waitDelay = 5 * time.Second
)

// Runner executes commands with an optional per-invocation timeout.
type Runner struct {
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics *metric.Metrics
}

// Run executes name with args, copying stdout to stdout when non-nil.
func (r *Runner) Run(ctx context.Context, stdout io.Writer, name string, args ...string) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	stderr := newLineTail()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	tool := filepath.Base(name)
	fullCmd := strings.Join(cmd.Args, " ")
	r.logger().Debug("Running external tool", "tool", tool, "command", fullCmd)

	start := time.Now()
	err := cmd.Run()
	r.Metrics.RecordTool(tool, time.Since(start))

	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w (%v)", ctxErr, err)
	}

	msg := fmt.Sprintf("run '%s'", fullCmd)
	if excerpt := stderr.String(); excerpt != "" {
		msg += fmt.Sprintf("; stderr: %s", excerpt)
	}
	return errors.WrapFatal(fmt.Errorf("%w: %s: %w", errors.ErrExternalTool, tool, err), "toolexec", "Run", msg)
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
