// Package hitfilter turns per-query similarity search reports into accepted
// neighbour lists using a bidirectional overlap rule.
package hitfilter

import (
	"context"
	"log/slog"

	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/metric"
	"github.com/c360/orthomerge/search"
)

// DefaultThreshold is the overlap fraction both sides of a hit must exceed.
const DefaultThreshold = 0.51

// LengthFunc resolves the ungapped length of a sequence.
type LengthFunc func(ctx context.Context, id string) (int, error)

// Filter applies the overlap rule to one report at a time. It holds no
// mutable state and may be shared by concurrent tasks.
type Filter struct {
	Threshold float64
	Length    LengthFunc
	Logger    *slog.Logger
	Metrics   *metric.Metrics
}

// Accepted reports whether a hit covering qCov of qLen query residues and
// hCov of hLen target residues passes threshold on both sides. Equality
// with the threshold is a rejection.
func Accepted(qCov, qLen, hCov, hLen int, threshold float64) bool {
	if qLen <= 0 || hLen <= 0 {
		return false
	}
	return float64(qCov)/float64(qLen) > threshold &&
		float64(hCov)/float64(hLen) > threshold
}

// Accept returns the report's query and its accepted targets in first-seen
// order without duplicates. A query with no accepted hits yields an empty
// list. Hits whose target is unnamed or whose length cannot be resolved are
// skipped and logged; only failures other than missing data are returned.
func (f *Filter) Accept(ctx context.Context, report search.Report) (string, []string, error) {
	logger := f.logger().With("query", report.Query)
	accepted := []string{}

	qLen, ok, err := f.resolve(ctx, report.Query)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		logger.Warn("Skipping hits of query with unresolvable length")
		return report.Query, accepted, nil
	}

	seen := make(map[string]struct{}, len(report.Hits))
	for _, hit := range report.Hits {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		if hit.Target == "" {
			f.Metrics.RecordMissing("hitfilter")
			logger.Warn("Skipping hit without target name", "error", errors.ErrMissingTarget)
			continue
		}
		if _, dup := seen[hit.Target]; dup {
			continue
		}

		hLen, ok, err := f.resolve(ctx, hit.Target)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			logger.Warn("Skipping hit with unresolvable target", "target", hit.Target)
			continue
		}

		qCov, hCov := hit.QueryCoverage(), hit.HitCoverage()
		pass := Accepted(qCov, qLen, hCov, hLen, f.threshold())
		f.Metrics.RecordHit(pass)
		if !pass {
			logger.Debug("Rejected hit", "target", hit.Target,
				"query_coverage", float64(qCov)/float64(qLen),
				"hit_coverage", float64(hCov)/float64(hLen))
			continue
		}
		seen[hit.Target] = struct{}{}
		accepted = append(accepted, hit.Target)
	}

	logger.Debug("Filtered hits", "hits", len(report.Hits), "accepted", len(accepted))
	return report.Query, accepted, nil
}

// resolve returns ok=false for missing or empty sequences.
func (f *Filter) resolve(ctx context.Context, id string) (int, bool, error) {
	n, err := f.Length(ctx, id)
	switch {
	case errors.IsMissingDatum(err):
		f.Metrics.RecordMissing("hitfilter")
		return 0, false, nil
	case err != nil:
		return 0, false, errors.Wrap(err, "Filter", "Accept", "resolve length of "+id)
	case n <= 0:
		f.Metrics.RecordMissing("hitfilter")
		return 0, false, nil
	}
	return n, true, nil
}

func (f *Filter) threshold() float64 {
	if f.Threshold <= 0 {
		return DefaultThreshold
	}
	return f.Threshold
}

func (f *Filter) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}
