// Package merge folds the alignments of each cluster into one by repeated
// profile alignment, keeping a step only while the merged alignment stays
// below a distance cap.
package merge

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"unicode/utf8"

	"github.com/c360/orthomerge/alignment"
	"github.com/c360/orthomerge/config"
	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/metric"
	"github.com/c360/orthomerge/pkg/graphclustering"
)

// Result describes the outcome for one cluster. Output is empty when none
// of the cluster's member files could be found.
type Result struct {
	ClusterID int
	Output    string
	Members   int
	Accepted  int
	Rejected  int
	Skipped   int
}

// Merger merges clusters. It holds no per-cluster state, so one Merger may
// serve many clusters concurrently; each cluster writes only its own file.
type Merger struct {
	WorkDir     string
	Extension   string
	MaxDistance float64

	// Order is config.OrderInput or config.OrderLength.
	Order string

	// Locate maps a member to its alignment file. Nil means
	// <WorkDir>/<id><Extension>.
	Locate func(id string) string

	Aligner alignment.ProfileAligner
	Logger  *slog.Logger
	Metrics *metric.Metrics
}

// OutputPath returns the merged alignment file for a cluster ID.
func (m *Merger) OutputPath(clusterID int) string {
	return filepath.Join(m.WorkDir, fmt.Sprintf("cluster%d%s", clusterID, m.Extension))
}

// MergeCluster left-folds the cluster's member files. A single file is
// passed through untouched. Each later member is profile-aligned with the
// current accumulator; the candidate replaces the accumulator only when its
// mean pairwise distance is strictly below MaxDistance, otherwise the member
// is dropped. Aligner failures are returned unchanged.
func (m *Merger) MergeCluster(ctx context.Context, cluster graphclustering.Cluster) (Result, error) {
	logger := m.logger().With("cluster", cluster.ID)
	res := Result{ClusterID: cluster.ID, Members: len(cluster.Members)}

	files, err := m.memberFiles(cluster, logger)
	if err != nil {
		return res, err
	}
	res.Skipped = len(cluster.Members) - len(files)

	switch len(files) {
	case 0:
		logger.Warn("No member alignments found, cluster dropped", "members", cluster.Members)
		return res, nil
	case 1:
		res.Output = files[0]
		return res, nil
	}

	if m.Order == config.OrderLength {
		if files, err = sortByLength(files); err != nil {
			return res, err
		}
	}

	merged := m.OutputPath(cluster.ID)
	current := files[0]
	for _, next := range files[1:] {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		candidate, err := m.Aligner.ProfileAlign(ctx, current, next)
		if err != nil {
			return res, err
		}

		dist := alignment.MeanPairwiseDistance(candidate)
		accept := dist < m.MaxDistance
		m.Metrics.RecordMerge(dist, accept)
		if !accept {
			res.Rejected++
			logger.Info("Rejected merge candidate", "base", current, "member", next,
				"distance", dist, "max_distance", m.MaxDistance)
			continue
		}

		if err := alignment.WriteFile(merged, alignment.Deduplicate(candidate)); err != nil {
			return res, err
		}
		res.Accepted++
		logger.Debug("Accepted merge", "member", next, "distance", dist)
		current = merged
	}

	res.Output = current
	logger.Info("Merged cluster", "output", current, "accepted", res.Accepted, "rejected", res.Rejected)
	return res, nil
}

func (m *Merger) memberFiles(cluster graphclustering.Cluster, logger *slog.Logger) ([]string, error) {
	files := make([]string, 0, len(cluster.Members))
	for _, id := range cluster.Members {
		path := m.locate(id)
		_, err := os.Stat(path)
		if err == nil {
			files = append(files, path)
			continue
		}
		if errors.Is(err, fs.ErrNotExist) {
			m.Metrics.RecordMissing("merge")
			logger.Warn("Skipping member without alignment file", "member", id, "path", path)
			continue
		}
		return nil, errors.WrapFatal(err, "Merger", "MergeCluster", "stat "+path)
	}
	return files, nil
}

// sortByLength orders files by descending total residue count, keeping
// input order among equals.
func sortByLength(files []string) ([]string, error) {
	lengths := make(map[string]int, len(files))
	for _, f := range files {
		aln, err := alignment.ReadFile(f)
		if err != nil {
			return nil, errors.WrapFatal(err, "Merger", "MergeCluster", "measure "+f)
		}
		n := 0
		for _, r := range aln.Records {
			n += utf8.RuneCountInString(alignment.Ungapped(r.Residues))
		}
		lengths[f] = n
	}

	sorted := slices.Clone(files)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return lengths[b] - lengths[a]
	})
	return sorted, nil
}

func (m *Merger) locate(id string) string {
	if m.Locate != nil {
		return m.Locate(id)
	}
	return filepath.Join(m.WorkDir, id+m.Extension)
}

func (m *Merger) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}
