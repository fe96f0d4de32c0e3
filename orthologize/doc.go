// Package orthologize runs the clustering and merging stage end to end.
//
// A run reads the input manifest, assembles a search database from the seed
// sequence of every listed alignment, searches it against itself, keeps the
// hits that pass the bidirectional overlap rule, groups the survivors into
// single-linkage clusters and merges each cluster's alignments. The results
// manifest lists one alignment file per cluster.
//
// Filtering and merging run one task per query and per cluster on a
// worker.Executor. Each task returns its own value; the adjacency map and
// the results manifest are assembled by the coordinating goroutine after the
// tasks of that step have finished, so the results file is written exactly
// once per run.
//
// Fatal conditions (missing or empty manifest, empty search output, external
// tool failure) abort the run before the results file is written. Missing
// sequences and alignment files are logged and skipped.
package orthologize
