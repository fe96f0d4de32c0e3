// Package orthomerge clusters candidate ortholog alignments and merges each
// cluster into a single alignment.
//
// # Pipeline
//
// One run of the stage takes a manifest of per-sequence alignment files
// (<work_dir>/<id><ext>) and produces a results manifest naming one alignment
// per cluster:
//
//	manifest ──► seed database ──► all-vs-all search ──► hit filter
//	                                                         │ per query
//	                                                         ▼
//	merged.txt ◄── cluster merger ◄── cluster builder ◄── adjacency map
//	               per cluster        single-threaded
//
// In order:
//
//   - The seed sequence of every listed file is looked up in a sequence
//     catalog and written to a FASTA database.
//   - BLAST+ searches the database against itself.
//   - A hit is kept when its aligned segments cover more than the overlap
//     threshold of both the query and the target.
//   - Accepted hits form an undirected graph whose connected components are
//     the clusters.
//   - Each cluster is folded left to right by profile alignment (MUSCLE); a
//     step is kept only while the merged alignment's mean pairwise
//     p-distance stays below the configured maximum.
//
// Filtering and merging run one task per query and per cluster. Tasks share
// nothing mutable; their results are folded by a single coordinator, and the
// results manifest is written once after every merge task has finished.
//
// # Packages
//
//   - cmd/orthomerge: command-line entry point
//   - orthologize: stage orchestration
//   - hitfilter, pkg/graphclustering, merge: the clustering and merging core
//   - search, alignment, catalog: external collaborators (BLAST+, MUSCLE,
//     sequence stores including NATS JetStream KV and NCBI E-utilities)
//   - config, errors, metric: configuration layering, classified errors and
//     Prometheus metrics
//   - pkg/worker, pkg/cache, pkg/retry, pkg/buffer, pkg/fasta, pkg/toolexec:
//     supporting infrastructure
//
// # Configuration
//
// Configuration is layered: built-in defaults, an optional JSON or YAML file
// validated against an embedded JSON schema, ORTHOMERGE_* environment
// variables and finally command-line flags. See package config.
//
// # Errors
//
// A missing or empty manifest, an empty search result or any external tool
// failure aborts the run with an empty results manifest. Identifiers without
// a sequence or alignment file are logged and skipped. Rejected merge steps
// are not errors.
package orthomerge
