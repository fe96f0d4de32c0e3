package orthologize

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/c360/orthomerge/alignment"
	"github.com/c360/orthomerge/catalog"
	"github.com/c360/orthomerge/config"
	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/hitfilter"
	"github.com/c360/orthomerge/manifest"
	"github.com/c360/orthomerge/merge"
	"github.com/c360/orthomerge/metric"
	"github.com/c360/orthomerge/pkg/fasta"
	"github.com/c360/orthomerge/pkg/graphclustering"
	"github.com/c360/orthomerge/pkg/worker"
	"github.com/c360/orthomerge/search"
)

// Searcher builds a sequence database and searches it against itself.
// search.BlastClient implements it.
type Searcher interface {
	search.Client
	BuildDatabase(ctx context.Context, fastaPath string) (string, error)
}

// Summary reports what one run produced.
type Summary struct {
	RunID          string        `json:"run_id"`
	Inputs         int           `json:"inputs"`
	Seeds          int           `json:"seeds"`
	Queries        int           `json:"queries"`
	Clusters       int           `json:"clusters"`
	Singletons     int           `json:"singletons"`
	MergesAccepted int           `json:"merges_accepted"`
	MergesRejected int           `json:"merges_rejected"`
	Outputs        []string      `json:"outputs"`
	ResultsFile    string        `json:"results_file"`
	Duration       time.Duration `json:"duration"`
}

// Stage is one configured clustering and merging run.
type Stage struct {
	cfg      *config.Config
	catalog  catalog.Catalog
	searcher Searcher
	aligner  alignment.ProfileAligner
	executor *worker.Executor
	metrics  *metric.MetricsRegistry
	logger   *slog.Logger
	runID    string
}

// Option configures a Stage.
type Option func(*Stage)

// WithLogger sets the stage logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stage) { s.logger = l }
}

// WithMetricsRegistry records stage and executor metrics on registry.
func WithMetricsRegistry(registry *metric.MetricsRegistry) Option {
	return func(s *Stage) { s.metrics = registry }
}

// WithExecutor replaces the executor built from cfg.Workers.
func WithExecutor(e *worker.Executor) Option {
	return func(s *Stage) { s.executor = e }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(s *Stage) { s.runID = id }
}

// New assembles a stage from validated configuration and its collaborators.
func New(cfg *config.Config, cat catalog.Catalog, searcher Searcher, aligner alignment.ProfileAligner, opts ...Option) (*Stage, error) {
	if cfg == nil || cat == nil || searcher == nil || aligner == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Stage", "New", "check collaborators")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Stage{
		cfg:      cfg,
		catalog:  cat,
		searcher: searcher,
		aligner:  aligner,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	if s.executor == nil {
		var wopts []worker.Option
		if s.metrics != nil {
			wopts = append(wopts, worker.WithMetricsRegistry(s.metrics, "orthomerge_executor"))
		}
		s.executor = worker.NewExecutor(cfg.Workers, wopts...)
	}
	s.logger = s.logger.With("component", "orthologize", "run_id", s.runID)
	return s, nil
}

// RunID returns the identifier attached to this stage's logs.
func (s *Stage) RunID() string {
	return s.runID
}

// Run executes the stage. On error the results file is left empty, or
// untouched when the input manifest could not be read.
func (s *Stage) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	sum := &Summary{RunID: s.runID}
	core := s.metrics.CoreMetrics()

	entries, err := manifest.Read(s.resolve(s.cfg.Manifest))
	if err != nil {
		return nil, err
	}
	sum.Inputs = len(entries)

	results, err := manifest.Create(s.resolve(s.cfg.ResultsFile))
	if err != nil {
		return nil, err
	}
	sum.ResultsFile = results.Path()
	s.logger.Info("Starting stage", "inputs", len(entries), "workers", s.executor.Workers(),
		"overlap_threshold", s.cfg.OverlapThreshold, "max_distance", s.cfg.MaxDistance)

	seeds := s.seedFiles(entries)

	step := time.Now()
	dbPath, resolved, err := s.writeSeedDatabase(ctx, seeds)
	if err != nil {
		return nil, err
	}
	sum.Seeds = len(resolved)
	core.RecordStep("seed_database", time.Since(step))

	step = time.Now()
	reports, err := s.search(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	sum.Queries = len(reports)
	core.RecordStep("search", time.Since(step))

	step = time.Now()
	adj, err := s.filter(ctx, reports, resolved)
	if err != nil {
		return nil, err
	}
	core.RecordStep("filter", time.Since(step))

	step = time.Now()
	clusters, err := graphclustering.Build(ctx, adj)
	if err != nil {
		return nil, err
	}
	for _, c := range clusters {
		core.RecordCluster(len(c.Members))
		if c.Singleton() {
			sum.Singletons++
		}
	}
	sum.Clusters = len(clusters)
	core.RecordStep("cluster", time.Since(step))
	s.logger.Info("Built clusters", "clusters", len(clusters), "singletons", sum.Singletons)

	step = time.Now()
	merged, err := s.merge(ctx, clusters, seeds)
	if err != nil {
		return nil, err
	}
	core.RecordStep("merge", time.Since(step))

	for _, r := range merged {
		sum.MergesAccepted += r.Accepted
		sum.MergesRejected += r.Rejected
		if r.Output != "" {
			sum.Outputs = append(sum.Outputs, r.Output)
		}
	}
	if err := results.WriteAll(sum.Outputs); err != nil {
		return nil, err
	}

	sum.Duration = time.Since(start)
	core.RecordSuccess(time.Now())
	s.logger.Info("Stage complete", "clusters", sum.Clusters, "outputs", len(sum.Outputs),
		"merges_accepted", sum.MergesAccepted, "merges_rejected", sum.MergesRejected,
		"results", sum.ResultsFile, "duration", sum.Duration)
	return sum, nil
}

// seedFiles maps each seed identifier to its alignment file. The first
// entry naming an identifier wins.
func (s *Stage) seedFiles(entries []string) *seedIndex {
	idx := &seedIndex{paths: make(map[string]string, len(entries))}
	for _, e := range entries {
		path := manifest.Resolve(s.cfg.WorkDir, e)
		id := manifest.SeedID(path, s.cfg.Extension)
		if id == "" {
			s.logger.Warn("Skipping manifest entry without identifier", "entry", e)
			continue
		}
		if prev, dup := idx.paths[id]; dup {
			s.logger.Warn("Duplicate seed identifier in manifest", "id", id, "kept", prev, "ignored", path)
			continue
		}
		idx.paths[id] = path
		idx.order = append(idx.order, id)
	}
	return idx
}

type seedIndex struct {
	order []string
	paths map[string]string
}

type seedLookup struct {
	record fasta.Record
	found  bool
}

// writeSeedDatabase looks up every seed in parallel and writes the found
// ones, in manifest order, to the search database FASTA.
func (s *Stage) writeSeedDatabase(ctx context.Context, seeds *seedIndex) (string, []string, error) {
	lookups, err := worker.Map(ctx, s.executor, "lookup", seeds.order, func(ctx context.Context, id string) (seedLookup, error) {
		seq, err := s.catalog.Lookup(ctx, id)
		switch {
		case errors.IsMissingDatum(err):
			s.metrics.CoreMetrics().RecordMissing("catalog")
			s.logger.Warn("Skipping seed without sequence", "id", id, "error", err)
			return seedLookup{}, nil
		case err != nil:
			return seedLookup{}, err
		}
		return seedLookup{record: fasta.Record{Header: id, Seq: seq}, found: true}, nil
	})
	if err != nil {
		return "", nil, err
	}

	records := make([]fasta.Record, 0, len(lookups))
	resolved := make([]string, 0, len(lookups))
	for _, l := range lookups {
		if l.found {
			records = append(records, l.record)
			resolved = append(resolved, l.record.Header)
		}
	}
	if len(records) == 0 {
		return "", nil, errors.WrapFatal(fmt.Errorf("%w: no seed sequence could be resolved", errors.ErrNoSearchResults),
			"Stage", "Run", "assemble seed database")
	}

	path := filepath.Join(s.cfg.WorkDir, s.cfg.Search.DBName)
	if err := fasta.WriteFile(path, records); err != nil {
		return "", nil, errors.WrapFatal(err, "Stage", "Run", "write seed database")
	}
	s.logger.Info("Wrote seed database", "path", path, "sequences", len(records), "missing", len(seeds.order)-len(records))
	return path, resolved, nil
}

func (s *Stage) search(ctx context.Context, fastaPath string) ([]search.Report, error) {
	db, err := s.searcher.BuildDatabase(ctx, fastaPath)
	if err != nil {
		return nil, err
	}
	reports, err := s.searcher.Search(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, errors.WrapFatal(fmt.Errorf("%w: %s", errors.ErrNoSearchResults, db), "Stage", "Run", "search seed database")
	}
	return reports, nil
}

type filtered struct {
	query   string
	targets []string
}

// filter runs the hit filter once per report and folds the per-task outputs
// into one adjacency map. Resolved seeds absent from the reports still get
// an empty entry.
func (s *Stage) filter(ctx context.Context, reports []search.Report, seeds []string) (graphclustering.AdjacencyMap, error) {
	f := &hitfilter.Filter{
		Threshold: s.cfg.OverlapThreshold,
		Length:    hitfilter.LengthFunc(catalog.LengthFunc(s.catalog)),
		Logger:    s.logger,
		Metrics:   s.metrics.CoreMetrics(),
	}

	out, err := worker.Map(ctx, s.executor, "filter", reports, func(ctx context.Context, r search.Report) (filtered, error) {
		q, targets, err := f.Accept(ctx, r)
		return filtered{query: q, targets: targets}, err
	})
	if err != nil {
		return nil, err
	}

	adj := make(graphclustering.AdjacencyMap, len(seeds))
	for _, r := range out {
		if r.query == "" {
			continue
		}
		adj.Add(r.query, r.targets...)
	}
	for _, id := range seeds {
		if _, ok := adj[id]; !ok {
			adj[id] = []string{}
		}
	}
	return adj, nil
}

func (s *Stage) merge(ctx context.Context, clusters []graphclustering.Cluster, seeds *seedIndex) ([]merge.Result, error) {
	m := &merge.Merger{
		WorkDir:     s.cfg.WorkDir,
		Extension:   s.cfg.Extension,
		MaxDistance: s.cfg.MaxDistance,
		Order:       s.cfg.MemberOrder,
		Locate: func(id string) string {
			if p, ok := seeds.paths[id]; ok {
				return p
			}
			return filepath.Join(s.cfg.WorkDir, id+s.cfg.Extension)
		},
		Aligner: s.aligner,
		Logger:  s.logger,
		Metrics: s.metrics.CoreMetrics(),
	}
	return worker.Map(ctx, s.executor, "merge", clusters, m.MergeCluster)
}

func (s *Stage) resolve(path string) string {
	return manifest.Resolve(s.cfg.WorkDir, path)
}
