package orthologize

import (
	"context"
	"log/slog"

	"github.com/c360/orthomerge/alignment"
	"github.com/c360/orthomerge/catalog"
	"github.com/c360/orthomerge/config"
	"github.com/c360/orthomerge/pkg/toolexec"
	"github.com/c360/orthomerge/search"
)

// Open builds a stage backed by the configured catalog, BLAST+ and MUSCLE.
// The returned CloseFunc releases the catalog and must be called after Run.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Stage, catalog.CloseFunc, error) {
	// Collaborators share the stage's logger and metrics.
	probe := &Stage{logger: slog.Default()}
	for _, opt := range opts {
		opt(probe)
	}
	core := probe.metrics.CoreMetrics()

	catOpts := []catalog.OpenOption{catalog.WithLogger(probe.logger.With("component", "catalog"))}
	if probe.metrics != nil {
		catOpts = append(catOpts, catalog.WithMetricsRegistry(probe.metrics))
	}
	cat, closeCatalog, err := catalog.Open(ctx, cfg.Catalog, cfg.Extension, catOpts...)
	if err != nil {
		return nil, nil, err
	}

	searcher := &search.BlastClient{
		MakeBlastDB: cfg.Search.MakeBlastDB,
		Program:     cfg.Search.Program,
		DBType:      cfg.Search.DBType,
		EValue:      cfg.Search.EValue,
		Threads:     cfg.Search.Threads,
		Runner: &toolexec.Runner{
			Timeout: cfg.Search.Timeout,
			Logger:  probe.logger.With("component", "search"),
			Metrics: core,
		},
		Logger: probe.logger.With("component", "search"),
	}

	aligner := &alignment.MuscleAligner{
		Path:    cfg.Aligner.Path,
		Args:    cfg.Aligner.Args,
		TempDir: cfg.WorkDir,
		Runner: &toolexec.Runner{
			Timeout: cfg.Aligner.Timeout,
			Logger:  probe.logger.With("component", "aligner"),
			Metrics: core,
		},
	}

	s, err := New(cfg, cat, searcher, aligner, opts...)
	if err != nil {
		_ = closeCatalog(ctx)
		return nil, nil, err
	}
	return s, closeCatalog, nil
}
