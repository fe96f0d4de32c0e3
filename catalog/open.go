package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/c360/orthomerge/config"
	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/metric"
	"github.com/c360/orthomerge/natsclient"
	"github.com/c360/orthomerge/pkg/cache"
	"github.com/c360/orthomerge/pkg/retry"
)

// CloseFunc releases resources held by an opened catalog.
type CloseFunc func(ctx context.Context) error

type openOptions struct {
	logger  *slog.Logger
	metrics *metric.MetricsRegistry
}

// OpenOption configures Open.
type OpenOption func(*openOptions)

// WithLogger sets the logger handed to backends.
func WithLogger(l *slog.Logger) OpenOption {
	return func(o *openOptions) { o.logger = l }
}

// WithMetricsRegistry registers cache metrics on registry.
func WithMetricsRegistry(registry *metric.MetricsRegistry) OpenOption {
	return func(o *openOptions) { o.metrics = registry }
}

// Open builds the backend selected by cfg and wraps it in the configured
// cache. ext is the per-sequence file extension used by the directory
// backend. The returned CloseFunc must be called once the catalog is no
// longer needed.
func Open(ctx context.Context, cfg config.CatalogConfig, ext string, opts ...OpenOption) (Catalog, CloseFunc, error) {
	o := &openOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	noop := func(context.Context) error { return nil }

	var (
		backend Catalog
		closer  CloseFunc = noop
	)
	switch cfg.Backend {
	case config.BackendDirectory:
		backend = &Directory{Dir: cfg.Dir, Extension: ext}
	case config.BackendFASTA:
		f, err := LoadFASTA(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		o.logger.Info("Loaded sequence catalog", "file", cfg.File, "sequences", f.Len())
		backend = f
	case config.BackendKV:
		kv, c, err := openKV(ctx, cfg.KV, o.logger)
		if err != nil {
			return nil, nil, err
		}
		backend, closer = kv, c
	case config.BackendEntrez:
		e := cfg.Entrez
		backend = NewEntrez(e.BaseURL, e.Database, e.APIKey, e.Email, e.Tool, e.Timeout, WithEntrezLogger(o.logger))
	default:
		return nil, nil, errors.WrapInvalid(fmt.Errorf("%w: unknown catalog backend %q", errors.ErrInvalidConfig, cfg.Backend), "catalog", "Open", "select backend")
	}

	if !cfg.Cache.Enabled {
		return backend, closer, nil
	}

	var cacheOpts []cache.Option[string]
	if o.metrics != nil {
		cacheOpts = append(cacheOpts, cache.WithMetrics[string](o.metrics, "catalog"))
	}
	c, err := cache.NewFromConfig[string](cfg.Cache, cacheOpts...)
	if err != nil {
		_ = closer(ctx)
		return nil, nil, errors.WrapInvalid(err, "catalog", "Open", "create cache")
	}
	return NewCached(backend, c), closer, nil
}

func openKV(ctx context.Context, cfg config.KVConfig, logger *slog.Logger) (*KV, CloseFunc, error) {
	client, err := natsclient.NewClient(strings.Join(cfg.URLs, ","), natsclient.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}

	if err := retry.Do(ctx, retry.Quick(), func() error { return client.Connect(ctx) }); err != nil {
		return nil, nil, errors.WrapFatal(err, "catalog", "Open", "connect to NATS")
	}

	bucket, err := client.GetKeyValueBucket(ctx, cfg.Bucket)
	if err != nil {
		_ = client.Close(ctx)
		return nil, nil, err
	}

	store := natsclient.NewKVStore(bucket, 0)
	return NewKV(store), client.Close, nil
}
