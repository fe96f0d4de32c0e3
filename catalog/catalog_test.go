package catalog

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/orthomerge/config"
	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/pkg/cache"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDirectoryLookup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "1.fa", ">1 seed\nAC-GT\nAC\n")
	writeFile(t, dir, "2.fa", ">other\nTTTT\n>2 second\nGGGG\n")
	writeFile(t, dir, "3.fa", ">x\nCCCC\n")
	writeFile(t, dir, "empty.fa", "")

	cat := &Directory{Dir: dir, Extension: ".fa"}
	ctx := context.Background()

	seq, err := cat.Lookup(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "ACGTAC", seq, "gaps are stripped and lines joined")

	seq, err = cat.Lookup(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "GGGG", seq, "record matching the id wins")

	seq, err = cat.Lookup(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "CCCC", seq, "falls back to the first record")

	for _, id := range []string{"missing", "empty", "", "../1"} {
		_, err = cat.Lookup(ctx, id)
		assert.True(t, errors.Is(err, errors.ErrSequenceNotFound), "id %q", id)
		assert.True(t, errors.IsMissingDatum(err))
	}
}

func TestFASTALookup(t *testing.T) {
	path := writeFile(t, t.TempDir(), "all.fa", ">a desc\nAAAA\n>b\nCC-C\n>a dup\nTTTT\n")

	cat, err := LoadFASTA(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	seq, err := cat.Lookup(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "AAAA", seq, "first record wins")

	seq, err = cat.Lookup(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "CCC", seq)

	_, err = cat.Lookup(context.Background(), "c")
	assert.True(t, errors.Is(err, errors.ErrSequenceNotFound))

	_, err = LoadFASTA(filepath.Join(t.TempDir(), "none.fa"))
	assert.True(t, errors.IsInvalid(err))
}

func TestLengthFunc(t *testing.T) {
	cat := Func(func(_ context.Context, id string) (string, error) {
		if id == "x" {
			return "AC-GT", nil
		}
		return "", notFound("test", id)
	})
	length := LengthFunc(cat)

	n, err := length(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = length(context.Background(), "y")
	assert.True(t, errors.IsMissingDatum(err))
}

func TestCachedCollapsesLookups(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	inner := Func(func(_ context.Context, id string) (string, error) {
		calls.Add(1)
		<-release
		return "SEQ-" + id, nil
	})

	c, err := cache.NewLRU[string](8)
	require.NoError(t, err)
	cached := NewCached(inner, c)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = cached.Lookup(context.Background(), "q")
		}(i)
	}
	// Let the goroutines pile up on the in-flight call.
	for calls.Load() == 0 {
		runtime.Gosched()
	}
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "SEQ-q", r)
	}

	seq, err := cached.Lookup(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "SEQ-q", seq)
	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.Equal(t, int64(1), cached.Stats().Sets())
}

func TestCachedDoesNotCacheFailures(t *testing.T) {
	var calls atomic.Int32
	inner := Func(func(_ context.Context, id string) (string, error) {
		calls.Add(1)
		return "", notFound("test", id)
	})
	c, err := cache.NewLRU[string](8)
	require.NoError(t, err)
	cached := NewCached(inner, c)

	for i := 0; i < 3; i++ {
		_, err := cached.Lookup(context.Background(), "gone")
		assert.True(t, errors.Is(err, errors.ErrSequenceNotFound))
	}
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 0, c.Size())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "7.fasta", ">7\nACGT\n")
	all := writeFile(t, dir, "all.fa", ">z\nGG\n")
	ctx := context.Background()

	t.Run("directory with cache", func(t *testing.T) {
		cfg := config.CatalogConfig{Backend: config.BackendDirectory, Dir: dir, Cache: cache.DefaultConfig()}
		cat, closeFn, err := Open(ctx, cfg, ".fasta")
		require.NoError(t, err)
		defer closeFn(ctx)

		_, ok := cat.(*Cached)
		assert.True(t, ok)
		seq, err := cat.Lookup(ctx, "7")
		require.NoError(t, err)
		assert.Equal(t, "ACGT", seq)
	})

	t.Run("fasta without cache", func(t *testing.T) {
		cfg := config.CatalogConfig{Backend: config.BackendFASTA, File: all}
		cat, closeFn, err := Open(ctx, cfg, ".fa")
		require.NoError(t, err)
		defer closeFn(ctx)

		_, ok := cat.(*FASTA)
		assert.True(t, ok)
	})

	t.Run("entrez", func(t *testing.T) {
		cfg := config.Default().Catalog
		cfg.Backend = config.BackendEntrez
		cat, closeFn, err := Open(ctx, cfg, ".fa")
		require.NoError(t, err)
		defer closeFn(ctx)
		assert.NotNil(t, cat)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, _, err := Open(ctx, config.CatalogConfig{Backend: "ftp"}, ".fa")
		assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
	})
}
