package natsclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// Well-known errors
var (
	ErrNotConnected  = stderrors.New("not connected to NATS")
	ErrKVKeyNotFound = stderrors.New("kv: key not found")
)

// KVStore wraps a bucket with per-operation timeouts
type KVStore struct {
	bucket  jetstream.KeyValue
	timeout time.Duration
}

// NewKVStore creates a KV store over bucket. timeout <= 0 disables the per-call timeout.
func NewKVStore(bucket jetstream.KeyValue, timeout time.Duration) *KVStore {
	return &KVStore{bucket: bucket, timeout: timeout}
}

func (kv *KVStore) applyTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if kv.timeout > 0 {
		return context.WithTimeout(ctx, kv.timeout)
	}
	return ctx, func() {}
}

// Get returns the value stored under key, or ErrKVKeyNotFound
func (kv *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := kv.applyTimeout(ctx)
	defer cancel()

	entry, err := kv.bucket.Get(ctx, key)
	if err != nil {
		if IsKVNotFoundError(err) {
			return nil, ErrKVKeyNotFound
		}
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return entry.Value(), nil
}

// Put stores value under key (last writer wins)
func (kv *KVStore) Put(ctx context.Context, key string, value []byte) (uint64, error) {
	ctx, cancel := kv.applyTimeout(ctx)
	defer cancel()

	rev, err := kv.bucket.Put(ctx, key, value)
	if err != nil {
		return 0, fmt.Errorf("kv put %s: %w", key, err)
	}
	return rev, nil
}

// IsKVNotFoundError checks if error indicates key not found
func IsKVNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, ErrKVKeyNotFound) ||
		stderrors.Is(err, jetstream.ErrKeyNotFound) ||
		stderrors.Is(err, jetstream.ErrKeyDeleted) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "key not found") || strings.Contains(msg, "10037")
}
