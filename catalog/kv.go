package catalog

import (
	"context"

	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/natsclient"
	"github.com/c360/orthomerge/pkg/retry"
)

// KVGetter reads raw values by key. natsclient.KVStore implements it.
type KVGetter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// KV serves sequences from a JetStream key-value bucket keyed by identifier.
type KV struct {
	Store KVGetter
	Retry retry.Config
}

// NewKV creates a KV catalog with the default lookup retry policy.
func NewKV(store KVGetter) *KV {
	return &KV{Store: store, Retry: retry.DefaultConfig()}
}

// Lookup implements Catalog. Transient store failures are retried.
func (k *KV) Lookup(ctx context.Context, id string) (string, error) {
	value, err := retry.DoWithResult(ctx, k.Retry, func() ([]byte, error) {
		v, err := k.Store.Get(ctx, id)
		if err == nil {
			return v, nil
		}
		if natsclient.IsKVNotFoundError(err) {
			return nil, retry.NonRetryable(notFound("KV", id))
		}
		return nil, errors.WrapTransient(err, "KV", "Lookup", "get "+id)
	})
	if err != nil {
		var nre *retry.NonRetryableError
		if errors.As(err, &nre) {
			return "", nre.Err
		}
		return "", err
	}
	if len(value) == 0 {
		return "", notFound("KV", id)
	}
	return string(value), nil
}
