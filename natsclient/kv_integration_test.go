//go:build integration

package natsclient

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_GetPut(t *testing.T) {
	tc := NewTestClient(t, WithKVBuckets("SEQUENCES"))
	ctx := context.Background()

	bucket, err := tc.Client.GetKeyValueBucket(ctx, "SEQUENCES")
	require.NoError(t, err)
	store := NewKVStore(bucket, 5*time.Second)

	_, err = store.Put(ctx, "AB000001", []byte("ACGTACGT"))
	require.NoError(t, err)

	value, err := store.Get(ctx, "AB000001")
	require.NoError(t, err)
	assert.Equal(t, "ACGTACGT", string(value))

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKVKeyNotFound)
}

func TestClient_CreateKeyValueBucketIsIdempotent(t *testing.T) {
	tc := NewTestClient(t)
	ctx := context.Background()

	_, err := tc.Client.GetKeyValueBucket(ctx, "ABSENT")
	require.Error(t, err)

	first, err := tc.Client.CreateKeyValueBucket(ctx, kvConfig("ORTHO"))
	require.NoError(t, err)
	second, err := tc.Client.CreateKeyValueBucket(ctx, kvConfig("ORTHO"))
	require.NoError(t, err)
	assert.Equal(t, first.Bucket(), second.Bucket())
}

func kvConfig(name string) jetstream.KeyValueConfig {
	return jetstream.KeyValueConfig{Bucket: name, History: 1}
}
