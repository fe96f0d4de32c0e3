// Package natsclient wraps a NATS connection with JetStream key-value access.
//
// The stage uses it for the KV sequence catalog: sequences are stored in a
// JetStream KV bucket keyed by identifier and read through KVStore, which
// applies a per-call timeout and maps missing keys to ErrKVKeyNotFound.
//
//	client, err := natsclient.NewClient("nats://localhost:4222", natsclient.WithLogger(logger))
//	if err := client.Connect(ctx); err != nil { ... }
//	bucket, err := client.GetKeyValueBucket(ctx, "SEQUENCES")
//	store := natsclient.NewKVStore(bucket, 5*time.Second)
//
// Connection failures are transient errors; a missing bucket is invalid
// configuration.
//
// TestClient starts a throwaway JetStream-enabled server with testcontainers
// for integration tests built with the "integration" tag.
package natsclient
