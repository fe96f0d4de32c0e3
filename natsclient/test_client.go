package natsclient

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestClient runs a disposable NATS server in a container for integration tests
type TestClient struct {
	container testcontainers.Container
	Client    *Client
	URL       string
}

type testConfig struct {
	natsVersion  string
	timeout      time.Duration
	startTimeout time.Duration
	kvBuckets    []string
}

// TestOption configures a test client
type TestOption func(*testConfig)

// WithKVBuckets pre-creates KV buckets
func WithKVBuckets(buckets ...string) TestOption {
	return func(cfg *testConfig) {
		cfg.kvBuckets = append(cfg.kvBuckets, buckets...)
	}
}

// WithNATSVersion selects the nats image tag
func WithNATSVersion(version string) TestOption {
	return func(cfg *testConfig) {
		cfg.natsVersion = version
	}
}

// NewSharedTestClient starts a JetStream-enabled NATS container. It does not
// need a testing.T so it can be used from TestMain.
func NewSharedTestClient(opts ...TestOption) (*TestClient, error) {
	cfg := &testConfig{
		natsVersion:  "2.11.7-alpine",
		timeout:      5 * time.Second,
		startTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "nats:" + cfg.natsVersion,
		ExposedPorts: []string{"4222/tcp", "8222/tcp"},
		Cmd:          []string{"--port", "4222", "--http_port", "8222", "--js"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("4222/tcp"),
			wait.ForHTTP("/").WithPort("8222/tcp").WithStartupTimeout(cfg.startTimeout),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start NATS container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "4222")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}
	url := fmt.Sprintf("nats://%s:%s", host, port.Port())

	client, err := NewClient(url, WithTimeout(cfg.timeout), WithMaxReconnects(0))
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	tc := &TestClient{container: container, Client: client, URL: url}
	for _, bucket := range cfg.kvBuckets {
		if _, err := client.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{Bucket: bucket}); err != nil {
			tc.Terminate()
			return nil, fmt.Errorf("failed to create KV bucket %s: %w", bucket, err)
		}
	}
	return tc, nil
}

// NewTestClient starts a container and registers its cleanup with t
func NewTestClient(t testing.TB, opts ...TestOption) *TestClient {
	t.Helper()

	tc, err := NewSharedTestClient(opts...)
	if err != nil {
		t.Fatalf("NATS test client: %v", err)
	}
	t.Cleanup(tc.Terminate)
	return tc
}

// Terminate closes the client and removes the container
func (tc *TestClient) Terminate() {
	_ = tc.Client.Close(context.Background())
	_ = tc.container.Terminate(context.Background())
}
