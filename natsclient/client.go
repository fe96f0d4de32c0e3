package natsclient

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/orthomerge/errors"
)

// ConnectionStatus represents the current state of the NATS connection
type ConnectionStatus int32

const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnecting
	StatusConnected
	StatusClosed
)

// String returns the string representation of ConnectionStatus
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client manages one NATS connection and its JetStream context
type Client struct {
	url    string
	logger *slog.Logger

	name          string
	timeout       time.Duration
	drainTimeout  time.Duration
	maxReconnects int
	reconnectWait time.Duration

	mu     sync.RWMutex
	conn   *nats.Conn
	js     jetstream.JetStream
	status atomic.Int32
}

// NewClient creates a new NATS client with optional configuration
func NewClient(url string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		url:           url,
		logger:        slog.Default(),
		name:          "orthomerge",
		timeout:       5 * time.Second,
		drainTimeout:  10 * time.Second,
		maxReconnects: 5,
		reconnectWait: 2 * time.Second,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.WrapInvalid(err, "Client", "NewClient", "apply option")
		}
	}

	c.status.Store(int32(StatusDisconnected))
	return c, nil
}

// URL returns the NATS server URL
func (c *Client) URL() string {
	return c.url
}

// Status returns the current connection status
func (c *Client) Status() ConnectionStatus {
	return ConnectionStatus(c.status.Load())
}

func (c *Client) setStatus(s ConnectionStatus) {
	c.status.Store(int32(s))
}

// Connect establishes the connection and JetStream context
func (c *Client) Connect(ctx context.Context) error {
	c.setStatus(StatusConnecting)
	c.logger.Info("Connecting to NATS", "url", c.url)

	opts := []nats.Option{
		nats.Name(c.name),
		nats.Timeout(c.timeout),
		nats.MaxReconnects(c.maxReconnects),
		nats.ReconnectWait(c.reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.setStatus(StatusDisconnected)
			if err != nil {
				c.logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			c.setStatus(StatusConnected)
			c.logger.Info("NATS reconnected")
		}),
	}

	type result struct {
		conn *nats.Conn
		js   jetstream.JetStream
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := nats.Connect(c.url, opts...)
		if err != nil {
			done <- result{err: err}
			return
		}
		js, err := jetstream.New(conn)
		if err != nil {
			conn.Close()
			done <- result{err: err}
			return
		}
		done <- result{conn: conn, js: js}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			c.setStatus(StatusDisconnected)
			return errors.WrapTransient(r.err, "Client", "Connect", "establish connection")
		}
		c.mu.Lock()
		c.conn, c.js = r.conn, r.js
		c.mu.Unlock()
	case <-ctx.Done():
		c.setStatus(StatusDisconnected)
		// close a connection that lands after cancellation
		go func() {
			if r := <-done; r.conn != nil {
				r.conn.Close()
			}
		}()
		return errors.WrapTransient(ctx.Err(), "Client", "Connect", "connection cancelled")
	}

	c.setStatus(StatusConnected)
	c.logger.Info("Connected to NATS", "url", c.url)
	return nil
}

// JetStream returns the JetStream context of a connected client
func (c *Client) JetStream() (jetstream.JetStream, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.js == nil {
		return nil, errors.WrapTransient(ErrNotConnected, "Client", "JetStream", "get JetStream context")
	}
	return c.js, nil
}

// CreateKeyValueBucket creates a bucket or returns the existing one
func (c *Client) CreateKeyValueBucket(ctx context.Context, cfg jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	js, err := c.JetStream()
	if err != nil {
		return nil, err
	}

	if kv, err := js.KeyValue(ctx, cfg.Bucket); err == nil {
		return kv, nil
	}

	kv, err := js.CreateKeyValue(ctx, cfg)
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketExists) {
			return nil, errors.WrapTransient(err, "Client", "CreateKeyValueBucket", "create bucket "+cfg.Bucket)
		}
		// lost a creation race
		if kv, err = js.KeyValue(ctx, cfg.Bucket); err != nil {
			return nil, errors.WrapTransient(err, "Client", "CreateKeyValueBucket", "open bucket "+cfg.Bucket)
		}
	}
	c.logger.Debug("KV bucket ready", "bucket", cfg.Bucket)
	return kv, nil
}

// GetKeyValueBucket opens an existing bucket
func (c *Client) GetKeyValueBucket(ctx context.Context, name string) (jetstream.KeyValue, error) {
	js, err := c.JetStream()
	if err != nil {
		return nil, err
	}

	kv, err := js.KeyValue(ctx, name)
	if err != nil {
		if errors.Is(err, jetstream.ErrBucketNotFound) {
			return nil, errors.WrapInvalid(err, "Client", "GetKeyValueBucket", "open bucket "+name)
		}
		return nil, errors.WrapTransient(err, "Client", "GetKeyValueBucket", "open bucket "+name)
	}
	return kv, nil
}

// Close drains and closes the connection
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.conn, c.js = nil, nil
	c.mu.Unlock()

	if conn == nil {
		c.setStatus(StatusClosed)
		return nil
	}

	drained := make(chan struct{})
	go func() {
		_ = conn.Drain()
		for conn.IsDraining() {
			time.Sleep(10 * time.Millisecond)
		}
		close(drained)
	}()

	timer := time.NewTimer(c.drainTimeout)
	defer timer.Stop()

	select {
	case <-drained:
	case <-timer.C:
		c.logger.Warn("NATS drain timed out")
	case <-ctx.Done():
	}

	conn.Close()
	c.setStatus(StatusClosed)
	return nil
}
