package natsclient

import (
	"fmt"
	"log/slog"
	"time"
)

// ClientOption is a functional option for configuring the Client
type ClientOption func(*Client) error

// WithName sets the connection name reported to the server
func WithName(name string) ClientOption {
	return func(c *Client) error {
		c.name = name
		return nil
	}
}

// WithTimeout sets the connection timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		c.timeout = d
		return nil
	}
}

// WithMaxReconnects sets the maximum number of reconnection attempts (-1 for infinite)
func WithMaxReconnects(max int) ClientOption {
	return func(c *Client) error {
		c.maxReconnects = max
		return nil
	}
}

// WithReconnectWait sets the wait between reconnection attempts
func WithReconnectWait(d time.Duration) ClientOption {
	return func(c *Client) error {
		c.reconnectWait = d
		return nil
	}
}

// WithDrainTimeout bounds how long Close waits for pending messages
func WithDrainTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		c.drainTimeout = d
		return nil
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger.With("component", "natsclient")
		}
		return nil
	}
}
