package natsclient

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/orthomerge/errors"
)

func TestNewClient_Options(t *testing.T) {
	c, err := NewClient("nats://localhost:4222",
		WithName("seeds"),
		WithTimeout(time.Second),
		WithMaxReconnects(0),
	)
	require.NoError(t, err)
	assert.Equal(t, "nats://localhost:4222", c.URL())
	assert.Equal(t, "seeds", c.name)
	assert.Equal(t, time.Second, c.timeout)
	assert.Equal(t, StatusDisconnected, c.Status())

	_, err = NewClient("nats://localhost:4222", WithTimeout(0))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestConnectionStatus_String(t *testing.T) {
	assert.Equal(t, "connected", StatusConnected.String())
	assert.Equal(t, "closed", StatusClosed.String())
	assert.Equal(t, "unknown", ConnectionStatus(42).String())
}

func TestClient_JetStreamBeforeConnect(t *testing.T) {
	c, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	_, err = c.JetStream()
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.True(t, errors.IsTransient(err))

	// closing an unconnected client is a no-op
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, StatusClosed, c.Status())
}

func TestClient_ConnectCancelled(t *testing.T) {
	c, err := NewClient("nats://127.0.0.1:1", WithTimeout(50*time.Millisecond), WithMaxReconnects(0))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err = c.Connect(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
	assert.Equal(t, StatusDisconnected, c.Status())
}

func TestIsKVNotFoundError(t *testing.T) {
	assert.False(t, IsKVNotFoundError(nil))
	assert.True(t, IsKVNotFoundError(ErrKVKeyNotFound))
	assert.True(t, IsKVNotFoundError(jetstream.ErrKeyNotFound))
	assert.True(t, IsKVNotFoundError(fmt.Errorf("get: %w", jetstream.ErrKeyDeleted)))
	assert.True(t, IsKVNotFoundError(fmt.Errorf("nats: error code 10037")))
	assert.False(t, IsKVNotFoundError(fmt.Errorf("nats: timeout")))
}
