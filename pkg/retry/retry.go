// Package retry provides exponential backoff retry logic for transient backing-store failures
package retry

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/c360/orthomerge/errors"
)

var (
	randMu     sync.Mutex
	randSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NonRetryableError wraps errors that should not be retried
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string {
	return fmt.Sprintf("non-retryable: %v", e.Err)
}

func (e *NonRetryableError) Unwrap() error {
	return e.Err
}

// NonRetryable wraps an error to indicate it should not be retried
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &NonRetryableError{Err: err}
}

// IsNonRetryable checks if an error is marked as non-retryable
func IsNonRetryable(err error) bool {
	var nre *NonRetryableError
	return stderrors.As(err, &nre)
}

// Config provides retry configuration
type Config struct {
	MaxAttempts  int           // Maximum number of attempts (<=0 means run once)
	InitialDelay time.Duration // Initial delay between attempts
	MaxDelay     time.Duration // Maximum delay between attempts
	Multiplier   float64       // Backoff multiplier
	AddJitter    bool          // Add up to 25% random delay
	// TransientOnly stops retrying as soon as an error is not classified transient.
	TransientOnly bool
}

// DefaultConfig returns defaults for sequence lookups against remote stores
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		Multiplier:    2.0,
		AddJitter:     true,
		TransientOnly: true,
	}
}

// Quick returns a config for fast retries, used while connecting to NATS
func Quick() Config {
	return Config{
		MaxAttempts:  10,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   1.5,
		AddJitter:    true,
	}
}

func (cfg Config) normalize() (Config, error) {
	if cfg.InitialDelay < 0 {
		return cfg, stderrors.New("retry: InitialDelay cannot be negative")
	}
	if cfg.MaxDelay < 0 {
		return cfg, stderrors.New("retry: MaxDelay cannot be negative")
	}
	if cfg.Multiplier < 0 {
		return cfg, stderrors.New("retry: Multiplier cannot be negative")
	}
	if cfg.Multiplier > 1000 {
		cfg.Multiplier = 1000
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialDelay == 0 {
		cfg.InitialDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = 5 * time.Second
	}
	if cfg.Multiplier == 0 {
		cfg.Multiplier = 2.0
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		return cfg, stderrors.New("retry: MaxDelay must be >= InitialDelay")
	}
	return cfg, nil
}

// Do executes fn with exponential backoff retry
func Do(ctx context.Context, cfg Config, fn func() error) error {
	cfg, err := cfg.normalize()
	if err != nil {
		return err
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if IsNonRetryable(err) {
			return err
		}
		if cfg.TransientOnly && !errors.IsTransient(err) {
			return err
		}

		if ctx.Err() != nil {
			return fmt.Errorf("retry cancelled before attempt %d: %w", attempt, ctx.Err())
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		sleepDuration := delay
		if cfg.AddJitter && delay >= 4 {
			randMu.Lock()
			jitter := time.Duration(randSource.Int63n(int64(delay / 4)))
			randMu.Unlock()
			sleepDuration = delay + jitter
		}

		timer := time.NewTimer(sleepDuration)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled during backoff for attempt %d: %w", attempt+1, ctx.Err())
		case <-timer.C:
		}

		nextDelay := float64(delay) * cfg.Multiplier
		if nextDelay > float64(cfg.MaxDelay) {
			delay = cfg.MaxDelay
		} else {
			delay = time.Duration(nextDelay)
		}
	}

	return fmt.Errorf("retry failed after %d attempts: %w: %w", cfg.MaxAttempts, errors.ErrMaxRetriesExceeded, lastErr)
}

// DoWithResult executes fn with retry and returns both result and error
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func() error {
		var innerErr error
		result, innerErr = fn()
		return innerErr
	})
	return result, err
}
