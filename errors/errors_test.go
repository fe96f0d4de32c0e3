package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.class.String())
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection timeout", ErrConnectionTimeout, true},
		{"storage unavailable", ErrStorageUnavailable, true},
		{"rate limited", ErrRateLimited, true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"too many requests message", fmt.Errorf("efetch: 429 Too Many Requests"), true},
		{"sequence not found", ErrSequenceNotFound, false},
		{"external tool", ErrExternalTool, false},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("timeout")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, IsTransient(test.err))
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"missing manifest", ErrMissingManifest, true},
		{"empty manifest", ErrEmptyManifest, true},
		{"external tool", ErrExternalTool, true},
		{"no search results", ErrNoSearchResults, true},
		{"invalid config", ErrInvalidConfig, true},
		{"sequence not found", ErrSequenceNotFound, false},
		{"wrapped external tool", fmt.Errorf("merge: %w", ErrExternalTool), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, IsFatal(test.err))
		})
	}
}

func TestIsMissingDatum(t *testing.T) {
	assert.True(t, IsMissingDatum(ErrSequenceNotFound))
	assert.True(t, IsMissingDatum(fmt.Errorf("lookup 42: %w", ErrSequenceNotFound)))
	assert.True(t, IsMissingDatum(ErrMissingTarget))
	assert.False(t, IsMissingDatum(ErrExternalTool))
	assert.False(t, IsMissingDatum(nil))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrorTransient, Classify(ErrConnectionLost))
	assert.Equal(t, ErrorFatal, Classify(ErrEmptyManifest))
	assert.Equal(t, ErrorInvalid, Classify(ErrParsingFailed))
	assert.Equal(t, ErrorFatal, Classify(errors.New("something unexpected")))
}

func TestWrapFamily(t *testing.T) {
	base := errors.New("exit status 1")

	err := WrapFatal(base, "MuscleAligner", "ProfileAlign", "run muscle")
	require.Error(t, err)
	assert.Equal(t, "MuscleAligner.ProfileAlign: run muscle failed: exit status 1", err.Error())
	assert.True(t, IsFatal(err))
	assert.True(t, errors.Is(err, base))

	var ce *ClassifiedError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "MuscleAligner", ce.Component)
	assert.Equal(t, "ProfileAlign", ce.Operation)

	assert.True(t, IsTransient(WrapTransient(base, "KVCatalog", "Lookup", "get")))
	assert.True(t, IsInvalid(WrapInvalid(base, "Loader", "Load", "parse")))

	assert.Nil(t, Wrap(nil, "a", "b", "c"))
	assert.Nil(t, WrapFatal(nil, "a", "b", "c"))
	assert.Nil(t, WrapTransient(nil, "a", "b", "c"))
	assert.Nil(t, WrapInvalid(nil, "a", "b", "c"))
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	inner := WrapInvalid(ErrEmptyManifest, "manifest", "Read", "read entries")
	outer := fmt.Errorf("stage: %w", inner)

	assert.True(t, IsInvalid(outer))
	assert.False(t, IsFatal(outer))
	assert.True(t, errors.Is(outer, ErrEmptyManifest))
}
