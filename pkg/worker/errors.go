package worker

import "errors"

// Sentinel errors for executor operations
var (
	// ErrNilTask indicates a nil task function was provided to Map
	ErrNilTask = errors.New("task function cannot be nil")

	// ErrNilExecutor indicates Map was called without an executor
	ErrNilExecutor = errors.New("executor cannot be nil")

	// ErrTaskPanic indicates a task panicked; the panic value is in the message
	ErrTaskPanic = errors.New("task panicked")
)
