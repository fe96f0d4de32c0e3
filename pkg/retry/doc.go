// Package retry provides exponential backoff retry logic for transient failures.
//
// Retries are used only against remote sequence stores (NATS KV, NCBI
// E-utilities). External alignment and search tools are never retried: their
// failures abort the stage.
//
// With TransientOnly set, Do stops at the first error that the errors package
// does not classify as transient, so a missing identifier is reported after a
// single attempt:
//
//	seq, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (string, error) {
//	    return fetch(ctx, id)
//	})
package retry
