package relayer

import (
	"github.com/pkg/errors"
)

// Failure taxonomy for public operations. Each type wraps the underlying
// cause, so callers can match on the class with errors.As and still unwrap
// transport-level details.

// ConfigError means the process configuration is unusable. Fatal, never
// retried.
type ConfigError struct {
	cause error
}

func (e *ConfigError) Error() string { return "config: " + e.cause.Error() }
func (e *ConfigError) Unwrap() error { return e.cause }

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{cause: errors.Errorf(format, args...)}
}

// FetchError means the attestation service was unreachable or returned a
// malformed response. Retried only via the scheduler backoff.
type FetchError struct {
	cause error
}

func (e *FetchError) Error() string { return "attestation fetch: " + e.cause.Error() }
func (e *FetchError) Unwrap() error { return e.cause }

func fetchError(cause error, msg string) error {
	return &FetchError{cause: errors.Wrap(cause, msg)}
}

// FeeQueryError means resolving the verifier or quoting the update fee failed.
type FeeQueryError struct {
	cause error
}

func (e *FeeQueryError) Error() string { return "fee query: " + e.cause.Error() }
func (e *FeeQueryError) Unwrap() error { return e.cause }

func feeQueryError(cause error, msg string) error {
	return &FeeQueryError{cause: errors.Wrap(cause, msg)}
}

// SubmissionError means the update transaction could not be sent or did not
// confirm: insufficient signer balance, on-chain revert, or RPC timeout while
// waiting for the receipt.
type SubmissionError struct {
	cause error
}

func (e *SubmissionError) Error() string { return "update submission: " + e.cause.Error() }
func (e *SubmissionError) Unwrap() error { return e.cause }

func submissionError(cause error, msg string) error {
	return &SubmissionError{cause: errors.Wrap(cause, msg)}
}

func submissionErrorf(format string, args ...interface{}) error {
	return &SubmissionError{cause: errors.Errorf(format, args...)}
}

// QueryError means a read-only price query failed (RPC fault or revert).
type QueryError struct {
	cause error
}

func (e *QueryError) Error() string { return "price query: " + e.cause.Error() }
func (e *QueryError) Unwrap() error { return e.cause }

func queryError(cause error, msg string) error {
	return &QueryError{cause: errors.Wrap(cause, msg)}
}
