package domain

import "errors"

// Domain errors represent failures of the toolkit itself.
// Vendor SDK errors are passed through wrapped, never replaced by these.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates a bounded wait elapsed without the awaited condition.
	// It carries no partial result.
	ErrTimeout = errors.New("timed out")

	// ErrUnsupportedEncoding indicates a text encoding name that cannot be resolved.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// Authentication Errors.

	// ErrAuthRequired indicates a facade needs credentials but none are configured.
	ErrAuthRequired = errors.New("authentication required")

	// Notification Errors.

	// ErrNotificationFailed indicates a chat service accepted the request but rejected the message.
	ErrNotificationFailed = errors.New("notification failed")
)
