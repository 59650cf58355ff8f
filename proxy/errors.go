package proxy

import "errors"

var (
	// ErrConnectionClosed resolves calls still outstanding when the bridge
	// shuts down or loses its backend.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrTimeout resolves calls exceeding the configured per-call timeout.
	// The backend call itself stays outstanding; only the frontend answer is
	// released.
	ErrTimeout = errors.New("call timed out")
)
