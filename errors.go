package mcpkit

import (
	"errors"

	"github.com/viant/mcpkit/client/auth/transport"
	"github.com/viant/mcpkit/proxy"
	"github.com/viant/mcpkit/ref"
	"github.com/viant/mcpkit/search"
)

// Sentinels from subpackages are re-exported here so callers can classify
// failures with errors.Is against a single package.
var (
	// ErrInvalidReference reports a malformed tool reference.
	ErrInvalidReference = ref.ErrInvalidReference

	// ErrInvalidPattern reports a search pattern that failed to compile.
	ErrInvalidPattern = search.ErrInvalidPattern

	// ErrCyclicSchema reports a self-referential schema tree.
	ErrCyclicSchema = search.ErrCyclicSchema

	// ErrTransportClosed reports an operation against a closed connection;
	// bridged calls still in flight at shutdown fail with the same value.
	ErrTransportClosed = proxy.ErrConnectionClosed

	// ErrTimeout reports a bridged call that exceeded the configured
	// per-call timeout.
	ErrTimeout = proxy.ErrTimeout

	// ErrAuthTimeout reports an interactive authorization flow that did
	// not finish within the flow timeout.
	ErrAuthTimeout = transport.ErrAuthTimeout

	// ErrOAuthNotConfigured reports an authorization challenge that cannot
	// be answered because no OAuth2 client config is available.
	ErrOAuthNotConfigured = transport.ErrOAuthNotConfigured

	// ErrAuthRequired reports a backend that rejected the handshake with
	// an authorization challenge even after one reconnect.
	ErrAuthRequired = errors.New("authorization required")
)
