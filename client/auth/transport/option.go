package transport

import (
	"net/http"
	"time"

	"github.com/viant/mcp-protocol/authorization"
	"github.com/viant/mcpkit/client/auth/store"
	"github.com/viant/scy/auth/flow"
)

// Option customizes a RoundTripper.
type Option func(*RoundTripper)

// WithStore sets the token store.
func WithStore(store store.Store) Option {
	return func(t *RoundTripper) {
		t.store = store
	}
}

// WithAuthFlow sets the interactive authorization flow.
func WithAuthFlow(flow flow.AuthFlow) Option {
	return func(t *RoundTripper) {
		t.authFlow = flow
	}
}

// WithFlowTimeout bounds the wait for the interactive flow; past the timeout
// the request fails with ErrAuthTimeout.
func WithFlowTimeout(timeout time.Duration) Option {
	return func(t *RoundTripper) {
		t.flowTimeout = timeout
	}
}

// WithGlobalResource applies one authorization policy to every request,
// e.g. to force id-token exchange.
func WithGlobalResource(global *authorization.Authorization) Option {
	return func(t *RoundTripper) {
		t.Global = global
	}
}

// WithTransport sets the underlying transport, http.DefaultTransport by default.
func WithTransport(transport http.RoundTripper) Option {
	return func(t *RoundTripper) {
		t.transport = transport
	}
}

// WithCookieJar attaches a cookie jar so IdP session cookies survive across
// requests issued directly through the RoundTripper.
func WithCookieJar(jar http.CookieJar) Option {
	return func(t *RoundTripper) {
		t.jar = jar
	}
}
