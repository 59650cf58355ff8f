package client

import (
	protoclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/mcpkit/client/auth"
)

// Option configures a Client.
type Option func(c *Client)

// WithCapabilities sets advertised client capabilities.
func WithCapabilities(capabilities schema.ClientCapabilities) Option {
	return func(c *Client) {
		c.capabilities = capabilities
	}
}

// WithClientHandler wires the handler answering server-initiated requests.
func WithClientHandler(handler protoclient.Handler) Option {
	return func(c *Client) {
		c.handler = handler
	}
}

// WithProtocolVersion overrides the negotiated protocol version.
func WithProtocolVersion(version string) Option {
	return func(c *Client) {
		c.protocolVersion = version
	}
}

// WithAuthInterceptor retries Unauthorized calls once with an acquired token.
func WithAuthInterceptor(authorizer *auth.Authorizer) Option {
	return func(c *Client) {
		c.authInterceptor = authorizer
	}
}
