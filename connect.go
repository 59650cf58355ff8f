package mcpkit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"

	pclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/mcpkit/capability"
	"github.com/viant/mcpkit/client"
	"github.com/viant/mcpkit/client/auth/store"
)

// Session is one live backend connection: the negotiated handshake, the
// typed operations and every resource the dial acquired.
type Session struct {
	client    *client.Client
	transport transport.Transport
	handshake *schema.InitializeResult
	child     *spawnedServer
	options   *ClientOptions

	closeOnce sync.Once
	closeErr  error
}

// Client returns the typed protocol operations.
func (s *Session) Client() client.Interface { return s.client }

// Handshake returns the initialize result negotiated with the backend.
func (s *Session) Handshake() *schema.InitializeResult { return s.handshake }

// ServerInfo returns the backend identity.
func (s *Session) ServerInfo() schema.Implementation { return s.handshake.ServerInfo }

// ProtocolVersion returns the negotiated protocol version.
func (s *Session) ProtocolVersion() string { return s.handshake.ProtocolVersion }

// Capabilities snapshots the tools, prompts and resources the backend
// advertises right now.
func (s *Session) Capabilities(ctx context.Context) (*capability.Model, error) {
	return capability.Fetch(ctx, s.client,
		capability.WithServerInfo(s.handshake.ServerInfo, s.handshake.ProtocolVersion, s.handshake.Instructions))
}

// AuthStore exposes the token store backing the session's auth transport,
// or nil when the session is unauthenticated.
func (s *Session) AuthStore() store.Store { return s.options.AuthStore() }

// Close releases the transport and stops a spawned server child.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if closer, ok := s.transport.(io.Closer); ok {
			s.closeErr = closer.Close()
		}
		if s.child != nil {
			if err := s.child.stop(); err != nil && s.closeErr == nil {
				s.closeErr = err
			}
		}
	})
	return s.closeErr
}

// Connect dials the configured backend and runs the protocol handshake.
// A handshake rejected with an authorization challenge is retried once on
// a fresh dial: the auth transport keeps its token store across attempts,
// so credentials acquired while answering the challenge carry over.
func Connect(ctx context.Context, handler pclient.Handler, options *ClientOptions, clientOptions ...client.Option) (*Session, error) {
	options.Init()
	if err := options.Validate(); err != nil {
		return nil, err
	}
	var child *spawnedServer
	if spawnOptions := options.Transport.Spawn; spawnOptions != nil {
		var err error
		if child, err = spawnOptions.spawn(); err != nil {
			return nil, err
		}
		if err = awaitReady(ctx, options.Transport.URL, child, spawnOptions.ReadyTimeout, nil); err != nil {
			_ = child.stop()
			return nil, err
		}
	}
	session, err := options.connect(ctx, handler, child, clientOptions)
	if err == nil {
		return session, nil
	}
	if !isAuthError(err) {
		if child != nil {
			_ = child.stop()
		}
		return nil, err
	}
	session, retryErr := options.connect(ctx, handler, child, clientOptions)
	if retryErr != nil {
		if child != nil {
			_ = child.stop()
		}
		return nil, fmt.Errorf("%w: reconnect failed: %v", ErrAuthRequired, retryErr)
	}
	return session, nil
}

// connect performs a single dial plus handshake attempt.
func (c *ClientOptions) connect(ctx context.Context, handler pclient.Handler, child *spawnedServer, clientOptions []client.Option) (*Session, error) {
	rpcTransport, authRT, err := c.getTransport(ctx, handler)
	if err != nil {
		return nil, err
	}
	opts := c.Options(authRT)
	if handler != nil {
		opts = append(opts, client.WithClientHandler(handler))
	}
	opts = append(opts, clientOptions...)
	cli := client.New(c.Name, c.Version, rpcTransport, opts...)
	handshake, err := cli.Initialize(ctx)
	if err != nil {
		if closer, ok := rpcTransport.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	return &Session{client: cli, transport: rpcTransport, handshake: handshake, child: child, options: c}, nil
}

// isAuthError reports whether err carries an authorization challenge: a
// JSON-RPC Unauthorized code, the package sentinel, or an HTTP 401
// surfaced while opening a stream.
func isAuthError(err error) bool {
	var rpcErr *jsonrpc.Error
	if errors.As(err, &rpcErr) && rpcErr.Code == schema.Unauthorized {
		return true
	}
	if errors.Is(err, ErrAuthRequired) {
		return true
	}
	text := err.Error()
	return strings.Contains(text, "401") || strings.Contains(text, "Unauthorized")
}
