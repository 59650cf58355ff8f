package server

import (
	"github.com/viant/jsonrpc/transport/server/stdio"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
	"github.com/viant/mcpkit/server/auth"
	"net/http"
)

// Option is a function that configures the server.
type Option func(s *Server) error

// WithNewHandler sets the per-connection protocol handler factory.
func WithNewHandler(newHandler protoserver.NewHandler) Option {
	return func(s *Server) error {
		s.newHandler = newHandler
		return nil
	}
}

// WithImplementation sets the server implementation info.
func WithImplementation(implementation schema.Implementation) Option {
	return func(s *Server) error {
		s.info = implementation
		return nil
	}
}

// WithProtocolVersion overrides the advertised protocol version.
func WithProtocolVersion(version string) Option {
	return func(s *Server) error {
		s.protocolVersion = version
		return nil
	}
}

// WithInstructions sets the instructions returned from initialize.
func WithInstructions(instructions string) Option {
	return func(s *Server) error {
		s.instructions = &instructions
		return nil
	}
}

// WithLoggerName sets the MCP notification logger name.
func WithLoggerName(name string) Option {
	return func(s *Server) error {
		s.loggerName = name
		return nil
	}
}

// WithEndpointAddress sets the default HTTP bind address.
func WithEndpointAddress(addr string) Option {
	return func(s *Server) error {
		s.addr = addr
		return nil
	}
}

// WithSSEURI sets the SSE stream URI.
func WithSSEURI(uri string) Option {
	return func(s *Server) error {
		s.sseURI = uri
		return nil
	}
}

// WithSSEMessageURI sets the SSE message post URI.
func WithSSEMessageURI(uri string) Option {
	return func(s *Server) error {
		s.sseMessageURI = uri
		return nil
	}
}

// WithStreamableURI sets the streamable HTTP URI.
func WithStreamableURI(uri string) Option {
	return func(s *Server) error {
		s.streamableURI = uri
		return nil
	}
}

// WithRootRedirect redirects "/" to the active transport base URI.
func WithRootRedirect() Option {
	return func(s *Server) error {
		s.rootRedirect = true
		return nil
	}
}

// WithCustomHTTPHandler mounts a custom handler at the given path.
func WithCustomHTTPHandler(path string, handler http.HandlerFunc) Option {
	return func(s *Server) error {
		if s.customHTTPHandlers == nil {
			s.customHTTPHandlers = make(map[string]http.HandlerFunc)
		}
		s.customHTTPHandlers[path] = handler
		return nil
	}
}

// WithCORS replaces the default permissive CORS configuration.
func WithCORS(cors *Cors) Option {
	return func(s *Server) error {
		s.corsConfig = cors
		handler := &corsHandler{Cors: cors}
		s.corsHandler = handler.Middleware
		return nil
	}
}

// WithAuthorizer adds an HTTP middleware authorizer.
func WithAuthorizer(authorizer Middleware) Option {
	return func(s *Server) error {
		s.authorizer = authorizer
		return nil
	}
}

// WithJRPCAuthorizer adds a JSON-RPC level authorizer.
func WithJRPCAuthorizer(authorizer auth.Authorizer) Option {
	return func(s *Server) error {
		s.jRPCAuthorizer = authorizer
		return nil
	}
}

// WithProtectedResourcesHandler serves OAuth protected resource metadata.
func WithProtectedResourcesHandler(handler http.HandlerFunc) Option {
	return func(s *Server) error {
		s.protectedResourcesHandler = handler
		return nil
	}
}

// WithStdioOptions passes options through to the stdio listener.
func WithStdioOptions(options ...stdio.Option) Option {
	return func(s *Server) error {
		s.stdioOptions = append(s.stdioOptions, options...)
		return nil
	}
}
