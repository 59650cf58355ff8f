package server

import (
	"context"
	"errors"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
	"github.com/viant/mcp-protocol/syncmap"
	"github.com/viant/mcpkit/server/auth"
)

// Server exposes a protocol handler factory over HTTP and stdio listeners.
type Server struct {
	active     *syncmap.Map[int, *activeRequest]
	info       schema.Implementation
	newHandler protoserver.NewHandler

	instructions    *string
	protocolVersion string
	loggerName      string

	// authorizer guards HTTP endpoints, jRPCAuthorizer individual calls
	authorizer     Middleware
	jRPCAuthorizer auth.Authorizer

	httpServer
	stdioServer
}

func (s *Server) cancelActive(id int) {
	if active, ok := s.active.Get(id); ok {
		active.CancelFunc()
		s.active.Delete(id)
	}
}

// NewHandler creates a per-connection handler bound to the given transport.
func (s *Server) NewHandler(ctx context.Context, aTransport transport.Transport) transport.Handler {
	return s.newConnHandler(ctx, aTransport)
}

func (s *Server) newConnHandler(ctx context.Context, aTransport transport.Transport) *Handler {
	ret := &Handler{
		Server:         s,
		Notifier:       aTransport,
		jRPCAuthorizer: s.jRPCAuthorizer,
	}
	ret.Logger = NewLogger(s.loggerName, &ret.loggingLevel, ret.Notifier)
	operations := NewClient(nil, aTransport)
	ret.handler, ret.err = s.newHandler(ctx, aTransport, ret.Logger, operations)
	return ret
}

// New creates a Server; a handler factory is required.
func New(options ...Option) (*Server, error) {
	s := &Server{
		info: schema.Implementation{
			Name:    "mcpkit",
			Version: "0.1",
		},
		loggerName:      "server",
		protocolVersion: schema.LatestProtocolVersion,
		active:          syncmap.NewMap[int, *activeRequest](),
	}
	s.corsConfig = defaultCors()
	s.corsHandler = (&corsHandler{Cors: s.corsConfig}).Middleware
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	if s.newHandler == nil {
		return nil, errors.New("no handler factory specified")
	}
	return s, nil
}
