package server

import (
	"context"
	"github.com/viant/jsonrpc/transport/server/stdio"
)

type stdioServer struct {
	stdioOptions []stdio.Option
}

// Stdio returns a stdio listener serving this server's handler.
func (s *Server) Stdio(ctx context.Context, options ...stdio.Option) *stdio.Server {
	options = append(s.stdioOptions, options...)
	return stdio.New(ctx, s.NewHandler, options...)
}
