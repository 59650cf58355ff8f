package auth

import (
	"context"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/authorization"
)

// Authorizer intercepts a JSON-RPC call before dispatch. It returns a token
// to attach to the request context, or sets response.Error to deny the call.
type Authorizer func(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) (*authorization.Token, error)
