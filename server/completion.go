package server

import (
	"context"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

// Complete handles the completion/complete method
func (h *Handler) Complete(ctx context.Context, request *jsonrpc.Request) (*schema.CompleteResult, *jsonrpc.Error) {
	completeRequest := &schema.CompleteRequest{Method: schema.MethodComplete}
	id, rpcErr := decodeParams(request, &completeRequest.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return h.handler.Complete(ctx, &jsonrpc.TypedRequest[*schema.CompleteRequest]{Id: id, Method: schema.MethodComplete, Request: completeRequest})
}
