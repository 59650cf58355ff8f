package server

import (
	"context"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

// ListTools handles the tools/list method
func (h *Handler) ListTools(ctx context.Context, request *jsonrpc.Request) (*schema.ListToolsResult, *jsonrpc.Error) {
	listRequest := &schema.ListToolsRequest{Method: schema.MethodToolsList}
	id, rpcErr := decodeParams(request, &listRequest.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return h.handler.ListTools(ctx, &jsonrpc.TypedRequest[*schema.ListToolsRequest]{Id: id, Method: schema.MethodToolsList, Request: listRequest})
}

// CallTool handles the tools/call method
func (h *Handler) CallTool(ctx context.Context, request *jsonrpc.Request) (*schema.CallToolResult, *jsonrpc.Error) {
	callRequest := &schema.CallToolRequest{Method: schema.MethodToolsCall}
	id, rpcErr := decodeParams(request, &callRequest.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return h.handler.CallTool(ctx, &jsonrpc.TypedRequest[*schema.CallToolRequest]{Id: id, Method: schema.MethodToolsCall, Request: callRequest})
}
