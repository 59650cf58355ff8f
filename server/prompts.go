package server

import (
	"context"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

// ListPrompts handles the prompts/list method
func (h *Handler) ListPrompts(ctx context.Context, request *jsonrpc.Request) (*schema.ListPromptsResult, *jsonrpc.Error) {
	listRequest := &schema.ListPromptsRequest{Method: schema.MethodPromptsList}
	id, rpcErr := decodeParams(request, &listRequest.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return h.handler.ListPrompts(ctx, &jsonrpc.TypedRequest[*schema.ListPromptsRequest]{Id: id, Method: schema.MethodPromptsList, Request: listRequest})
}

// GetPrompt handles the prompts/get method
func (h *Handler) GetPrompt(ctx context.Context, request *jsonrpc.Request) (*schema.GetPromptResult, *jsonrpc.Error) {
	getRequest := &schema.GetPromptRequest{Method: schema.MethodPromptsGet}
	id, rpcErr := decodeParams(request, &getRequest.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return h.handler.GetPrompt(ctx, &jsonrpc.TypedRequest[*schema.GetPromptRequest]{Id: id, Method: schema.MethodPromptsGet, Request: getRequest})
}
