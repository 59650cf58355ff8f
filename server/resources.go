package server

import (
	"context"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

// ListResources handles the resources/list method
func (h *Handler) ListResources(ctx context.Context, request *jsonrpc.Request) (*schema.ListResourcesResult, *jsonrpc.Error) {
	listRequest := &schema.ListResourcesRequest{Method: schema.MethodResourcesList}
	id, rpcErr := decodeParams(request, &listRequest.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return h.handler.ListResources(ctx, &jsonrpc.TypedRequest[*schema.ListResourcesRequest]{Id: id, Method: schema.MethodResourcesList, Request: listRequest})
}

// ListResourceTemplates handles the resources/templates/list method
func (h *Handler) ListResourceTemplates(ctx context.Context, request *jsonrpc.Request) (*schema.ListResourceTemplatesResult, *jsonrpc.Error) {
	listRequest := &schema.ListResourceTemplatesRequest{Method: schema.MethodResourcesTemplatesList}
	id, rpcErr := decodeParams(request, &listRequest.PaginatedRequestParams)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return h.handler.ListResourceTemplates(ctx, &jsonrpc.TypedRequest[*schema.ListResourceTemplatesRequest]{Id: id, Method: schema.MethodResourcesTemplatesList, Request: listRequest})
}

// ReadResource handles the resources/read method
func (h *Handler) ReadResource(ctx context.Context, request *jsonrpc.Request) (*schema.ReadResourceResult, *jsonrpc.Error) {
	readRequest := &schema.ReadResourceRequest{Method: schema.MethodResourcesRead}
	id, rpcErr := decodeParams(request, &readRequest.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return h.handler.ReadResource(ctx, &jsonrpc.TypedRequest[*schema.ReadResourceRequest]{Id: id, Method: schema.MethodResourcesRead, Request: readRequest})
}

// Subscribe handles the resources/subscribe method
func (h *Handler) Subscribe(ctx context.Context, request *jsonrpc.Request) (*schema.SubscribeResult, *jsonrpc.Error) {
	subscribeRequest := &schema.SubscribeRequest{Method: schema.MethodSubscribe}
	id, rpcErr := decodeParams(request, &subscribeRequest.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return h.handler.Subscribe(ctx, &jsonrpc.TypedRequest[*schema.SubscribeRequest]{Id: id, Method: schema.MethodSubscribe, Request: subscribeRequest})
}

// Unsubscribe handles the resources/unsubscribe method
func (h *Handler) Unsubscribe(ctx context.Context, request *jsonrpc.Request) (*schema.UnsubscribeResult, *jsonrpc.Error) {
	unsubscribeRequest := &schema.UnsubscribeRequest{Method: schema.MethodUnsubscribe}
	id, rpcErr := decodeParams(request, &unsubscribeRequest.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return h.handler.Unsubscribe(ctx, &jsonrpc.TypedRequest[*schema.UnsubscribeRequest]{Id: id, Method: schema.MethodUnsubscribe, Request: unsubscribeRequest})
}
