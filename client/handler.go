package client

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/viant/jsonrpc"
	protoclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/mcp-protocol/schema"
)

// Handler serves server-initiated JSON-RPC requests on the client side.
type Handler struct {
	handler protoclient.Handler
}

// NewHandler wraps a protocol client handler for transport dispatch.
func NewHandler(handler protoclient.Handler) *Handler {
	return &Handler{handler: handler}
}

func (h *Handler) Serve(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	response.Id = request.Id
	response.Jsonrpc = request.Jsonrpc
	switch request.Method {
	case schema.MethodPing:
		h.setResponse(response, &schema.PingResult{}, nil)
		return
	}
	if !h.handler.Implements(request.Method) {
		response.Error = jsonrpc.NewMethodNotFound(fmt.Sprintf("method %s not found", request.Method), nil)
		return
	}
	switch request.Method {
	case schema.MethodRootsList:
		result, err := h.ListRoots(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodSamplingCreateMessage:
		result, err := h.CreateMessage(ctx, request)
		h.setResponse(response, result, err)
	case schema.MethodElicitationCreate:
		result, err := h.Elicit(ctx, request)
		h.setResponse(response, result, err)
	default:
		response.Error = jsonrpc.NewMethodNotFound(fmt.Sprintf("method %s not found", request.Method), nil)
	}
}

// OnNotification forwards notifications to the protocol handler.
func (h *Handler) OnNotification(ctx context.Context, notification *jsonrpc.Notification) {
	h.handler.OnNotification(ctx, notification)
}

func (h *Handler) setResponse(response *jsonrpc.Response, result interface{}, rpcError *jsonrpc.Error) {
	if rpcError != nil {
		response.Error = rpcError
		return
	}
	var err error
	response.Result, err = json.Marshal(result)
	if err != nil {
		response.Error = jsonrpc.NewInternalError(err.Error(), []byte{})
	}
}
