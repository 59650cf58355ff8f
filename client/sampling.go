package client

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

// CreateMessage handles the sampling/createMessage method
func (h *Handler) CreateMessage(ctx context.Context, request *jsonrpc.Request) (*schema.CreateMessageResult, *jsonrpc.Error) {
	createRequest := &schema.CreateMessageRequest{Method: schema.MethodSamplingCreateMessage}
	if err := json.Unmarshal(request.Params, &createRequest.Params); err != nil {
		return nil, jsonrpc.NewInvalidParamsError(fmt.Sprintf("failed to parse: %v", err), request.Params)
	}
	id, _ := jsonrpc.AsRequestIntId(request.Id)
	jRequest := &jsonrpc.TypedRequest[*schema.CreateMessageRequest]{Id: uint64(id), Method: schema.MethodSamplingCreateMessage, Request: createRequest}
	return h.handler.CreateMessage(ctx, jRequest)
}
