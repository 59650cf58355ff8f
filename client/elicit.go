package client

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

// Elicit handles the elicitation/create method
func (h *Handler) Elicit(ctx context.Context, request *jsonrpc.Request) (*schema.ElicitResult, *jsonrpc.Error) {
	elicitRequest := &schema.ElicitRequest{Method: schema.MethodElicitationCreate}
	if err := json.Unmarshal(request.Params, &elicitRequest.Params); err != nil {
		return nil, jsonrpc.NewInvalidParamsError(fmt.Sprintf("failed to parse: %v", err), request.Params)
	}
	id, _ := jsonrpc.AsRequestIntId(request.Id)
	jRequest := &jsonrpc.TypedRequest[*schema.ElicitRequest]{Id: uint64(id), Method: schema.MethodElicitationCreate, Request: elicitRequest}
	return h.handler.Elicit(ctx, jRequest)
}
