package client

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

// ListRoots handles the roots/list method
func (h *Handler) ListRoots(ctx context.Context, request *jsonrpc.Request) (*schema.ListRootsResult, *jsonrpc.Error) {
	listRootsRequest := &schema.ListRootsRequest{Method: schema.MethodRootsList}
	if len(request.Params) > 0 {
		if err := json.Unmarshal(request.Params, &listRootsRequest.Params); err != nil {
			return nil, jsonrpc.NewInvalidParamsError(fmt.Sprintf("failed to parse: %v", err), request.Params)
		}
	}
	id, _ := jsonrpc.AsRequestIntId(request.Id)
	jRequest := &jsonrpc.TypedRequest[*schema.ListRootsRequest]{Id: uint64(id), Method: schema.MethodRootsList, Request: listRootsRequest}
	return h.handler.ListRoots(ctx, jRequest)
}
