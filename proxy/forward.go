package proxy

import (
	"context"
	"errors"
	"time"

	"github.com/viant/jsonrpc"
	protoclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/mcp-protocol/schema"
)

// forwarder serves one frontend connection by relaying every request to the
// shared backend session.
type forwarder struct {
	service *Service
	// clientOps is the frontend connection backchannel.
	clientOps protoclient.Operations
}

// Initialize answers the frontend handshake from the backend snapshot taken
// when the bridge connected; the backend is never initialized twice.
func (f *forwarder) Initialize(ctx context.Context, init *schema.InitializeRequestParams, result *schema.InitializeResult) {
	if f.clientOps != nil {
		f.clientOps.Init(ctx, &init.Capabilities)
	}
	*result = *f.service.handshake
}

// forward relays one call, tracking it in the pending table for the duration.
// Backend JSON-RPC errors pass through verbatim; a configured call timeout
// answers with ErrTimeout, and shutdown with ErrConnectionClosed.
func forward[R any](ctx context.Context, f *forwarder, method string, op func(ctx context.Context) (*R, error)) (*R, *jsonrpc.Error) {
	s := f.service
	if s.closing() {
		return nil, jsonrpc.NewInternalError(ErrConnectionClosed.Error(), nil)
	}
	entry, callCtx := s.track(ctx, method)
	defer s.resolve(entry)
	result, err := op(callCtx)
	if err == nil {
		return result, nil
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		s.logger.Warn("forward timed out", "method", method, "after", time.Since(entry.Started))
		return nil, jsonrpc.NewInternalError(ErrTimeout.Error(), nil)
	}
	if s.closing() {
		return nil, jsonrpc.NewInternalError(ErrConnectionClosed.Error(), nil)
	}
	var rpcErr *jsonrpc.Error
	if errors.As(err, &rpcErr) {
		return nil, rpcErr
	}
	return nil, jsonrpc.NewInternalError(err.Error(), nil)
}

func (f *forwarder) ListTools(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ListToolsRequest]) (*schema.ListToolsResult, *jsonrpc.Error) {
	return forward(ctx, f, schema.MethodToolsList, func(ctx context.Context) (*schema.ListToolsResult, error) {
		return f.service.session.ListTools(ctx, request.Request.Params.Cursor)
	})
}

func (f *forwarder) CallTool(ctx context.Context, request *jsonrpc.TypedRequest[*schema.CallToolRequest]) (*schema.CallToolResult, *jsonrpc.Error) {
	return forward(ctx, f, schema.MethodToolsCall, func(ctx context.Context) (*schema.CallToolResult, error) {
		return f.service.session.CallTool(ctx, &request.Request.Params)
	})
}

func (f *forwarder) ListPrompts(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ListPromptsRequest]) (*schema.ListPromptsResult, *jsonrpc.Error) {
	return forward(ctx, f, schema.MethodPromptsList, func(ctx context.Context) (*schema.ListPromptsResult, error) {
		return f.service.session.ListPrompts(ctx, request.Request.Params.Cursor)
	})
}

func (f *forwarder) GetPrompt(ctx context.Context, request *jsonrpc.TypedRequest[*schema.GetPromptRequest]) (*schema.GetPromptResult, *jsonrpc.Error) {
	return forward(ctx, f, schema.MethodPromptsGet, func(ctx context.Context) (*schema.GetPromptResult, error) {
		return f.service.session.GetPrompt(ctx, &request.Request.Params)
	})
}

func (f *forwarder) ListResources(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ListResourcesRequest]) (*schema.ListResourcesResult, *jsonrpc.Error) {
	return forward(ctx, f, schema.MethodResourcesList, func(ctx context.Context) (*schema.ListResourcesResult, error) {
		return f.service.session.ListResources(ctx, request.Request.Params.Cursor)
	})
}

func (f *forwarder) ListResourceTemplates(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ListResourceTemplatesRequest]) (*schema.ListResourceTemplatesResult, *jsonrpc.Error) {
	return forward(ctx, f, schema.MethodResourcesTemplatesList, func(ctx context.Context) (*schema.ListResourceTemplatesResult, error) {
		return f.service.session.ListResourceTemplates(ctx, request.Request.Params.Cursor)
	})
}

func (f *forwarder) ReadResource(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ReadResourceRequest]) (*schema.ReadResourceResult, *jsonrpc.Error) {
	return forward(ctx, f, schema.MethodResourcesRead, func(ctx context.Context) (*schema.ReadResourceResult, error) {
		return f.service.session.ReadResource(ctx, &request.Request.Params)
	})
}

func (f *forwarder) Subscribe(ctx context.Context, request *jsonrpc.TypedRequest[*schema.SubscribeRequest]) (*schema.SubscribeResult, *jsonrpc.Error) {
	return forward(ctx, f, schema.MethodSubscribe, func(ctx context.Context) (*schema.SubscribeResult, error) {
		return f.service.session.Subscribe(ctx, &request.Request.Params)
	})
}

func (f *forwarder) Unsubscribe(ctx context.Context, request *jsonrpc.TypedRequest[*schema.UnsubscribeRequest]) (*schema.UnsubscribeResult, *jsonrpc.Error) {
	return forward(ctx, f, schema.MethodUnsubscribe, func(ctx context.Context) (*schema.UnsubscribeResult, error) {
		return f.service.session.Unsubscribe(ctx, &request.Request.Params)
	})
}

func (f *forwarder) Complete(ctx context.Context, request *jsonrpc.TypedRequest[*schema.CompleteRequest]) (*schema.CompleteResult, *jsonrpc.Error) {
	return forward(ctx, f, schema.MethodComplete, func(ctx context.Context) (*schema.CompleteResult, error) {
		return f.service.session.Complete(ctx, &request.Request.Params)
	})
}

func (f *forwarder) SetLevel(ctx context.Context, request *jsonrpc.TypedRequest[*schema.SetLevelRequest]) (*schema.SetLevelResult, *jsonrpc.Error) {
	return forward(ctx, f, schema.MethodLoggingSetLevel, func(ctx context.Context) (*schema.SetLevelResult, error) {
		return f.service.session.SetLevel(ctx, &request.Request.Params)
	})
}

// OnNotification relays frontend notifications to the backend. The
// initialized notification stays local: the backend completed its own
// handshake when the bridge connected.
func (f *forwarder) OnNotification(ctx context.Context, notification *jsonrpc.Notification) {
	if notification.Method == schema.MethodNotificationInitialized {
		return
	}
	if err := f.service.backend.Notify(ctx, notification); err != nil {
		f.service.logger.Warn("notify backend failed", "method", notification.Method, "error", err)
	}
}

// Implements names the frontend-facing methods the bridge relays.
func (f *forwarder) Implements(method string) bool {
	switch method {
	case schema.MethodInitialize,
		schema.MethodPing,
		schema.MethodResourcesList,
		schema.MethodResourcesTemplatesList,
		schema.MethodResourcesRead,
		schema.MethodSubscribe,
		schema.MethodUnsubscribe,
		schema.MethodPromptsList,
		schema.MethodPromptsGet,
		schema.MethodToolsList,
		schema.MethodToolsCall,
		schema.MethodComplete,
		schema.MethodLoggingSetLevel:
		return true
	}
	return false
}
