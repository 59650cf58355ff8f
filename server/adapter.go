package server

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/mcpkit/client"
)

// Adapter drives a connection handler through the client.Interface without
// any transport, for in-process use and tests.
type Adapter struct {
	handler *Handler
	seq     atomic.Int64
}

func roundTrip[R any](ctx context.Context, a *Adapter, method string, params interface{}) (*R, error) {
	req, err := jsonrpc.NewRequest(method, params)
	if err != nil {
		return nil, err
	}
	req.Id = int(a.seq.Add(1))
	response := &jsonrpc.Response{}
	a.handler.Serve(ctx, req, response)
	if response.Error != nil {
		return nil, response.Error
	}
	var result R
	if err := json.Unmarshal(response.Result, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Initialize runs the handshake and delivers the initialized notification.
func (a *Adapter) Initialize(ctx context.Context) (*schema.InitializeResult, error) {
	result, err := roundTrip[schema.InitializeResult](ctx, a, schema.MethodInitialize, &schema.InitializeRequestParams{})
	if err != nil {
		return nil, err
	}
	a.handler.OnNotification(ctx, &jsonrpc.Notification{Method: schema.MethodNotificationInitialized})
	return result, nil
}

func (a *Adapter) ListResourceTemplates(ctx context.Context, cursor *string) (*schema.ListResourceTemplatesResult, error) {
	return roundTrip[schema.ListResourceTemplatesResult](ctx, a, schema.MethodResourcesTemplatesList, &schema.ListResourceTemplatesRequestParams{Cursor: cursor})
}

func (a *Adapter) ListResources(ctx context.Context, cursor *string) (*schema.ListResourcesResult, error) {
	return roundTrip[schema.ListResourcesResult](ctx, a, schema.MethodResourcesList, &schema.ListResourcesRequestParams{Cursor: cursor})
}

func (a *Adapter) ListPrompts(ctx context.Context, cursor *string) (*schema.ListPromptsResult, error) {
	return roundTrip[schema.ListPromptsResult](ctx, a, schema.MethodPromptsList, &schema.ListPromptsRequestParams{Cursor: cursor})
}

func (a *Adapter) ListTools(ctx context.Context, cursor *string) (*schema.ListToolsResult, error) {
	return roundTrip[schema.ListToolsResult](ctx, a, schema.MethodToolsList, &schema.ListToolsRequestParams{Cursor: cursor})
}

func (a *Adapter) ReadResource(ctx context.Context, params *schema.ReadResourceRequestParams) (*schema.ReadResourceResult, error) {
	return roundTrip[schema.ReadResourceResult](ctx, a, schema.MethodResourcesRead, params)
}

func (a *Adapter) GetPrompt(ctx context.Context, params *schema.GetPromptRequestParams) (*schema.GetPromptResult, error) {
	return roundTrip[schema.GetPromptResult](ctx, a, schema.MethodPromptsGet, params)
}

func (a *Adapter) CallTool(ctx context.Context, params *schema.CallToolRequestParams) (*schema.CallToolResult, error) {
	return roundTrip[schema.CallToolResult](ctx, a, schema.MethodToolsCall, params)
}

func (a *Adapter) Complete(ctx context.Context, params *schema.CompleteRequestParams) (*schema.CompleteResult, error) {
	return roundTrip[schema.CompleteResult](ctx, a, schema.MethodComplete, params)
}

func (a *Adapter) Ping(ctx context.Context, params *schema.PingRequestParams) (*schema.PingResult, error) {
	return roundTrip[schema.PingResult](ctx, a, schema.MethodPing, params)
}

func (a *Adapter) Subscribe(ctx context.Context, params *schema.SubscribeRequestParams) (*schema.SubscribeResult, error) {
	return roundTrip[schema.SubscribeResult](ctx, a, schema.MethodSubscribe, params)
}

func (a *Adapter) Unsubscribe(ctx context.Context, params *schema.UnsubscribeRequestParams) (*schema.UnsubscribeResult, error) {
	return roundTrip[schema.UnsubscribeResult](ctx, a, schema.MethodUnsubscribe, params)
}

func (a *Adapter) SetLevel(ctx context.Context, params *schema.SetLevelRequestParams) (*schema.SetLevelResult, error) {
	return roundTrip[schema.SetLevelResult](ctx, a, schema.MethodLoggingSetLevel, params)
}

func (a *Adapter) ListRoots(ctx context.Context, params *schema.ListRootsRequestParams) (*schema.ListRootsResult, error) {
	return roundTrip[schema.ListRootsResult](ctx, a, schema.MethodRootsList, params)
}

func (a *Adapter) CreateMessage(ctx context.Context, params *schema.CreateMessageRequestParams) (*schema.CreateMessageResult, error) {
	return roundTrip[schema.CreateMessageResult](ctx, a, schema.MethodSamplingCreateMessage, params)
}

func (a *Adapter) Elicit(ctx context.Context, params *schema.ElicitRequestParams) (*schema.ElicitResult, error) {
	return roundTrip[schema.ElicitResult](ctx, a, schema.MethodElicitationCreate, params)
}

// NewAdapter creates an adapter around an existing handler.
func NewAdapter(handler *Handler) *Adapter {
	return &Adapter{handler: handler}
}

// AsClient exposes the server as an in-process client session.
func (s *Server) AsClient(ctx context.Context) client.Interface {
	return NewAdapter(s.newConnHandler(ctx, loopbackTransport{}))
}

// loopbackTransport satisfies transport.Transport for in-process handlers;
// there is no peer, so backchannel sends fail and notifications are dropped.
type loopbackTransport struct{}

func (loopbackTransport) Send(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	return nil, jsonrpc.NewInternalError("loopback transport has no peer", nil)
}

func (loopbackTransport) Notify(ctx context.Context, notification *jsonrpc.Notification) error {
	return nil
}

// Ensure Adapter implements client.Interface
var _ client.Interface = (*Adapter)(nil)
