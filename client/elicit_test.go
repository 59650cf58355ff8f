package client_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	sseclient "github.com/viant/jsonrpc/transport/client/http/sse"
	streamableclient "github.com/viant/jsonrpc/transport/client/http/streamable"
	sseserver "github.com/viant/jsonrpc/transport/server/http/sse"
	streamableserver "github.com/viant/jsonrpc/transport/server/http/streamable"
	protoclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/mcpkit/client"
)

// elicitingPeer accepts every elicitation with fixed content.
type elicitingPeer struct {
	last int
}

func (p *elicitingPeer) Notify(ctx context.Context, n *jsonrpc.Notification) error { return nil }
func (p *elicitingPeer) NextRequestID() jsonrpc.RequestId                          { p.last++; return p.last }
func (p *elicitingPeer) LastRequestID() jsonrpc.RequestId                          { return p.last }

func (p *elicitingPeer) Implements(method string) bool {
	return method == schema.MethodElicitationCreate
}

func (p *elicitingPeer) Init(ctx context.Context, _ *schema.ClientCapabilities)      {}
func (p *elicitingPeer) OnNotification(ctx context.Context, _ *jsonrpc.Notification) {}

func (p *elicitingPeer) ListRoots(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ListRootsRequest]) (*schema.ListRootsResult, *jsonrpc.Error) {
	return &schema.ListRootsResult{}, nil
}

func (p *elicitingPeer) CreateMessage(ctx context.Context, request *jsonrpc.TypedRequest[*schema.CreateMessageRequest]) (*schema.CreateMessageResult, *jsonrpc.Error) {
	return &schema.CreateMessageResult{}, nil
}

func (p *elicitingPeer) Elicit(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ElicitRequest]) (*schema.ElicitResult, *jsonrpc.Error) {
	return &schema.ElicitResult{
		Action:  schema.ElicitResultActionAccept,
		Content: map[string]any{"email": "user@example.com", "code": 1234},
	}, nil
}

var _ protoclient.Handler = (*elicitingPeer)(nil)

// askingHandler is a minimal server answering the handshake and one tool whose
// implementation elicits input from the calling client over the same transport.
type askingHandler struct {
	tr transport.Transport
}

func (h *askingHandler) Serve(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	response.Id = request.Id
	response.Jsonrpc = request.Jsonrpc
	switch request.Method {
	case schema.MethodInitialize:
		result := &schema.InitializeResult{
			ServerInfo:      schema.Implementation{Name: "asking-server", Version: "0.1"},
			ProtocolVersion: schema.LatestProtocolVersion,
			Capabilities:    schema.ServerCapabilities{Tools: &schema.ServerCapabilitiesTools{}},
		}
		response.Result, _ = json.Marshal(result)
	case schema.MethodToolsList:
		result := &schema.ListToolsResult{Tools: []schema.Tool{
			{Name: "signup", InputSchema: schema.ToolInputSchema{Type: "object"}},
		}}
		response.Result, _ = json.Marshal(result)
	case schema.MethodToolsCall:
		params := &schema.ElicitRequestParams{
			ElicitationId: "signup-1",
			Message:       "Provide email and code",
			Mode:          string(schema.ElicitRequestParamsModeForm),
			RequestedSchema: schema.ElicitRequestParamsRequestedSchema{
				Type: "object",
				Properties: map[string]any{
					"email": map[string]any{"type": "string"},
					"code":  map[string]any{"type": "number"},
				},
				Required: []string{"email"},
			},
		}
		call, _ := jsonrpc.NewRequest(schema.MethodElicitationCreate, params)
		res, err := h.tr.Send(ctx, call)
		if err != nil {
			response.Error = jsonrpc.NewInternalError(err.Error(), nil)
			return
		}
		var elicited schema.ElicitResult
		if err := json.Unmarshal(res.Result, &elicited); err != nil {
			response.Error = jsonrpc.NewInternalError(err.Error(), nil)
			return
		}
		text, _ := json.Marshal(elicited.Content)
		out := &schema.CallToolResult{Content: []schema.CallToolResultContentElem{
			schema.TextContent{Text: string(text), Type: "text"},
		}}
		response.Result, _ = json.Marshal(out)
	default:
		response.Error = jsonrpc.NewMethodNotFound(fmt.Sprintf("method %s not found", request.Method), nil)
	}
}

func (h *askingHandler) OnNotification(ctx context.Context, _ *jsonrpc.Notification) {}

func startAskingServer(t *testing.T, streaming bool) (string, func()) {
	t.Helper()
	mux := http.NewServeMux()
	newHandler := func(ctx context.Context, tr transport.Transport) transport.Handler {
		return &askingHandler{tr: tr}
	}
	if streaming {
		mux.Handle("/mcp", streamableserver.New(newHandler))
	} else {
		mux.Handle("/", sseserver.New(newHandler))
	}
	httpSrv := &http.Server{Handler: mux}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = httpSrv.Serve(ln) }()
	return "http://" + ln.Addr().String(), func() { _ = httpSrv.Close() }
}

func callSignup(t *testing.T, ctx context.Context, c *client.Client) {
	t.Helper()
	_, err := c.Initialize(ctx)
	require.NoError(t, err)

	tools, err := c.ListTools(ctx, nil)
	require.NoError(t, err)
	if assert.Len(t, tools.Tools, 1) {
		assert.Equal(t, "signup", tools.Tools[0].Name)
	}

	params, err := schema.NewCallToolRequestParams[struct{}]("signup", struct{}{})
	require.NoError(t, err)
	res, err := c.CallTool(ctx, params)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	payload, err := json.Marshal(res.Content[0])
	require.NoError(t, err)
	assert.Contains(t, string(payload), "user@example.com")
	assert.Contains(t, string(payload), "1234")
}

func TestClient_SSEToolElicits(t *testing.T) {
	baseURL, stop := startAskingServer(t, false)
	defer stop()
	ctx := context.Background()

	peer := &elicitingPeer{}
	aTransport, err := sseclient.New(ctx, baseURL+"/sse",
		sseclient.WithHandler(client.NewHandler(peer)))
	require.NoError(t, err)

	c := client.New("tester", "0.1", aTransport, client.WithClientHandler(peer))
	callSignup(t, ctx, c)
}

func TestClient_StreamableToolElicits(t *testing.T) {
	baseURL, stop := startAskingServer(t, true)
	defer stop()
	ctx := context.Background()

	peer := &elicitingPeer{}
	aTransport, err := streamableclient.New(ctx, baseURL+"/mcp",
		streamableclient.WithHandler(client.NewHandler(peer)))
	require.NoError(t, err)

	c := client.New("tester", "0.1", aTransport, client.WithClientHandler(peer))
	callSignup(t, ctx, c)
}
