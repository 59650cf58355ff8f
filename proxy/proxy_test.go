package proxy_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	streamableclient "github.com/viant/jsonrpc/transport/client/http/streamable"
	stdioclient "github.com/viant/jsonrpc/transport/client/stdio"
	streamableserver "github.com/viant/jsonrpc/transport/server/http/streamable"
	protoclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
	"github.com/viant/mcpkit/client"
	"github.com/viant/mcpkit/proxy"
	"github.com/viant/mcpkit/server"
)

// TestMain lets the test binary double as a backend: re-executed with
// -stdio-backend it serves the echo handler over stdin/stdout instead of
// running tests.
func TestMain(m *testing.M) {
	for _, arg := range os.Args[1:] {
		if arg == "-stdio-backend" {
			runStdioBackend()
			return
		}
	}
	os.Exit(m.Run())
}

func runStdioBackend() {
	ctx := context.Background()
	srv, err := server.New(
		server.WithNewHandler(newEchoHandler(ctx)),
		server.WithImplementation(schema.Implementation{Name: "stdio-backend", Version: "1.0"}),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	_ = srv.Stdio(ctx).ListenAndServe()
}

// newEchoHandler registers an echo tool and a deliberately slow variant.
func newEchoHandler(ctx context.Context) protoserver.NewHandler {
	return protoserver.WithDefaultHandler(ctx, func(h *protoserver.DefaultHandler) error {
		type echoInput struct {
			Text string `json:"text"`
		}
		type echoOutput struct {
			Text string `json:"text"`
		}
		err := protoserver.RegisterTool[*echoInput, *echoOutput](h.Registry, "echo", "Echo text back", func(ctx context.Context, input *echoInput) (*schema.CallToolResult, *jsonrpc.Error) {
			out := &echoOutput{Text: input.Text}
			data, err := json.Marshal(out)
			if err != nil {
				return nil, jsonrpc.NewInternalError(err.Error(), nil)
			}
			return &schema.CallToolResult{Content: []schema.CallToolResultContentElem{
				schema.TextContent{Text: string(data), Type: "text"},
			}}, nil
		})
		if err != nil {
			return err
		}
		return protoserver.RegisterTool[*echoInput, *echoOutput](h.Registry, "slow_echo", "Echo text after a delay", func(ctx context.Context, input *echoInput) (*schema.CallToolResult, *jsonrpc.Error) {
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
				return nil, jsonrpc.NewInternalError(ctx.Err().Error(), nil)
			}
			return &schema.CallToolResult{Content: []schema.CallToolResultContentElem{
				schema.TextContent{Text: input.Text, Type: "text"},
			}}, nil
		})
	})
}

// startBackend runs the echo backend on an ephemeral HTTP address.
func startBackend(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	srv, err := server.New(
		server.WithNewHandler(newEchoHandler(ctx)),
		server.WithImplementation(schema.Implementation{Name: "backend", Version: "1.0"}),
	)
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	httpSrv := srv.HTTP(ctx, ln.Addr().String())
	go func() { _ = httpSrv.Serve(ln) }()
	return ln.Addr().String(), func() { _ = httpSrv.Close() }
}

// startBridge exposes an already connected service on an ephemeral HTTP
// address.
func startBridge(t *testing.T, ctx context.Context, s *proxy.Service) (string, func()) {
	t.Helper()
	httpSrv, err := s.HTTP(ctx, "")
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = httpSrv.Serve(ln) }()
	return ln.Addr().String(), func() { _ = httpSrv.Close() }
}

func dialFrontend(t *testing.T, ctx context.Context, addr string) client.Interface {
	t.Helper()
	aTransport, err := streamableclient.New(ctx, "http://"+addr+"/mcp")
	require.NoError(t, err)
	c := client.New("frontend", "0.1", aTransport)
	_, err = c.Initialize(ctx)
	require.NoError(t, err)
	return c
}

func callEcho(ctx context.Context, c client.Interface, tool, text string) (string, error) {
	res, err := c.CallTool(ctx, &schema.CallToolRequestParams{
		Name:      tool,
		Arguments: map[string]any{"text": text},
	})
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(res.Content)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func TestService_PassThrough(t *testing.T) {
	ctx := context.Background()
	backendAddr, stopBackend := startBackend(t, ctx)
	defer stopBackend()

	s, err := proxy.New(ctx, &proxy.Options{URL: "http://" + backendAddr + "/mcp"})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, proxy.StateBackendReady, s.State())

	bridgeAddr, stopBridge := startBridge(t, ctx, s)
	defer stopBridge()

	direct := dialFrontend(t, ctx, backendAddr)
	bridged := dialFrontend(t, ctx, bridgeAddr)

	// The bridged handshake presents the backend identity.
	snapshot := s.Snapshot()
	assert.Equal(t, "backend", snapshot.Server.Name)

	directTools, err := direct.ListTools(ctx, nil)
	require.NoError(t, err)
	bridgedTools, err := bridged.ListTools(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, directTools.Tools, bridgedTools.Tools)

	directOut, err := callEcho(ctx, direct, "echo", "fidelity")
	require.NoError(t, err)
	bridgedOut, err := callEcho(ctx, bridged, "echo", "fidelity")
	require.NoError(t, err)
	assert.Equal(t, directOut, bridgedOut)

	// Backend errors pass through without rewriting.
	_, directErr := callEcho(ctx, direct, "no_such_tool", "x")
	require.Error(t, directErr)
	_, bridgedErr := callEcho(ctx, bridged, "no_such_tool", "x")
	require.Error(t, bridgedErr)
	assert.Equal(t, directErr.Error(), bridgedErr.Error())
}

func TestService_SnapshotPrimed(t *testing.T) {
	ctx := context.Background()
	backendAddr, stopBackend := startBackend(t, ctx)
	defer stopBackend()

	s, err := proxy.New(ctx, &proxy.Options{URL: "http://" + backendAddr + "/mcp"})
	require.NoError(t, err)
	defer s.Close()

	snapshot := s.Snapshot()
	_, ok := snapshot.Tool("echo")
	assert.True(t, ok)
	_, ok = snapshot.Tool("slow_echo")
	assert.True(t, ok)
	assert.Empty(t, snapshot.Prompts)
	assert.Empty(t, snapshot.Resources)
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	backendAddr, stopBackend := startBackend(t, ctx)
	defer stopBackend()

	s, err := proxy.New(ctx, &proxy.Options{
		URL:        "http://" + backendAddr + "/mcp",
		Expose:     proxy.ExposeHTTP,
		ListenAddr: "127.0.0.1:0",
	})
	require.NoError(t, err)
	assert.Equal(t, proxy.StateBackendReady, s.State())

	serveErr := make(chan error, 1)
	go func() { serveErr <- s.Serve(ctx) }()
	require.Eventually(t, func() bool { return s.State() == proxy.StateServing }, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Close())
	assert.Equal(t, proxy.StateClosed, s.State())
	assert.NoError(t, s.Wait())
	select {
	case err := <-serveErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after close")
	}
}

func TestService_RequiresBackend(t *testing.T) {
	_, err := proxy.New(context.Background(), &proxy.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of url or exec")
}

func TestService_CallTimeout(t *testing.T) {
	ctx := context.Background()
	backendAddr, stopBackend := startBackend(t, ctx)
	defer stopBackend()

	s, err := proxy.New(ctx, &proxy.Options{
		URL:         "http://" + backendAddr + "/mcp",
		CallTimeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)
	defer s.Close()

	bridgeAddr, stopBridge := startBridge(t, ctx, s)
	defer stopBridge()
	bridged := dialFrontend(t, ctx, bridgeAddr)

	started := time.Now()
	_, err = callEcho(ctx, bridged, "slow_echo", "late")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call timed out")
	assert.Less(t, time.Since(started), 2*time.Second)
}

func TestService_CloseResolvesPending(t *testing.T) {
	ctx := context.Background()
	backendAddr, stopBackend := startBackend(t, ctx)
	defer stopBackend()

	s, err := proxy.New(ctx, &proxy.Options{URL: "http://" + backendAddr + "/mcp"})
	require.NoError(t, err)

	bridgeAddr, stopBridge := startBridge(t, ctx, s)
	defer stopBridge()
	bridged := dialFrontend(t, ctx, bridgeAddr)

	callErr := make(chan error, 1)
	go func() {
		_, err := callEcho(ctx, bridged, "slow_echo", "interrupted")
		callErr <- err
	}()
	require.Eventually(t, func() bool { return s.Pending() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Close())
	select {
	case err := <-callErr:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection closed")
	case <-time.After(2 * time.Second):
		t.Fatal("pending call not resolved by close")
	}
	assert.Equal(t, 0, s.Pending())
}

func TestService_ConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	backendAddr, stopBackend := startBackend(t, ctx)
	defer stopBackend()

	s, err := proxy.New(ctx, &proxy.Options{URL: "http://" + backendAddr + "/mcp"})
	require.NoError(t, err)
	defer s.Close()

	bridgeAddr, stopBridge := startBridge(t, ctx, s)
	defer stopBridge()
	bridged := dialFrontend(t, ctx, bridgeAddr)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := fmt.Sprintf("payload-%d", i)
			out, err := callEcho(ctx, bridged, "echo", text)
			if err != nil {
				errs[i] = err
				return
			}
			// Answers must land on the call that asked.
			if !assert.Contains(t, out, text) {
				errs[i] = fmt.Errorf("mismatched answer: %s", out)
			}
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

// A spawned stdio child re-exposed over HTTP serves the same tool set a
// direct stdio session sees.
func TestService_StdioBackendBridged(t *testing.T) {
	ctx := context.Background()

	direct, err := stdioclient.New(os.Args[0], stdioclient.WithArguments("-stdio-backend"))
	require.NoError(t, err)
	if closer, ok := direct.(io.Closer); ok {
		defer closer.Close()
	}
	directClient := client.New("frontend", "0.1", direct)
	_, err = directClient.Initialize(ctx)
	require.NoError(t, err)
	directTools, err := directClient.ListTools(ctx, nil)
	require.NoError(t, err)

	s, err := proxy.New(ctx, &proxy.Options{Command: os.Args[0], Args: []string{"-stdio-backend"}})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "stdio-backend", s.Snapshot().Server.Name)

	bridgeAddr, stopBridge := startBridge(t, ctx, s)
	defer stopBridge()
	bridged := dialFrontend(t, ctx, bridgeAddr)

	bridgedTools, err := bridged.ListTools(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, directTools.Tools, bridgedTools.Tools)

	out, err := callEcho(ctx, bridged, "echo", "over two hops")
	require.NoError(t, err)
	assert.Contains(t, out, "over two hops")
}

// elicitingBackendHandler is a raw backend whose only tool asks the calling
// client for input before answering.
type elicitingBackendHandler struct {
	tr transport.Transport
}

func (h *elicitingBackendHandler) Serve(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	response.Id = request.Id
	response.Jsonrpc = request.Jsonrpc
	switch request.Method {
	case schema.MethodInitialize:
		result := &schema.InitializeResult{
			ServerInfo:      schema.Implementation{Name: "asking-backend", Version: "1.0"},
			ProtocolVersion: schema.LatestProtocolVersion,
			Capabilities:    schema.ServerCapabilities{Tools: &schema.ServerCapabilitiesTools{}},
		}
		response.Result, _ = json.Marshal(result)
	case schema.MethodToolsList:
		result := &schema.ListToolsResult{Tools: []schema.Tool{
			{Name: "ask", InputSchema: schema.ToolInputSchema{Type: "object"}},
		}}
		response.Result, _ = json.Marshal(result)
	case schema.MethodToolsCall:
		params := &schema.ElicitRequestParams{
			ElicitationId: "ask-1",
			Message:       "Provide an account id",
			Mode:          string(schema.ElicitRequestParamsModeForm),
			RequestedSchema: schema.ElicitRequestParamsRequestedSchema{
				Type:       "object",
				Properties: map[string]any{"account": map[string]any{"type": "string"}},
				Required:   []string{"account"},
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

func (h *elicitingBackendHandler) OnNotification(ctx context.Context, _ *jsonrpc.Notification) {}

// answeringPeer accepts every elicitation with a fixed account id.
type answeringPeer struct {
	last int
}

func (p *answeringPeer) Notify(ctx context.Context, n *jsonrpc.Notification) error { return nil }
func (p *answeringPeer) NextRequestID() jsonrpc.RequestId                          { p.last++; return p.last }
func (p *answeringPeer) LastRequestID() jsonrpc.RequestId                          { return p.last }

func (p *answeringPeer) Implements(method string) bool {
	return method == schema.MethodElicitationCreate
}

func (p *answeringPeer) Init(ctx context.Context, _ *schema.ClientCapabilities)      {}
func (p *answeringPeer) OnNotification(ctx context.Context, _ *jsonrpc.Notification) {}

func (p *answeringPeer) ListRoots(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ListRootsRequest]) (*schema.ListRootsResult, *jsonrpc.Error) {
	return &schema.ListRootsResult{}, nil
}

func (p *answeringPeer) CreateMessage(ctx context.Context, request *jsonrpc.TypedRequest[*schema.CreateMessageRequest]) (*schema.CreateMessageResult, *jsonrpc.Error) {
	return &schema.CreateMessageResult{}, nil
}

func (p *answeringPeer) Elicit(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ElicitRequest]) (*schema.ElicitResult, *jsonrpc.Error) {
	return &schema.ElicitResult{
		Action:  schema.ElicitResultActionAccept,
		Content: map[string]any{"account": "acct-7781"},
	}, nil
}

var _ protoclient.Handler = (*answeringPeer)(nil)

// A backend-initiated elicitation crosses both hops: backend to bridge over
// the backend transport, bridge to frontend over the serving transport.
func TestService_BackchannelElicitation(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.Handle("/mcp", streamableserver.New(func(ctx context.Context, tr transport.Transport) transport.Handler {
		return &elicitingBackendHandler{tr: tr}
	}))
	backendSrv := &http.Server{Handler: mux}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = backendSrv.Serve(ln) }()
	defer backendSrv.Close()

	s, err := proxy.New(ctx, &proxy.Options{URL: "http://" + ln.Addr().String() + "/mcp"})
	require.NoError(t, err)
	defer s.Close()

	bridgeAddr, stopBridge := startBridge(t, ctx, s)
	defer stopBridge()

	peer := &answeringPeer{}
	aTransport, err := streamableclient.New(ctx, "http://"+bridgeAddr+"/mcp",
		streamableclient.WithHandler(client.NewHandler(peer)))
	require.NoError(t, err)
	c := client.New("frontend", "0.1", aTransport, client.WithClientHandler(peer))
	_, err = c.Initialize(ctx)
	require.NoError(t, err)

	params, err := schema.NewCallToolRequestParams[struct{}]("ask", struct{}{})
	require.NoError(t, err)
	res, err := c.CallTool(ctx, params)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	payload, err := json.Marshal(res.Content[0])
	require.NoError(t, err)
	assert.Contains(t, string(payload), "acct-7781")
}
