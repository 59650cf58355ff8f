package example

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/mcpkit"
	"github.com/viant/mcpkit/search"
)

func startCurrencyServer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	srv, err := mcpkit.NewServer(NewCurrencyHandler(ctx), &mcpkit.ServerOptions{
		Name:         "currency-server",
		Version:      "1.0",
		Instructions: "Convert amounts between major currencies.",
		Transport:    &mcpkit.ServerTransport{Type: "streamable"},
	})
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	httpSrv := srv.HTTP(ctx, ln.Addr().String())
	go func() { _ = httpSrv.Serve(ln) }()
	return "http://" + ln.Addr().String() + "/mcp", func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}
}

func connectCurrency(t *testing.T, ctx context.Context, url string) *mcpkit.Session {
	t.Helper()
	session, err := mcpkit.Connect(ctx, nil, &mcpkit.ClientOptions{
		Name: "currency-demo",
		Transport: mcpkit.ClientTransport{
			Type:                mcpkit.TransportStreamable,
			ClientTransportHTTP: mcpkit.ClientTransportHTTP{URL: url},
		},
	})
	require.NoError(t, err)
	return session
}

func TestCurrency_Convert(t *testing.T) {
	ctx := context.Background()
	url, shutdown := startCurrencyServer(t, ctx)
	defer shutdown()

	session := connectCurrency(t, ctx, url)
	defer session.Close()
	assert.Equal(t, "currency-server", session.ServerInfo().Name)

	result, err := session.Client().CallTool(ctx, &schema.CallToolRequestParams{
		Name:      "convert_currency",
		Arguments: map[string]interface{}{"amount": 10.0, "from": "EUR", "to": "USD"},
	})
	require.NoError(t, err)
	require.Nil(t, result.IsError)
	require.NotNil(t, result.StructuredContent)
	assert.InDelta(t, 10.9, result.StructuredContent["amount"], 1e-9)
	assert.InDelta(t, 1.09, result.StructuredContent["rate"], 1e-9)

	// an unsupported currency reports a tool error, not a protocol error
	result, err = session.Client().CallTool(ctx, &schema.CallToolRequestParams{
		Name:      "convert_currency",
		Arguments: map[string]interface{}{"amount": 1.0, "from": "DOGE", "to": "USD"},
	})
	require.NoError(t, err)
	require.NotNil(t, result.IsError)
	assert.True(t, *result.IsError)
	payload, err := json.Marshal(result.Content)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "unsupported currency")
}

func TestCurrency_SnapshotAndSearch(t *testing.T) {
	ctx := context.Background()
	url, shutdown := startCurrencyServer(t, ctx)
	defer shutdown()

	session := connectCurrency(t, ctx, url)
	defer session.Close()

	model, err := session.Capabilities(ctx)
	require.NoError(t, err)
	assert.Len(t, model.Tools, 2)
	tool, ok := model.Tool("convert_currency")
	require.True(t, ok)
	assert.Equal(t, "convert_currency", tool.Name)

	matches, err := search.Search(search.Query{Pattern: "currency", IgnoreCase: true}, model)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	sections := map[string]bool{}
	for _, match := range matches {
		sections[match.Path.Section()] = true
	}
	assert.True(t, sections["tools"])

	// input schemas are searchable too: both tools declare an object schema
	matches, err = search.Search(search.Query{
		Pattern: "amount",
		Focus:   search.Focus{Input: true},
		Tool:    "convert_currency",
	}, model)
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
}

// Example_quickstart wires the demo server and a client together; it is a
// template for real deployments where the server runs as its own process.
func Example_quickstart() {
	ctx := context.Background()
	srv, err := mcpkit.NewServer(NewCurrencyHandler(ctx), &mcpkit.ServerOptions{
		Name:      "currency-server",
		Version:   "1.0",
		Transport: &mcpkit.ServerTransport{Type: "streamable"},
	})
	if err != nil {
		log.Fatal(err)
	}
	go func() {
		log.Fatal(srv.HTTP(ctx, ":4981").ListenAndServe())
	}()
	for i := 0; i < 50; i++ { // wait for the listener
		if _, err := http.Get("http://localhost:4981/mcp"); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	session, err := mcpkit.Connect(ctx, nil, &mcpkit.ClientOptions{
		Transport: mcpkit.ClientTransport{
			ClientTransportHTTP: mcpkit.ClientTransportHTTP{URL: "http://localhost:4981/mcp"},
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer session.Close()

	result, err := session.Client().CallTool(ctx, &schema.CallToolRequestParams{
		Name:      "convert_currency",
		Arguments: map[string]interface{}{"amount": 100.0, "from": "USD", "to": "EUR"},
	})
	if err != nil {
		log.Fatal(err)
	}
	data, _ := json.Marshal(result.Content)
	log.Printf("converted: %s", data)
}
