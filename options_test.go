package mcpkit

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions_Init(t *testing.T) {
	testCases := []struct {
		description string
		options     ClientOptions
		expectType  string
	}{
		{
			description: "command implies stdio",
			options:     ClientOptions{Transport: ClientTransport{ClientTransportStdio: ClientTransportStdio{Command: "server"}}},
			expectType:  TransportStdio,
		},
		{
			description: "url implies http",
			options:     ClientOptions{Transport: ClientTransport{ClientTransportHTTP: ClientTransportHTTP{URL: "http://localhost:4981/mcp"}}},
			expectType:  TransportHTTP,
		},
		{
			description: "explicit type wins",
			options: ClientOptions{Transport: ClientTransport{
				Type:                TransportSSE,
				ClientTransportHTTP: ClientTransportHTTP{URL: "http://localhost:4981/sse"},
			}},
			expectType: TransportSSE,
		},
	}
	for _, testCase := range testCases {
		options := testCase.options
		options.Init()
		assert.Equal(t, testCase.expectType, options.Transport.Type, testCase.description)
		assert.NotEmpty(t, options.Name, testCase.description)
		assert.NotEmpty(t, options.Version, testCase.description)
	}
}

func TestClientOptions_Validate(t *testing.T) {
	testCases := []struct {
		description string
		options     ClientOptions
		expectErr   string
	}{
		{
			description: "stdio without command",
			options:     ClientOptions{Transport: ClientTransport{Type: TransportStdio}},
			expectErr:   "command is required",
		},
		{
			description: "streamable without url",
			options:     ClientOptions{Transport: ClientTransport{Type: TransportStreamable}},
			expectErr:   "URL is required",
		},
		{
			description: "nothing configured",
			options:     ClientOptions{},
			expectErr:   "no transport configured",
		},
		{
			description: "unknown type",
			options:     ClientOptions{Transport: ClientTransport{Type: "quic"}},
			expectErr:   "unsupported transport type",
		},
		{
			description: "valid stdio",
			options:     ClientOptions{Transport: ClientTransport{Type: TransportStdio, ClientTransportStdio: ClientTransportStdio{Command: "server"}}},
		},
	}
	for _, testCase := range testCases {
		err := testCase.options.Validate()
		if testCase.expectErr == "" {
			assert.NoError(t, err, testCase.description)
			continue
		}
		if assert.Error(t, err, testCase.description) {
			assert.Contains(t, err.Error(), testCase.expectErr, testCase.description)
		}
	}
}

func TestStdioCommand_EnvWrapper(t *testing.T) {
	plain := ClientTransportStdio{Command: "server", Arguments: []string{"--fast"}}
	command, args := plain.stdioCommand()
	assert.Equal(t, "server", command)
	assert.Equal(t, []string{"--fast"}, plain.Arguments)
	assert.Equal(t, []string{"--fast"}, args)

	wrapped := ClientTransportStdio{
		Command:   "server",
		Arguments: []string{"--fast"},
		Env:       map[string]string{"B_KEY": "2", "A_KEY": "1"},
		Dir:       "/srv/data",
	}
	command, args = wrapped.stdioCommand()
	assert.Equal(t, "env", command)
	assert.Equal(t, []string{"-C", "/srv/data", "A_KEY=1", "B_KEY=2", "server", "--fast"}, args)
}

func TestWithHeaders_StampsEveryRequest(t *testing.T) {
	var seen http.Header
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
	}))
	defer backend.Close()

	httpClient := withHeaders(nil, map[string]string{"X-Tenant": "acme"})
	response, err := httpClient.Get(backend.URL)
	require.NoError(t, err)
	_ = response.Body.Close()
	assert.Equal(t, "acme", seen.Get("X-Tenant"))
}

func TestClientAuth_TokenStoreSelection(t *testing.T) {
	dir := t.TempDir()

	memory := &ClientAuth{}
	aStore, err := memory.tokenStore(nil)
	require.NoError(t, err)
	require.NotNil(t, aStore)

	file := &ClientAuth{TokenStore: filepath.Join(dir, "tokens.json")}
	aStore, err = file.tokenStore(nil)
	require.NoError(t, err)
	require.NotNil(t, aStore)

	sqlite := &ClientAuth{TokenStore: filepath.Join(dir, "tokens.db")}
	aStore, err = sqlite.tokenStore(nil)
	require.NoError(t, err)
	require.NotNil(t, aStore)
}
