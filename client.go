package mcpkit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/jsonrpc/transport/client/http/sse"
	"github.com/viant/jsonrpc/transport/client/http/streamable"
	"github.com/viant/jsonrpc/transport/client/stdio"

	"github.com/viant/scy/auth/authorizer"
	"github.com/viant/scy/auth/flow"

	"github.com/viant/mcpkit/client"
	"github.com/viant/mcpkit/client/auth"
	"github.com/viant/mcpkit/client/auth/store"
	authtransport "github.com/viant/mcpkit/client/auth/transport"

	"github.com/viant/mcp-protocol/authorization"
	"github.com/viant/mcp-protocol/oauth2/meta"
	"github.com/viant/mcp-protocol/schema"

	pclient "github.com/viant/mcp-protocol/client"
)

// Transport kinds accepted by ClientTransport.Type. TransportHTTP probes
// the endpoint and picks streamable HTTP or SSE, whichever the server
// answers.
const (
	TransportStdio      = "stdio"
	TransportSSE        = "sse"
	TransportStreamable = "streamable"
	TransportHTTP       = "http"
)

// ClientOptions configures a backend MCP client session.
type ClientOptions struct {
	Name            string          `yaml:"name" json:"name,omitempty" short:"n" long:"name" description:"client name"`
	Version         string          `yaml:"version,omitempty" json:"version,omitempty" long:"client-version" description:"client version"`
	ProtocolVersion string          `yaml:"protocol,omitempty" json:"protocol,omitempty" short:"p" long:"protocol" description:"mcp protocol version"`
	Transport       ClientTransport `yaml:"transport,omitempty" json:"transport,omitempty"`
	Auth            *ClientAuth     `yaml:"auth,omitempty" json:"auth,omitempty"`

	// cachedAuthRT and cachedHTTPClient keep the auth transport and its
	// token store alive across reconnects so acquired tokens carry over.
	cachedAuthRT     *authtransport.RoundTripper
	cachedHTTPClient *http.Client

	// CookieJar, if set, is attached to the underlying HTTP client so
	// cookie-bound servers keep their session across reconnects.
	CookieJar http.CookieJar `yaml:"-" json:"-"`
}

// ClientTransport selects the wire transport; exactly one variant applies.
type ClientTransport struct {
	Type                 string `yaml:"type" json:"type" short:"T" long:"transport-type" description:"transport type" choice:"stdio" choice:"sse" choice:"streamable" choice:"http"`
	ClientTransportStdio `yaml:",inline" json:",inline"`
	ClientTransportHTTP  `yaml:",inline" json:",inline"`
}

// ClientTransportStdio runs the server as a child process speaking
// JSON-RPC on its standard streams; stderr stays a log side channel.
// Extra environment and a working directory are applied through env(1)
// because the stdio transport spawns the child itself.
type ClientTransportStdio struct {
	Command   string            `yaml:"command,omitempty" json:"command,omitempty" short:"C" long:"command" description:"server command"`
	Arguments []string          `yaml:"arguments,omitempty" json:"arguments,omitempty" short:"A" long:"arguments" description:"server command arguments"`
	Env       map[string]string `yaml:"env,omitempty" json:"env,omitempty" long:"env" description:"extra child environment entry (key:value)"`
	Dir       string            `yaml:"dir,omitempty" json:"dir,omitempty" long:"dir" description:"child working directory"`
}

// ClientTransportHTTP connects to a running HTTP endpoint, spawning one
// locally first when Spawn is set.
type ClientTransportHTTP struct {
	URL     string            `yaml:"url,omitempty" json:"url,omitempty" short:"u" long:"url" description:"server URL"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty" long:"header" description:"extra HTTP header (key:value)"`
	Spawn   *SpawnOptions     `yaml:"spawn,omitempty" json:"spawn,omitempty"`
}

// ClientAuth configures OAuth2 authorization for HTTP transports.
type ClientAuth struct {
	OAuth2ConfigURL []string      `yaml:"oauth2ConfigURL,omitempty" json:"oauth2ConfigURL,omitempty" short:"c" long:"config" description:"oauth2 client config URL"`
	EncryptionKey   string        `yaml:"encryptionKey,omitempty" json:"encryptionKey,omitempty" short:"k" long:"key" description:"config encryption key"`
	UseIdToken      bool          `yaml:"useIdToken,omitempty" json:"useIdToken,omitempty" long:"id-token" description:"authorize with the ID token"`
	FlowTimeout     time.Duration `yaml:"flowTimeout,omitempty" json:"flowTimeout,omitempty" long:"flow-timeout" description:"interactive flow timeout"`

	// TokenStore selects the persistent token store: empty keeps tokens in
	// memory, a .db or .sqlite path selects SQLite, any other path a JSON
	// file snapshot.
	TokenStore string `yaml:"tokenStore,omitempty" json:"tokenStore,omitempty" long:"token-store" description:"token store path"`

	// Store overrides TokenStore with a caller-supplied implementation.
	Store store.Store `yaml:"-" json:"-"`
}

// Init fills defaults and derives the transport type from the populated
// variant when none was named.
func (c *ClientOptions) Init() {
	if c.Name == "" {
		c.Name = "mcpkit"
	}
	if c.Version == "" {
		c.Version = "0.1"
	}
	if c.Transport.Type == "" {
		switch {
		case c.Transport.Command != "":
			c.Transport.Type = TransportStdio
		case c.Transport.URL != "":
			c.Transport.Type = TransportHTTP
		}
	}
}

// Validate rejects configurations that name no usable transport.
func (c *ClientOptions) Validate() error {
	switch c.Transport.Type {
	case TransportStdio:
		if c.Transport.Command == "" {
			return fmt.Errorf("command is required for stdio transport")
		}
	case TransportSSE, TransportStreamable, TransportHTTP:
		if c.Transport.URL == "" {
			return fmt.Errorf("URL is required for %s transport", c.Transport.Type)
		}
	case "":
		return fmt.Errorf("no transport configured")
	default:
		return fmt.Errorf("unsupported transport type: %s", c.Transport.Type)
	}
	return nil
}

// getTransport dials the configured variant, returning the transport and
// the auth round tripper when one was built.
func (c *ClientOptions) getTransport(ctx context.Context, handler pclient.Handler) (transport.Transport, *authtransport.RoundTripper, error) {
	var httpClient *http.Client
	var authRT *authtransport.RoundTripper
	if c.Auth != nil && len(c.Auth.OAuth2ConfigURL) > 0 {
		var err error
		if httpClient, err = c.getOAuthHTTPClient(ctx); err != nil {
			return nil, nil, err
		}
		authRT = c.cachedAuthRT
	}
	if len(c.Transport.Headers) > 0 {
		httpClient = withHeaders(httpClient, c.Transport.Headers)
	}

	var clientHandler *client.Handler
	if handler != nil {
		clientHandler = client.NewHandler(handler)
	}
	switch c.Transport.Type {
	case TransportStdio:
		command, args := c.Transport.stdioCommand()
		opts := []stdio.Option{stdio.WithArguments(args...)}
		if clientHandler != nil {
			opts = append(opts, stdio.WithHandler(clientHandler))
		}
		ret, err := stdio.New(command, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create stdio transport: %w", err)
		}
		return ret, authRT, nil
	case TransportSSE:
		return c.sseTransport(ctx, clientHandler, httpClient, authRT)
	case TransportStreamable:
		return c.streamableTransport(ctx, clientHandler, httpClient, authRT)
	case TransportHTTP:
		if detectStreamable(ctx, c.Transport.URL, c.Name, httpClient) {
			return c.streamableTransport(ctx, clientHandler, httpClient, authRT)
		}
		return c.sseTransport(ctx, clientHandler, httpClient, authRT)
	default:
		return nil, authRT, fmt.Errorf("no transport configured")
	}
}

func (c *ClientOptions) sseTransport(ctx context.Context, handler *client.Handler, httpClient *http.Client, authRT *authtransport.RoundTripper) (transport.Transport, *authtransport.RoundTripper, error) {
	opts := []sse.Option{}
	if httpClient != nil {
		opts = append(opts, sse.WithHttpClient(httpClient), sse.WithMessageHttpClient(httpClient))
	}
	if handler != nil {
		opts = append(opts, sse.WithHandler(handler))
	}
	ret, err := sse.New(ctx, c.Transport.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create SSE transport: %w", err)
	}
	return ret, authRT, nil
}

func (c *ClientOptions) streamableTransport(ctx context.Context, handler *client.Handler, httpClient *http.Client, authRT *authtransport.RoundTripper) (transport.Transport, *authtransport.RoundTripper, error) {
	opts := []streamable.Option{}
	if httpClient != nil {
		opts = append(opts, streamable.WithHTTPClient(httpClient))
	}
	if handler != nil {
		opts = append(opts, streamable.WithHandler(handler))
	}
	ret, err := streamable.New(ctx, c.Transport.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create streamable transport: %w", err)
	}
	return ret, authRT, nil
}

// stdioCommand resolves the child invocation, wrapping it in env(1) when
// extra environment entries or a working directory are configured.
func (t *ClientTransportStdio) stdioCommand() (string, []string) {
	if len(t.Env) == 0 && t.Dir == "" {
		return t.Command, t.Arguments
	}
	args := make([]string, 0, len(t.Env)+len(t.Arguments)+3)
	if t.Dir != "" {
		args = append(args, "-C", t.Dir)
	}
	keys := make([]string, 0, len(t.Env))
	for key := range t.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		args = append(args, key+"="+t.Env[key])
	}
	args = append(args, t.Command)
	args = append(args, t.Arguments...)
	return "env", args
}

// getOAuthHTTPClient builds an authenticating HTTP client, loading each
// configured OAuth2 client config in order. The round tripper is cached so
// the token store survives reconnects.
func (c *ClientOptions) getOAuthHTTPClient(ctx context.Context) (*http.Client, error) {
	if c.cachedHTTPClient != nil {
		return c.cachedHTTPClient, nil
	}
	var errs []error
	var memOptions []store.MemoryStoreOption
	for _, raw := range c.Auth.OAuth2ConfigURL {
		configURL := raw
		if c.Auth.EncryptionKey != "" {
			configURL += "|" + c.Auth.EncryptionKey
		}
		oauthConfig := &authorizer.OAuthConfig{ConfigURL: configURL}
		if err := authorizer.New().EnsureConfig(ctx, oauthConfig); err != nil {
			errs = append(errs, fmt.Errorf("failed to load oauth2 config %q: %w", raw, err))
			continue
		}
		memOptions = append(memOptions, store.WithClientConfig(oauthConfig.Config))
	}
	if len(memOptions) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	authStore, err := c.Auth.tokenStore(memOptions)
	if err != nil {
		return nil, err
	}
	transportOpts := []authtransport.Option{
		authtransport.WithStore(authStore),
		authtransport.WithAuthFlow(flow.NewBrowserFlow()),
	}
	if c.Auth.FlowTimeout > 0 {
		transportOpts = append(transportOpts, authtransport.WithFlowTimeout(c.Auth.FlowTimeout))
	}
	if c.CookieJar != nil {
		transportOpts = append(transportOpts, authtransport.WithCookieJar(c.CookieJar))
	}
	if c.Auth.UseIdToken {
		transportOpts = append(transportOpts, authtransport.WithGlobalResource(&authorization.Authorization{
			UseIdToken:                true,
			ProtectedResourceMetadata: &meta.ProtectedResourceMetadata{AuthorizationServers: []string{}},
		}))
	}
	rt, err := authtransport.New(transportOpts...)
	if err != nil {
		return nil, err
	}
	c.cachedAuthRT = rt
	c.cachedHTTPClient = &http.Client{Transport: rt, Jar: c.CookieJar}
	return c.cachedHTTPClient, nil
}

// tokenStore picks the configured store backend; the path extension
// selects SQLite over the JSON file snapshot.
func (a *ClientAuth) tokenStore(memOptions []store.MemoryStoreOption) (store.Store, error) {
	if a.Store != nil {
		return a.Store, nil
	}
	switch {
	case a.TokenStore == "":
		return store.NewMemoryStore(memOptions...), nil
	case strings.HasSuffix(a.TokenStore, ".db") || strings.HasSuffix(a.TokenStore, ".sqlite"):
		ret, err := store.NewSQLStore(a.TokenStore, memOptions...)
		if err != nil {
			return nil, err
		}
		return ret, nil
	default:
		ret, err := store.NewFileStore(a.TokenStore, memOptions...)
		if err != nil {
			return nil, err
		}
		return ret, nil
	}
}

// AuthStore exposes the token store held by the auth transport so callers
// can persist tokens across sessions.
func (c *ClientOptions) AuthStore() store.Store {
	if c.Auth != nil && c.Auth.Store != nil {
		return c.Auth.Store
	}
	if c.cachedAuthRT == nil {
		return nil
	}
	return c.cachedAuthRT.Store()
}

// Options derives client options from the configuration.
func (c *ClientOptions) Options(authRT *authtransport.RoundTripper) []client.Option {
	var result []client.Option
	if c.ProtocolVersion != "" {
		result = append(result, client.WithProtocolVersion(c.ProtocolVersion))
	}
	if authRT != nil {
		result = append(result, client.WithAuthInterceptor(auth.NewAuthorizer(authRT)))
	}
	return result
}

// headerRoundTripper stamps fixed headers on every outgoing request.
type headerRoundTripper struct {
	base    http.RoundTripper
	headers map[string]string
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for key, value := range h.headers {
		clone.Header.Set(key, value)
	}
	base := h.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

func withHeaders(base *http.Client, headers map[string]string) *http.Client {
	ret := &http.Client{}
	if base != nil {
		ret = &http.Client{Transport: base.Transport, Jar: base.Jar, Timeout: base.Timeout}
	}
	ret.Transport = &headerRoundTripper{base: ret.Transport, headers: headers}
	return ret
}

// detectStreamable probes the endpoint with an initialize POST; servers
// speaking streamable HTTP answer it directly, SSE servers do not.
func detectStreamable(ctx context.Context, endpoint, name string, httpClient *http.Client) bool {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	probe, err := jsonrpc.NewRequest(schema.MethodInitialize, &schema.InitializeRequestParams{
		ClientInfo:      *schema.NewImplementation(name, "1"),
		ProtocolVersion: schema.LatestProtocolVersion,
	})
	if err != nil {
		return false
	}
	probe.Id = 1
	payload, err := json.Marshal(probe)
	if err != nil {
		return false
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return false
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json, text/event-stream")
	request.Header.Set("MCP-Protocol-Version", schema.LatestProtocolVersion)
	response, err := httpClient.Do(request)
	if err != nil {
		return false
	}
	_ = response.Body.Close()
	return response.StatusCode == http.StatusOK
}
