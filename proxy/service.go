package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/afs/url"
	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	sse "github.com/viant/jsonrpc/transport/client/http/sse"
	streamable "github.com/viant/jsonrpc/transport/client/http/streamable"
	stdio "github.com/viant/jsonrpc/transport/client/stdio"
	stdiosrv "github.com/viant/jsonrpc/transport/server/stdio"
	"github.com/viant/mcp-protocol/authorization"
	protoclient "github.com/viant/mcp-protocol/client"
	protologger "github.com/viant/mcp-protocol/logger"
	"github.com/viant/mcp-protocol/oauth2/meta"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
	"github.com/viant/mcpkit/capability"
	"github.com/viant/mcpkit/client"
	"github.com/viant/mcpkit/client/auth/store"
	authtransport "github.com/viant/mcpkit/client/auth/transport"
	"github.com/viant/mcpkit/internal/collection"
	"github.com/viant/mcpkit/server"
	"github.com/viant/scy/auth/authorizer"
	"github.com/viant/scy/auth/flow"
	"golang.org/x/sync/errgroup"
)

// Service bridges one backend MCP server to frontend clients.
type Service struct {
	options *Options
	logger  *slog.Logger

	state atomic.Int32

	backend     transport.Transport
	backchannel *backchannel
	elicitor    *formElicitor
	session     client.Interface
	handshake   *schema.InitializeResult
	snapshot    *capability.Model

	pending     *collection.SyncMap[string, *pendingCall]
	callTimeout time.Duration

	mu           sync.Mutex
	frontendHTTP *http.Server

	closeOnce sync.Once
	done      chan struct{}
	err       error
}

// New connects to the backend, runs the handshake and snapshots its
// capabilities. A handshake failure is fatal; retries belong to the caller.
func New(ctx context.Context, options *Options) (*Service, error) {
	if options == nil {
		options = &Options{}
	}
	options.init()
	if err := options.validate(); err != nil {
		return nil, err
	}
	s := &Service{
		options:     options,
		logger:      slog.Default().With("component", "proxy"),
		backchannel: &backchannel{},
		pending:     collection.NewSyncMap[string, *pendingCall](),
		callTimeout: options.CallTimeout,
		done:        make(chan struct{}),
	}
	s.state.Store(int32(StateIdle))
	if options.ElicitFallback {
		s.elicitor = newFormElicitor(options.ElicitListenAddr, options.ElicitOpenBrowser, s.logger)
	}
	if err := s.connect(ctx); err != nil {
		s.state.Store(int32(StateClosed))
		return nil, err
	}
	return s, nil
}

// State reports the current lifecycle phase.
func (s *Service) State() State {
	return State(s.state.Load())
}

func (s *Service) closing() bool {
	state := s.State()
	return state == StateShuttingDown || state == StateClosed
}

// Snapshot returns a copy of the capability model taken at connect time.
func (s *Service) Snapshot() *capability.Model {
	return s.snapshot.Clone()
}

// Session exposes the backend session, e.g. for capability refresh.
func (s *Service) Session() client.Interface {
	return s.session
}

func (s *Service) connect(ctx context.Context) error {
	s.state.Store(int32(StateBackendConnecting))
	backend, err := s.dial(ctx)
	if err != nil {
		return err
	}
	s.backend = backend
	// The bridge advertises the full backchannel: whether a given frontend
	// honors it is decided per connection at its own initialize.
	aClient := client.New(s.options.Name, "0.1", backend,
		client.WithCapabilities(schema.ClientCapabilities{
			Roots:       &schema.ClientCapabilitiesRoots{},
			Sampling:    &schema.ClientCapabilitiesSampling{},
			Elicitation: &schema.ClientCapabilitiesElicitation{},
		}))
	handshake, err := aClient.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("backend handshake: %w", err)
	}
	s.session = aClient
	s.handshake = handshake
	snapshot, err := capability.Fetch(ctx, s.session,
		capability.WithServerInfo(handshake.ServerInfo, handshake.ProtocolVersion, handshake.Instructions))
	if err != nil {
		s.logger.Warn("capability snapshot failed, continuing with empty model", "error", err)
		snapshot = &capability.Model{Server: handshake.ServerInfo, Protocol: handshake.ProtocolVersion}
	}
	s.snapshot = snapshot
	s.logger.Info("backend ready",
		"server", handshake.ServerInfo.Name,
		"protocol", handshake.ProtocolVersion,
		"tools", len(snapshot.Tools))
	s.state.Store(int32(StateBackendReady))
	return nil
}

// dial builds the backend transport: a spawned stdio child, or an HTTP
// endpoint probed for streamable vs SSE.
func (s *Service) dial(ctx context.Context) (transport.Transport, error) {
	if s.options.Command != "" {
		options := []stdio.Option{stdio.WithHandler(s.backchannel)}
		if len(s.options.Args) > 0 {
			options = append(options, stdio.WithArguments(s.options.Args...))
		}
		return stdio.New(s.options.Command, options...)
	}
	httpClient, err := s.buildHTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	if isStreamable(ctx, s.options.URL, s.options.Name, httpClient) {
		options := []streamable.Option{streamable.WithHandler(s.backchannel)}
		if httpClient != nil {
			options = append(options, streamable.WithHTTPClient(httpClient))
		}
		return streamable.New(ctx, s.options.URL, options...)
	}
	options := []sse.Option{sse.WithHandler(s.backchannel)}
	if httpClient != nil {
		options = append(options, sse.WithHttpClient(httpClient), sse.WithMessageHttpClient(httpClient))
	}
	return sse.New(ctx, s.options.URL, options...)
}

// buildHTTPClient returns an authenticating HTTP client when OAuth is
// configured, nil otherwise.
func (s *Service) buildHTTPClient(ctx context.Context) (*http.Client, error) {
	if s.options.OAuth2ConfigURL == "" {
		return nil, nil
	}
	configURL := s.options.OAuth2ConfigURL
	if s.options.EncryptionKey != "" {
		configURL += "|" + s.options.EncryptionKey
	}
	auth := authorizer.New()
	oAuthConfig := &authorizer.OAuthConfig{ConfigURL: configURL}
	if err := auth.EnsureConfig(ctx, oAuthConfig); err != nil {
		return nil, err
	}
	aStore := store.NewMemoryStore(store.WithClientConfig(oAuthConfig.Config))
	issuer, _ := url.Base(oAuthConfig.Config.Endpoint.AuthURL, "https")
	options := []authtransport.Option{
		authtransport.WithStore(aStore),
		authtransport.WithAuthFlow(flow.NewBrowserFlow()),
		authtransport.WithGlobalResource(&authorization.Authorization{
			UseIdToken: s.options.UseIdToken,
			ProtectedResourceMetadata: &meta.ProtectedResourceMetadata{
				AuthorizationServers: []string{issuer},
			},
		}),
	}
	if s.options.FlowTimeout > 0 {
		options = append(options, authtransport.WithFlowTimeout(s.options.FlowTimeout))
	}
	roundTripper, err := authtransport.New(options...)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: roundTripper}, nil
}

// isStreamable probes the endpoint with a POST initialize; streamable servers
// answer 200 where SSE-only servers answer 404 or 405.
func isStreamable(ctx context.Context, endpoint, name string, httpClient *http.Client) bool {
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

// frontend assembles the server whose handler relays to the backend session.
// Each new connection rebinds the backend backchannel to itself.
func (s *Service) frontend() (*server.Server, error) {
	newHandler := func(ctx context.Context, notifier transport.Notifier, logger protologger.Logger, clientOps protoclient.Operations) (protoserver.Handler, error) {
		ops := clientOps
		if s.elicitor != nil {
			ops = &elicitOps{Operations: clientOps, fallback: s.elicitor}
		}
		s.backchannel.rebind(client.NewHandler(&frontendPeer{Operations: ops}))
		return &forwarder{service: s, clientOps: clientOps}, nil
	}
	return server.New(
		server.WithNewHandler(newHandler),
		server.WithImplementation(s.handshake.ServerInfo),
		server.WithProtocolVersion(s.handshake.ProtocolVersion),
	)
}

// HTTP returns a frontend HTTP server bridging to the backend. An empty addr
// falls back to the configured listen address.
func (s *Service) HTTP(ctx context.Context, addr string) (*http.Server, error) {
	if addr == "" {
		addr = s.options.ListenAddr
	}
	srv, err := s.frontend()
	if err != nil {
		return nil, err
	}
	return srv.HTTP(ctx, addr), nil
}

// Stdio returns a frontend stdio listener bridging to the backend.
func (s *Service) Stdio(ctx context.Context) (*stdiosrv.Server, error) {
	srv, err := s.frontend()
	if err != nil {
		return nil, err
	}
	return srv.Stdio(ctx), nil
}

// Serve exposes the bridge per the expose directive and blocks until the
// context ends, a listener fails, or Close is called.
func (s *Service) Serve(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateBackendReady), int32(StateServing)) {
		return fmt.Errorf("cannot serve in state %s", s.State())
	}
	group, groupCtx := errgroup.WithContext(ctx)
	switch s.options.Expose {
	case ExposeHTTP:
		httpSrv, err := s.HTTP(ctx, s.options.ListenAddr)
		if err != nil {
			return s.shutdown(err)
		}
		s.mu.Lock()
		s.frontendHTTP = httpSrv
		s.mu.Unlock()
		s.logger.Info("serving", "transport", "http", "addr", httpSrv.Addr)
		group.Go(func() error {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			select {
			case <-groupCtx.Done():
			case <-s.done:
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	case ExposeStdio:
		stdioSrv, err := s.Stdio(ctx)
		if err != nil {
			return s.shutdown(err)
		}
		s.logger.Info("serving", "transport", "stdio")
		group.Go(stdioSrv.ListenAndServe)
	}
	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return s.shutdown(err)
}

// Close releases both sides of the bridge: pending forwards resolve with
// ErrConnectionClosed, the frontend listener stops and the backend transport
// closes. Safe to call more than once.
func (s *Service) Close() error {
	return s.shutdown(nil)
}

func (s *Service) shutdown(cause error) error {
	s.closeOnce.Do(func() {
		s.err = cause
		s.state.Store(int32(StateShuttingDown))
		s.failPending()
		if s.elicitor != nil {
			s.elicitor.close()
		}
		s.mu.Lock()
		frontendHTTP := s.frontendHTTP
		s.mu.Unlock()
		if frontendHTTP != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = frontendHTTP.Shutdown(shutdownCtx)
			cancel()
		}
		if closer, ok := s.backend.(io.Closer); ok {
			_ = closer.Close()
		}
		s.state.Store(int32(StateClosed))
		s.logger.Info("closed")
		close(s.done)
	})
	return s.err
}

// Wait blocks until the bridge closes and returns the terminal error.
func (s *Service) Wait() error {
	<-s.done
	return s.err
}
