package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mcp-protocol/authorization"
	"github.com/viant/mcp-protocol/oauth2/meta"
	"github.com/viant/mcpkit/client/auth/mock"
	"github.com/viant/mcpkit/client/auth/store"
	"github.com/viant/mcpkit/client/auth/transport"
	"github.com/viant/scy/auth/flow"
	"golang.org/x/oauth2"
)

// stubFlow satisfies flow.AuthFlow without opening a browser.
type stubFlow struct {
	mu    sync.Mutex
	calls int
	token func(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error)
}

func (s *stubFlow) Token(ctx context.Context, config *oauth2.Config, options ...flow.Option) (*oauth2.Token, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.token(ctx, config)
}

func (s *stubFlow) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func seededStore(mockServer *mock.HTTPTestAuthorizationServer, options ...store.MemoryStoreOption) store.Store {
	options = append(options, store.WithClientConfig(mock.NewTestClient(mockServer.Issuer)))
	aStore := store.NewMemoryStore(options...)
	_ = aStore.AddAuthorizationServerMetadata(&meta.AuthorizationServerMetadata{
		Issuer:           mockServer.Issuer,
		JSONWebKeySetURI: mockServer.Issuer + "/jwks",
	})
	return aStore
}

func TestRoundTripper_PassesUnprotected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`ok`))
	}))
	defer server.Close()

	aFlow := &stubFlow{token: func(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
		t.Fatal("flow must not run for unprotected resources")
		return nil, nil
	}}
	rt, err := transport.New(transport.WithAuthFlow(aFlow))
	require.NoError(t, err)

	resp, err := (&http.Client{Transport: rt}).Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, aFlow.callCount())
}

func TestRoundTripper_InteractiveFlow(t *testing.T) {
	mockServer, err := mock.NewHTTPTestAuthorizationServer()
	require.NoError(t, err)
	defer mockServer.Close()

	aFlow := &stubFlow{token: func(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
		return &oauth2.Token{
			AccessToken:  "eyJmock_access",
			TokenType:    "Bearer",
			RefreshToken: "mock_refresh",
			Expiry:       time.Now().Add(time.Hour),
		}, nil
	}}
	aStore := seededStore(mockServer)
	rt, err := transport.New(transport.WithStore(aStore), transport.WithAuthFlow(aFlow))
	require.NoError(t, err)
	client := &http.Client{Transport: rt}

	resp, err := client.Get(mockServer.Issuer + "/resource")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, aFlow.callCount())

	token, ok := aStore.LookupToken(store.TokenKey{Issuer: mockServer.Issuer, Scopes: ""})
	require.True(t, ok)
	assert.Equal(t, "eyJmock_access", token.AccessToken)

	// cached token serves the replay; the flow must not run again
	resp, err = client.Get(mockServer.Issuer + "/resource")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, aFlow.callCount())
}

func TestRoundTripper_RefreshGrant(t *testing.T) {
	mockServer, err := mock.NewHTTPTestAuthorizationServer()
	require.NoError(t, err)
	defer mockServer.Close()

	expired := &oauth2.Token{
		AccessToken:  "eyJexpired",
		TokenType:    "Bearer",
		RefreshToken: "eyJrefresh",
		Expiry:       time.Now().Add(-time.Hour),
	}
	key := store.TokenKey{Issuer: mockServer.Issuer, Scopes: ""}
	aFlow := &stubFlow{token: func(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
		t.Fatal("refreshable token must not trigger the interactive flow")
		return nil, nil
	}}
	aStore := seededStore(mockServer, store.WithToken(key, expired))
	rt, err := transport.New(transport.WithStore(aStore), transport.WithAuthFlow(aFlow))
	require.NoError(t, err)

	resp, err := (&http.Client{Transport: rt}).Get(mockServer.Issuer + "/resource")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, aFlow.callCount())

	refreshed, ok := aStore.LookupToken(key)
	require.True(t, ok)
	assert.NotEqual(t, "eyJexpired", refreshed.AccessToken)
	assert.True(t, refreshed.Valid())
}

func TestRoundTripper_FlowTimeout(t *testing.T) {
	mockServer, err := mock.NewHTTPTestAuthorizationServer()
	require.NoError(t, err)
	defer mockServer.Close()

	aFlow := &stubFlow{token: func(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
		// simulate a user who never completes the browser consent
		time.Sleep(5 * time.Second)
		return nil, ctx.Err()
	}}
	rt, err := transport.New(
		transport.WithStore(seededStore(mockServer)),
		transport.WithAuthFlow(aFlow),
		transport.WithFlowTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = (&http.Client{Transport: rt}).Get(mockServer.Issuer + "/resource")
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrAuthTimeout)
}

func TestRoundTripper_NoClientConfig(t *testing.T) {
	mockServer, err := mock.NewHTTPTestAuthorizationServer()
	require.NoError(t, err)
	defer mockServer.Close()

	aStore := store.NewMemoryStore()
	_ = aStore.AddAuthorizationServerMetadata(&meta.AuthorizationServerMetadata{Issuer: mockServer.Issuer})
	rt, err := transport.New(transport.WithStore(aStore))
	require.NoError(t, err)

	_, err = (&http.Client{Transport: rt}).Get(mockServer.Issuer + "/resource")
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrOAuthNotConfigured)
}

func TestRoundTripper_IdTokenExchange(t *testing.T) {
	mockServer, err := mock.NewHTTPTestAuthorizationServer()
	require.NoError(t, err)
	defer mockServer.Close()

	// exchange the fixed authorization code so the token carries a signed id_token
	aFlow := &stubFlow{token: func(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
		return config.Exchange(ctx, "test_authorization_code")
	}}
	rt, err := transport.New(
		transport.WithStore(seededStore(mockServer)),
		transport.WithAuthFlow(aFlow),
		transport.WithGlobalResource(&authorization.Authorization{
			UseIdToken: true,
			ProtectedResourceMetadata: &meta.ProtectedResourceMetadata{
				AuthorizationServers: []string{mockServer.Issuer},
			},
		}))
	require.NoError(t, err)

	resp, err := (&http.Client{Transport: rt}).Get(mockServer.Issuer + "/resource")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, aFlow.callCount())
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "This is a protected resource", body["message"])
}

func TestRoundTripper_CookieJarPersistence(t *testing.T) {
	mockServer, err := mock.NewHTTPTestAuthorizationServer()
	require.NoError(t, err)
	defer mockServer.Close()
	mockServer.ResourceHandler = func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "sso", Path: "/"})
			w.Header().Set("WWW-Authenticate", `Bearer resource_metadata="`+mockServer.Issuer+`/resource-metadata"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}

	jarPath := filepath.Join(t.TempDir(), "cookies.json")
	jar, err := transport.NewFileJar(jarPath)
	require.NoError(t, err)

	aFlow := &stubFlow{token: func(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "eyJmock", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}, nil
	}}
	rt, err := transport.New(
		transport.WithStore(seededStore(mockServer)),
		transport.WithAuthFlow(aFlow),
		transport.WithCookieJar(jar))
	require.NoError(t, err)

	resp, err := (&http.Client{Transport: rt}).Get(mockServer.Issuer + "/resource")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// a fresh jar restored from disk still has the session cookie
	reopened, err := transport.NewFileJar(jarPath)
	require.NoError(t, err)
	resourceURL, err := url.Parse(mockServer.Issuer + "/resource")
	require.NoError(t, err)
	cookies := reopened.Cookies(resourceURL)
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, "sso", cookies[0].Value)
}
