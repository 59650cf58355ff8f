package transport

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/viant/mcp-protocol/authorization"
	"github.com/viant/mcp-protocol/oauth2/meta"
	"github.com/viant/mcpkit/client/auth/store"
	"github.com/viant/scy/auth/flow"
	"golang.org/x/oauth2"
)

// RoundTripper is an http.RoundTripper that reacts to 401 challenges by
// discovering the protected-resource metadata, obtaining an OAuth 2.1 token
// and replaying the request once with a Bearer header.
type RoundTripper struct {
	Global      *authorization.Authorization
	store       store.Store
	authFlow    flow.AuthFlow
	flowTimeout time.Duration
	transport   http.RoundTripper
	jar         http.CookieJar
	mux         sync.Mutex
}

// New creates a RoundTripper; by default tokens live in memory and the
// interactive flow opens a browser.
func New(options ...Option) (*RoundTripper, error) {
	ret := &RoundTripper{
		transport: http.DefaultTransport,
		store:     store.NewMemoryStore(),
		authFlow:  &flow.BrowserFlow{},
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.jar != nil {
		ret.transport = WrapWithCookieJar(ret.transport, ret.jar)
	}
	return ret, nil
}

// Store exposes the token store, e.g. to pre-register client configurations.
func (r *RoundTripper) Store() store.Store {
	return r.store
}

func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// send un-authenticated first; anything but 401 passes through
	probe := clone(req)
	resp, err := r.transport.RoundTrip(probe)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	ctx := req.Context()
	token, err := r.Token(ctx, resp)
	if err != nil {
		return nil, err
	}
	if r.Global != nil && r.Global.UseIdToken {
		token, err = r.IdToken(ctx, token, r.Global.ProtectedResourceMetadata)
		if err != nil {
			return nil, err
		}
	}

	retry := clone(req)
	retry.Header.Set("Authorization", "Bearer "+token.AccessToken)
	return r.transport.RoundTrip(retry)
}

// Token resolves a token for the challenge carried by a 401 response.
func (r *RoundTripper) Token(ctx context.Context, resp *http.Response) (*oauth2.Token, error) {
	r.mux.Lock()
	defer r.mux.Unlock()
	resourceMetadata, err := r.loadProtectedResourceMetadata(ctx, resp)
	if err != nil {
		return nil, err
	}
	return r.ProtectedResourceToken(ctx, resourceMetadata, getScope(ctx))
}

// ProtectedResourceToken returns a cached token for the resource when still
// valid, refreshes an expired one, and otherwise runs the interactive flow.
func (r *RoundTripper) ProtectedResourceToken(ctx context.Context, resourceMetadata *meta.ProtectedResourceMetadata, scope string) (*oauth2.Token, error) {
	if resourceMetadata == nil || len(resourceMetadata.AuthorizationServers) == 0 {
		return nil, errors.New("protected resource metadata lists no authorization servers")
	}
	authServers := resourceMetadata.AuthorizationServers
	issuer := authServers[rand.Intn(len(authServers))]
	serverMetadata, _ := r.store.LookupAuthorizationServerMetadata(issuer)
	if serverMetadata == nil {
		var err error
		serverMetadata, err = meta.FetchAuthorizationServerMetadata(ctx, issuer, &http.Client{Transport: r.transport})
		if err != nil {
			return nil, err
		}
		if err = r.store.AddAuthorizationServerMetadata(serverMetadata); err != nil {
			return nil, err
		}
	}

	tokenKey := store.TokenKey{Issuer: serverMetadata.Issuer, Scopes: scope}
	clientConfig, ok := r.store.LookupClientConfig(serverMetadata.Issuer)
	if !ok {
		return nil, fmt.Errorf("%w: no client for issuer %s", ErrOAuthNotConfigured, serverMetadata.Issuer)
	}
	if cached, _ := r.store.LookupToken(tokenKey); cached != nil {
		if cached.Valid() {
			return cached, nil
		}
		if cached.RefreshToken != "" {
			if refreshed := r.refreshToken(ctx, clientConfig, cached); refreshed != nil {
				if err := r.store.AddToken(tokenKey, refreshed); err != nil {
					return nil, fmt.Errorf("failed to store refreshed token: %w", err)
				}
				return refreshed, nil
			}
		}
	}

	// no valid or refreshable token; hand over to the interactive flow
	token, err := r.interactiveToken(ctx, clientConfig, getAuthFlowOptions(ctx))
	if err != nil {
		return nil, err
	}
	if err = r.store.AddToken(tokenKey, token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

func (r *RoundTripper) refreshToken(ctx context.Context, clientConfig *oauth2.Config, cached *oauth2.Token) *oauth2.Token {
	refreshed, err := clientConfig.TokenSource(ctx, cached).Token()
	if err != nil {
		return nil
	}
	// providers may omit the refresh token on renewal
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = cached.RefreshToken
	}
	return refreshed
}

// interactiveToken runs the auth flow, bounded by the configured flow timeout.
// On timeout the flow goroutine is abandoned; its eventual result is dropped.
func (r *RoundTripper) interactiveToken(ctx context.Context, clientConfig *oauth2.Config, options []flow.Option) (*oauth2.Token, error) {
	if r.flowTimeout <= 0 {
		return r.authFlow.Token(ctx, clientConfig, options...)
	}
	ctx, cancel := context.WithTimeout(ctx, r.flowTimeout)
	defer cancel()
	type outcome struct {
		token *oauth2.Token
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		token, err := r.authFlow.Token(ctx, clientConfig, options...)
		done <- outcome{token: token, err: err}
	}()
	select {
	case ret := <-done:
		return ret.token, ret.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w after %s", ErrAuthTimeout, r.flowTimeout)
	}
}

func (r *RoundTripper) loadProtectedResourceMetadata(ctx context.Context, resp *http.Response) (*meta.ProtectedResourceMetadata, error) {
	metadataURL, err := parseAuthenticateHeader(resp)
	if err != nil {
		return nil, err
	}
	return meta.FetchProtectedResourceMetadata(ctx, metadataURL, &http.Client{Transport: r.transport})
}

var (
	_ authorization.ProtectedResourceTokenSource = (*RoundTripper)(nil)
	_ authorization.IdTokenSource                = (*RoundTripper)(nil)
)
