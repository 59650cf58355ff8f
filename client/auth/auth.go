package auth

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/authorization"
	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/mcpkit/client/auth/transport"
	"golang.org/x/oauth2"
)

// Authorizer is a fine-grained authorization interceptor for JSON-RPC calls
// rejected with an Unauthorized error.
type Authorizer struct {
	Transport *transport.RoundTripper
}

// NewAuthorizer creates an Authorizer acquiring tokens through the given
// RoundTripper.
func NewAuthorizer(transport *transport.RoundTripper) *Authorizer {
	return &Authorizer{Transport: transport}
}

// Intercept inspects a response; on an Unauthorized error carrying
// authorization requirements it obtains a token and returns a copy of the
// request with the token injected, for the caller to re-send once. A nil
// request means no retry applies.
func (a *Authorizer) Intercept(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) (*jsonrpc.Request, error) {
	if response.Error == nil || response.Error.Code != schema.Unauthorized {
		return nil, nil
	}
	if len(response.Error.Data) == 0 {
		return nil, nil // no PRM document to act on
	}
	var anAuthorization authorization.Authorization
	if err := json.Unmarshal(response.Error.Data, &anAuthorization); err != nil {
		return nil, err
	}
	if anAuthorization.ProtectedResourceMetadata == nil {
		return nil, nil
	}
	token, err := a.Transport.ProtectedResourceToken(ctx, anAuthorization.ProtectedResourceMetadata, strings.Join(anAuthorization.RequiredScopes, " "))
	if err != nil {
		return nil, err
	}
	if anAuthorization.UseIdToken {
		if token, err = a.Transport.IdToken(ctx, token, anAuthorization.ProtectedResourceMetadata); err != nil {
			return nil, err
		}
	}
	return injectToken(request, token)
}

// injectToken rebuilds the request with the access token under
// params._meta.authorization.token, where servers expect it.
func injectToken(request *jsonrpc.Request, token *oauth2.Token) (*jsonrpc.Request, error) {
	params := map[string]interface{}{}
	if len(request.Params) > 0 {
		if err := json.Unmarshal(request.Params, &params); err != nil {
			return nil, err
		}
	}
	paramMeta, _ := params["_meta"].(map[string]interface{})
	if paramMeta == nil {
		paramMeta = map[string]interface{}{}
		params["_meta"] = paramMeta
	}
	authMeta, _ := paramMeta["authorization"].(map[string]interface{})
	if authMeta == nil {
		authMeta = map[string]interface{}{}
		paramMeta["authorization"] = authMeta
	}
	authMeta["token"] = token.AccessToken

	next := *request
	var err error
	if next.Params, err = json.Marshal(params); err != nil {
		return nil, err
	}
	return &next, nil
}
