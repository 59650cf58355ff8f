package auth

import (
	"context"
	"encoding/json"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/authorization"
	"github.com/viant/mcp-protocol/schema"
)

// Policy names which tools and resources require authorization. A nil entry
// leaves the method open; Global applies when no per-name entry exists.
type Policy struct {
	Global    *authorization.Authorization
	Tools     map[string]*authorization.Authorization
	Resources map[string]*authorization.Authorization
}

// callMeta is the subset of request params the interceptor inspects.
type callMeta struct {
	Name string `json:"name,omitempty"`
	Uri  string `json:"uri,omitempty"`
	Meta struct {
		Authorization *struct {
			Token string `json:"token,omitempty"`
		} `json:"authorization,omitempty"`
	} `json:"_meta,omitempty"`
}

// Authorizer builds a JSON-RPC interceptor enforcing the policy. Requests
// carrying a _meta authorization token pass with the token attached;
// protected calls without one are answered with an Unauthorized error whose
// data carries the authorization requirements for client-side recovery.
func (p *Policy) Authorizer() Authorizer {
	return func(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) (*authorization.Token, error) {
		var meta callMeta
		if len(request.Params) > 0 {
			if err := json.Unmarshal(request.Params, &meta); err != nil {
				return nil, nil
			}
		}
		if meta.Meta.Authorization != nil && meta.Meta.Authorization.Token != "" {
			return &authorization.Token{Token: meta.Meta.Authorization.Token}, nil
		}
		switch request.Method {
		case schema.MethodToolsCall:
			p.unauthorized(response, p.required(p.Tools, meta.Name))
		case schema.MethodResourcesRead:
			p.unauthorized(response, p.required(p.Resources, meta.Uri))
		}
		return nil, nil
	}
}

func (p *Policy) required(entries map[string]*authorization.Authorization, name string) *authorization.Authorization {
	if entries == nil {
		return p.Global
	}
	return entries[name]
}

func (p *Policy) unauthorized(response *jsonrpc.Response, required *authorization.Authorization) {
	if required == nil {
		return
	}
	data, _ := json.Marshal(required)
	response.Error = &jsonrpc.Error{
		Code:    schema.Unauthorized,
		Message: "Unauthorized: protected resource requires authorization",
		Data:    data,
	}
}
