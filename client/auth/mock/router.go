package mock

import (
	"net/http"
)

// Handler routes HTTP requests to the mock OAuth2 server endpoints.
type Handler struct {
	Server *AuthorizationService
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/token":
		h.dispatch(w, r, h.Server.TokenHandler, h.Server.defaultTokenHandler)
	case "/authorize":
		h.dispatch(w, r, h.Server.AuthorizeHandler, h.Server.defaultAuthorizeHandler)
	case "/.well-known/oauth-authorization-server":
		h.dispatch(w, r, h.Server.MetadataHandler, h.Server.defaultMetadataHandler)
	case "/resource":
		h.dispatch(w, r, h.Server.ResourceHandler, h.Server.defaultResourceHandler)
	case "/resource-metadata":
		h.dispatch(w, r, h.Server.ResourceMetadataHandler, h.Server.defaultResourceMetadataHandler)
	case "/jwks":
		h.dispatch(w, r, h.Server.JwksHandler, h.Server.defaultJwksHandler)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, override, fallback http.HandlerFunc) {
	if override != nil {
		override(w, r)
		return
	}
	fallback(w, r)
}
