package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/viant/mcp-protocol/authorization"
	"github.com/viant/mcp-protocol/oauth2/meta"
)

// BearerMiddleware lifts a Bearer token from the Authorization header into
// the request context so JSON-RPC handlers can see it.
func BearerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
			ctx := context.WithValue(r.Context(), authorization.TokenKey, &authorization.Token{Token: header})
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// ProtectedResourcesHandler serves RFC 9728 protected resource metadata.
func ProtectedResourcesHandler(metadata *meta.ProtectedResourceMetadata) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(metadata)
	}
}
