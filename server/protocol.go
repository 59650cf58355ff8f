package server

import (
	"github.com/viant/mcp-protocol/schema"
	"net/http"
)

// protocolVersionMiddleware rejects requests carrying an unsupported
// MCP-Protocol-Version header and stamps the server version on every reply.
func protocolVersionMiddleware(supported string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if version := r.Header.Get("MCP-Protocol-Version"); version != "" && version != supported {
				http.Error(w, "invalid MCP-Protocol-Version", http.StatusBadRequest)
				return
			}
			w.Header().Set("MCP-Protocol-Version", supported)
			next.ServeHTTP(w, r)
		})
	}
}
