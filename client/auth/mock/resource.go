package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// defaultResourceHandler simulates a protected resource at /resource; the
// 401 challenge points discovery at /resource-metadata.
func (m *AuthorizationService) defaultResourceHandler(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if header == "" {
		w.Header().Set("WWW-Authenticate", fmt.Sprintf(
			`Bearer realm="%s", scope="resource", resource_metadata="%s/resource-metadata"`,
			m.Issuer, m.Issuer))
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		http.Error(w, "Invalid authorization header", http.StatusBadRequest)
		return
	}
	// a compact JWS always starts with the base64 of {"
	if !strings.HasPrefix(token, "eyJ") {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "This is a protected resource"})
}
