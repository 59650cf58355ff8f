package mock

import (
	"encoding/json"
	"net/http"
)

// defaultMetadataHandler serves RFC 8414 authorization-server metadata at
// /.well-known/oauth-authorization-server.
func (m *AuthorizationService) defaultMetadataHandler(w http.ResponseWriter, _ *http.Request) {
	metadata := map[string]interface{}{
		"issuer":                                m.Issuer,
		"authorization_endpoint":                m.Issuer + "/authorize",
		"token_endpoint":                        m.Issuer + "/token",
		"jwks_uri":                              m.Issuer + "/jwks",
		"scopes_supported":                      m.AuthorizedScopes,
		"response_types_supported":              []string{"code"},
		"grant_types_supported":                 []string{"authorization_code", "refresh_token"},
		"token_endpoint_auth_methods_supported": []string{"client_secret_basic", "client_secret_post"},
		"code_challenge_methods_supported":      []string{"plain", "S256"},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(metadata)
}

// defaultResourceMetadataHandler serves RFC 9728 protected-resource metadata
// at /resource-metadata.
func (m *AuthorizationService) defaultResourceMetadataHandler(w http.ResponseWriter, _ *http.Request) {
	resourceMetadata := map[string]interface{}{
		"resource":              m.Issuer + "/resource",
		"authorization_servers": []string{m.Issuer},
		"scopes_supported":      []string{"openid", "profile", "email", "resource"},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resourceMetadata)
}
