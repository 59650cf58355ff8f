package mock

import (
	"fmt"
	"net/http"
)

// defaultAuthorizeHandler answers /authorize with a fixed authorization code.
func (m *AuthorizationService) defaultAuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("client_id") != m.ClientID {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}
	redirectURI := r.URL.Query().Get("redirect_uri")
	if redirectURI == "" {
		http.Error(w, "Missing redirect URI", http.StatusBadRequest)
		return
	}
	state := r.URL.Query().Get("state")
	redirectURL := fmt.Sprintf("%s?code=%s&state=%s", redirectURI, "test_authorization_code", state)
	http.Redirect(w, r, redirectURL, http.StatusFound)
}
