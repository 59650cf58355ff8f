package mock

import (
	"encoding/json"
	"net/http"
	"time"
)

// tokenResponse is the token endpoint's success payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	IDToken      string `json:"id_token"`
}

// defaultTokenHandler answers /token for authorization_code and refresh_token
// grants with freshly signed JWTs.
func (m *AuthorizationService) defaultTokenHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	switch r.FormValue("grant_type") {
	case "authorization_code", "refresh_token":
	default:
		http.Error(w, "Unsupported grant type", http.StatusBadRequest)
		return
	}
	clientID, ok := m.authenticateClient(r)
	if !ok {
		http.Error(w, "Invalid client credentials", http.StatusUnauthorized)
		return
	}

	const lifetime = time.Hour
	var err error
	issue := func(use string, ttl time.Duration) string {
		if err != nil {
			return ""
		}
		var token string
		token, err = m.createJWT(clientID, use, ttl)
		return token
	}
	response := tokenResponse{
		TokenType:    "Bearer",
		ExpiresIn:    int(lifetime / time.Second),
		AccessToken:  issue("access_token", lifetime),
		RefreshToken: issue("refresh_token", 24*time.Hour),
		IDToken:      issue("id_token", lifetime),
	}
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// authenticateClient accepts HTTP basic auth or form credentials.
func (m *AuthorizationService) authenticateClient(r *http.Request) (string, bool) {
	clientID, clientSecret, ok := r.BasicAuth()
	if !ok {
		clientID = r.FormValue("client_id")
		clientSecret = r.FormValue("client_secret")
	}
	if clientID != m.ClientID || clientSecret != m.ClientSecret {
		return "", false
	}
	return clientID, true
}
