package mock

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"net/http"
)

// AuthorizationService simulates an OAuth2 authorization server together with
// one protected resource. Every endpoint has a default handler that can be
// overridden per test.
type AuthorizationService struct {
	PrivateKey       *rsa.PrivateKey
	KeyID            string
	Issuer           string
	ClientID         string
	ClientSecret     string
	AuthorizedScopes []string

	TokenHandler            func(w http.ResponseWriter, r *http.Request)
	AuthorizeHandler        func(w http.ResponseWriter, r *http.Request)
	MetadataHandler         func(w http.ResponseWriter, r *http.Request)
	ResourceHandler         func(w http.ResponseWriter, r *http.Request)
	ResourceMetadataHandler func(w http.ResponseWriter, r *http.Request)
	JwksHandler             func(w http.ResponseWriter, r *http.Request)
}

// NewAuthorizationService creates a mock OAuth2 authorization server with a
// fresh RSA signing key.
func NewAuthorizationService() (*AuthorizationService, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %v", err)
	}
	return &AuthorizationService{
		PrivateKey:       privateKey,
		KeyID:            "test_key",
		ClientID:         "test_client_id",
		ClientSecret:     "test_client_secret",
		AuthorizedScopes: []string{"openid", "profile", "email"},
	}, nil
}

// Register mounts all mock endpoints onto the given ServeMux.
func (m *AuthorizationService) Register(mux *http.ServeMux) {
	mux.Handle("/", &Handler{Server: m})
}

// Handler returns an http.Handler serving all mock endpoints.
func (m *AuthorizationService) Handler() http.Handler {
	mux := http.NewServeMux()
	m.Register(mux)
	return mux
}
