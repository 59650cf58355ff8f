package mock

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/viant/mcp-protocol/oauth2/meta"
)

// defaultJwksHandler exposes the server public key at /jwks under the key id
// the token signer uses.
func (m *AuthorizationService) defaultJwksHandler(w http.ResponseWriter, _ *http.Request) {
	pubKey := m.PrivateKey.Public().(*rsa.PublicKey)
	nB64 := base64.RawURLEncoding.EncodeToString(pubKey.N.Bytes())
	eB64 := base64.RawURLEncoding.EncodeToString(new(big.Int).SetInt64(int64(pubKey.E)).Bytes())
	jwks := meta.JSONWebKeySet{Keys: []meta.JSONWebKey{
		{Kty: "RSA", Use: "sig", Alg: "RS256", Kid: m.KeyID, N: nB64, E: eB64},
	}}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(jwks)
}
