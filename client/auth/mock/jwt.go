package mock

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// createJWT signs a token for clientID with the given type and expiry, keyed
// so the JWKS endpoint can verify it.
func (m *AuthorizationService) createJWT(clientID, tokenType string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": m.Issuer,
		"sub": "test_subject",
		"aud": clientID,
		"exp": now.Add(expiry).Unix(),
		"iat": now.Unix(),
		"typ": tokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = m.KeyID
	return token.SignedString(m.PrivateKey)
}
