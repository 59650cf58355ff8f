package transport

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/mcp-protocol/oauth2/meta"
	"golang.org/x/oauth2"
)

// IdToken extracts the id_token carried by an OAuth2 token, verifies its
// signature against the issuer JWKS and returns it as a Bearer token.
func (r *RoundTripper) IdToken(ctx context.Context, token *oauth2.Token, resourceMetadata *meta.ProtectedResourceMetadata) (*oauth2.Token, error) {
	if resourceMetadata == nil || len(resourceMetadata.AuthorizationServers) == 0 {
		return nil, errors.New("protected resource metadata lists no authorization servers")
	}
	authServers := resourceMetadata.AuthorizationServers
	issuer := authServers[rand.Intn(len(authServers))]
	metadata, _ := r.store.LookupAuthorizationServerMetadata(issuer)
	if metadata == nil {
		return nil, fmt.Errorf("authorization server metadata not found for %v", issuer)
	}
	var idTokenString string
	if value := token.Extra("id_token"); value != nil {
		idTokenString, _ = value.(string)
	}
	if idTokenString == "" {
		return nil, errors.New("token response carried no id_token")
	}
	keys, ok := r.store.LookupIssuerPublicKeys(metadata.Issuer)
	if !ok {
		var err error
		keys, err = meta.FetchJSONWebKeySet(ctx, metadata.JSONWebKeySetURI, &http.Client{Transport: r.transport})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch JSON Web Key Set: %w", err)
		}
		if err = r.store.AddIssuerPublicKeys(metadata.Issuer, keys); err != nil {
			return nil, fmt.Errorf("failed to store issuer public keys: %w", err)
		}
	}

	idToken, err := jwt.Parse(idTokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("kid header not found")
		}
		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("key %v not found", kid)
		}
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse id token: %w", err)
	}
	if !idToken.Valid {
		return nil, errors.New("id token is not valid")
	}
	expiry, err := idToken.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return nil, fmt.Errorf("failed to get expiration time: %w", err)
	}
	return &oauth2.Token{
		TokenType:    "Bearer",
		AccessToken:  idTokenString,
		RefreshToken: token.RefreshToken,
		Expiry:       expiry.Time,
	}, nil
}
