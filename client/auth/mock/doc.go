// Package mock runs a self-contained OAuth2/OIDC authorization server for
// tests: discovery metadata, a JWKS endpoint, authorization and token
// endpoints signing real RS256 tokens, plus a protected resource answering
// RFC 9728 challenges. Tests drive complete token flows against it without
// leaving the process.
package mock
