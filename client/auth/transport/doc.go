// Package transport provides an http.RoundTripper that recovers from 401
// Unauthorized challenges: it locates the resource's authorization servers
// through RFC 9728 protected-resource metadata, obtains or refreshes an
// OAuth 2.1 token via the configured flow and token store, and replays the
// request with the Bearer credential attached.
//
// The RoundTripper backs the auth.Authorizer JSON-RPC interceptor and also
// works standalone in front of any HTTP client.
package transport
