// Package auth implements per-call authorization recovery for MCP clients.
//
// An Authorizer attached through client.WithAuthInterceptor watches for
// JSON-RPC responses rejected with an Unauthorized error whose data carries
// the server's authorization requirements. It acquires a matching OAuth2
// token through the transport sub-package's RoundTripper, injects it under
// params._meta.authorization.token and hands the rebuilt request back to the
// client for a single replay.
package auth
