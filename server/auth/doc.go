// Package auth provides request-level authorization hooks for the MCP
// server: a JSON-RPC interceptor driven by a per-tool/per-resource policy,
// plus HTTP helpers for bearer extraction and protected-resource metadata.
package auth
