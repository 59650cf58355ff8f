// Package mcpkit connects to, inspects and re-exposes Model Context
// Protocol (MCP) servers.
//
// The root package turns resolved configuration into live sessions:
// Connect builds a transport (a stdio child process or an HTTP endpoint,
// optionally spawned first), runs the protocol handshake and returns a
// Session whose Close releases every resource the dial acquired.
// NewServer assembles the server role from declarative options.
//
// Subpackages carry the parts:
//
//   - client: typed protocol operations and server-initiated request dispatch
//   - client/auth: OAuth2 token acquisition, token stores and an
//     authenticating HTTP round tripper
//   - server: the server role with SSE, streamable HTTP and stdio listeners
//   - proxy: bridges one backend session to a frontend on any transport
//   - capability: snapshots of advertised tools, prompts and resources
//   - search: pattern queries over capability snapshots
//   - ref: tool reference parsing
//
// Configuration may come from Go code, YAML documents (LoadConfig) or
// command-line flags; the same option structs serve all three.
package mcpkit
