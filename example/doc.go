// Package example holds a small currency-conversion MCP server used to
// demonstrate the toolkit end to end: registering tools, exposing them over
// HTTP, connecting a client, snapshotting capabilities and searching them.
//
// The secured sub-package extends the same server with an OAuth2-protected
// tool and shows the client-side recovery flow.
package example
