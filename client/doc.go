// Package client implements a high-level MCP client.
//
// It wraps the protocol surface defined in github.com/viant/mcp-protocol and
// adds the initialize handshake with capability negotiation, typed method
// wrappers over any jsonrpc transport (stdio, HTTP SSE, streamable), an
// optional authorization interceptor that acquires OAuth tokens on demand
// and retries Unauthorized calls once, and a Handler answering
// server-initiated requests (roots, sampling, elicitation).
//
// Example:
//
//	transport, _ := sse.New(ctx, "https://mcp.example.com/sse")
//	cli := client.New("demo", "1.0", transport)
//	res, _ := cli.Initialize(ctx)
package client
