// Package server exposes an MCP protocol handler over HTTP (SSE and
// streamable) and stdio listeners.
//
// A Server is configured with a handler factory from the
// github.com/viant/mcp-protocol/server package and optional middleware:
//
//   - CORS and Origin validation
//   - MCP-Protocol-Version negotiation
//   - HTTP and JSON-RPC level authorization hooks
//   - per-request cancellation and progress-token propagation
//   - MCP logging notifications honoring logging/setLevel
//
// Typical use:
//
//	srv, _ := server.New(server.WithNewHandler(newHandler))
//	log.Fatal(srv.HTTP(ctx, "127.0.0.1:5000").ListenAndServe())
package server
