// Package proxy re-exposes a single backend MCP server over a possibly
// different transport. Every frontend request forwards 1:1 to the backend
// session and backend-initiated requests (elicitation, sampling, roots)
// travel the opposite way over the frontend backchannel; payloads are never
// rewritten. The service connects and snapshots the backend before it starts
// serving, and resolves calls still in flight when it shuts down.
//
// Frontends without elicitation support can opt into a local web form
// fallback, so backend elicitation requests still get answered.
package proxy
