package proxy

import (
	"context"
	"sync"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	protoclient "github.com/viant/mcp-protocol/client"
)

// frontendPeer adapts a frontend connection's client operations into a full
// client handler, so requests the backend initiates can be answered by
// whichever client is connected.
type frontendPeer struct {
	protoclient.Operations
}

func (p *frontendPeer) OnNotification(ctx context.Context, notification *jsonrpc.Notification) {
	_ = p.Notify(ctx, notification)
}

// backchannel routes backend-initiated traffic to the most recently connected
// frontend. The backend transport is created before any frontend exists, so
// the target is rebound at runtime.
type backchannel struct {
	mu    sync.RWMutex
	inner transport.Handler
}

func (b *backchannel) rebind(h transport.Handler) {
	b.mu.Lock()
	b.inner = h
	b.mu.Unlock()
}

func (b *backchannel) Serve(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	b.mu.RLock()
	h := b.inner
	b.mu.RUnlock()
	if h == nil {
		response.Error = jsonrpc.NewMethodNotFound("handler not ready", request.Params)
		return
	}
	h.Serve(ctx, request, response)
}

func (b *backchannel) OnNotification(ctx context.Context, notification *jsonrpc.Notification) {
	b.mu.RLock()
	h := b.inner
	b.mu.RUnlock()
	if h != nil {
		h.OnNotification(ctx, notification)
	}
}
