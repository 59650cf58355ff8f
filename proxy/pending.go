package proxy

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// pendingCall is one frontend request forwarded to the backend and not yet
// answered.
type pendingCall struct {
	ID      string
	Method  string
	Started time.Time
	cancel  context.CancelFunc
}

// track registers a forward in flight and derives its call context, bounded
// by the per-call timeout when one is configured. Shutdown cancels the
// context through failPending.
func (s *Service) track(ctx context.Context, method string) (*pendingCall, context.Context) {
	var callCtx context.Context
	var cancel context.CancelFunc
	if s.callTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, s.callTimeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	entry := &pendingCall{ID: uuid.New().String(), Method: method, Started: time.Now(), cancel: cancel}
	s.pending.Put(entry.ID, entry)
	return entry, callCtx
}

func (s *Service) resolve(entry *pendingCall) {
	entry.cancel()
	s.pending.Delete(entry.ID)
}

// Pending reports how many forwarded calls await a backend answer.
func (s *Service) Pending() int {
	return s.pending.Size()
}

// failPending cancels every in-flight forward so teardown cannot hang on a
// silent backend.
func (s *Service) failPending() {
	s.pending.Range(func(id string, entry *pendingCall) bool {
		entry.cancel()
		return true
	})
}
