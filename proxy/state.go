package proxy

// State is a lifecycle phase of the bridge service. Transitions run forward
// only: Idle, BackendConnecting, BackendReady, Serving, ShuttingDown, Closed.
type State int32

const (
	StateIdle State = iota
	StateBackendConnecting
	StateBackendReady
	StateServing
	StateShuttingDown
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBackendConnecting:
		return "backend-connecting"
	case StateBackendReady:
		return "backend-ready"
	case StateServing:
		return "serving"
	case StateShuttingDown:
		return "shutting-down"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}
