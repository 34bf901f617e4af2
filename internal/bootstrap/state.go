// internal/bootstrap/state.go
//
// Linear bootstrap state machine.
//
// The procedure is one-shot: states advance in one direction and none is
// ever re-entered.  Aborted is terminal and reachable only from
// Uninitialized, via the secret gate.

package bootstrap

// State tracks how far the procedure has advanced.
type State int

const (
	StateUninitialized State = iota
	StateValidated
	StateConfigured
	StateRunning
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateValidated:
		return "validated"
	case StateConfigured:
		return "configured"
	case StateRunning:
		return "running"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}
