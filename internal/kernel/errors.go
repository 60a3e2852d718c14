package kernel

import (
	"errors"
	"fmt"
)

// State is the lifecycle state of a kernel session.
type State int

// Session lifecycle:
// Unstarted -> Starting -> Ready <-> Busy -> {Errored, Terminated}.
const (
	StateUnstarted State = iota
	StateStarting
	StateReady
	StateBusy
	StateErrored
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateBusy:
		return "busy"
	case StateErrored:
		return "errored"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrBusy is returned when a request arrives while another is in flight.
// Requests are rejected, never queued; callers wait for Ready.
var ErrBusy = errors.New("kernel busy")

// ErrNotReady is returned for requests against a session that is not running.
var ErrNotReady = errors.New("kernel not ready")

// StartError means the interpreter could not be launched or did not complete
// the handshake. Fatal to the session: it must be restarted, not retried.
type StartError struct {
	Interpreter string
	Err         error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start kernel %s: %v", e.Interpreter, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// ProtocolError means the response framing was malformed or out of sync.
// Fatal: the session moves to Errored.
type ProtocolError struct {
	Detail string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("kernel protocol: %s: %v", e.Detail, e.Err)
	}
	return "kernel protocol: " + e.Detail
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ErrorKindInterrupted marks an execution cancelled by the user.
const ErrorKindInterrupted = "Interrupted"
