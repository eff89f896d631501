package endpoint

import "errors"

// ErrUnableToSendData is returned by PublishData/PublishResponse when the
// endpoint is not in ActiveWaiting: the spec requires send attempts to
// fail loudly rather than silently drop, except for streams explicitly
// marked best-effort.
var ErrUnableToSendData = errors.New("endpoint: unable to send data, endpoint is not ActiveWaiting")

// ErrNoDataAvailable is returned by ConsumeRetrievedData/
// ConsumeRetrievedRequest when called outside ActiveHasData.
var ErrNoDataAvailable = errors.New("endpoint: no data available to consume")

// ErrInvalidState reports a contract violation: an operation attempted
// from a state that does not permit it.
type ErrInvalidState struct {
	Op    string
	State State
}

func (e *ErrInvalidState) Error() string {
	return "endpoint: " + e.Op + " invalid from state " + e.State.String()
}

func invalidState(op string, s State) error {
	return &ErrInvalidState{Op: op, State: s}
}
