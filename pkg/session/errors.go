package session

import "errors"

// Errors returned to the control-channel translator. These are kept
// distinct from any transport-level ClientError the agent side might
// observe, the way the teacher keeps core.Err* sentinels distinct from
// apierr HTTP codes: a SessionError is always a server-side verdict.
var (
	ErrConnectionFailed  = errors.New("feagi-core: control connection failed")
	ErrAuthFailed        = errors.New("feagi-core: registration auth rejected")
	ErrInvalidRequest    = errors.New("feagi-core: malformed or too-large registration request")
	ErrAlreadyRegistered = errors.New("feagi-core: agent already registered")
	ErrMissingEndpoints  = errors.New("feagi-core: registration succeeded but required endpoints are missing")
	ErrInvalidTransition = errors.New("feagi-core: invalid session phase transition")
	ErrUnknownSession    = errors.New("feagi-core: no session for that agent id")
)

// InvalidTransitionError names the phase a transition was attempted from
// and the event that did not apply to it.
type InvalidTransitionError struct {
	From  Phase
	Event string
}

func (e *InvalidTransitionError) Error() string {
	return "feagi-core: event " + e.Event + " is invalid from phase " + e.From.String()
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
