package session

import (
	"sync"
	"time"

	"github.com/feagi/feagi-core/pkg/wire"
)

// Action names a side effect a Record transition expects its caller to
// perform (send a control message, allocate endpoints, recycle a pool
// entry). Record never performs I/O itself; it only reports what the
// driver should do next, matching spec.md §9's "replace callbacks with
// message passing" guidance.
type Action int

const (
	ActionNone Action = iota
	ActionControlRequestConnect
	ActionSendRegistration
	ActionStartSensory
	ActionStartMotor
	ActionSendHeartbeat
	ActionDeregisterNotice
	ActionRecycleEndpoints
)

// Record is one agent's session lifecycle, guarded by its own mutex so
// the burst driver, heartbeat sweep, and control-channel workers can all
// touch distinct sessions without a global lock.
type Record struct {
	mu sync.Mutex

	agentID       wire.AgentID
	phase         Phase
	requestedCaps CapabilitySet
	grantedCaps   CapabilitySet
	endpoints     map[Capability]string

	heartbeatInterval     time.Duration
	deregistrationTimeout time.Duration
	lastHeartbeat         time.Time

	lastError error
}

// NewRecord creates a session in PhaseIdle.
func NewRecord(heartbeatInterval, deregistrationTimeout time.Duration) *Record {
	return &Record{
		phase:                 PhaseIdle,
		endpoints:             make(map[Capability]string),
		heartbeatInterval:     heartbeatInterval,
		deregistrationTimeout: deregistrationTimeout,
	}
}

// Phase returns the session's current lifecycle phase.
func (r *Record) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// AgentID returns the session's assigned agent id (blank before Active).
func (r *Record) AgentID() wire.AgentID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.agentID
}

// LastError returns the error that drove this session to Failed, if any.
func (r *Record) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastError
}

// Endpoints returns a copy of the capability→endpoint-address map.
func (r *Record) Endpoints() map[Capability]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[Capability]string, len(r.endpoints))
	for k, v := range r.endpoints {
		out[k] = v
	}
	return out
}

// StartConnect transitions Idle → ControlConnecting.
func (r *Record) StartConnect() (Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseIdle {
		return ActionNone, &InvalidTransitionError{From: r.phase, Event: "start_connect"}
	}
	r.phase = PhaseControlConnecting
	return ActionControlRequestConnect, nil
}

// ObserveControlActiveWaiting transitions ControlConnecting → Registering
// once the control endpoint reports ActiveWaiting.
func (r *Record) ObserveControlActiveWaiting() (Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseControlConnecting {
		return ActionNone, &InvalidTransitionError{From: r.phase, Event: "control_active_waiting"}
	}
	r.phase = PhaseRegistering
	return ActionSendRegistration, nil
}

// FailControlConnecting moves ControlConnecting → Failed on a control
// error or an expired registration deadline.
func (r *Record) FailControlConnecting(cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseControlConnecting {
		return
	}
	r.phase = PhaseFailed
	r.lastError = cause
}

// ReceiveRegistrationResponse applies the registration verdict from
// Registering: Success with every requested capability granted moves to
// Active; anything else moves to Failed.
func (r *Record) ReceiveRegistrationResponse(resp RegistrationResponse, requested CapabilitySet) (Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseRegistering {
		return ActionNone, &InvalidTransitionError{From: r.phase, Event: "registration_response"}
	}

	switch resp.Status {
	case StatusSuccess:
		if !resp.GrantsAll(requested) {
			r.phase = PhaseFailed
			r.lastError = ErrMissingEndpoints
			return ActionNone, nil
		}
		r.phase = PhaseActive
		r.agentID = resp.AgentID
		r.requestedCaps = requested
		r.grantedCaps = NewCapabilitySet()
		r.endpoints = make(map[Capability]string, len(resp.Endpoints))
		for capability, addr := range resp.Endpoints {
			r.grantedCaps[capability] = struct{}{}
			r.endpoints[capability] = addr
		}
		r.lastHeartbeat = time.Now()
		return ActionStartSensory, nil
	case StatusFailedInvalidAuth:
		r.phase = PhaseFailed
		r.lastError = ErrAuthFailed
	case StatusAlreadyRegistered:
		r.phase = PhaseFailed
		r.lastError = ErrAlreadyRegistered
	default:
		r.phase = PhaseFailed
		r.lastError = ErrInvalidRequest
	}
	return ActionNone, nil
}

// Heartbeat records a received heartbeat and reports whether the session
// is (still) healthy from Active.
func (r *Record) Heartbeat(now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseActive {
		return &InvalidTransitionError{From: r.phase, Event: "heartbeat"}
	}
	r.lastHeartbeat = now
	return nil
}

// CheckHeartbeatTimeout transitions Active → Draining if now minus the
// last heartbeat exceeds the session's deregistration timeout. Called by
// the heartbeat sweep, at least once per second per spec.md §4.4.
func (r *Record) CheckHeartbeatTimeout(now time.Time) (Action, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseActive {
		return ActionNone, false
	}
	if now.Sub(r.lastHeartbeat) <= r.deregistrationTimeout {
		return ActionNone, false
	}
	r.phase = PhaseDraining
	return ActionDeregisterNotice, true
}

// Disconnect transitions Active → Draining on an explicit client
// disconnect request.
func (r *Record) Disconnect() (Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseActive {
		return ActionNone, &InvalidTransitionError{From: r.phase, Event: "disconnect"}
	}
	r.phase = PhaseDraining
	return ActionDeregisterNotice, nil
}

// AllEndpointsInactive transitions Draining → Closed once the caller
// confirms every assigned endpoint reports Inactive.
func (r *Record) AllEndpointsInactive() (Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseDraining {
		return ActionNone, &InvalidTransitionError{From: r.phase, Event: "all_endpoints_inactive"}
	}
	r.phase = PhaseClosed
	return ActionRecycleEndpoints, nil
}

// Fail moves the session to Failed from any phase on a control error,
// matching the "Any → Failed" row of spec.md §4.4's table.
func (r *Record) Fail(cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseClosed || r.phase == PhaseFailed {
		return
	}
	r.phase = PhaseFailed
	r.lastError = cause
}

// HeartbeatInterval returns the configured interval agents must send
// heartbeats within.
func (r *Record) HeartbeatInterval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heartbeatInterval
}
