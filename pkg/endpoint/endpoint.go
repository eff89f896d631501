package endpoint

// SessionID correlates a router's inbound request with the session that
// sent it, so a reply can be routed back to the right caller. It is a
// caller-supplied correlation id, distinct from the wire-level AgentId;
// this package has no opinion on how callers generate one.
type SessionID string

// Base is the contract every transport-facing object exposes, regardless
// of role or concrete transport. Poll never blocks and is idempotent
// between external events: calling it repeatedly with no new I/O returns
// the same State.
type Base interface {
	// Poll advances internal I/O and returns the current state. Never
	// blocks.
	Poll() State

	// RequestConnect asks the endpoint to begin connecting (client-side
	// sockets) or binding (server-side sockets).
	RequestConnect() error

	// RequestStart asks an already-connected endpoint to begin active
	// operation (e.g. subscribing, or accepting requests).
	RequestStart() error

	// RequestDisconnect begins a graceful teardown.
	RequestDisconnect() error

	// ConfirmErrorAndClose acknowledges an Errored state and transitions
	// the endpoint back to Inactive. No-op from any other state.
	ConfirmErrorAndClose() error
}

// Puller is a server-side or client-side endpoint that receives frames.
type Puller interface {
	Base
	// ConsumeRetrievedData returns one frame and transitions
	// ActiveHasData -> ActiveWaiting. Valid only from ActiveHasData.
	ConsumeRetrievedData() ([]byte, error)
}

// Publisher is an endpoint that sends frames to one or more subscribers.
type Publisher interface {
	Base
	// PublishData sends bytes. Valid only from ActiveWaiting; returns
	// ErrUnableToSendData otherwise, unless the publisher is configured
	// BestEffort, in which case it silently drops.
	PublishData(data []byte) error
}

// Router is a server-side reply endpoint: it receives a request tagged
// with the sender's SessionID and sends a reply back to that same sender.
type Router interface {
	Base
	// ConsumeRetrievedRequest yields the next (SessionID, bytes) pair.
	ConsumeRetrievedRequest() (SessionID, []byte, error)
	// PublishResponse routes bytes back to the session that sent the
	// request with the matching SessionID.
	PublishResponse(id SessionID, data []byte) error
}

// Requester is a client-side endpoint: it sends a request then polls for
// a response, non-blocking throughout.
type Requester interface {
	Base
	// SendRequest dispatches bytes to the peer.
	SendRequest(data []byte) error
	// GetResponse returns the most recently received response, if any.
	GetResponse() ([]byte, error)
}

// BackpressurePolicy governs what a Publisher does when its outbound
// queue is full. Motor streams are Reliable (block or fail loudly);
// visualization streams are BestEffort (drop the oldest queued frame).
type BackpressurePolicy int

const (
	Reliable BackpressurePolicy = iota
	BestEffort
)
