package endpoint

// ChannelPuller is the in-process concrete Puller: the one transport
// variant this package actually implements end-to-end. ZMQ/WebSocket/UDP/
// SHM variants are out of spec scope (spec.md §1 Non-goals) but would
// plug into the same Base/Puller contract as additional tagged variants —
// see transport.go.
//
// Backpressure: inbound is a capacity-1 channel. While a frame is buffered
// (ActiveHasData) or inbound is full, Push reports that the buffer is full
// and the caller (the owning transport
// glue) is expected to stop reading from its underlying wire, exactly as
// spec.md §4.2 requires: "stays in ActiveHasData ... transport stops
// reading from the wire".
type ChannelPuller struct {
	machine
	inbound  chan []byte
	buffered []byte
}

// NewChannelPuller returns a puller in the Inactive state.
func NewChannelPuller() *ChannelPuller {
	return &ChannelPuller{
		machine: newInactiveMachine(),
		inbound: make(chan []byte, 1),
	}
}

// Poll advances internal I/O: if ActiveWaiting and a frame has arrived on
// the inbound channel, it is buffered and the state moves to
// ActiveHasData. Never blocks.
func (p *ChannelPuller) Poll() State {
	if p.current().Kind == ActiveWaiting {
		select {
		case data := <-p.inbound:
			p.buffered = data
			p.transitionToHasData()
		default:
		}
	}
	return p.current()
}

func (p *ChannelPuller) RequestConnect() error       { return p.requestConnect() }
func (p *ChannelPuller) RequestStart() error         { return p.requestStart() }
func (p *ChannelPuller) RequestDisconnect() error    { return p.requestDisconnect() }
func (p *ChannelPuller) ConfirmErrorAndClose() error { return p.confirmErrorAndClose() }

// ConsumeRetrievedData returns the buffered frame and transitions back to
// ActiveWaiting. Valid only from ActiveHasData.
func (p *ChannelPuller) ConsumeRetrievedData() ([]byte, error) {
	if p.current().Kind != ActiveHasData {
		return nil, ErrNoDataAvailable
	}
	data := p.buffered
	p.buffered = nil
	p.transitionToWaiting()
	return data, nil
}

// Push delivers one frame from the simulated wire. Returns false without
// blocking if a frame is buffered and not yet consumed (ActiveHasData) or
// the inbound slot is already occupied — the caller must stop reading from
// the underlying transport until the buffer drains.
func (p *ChannelPuller) Push(data []byte) (accepted bool) {
	if p.current().Kind == ActiveHasData {
		return false
	}
	select {
	case p.inbound <- data:
		return true
	default:
		return false
	}
}

// Fail marks the endpoint Errored, e.g. on a decode error that is not the
// short-frame kind (spec.md §7 propagation policy).
func (p *ChannelPuller) Fail(reason string) { p.fail(reason) }
