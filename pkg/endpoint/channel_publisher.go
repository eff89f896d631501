package endpoint

// ChannelPublisher is the in-process concrete Publisher.
//
// BackpressurePolicy governs PublishData when the outbound queue is
// full: Reliable blocks until space frees (motor streams must not drop),
// BestEffort drops the oldest queued frame and enqueues the new one
// (visualization streams may skip frames under load).
type ChannelPublisher struct {
	machine
	outbound chan []byte
	policy   BackpressurePolicy
}

// NewChannelPublisher returns a publisher in the Inactive state with the
// given outbound queue depth and backpressure policy.
func NewChannelPublisher(queueDepth int, policy BackpressurePolicy) *ChannelPublisher {
	if queueDepth < 1 {
		queueDepth = 1
	}
	return &ChannelPublisher{
		machine:  newInactiveMachine(),
		outbound: make(chan []byte, queueDepth),
		policy:   policy,
	}
}

func (p *ChannelPublisher) Poll() State                    { return p.current() }
func (p *ChannelPublisher) RequestConnect() error           { return p.requestConnect() }
func (p *ChannelPublisher) RequestStart() error             { return p.requestStart() }
func (p *ChannelPublisher) RequestDisconnect() error        { return p.requestDisconnect() }
func (p *ChannelPublisher) ConfirmErrorAndClose() error     { return p.confirmErrorAndClose() }
func (p *ChannelPublisher) Fail(reason string)              { p.fail(reason) }

// PublishData sends bytes. Valid only from ActiveWaiting: from any other
// state a Reliable publisher returns ErrUnableToSendData and a BestEffort
// publisher drops the frame and returns nil.
func (p *ChannelPublisher) PublishData(data []byte) error {
	if p.current().Kind != ActiveWaiting {
		if p.policy == BestEffort {
			return nil
		}
		return ErrUnableToSendData
	}
	switch p.policy {
	case BestEffort:
		select {
		case p.outbound <- data:
		default:
			select {
			case <-p.outbound:
			default:
			}
			select {
			case p.outbound <- data:
			default:
			}
		}
		return nil
	default: // Reliable
		p.outbound <- data
		return nil
	}
}

// Outbound exposes the publisher's outbound channel so a subscriber loop
// (or a test) can drain published frames.
func (p *ChannelPublisher) Outbound() <-chan []byte {
	return p.outbound
}
