package endpoint

import "sync"

// routedRequest pairs an inbound request with the session that sent it
// and the channel its reply should be delivered on. This mirrors the
// teacher's Operation{Payload, Result chan, Error chan} actor-request
// shape, adapted from a worker-operation queue to a request/reply
// rendezvous between a Router and its Requesters.
type routedRequest struct {
	session SessionID
	data    []byte
}

// ChannelRouter is the in-process concrete Router (server-side reply
// socket). Requesters registered via Register share its request queue.
type ChannelRouter struct {
	machine
	requests chan routedRequest

	mu      sync.Mutex
	replyTo map[SessionID]chan []byte
}

// NewChannelRouter returns a router in the Inactive state.
func NewChannelRouter(queueDepth int) *ChannelRouter {
	if queueDepth < 1 {
		queueDepth = 1
	}
	return &ChannelRouter{
		machine:  newInactiveMachine(),
		requests: make(chan routedRequest, queueDepth),
		replyTo:  make(map[SessionID]chan []byte),
	}
}

func (r *ChannelRouter) Poll() State {
	if r.current().Kind == ActiveWaiting && len(r.requests) > 0 {
		r.transitionToHasData()
	}
	return r.current()
}

func (r *ChannelRouter) RequestConnect() error       { return r.requestConnect() }
func (r *ChannelRouter) RequestStart() error         { return r.requestStart() }
func (r *ChannelRouter) RequestDisconnect() error    { return r.requestDisconnect() }
func (r *ChannelRouter) ConfirmErrorAndClose() error { return r.confirmErrorAndClose() }
func (r *ChannelRouter) Fail(reason string)          { r.fail(reason) }

// register lets a Requester share this router's request queue and
// receive replies addressed to its SessionID.
func (r *ChannelRouter) register(id SessionID) chan []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	reply := make(chan []byte, 1)
	r.replyTo[id] = reply
	return reply
}

// ConsumeRetrievedRequest yields the next (SessionID, bytes) pair. Valid
// only from ActiveHasData; transitions back to ActiveWaiting if the
// queue is drained, otherwise stays ActiveHasData (another request is
// already queued).
func (r *ChannelRouter) ConsumeRetrievedRequest() (SessionID, []byte, error) {
	if r.current().Kind != ActiveHasData {
		return "", nil, ErrNoDataAvailable
	}
	req := <-r.requests
	if len(r.requests) == 0 {
		r.transitionToWaiting()
	}
	return req.session, req.data, nil
}

// PublishResponse routes bytes back to the session that sent the request
// with the matching SessionID.
func (r *ChannelRouter) PublishResponse(id SessionID, data []byte) error {
	if r.current().Kind != ActiveWaiting && r.current().Kind != ActiveHasData {
		return ErrUnableToSendData
	}
	r.mu.Lock()
	reply, ok := r.replyTo[id]
	r.mu.Unlock()
	if !ok {
		return invalidState("PublishResponse", r.current())
	}
	select {
	case reply <- data:
	default:
		<-reply
		reply <- data
	}
	return nil
}

// ChannelRequester is the in-process concrete Requester (client-side).
type ChannelRequester struct {
	machine
	id       SessionID
	router   *ChannelRouter
	response chan []byte
}

// NewChannelRequester returns a requester bound to router under id,
// starting Inactive.
func NewChannelRequester(id SessionID, router *ChannelRouter) *ChannelRequester {
	return &ChannelRequester{
		machine:  newInactiveMachine(),
		id:       id,
		router:   router,
		response: router.register(id),
	}
}

func (c *ChannelRequester) Poll() State                    { return c.current() }
func (c *ChannelRequester) RequestConnect() error           { return c.requestConnect() }
func (c *ChannelRequester) RequestStart() error             { return c.requestStart() }
func (c *ChannelRequester) RequestDisconnect() error        { return c.requestDisconnect() }
func (c *ChannelRequester) ConfirmErrorAndClose() error     { return c.confirmErrorAndClose() }
func (c *ChannelRequester) Fail(reason string)              { c.fail(reason) }

// SendRequest dispatches bytes to the router. Valid only from
// ActiveWaiting.
func (c *ChannelRequester) SendRequest(data []byte) error {
	if c.current().Kind != ActiveWaiting {
		return ErrUnableToSendData
	}
	c.router.requests <- routedRequest{session: c.id, data: data}
	c.router.transitionToHasData()
	return nil
}

// GetResponse returns the most recently received response, if any,
// without blocking.
func (c *ChannelRequester) GetResponse() ([]byte, error) {
	select {
	case data := <-c.response:
		return data, nil
	default:
		return nil, ErrNoDataAvailable
	}
}
