package endpoint

import "testing"

func bringUp(t *testing.T, m interface {
	RequestConnect() error
	RequestStart() error
}) {
	t.Helper()
	if err := m.RequestConnect(); err != nil {
		t.Fatalf("RequestConnect: %v", err)
	}
	if err := m.RequestStart(); err != nil {
		t.Fatalf("RequestStart: %v", err)
	}
}

func TestPollIsIdempotentBetweenEvents(t *testing.T) {
	p := NewChannelPuller()
	bringUp(t, p)
	s1 := p.Poll()
	s2 := p.Poll()
	if s1 != s2 {
		t.Fatalf("Poll() not idempotent: %v != %v", s1, s2)
	}
	if s1.Kind != ActiveWaiting {
		t.Fatalf("state = %v, want ActiveWaiting", s1)
	}
}

func TestPullerConsumeCycle(t *testing.T) {
	p := NewChannelPuller()
	bringUp(t, p)

	if ok := p.Push([]byte("frame-1")); !ok {
		t.Fatal("Push rejected on empty buffer")
	}
	state := p.Poll()
	if state.Kind != ActiveHasData {
		t.Fatalf("state = %v, want ActiveHasData", state)
	}

	// Buffer full: a second push must be rejected (backpressure), and the
	// state must remain ActiveHasData until consumed.
	if ok := p.Push([]byte("frame-2")); ok {
		t.Fatal("expected Push to report backpressure while buffer is full")
	}

	data, err := p.ConsumeRetrievedData()
	if err != nil {
		t.Fatalf("ConsumeRetrievedData: %v", err)
	}
	if string(data) != "frame-1" {
		t.Fatalf("data = %q", data)
	}
	if p.Poll().Kind != ActiveWaiting {
		t.Fatalf("state after consume = %v, want ActiveWaiting", p.Poll())
	}
}

func TestConsumeRetrievedDataInvalidOutsideHasData(t *testing.T) {
	p := NewChannelPuller()
	bringUp(t, p)
	if _, err := p.ConsumeRetrievedData(); err != ErrNoDataAvailable {
		t.Fatalf("err = %v, want ErrNoDataAvailable", err)
	}
}

func TestErroredIsStickyUntilConfirm(t *testing.T) {
	p := NewChannelPuller()
	bringUp(t, p)
	p.Fail("decode error")

	if got := p.Poll().Kind; got != Errored {
		t.Fatalf("state = %v, want Errored", got)
	}
	if got := p.Poll().Kind; got != Errored {
		t.Fatalf("state after second poll = %v, want still Errored", got)
	}
	if err := p.RequestDisconnect(); err == nil {
		t.Fatal("expected RequestDisconnect to fail while Errored")
	}

	if err := p.ConfirmErrorAndClose(); err != nil {
		t.Fatalf("ConfirmErrorAndClose: %v", err)
	}
	if got := p.Poll().Kind; got != Inactive {
		t.Fatalf("state after confirm = %v, want Inactive", got)
	}
}

func TestPublisherFailsLoudlyOutsideActiveWaiting(t *testing.T) {
	pub := NewChannelPublisher(4, Reliable)
	if err := pub.PublishData([]byte("x")); err != ErrUnableToSendData {
		t.Fatalf("err = %v, want ErrUnableToSendData", err)
	}
}

func TestPublisherBestEffortDropsOldest(t *testing.T) {
	pub := NewChannelPublisher(1, BestEffort)
	bringUp(t, pub)

	if err := pub.PublishData([]byte("old")); err != nil {
		t.Fatalf("PublishData: %v", err)
	}
	if err := pub.PublishData([]byte("new")); err != nil {
		t.Fatalf("PublishData: %v", err)
	}

	got := <-pub.Outbound()
	if string(got) != "new" {
		t.Fatalf("got = %q, want %q (oldest should be dropped)", got, "new")
	}
}

func TestRouterRequesterRoundTrip(t *testing.T) {
	router := NewChannelRouter(4)
	bringUp(t, router)

	client := NewChannelRequester(SessionID("sess-1"), router)
	bringUp(t, client)

	if err := client.SendRequest([]byte("ping")); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	if got := router.Poll().Kind; got != ActiveHasData {
		t.Fatalf("router state = %v, want ActiveHasData", got)
	}

	id, data, err := router.ConsumeRetrievedRequest()
	if err != nil {
		t.Fatalf("ConsumeRetrievedRequest: %v", err)
	}
	if id != SessionID("sess-1") || string(data) != "ping" {
		t.Fatalf("id=%v data=%q", id, data)
	}

	if err := router.PublishResponse(id, []byte("pong")); err != nil {
		t.Fatalf("PublishResponse: %v", err)
	}

	resp, err := client.GetResponse()
	if err != nil {
		t.Fatalf("GetResponse: %v", err)
	}
	if string(resp) != "pong" {
		t.Fatalf("resp = %q", resp)
	}
}

func TestRequestConnectInvalidFromNonInactive(t *testing.T) {
	p := NewChannelPuller()
	if err := p.RequestConnect(); err != nil {
		t.Fatalf("first RequestConnect: %v", err)
	}
	if err := p.RequestConnect(); err == nil {
		t.Fatal("expected error reconnecting from Pending")
	}
}
