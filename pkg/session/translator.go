package session

import (
	"github.com/feagi/feagi-core/pkg/endpoint"
	"github.com/feagi/feagi-core/pkg/wire"
)

// SensorPuller is the subset of endpoint.Puller a SensorTranslator drives.
type SensorPuller interface {
	Poll() endpoint.State
	ConsumeRetrievedData() ([]byte, error)
	Fail(reason string)
}

// SensorTranslator decodes C1 byte containers arriving on a sensor
// puller. Per spec.md §4.4/§7: malformed short frames are dropped with a
// debug log and the session stays Active; any other decode error closes
// the socket.
type SensorTranslator struct {
	puller SensorPuller
	onDrop func(reason string)
}

// NewSensorTranslator wraps puller. onDrop, if non-nil, is invoked with a
// debug-level message whenever a short frame is silently dropped.
func NewSensorTranslator(puller SensorPuller, onDrop func(reason string)) *SensorTranslator {
	return &SensorTranslator{puller: puller, onDrop: onDrop}
}

// Poll drives the puller and, if a frame is ready, attempts to decode it
// into a Container. Returns (container, true) on a usable frame, (nil,
// false) when there is nothing new or the frame was a short-frame drop.
// A non-short decode error closes the socket and is returned.
func (t *SensorTranslator) Poll() (*wire.Container, bool, error) {
	if t.puller.Poll().Kind != endpoint.ActiveHasData {
		return nil, false, nil
	}

	raw, err := t.puller.ConsumeRetrievedData()
	if err != nil {
		return nil, false, nil
	}

	c := wire.NewEmpty()
	if err := c.TryWriteDataByCopyAndVerify(raw); err != nil {
		if wire.IsShortFrame(err) {
			if t.onDrop != nil {
				t.onDrop(err.Error())
			}
			return nil, false, nil
		}
		t.puller.Fail(err.Error())
		return nil, false, err
	}

	return c, true, nil
}

// MotorPublisher is the subset of endpoint.Publisher a
// MotorViewTranslator drives.
type MotorPublisher interface {
	Poll() endpoint.State
	Fail(reason string)
}

// MotorViewTranslator guards a publisher-only socket: receiving data on
// it (as opposed to this side writing to it) is a protocol error per
// spec.md §4.4's "Motor/Viz translator" rule, and must close the socket.
type MotorViewTranslator struct {
	publisher MotorPublisher
}

// NewMotorViewTranslator wraps publisher.
func NewMotorViewTranslator(publisher MotorPublisher) *MotorViewTranslator {
	return &MotorViewTranslator{publisher: publisher}
}

// RejectInboundData closes the socket because data arrived on a
// publisher-only endpoint.
func (t *MotorViewTranslator) RejectInboundData() {
	t.publisher.Fail("received data on a publisher-only socket")
}
