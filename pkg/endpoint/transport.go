package endpoint

// Kind tags which concrete transport backs an endpoint. Per the
// redesign note on trait-object transports, every variant dispatches
// through the same Base/Puller/Publisher/Router/Requester contracts in
// this package rather than through a shared interface hierarchy or
// dynamic dispatch — callers switch on Kind only to decide which
// constructor to call, never to change the contract they program against.
//
// Only KindInProcess has a concrete implementation here: ZMQ/WebSocket/
// UDP/SHM framing are explicitly out of scope (spec.md §1). The tagged
// set is still named in full so the dispatch point in session/endpoint
// wiring doesn't need to change shape if a transport is added later.
type Kind int

const (
	KindInProcess Kind = iota
	KindZmq
	KindWebsocket
	KindUdp
	KindShm
)

func (k Kind) String() string {
	switch k {
	case KindInProcess:
		return "in-process"
	case KindZmq:
		return "zmq"
	case KindWebsocket:
		return "websocket"
	case KindUdp:
		return "udp"
	case KindShm:
		return "shm"
	default:
		return "unknown"
	}
}
