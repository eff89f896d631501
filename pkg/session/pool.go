package session

import "sync"

// EndpointProperties is a transport-agnostic description of how to rebind
// an endpoint: the configuration a puller/publisher/router needs to build
// a fresh socket bound to the same port or path a prior session used.
// Transport-specific fields live behind the generic Address/Metadata pair
// so pkg/session never depends on a concrete transport package.
type EndpointProperties struct {
	Capability Capability
	Address    string
	Metadata   map[string]string
}

// EndpointPool is a free pool of EndpointProperties keyed by capability,
// so closing a session recycles its port/path instead of leaking it and
// a new session can lease the same properties rather than allocate fresh
// ones. Grounded on the teacher's WorkerPool GetOrCreate/Evict split:
// Lease is the fast/slow-path "get or create", Recycle is "Evict" without
// the persistence step (endpoint properties are in-memory only).
type EndpointPool struct {
	mu    sync.Mutex
	free  map[Capability][]EndpointProperties
	alloc func(Capability) EndpointProperties

	totalLeased  uint64
	totalRecycled uint64
}

// NewEndpointPool creates an empty pool. alloc is called to mint brand
// new EndpointProperties when the free list for a capability is empty.
func NewEndpointPool(alloc func(Capability) EndpointProperties) *EndpointPool {
	return &EndpointPool{
		free:  make(map[Capability][]EndpointProperties),
		alloc: alloc,
	}
}

// Lease returns a free EndpointProperties for capability, reusing a
// recycled one if available, otherwise minting a new one via the pool's
// alloc func.
func (p *EndpointPool) Lease(capability Capability) EndpointProperties {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totalLeased++
	if list := p.free[capability]; len(list) > 0 {
		props := list[len(list)-1]
		p.free[capability] = list[:len(list)-1]
		return props
	}
	return p.alloc(capability)
}

// Recycle returns a session's endpoint properties to the free pool. Call
// once per capability when a session reaches Closed.
func (p *EndpointPool) Recycle(props EndpointProperties) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totalRecycled++
	p.free[props.Capability] = append(p.free[props.Capability], props)
}

// Stats reports pool-wide counters, mirroring the teacher's totalCreated/
// totalEvicted pair so O(max concurrent sessions) allocation behavior
// (spec.md §8) is directly observable.
func (p *EndpointPool) Stats() (leased, recycled uint64, freeCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	count := 0
	for _, list := range p.free {
		count += len(list)
	}
	return p.totalLeased, p.totalRecycled, count
}
