package burst

import (
	"context"

	"github.com/feagi/feagi-core/pkg/cortex"
)

// Dynamics is the opaque NPU boundary: synaptic propagation, leak,
// threshold checks, and refractory accounting. spec.md §1 marks the inner
// kernels out of scope — this interface is exactly the data that crosses
// the boundary: the fire-candidate list injected this burst in, the fire
// queue (including any output-area activity) out.
type Dynamics interface {
	Step(ctx context.Context, burstIndex uint64, candidates *cortex.MappedVoxels) (*cortex.MappedVoxels, error)
}

// PassthroughDynamics is a reference Dynamics implementation with no
// actual propagation: the fire queue it produces is exactly the injected
// candidates. It exists for testing the burst loop's scheduling,
// encode/decode wiring, and cancellation behavior in isolation from any
// real neural kernel — scenario 5 in spec.md §8 (percentage linear
// round-trip) depends on this property, not on anything a real kernel
// would add.
type PassthroughDynamics struct{}

// Step implements Dynamics by returning candidates unchanged.
func (PassthroughDynamics) Step(_ context.Context, _ uint64, candidates *cortex.MappedVoxels) (*cortex.MappedVoxels, error) {
	return candidates, nil
}
