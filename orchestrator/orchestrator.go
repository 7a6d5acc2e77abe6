/*
=================================================================================
ORCHESTRATOR — TOP-LEVEL TWO-LAYER RUN DRIVER
=================================================================================

Orchestrator is the original's PixelODLM: two PixelLayers and, when
matching is enabled, one LayerCoupler between them, driven by a single
top-level Run call. Per the concurrency notes carried into SPEC_FULL.md,
layers run sequentially within this process — there is no goroutine or
channel anywhere in this package, matching the rest of this module's
single-threaded, caller-driven simulation model.
=================================================================================
*/
package orchestrator

import (
	"fmt"

	"github.com/SynapticNetworks/odlm/config"
	"github.com/SynapticNetworks/odlm/coupler"
	"github.com/SynapticNetworks/odlm/layer"
)

// Orchestrator owns one or two Pixel layers and, if they're coupled, the
// Coupler bridging them. A single-layer Orchestrator (L2 and Coupler
// both nil) segments one image with no reference layer.
type Orchestrator struct {
	L1, L2  *layer.Pixel
	Coupler *coupler.Coupler
}

// New builds an Orchestrator over l1 alone, or over l1 and l2 wired
// through a PixelCoupler when coupled is true. l1 and l2 must have
// identical grid dimensions when coupled.
func New(l1, l2 *layer.Pixel, coupled bool, matching config.MatchingParams) (*Orchestrator, error) {
	o := &Orchestrator{L1: l1, L2: l2}
	if !coupled {
		return o, nil
	}
	if l2 == nil {
		return nil, fmt.Errorf("orchestrator: coupled run requires a second layer")
	}
	if l1.Width != l2.Width || l1.Height != l2.Height {
		return nil, fmt.Errorf("orchestrator: coupled layers must share grid dimensions, got %dx%d and %dx%d", l1.Width, l1.Height, l2.Width, l2.Height)
	}
	o.Coupler = coupler.NewPixelCoupler(l1, l2, matching)
	return o, nil
}

// Summary reports the terminal state of a Run, enough for a CLI host to
// print a one-line result or serialize a run report.
type Summary struct {
	L1Cycles, L1Cascades uint32
	L1Spikes             uint64
	L1Segments           int

	L2Cycles, L2Cascades uint32
	L2Spikes             uint64
	L2Segments           int

	Coupled bool
}

// Run drives L1 to convergence, then L2 (if present), and returns a
// Summary of both runs. When Coupler is installed, spikes in either
// layer already stimulate the other synchronously through the callback
// installed at construction — running L1's SegmentLayer to completion
// before starting L2's is what the spec calls "the cascade boundary
// serialization point": there is never a moment where both layers are
// mid-cascade at once, so the coupler's queued cross-layer messages are
// always applied against a layer that isn't itself being mutated by its
// own driver loop at the same instant.
func (o *Orchestrator) Run() Summary {
	o.L1.SegmentLayer()
	o.L1.ClearSmallSegments()

	summary := Summary{
		L1Cycles:   o.L1.GetNbCycles(),
		L1Cascades: o.L1.GetNbCascades(),
		L1Spikes:   o.L1.GetNbSpikes(),
		L1Segments: len(o.L1.CountSegments()),
	}

	if o.L2 == nil {
		return summary
	}

	o.L2.SegmentLayer()
	o.L2.ClearSmallSegments()

	summary.Coupled = o.Coupler != nil
	summary.L2Cycles = o.L2.GetNbCycles()
	summary.L2Cascades = o.L2.GetNbCascades()
	summary.L2Spikes = o.L2.GetNbSpikes()
	summary.L2Segments = len(o.L2.CountSegments())
	return summary
}
