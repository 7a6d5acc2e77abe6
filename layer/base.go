/*
=================================================================================
NEURAL LAYER — GRID OF INTEGRATE-AND-FIRE NEURONS
=================================================================================

Base holds the state every layer kind shares (spec.md component C2):
the flat neuron grid, the active region, the per-run counters, and the
outbound spike hook. It implements the capability-independent dynamics
of the layer: time advance, firing threshold scan, global inhibition,
cycle bookkeeping, and the stabilization metric. Propagation between
neurons (a SegmentationLayer capability) is not implemented here —
Segmentation embeds Base and adds it.

Design note: AdvanceTime, FindNextTimeStep, FireNeurons, and
IsCycleCompleted all operate over the active region only, matching
spec.md's explicit wording for those four operations. ResetCycle,
GlobalInhibition, and GetCoefStabilization operate over every neuron in
the layer, matching spec.md's wording for those three, which omits any
"active region" qualifier.
=================================================================================
*/
package layer

import (
	"math"

	"github.com/SynapticNetworks/odlm/config"
	"github.com/SynapticNetworks/odlm/identity"
	"github.com/SynapticNetworks/odlm/imagedata"
	"github.com/SynapticNetworks/odlm/neuron"
	"github.com/SynapticNetworks/odlm/types"
	"gonum.org/v1/gonum/stat"
)

// Base is the common state of every layer kind in this package. Concrete
// layer kinds (Segmentation, Pixel) embed it; LoadStateFile also returns
// a bare Base holding a snapshot's neuron state.
type Base struct {
	Neurons []neuron.Neuron

	Width, Height int
	Active        types.Rect

	LayerID uint32

	SimTime   float64
	NCycles   uint32
	NCascades uint32
	NSpikes   uint64

	// Image is the source image data this layer was built from. Never
	// written by the layer; reading it back out is purely diagnostic.
	Image *imagedata.ImageData

	callback SpikeCallback

	params config.NeuronParams
}

func newBase(width, height int, img *imagedata.ImageData, params config.NeuronParams, alloc *identity.Allocator) Base {
	if alloc == nil {
		alloc = identity.Default()
	}
	neurons := make([]neuron.Neuron, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			id := uint32(y*width + x)
			neurons[id] = neuron.New(id, types.Point{X: x, Y: y}, 0, 0, 0)
		}
	}
	return Base{
		Neurons: neurons,
		Width:   width,
		Height:  height,
		Active:  types.NewRect(width, height),
		LayerID: alloc.NextLayerID(),
		Image:   img,
		params:  params,
	}
}

// SetActiveRegion narrows the region that FindNextTimeStep, AdvanceTime,
// FireNeurons, and IsCycleCompleted operate over. A new layer's active
// region defaults to the whole grid.
func (b *Base) SetActiveRegion(r types.Rect) { b.Active = r }

// IsInLayer reports whether (x,y) lies within the layer's grid
// dimensions (not the active region — the full allocated neuron grid).
func (b *Base) IsInLayer(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

func (b *Base) activeIndices() []int {
	idx := make([]int, 0, b.Active.Width()*b.Active.Height())
	for y := b.Active.Min.Y; y < b.Active.Max.Y; y++ {
		for x := b.Active.Min.X; x < b.Active.Max.X; x++ {
			idx = append(idx, y*b.Width+x)
		}
	}
	return idx
}

// FindNextTimeStep finds the neuron with the largest potential among
// leaders (max_charge > POT_THRESHOLD) in the active region. If the
// leading leader has already reached threshold, returns 0 — there is
// nothing to wait for, the caller should fire immediately. Otherwise
// returns the analytic time for that neuron to reach threshold under
// exponential charging toward config.CHARGING_LEADER.
func (b *Base) FindNextTimeStep() float64 {
	found := false
	maxPot := 0.0
	for _, idx := range b.activeIndices() {
		n := &b.Neurons[idx]
		if !n.IsLeader(b.params.POT_THRESHOLD) {
			continue
		}
		if !found || n.Pot > maxPot {
			maxPot = n.Pot
			found = true
		}
	}
	if !found {
		return 0
	}
	if maxPot >= b.params.POT_THRESHOLD {
		return 0
	}

	L := b.params.CHARGING_LEADER
	tau := b.params.TAU
	thr := b.params.POT_THRESHOLD
	return tau*math.Log(L/(L-thr)) - tau*math.Log(L/(L-maxPot))
}

// AdvanceTime integrates every neuron in the active region forward by
// delta simulation time under the exponential charging law
// pot' = max_charge - exp(-delta/TAU) * (max_charge - max(pot,0)).
// A zero delta is a no-op.
func (b *Base) AdvanceTime(delta float64) {
	if delta == 0 {
		return
	}
	e := math.Exp(-delta / b.params.TAU)
	for _, idx := range b.activeIndices() {
		n := &b.Neurons[idx]
		if n.Pot < 0 {
			n.Pot = 0
		}
		n.Pot = n.MaxCharge - e*(n.MaxCharge-n.Pot)
	}
}

// IsCycleCompleted reports whether every leader neuron in the active
// region has spiked at least once during the current cycle.
func (b *Base) IsCycleCompleted() bool {
	for _, idx := range b.activeIndices() {
		n := &b.Neurons[idx]
		if n.IsLeader(b.params.POT_THRESHOLD) && !n.CycleSpiked {
			return false
		}
	}
	return true
}

// ResetCycle clears CycleSpiked on every neuron in the layer, ahead of
// the next cycle.
func (b *Base) ResetCycle() {
	for i := range b.Neurons {
		b.Neurons[i].CycleSpiked = false
	}
}

// GlobalInhibition subtracts GLOBAL_INHIB_VAL from every neuron's
// potential and clamps the result at zero. Applied once per cascade,
// after FireNeurons has drained all chain reactions.
func (b *Base) GlobalInhibition() {
	for i := range b.Neurons {
		n := &b.Neurons[i]
		n.Pot -= b.params.GLOBAL_INHIB_VAL
		if n.Pot < 0 {
			n.Pot = 0
		}
	}
}

// GetCoefStabilization is the mean absolute inter-spike-interval change
// across neurons that have spiked more recently than minPhase. Returns
// 1.0 (maximally unstable) if no neuron qualifies. Lower values signal
// convergence; the segmentation driver loop treats anything below 0.4
// as converged.
func (b *Base) GetCoefStabilization(minPhase int) float64 {
	var deltas []float64
	for i := range b.Neurons {
		n := &b.Neurons[i]
		if n.Phase > minPhase {
			deltas = append(deltas, math.Abs(n.DeltaPeriod))
		}
	}
	if len(deltas) == 0 {
		return 1.0
	}
	return stat.Mean(deltas, nil)
}

// SetPropagateCallback installs the outbound spike hook invoked once per
// spike during FireNeurons. Pass nil to remove it.
func (b *Base) SetPropagateCallback(cb SpikeCallback) { b.callback = cb }

// GetNbCycles, GetNbCascades, and GetNbSpikes expose the run counters
// named in spec.md section 6's public query surface.
func (b *Base) GetNbCycles() uint32   { return b.NCycles }
func (b *Base) GetNbCascades() uint32 { return b.NCascades }
func (b *Base) GetNbSpikes() uint64   { return b.NSpikes }

// NeuronCount returns the total number of neurons in the layer's grid
// (Width*Height), independent of the active region. The coupler uses
// this to sweep every candidate neuron in the opposite layer when a
// spike crosses, since the two coupled layers need not be the same
// size or have features at corresponding flat indices.
func (b *Base) NeuronCount() int { return len(b.Neurons) }
