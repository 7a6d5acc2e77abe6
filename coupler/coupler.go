/*
=================================================================================
LAYER COUPLER — CROSS-LAYER SPIKE COUPLING
=================================================================================

Coupler binds two layers so that a spike in one contributes potential,
and potentially a label, to every neuron in the other. The
original LayerCoupler declares ComputeWeigth with a default body shared
by every coupler subclass, and ComputeFeatDiff as the one pure-virtual
method that actually varies. This package mirrors that split with
composition instead of inheritance: computeWeight is a method on
Coupler itself (never overridden), and FeatDiffFunc is a constructor
argument supplying the one thing that does vary — where the feature
difference between a pair of cross-layer neurons comes from.
=================================================================================
*/
package coupler

import (
	"math"

	"github.com/SynapticNetworks/odlm/config"
	"github.com/SynapticNetworks/odlm/layer"
)

// CoupledLayer is the capability surface Coupler needs from a layer: the
// outbound spike hook to listen on, and the inbound cross-layer
// stimulation entry point to deliver through. layer.Segmentation (and,
// by embedding, layer.Pixel) implements it.
type CoupledLayer interface {
	SetPropagateCallback(cb layer.SpikeCallback)
	CrossStimulate(neuronID uint32, deltaPot float64, incomingLabel uint32, phase int)
	LabelOf(neuronID uint32) uint32
	NeuronCount() int
}

// FeatDiffFunc computes the feature difference backing the cross-layer
// connection weight between neuron n1ID in layer 1 and neuron n2ID in
// layer 2. The two ids need not name the same grid position.
type FeatDiffFunc func(n1ID, n2ID uint32) float64

// crossMessage is a queued cross-layer effect: one neuron's spike
// delivering a potential increment and candidate label to one neuron
// in the other layer. Because both layers here run
// sequentially within a cascade (see the concurrency notes in
// SPEC_FULL.md), a message is applied the instant it's queued — there is
// no concurrent writer on the target layer to race with. The type stays
// first-class so a future worker-per-layer scheduler only needs to
// change when the queue drains, not how the effect is modeled.
type crossMessage struct {
	target        CoupledLayer
	neuronID      uint32
	deltaPot      float64
	incomingLabel uint32
	phase         int
}

// Coupler is the cross-layer bridge between two layers. A spike in one
// layer is delivered to every neuron of the other; the two layers need
// not share grid dimensions.
type Coupler struct {
	l1, l2   CoupledLayer
	featDiff FeatDiffFunc
	matching config.MatchingParams

	queue []crossMessage
}

// New builds a Coupler wiring l1 and l2 together via featDiff and
// installs the outbound spike callbacks on both layers. A layer already
// carrying a callback (e.g. from a previous Coupler) has it replaced.
func New(l1, l2 CoupledLayer, featDiff FeatDiffFunc, matching config.MatchingParams) *Coupler {
	c := &Coupler{l1: l1, l2: l2, featDiff: featDiff, matching: matching}
	l1.SetPropagateCallback(c.onSpikeL1)
	l2.SetPropagateCallback(c.onSpikeL2)
	return c
}

// computeWeight is the shared logistic cross-layer weight formula,
// never varied by a coupler specialization:
// w(d) = MAX * (1 - sigmoid(SLOPE*(|d|-OFFSET))).
func (c *Coupler) computeWeight(featDiff float64) float64 {
	d := math.Abs(featDiff)
	x := c.matching.MATCHING_WEIGHT_SLOPE * (d - c.matching.MATCHING_WEIGHT_OFFSET)
	sigmoid := 1.0 / (1.0 + math.Exp(-x))
	return c.matching.MATCHING_WEIGHT_MAX * (1.0 - sigmoid)
}

func (c *Coupler) onSpikeL1(neuronID, layerID uint32, phase int) {
	// featDiff always takes (l1 id, l2 id); the spiking neuron is the l1
	// side here, so its id goes first.
	c.propagateAcross(c.l1, c.l2, neuronID, phase, func(dstID uint32) float64 {
		return c.featDiff(neuronID, dstID)
	})
}

func (c *Coupler) onSpikeL2(neuronID, layerID uint32, phase int) {
	// Mirror of onSpikeL1: the spiking neuron is the l2 side, so its id
	// goes second into featDiff, and each destination candidate (an l1
	// id) goes first.
	c.propagateAcross(c.l2, c.l1, neuronID, phase, func(dstID uint32) float64 {
		return c.featDiff(dstID, neuronID)
	})
}

// propagateAcross delivers a spike in src's neuronID to every neuron in
// dst, not just the one at the corresponding flat index: the coupler
// matches features that may sit at different positions between the two
// layers, so a spike must be weighed against every candidate. This is
// O(|src|*|dst|) per spike, same as the original LayerCoupler. diffTo
// computes the feature difference against a given destination id,
// already oriented (l1 id, l2 id) regardless of which layer spiked.
func (c *Coupler) propagateAcross(src, dst CoupledLayer, neuronID uint32, phase int, diffTo func(dstID uint32) float64) {
	label := src.LabelOf(neuronID)
	for dstID := 0; dstID < dst.NeuronCount(); dstID++ {
		w := c.computeWeight(diffTo(uint32(dstID)))
		msg := crossMessage{
			target:        dst,
			neuronID:      uint32(dstID),
			deltaPot:      w,
			incomingLabel: label,
			phase:         phase,
		}
		c.queue = append(c.queue, msg)
		c.apply(msg)
	}
}

// apply delivers a queued cross-layer message. Split out from
// propagateAcross so a future scheduler can drain the queue at a
// different point without duplicating delivery logic.
func (c *Coupler) apply(msg crossMessage) {
	msg.target.CrossStimulate(msg.neuronID, msg.deltaPot, msg.incomingLabel, msg.phase)
}

// PendingMessages returns the number of cross-layer messages queued so
// far (each one is applied as soon as it is queued), for diagnostics and
// tests. The count is never reset by this package — callers that care
// about "since last call" semantics should track their own offset.
func (c *Coupler) PendingMessages() int { return len(c.queue) }
