/*
=================================================================================
LAYER CAPABILITY CONTRACT
=================================================================================

The original C++ implementation expresses NeuralLayer -> SegmentationLayer
-> PixelLayer as a class hierarchy: an abstract NeuralLayer declares pure
virtual ComputeWeigth/PropagateSpike/PropagateLabel, SegmentationLayer
implements the intra-layer propagation generically, and PixelLayer
overrides only the weight function to plug in a pixel-grayscale feature.

This package reimplements that as a capability contract instead of
inheritance, per spec.md's design notes: Base holds the state every
layer kind shares (the neuron grid, counters, the active region, the
outbound spike hook); Segmentation embeds Base and implements the
shared intra-layer propagation machinery; Pixel embeds Segmentation and
supplies only the one capability that actually varies between layer
kinds in this system — how a feature difference between two neurons
becomes a connection weight.

WeightComputer is installed on a Segmentation at construction time by
whichever concrete layer built it (Pixel sets it to itself), so
Segmentation's shared Propagate() logic can call through to the
feature-specific weight without Segmentation needing to know Pixel
exists. This is the one genuine dispatch point in the hierarchy: every
other capability (PropagateSpike, PropagateLabel, MergeSegments) has
exactly one implementation in this system and lives directly on
Segmentation.
=================================================================================
*/
package layer

import "github.com/SynapticNetworks/odlm/neuron"

// RelPos identifies a neuron's position relative to another, in the
// 8-neighbor grid topology used by Segmentation.PropagateSpike. Matches
// the original's NeuronRelPos ordering for fidelity.
type RelPos int

const (
	Left RelPos = iota
	Right
	Up
	Down
	UpRight
	DownLeft
	UpLeft
	DownRight
)

// WeightComputer turns a pair of neuron ids plus their relative grid
// position into a connection weight. The only capability that varies
// across the concrete layer kinds in this system: PixelLayer computes
// it from the absolute grayscale difference between the two pixels;
// a hypothetical future feature-layer (e.g. edge orientation) would
// plug in here without touching Segmentation's propagation logic.
type WeightComputer interface {
	ComputeWeight(srcID, dstID uint32, pos RelPos) float64
}

// LabelPropagator assigns a new label to a neuron at a given cascade
// phase. Segmentation implements it. The coupler package does not use
// this interface: cross-layer label delivery goes through
// coupler.CoupledLayer's CrossStimulate.
type LabelPropagator interface {
	PropagateLabel(n *neuron.Neuron, label uint32, phase int)
}

// SpikeCallback is the outbound spike hook a layer invokes once per
// spike during FireNeurons, after intra-layer propagation and before
// Spike() is called on the firing neuron. Installed via
// SetPropagateCallback; a LayerCoupler owns the closure, the layer only
// holds this function value — no back-pointer to the coupler exists.
type SpikeCallback func(neuronID, layerID uint32, phase int)
