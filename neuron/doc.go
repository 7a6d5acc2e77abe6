/*
=================================================================================
INTEGRATE-AND-FIRE NEURON — ODLM CORE BUILDING BLOCK
=================================================================================

OVERVIEW:
This package implements the integrate-and-fire neuron used by the
Oscillatory Dynamic Link Matcher (ODLM) segmentation network. Unlike the
message-passing, goroutine-per-cell neurons elsewhere in this
organization's other neural packages, a Neuron here is a plain value
owned and mutated by its layer's single-threaded driver loop — there is
no per-neuron goroutine, channel, or independent lifecycle. The grid
neuron's entire job is to accumulate a membrane potential toward a
target charge and, once above threshold, spike and carry a segment
label.

BIOLOGICAL INSPIRATION:
- TEMPORAL INTEGRATION: the membrane potential charges exponentially
  toward max_charge over simulated time, not in discrete per-input
  jumps.
- THRESHOLD FIRING: once potential crosses POT_THRESHOLD the neuron
  spikes — an all-or-nothing event recorded as a phase index.
- LEADER / FOLLOWER: a neuron whose max_charge exceeds threshold
  self-oscillates (a "leader"); one whose max_charge sits below
  threshold can only be driven above it by an incoming spike from a
  neighbor (a "follower"). Homogeneous image regions produce leaders;
  textured regions produce followers that synchronize to their
  neighbors instead of firing independently.
- LABEL SYNCHRONIZATION: a neuron's label identifies the segment it
  currently belongs to. Labels start unique per neuron and converge as
  neighbors propagate labels into each other during firing.

This package only models the neuron itself (potential, phase, label,
spike bookkeeping). The grid topology, propagation rules, and the
simulation driver loop live in the layer package, which owns a slice of
these neurons and advances them in lockstep.
=================================================================================
*/
package neuron
