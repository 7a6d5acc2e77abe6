// Package identity hands out the process-wide monotonic ids the ODLM
// simulator needs: one counter for layer ids, one for neuron labels.
//
// The original C++ implementation (NeuralLayer.h) keeps these as private
// static members (layer_id_counter_, label_counter_) shared by every
// NeuralLayer in the process. That works but makes every layer an
// implicit global-state participant, which is awkward to test in
// isolation. This package keeps the same "process-wide by default"
// behavior through Default(), while making the counters an explicit,
// injectable value (Allocator) so a test can build a scoped one instead.
package identity

import "sync/atomic"

// Allocator issues unique, increasing layer ids and neuron labels.
// The zero value is ready to use. Safe for concurrent use.
type Allocator struct {
	nextLayer atomic.Uint32
	nextLabel atomic.Uint32
}

// New returns a fresh, independent Allocator whose counters start at 1.
// Label 0 is never issued; it is reserved (by convention elsewhere in
// this repository) to mean "no label assigned", even though in practice
// every neuron always receives a label at construction.
func New() *Allocator {
	return &Allocator{}
}

// NextLayerID returns the next unique layer id, starting at 1.
func (a *Allocator) NextLayerID() uint32 {
	return a.nextLayer.Add(1)
}

// NextLabel returns the next unique neuron label, starting at 1.
func (a *Allocator) NextLabel() uint32 {
	return a.nextLabel.Add(1)
}

var defaultAllocator = New()

// Default returns the package-level Allocator used by layer constructors
// that are not given an explicit one. This mirrors the original's static
// counters: every layer built without its own Allocator shares labels
// and layer ids with every other layer in the process, which is exactly
// what "labels are globally unique at initialization" (spec data model)
// requires when two layers are matched against each other.
func Default() *Allocator {
	return defaultAllocator
}
