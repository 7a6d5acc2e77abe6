package neuron

import "github.com/SynapticNetworks/odlm/types"

// spikeResetPotential is the sentinel the membrane potential is driven
// to immediately after a spike. It is large and negative so that, even
// after this cascade's GlobalInhibition step subtracts a small fixed
// amount, the neuron cannot re-cross POT_THRESHOLD again within the same
// cascade before the next AdvanceTime recharges it from zero.
const spikeResetPotential = -1e5

// Neuron is one cell of a layer's grid. It has no goroutine, channel, or
// independent lifecycle: it is a value the owning layer mutates directly
// during FindNextTimeStep / AdvanceTime / FireNeurons / GlobalInhibition.
type Neuron struct {
	// Pot is the membrane potential. Invariant: non-negative immediately
	// after every AdvanceTime or GlobalInhibition call (both clamp before
	// returning); transiently negative only right after Spike, before
	// the next clamp.
	Pot float64

	// MaxCharge is the asymptote the potential charges toward. Set to
	// the layer's leader charge for neurons in homogeneous regions
	// (self-oscillating) or its follower charge otherwise (cannot spike
	// without being driven by an incoming propagated spike).
	MaxCharge float64

	// Phase is the cascade index at which this neuron most recently
	// spiked. Starts at -1 (never spiked). Shared phase across neurons
	// is the observable signature of temporal synchronization.
	Phase int

	// ID is this neuron's flat index into its layer: Y*width + X.
	// Stable for the neuron's lifetime.
	ID uint32

	// Pos is this neuron's grid coordinate, consistent with ID.
	Pos types.Point

	// Label identifies the segment this neuron currently belongs to.
	// Unique per neuron at construction (drawn from a process-wide
	// allocator so two layers never collide), converges via label
	// propagation during firing.
	Label uint32

	// NbSpikes is this neuron's lifetime spike count.
	NbSpikes uint32

	// CycleSpiked is true once this neuron has spiked during the
	// current cycle; reset to false at every cycle boundary.
	CycleSpiked bool

	// IsSegmented is true once this neuron has ever received a label
	// transfer from a neighbor (as opposed to still carrying its
	// construction-time unique label).
	IsSegmented bool

	// LastSpike is the simulation time of the most recent spike.
	LastSpike float64
	// FirePeriod is the simulated interval between the two most recent
	// spikes.
	FirePeriod float64
	// DeltaPeriod is the change in FirePeriod between the last two
	// inter-spike intervals; GetCoefStabilization averages |DeltaPeriod|
	// across recently-active neurons to detect convergence.
	DeltaPeriod float64
}

// New builds a neuron at grid position pos with flat index id and the
// given initial potential, max charge, and label. Phase starts at -1
// (never spiked); all spike-history fields start at zero.
func New(id uint32, pos types.Point, pot, maxCharge float64, label uint32) Neuron {
	return Neuron{
		Pot:       pot,
		MaxCharge: maxCharge,
		Phase:     -1,
		ID:        id,
		Pos:       pos,
		Label:     label,
	}
}

// Spike records a firing event at the given cascade phase and
// simulation time. If the neuron has fired before, it first updates the
// inter-spike interval bookkeeping (FirePeriod/DeltaPeriod) from the gap
// since LastSpike. It then resets Pot to a large negative sentinel so
// the neuron cannot refire within this cascade, advances Phase,
// increments NbSpikes, and marks CycleSpiked.
func (n *Neuron) Spike(phase int, simTime float64) {
	if n.NbSpikes > 0 {
		interval := simTime - n.LastSpike
		n.DeltaPeriod = n.FirePeriod - interval
		n.FirePeriod = interval
	}
	n.LastSpike = simTime

	n.Pot = spikeResetPotential
	n.Phase = phase
	n.NbSpikes++
	n.CycleSpiked = true
}

// IsLeader reports whether this neuron's max charge exceeds the given
// spike threshold, i.e. whether it can spike on its own without an
// incoming propagated spike driving it over threshold.
func (n *Neuron) IsLeader(potThreshold float64) bool {
	return n.MaxCharge > potThreshold
}

// Equal is structural equality over the fields that define a neuron's
// observable simulation state: potential, phase, max charge, identity,
// label, and spike bookkeeping. Position is implied by ID and is not
// compared separately.
func (n Neuron) Equal(o Neuron) bool {
	return n.Pot == o.Pot &&
		n.Phase == o.Phase &&
		n.MaxCharge == o.MaxCharge &&
		n.ID == o.ID &&
		n.Label == o.Label &&
		n.NbSpikes == o.NbSpikes &&
		n.CycleSpiked == o.CycleSpiked &&
		n.IsSegmented == o.IsSegmented
}
