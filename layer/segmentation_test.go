package layer

import (
	"testing"

	"github.com/SynapticNetworks/odlm/config"
	"github.com/SynapticNetworks/odlm/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConn() config.NeuralConnexionParams {
	return config.NeuralConnexionParams{SEG_WEIGHT_MAX: 0.01, SEG_WEIGHT_SLOPE: 1.2, SEG_WEIGHT_OFFSET: 0.0}
}

func testSim() config.SimulationParams {
	return config.SimulationParams{
		SEG_MAX_CASCADES: 0,
		SEG_MAX_CYCLES:   50,
		SEG_MERGE_DELTA:  2.0,
		MIN_SEGMENT_SIZE: 2,
	}
}

func newTestSegmentation(t *testing.T, width, height int) *Segmentation {
	t.Helper()
	img := flatImage(width, height, 128)
	alloc := identity.New()
	s := newSegmentation(width, height, img, testNeuronParams(), testConn(), testSim(), alloc)
	s.weighter = stubWeighter{}
	return &s
}

func TestWeight_ZeroDifferenceIsMaximum(t *testing.T) {
	s := newTestSegmentation(t, 1, 1)
	assert.InDelta(t, s.conn.SEG_WEIGHT_MAX/2, s.weight(0), 1e-9)
}

func TestWeight_DecreasesWithDifference(t *testing.T) {
	s := newTestSegmentation(t, 1, 1)
	assert.Greater(t, s.weight(0), s.weight(10))
}

func TestValidOffsets_CornerHasThreeNeighbors(t *testing.T) {
	offsets := validOffsets(0, 0, 5, 5)
	assert.ElementsMatch(t, []RelPos{Right, Down, DownRight}, offsets)
}

func TestValidOffsets_LastRowAndColumnExcludedByEdgeGuard(t *testing.T) {
	// width=5,height=5: col<3 for right, row<3 for down.
	// At col=3,row=3 (one before the literal last index, which is 4),
	// right/down are already excluded by the -2 guard.
	offsets := validOffsets(3, 3, 5, 5)
	assert.NotContains(t, offsets, Right)
	assert.NotContains(t, offsets, Down)
	assert.Contains(t, offsets, Left)
	assert.Contains(t, offsets, Up)
}

func TestPropagateLabel_SetsLabelPhaseAndSegmentedFlag(t *testing.T) {
	s := newTestSegmentation(t, 1, 1)
	n := &s.Neurons[0]
	s.PropagateLabel(n, 42, 3)
	assert.Equal(t, uint32(42), n.Label)
	assert.Equal(t, 3, n.Phase)
	assert.True(t, n.IsSegmented)
}

func TestPropagate_WeightBelowThresholdDoesNotRelabel(t *testing.T) {
	s := newTestSegmentation(t, 2, 1)
	s.weighter = constWeighter(0.1)
	s.Neurons[0].Label = 1
	s.Neurons[1].Label = 2
	s.Neurons[1].Pot = 0

	s.propagate(0, Right, 0)
	assert.Equal(t, uint32(2), s.Neurons[1].Label)
	assert.InDelta(t, 0.1, s.Neurons[1].Pot, 1e-9)
}

func TestPropagate_WeightAboveThresholdRelabels(t *testing.T) {
	s := newTestSegmentation(t, 2, 1)
	s.weighter = constWeighter(1.5)
	s.Neurons[0].Label = 1
	s.Neurons[1].Label = 2
	s.Neurons[1].Pot = 0

	s.propagate(0, Right, 7)
	assert.Equal(t, uint32(1), s.Neurons[1].Label)
	assert.Equal(t, 7, s.Neurons[1].Phase)
}

func TestPropagate_SameLabelNeverRelabeledOrMerged(t *testing.T) {
	s := newTestSegmentation(t, 2, 1)
	s.weighter = constWeighter(1.5)
	s.Neurons[0].Label = 9
	s.Neurons[1].Label = 9
	s.Neurons[1].Phase = -1

	s.propagate(0, Right, 3)
	assert.Equal(t, -1, s.Neurons[1].Phase)
}

func TestMergeSegments_RelabelsAndForcesThreshold(t *testing.T) {
	s := newTestSegmentation(t, 3, 1)
	s.Neurons[0].Label = 1
	s.Neurons[1].Label = 2
	s.Neurons[2].Label = 2

	s.MergeSegments(1, 2, 5)
	for _, n := range s.Neurons[1:] {
		assert.Equal(t, uint32(1), n.Label)
		assert.Equal(t, 5, n.Phase)
		assert.Equal(t, s.params.POT_THRESHOLD, n.Pot)
	}
}

func TestTriggerSameLabelNeurons_ForcesSiblingsOnce(t *testing.T) {
	s := newTestSegmentation(t, 3, 1)
	s.Neurons[0].Label = 1
	s.Neurons[0].Phase = 4
	s.Neurons[1].Label = 1
	s.Neurons[1].Phase = 2
	s.Neurons[2].Label = 9
	s.Neurons[2].Phase = 2

	s.triggerSameLabelNeurons(0, 4)
	assert.Equal(t, 2, s.Neurons[1].Phase) // 0 already at phase 4, self is no-op guard applies to id's own phase

	s.Neurons[0].Phase = 2
	s.triggerSameLabelNeurons(0, 4)
	assert.Equal(t, 4, s.Neurons[1].Phase)
	assert.Equal(t, s.params.POT_THRESHOLD, s.Neurons[1].Pot)
	assert.Equal(t, 2, s.Neurons[2].Phase) // different label untouched
}

func TestFireNeurons_ChainReactionWithinOnePassGoesForwardOnly(t *testing.T) {
	// width=4 so the col<width-2 edge guard only ever excludes the very
	// last column (col 3) from receiving a rightward propagation, which
	// is exactly what this test wants to observe: neurons 0,1,2 chain
	// within a single pass, neuron 3 is never reached.
	s := newTestSegmentation(t, 4, 1)
	s.weighter = constWeighter(1.5) // always above threshold
	s.Neurons[0].Label = 1
	s.Neurons[1].Label = 2
	s.Neurons[2].Label = 3
	s.Neurons[3].Label = 4
	s.Neurons[0].Pot = 1.0
	s.Neurons[0].MaxCharge = 1.01
	s.Neurons[1].MaxCharge = 1.01
	s.Neurons[2].MaxCharge = 1.01

	count := s.FireNeurons(0, 0)
	// neuron 0 fires, pushes 1 over threshold in the same pass (forward),
	// which then also fires and pushes 2 over threshold, which fires too.
	// Neuron 3 never receives a propagation: col 2's right neighbor is
	// excluded by the col<width-2 edge guard.
	assert.Equal(t, 3, count)
	assert.Equal(t, -1, s.Neurons[3].Phase)
}

func TestFireNeurons_ReturnsZeroWhenNoneAtThreshold(t *testing.T) {
	s := newTestSegmentation(t, 2, 1)
	assert.Equal(t, 0, s.FireNeurons(0, 0))
}

func TestCountSegments_GroupsByLabelIgnoringPhaseZero(t *testing.T) {
	s := newTestSegmentation(t, 2, 2)
	s.Neurons[0].Label = 1
	s.Neurons[0].Phase = 1
	s.Neurons[1].Label = 1
	s.Neurons[1].Phase = 1
	s.Neurons[2].Label = 2
	s.Neurons[2].Phase = 0 // unsegmented, excluded
	s.Neurons[3].Label = 3
	s.Neurons[3].Phase = 2

	segs := s.CountSegments()
	total := 0
	for _, seg := range segs {
		total += seg.NbNeuron
	}
	assert.Equal(t, 3, total)
}

func TestClearSmallSegments_UnlabelsBelowMinimum(t *testing.T) {
	s := newTestSegmentation(t, 3, 1)
	s.sim.MIN_SEGMENT_SIZE = 2
	s.Neurons[0].Label = 1
	s.Neurons[0].Phase = 1
	s.Neurons[1].Label = 2
	s.Neurons[1].Phase = 1
	s.Neurons[2].Label = 2
	s.Neurons[2].Phase = 1

	s.ClearSmallSegments()
	assert.Equal(t, 0, s.Neurons[0].Phase)
	assert.Equal(t, 1, s.Neurons[1].Phase)
	assert.Equal(t, 1, s.Neurons[2].Phase)
}

func TestSegmentLayer_SingleLeaderGridTerminates(t *testing.T) {
	s := newTestSegmentation(t, 1, 1)
	s.Neurons[0].MaxCharge = 1.01
	s.Neurons[0].Pot = 0.9

	s.SegmentLayer()
	require.LessOrEqual(t, s.NCascades, uint32(1000))
	assert.Greater(t, s.NSpikes, uint64(0))
}

type constWeighter float64

func (w constWeighter) ComputeWeight(srcID, dstID uint32, pos RelPos) float64 { return float64(w) }
