package neuron

import (
	"testing"

	"github.com/SynapticNetworks/odlm/types"
	"github.com/stretchr/testify/assert"
)

func TestNew_InitialState(t *testing.T) {
	n := New(5, types.Point{X: 1, Y: 1}, 0.25, 1.01, 42)

	assert.Equal(t, -1, n.Phase)
	assert.Equal(t, uint32(5), n.ID)
	assert.Equal(t, uint32(42), n.Label)
	assert.Equal(t, uint32(0), n.NbSpikes)
	assert.False(t, n.CycleSpiked)
	assert.False(t, n.IsSegmented)
}

func TestSpike_FirstSpikeDoesNotComputeInterval(t *testing.T) {
	n := New(0, types.Point{}, 0, 1.01, 1)

	n.Spike(3, 10.0)

	assert.Equal(t, 3, n.Phase)
	assert.Equal(t, uint32(1), n.NbSpikes)
	assert.True(t, n.CycleSpiked)
	assert.Equal(t, 10.0, n.LastSpike)
	assert.Equal(t, 0.0, n.FirePeriod)
	assert.Less(t, n.Pot, 0.0)
}

func TestSpike_SecondSpikeUpdatesPeriodAndDelta(t *testing.T) {
	n := New(0, types.Point{}, 0, 1.01, 1)

	n.Spike(1, 10.0)
	n.Spike(2, 15.0)

	assert.Equal(t, 5.0, n.FirePeriod)
	assert.Equal(t, 0.0-5.0, n.DeltaPeriod)

	n.Spike(3, 17.0)
	assert.Equal(t, 2.0, n.FirePeriod)
	assert.Equal(t, 5.0-2.0, n.DeltaPeriod)
}

func TestSpike_IncrementsNbSpikesEachCall(t *testing.T) {
	n := New(0, types.Point{}, 0, 1.01, 1)
	for i := 0; i < 5; i++ {
		n.Spike(i, float64(i))
	}
	assert.Equal(t, uint32(5), n.NbSpikes)
}

func TestIsLeader(t *testing.T) {
	leader := New(0, types.Point{}, 0, 1.01, 1)
	follower := New(1, types.Point{}, 0, 0.5, 2)

	assert.True(t, leader.IsLeader(1.0))
	assert.False(t, follower.IsLeader(1.0))
}

func TestEqual_IgnoresPositionComparesEverythingElse(t *testing.T) {
	a := New(3, types.Point{X: 1, Y: 1}, 0.5, 1.0, 7)
	b := New(3, types.Point{X: 9, Y: 9}, 0.5, 1.0, 7)
	assert.True(t, a.Equal(b))

	b.Pot = 0.6
	assert.False(t, a.Equal(b))
}
