package layer

import (
	"testing"

	"github.com/SynapticNetworks/odlm/config"
	"github.com/SynapticNetworks/odlm/identity"
	"github.com/SynapticNetworks/odlm/imagedata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These are the end-to-end "seed test" scenarios: full SegmentLayer runs
// over small but realistic images, checked against the literal outcomes
// named for them, as opposed to the law- and edge-case-level unit tests
// elsewhere in this package.

func TestSegmentLayer_SolidImageConvergesToOneLabelQuickly(t *testing.T) {
	img := flatImage(8, 8, 128)
	pixelParams := config.PixelsParams{
		PIXEL_HOMOG_DELTA:     55,
		PIXEL_HOMOG_RADIUS:    4,
		PIXEL_HOMOG_THRESHOLD: 0.5,
		PIXEL_RANDOM_INIT:     false,
	}
	sim := config.SimulationParams{SEG_MAX_CYCLES: 50, MIN_SEGMENT_SIZE: 1}
	p := NewPixel(img, testNeuronParams(), testConn(), sim, pixelParams, identity.New())

	for i := range p.Neurons {
		require.Equal(t, testNeuronParams().CHARGING_LEADER, p.Neurons[i].MaxCharge, "neuron %d must be a leader", i)
	}

	p.SegmentLayer()

	label := p.Neurons[0].Label
	assert.NotZero(t, label)
	for i := range p.Neurons {
		assert.Equal(t, label, p.Neurons[i].Label, "neuron %d should share the single converged label", i)
	}
	assert.LessOrEqual(t, p.GetNbCycles(), uint32(2))
}

func TestSegmentLayer_TwoHalfPlanesSplitAtBoundary(t *testing.T) {
	width, height := 16, 16
	gray := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				gray[y*width+x] = 0
			} else {
				gray[y*width+x] = 255
			}
		}
	}
	img, err := imagedata.NewFromGray(width, height, gray)
	require.NoError(t, err)

	// Radius 4 means a column's homogeneity window reaches across the
	// x=8 boundary for any column within 4 cells of it, but even columns
	// 7 and 8 keep 5 of their 9 window columns on their own side, so
	// their similar fraction stays above 0.5 and every neuron is a
	// leader. Columns 0..3 and 12..15 have windows entirely on one side
	// of the boundary; only those columns are checked below.
	pixelParams := config.PixelsParams{
		PIXEL_HOMOG_DELTA:     55,
		PIXEL_HOMOG_RADIUS:    4,
		PIXEL_HOMOG_THRESHOLD: 0.5,
		PIXEL_RANDOM_INIT:     false,
	}
	sim := config.SimulationParams{SEG_MAX_CYCLES: 50, MIN_SEGMENT_SIZE: 1}
	p := NewPixel(img, testNeuronParams(), testConn(), sim, pixelParams, identity.New())
	p.SegmentLayer()

	leftID := uint32(8*width + 1)
	rightID := uint32(8*width + 14)
	leftLabel := p.Neurons[leftID].Label
	rightLabel := p.Neurons[rightID].Label
	require.Greater(t, p.Neurons[leftID].Phase, 0, "deep-left neuron should have fired and converged")
	require.Greater(t, p.Neurons[rightID].Phase, 0, "deep-right neuron should have fired and converged")
	assert.NotEqual(t, leftLabel, rightLabel, "the two half-planes must not share a label")

	labels := map[uint32]bool{}
	for y := 0; y < height; y++ {
		for x := 0; x <= 3; x++ {
			n := &p.Neurons[y*width+x]
			if n.Phase > 0 {
				labels[n.Label] = true
				assert.Equal(t, leftLabel, n.Label, "neuron (%d,%d) deep in the left plane", x, y)
			}
		}
		for x := 12; x < width; x++ {
			n := &p.Neurons[y*width+x]
			if n.Phase > 0 {
				labels[n.Label] = true
				assert.Equal(t, rightLabel, n.Label, "neuron (%d,%d) deep in the right plane", x, y)
			}
		}
	}
	assert.LessOrEqual(t, len(labels), 2, "expected at most two distinct labels deep within the two half-planes")
}

func TestSegmentLayer_CheckerboardNeverStabilizesWithinCycleCap(t *testing.T) {
	width, height := 8, 8
	tile := 2
	gray := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if ((x/tile)+(y/tile))%2 == 0 {
				gray[y*width+x] = 0
			} else {
				gray[y*width+x] = 255
			}
		}
	}
	img, err := imagedata.NewFromGray(width, height, gray)
	require.NoError(t, err)

	// A homogeneity radius of 2 keeps even grid-corner neurons (whose
	// radius-1 neighborhood can sit entirely inside one tile) from
	// spuriously qualifying as leaders: at radius 2 a corner's window
	// straddles at least one tile boundary in both directions, so its
	// similar/total ratio falls well short of the 0.9 threshold, same as
	// everywhere else on the board.
	pixelParams := config.PixelsParams{
		PIXEL_HOMOG_DELTA:     10,
		PIXEL_HOMOG_RADIUS:    2,
		PIXEL_HOMOG_THRESHOLD: 0.9,
		PIXEL_RANDOM_INIT:     false,
	}
	const cap = 5
	sim := config.SimulationParams{SEG_MAX_CYCLES: cap, MIN_SEGMENT_SIZE: 1}
	p := NewPixel(img, testNeuronParams(), testConn(), sim, pixelParams, identity.New())

	for i := range p.Neurons {
		assert.Equal(t, testNeuronParams().CHARGING_FOLLOWER, p.Neurons[i].MaxCharge, "neuron %d should be a follower, not a leader", i)
	}

	p.SegmentLayer()

	assert.Equal(t, uint32(cap), p.GetNbCycles(), "with no leader ever spiking, the driver loop should run every cycle up to the cap")
	assert.Equal(t, uint64(0), p.GetNbSpikes())
	assert.Equal(t, 1.0, p.GetCoefStabilization(0), "stabilization coefficient should never move off its unstable default")
}
