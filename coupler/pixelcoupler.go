package coupler

import (
	"math"

	"github.com/SynapticNetworks/odlm/config"
	"github.com/SynapticNetworks/odlm/layer"
)

// NewPixelCoupler builds a Coupler between two Pixel layers whose
// feature difference is the absolute grayscale difference between any
// pixel in l1 and any pixel in l2 — the cross-layer analogue of Pixel's
// own intra-layer ComputeWeight. Neuron ids in the two layers need not
// name corresponding grid cells; the coupler sweeps every pair.
func NewPixelCoupler(l1, l2 *layer.Pixel, matching config.MatchingParams) *Coupler {
	featDiff := func(n1ID, n2ID uint32) float64 {
		return math.Abs(float64(l1.Gray(n1ID)) - float64(l2.Gray(n2ID)))
	}
	return New(l1, l2, featDiff, matching)
}
