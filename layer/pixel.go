/*
=================================================================================
PIXEL LAYER — GRAYSCALE-FEATURE SEGMENTATION LAYER
=================================================================================

Pixel is the concrete layer kind this system actually runs: it embeds
Segmentation and supplies the one thing Segmentation's shared machinery
needs from a feature-bearing layer — a weight function turning a
grayscale difference into a connection weight — plus the homogeneity
test that decides, at construction, which neurons start as leaders.
=================================================================================
*/
package layer

import (
	"math"
	"math/rand"

	"github.com/SynapticNetworks/odlm/config"
	"github.com/SynapticNetworks/odlm/identity"
	"github.com/SynapticNetworks/odlm/imagedata"
	"github.com/SynapticNetworks/odlm/neuron"
	"github.com/SynapticNetworks/odlm/types"
)

// Pixel is a Segmentation layer whose feature is a single grayscale
// value per neuron, copied 1:1 from a source image.
type Pixel struct {
	Segmentation

	params config.PixelsParams
	gray   []uint8
}

// NewPixel builds a Pixel layer the size of img, one neuron per pixel.
// Each neuron's initial max charge is set by homogeneity (leader if the
// pixel sits in a sufficiently flat neighborhood, follower otherwise),
// its initial potential by PIXEL_RANDOM_INIT, and its label by drawing
// a fresh globally-unique label from alloc (or the process-wide default
// allocator, if alloc is nil).
func NewPixel(img *imagedata.ImageData, neuronParams config.NeuronParams, conn config.NeuralConnexionParams, sim config.SimulationParams, pixelParams config.PixelsParams, alloc *identity.Allocator) *Pixel {
	if alloc == nil {
		alloc = identity.Default()
	}

	p := &Pixel{
		Segmentation: newSegmentation(img.Width, img.Height, img, neuronParams, conn, sim, alloc),
		params:       pixelParams,
		gray:         img.Gray,
	}
	// The self-reference trick: Segmentation's shared Propagate logic
	// calls through p.weighter, which is p itself. This is the only
	// dynamic dispatch point in the layer hierarchy.
	p.weighter = p

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			id := uint32(y*img.Width + x)
			n := &p.Neurons[id]
			*n = neuron.New(id, types.Point{X: x, Y: y}, 0, 0, alloc.NextLabel())

			if p.isHomogeneous(x, y) {
				n.MaxCharge = neuronParams.CHARGING_LEADER
			} else {
				n.MaxCharge = neuronParams.CHARGING_FOLLOWER
			}
			n.Pot = p.initialPotential(x, y, n.MaxCharge)
		}
	}

	return p
}

// isHomogeneous reports whether the PIXEL_HOMOG_RADIUS neighborhood
// around (x,y) is similar enough, pixel-by-pixel, for the grid square
// at (x,y) to lead its own oscillation rather than wait to be driven by
// a neighbor.
func (p *Pixel) isHomogeneous(x, y int) bool {
	radius := int(p.params.PIXEL_HOMOG_RADIUS)
	delta := int(p.params.PIXEL_HOMOG_DELTA)
	center := int(p.gray[y*p.Width+x])

	total := 0
	similar := 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if !p.IsInLayer(nx, ny) {
				continue
			}
			total++
			diff := int(p.gray[ny*p.Width+nx]) - center
			if diff < 0 {
				diff = -diff
			}
			if diff <= delta {
				similar++
			}
		}
	}
	if total == 0 {
		return true
	}
	return float64(similar)/float64(total) > p.params.PIXEL_HOMOG_THRESHOLD
}

// initialPotential seeds a neuron's starting membrane potential, either
// uniformly at random in [0, maxCharge) or proportional to the pixel's
// own grayscale value, per PIXEL_RANDOM_INIT.
func (p *Pixel) initialPotential(x, y int, maxCharge float64) float64 {
	if p.params.PIXEL_RANDOM_INIT {
		return rand.Float64() * maxCharge
	}
	gray := float64(p.gray[y*p.Width+x]) / 255.0
	return gray * maxCharge
}

// ComputeWeight implements WeightComputer: the feature difference
// between two pixel neurons is the absolute difference of their
// grayscale values, fed through Segmentation's shared logistic weight
// shape. pos is unused — the pixel feature is isotropic, unlike a
// hypothetical oriented-edge feature that would weight diagonals
// differently from axis neighbors.
func (p *Pixel) ComputeWeight(srcID, dstID uint32, pos RelPos) float64 {
	diff := math.Abs(float64(p.gray[srcID]) - float64(p.gray[dstID]))
	return p.weight(diff)
}

// Gray returns the grayscale value backing neuron id, for collaborators
// (LayerCoupler's PixelCoupler specialization) that need a layer's raw
// feature without reaching into unexported state.
func (p *Pixel) Gray(id uint32) uint8 { return p.gray[id] }
