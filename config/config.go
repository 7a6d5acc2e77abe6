// Package config is the process-wide parameter bag for an ODLM run
// (component C6 of the spiking segmentation system).
//
// A Config is read once per run and its sections are then passed by
// value into every layer constructor; each layer keeps its own copy of
// them from construction time, so mutating a *Config afterward never
// affects a simulation already in progress.
package config

// Config groups every tunable the ODLM simulator exposes, organized the
// same way the persisted INI file sections are (see ini.go for the file
// format). Field names match the spec's key names so the INI
// marshal/unmarshal code in ini.go can map between them mechanically.
type Config struct {
	Neuron           NeuronParams
	NeuralConnexion  NeuralConnexionParams
	SimulationParams SimulationParams
	InputImageParams InputImageParams
	PixelsParams     PixelsParams
	MatchingParams   MatchingParams
}

// NeuronParams controls the integrate-and-fire dynamics shared by every
// neuron in every layer.
type NeuronParams struct {
	// POT_THRESHOLD is the membrane potential a neuron must reach to
	// spike.
	POT_THRESHOLD float64
	// TAU is the membrane time constant used in the exponential
	// charging law.
	TAU float64
	// GLOBAL_INHIB_VAL is subtracted from every neuron's potential once
	// per cascade, after firing drains.
	GLOBAL_INHIB_VAL float64
	// CHARGING_LEADER is the max charge assigned to neurons that
	// self-oscillate (homogeneous regions).
	CHARGING_LEADER float64
	// CHARGING_FOLLOWER is the max charge assigned to neurons that
	// cannot spike without external drive.
	CHARGING_FOLLOWER float64
}

// NeuralConnexionParams parameterizes the intra-layer segmentation
// weight function w(d) = W_MAX * (1 - sigmoid(SLOPE*(|d|-OFFSET))).
type NeuralConnexionParams struct {
	SEG_WEIGHT_MAX    float64
	SEG_WEIGHT_SLOPE  float64
	SEG_WEIGHT_OFFSET float64
}

// SimulationParams bounds and tunes the segmentation driver loop.
type SimulationParams struct {
	// SEG_MAX_CASCADES is a soft cascade cap; 0 means unlimited.
	SEG_MAX_CASCADES uint32
	// SEG_MAX_CYCLES is the hard cycle ceiling.
	SEG_MAX_CYCLES uint32
	// SEG_TRIGGER_SAME_LABEL_NEURONS enables forcing a whole segment to
	// co-fire once per cascade when any of its neurons spikes.
	SEG_TRIGGER_SAME_LABEL_NEURONS bool
	// SEG_MERGE_SEGMENTS enables merging two segments when a
	// sufficiently strong spike crosses between them.
	SEG_MERGE_SEGMENTS bool
	// SEG_MERGE_DELTA is the feature difference at which the merge
	// weight threshold is evaluated.
	SEG_MERGE_DELTA float64
	// MIN_SEGMENT_SIZE is the smallest neuron count ClearSmallSegments
	// will keep labeled.
	MIN_SEGMENT_SIZE uint32
}

// InputImageParams controls how a loaded image is resized before being
// mapped onto a layer's grid.
type InputImageParams struct {
	// RESIZE_IMG_KEEP_RATIO, when true, resizes the image so its longest
	// side equals KEEP_RATIO_LONGEST_IMG_SIDE while preserving aspect
	// ratio.
	RESIZE_IMG_KEEP_RATIO       bool
	KEEP_RATIO_LONGEST_IMG_SIDE uint32
	// FIXED_INPUT_IMGS_SIZE, when true, resizes the image to exactly
	// FIXED_INPUT_IMGS_WIDTH x FIXED_INPUT_IMGS_HEIGHT, ignoring aspect
	// ratio.
	FIXED_INPUT_IMGS_SIZE   bool
	FIXED_INPUT_IMGS_WIDTH  uint32
	FIXED_INPUT_IMGS_HEIGHT uint32
}

// PixelsParams controls PixelLayer's homogeneity-based leader election
// and initial potential seeding.
type PixelsParams struct {
	// PIXEL_HOMOG_DELTA is the maximum grayscale difference for two
	// neighboring pixels to count as "similar".
	PIXEL_HOMOG_DELTA uint32
	// PIXEL_HOMOG_RADIUS is the square radius searched for neighbors.
	PIXEL_HOMOG_RADIUS uint32
	// PIXEL_HOMOG_THRESHOLD is the similar/total fraction above which a
	// neuron becomes a leader.
	PIXEL_HOMOG_THRESHOLD float64
	// PIXEL_RANDOM_INIT selects random vs. pixel-proportional initial
	// potential seeding.
	PIXEL_RANDOM_INIT bool
}

// MatchingParams parameterizes the LayerCoupler's cross-layer weight
// function, independent from the intra-layer segmentation weights.
// (Drawn from the original implementation's Config, which declares
// these alongside the segmentation weights even though spec.md's
// external-interface listing groups only the segmentation ones under a
// named section; see SPEC_FULL.md.)
type MatchingParams struct {
	MATCHING_WEIGHT_MAX    float64
	MATCHING_WEIGHT_SLOPE  float64
	MATCHING_WEIGHT_OFFSET float64
}

// Default returns the ODLM simulator's built-in parameter set. Values
// match the original implementation's compiled-in defaults.
func Default() Config {
	return Config{
		Neuron: NeuronParams{
			POT_THRESHOLD:     1.0,
			TAU:               1.0,
			GLOBAL_INHIB_VAL:  0.002,
			CHARGING_LEADER:   1.01,
			CHARGING_FOLLOWER: 0.5,
		},
		NeuralConnexion: NeuralConnexionParams{
			SEG_WEIGHT_MAX:    0.01,
			SEG_WEIGHT_SLOPE:  1.2,
			SEG_WEIGHT_OFFSET: 0.0,
		},
		SimulationParams: SimulationParams{
			SEG_MAX_CASCADES:               0,
			SEG_MAX_CYCLES:                 50,
			SEG_TRIGGER_SAME_LABEL_NEURONS: false,
			SEG_MERGE_SEGMENTS:             false,
			SEG_MERGE_DELTA:                2.0,
			MIN_SEGMENT_SIZE:               80,
		},
		InputImageParams: InputImageParams{
			RESIZE_IMG_KEEP_RATIO:       false,
			KEEP_RATIO_LONGEST_IMG_SIDE: 150,
			FIXED_INPUT_IMGS_SIZE:       false,
			FIXED_INPUT_IMGS_WIDTH:      64,
			FIXED_INPUT_IMGS_HEIGHT:     128,
		},
		PixelsParams: PixelsParams{
			PIXEL_HOMOG_DELTA:     55,
			PIXEL_HOMOG_RADIUS:    4,
			PIXEL_HOMOG_THRESHOLD: 0.6,
			PIXEL_RANDOM_INIT:     true,
		},
		MatchingParams: MatchingParams{
			MATCHING_WEIGHT_MAX:    1.0,
			MATCHING_WEIGHT_SLOPE:  1.0,
			MATCHING_WEIGHT_OFFSET: 10.0,
		},
	}
}
