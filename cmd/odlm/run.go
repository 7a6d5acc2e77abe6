package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/SynapticNetworks/odlm/config"
	"github.com/SynapticNetworks/odlm/identity"
	"github.com/SynapticNetworks/odlm/imagedata"
	"github.com/SynapticNetworks/odlm/layer"
	"github.com/SynapticNetworks/odlm/orchestrator"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		inputPath  string
		refPath    string
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Segment an image, optionally matched against a reference image",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(configPath, inputPath, refPath, outDir)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "odlm.ini", "path to an INI config file (written with defaults if missing)")
	cmd.Flags().StringVar(&inputPath, "input", "", "input image path (required)")
	cmd.Flags().StringVar(&refPath, "ref", "", "optional reference image path to match against")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory for snapshots and the run summary")
	cmd.MarkFlagRequired("input")

	return cmd
}

// runReport is the JSON summary written alongside each run's snapshots.
type runReport struct {
	RunID      string `json:"run_id"`
	L1Cycles   uint32 `json:"l1_cycles"`
	L1Cascades uint32 `json:"l1_cascades"`
	L1Spikes   uint64 `json:"l1_spikes"`
	L1Segments int    `json:"l1_segments"`
	Coupled    bool   `json:"coupled"`
	L2Cycles   uint32 `json:"l2_cycles,omitempty"`
	L2Cascades uint32 `json:"l2_cascades,omitempty"`
	L2Spikes   uint64 `json:"l2_spikes,omitempty"`
	L2Segments int    `json:"l2_segments,omitempty"`
}

func runPipeline(configPath, inputPath, refPath, outDir string) error {
	cfg, wroteDefaults, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("odlm run: loading config: %w", err)
	}
	if wroteDefaults {
		log.Printf("odlm run: %s missing or invalid, wrote defaults", configPath)
	}

	runID := uuid.NewString()
	runDir := filepath.Join(outDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("odlm run: creating output directory: %w", err)
	}

	alloc := identity.New()

	img, err := imagedata.Load(inputPath, cfg.InputImageParams)
	if err != nil {
		return fmt.Errorf("odlm run: loading input image: %w", err)
	}
	l1 := layer.NewPixel(img, cfg.Neuron, cfg.NeuralConnexion, cfg.SimulationParams, cfg.PixelsParams, alloc)

	var l2 *layer.Pixel
	if refPath != "" {
		refImg, err := imagedata.Load(refPath, cfg.InputImageParams)
		if err != nil {
			return fmt.Errorf("odlm run: loading reference image: %w", err)
		}
		l2 = layer.NewPixel(refImg, cfg.Neuron, cfg.NeuralConnexion, cfg.SimulationParams, cfg.PixelsParams, alloc)
	}

	orch, err := orchestrator.New(l1, l2, l2 != nil, cfg.MatchingParams)
	if err != nil {
		return fmt.Errorf("odlm run: %w", err)
	}

	log.Printf("odlm run: segmenting %s (run %s)", inputPath, runID)
	summary := orch.Run()

	if err := l1.SaveStateToFile(filepath.Join(runDir, "l1.tsv")); err != nil {
		return fmt.Errorf("odlm run: saving l1 state: %w", err)
	}
	if l2 != nil {
		if err := l2.SaveStateToFile(filepath.Join(runDir, "l2.tsv")); err != nil {
			return fmt.Errorf("odlm run: saving l2 state: %w", err)
		}
	}

	report := runReport{
		RunID:      runID,
		L1Cycles:   summary.L1Cycles,
		L1Cascades: summary.L1Cascades,
		L1Spikes:   summary.L1Spikes,
		L1Segments: summary.L1Segments,
		Coupled:    summary.Coupled,
		L2Cycles:   summary.L2Cycles,
		L2Cascades: summary.L2Cascades,
		L2Spikes:   summary.L2Spikes,
		L2Segments: summary.L2Segments,
	}
	reportBytes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("odlm run: marshaling report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "summary.json"), reportBytes, 0o644); err != nil {
		return fmt.Errorf("odlm run: writing report: %w", err)
	}

	log.Printf("odlm run: done — %d segments, %d spikes, output in %s", summary.L1Segments, summary.L1Spikes, runDir)
	return nil
}
