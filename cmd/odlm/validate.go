package main

import (
	"fmt"

	"github.com/SynapticNetworks/odlm/layer"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var layerStatePath, againstPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compare a saved layer state against a reference snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateState(layerStatePath, againstPath)
		},
	}

	cmd.Flags().StringVar(&layerStatePath, "layer-state", "", "path to the snapshot to load as the current state (required)")
	cmd.Flags().StringVar(&againstPath, "against", "", "path to the reference snapshot to compare against (required)")
	cmd.MarkFlagRequired("layer-state")
	cmd.MarkFlagRequired("against")

	return cmd
}

func validateState(layerStatePath, againstPath string) error {
	b, err := layer.LoadStateFile(layerStatePath)
	if err != nil {
		return fmt.Errorf("odlm validate: %w", err)
	}

	mismatches, err := b.ValidateLayerState(againstPath)
	if err != nil {
		return fmt.Errorf("odlm validate: %w", err)
	}
	if len(mismatches) == 0 {
		fmt.Println("odlm validate: states match")
		return nil
	}
	for _, m := range mismatches {
		fmt.Println(m)
	}
	return fmt.Errorf("odlm validate: %d mismatches", len(mismatches))
}
