package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "odlm",
		Short: "Oscillatory dynamic link matcher — spiking-neuron image segmentation",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newValidateCmd())
	return root
}
