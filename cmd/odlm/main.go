// Command odlm drives the oscillatory dynamic link matcher end to end:
// load a config and one or two images, run the spiking segmentation to
// convergence, and write out a snapshot and a run summary.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
