/*
=================================================================================
LAYER SNAPSHOT — STATE DUMP AND COMPARISON
=================================================================================

Snapshotting exists for exactly one purpose per spec.md's component C10:
letting a golden-file regression test assert that a run converged to the
same segmentation as a previously captured run, without depending on
exact floating-point spike timing reproducing bit-for-bit across
platforms. The format mirrors the tab-separated id/label/potential
triples a debugging dump would produce, kept deliberately minimal.
=================================================================================
*/
package layer

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/SynapticNetworks/odlm/neuron"
)

// potentialTolerance is the maximum allowed absolute difference between
// two snapshots' potentials for ValidateLayerState to still call them
// matching. Spike timing is a chaotic function of floating-point
// rounding order; segmentation outcome (label) is what actually needs
// to be exactly reproducible.
const potentialTolerance = 5e-4

// SaveStateToFile writes one "id\tlabel\tpotential" line per neuron, in
// index order, to path.
func (b *Base) SaveStateToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("layer: save state: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, n := range b.Neurons {
		if _, err := fmt.Fprintf(w, "%d\t%d\t%g\n", n.ID, n.Label, n.Pot); err != nil {
			return fmt.Errorf("layer: save state: %w", err)
		}
	}
	return w.Flush()
}

// snapshotRow is one parsed line of a saved state file.
type snapshotRow struct {
	id        uint32
	label     uint32
	potential float64
}

func loadSnapshot(path string) ([]snapshotRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("layer: load state: %w", err)
	}
	defer f.Close()

	var rows []snapshotRow
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("layer: load state: %s line %d: expected 3 tab-separated fields, got %d", path, lineNo, len(fields))
		}
		id, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("layer: load state: %s line %d: bad id: %w", path, lineNo, err)
		}
		label, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("layer: load state: %s line %d: bad label: %w", path, lineNo, err)
		}
		pot, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("layer: load state: %s line %d: bad potential: %w", path, lineNo, err)
		}
		rows = append(rows, snapshotRow{id: uint32(id), label: uint32(label), potential: pot})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("layer: load state: %w", err)
	}
	return rows, nil
}

// LoadStateFile reads a snapshot written by SaveStateToFile into a bare
// Base — just enough state (Neurons indexed by id, each with its
// Label and Pot) to call ValidateLayerState against a second snapshot.
// This is what lets the CLI's validate command compare two on-disk
// snapshots without a live simulation run in between.
func LoadStateFile(path string) (*Base, error) {
	rows, err := loadSnapshot(path)
	if err != nil {
		return nil, err
	}
	maxID := uint32(0)
	for _, row := range rows {
		if row.id > maxID {
			maxID = row.id
		}
	}
	b := &Base{Neurons: make([]neuron.Neuron, maxID+1)}
	for _, row := range rows {
		b.Neurons[row.id].ID = row.id
		b.Neurons[row.id].Label = row.label
		b.Neurons[row.id].Pot = row.potential
	}
	return b, nil
}

// ValidateLayerState compares the layer's current state against a
// snapshot file previously written by SaveStateToFile. Labels must
// match exactly (segmentation outcome is deterministic given a fixed
// random seed and a fixed image); potentials must match within
// potentialTolerance. Returns a nil slice of mismatches and a nil error
// when the states agree.
func (b *Base) ValidateLayerState(path string) (mismatches []string, err error) {
	rows, err := loadSnapshot(path)
	if err != nil {
		return nil, err
	}
	if len(rows) != len(b.Neurons) {
		return nil, fmt.Errorf("layer: validate state: snapshot has %d neurons, layer has %d", len(rows), len(b.Neurons))
	}

	for _, row := range rows {
		if int(row.id) >= len(b.Neurons) {
			mismatches = append(mismatches, fmt.Sprintf("neuron %d: snapshot id out of range", row.id))
			continue
		}
		n := &b.Neurons[row.id]
		if n.Label != row.label {
			mismatches = append(mismatches, fmt.Sprintf("neuron %d: label %d != snapshot label %d", row.id, n.Label, row.label))
		}
		if math.Abs(n.Pot-row.potential) > potentialTolerance {
			mismatches = append(mismatches, fmt.Sprintf("neuron %d: potential %g != snapshot potential %g", row.id, n.Pot, row.potential))
		}
	}
	return mismatches, nil
}
