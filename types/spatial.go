// Package types holds the small shared value types used across the ODLM
// packages (neuron, layer, coupler, orchestrator) so that none of them
// needs to import another for a plain data shape.
package types

import "fmt"

// Point is a grid coordinate. Neurons and layers are addressed in
// row-major order; Point is how callers and tests talk about a cell
// without reaching into the flat neuron slice directly.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Rect is an axis-aligned region of a layer's grid, half-open on Max:
// a cell (x,y) is inside iff Min.X <= x < Max.X and Min.Y <= y < Max.Y.
// NeuralLayer's "active region" (spec.md data model) is a Rect; it
// defaults to the whole grid but can be narrowed to let a host focus
// processing on part of a layer.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Width and Height report the Rect's extent in grid cells.
func (r Rect) Width() int  { return r.Max.X - r.Min.X }
func (r Rect) Height() int { return r.Max.Y - r.Min.Y }

// Contains reports whether (x,y) lies within the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Min.X && x < r.Max.X && y >= r.Min.Y && y < r.Max.Y
}

// NewRect builds the full-grid active region for a width x height layer.
func NewRect(width, height int) Rect {
	return Rect{Min: Point{0, 0}, Max: Point{X: width, Y: height}}
}
