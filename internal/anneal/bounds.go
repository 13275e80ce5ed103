package anneal

import "fmt"

// Bounds defines the searched box of parameter space, one [Lower, Upper]
// interval per dimension.
type Bounds struct {
	Lower []float64
	Upper []float64
}

// NewBounds builds bounds from (min, max) pairs.
func NewBounds(pairs ...[2]float64) Bounds {
	b := Bounds{
		Lower: make([]float64, len(pairs)),
		Upper: make([]float64, len(pairs)),
	}
	for i, p := range pairs {
		b.Lower[i] = p[0]
		b.Upper[i] = p[1]
	}
	return b
}

// Validate checks that the bounds describe a non-empty box of the given
// dimensionality.
func (b Bounds) Validate(dim int) error {
	if len(b.Lower) != dim || len(b.Upper) != dim {
		return fmt.Errorf("bounds have %d/%d entries, want %d", len(b.Lower), len(b.Upper), dim)
	}
	for i := range b.Lower {
		if !(b.Lower[i] < b.Upper[i]) {
			return fmt.Errorf("bounds for dimension %d are empty: [%g, %g]", i, b.Lower[i], b.Upper[i])
		}
	}
	return nil
}

// Contains reports whether every coordinate of x lies inside the box.
func (b Bounds) Contains(x []float64) bool {
	for i, v := range x {
		if v < b.Lower[i] || v > b.Upper[i] {
			return false
		}
	}
	return true
}
