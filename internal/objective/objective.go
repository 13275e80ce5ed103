// Package objective provides the benchmark objective functions used by the
// CLI and by optimizer tests. All benchmarks are minimization problems.
package objective

import (
	"fmt"
	"sort"
)

// Func computes the objective value of a parameter vector.
type Func func(x []float64) float64

// Benchmark bundles an objective with its canonical search box, a starting
// point and the known optimum value.
type Benchmark struct {
	Name    string
	Fn      Func
	Lower   []float64
	Upper   []float64
	Initial []float64
	Optimum float64
}

// Sphere is f(x) = sum(x_i^2), minimum 0 at the origin.
func Sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// Rosenbrock is the banana function with a=1, b=100, minimum 0 at (1,...,1).
func Rosenbrock(x []float64) float64 {
	var sum float64
	for i := 0; i+1 < len(x); i++ {
		d := x[i+1] - x[i]*x[i]
		sum += (1-x[i])*(1-x[i]) + 100*d*d
	}
	return sum
}

// Bowl is the shifted quadratic f(x) = sum((x_i - 3)^2), minimum 0 at
// (3,...,3).
func Bowl(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += (v - 3) * (v - 3)
	}
	return sum
}

// Himmelblau is f(x,y) = (x^2+y-11)^2 + (x+y^2-7)^2, a 2D function with four
// global minima of value 0, one of them at (3, 2).
func Himmelblau(x []float64) float64 {
	a := x[0]*x[0] + x[1] - 11
	b := x[0] + x[1]*x[1] - 7
	return a*a + b*b
}

var benchmarks = map[string]func(dim int) (Benchmark, error){
	"sphere": func(dim int) (Benchmark, error) {
		b := box("sphere", Sphere, dim, -10, 10, 0)
		for i := range b.Initial {
			b.Initial[i] = 5
		}
		return b, nil
	},
	"rosenbrock": func(dim int) (Benchmark, error) {
		if dim < 2 {
			return Benchmark{}, fmt.Errorf("rosenbrock needs at least 2 dimensions, got %d", dim)
		}
		b := box("rosenbrock", Rosenbrock, dim, -1.1, 1.1, 0)
		b.Initial[0] = 0.5
		b.Initial[1] = -0.5
		return b, nil
	},
	"bowl": func(dim int) (Benchmark, error) {
		b := box("bowl", Bowl, dim, 0, 10, 0)
		for i := range b.Initial {
			b.Initial[i] = 5
		}
		return b, nil
	},
	"himmelblau": func(dim int) (Benchmark, error) {
		if dim != 2 {
			return Benchmark{}, fmt.Errorf("himmelblau is 2-dimensional, got %d", dim)
		}
		b := box("himmelblau", Himmelblau, 2, -6, 6, 0)
		b.Initial[0] = 1
		b.Initial[1] = 1
		return b, nil
	},
}

// ByName resolves a benchmark by name for the given dimensionality.
func ByName(name string, dim int) (Benchmark, error) {
	mk, ok := benchmarks[name]
	if !ok {
		return Benchmark{}, fmt.Errorf("unknown objective %q (available: %v)", name, Names())
	}
	if dim < 1 {
		return Benchmark{}, fmt.Errorf("dimension must be >= 1, got %d", dim)
	}
	return mk(dim)
}

// Names lists the available benchmarks in sorted order.
func Names() []string {
	names := make([]string, 0, len(benchmarks))
	for name := range benchmarks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func box(name string, fn Func, dim int, lo, hi, optimum float64) Benchmark {
	b := Benchmark{
		Name:    name,
		Fn:      fn,
		Lower:   make([]float64, dim),
		Upper:   make([]float64, dim),
		Initial: make([]float64, dim),
		Optimum: optimum,
	}
	for i := 0; i < dim; i++ {
		b.Lower[i] = lo
		b.Upper[i] = hi
		b.Initial[i] = (lo + hi) / 2
	}
	return b
}
