// Copyright 2025 Sonic Labs
// This file is part of Aida Testing Infrastructure for Sonic
//
// Aida is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Aida is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Aida. If not, see <http://www.gnu.org/licenses/>.

// Package schedule decides which actor role acts next in a simulation.
package schedule

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
)

// eps bounds the rounding error tolerated in row sums and eigenvalues.
const eps = 1e-9

// Chain is a Markov chain over actor roles.
type Chain struct {
	n int
	a [][]float64
	l []string
}

// New creates a chain from a row-stochastic matrix and one unique label per state.
func New(a [][]float64, labels []string) (*Chain, error) {
	n := len(labels)
	if n == 0 {
		return nil, errors.New("a chain needs at least one state")
	}
	seen := make(map[string]struct{}, n)
	for _, l := range labels {
		if _, dup := seen[l]; dup {
			return nil, errors.Newf("state %v occurs more than once", l)
		}
		seen[l] = struct{}{}
	}
	if len(a) != n {
		return nil, errors.Newf("number of labels (%v) mismatches number of rows (%v)", n, len(a))
	}
	for i := range n {
		if len(a[i]) != n {
			return nil, errors.Newf("row %v has %v columns, expected %v", i, len(a[i]), n)
		}
		total := 0.0
		for j := range n {
			if !(a[i][j] >= 0.0 && a[i][j] <= 1.0) {
				return nil, errors.Newf("invalid probability (%v) in row %v, column %v", a[i][j], i, j)
			}
			total += a[i][j]
		}
		if math.Abs(total-1.0) > eps {
			return nil, errors.Newf("row %v does not sum to one (%v)", i, total)
		}
	}
	return &Chain{n: n, a: a, l: labels}, nil
}

// Uniform creates a chain in which every state follows every state with
// the same probability.
func Uniform(labels []string) (*Chain, error) {
	weights := make([]float64, len(labels))
	for i := range weights {
		weights[i] = 1
	}
	return Weighted(labels, weights)
}

// Weighted creates a memoryless chain: the next state is drawn in
// proportion to weights, whatever the current state.
func Weighted(labels []string, weights []float64) (*Chain, error) {
	if len(weights) != len(labels) {
		return nil, errors.Newf("%d weights for %d states", len(weights), len(labels))
	}
	total := 0.0
	for _, w := range weights {
		if w < 0 {
			return nil, errors.Newf("negative weight %v", w)
		}
		total += w
	}
	if total == 0 {
		return nil, errors.New("weights sum to zero")
	}
	row := make([]float64, len(weights))
	for i, w := range weights {
		row[i] = w / total
	}
	a := make([][]float64, len(labels))
	for i := range a {
		a[i] = row
	}
	return New(a, labels)
}

func (c *Chain) Len() int {
	return c.n
}

// Sample returns the state following state i for a uniform random number u in [0,1).
func (c *Chain) Sample(i int, u float64) (int, error) {
	if u < 0 || u >= 1.0 {
		return 0, errors.Newf("probabilistic argument (%v) is not in interval [0,1)", u)
	}
	if i < 0 || i >= c.n {
		return 0, errors.Newf("state index (%v) out of range", i)
	}
	return quantile(c.a[i], u), nil
}

// quantile returns the first state whose cumulative probability exceeds u.
func quantile(row []float64, u float64) int {
	total := 0.0
	for j, p := range row {
		total += p
		if u < total {
			return j
		}
	}
	// rounding may leave the last cumulative value below u
	for j := len(row) - 1; j >= 0; j-- {
		if row[j] > 0 {
			return j
		}
	}
	return len(row) - 1
}

// Stationary computes the long-run share of every state.
func (c *Chain) Stationary() ([]float64, error) {
	elements := make([]float64, 0, c.n*c.n)
	for i := range c.n {
		elements = append(elements, c.a[i]...)
	}
	a := mat.NewDense(c.n, c.n, elements)

	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenLeft); !ok {
		return nil, errors.New("eigen-value decomposition failed")
	}

	// the eigenvalue of one is not necessarily the first
	k := -1
	for i, v := range eig.Values(nil) {
		if math.Abs(real(v)-1.0) < eps && math.Abs(imag(v)) < eps {
			k = i
		}
	}
	if k == -1 {
		return nil, errors.New("no eigenvalue of one found")
	}

	var ev mat.CDense
	eig.LeftVectorsTo(&ev)
	total := complex128(0)
	for i := range c.n {
		total += ev.At(i, k)
	}
	if math.Abs(imag(total)) > eps {
		return nil, errors.New("eigen-vector is a complex number")
	}
	stationary := make([]float64, c.n)
	for i := range c.n {
		stationary[i] = math.Abs(real(ev.At(i, k)) / real(total))
	}
	return stationary, nil
}

func (c *Chain) Label(i int) (string, error) {
	if i < 0 || i >= c.n {
		return "", errors.Newf("state %v is out of range", i)
	}
	return c.l[i], nil
}

// Find returns the index of label, or -1 if the chain has no such state.
func (c *Chain) Find(label string) int {
	for i := range c.l {
		if c.l[i] == label {
			return i
		}
	}
	return -1
}
