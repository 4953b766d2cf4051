// Package split partitions the training table into a fit subset and a
// held-out validation subset using a reproducible random draw.
package split

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/Noofbiz/bikeCast/datasets"
)

// Indices deterministically splits the row indices [0, n) into a fit set of
// ~frac*n rows and a holdout set of the remainder. The same n, frac, and
// seed always produce the same split. Both slices come back sorted
// ascending so subsets keep the original row order.
func Indices(n int, frac float64, seed int64) (fit, holdout []int, err error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("cannot split empty table")
	}
	if frac <= 0 || frac >= 1 {
		return nil, nil, fmt.Errorf("split fraction %v outside (0, 1)", frac)
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	k := int(math.Round(frac * float64(n)))
	if k < 1 {
		k = 1
	}
	if k >= n {
		k = n - 1
	}

	fit = append([]int(nil), perm[:k]...)
	holdout = append([]int(nil), perm[k:]...)
	sort.Ints(fit)
	sort.Ints(holdout)
	return fit, holdout, nil
}

// Partition splits the table into disjoint fit and holdout tables covering
// every row exactly once.
func Partition(tab *datasets.Table, frac float64, seed int64) (*datasets.Table, *datasets.Table, error) {
	if tab == nil {
		return nil, nil, fmt.Errorf("table is nil")
	}
	fitIdx, holdIdx, err := Indices(tab.Len(), frac, seed)
	if err != nil {
		return nil, nil, err
	}
	fit, err := tab.Select(fitIdx)
	if err != nil {
		return nil, nil, err
	}
	holdout, err := tab.Select(holdIdx)
	if err != nil {
		return nil, nil, err
	}
	return fit, holdout, nil
}
