package model

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/Noofbiz/bikeCast/datasets"
)

// Forest is a bootstrap-aggregated ensemble of regression trees. Each tree
// is grown on a bootstrap sample of the fit rows, considering a random
// subset of max(1, p/3) features at every split and choosing the threshold
// that most reduces the sum of squared errors. The prediction is the mean
// of the member trees' predictions.
type Forest struct {
	// Hyperparameters, fixed to their defaults by NewForest.
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	Seed            int64

	design *design
	trees  []*treeNode
}

// Default hyperparameters used by NewForest.
const (
	defaultTrees           = 100
	defaultMaxDepth        = 12
	defaultMinSamplesSplit = 5
)

// treeNode is one node of a regression tree. Leaves have Left == nil and
// carry the mean outcome of their samples in Value.
type treeNode struct {
	Feature   int
	Threshold float64
	Left      *treeNode
	Right     *treeNode
	Value     float64
}

// NewForest creates an unfitted forest with default hyperparameters. The
// seed makes training fully reproducible: per-tree RNGs derive from it, so
// repeated fits on identical input produce identical trees.
func NewForest(seed int64) *Forest {
	return &Forest{
		Trees:           defaultTrees,
		MaxDepth:        defaultMaxDepth,
		MinSamplesSplit: defaultMinSamplesSplit,
		Seed:            seed,
	}
}

// Fit grows the ensemble over the design matrix.
func (f *Forest) Fit(tab *datasets.Table, formula Formula) error {
	d, err := newDesign(tab, formula)
	if err != nil {
		return err
	}
	rows, err := d.matrix(tab)
	if err != nil {
		return err
	}
	y, err := d.outcome(tab)
	if err != nil {
		return err
	}

	n := len(rows)
	if n < f.MinSamplesSplit {
		return fmt.Errorf("fit table has %d rows, need at least %d", n, f.MinSamplesSplit)
	}
	if f.Trees < 1 {
		return fmt.Errorf("forest needs at least one tree, got %d", f.Trees)
	}

	p := d.width()
	mtry := p / 3
	if mtry < 1 {
		mtry = 1
	}

	f.design = d
	f.trees = make([]*treeNode, f.Trees)
	for b := 0; b < f.Trees; b++ {
		rng := rand.New(rand.NewSource(f.Seed + int64(b)))
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		f.trees[b] = f.growTree(rows, y, sample, mtry, 0, rng)
	}
	return nil
}

// growTree recursively builds a regression tree over the sampled rows.
func (f *Forest) growTree(rows [][]float64, y []float64, sample []int, mtry, depth int, rng *rand.Rand) *treeNode {
	mean, sse := meanAndSSE(y, sample)
	if depth >= f.MaxDepth || len(sample) < f.MinSamplesSplit || sse == 0 {
		return &treeNode{Value: mean}
	}

	p := len(rows[0])
	features := rng.Perm(p)[:mtry]

	bestFeature, bestThreshold, bestSSE := bestSplit(rows, y, sample, features)
	if bestFeature < 0 && mtry < p {
		// the random subset had no splittable feature; widen to all of them
		all := make([]int, p)
		for i := range all {
			all[i] = i
		}
		bestFeature, bestThreshold, bestSSE = bestSplit(rows, y, sample, all)
	}
	if bestFeature < 0 || bestSSE >= sse {
		return &treeNode{Value: mean}
	}

	var leftIdx, rightIdx []int
	for _, idx := range sample {
		if rows[idx][bestFeature] <= bestThreshold {
			leftIdx = append(leftIdx, idx)
		} else {
			rightIdx = append(rightIdx, idx)
		}
	}
	return &treeNode{
		Feature:   bestFeature,
		Threshold: bestThreshold,
		Left:      f.growTree(rows, y, leftIdx, mtry, depth+1, rng),
		Right:     f.growTree(rows, y, rightIdx, mtry, depth+1, rng),
		Value:     mean,
	}
}

// Predict returns one ensemble-mean prediction per table row.
func (f *Forest) Predict(tab *datasets.Table) ([]float64, error) {
	if f.design == nil {
		return nil, fmt.Errorf("model is not fitted")
	}
	rows, err := f.design.matrix(tab)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		var sum float64
		for _, tree := range f.trees {
			sum += tree.predict(row)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}

func (t *treeNode) predict(row []float64) float64 {
	for t.Left != nil {
		if row[t.Feature] <= t.Threshold {
			t = t.Left
		} else {
			t = t.Right
		}
	}
	return t.Value
}

// bestSplit searches the given features for the threshold that minimizes
// the post-split sum of squared errors. Returns feature -1 when no feature
// admits a valid split.
func bestSplit(rows [][]float64, y []float64, sample, features []int) (int, float64, float64) {
	bestSSE := math.Inf(1)
	bestFeature := -1
	bestThreshold := 0.0
	for _, feat := range features {
		thresholds := candidateThresholds(rows, sample, feat)
		for _, th := range thresholds {
			left, right := 0, 0
			var sumL, sumR, sqL, sqR float64
			for _, idx := range sample {
				v := y[idx]
				if rows[idx][feat] <= th {
					left++
					sumL += v
					sqL += v * v
				} else {
					right++
					sumR += v
					sqR += v * v
				}
			}
			if left == 0 || right == 0 {
				continue
			}
			sseSplit := (sqL - sumL*sumL/float64(left)) + (sqR - sumR*sumR/float64(right))
			if sseSplit < bestSSE {
				bestSSE = sseSplit
				bestFeature = feat
				bestThreshold = th
			}
		}
	}
	return bestFeature, bestThreshold, bestSSE
}

// meanAndSSE computes the mean outcome and sum of squared errors for the
// sampled rows.
func meanAndSSE(y []float64, sample []int) (float64, float64) {
	if len(sample) == 0 {
		return 0, 0
	}
	var sum, sq float64
	for _, idx := range sample {
		sum += y[idx]
		sq += y[idx] * y[idx]
	}
	mean := sum / float64(len(sample))
	return mean, sq - sum*sum/float64(len(sample))
}

// candidateThresholds returns midpoints between consecutive distinct values
// of the feature over the sampled rows.
func candidateThresholds(rows [][]float64, sample []int, feat int) []float64 {
	vals := make([]float64, 0, len(sample))
	seen := make(map[float64]bool, len(sample))
	for _, idx := range sample {
		v := rows[idx][feat]
		if !seen[v] {
			seen[v] = true
			vals = append(vals, v)
		}
	}
	if len(vals) < 2 {
		return nil
	}
	sort.Float64s(vals)
	out := make([]float64, len(vals)-1)
	for i := 0; i < len(vals)-1; i++ {
		out[i] = (vals[i] + vals[i+1]) / 2
	}
	return out
}
