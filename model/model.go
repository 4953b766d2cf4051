// Package model fits regression models over a declarative formula and
// produces point predictions. Two interchangeable strategies are provided:
// an ordinary least-squares linear model used for inspection, and a
// bootstrap-aggregated forest of regression trees used by the predictive
// pipeline. Both consume the same design matrix, in which categorical
// predictors are expanded into indicator variables.
package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/Noofbiz/bikeCast/datasets"
)

// Formula names the outcome column and the ordered predictor columns a
// model is fit over. It replaces hand-edited predictor lists with a single
// explicit, swappable configuration value.
type Formula struct {
	Outcome    string
	Predictors []string
}

// Model is the common trainer/predictor contract. Fit learns from a table
// that carries both predictors and outcome; Predict returns one value per
// row of a table that carries the predictors (the outcome may be absent),
// in the same row order as the input.
type Model interface {
	Fit(tab *datasets.Table, f Formula) error
	Predict(tab *datasets.Table) ([]float64, error)
}

// term is one column of the design matrix.
type term struct {
	column    string
	indicator bool
	level     float64 // only meaningful when indicator
	name      string
}

// design expands a formula into design-matrix terms. Categorical levels are
// fixed at fit time; the same expansion is then reused at predict time so
// fit and predict matrices always line up column for column.
type design struct {
	formula Formula
	terms   []term
}

// newDesign validates the formula against the fit table and fixes the
// categorical levels.
func newDesign(tab *datasets.Table, f Formula) (*design, error) {
	if f.Outcome == "" {
		return nil, fmt.Errorf("formula has no outcome column")
	}
	if len(f.Predictors) == 0 {
		return nil, fmt.Errorf("formula has no predictor columns")
	}
	if !tab.Has(f.Outcome) {
		return nil, fmt.Errorf("outcome column %q not found", f.Outcome)
	}

	d := &design{formula: f}
	for _, p := range f.Predictors {
		vals, err := tab.Column(p)
		if err != nil {
			return nil, fmt.Errorf("predictor column %q not found", p)
		}
		if !tab.IsCategorical(p) {
			d.terms = append(d.terms, term{column: p, name: p})
			continue
		}
		levels := distinctSorted(vals)
		// first level is the reference and gets no indicator
		for _, lv := range levels[1:] {
			d.terms = append(d.terms, term{
				column:    p,
				indicator: true,
				level:     lv,
				name:      fmt.Sprintf("%s=%g", p, lv),
			})
		}
	}
	if len(d.terms) == 0 {
		return nil, fmt.Errorf("design matrix has no columns (single-level categorical predictors only)")
	}
	return d, nil
}

// width returns the number of design-matrix columns (without intercept).
func (d *design) width() int {
	return len(d.terms)
}

// names returns the design-matrix column names in order.
func (d *design) names() []string {
	out := make([]string, len(d.terms))
	for i, t := range d.terms {
		out[i] = t.name
	}
	return out
}

// matrix builds the design matrix for the given table, one row per table
// row. A NaN cell is a data-integrity fault and aborts the build.
func (d *design) matrix(tab *datasets.Table) ([][]float64, error) {
	n := tab.Len()
	cols := make(map[string][]float64, len(d.formula.Predictors))
	for _, p := range d.formula.Predictors {
		vals, err := tab.Column(p)
		if err != nil {
			return nil, fmt.Errorf("predictor column %q not found", p)
		}
		cols[p] = vals
	}

	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(d.terms))
		for j, t := range d.terms {
			v := cols[t.column][i]
			if math.IsNaN(v) {
				return nil, fmt.Errorf("row %d: column %q is NaN", i, t.column)
			}
			if t.indicator {
				if v == t.level {
					row[j] = 1
				}
			} else {
				row[j] = v
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// outcome extracts and validates the outcome column from a fit table.
func (d *design) outcome(tab *datasets.Table) ([]float64, error) {
	vals, err := tab.Column(d.formula.Outcome)
	if err != nil {
		return nil, fmt.Errorf("outcome column %q not found", d.formula.Outcome)
	}
	for i, v := range vals {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("row %d: outcome %q is NaN", i, d.formula.Outcome)
		}
	}
	return vals, nil
}

func distinctSorted(vals []float64) []float64 {
	seen := make(map[float64]bool, 8)
	out := make([]float64, 0, 8)
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}
