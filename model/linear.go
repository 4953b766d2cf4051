package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/Noofbiz/bikeCast/datasets"
)

// Linear is an ordinary least-squares regression over the formula's
// predictors, with categorical predictors expanded into indicator
// variables. It exists for interpretability: the fitted coefficients are
// exposed by name for inspection, while the predictive pipeline uses the
// forest strategy.
type Linear struct {
	design *design
	beta   []float64 // intercept first, then one per design term
}

// NewLinear creates an unfitted linear model.
func NewLinear() *Linear {
	return &Linear{}
}

// Fit solves the least-squares problem over the design matrix with an
// intercept column, using a QR factorization.
func (l *Linear) Fit(tab *datasets.Table, f Formula) error {
	d, err := newDesign(tab, f)
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
	p := d.width() + 1 // intercept
	if n < p {
		return fmt.Errorf("fit table has %d rows but the design matrix has %d columns", n, p)
	}

	flat := make([]float64, n*p)
	for i, row := range rows {
		flat[i*p] = 1
		copy(flat[i*p+1:], row)
	}
	X := mat.NewDense(n, p, flat)
	Y := mat.NewDense(n, 1, y)

	var qr mat.QR
	qr.Factorize(X)
	var B mat.Dense
	if err := qr.SolveTo(&B, false, Y); err != nil {
		return fmt.Errorf("least-squares solve failed: %w", err)
	}

	l.design = d
	l.beta = make([]float64, p)
	for j := 0; j < p; j++ {
		l.beta[j] = B.At(j, 0)
	}
	return nil
}

// Predict returns one fitted value per table row.
func (l *Linear) Predict(tab *datasets.Table) ([]float64, error) {
	if l.design == nil {
		return nil, fmt.Errorf("model is not fitted")
	}
	rows, err := l.design.matrix(tab)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		v := l.beta[0]
		for j, x := range row {
			v += l.beta[j+1] * x
		}
		out[i] = v
	}
	return out, nil
}

// Coefficients returns the fitted terms by name, including "(intercept)".
func (l *Linear) Coefficients() (map[string]float64, error) {
	if l.design == nil {
		return nil, fmt.Errorf("model is not fitted")
	}
	out := make(map[string]float64, len(l.beta))
	out["(intercept)"] = l.beta[0]
	for i, name := range l.design.names() {
		out[name] = l.beta[i+1]
	}
	return out, nil
}
