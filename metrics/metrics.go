// Package metrics computes the root-mean-squared-log-error the competition
// scores against.
package metrics

import (
	"fmt"
	"math"
)

// RMSLE returns sqrt(mean((ln(1+pred) - ln(1+actual))^2)). Identical inputs
// give exactly zero. A length mismatch is a shape fault.
func RMSLE(pred, actual []float64) (float64, error) {
	if len(pred) != len(actual) {
		return 0, fmt.Errorf("shape mismatch: %d predictions vs %d actuals", len(pred), len(actual))
	}
	if len(pred) == 0 {
		return 0, fmt.Errorf("no values to evaluate")
	}
	var sumSq float64
	for i := range pred {
		d := math.Log1p(pred[i]) - math.Log1p(actual[i])
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(pred))), nil
}

// EvaluateLogPredictions scores predictions made on the log-count scale
// against actual counts. Predictions are exponentiated back to the count
// scale first, then RMSLE applies its own log1p. The double round trip
// matches how submissions are scored.
func EvaluateLogPredictions(logPreds, actual []float64) (float64, error) {
	if len(logPreds) != len(actual) {
		return 0, fmt.Errorf("shape mismatch: %d predictions vs %d actuals", len(logPreds), len(actual))
	}
	counts := make([]float64, len(logPreds))
	for i, p := range logPreds {
		counts[i] = math.Exp(p)
	}
	return RMSLE(counts, actual)
}
