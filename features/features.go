// Package features derives the modeling columns from the raw observation
// table: hour-of-day, hours elapsed since the start of the training period,
// the collapsed weather level, and the log of the rider count.
package features

import (
	"fmt"
	"math"
	"time"

	"github.com/Noofbiz/bikeCast/datasets"
)

// Column names added by Apply.
const (
	HourColumn     = "hour"
	ElapsedColumn  = "elapsed"
	LogCountColumn = "logcount"
)

// Transformer applies the derived-feature computation to a table. The epoch
// used for the elapsed-hours column is fixed at construction time from the
// training table, so training and test rows share the same reference point.
type Transformer struct {
	epoch time.Time
}

// NewTransformer captures the minimum timestamp of the training table as the
// elapsed-hours epoch.
func NewTransformer(train *datasets.Table) (*Transformer, error) {
	if train == nil || train.Len() == 0 {
		return nil, fmt.Errorf("training table is empty")
	}
	epoch := train.Timestamps()[0]
	for _, ts := range train.Timestamps() {
		if ts.Before(epoch) {
			epoch = ts
		}
	}
	return &Transformer{epoch: epoch}, nil
}

// Epoch returns the reference timestamp used for the elapsed column.
func (tr *Transformer) Epoch() time.Time {
	return tr.epoch
}

// Apply returns a new table with all derived columns populated. The input
// table is never mutated; row count and order are preserved.
//
// Derived columns:
//   - hour: hour component of the timestamp (0-23), categorical
//   - elapsed: hours since the training epoch, continuous
//   - weather: level 4 collapsed into 3, categorical
//   - logcount: ln(count), only when the table carries a count column
//
// workingday, season, and holiday are additionally marked categorical so the
// model layer treats them as unordered groups.
func (tr *Transformer) Apply(tab *datasets.Table) (*datasets.Table, error) {
	if tab == nil || tab.Len() == 0 {
		return nil, fmt.Errorf("table is empty")
	}
	out := tab.Clone()
	n := out.Len()

	hours := make([]float64, n)
	elapsed := make([]float64, n)
	for i, ts := range out.Timestamps() {
		hours[i] = float64(ts.Hour())
		elapsed[i] = ts.Sub(tr.epoch).Hours()
	}
	out.AddColumn(HourColumn, hours)
	out.SetCategorical(HourColumn)
	out.AddColumn(ElapsedColumn, elapsed)

	weather, err := out.Column("weather")
	if err != nil {
		return nil, err
	}
	recoded := make([]float64, n)
	for i, w := range weather {
		if w == 4 {
			// level 4 is near-singleton; fold it into level 3
			recoded[i] = 3
		} else {
			recoded[i] = w
		}
	}
	out.AddColumn("weather", recoded)
	out.SetCategorical("weather")
	out.SetCategorical("workingday")
	out.SetCategorical("season")
	out.SetCategorical("holiday")

	if out.Has("count") {
		counts, err := out.Column("count")
		if err != nil {
			return nil, err
		}
		logs := make([]float64, n)
		for i, c := range counts {
			if c < 1 {
				return nil, fmt.Errorf("row %d: count %v < 1, cannot take log", i, c)
			}
			logs[i] = math.Log(c)
		}
		out.AddColumn(LogCountColumn, logs)
	}

	return out, nil
}
