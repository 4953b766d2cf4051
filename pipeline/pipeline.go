// Package pipeline wires the full run: load both tables, derive features,
// partition the training table, fit and score the forest on the holdout,
// then re-fit on the full training table and write the kaggle submission.
package pipeline

import (
	"fmt"

	"github.com/Noofbiz/bikeCast/datasets"
	"github.com/Noofbiz/bikeCast/features"
	"github.com/Noofbiz/bikeCast/metrics"
	"github.com/Noofbiz/bikeCast/model"
	"github.com/Noofbiz/bikeCast/split"
)

// Config holds everything one run needs. Seeds are explicit so the split
// and the ensemble are reproducible without any process-wide random state.
type Config struct {
	TrainPath string
	TestPath  string
	OutPath   string

	Formula       model.Formula
	SplitFraction float64
	SplitSeed     int64
	ModelSeed     int64
}

// DefaultFormula is the predictor list the pipeline currently models the
// log rider count over.
func DefaultFormula() model.Formula {
	return model.Formula{
		Outcome: features.LogCountColumn,
		Predictors: []string{
			features.HourColumn,
			"workingday",
			"weather",
			"temp",
			"windspeed",
			features.ElapsedColumn,
		},
	}
}

// Result carries the run outputs the caller may want to report or plot.
type Result struct {
	ValidationRMSLE float64

	// Transformed tables and the holdout comparison, for inspection.
	Train    *datasets.Table
	Test     *datasets.Table
	Fit      *datasets.Table
	Holdout  *datasets.Table
	LogPreds []float64 // holdout predictions, log scale
	Actual   []float64 // holdout actual counts
}

// Run executes the whole batch. Any stage error aborts the run; nothing is
// written unless every upstream stage succeeded. The final submission model
// is re-fit on the full training table, while the reported RMSLE comes from
// the fit/holdout split. Two different models.
func Run(cfg Config) (*Result, error) {
	rawTrain, err := datasets.Load(cfg.TrainPath)
	if err != nil {
		return nil, fmt.Errorf("load training table: %w", err)
	}
	if !rawTrain.Has("count") {
		return nil, fmt.Errorf("training table %s has no count column", cfg.TrainPath)
	}
	rawTest, err := datasets.Load(cfg.TestPath)
	if err != nil {
		return nil, fmt.Errorf("load test table: %w", err)
	}

	transformer, err := features.NewTransformer(rawTrain)
	if err != nil {
		return nil, fmt.Errorf("build transformer: %w", err)
	}
	train, err := transformer.Apply(rawTrain)
	if err != nil {
		return nil, fmt.Errorf("transform training table: %w", err)
	}
	test, err := transformer.Apply(rawTest)
	if err != nil {
		return nil, fmt.Errorf("transform test table: %w", err)
	}

	fit, holdout, err := split.Partition(train, cfg.SplitFraction, cfg.SplitSeed)
	if err != nil {
		return nil, fmt.Errorf("partition training table: %w", err)
	}

	forest := model.NewForest(cfg.ModelSeed)
	if err := forest.Fit(fit, cfg.Formula); err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}
	logPreds, err := forest.Predict(holdout)
	if err != nil {
		return nil, fmt.Errorf("predict holdout: %w", err)
	}
	actual, err := holdout.Column("count")
	if err != nil {
		return nil, fmt.Errorf("holdout counts: %w", err)
	}
	rmsle, err := metrics.EvaluateLogPredictions(logPreds, actual)
	if err != nil {
		return nil, fmt.Errorf("evaluate holdout: %w", err)
	}

	// Re-fit on the full training table for the submission.
	final := model.NewForest(cfg.ModelSeed)
	if err := final.Fit(train, cfg.Formula); err != nil {
		return nil, fmt.Errorf("fit final forest: %w", err)
	}
	testPreds, err := final.Predict(test)
	if err != nil {
		return nil, fmt.Errorf("predict test table: %w", err)
	}
	if cfg.OutPath != "" {
		if err := datasets.WriteSubmission(cfg.OutPath, test.Datetimes(), testPreds); err != nil {
			return nil, fmt.Errorf("write submission: %w", err)
		}
	}

	return &Result{
		ValidationRMSLE: rmsle,
		Train:           train,
		Test:            test,
		Fit:             fit,
		Holdout:         holdout,
		LogPreds:        logPreds,
		Actual:          actual,
	}, nil
}

// Inspect fits the linear strategy over the same formula and returns its
// coefficients by term name. Diagnostics only; the predictive path never
// uses it.
func Inspect(train *datasets.Table, f model.Formula) (map[string]float64, error) {
	lin := model.NewLinear()
	if err := lin.Fit(train, f); err != nil {
		return nil, fmt.Errorf("fit linear model: %w", err)
	}
	return lin.Coefficients()
}
