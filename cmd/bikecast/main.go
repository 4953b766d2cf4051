package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Noofbiz/bikeCast/datasets"
	"github.com/Noofbiz/bikeCast/features"
	"github.com/Noofbiz/bikeCast/pipeline"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func main() {
	trainPath := flag.String("train", "assets/kaggle/train.csv", "path to the training CSV")
	testPath := flag.String("test", "assets/kaggle/test.csv", "path to the test CSV")
	outPath := flag.String("out", "output/submission.csv", "path for the submission CSV")
	splitFrac := flag.Float64("split-frac", 0.7, "fraction of training rows used for fitting; the rest validate")
	splitSeed := flag.Int64("split-seed", 42, "random seed for the fit/validation split")
	modelSeed := flag.Int64("model-seed", 42, "random seed for the forest ensemble")
	predictors := flag.String("predictors", "", "comma-separated predictor columns (empty = default formula)")
	showLinear := flag.Bool("linear", false, "also fit the OLS model and print its coefficients")
	plotsDir := flag.String("plots", "", "directory for diagnostic plots (empty disables plotting)")
	flag.Parse()

	formula := pipeline.DefaultFormula()
	if strings.TrimSpace(*predictors) != "" {
		formula.Predictors = nil
		for _, p := range strings.Split(*predictors, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				formula.Predictors = append(formula.Predictors, p)
			}
		}
	}

	resolvedTrain, err := resolveCSV(*trainPath)
	if err != nil {
		log.Fatalf("failed to locate training CSV: %v", err)
	}
	resolvedTest, err := resolveCSV(*testPath)
	if err != nil {
		log.Fatalf("failed to locate test CSV: %v", err)
	}

	if dir := filepath.Dir(*outPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("failed to create output directory %s: %v", dir, err)
		}
	}

	cfg := pipeline.Config{
		TrainPath:     resolvedTrain,
		TestPath:      resolvedTest,
		OutPath:       *outPath,
		Formula:       formula,
		SplitFraction: *splitFrac,
		SplitSeed:     *splitSeed,
		ModelSeed:     *modelSeed,
	}

	log.Printf("Running pipeline: train=%s test=%s formula=%s ~ %s",
		resolvedTrain, resolvedTest, formula.Outcome, strings.Join(formula.Predictors, " + "))
	start := time.Now()
	res, err := pipeline.Run(cfg)
	if err != nil {
		log.Fatalf("pipeline failed: %v", err)
	}
	log.Printf("Pipeline completed in %v", time.Since(start))
	log.Printf("Fit rows=%d holdout rows=%d", res.Fit.Len(), res.Holdout.Len())
	log.Printf("Validation RMSLE = %.5f", res.ValidationRMSLE)
	log.Printf("Submission written to %s (%d rows)", *outPath, res.Test.Len())

	if *showLinear {
		coefs, err := pipeline.Inspect(res.Train, formula)
		if err != nil {
			log.Fatalf("linear inspection failed: %v", err)
		}
		printCoefficients(coefs)
	}

	if *plotsDir != "" {
		if err := os.MkdirAll(*plotsDir, 0755); err != nil {
			log.Fatalf("failed to create plot directory %s: %v", *plotsDir, err)
		}
		if err := plotHourlyProfile(*plotsDir, res.Train); err != nil {
			log.Fatalf("failed to plot hourly profile: %v", err)
		}
		if err := plotHoldout(*plotsDir, res.LogPreds, res.Actual); err != nil {
			log.Fatalf("failed to plot holdout comparison: %v", err)
		}
		log.Printf("Diagnostic plots written to %s", *plotsDir)
	}
}

// resolveCSV accepts either a CSV file or a directory containing one.
func resolveCSV(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return datasets.FindCSVInAssets(path)
	}
	return path, nil
}

func printCoefficients(coefs map[string]float64) {
	names := make([]string, 0, len(coefs))
	for name := range coefs {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("OLS coefficients:")
	for _, name := range names {
		fmt.Printf("  %-16s %+.5f\n", name, coefs[name])
	}
}

// plotHourlyProfile writes a PNG of mean rider count by hour of day.
func plotHourlyProfile(outDir string, train *datasets.Table) error {
	hours, err := train.Column(features.HourColumn)
	if err != nil {
		return err
	}
	counts, err := train.Column("count")
	if err != nil {
		return err
	}

	var sums, ns [24]float64
	for i, h := range hours {
		idx := int(h)
		sums[idx] += counts[i]
		ns[idx]++
	}
	xys := make(plotter.XYs, 0, 24)
	for h := 0; h < 24; h++ {
		if ns[h] == 0 {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(h), Y: sums[h] / ns[h]})
	}

	p := plot.New()
	p.Title.Text = "Mean rentals by hour of day"
	p.X.Label.Text = "hour"
	p.Y.Label.Text = "mean count"

	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 20, G: 80, B: 200, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line, plotter.NewGrid())

	return p.Save(8*vg.Inch, 5*vg.Inch, filepath.Join(outDir, "hourly_profile.png"))
}

// plotHoldout writes a PNG scatter of predicted vs actual holdout counts,
// with the identity line for reference.
func plotHoldout(outDir string, logPreds, actual []float64) error {
	xys := make(plotter.XYs, 0, len(logPreds))
	maxV := 1.0
	for i := range logPreds {
		pred := math.Exp(logPreds[i])
		xys = append(xys, plotter.XY{X: actual[i], Y: pred})
		if actual[i] > maxV {
			maxV = actual[i]
		}
		if pred > maxV {
			maxV = pred
		}
	}

	p := plot.New()
	p.Title.Text = "Holdout: predicted vs actual"
	p.X.Label.Text = "actual count"
	p.Y.Label.Text = "predicted count"

	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = color.RGBA{R: 200, G: 30, B: 30, A: 180}
	sc.GlyphStyle.Radius = vg.Points(1.8)
	p.Add(sc, plotter.NewGrid())

	ident, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: maxV, Y: maxV}})
	if err != nil {
		return err
	}
	ident.Color = color.RGBA{R: 120, G: 120, B: 120, A: 200}
	ident.Width = vg.Points(0.8)
	p.Add(ident)

	return p.Save(8*vg.Inch, 6*vg.Inch, filepath.Join(outDir, "holdout_scatter.png"))
}
