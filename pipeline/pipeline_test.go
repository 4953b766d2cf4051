package pipeline

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Noofbiz/bikeCast/datasets"
	"github.com/Noofbiz/bikeCast/features"
)

// writeSyntheticData writes a training CSV with a strong hour-of-day demand
// pattern and a test CSV covering the following day, returning their paths.
func writeSyntheticData(t *testing.T, trainRows, testRows int) (string, string) {
	t.Helper()
	dir := t.TempDir()

	start, err := time.Parse(datasets.TimeLayout, "2011-01-01 00:00:00")
	if err != nil {
		t.Fatalf("parse start time: %v", err)
	}

	row := func(ts time.Time, i int, withCount bool) string {
		hour := ts.Hour()
		weather := 1 + (i/5)%4
		workingday := 0
		if ts.Weekday() != time.Saturday && ts.Weekday() != time.Sunday {
			workingday = 1
		}
		temp := 8.0 + 6.0*math.Sin(float64(hour)/24.0*2*math.Pi) + 0.3*float64(i%7)
		wind := float64(i % 20)
		fields := []string{
			ts.Format(datasets.TimeLayout),
			"1", "0", strconv.Itoa(workingday), strconv.Itoa(weather),
			fmt.Sprintf("%.2f", temp), fmt.Sprintf("%.2f", temp+3),
			"60", fmt.Sprintf("%.1f", wind),
		}
		if withCount {
			count := 10 + hour*8 + (i%5)*3
			fields = append(fields, strconv.Itoa(count))
		}
		return strings.Join(fields, ",")
	}

	var train strings.Builder
	train.WriteString("datetime,season,holiday,workingday,weather,temp,atemp,humidity,windspeed,count\n")
	for i := 0; i < trainRows; i++ {
		train.WriteString(row(start.Add(time.Duration(i)*time.Hour), i, true))
		train.WriteString("\n")
	}
	trainPath := filepath.Join(dir, "train.csv")
	if err := os.WriteFile(trainPath, []byte(train.String()), 0644); err != nil {
		t.Fatalf("write train CSV: %v", err)
	}

	var test strings.Builder
	test.WriteString("datetime,season,holiday,workingday,weather,temp,atemp,humidity,windspeed\n")
	testStart := start.Add(time.Duration(trainRows) * time.Hour)
	for i := 0; i < testRows; i++ {
		test.WriteString(row(testStart.Add(time.Duration(i)*time.Hour), i, false))
		test.WriteString("\n")
	}
	testPath := filepath.Join(dir, "test.csv")
	if err := os.WriteFile(testPath, []byte(test.String()), 0644); err != nil {
		t.Fatalf("write test CSV: %v", err)
	}

	return trainPath, testPath
}

func TestRunEndToEnd(t *testing.T) {
	trainPath, testPath := writeSyntheticData(t, 240, 24)
	outPath := filepath.Join(t.TempDir(), "submission.csv")

	cfg := Config{
		TrainPath:     trainPath,
		TestPath:      testPath,
		OutPath:       outPath,
		Formula:       DefaultFormula(),
		SplitFraction: 0.7,
		SplitSeed:     42,
		ModelSeed:     42,
	}
	res, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if math.IsNaN(res.ValidationRMSLE) || res.ValidationRMSLE < 0 {
		t.Fatalf("invalid RMSLE: %v", res.ValidationRMSLE)
	}
	t.Logf("validation rmsle = %.4f", res.ValidationRMSLE)
	if res.Fit.Len()+res.Holdout.Len() != 240 {
		t.Fatalf("partition does not cover training table: %d + %d", res.Fit.Len(), res.Holdout.Len())
	}
	if !res.Train.Has(features.LogCountColumn) || !res.Train.Has(features.HourColumn) {
		t.Fatalf("transformed training table missing derived columns")
	}
	if res.Test.Has(features.LogCountColumn) {
		t.Fatalf("test table should not have a logcount column")
	}
	if len(res.LogPreds) != res.Holdout.Len() {
		t.Fatalf("holdout predictions length %d != holdout rows %d", len(res.LogPreds), res.Holdout.Len())
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read submission: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "datetime,count" {
		t.Fatalf("bad submission header: %q", lines[0])
	}
	if len(lines) != 25 {
		t.Fatalf("expected 25 submission lines, got %d", len(lines))
	}
	for i, want := range res.Test.Datetimes() {
		parts := strings.SplitN(lines[i+1], ",", 2)
		if parts[0] != want {
			t.Fatalf("submission row %d datetime %q, want %q (order must match)", i, parts[0], want)
		}
		count, err := strconv.Atoi(parts[1])
		if err != nil || count < 0 {
			t.Fatalf("submission row %d count %q not a non-negative integer", i, parts[1])
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	trainPath, testPath := writeSyntheticData(t, 120, 12)
	dir := t.TempDir()

	cfg := Config{
		TrainPath:     trainPath,
		TestPath:      testPath,
		Formula:       DefaultFormula(),
		SplitFraction: 0.7,
		SplitSeed:     9,
		ModelSeed:     9,
	}

	cfg.OutPath = filepath.Join(dir, "a.csv")
	resA, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run(a) error: %v", err)
	}
	cfg.OutPath = filepath.Join(dir, "b.csv")
	resB, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run(b) error: %v", err)
	}

	if resA.ValidationRMSLE != resB.ValidationRMSLE {
		t.Fatalf("same seeds gave different RMSLE: %v vs %v", resA.ValidationRMSLE, resB.ValidationRMSLE)
	}
	a, _ := os.ReadFile(filepath.Join(dir, "a.csv"))
	b, _ := os.ReadFile(filepath.Join(dir, "b.csv"))
	if string(a) != string(b) {
		t.Fatalf("same seeds gave different submission files")
	}
}

func TestRunFailsOnMissingTrainingCount(t *testing.T) {
	_, testPath := writeSyntheticData(t, 48, 4)

	cfg := Config{
		TrainPath:     testPath, // no count column
		TestPath:      testPath,
		Formula:       DefaultFormula(),
		SplitFraction: 0.7,
	}
	if _, err := Run(cfg); err == nil {
		t.Fatalf("expected error when training table has no count column")
	}
}

func TestInspectCoefficients(t *testing.T) {
	trainPath, testPath := writeSyntheticData(t, 120, 4)
	cfg := Config{
		TrainPath:     trainPath,
		TestPath:      testPath,
		Formula:       DefaultFormula(),
		SplitFraction: 0.7,
		SplitSeed:     1,
		ModelSeed:     1,
	}
	res, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	coefs, err := Inspect(res.Train, cfg.Formula)
	if err != nil {
		t.Fatalf("Inspect error: %v", err)
	}
	if _, ok := coefs["(intercept)"]; !ok {
		t.Fatalf("coefficients missing intercept: %v", coefs)
	}
	if _, ok := coefs["temp"]; !ok {
		t.Fatalf("coefficients missing temp term: %v", coefs)
	}
}
