package datasets

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
)

// WriteSubmission writes the kaggle submission file: a header row
// "datetime,count" followed by one row per prediction, in the order given.
// Predictions arrive on the log scale; each is exponentiated, rounded, and
// clamped to zero. The scoring system is order-sensitive, so datetimes and
// predictions must already be aligned row for row.
func WriteSubmission(path string, datetimes []string, logPreds []float64) error {
	if len(datetimes) != len(logPreds) {
		return fmt.Errorf("datetime/prediction length mismatch: %d != %d", len(datetimes), len(logPreds))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"datetime", "count"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, ts := range datetimes {
		count := math.Round(math.Exp(logPreds[i]))
		if count < 0 {
			count = 0
		}
		row := []string{ts, strconv.FormatInt(int64(count), 10)}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
