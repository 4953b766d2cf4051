package datasets

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"
)

// This file provides the in-memory table the rest of the pipeline operates
// on, loaded from the kaggle bike-sharing CSV assets.
//
// Both the training and test files share the same header except that the
// training file additionally carries the outcome columns (count, plus the
// casual/registered breakdown which this pipeline does not use). Columns are
// stored as float64 slices; the datetime column is parsed into time.Time and
// the raw datetime string is kept verbatim because the submission file must
// echo it back unchanged.

// TimeLayout is the timestamp format used by the kaggle CSV files.
const TimeLayout = "2006-01-02 15:04:05"

// requiredColumns must be present in every input file. count is optional
// and only expected in the training file.
var requiredColumns = []string{
	"datetime", "season", "holiday", "workingday", "weather",
	"temp", "atemp", "humidity", "windspeed",
}

// Table is a column-oriented table of hourly observations.
type Table struct {
	names       []string
	index       map[string]int
	cols        [][]float64
	categorical map[string]bool

	times []time.Time
	raw   []string
}

// NewTable creates an empty table with capacity for n rows. Columns are
// added with AddColumn; timestamps with SetTimestamps.
func NewTable(n int) *Table {
	return &Table{
		index:       make(map[string]int),
		categorical: make(map[string]bool),
		times:       make([]time.Time, 0, n),
		raw:         make([]string, 0, n),
	}
}

// Load reads a headered CSV file into a Table. All required columns must be
// present; count is loaded when the header carries it. Malformed cells abort
// the load with the offending row and column named in the error.
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(strings.ToLower(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("required column %q not found in %s", col, path)
		}
	}
	countIdx, hasCount := colIndex["count"]

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows of %s: %w", path, err)
	}

	tab := NewTable(len(records))
	numeric := []string{"season", "holiday", "workingday", "weather", "temp", "atemp", "humidity", "windspeed"}
	buf := make(map[string][]float64, len(numeric)+1)
	for _, name := range numeric {
		buf[name] = make([]float64, 0, len(records))
	}
	if hasCount {
		buf["count"] = make([]float64, 0, len(records))
	}

	for rowNum, record := range records {
		rawTS := record[colIndex["datetime"]]
		ts, err := time.Parse(TimeLayout, strings.TrimSpace(rawTS))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad datetime %q: %w", rowNum+2, rawTS, err)
		}
		tab.times = append(tab.times, ts)
		tab.raw = append(tab.raw, rawTS)

		for _, name := range numeric {
			v, err := parseFloat64(record[colIndex[name]])
			if err != nil {
				return nil, fmt.Errorf("row %d: bad %s value %q: %w", rowNum+2, name, record[colIndex[name]], err)
			}
			buf[name] = append(buf[name], v)
		}
		if hasCount {
			v, err := parseFloat64(record[countIdx])
			if err != nil {
				return nil, fmt.Errorf("row %d: bad count value %q: %w", rowNum+2, record[countIdx], err)
			}
			buf["count"] = append(buf["count"], v)
		}
	}

	for _, name := range numeric {
		tab.AddColumn(name, buf[name])
	}
	if hasCount {
		tab.AddColumn("count", buf["count"])
	}
	return tab, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.times)
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	return t.cols[i], nil
}

// AddColumn appends a column. Adding an existing name replaces its values.
func (t *Table) AddColumn(name string, values []float64) {
	if i, ok := t.index[name]; ok {
		t.cols[i] = values
		return
	}
	t.index[name] = len(t.names)
	t.names = append(t.names, name)
	t.cols = append(t.cols, values)
}

// SetCategorical marks the named column as an unordered grouping key. The
// model layer expands categorical predictors into indicator variables rather
// than treating their codes as a numeric scale.
func (t *Table) SetCategorical(name string) {
	t.categorical[name] = true
}

// IsCategorical reports whether the named column was marked categorical.
func (t *Table) IsCategorical(name string) bool {
	return t.categorical[name]
}

// Timestamps returns the parsed datetime of every row.
func (t *Table) Timestamps() []time.Time {
	return t.times
}

// Datetimes returns the raw datetime strings exactly as they appeared in the
// source CSV, in row order.
func (t *Table) Datetimes() []string {
	return t.raw
}

// SetTimestamps installs parsed timestamps and their raw string forms.
// Used by tests and synthetic-table construction; Load fills these itself.
func (t *Table) SetTimestamps(times []time.Time, raw []string) {
	t.times = times
	t.raw = raw
}

// Clone returns a deep copy of the table. Transform stages operate on clones
// so the loaded raw values stay inspectable.
func (t *Table) Clone() *Table {
	out := NewTable(t.Len())
	out.times = append(out.times, t.times...)
	out.raw = append(out.raw, t.raw...)
	for i, name := range t.names {
		vals := make([]float64, len(t.cols[i]))
		copy(vals, t.cols[i])
		out.AddColumn(name, vals)
	}
	for name := range t.categorical {
		out.categorical[name] = true
	}
	return out
}

// Select returns a new table containing the given rows, in the given order.
func (t *Table) Select(indices []int) (*Table, error) {
	out := NewTable(len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= t.Len() {
			return nil, fmt.Errorf("row index %d out of range [0, %d)", idx, t.Len())
		}
		out.times = append(out.times, t.times[idx])
		out.raw = append(out.raw, t.raw[idx])
	}
	for i, name := range t.names {
		vals := make([]float64, len(indices))
		for j, idx := range indices {
			vals[j] = t.cols[i][idx]
		}
		out.AddColumn(name, vals)
	}
	for name := range t.categorical {
		out.categorical[name] = true
	}
	return out, nil
}
