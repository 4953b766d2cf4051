package datasets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `datetime,season,holiday,workingday,weather,temp,atemp,humidity,windspeed,casual,registered,count
2011-01-01 00:00:00,1,0,0,1,9.84,14.395,81,0.0,3,13,16
2011-01-01 01:00:00,1,0,0,2,9.02,13.635,80,1.5,8,32,40
2011-01-01 02:00:00,1,0,1,3,9.02,13.635,80,2.0,5,27,32
`

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp CSV: %v", err)
	}
	return path
}

func TestLoadTrainingTable(t *testing.T) {
	tab, err := Load(writeTempCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if tab.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", tab.Len())
	}
	if !tab.Has("count") {
		t.Fatalf("expected count column in training table")
	}

	counts, err := tab.Column("count")
	if err != nil {
		t.Fatalf("Column(count) error: %v", err)
	}
	want := []float64{16, 40, 32}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("count[%d] = %v, want %v", i, counts[i], want[i])
		}
	}

	if got := tab.Datetimes()[1]; got != "2011-01-01 01:00:00" {
		t.Fatalf("raw datetime not preserved: %q", got)
	}
	if got := tab.Timestamps()[2].Hour(); got != 2 {
		t.Fatalf("parsed hour = %d, want 2", got)
	}
}

func TestLoadTestTableWithoutCount(t *testing.T) {
	content := strings.ReplaceAll(sampleCSV, ",casual,registered,count", "")
	content = strings.ReplaceAll(content, ",3,13,16", "")
	content = strings.ReplaceAll(content, ",8,32,40", "")
	content = strings.ReplaceAll(content, ",5,27,32", "")

	tab, err := Load(writeTempCSV(t, content))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if tab.Has("count") {
		t.Fatalf("test table should not have a count column")
	}
	if tab.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", tab.Len())
	}
}

func TestLoadMissingRequiredColumn(t *testing.T) {
	content := strings.ReplaceAll(sampleCSV, "windspeed", "windmph")
	if _, err := Load(writeTempCSV(t, content)); err == nil {
		t.Fatalf("expected error for missing required column")
	} else if !strings.Contains(err.Error(), "windspeed") {
		t.Fatalf("error should name the missing column: %v", err)
	}
}

func TestLoadBadTimestamp(t *testing.T) {
	content := strings.Replace(sampleCSV, "2011-01-01 01:00:00", "not-a-date", 1)
	if _, err := Load(writeTempCSV(t, content)); err == nil {
		t.Fatalf("expected error for malformed timestamp")
	} else if !strings.Contains(err.Error(), "row 3") {
		t.Fatalf("error should name the offending row: %v", err)
	}
}

func TestLoadBadNumericCell(t *testing.T) {
	content := strings.Replace(sampleCSV, "9.02,13.635,80,1.5", "abc,13.635,80,1.5", 1)
	if _, err := Load(writeTempCSV(t, content)); err == nil {
		t.Fatalf("expected error for malformed numeric cell")
	} else if !strings.Contains(err.Error(), "temp") {
		t.Fatalf("error should name the offending column: %v", err)
	}
}

func TestSelectAndClone(t *testing.T) {
	tab, err := Load(writeTempCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	tab.SetCategorical("weather")

	sub, err := tab.Select([]int{2, 0})
	if err != nil {
		t.Fatalf("Select error: %v", err)
	}
	if sub.Len() != 2 {
		t.Fatalf("subset length = %d, want 2", sub.Len())
	}
	counts, _ := sub.Column("count")
	if counts[0] != 32 || counts[1] != 16 {
		t.Fatalf("Select did not preserve requested order: %v", counts)
	}
	if !sub.IsCategorical("weather") {
		t.Fatalf("categorical flag lost in Select")
	}

	if _, err := tab.Select([]int{5}); err == nil {
		t.Fatalf("expected out-of-range error")
	}

	// mutating a clone must not touch the original
	clone := tab.Clone()
	cc, _ := clone.Column("count")
	cc[0] = 999
	orig, _ := tab.Column("count")
	if orig[0] != 16 {
		t.Fatalf("Clone shares storage with original")
	}
}
