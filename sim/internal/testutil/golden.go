// Package testutil provides shared test infrastructure for the scheduling
// simulator: the golden dataset of traced runs and assertion helpers used
// across sim/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one preset run with its expected outcome.
type GoldenTestCase struct {
	Scenario  string        `json:"scenario"`
	Algorithm string        `json:"algorithm"`
	Quantum   int64         `json:"quantum"`
	Metrics   GoldenMetrics `json:"metrics"`
}

// GoldenMetrics represents the expected results of a golden test case.
type GoldenMetrics struct {
	// Exact match metrics
	Ticks    int   `json:"ticks"`
	Makespan int64 `json:"makespan"`
	Finished int   `json:"finished"`

	// Derived from the tick count, compared with tolerance
	UtilizationPercent float64 `json:"utilization_percent"`

	Finish     map[string]int64 `json:"finish"`      // process -> finish label
	CPUColumns map[string][]int `json:"cpu_columns"` // process -> columns marked x
}

// Name labels the case for t.Run.
func (c GoldenTestCase) Name() string {
	name := c.Scenario + "/" + c.Algorithm
	if c.Quantum > 0 {
		name += "-q" + strconv.FormatInt(c.Quantum, 10)
	}
	return name
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
