package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Report is the JSON run report.
type Report struct {
	Generated  time.Time `json:"generated"`
	Transforms []string  `json:"transforms"`
	Modified   int       `json:"modified"`
	Failed     int       `json:"failed"`
	Results    []Result  `json:"results"`
}

// WriteReport writes the outcome of a run as indented JSON.
func WriteReport(path string, plan Plan, results []Result) error {
	modified, failed := Totals(results)
	report := Report{
		Generated:  time.Now().UTC().Truncate(time.Second),
		Transforms: plan.Transforms(),
		Modified:   modified,
		Failed:     failed,
		Results:    results,
	}
	if report.Results == nil {
		report.Results = []Result{}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("batch: create report dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
