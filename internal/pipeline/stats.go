package pipeline

import (
	"strconv"
	"time"

	"github.com/backmassage/tablebatch/internal/display"
	"github.com/backmassage/tablebatch/internal/processor"
)

// RunStats tracks aggregate counters across a batch run.
type RunStats struct {
	Total      int // Documents discovered.
	Current    int // Results received so far.
	Processed  int // Successful extractions, including Empty.
	Empty      int // Successful extractions that found no tables.
	Skipped    int
	Failed     int
	Tables     int   // Tables exported.
	InputBytes int64 // Bytes of documents that were extracted.
	Elapsed    time.Duration
}

// Add folds one result into the counters.
func (s *RunStats) Add(res processor.Result) {
	s.Current++
	switch res.Status {
	case processor.StatusProcessed:
		s.Processed++
		s.Tables += res.Tables
		s.InputBytes += res.Size
	case processor.StatusEmpty:
		s.Processed++
		s.Empty++
		s.InputBytes += res.Size
	case processor.StatusSkipped:
		s.Skipped++
	case processor.StatusFailed:
		s.Failed++
	}
}

// ErrorCount is the number of documents that failed.
func (s *RunStats) ErrorCount() int { return s.Failed }

// Rows renders the stats for display.RenderSummary.
func (s *RunStats) Rows() []display.Row {
	return []display.Row{
		{"Documents", strconv.Itoa(s.Total)},
		{"Processed", strconv.Itoa(s.Processed)},
		{"  without tables", strconv.Itoa(s.Empty)},
		{"Skipped (up to date)", strconv.Itoa(s.Skipped)},
		{"Failed", strconv.Itoa(s.Failed)},
		{"Tables exported", strconv.Itoa(s.Tables)},
		{"Input extracted", display.FormatBytes(s.InputBytes)},
		{"Elapsed", display.FormatDuration(s.Elapsed)},
	}
}
