package pipeline

import (
	"fmt"

	"github.com/backmassage/tablebatch/internal/config"
	"github.com/backmassage/tablebatch/internal/detect"
	"github.com/backmassage/tablebatch/internal/display"
	"github.com/backmassage/tablebatch/internal/fingerprint"
	"github.com/backmassage/tablebatch/internal/naming"
)

// OutdatedUnit is a document whose output is missing or stale.
type OutdatedUnit struct {
	Name   string
	Path   string
	Reason string
}

// ValidationReport is the outcome of a validate pass.
type ValidationReport struct {
	Total    int
	Outdated []OutdatedUnit // In discovery order.
}

// AllCurrent reports whether no document needs processing.
func (r ValidationReport) AllCurrent() bool { return len(r.Outdated) == 0 }

// Rows renders the outdated list for display.RenderOutdated.
func (r ValidationReport) Rows() []display.Row {
	rows := make([]display.Row, len(r.Outdated))
	for i, u := range r.Outdated {
		rows[i] = display.Row{u.Name, u.Reason}
	}
	return rows
}

// Validate checks every document against its output location without
// extracting or writing anything. It runs sequentially.
func Validate(cfg *config.Config, log Logger) (ValidationReport, error) {
	var report ValidationReport

	files, err := Discover(cfg.InputDir, cfg.Recursive)
	if err != nil {
		return report, fmt.Errorf("discover documents: %w", err)
	}
	report.Total = len(files)
	if len(files) == 0 {
		log.Warn("No PDF files found in %s", cfg.InputDir)
		return report, nil
	}

	targets, err := naming.Layout(cfg.InputDir, cfg.OutputDir, files)
	if err != nil {
		return report, fmt.Errorf("assign output locations: %w", err)
	}

	log.Info("Validating %s", display.Plural(len(targets), "PDF file"))
	detector := detect.New(fingerprint.NewStore(log))
	for _, t := range targets {
		skip, reason := detector.ShouldSkip(t.Path, t.Location)
		if skip {
			log.Debug("%s: up to date", t.Name)
			continue
		}
		log.Warn("%s: %s", t.Name, reason)
		report.Outdated = append(report.Outdated, OutdatedUnit{Name: t.Name, Path: t.Path, Reason: reason})
	}

	if report.AllCurrent() {
		log.Success("All %s up to date", display.Plural(report.Total, "document"))
	} else {
		log.Error("%d of %s need processing", len(report.Outdated), display.Plural(report.Total, "document"))
	}
	return report, nil
}
