// Package processor runs the per-document step of a batch: skip check,
// extraction, export and fingerprint recording.
package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/backmassage/tablebatch/internal/detect"
	"github.com/backmassage/tablebatch/internal/extract"
	"github.com/backmassage/tablebatch/internal/fingerprint"
	"github.com/backmassage/tablebatch/internal/naming"
)

// Status is the outcome class of one document.
type Status string

const (
	StatusProcessed Status = "processed" // Tables exported and fingerprint recorded.
	StatusEmpty     Status = "empty"     // Extraction succeeded with zero tables.
	StatusSkipped   Status = "skipped"   // Output already current.
	StatusFailed    Status = "failed"
)

// Fixed result details.
const (
	DetailSkipped     = "skipped (already processed)"
	DetailNoTables    = "no tables found"
	DetailInterrupted = "interrupted"
)

// Job is one unit of work.
type Job struct {
	naming.Target
	Options      extract.Options
	SkipExisting bool
	Timeout      time.Duration // 0 means no limit.
}

// Result describes what happened to one document.
type Result struct {
	Name     string
	Path     string
	Location string
	Status   Status
	Detail   string
	Tables   int
	Size     int64 // Document size in bytes when known.
	Duration time.Duration
}

// OK reports whether the document ended in a success state.
func (r Result) OK() bool { return r.Status != StatusFailed }

// Logger is the logging surface the processor needs.
type Logger interface {
	Debug(string, ...interface{})
}

// Processor handles single documents. It is safe for concurrent use as long
// as no two jobs share an output location.
type Processor struct {
	extractor extract.Extractor
	detector  *detect.Detector
	store     *fingerprint.Store
	log       Logger
}

// New wires a Processor.
func New(extractor extract.Extractor, detector *detect.Detector, store *fingerprint.Store, log Logger) *Processor {
	return &Processor{extractor: extractor, detector: detector, store: store, log: log}
}

// Process runs job to completion. It never returns an error: every failure
// is reported as a Result with StatusFailed, and the sidecar in the job's
// location is only written after a successful export.
func (p *Processor) Process(ctx context.Context, job Job) Result {
	start := time.Now()
	res := Result{Name: job.Name, Path: job.Path, Location: job.Location}
	if fi, err := os.Stat(job.Path); err == nil {
		res.Size = fi.Size()
	}

	finish := func(status Status, detail string) Result {
		res.Status = status
		res.Detail = detail
		res.Duration = time.Since(start)
		return res
	}

	if job.SkipExisting {
		skip, reason := p.detector.ShouldSkip(job.Path, job.Location)
		if skip {
			return finish(StatusSkipped, DetailSkipped)
		}
		p.log.Debug("%s: %s", job.Name, reason)
	}

	if _, err := extract.Extension(job.Options.Format); err != nil {
		return finish(StatusFailed, err.Error())
	}

	if ctx.Err() != nil {
		return finish(StatusFailed, DetailInterrupted)
	}
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	tables, err := p.extractor.Extract(ctx, job.Path, job.Options)
	if err != nil {
		return finish(StatusFailed, describe(err, job.Timeout))
	}
	defer tables.Close()

	n := tables.Len()
	res.Tables = n
	if n == 0 {
		return finish(StatusEmpty, DetailNoTables)
	}

	if err := os.MkdirAll(job.Location, 0o755); err != nil {
		return finish(StatusFailed, fmt.Sprintf("create output directory: %v", err))
	}
	if err := tables.Export(job.Location, job.Options.Format); err != nil {
		return finish(StatusFailed, fmt.Sprintf("export: %v", err))
	}

	fp, err := fingerprint.ComputeFile(job.Path)
	if err != nil {
		return finish(StatusFailed, fmt.Sprintf("fingerprint: %v", err))
	}
	p.store.Save(job.Location, fp)
	res.Size = fp.Size

	return finish(StatusProcessed, fmt.Sprintf("extracted %d table(s)", n))
}

// describe turns an extraction error into a result detail.
func describe(err error, timeout time.Duration) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded) && timeout > 0:
		return fmt.Sprintf("timed out after %s", timeout)
	case errors.Is(err, context.Canceled):
		return DetailInterrupted
	default:
		return err.Error()
	}
}
