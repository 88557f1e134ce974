package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/tablebatch/internal/config"
	"github.com/backmassage/tablebatch/internal/detect"
	"github.com/backmassage/tablebatch/internal/display"
	"github.com/backmassage/tablebatch/internal/extract"
	"github.com/backmassage/tablebatch/internal/fingerprint"
	"github.com/backmassage/tablebatch/internal/metrics"
	"github.com/backmassage/tablebatch/internal/naming"
	"github.com/backmassage/tablebatch/internal/processor"
)

// Logger is the logging surface used by the pipeline and the packages it
// drives.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// Deps are the collaborators of a run that callers (and tests) choose.
type Deps struct {
	Extractor extract.Extractor
	Metrics   *metrics.Recorder // Optional.
}

// Workers returns the pool size for a --jobs value: jobs when positive,
// otherwise the CPU count, never less than one.
func Workers(jobs int) int {
	if jobs > 0 {
		return jobs
	}
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}

// Run is the top-level batch entry point. It discovers documents, assigns
// output locations, processes them on a bounded worker pool and returns
// aggregate stats. Per-document failures are counted, never returned; the
// only error is a failed discovery.
func Run(ctx context.Context, cfg *config.Config, log Logger, deps Deps) (RunStats, error) {
	start := time.Now()
	var stats RunStats

	files, err := Discover(cfg.InputDir, cfg.Recursive)
	if err != nil {
		return stats, fmt.Errorf("discover documents: %w", err)
	}
	stats.Total = len(files)
	if len(files) == 0 {
		log.Warn("No PDF files found in %s", cfg.InputDir)
		return stats, nil
	}

	targets, err := naming.Layout(cfg.InputDir, cfg.OutputDir, files)
	if err != nil {
		return stats, fmt.Errorf("assign output locations: %w", err)
	}

	workers := Workers(cfg.Jobs)
	logBatchHeader(cfg, log, len(targets), workers)

	store := fingerprint.NewStore(log)
	proc := processor.New(deps.Extractor, detect.New(store), store, log)
	opts := extract.OptionsFromConfig(cfg)

	// Buffered to the job count so workers never wait on the collector.
	results := make(chan processor.Result, len(targets))

	// A plain Group: one document failing must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(workers)
	go func() {
		for _, t := range targets {
			job := processor.Job{
				Target:       t,
				Options:      opts,
				SkipExisting: cfg.SkipExisting(),
				Timeout:      cfg.Timeout,
			}
			g.Go(func() error {
				results <- proc.Process(ctx, job)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	for res := range results {
		stats.Add(res)
		logResult(log, &stats, res)
		if deps.Metrics != nil {
			extracted := res.Status == processor.StatusProcessed || res.Status == processor.StatusEmpty
			deps.Metrics.Observe(string(res.Status), res.Tables, res.Duration, res.Size, extracted)
		}
	}

	if ctx.Err() != nil {
		log.Warn("Interrupted: remaining documents were not extracted")
	}
	stats.Elapsed = time.Since(start)
	if deps.Metrics != nil {
		deps.Metrics.MarkFinished(time.Now())
	}
	logSummary(log, &stats)
	return stats, nil
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log Logger, total, workers int) {
	log.Info("Found %s", display.Plural(total, "PDF file"))
	log.Info("Format: %s | Flavor: %s | Pages: %s", cfg.Format, cfg.Flavor, cfg.Pages)
	log.Info("Workers: %d", workers)
	if cfg.Force {
		log.Info("Force: reprocessing every document")
	}
	if cfg.Timeout > 0 {
		log.Info("Timeout: %s per document", cfg.Timeout)
	}
}

func logResult(log Logger, stats *RunStats, res processor.Result) {
	prefix := fmt.Sprintf("[%d/%d] %s", stats.Current, stats.Total, res.Name)
	switch res.Status {
	case processor.StatusProcessed:
		log.Success("%s: %s in %s", prefix, res.Detail, display.FormatDuration(res.Duration))
		log.Debug("  -> %s", res.Location)
	case processor.StatusEmpty:
		log.Warn("%s: %s", prefix, res.Detail)
	case processor.StatusSkipped:
		log.Info("%s: %s", prefix, res.Detail)
	default:
		log.Error("%s: %s", prefix, res.Detail)
	}
}

func logSummary(log Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d processed, %d skipped, %d failed", stats.Processed, stats.Skipped, stats.Failed)
	if stats.Empty > 0 {
		log.Info("  %s had no tables", display.Plural(stats.Empty, "document"))
	}
	log.Info("  Tables exported: %d from %s of input in %s",
		stats.Tables, display.FormatBytes(stats.InputBytes), display.FormatDuration(stats.Elapsed))
	if stats.Failed > 0 {
		log.Warn("  %s failed; they will be retried on the next run", display.Plural(stats.Failed, "document"))
	}
}
