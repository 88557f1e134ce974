// Command tablebatch extracts tables from a directory of PDF documents,
// re-running only documents whose content changed since the last run.
//
// It loads layered configuration, validates paths, and either runs
// dependency diagnostics (--check), the read-only validate pass (--validate),
// or the parallel extraction batch.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/backmassage/tablebatch/internal/check"
	"github.com/backmassage/tablebatch/internal/config"
	"github.com/backmassage/tablebatch/internal/display"
	"github.com/backmassage/tablebatch/internal/extract"
	"github.com/backmassage/tablebatch/internal/logging"
	"github.com/backmassage/tablebatch/internal/metrics"
	"github.com/backmassage/tablebatch/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the root command and maps the outcome to an exit code.
// Non-zero only for: bad configuration, a missing or non-directory input,
// a failed --check, or a --validate pass that found outdated documents.
func run(args []string) int {
	exitCode := 0
	cmd := newRootCommand(&exitCode)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		// Bootstrap errors: the logger doesn't exist yet.
		fmt.Fprintf(os.Stderr, "tablebatch: %v\n", err)
		return 1
	}
	return exitCode
}

func newRootCommand(exitCode *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tablebatch [flags] <input_dir> <output_dir>",
		Short: "Incremental batch table extraction from PDF documents",
		Long: `tablebatch extracts tables from every PDF in input_dir into
output_dir/<relative dir>/<name>/, recording a content fingerprint next to
each result. Later runs skip documents whose content is unchanged.

Use --validate in CI to fail when any document's extraction is missing or
out of date. Settings may also come from ./tablebatch.yaml or TABLEBATCH_*
environment variables; flags win.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), args)
			if err != nil {
				return err
			}
			*exitCode = execute(cmd.Context(), cfg, cmd.OutOrStdout())
			return nil
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// execute runs one configured invocation and returns its exit code.
func execute(ctx context.Context, cfg *config.Config, stdout io.Writer) int {
	log, err := logging.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tablebatch: %v\n", err)
		return 1
	}
	defer log.Close()

	// Logger available: all output goes through log from here on.
	display.PrintBanner(stdout)

	if cfg.CheckOnly {
		if !check.RunCheck(cfg, log) {
			return 1
		}
		return 0
	}

	// Input must exist before anything is written.
	if err := cfg.ValidatePaths(); err != nil {
		log.Error("%v", err)
		return 1
	}
	warnIfNested(cfg, log)

	log.Info("=== tablebatch v%s (%s) ===", version, commit)
	log.Info("In:  %s", cfg.InputDir)
	log.Info("Out: %s", cfg.OutputDir)

	rec := metrics.New()
	defer writeMetrics(cfg, rec, log)

	if cfg.ValidateOnly {
		return validate(cfg, log, rec, stdout)
	}

	if err := check.CheckDeps(cfg); err != nil {
		log.Warn("%v", err)
		log.Warn("Documents will fail until the dependency is installed (see --check)")
	}

	// Signal handling: cancel the context on SIGINT/SIGTERM. Running camelot
	// processes are killed; documents not yet started report "interrupted".
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, stopping workers…")
			cancel()
		case <-ctx.Done():
		}
	}()

	stats, err := pipeline.Run(ctx, cfg, log, pipeline.Deps{
		Extractor: extract.NewCamelot(cfg),
		Metrics:   rec,
	})
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	if stats.Total > 0 {
		display.RenderSummary(stdout, "Run summary", stats.Rows())
	}
	return 0
}

// validate runs the read-only pass and returns 1 when anything is outdated.
func validate(cfg *config.Config, log *logging.Logger, rec *metrics.Recorder, stdout io.Writer) int {
	report, err := pipeline.Validate(cfg, log)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	rec.SetOutdated(len(report.Outdated))
	rec.MarkFinished(time.Now())

	display.RenderOutdated(stdout, report.Rows())
	if !report.AllCurrent() {
		log.Error("Run without --validate to process them")
		return 1
	}
	return 0
}

// warnIfNested warns when the output tree lives inside the input tree.
// Artifacts are never PDFs, so discovery is unaffected, but the layout is
// usually a mistake.
func warnIfNested(cfg *config.Config, log *logging.Logger) {
	inputAbs, err := absPath(cfg.InputDir)
	if err != nil {
		return
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		return
	}
	if config.OutputInsideInput(inputAbs, outputAbs) {
		log.Warn("Output directory is inside the input directory: %s", cfg.OutputDir)
	}
}

// writeMetrics writes the Prometheus textfile when --metrics-file is set.
func writeMetrics(cfg *config.Config, rec *metrics.Recorder, log *logging.Logger) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
		log.Warn("%v", err)
		return
	}
	log.Debug("Metrics written to %s", cfg.MetricsFile)
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies. A path that does not exist yet
// is returned absolute but unresolved.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
