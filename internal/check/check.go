// Package check provides system diagnostics (--check mode) and pre-run
// dependency validation (CheckDeps) for camelot and Ghostscript.
package check

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/backmassage/tablebatch/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrCamelotNotFound     = errors.New("camelot not found on PATH (pip install \"camelot-py[base]\")")
	ErrGhostscriptNotFound = errors.New("ghostscript (gs) not found on PATH; the lattice flavor needs it")
)

// probeTimeout bounds each version probe.
const probeTimeout = 10 * time.Second

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// RunCheck runs the interactive --check flow: reports camelot and
// Ghostscript availability with their versions. It returns false when a
// tool the configured flavor needs is missing.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkTool(log, "camelot", cfg.CamelotBin, "--version")
	gsOK := checkTool(log, "ghostscript", ghostscriptBin(), "--version")
	if !gsOK {
		if cfg.Flavor == config.FlavorLattice {
			ok = false
		} else {
			log.Info("Ghostscript is only needed for --flavor lattice")
		}
	}
	return ok
}

// CheckDeps is the pre-run validation: camelot must resolve, and
// Ghostscript too when the lattice flavor is selected.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.CamelotBin); err != nil {
		return ErrCamelotNotFound
	}
	if cfg.Flavor == config.FlavorLattice {
		if _, err := exec.LookPath(ghostscriptBin()); err != nil {
			return ErrGhostscriptNotFound
		}
	}
	return nil
}

// --- internal helpers ---

// checkTool resolves bin and logs the first line of its version output.
func checkTool(log Logger, label, bin string, versionArgs ...string) bool {
	path, err := exec.LookPath(bin)
	if err != nil {
		log.Error("%s not found (%s)", label, bin)
		return false
	}
	out, err := runOutput(path, versionArgs...)
	if err != nil {
		log.Warn("%s found at %s but version probe failed: %v", label, path, err)
		return true
	}
	log.Success("%s: %s (%s)", label, firstLine(out), path)
	return true
}

// ghostscriptBin returns the Ghostscript executable name for this platform.
func ghostscriptBin() string {
	for _, name := range []string{"gs", "gswin64c", "gswin32c"} {
		if _, err := exec.LookPath(name); err == nil {
			return name
		}
	}
	return "gs"
}

// runOutput runs a command with a timeout and returns combined output.
func runOutput(name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx > 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
