// Package logtest provides an in-memory logger for package tests.
package logtest

import (
	"fmt"
	"strings"
	"sync"
)

// Recorder captures log lines as "LEVEL message". Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *Recorder) add(level, format string, args []interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}

func (r *Recorder) Info(format string, args ...interface{})    { r.add("INFO", format, args) }
func (r *Recorder) Success(format string, args ...interface{}) { r.add("SUCCESS", format, args) }
func (r *Recorder) Warn(format string, args ...interface{})    { r.add("WARN", format, args) }
func (r *Recorder) Error(format string, args ...interface{})   { r.add("ERROR", format, args) }
func (r *Recorder) Debug(format string, args ...interface{})   { r.add("DEBUG", format, args) }

// Lines returns a copy of everything logged so far.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Count returns how many lines were logged at level.
func (r *Recorder) Count(level string) int {
	n := 0
	for _, l := range r.Lines() {
		if strings.HasPrefix(l, level+" ") {
			n++
		}
	}
	return n
}

// Contains reports whether any line contains substr.
func (r *Recorder) Contains(substr string) bool {
	for _, l := range r.Lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
