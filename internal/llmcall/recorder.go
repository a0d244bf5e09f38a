// Package llmcall records diagnostics for every outbound LLM call as JSONL
// files under the cardforge home directory.
package llmcall

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cardforge/cardforge/internal/providers"
)

// Recorder appends call records to a per-day JSONL file. Safe for concurrent
// use. Recording is diagnostic: failures are logged and swallowed so they
// never affect a pipeline run.
type Recorder struct {
	mu     sync.Mutex
	dir    string
	logger *slog.Logger

	openDay  string
	file     *os.File
	failedAt time.Time
}

// NewRecorder creates a recorder writing into dir.
func NewRecorder(dir string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{dir: dir, logger: logger}
}

// Record implements providers.CallRecorder.
func (r *Recorder) Record(rec providers.CallRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.fileFor(rec.Timestamp)
	if err != nil {
		r.warnOnce(err)
		return
	}

	line, err := json.Marshal(rec)
	if err != nil {
		r.warnOnce(fmt.Errorf("encoding call record: %w", err))
		return
	}
	line = append(line, '\n')
	if _, err := f.Write(line); err != nil {
		r.warnOnce(fmt.Errorf("writing call record: %w", err))
	}
}

// Close closes the current log file, if any.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	r.openDay = ""
	return err
}

// fileFor returns the open file for the record's day, rotating as needed.
// Must be called with the lock held.
func (r *Recorder) fileFor(ts time.Time) (*os.File, error) {
	day := ts.UTC().Format("2006-01-02")
	if r.file != nil && r.openDay == day {
		return r.file, nil
	}
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating call log directory: %w", err)
	}
	path := filepath.Join(r.dir, "calls-"+day+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening call log: %w", err)
	}
	r.file = f
	r.openDay = day
	return f, nil
}

// warnOnce rate-limits recorder failure logging to once per minute.
func (r *Recorder) warnOnce(err error) {
	if time.Since(r.failedAt) < time.Minute {
		return
	}
	r.failedAt = time.Now()
	r.logger.Warn("call recording failed", "error", err)
}
