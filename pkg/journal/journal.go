// Package journal writes one JSON file per batch run so past collections can
// be audited without a database.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record captures one run and its outcome.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Job       string    `json:"job"`
	Run       int       `json:"run"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Report    any       `json:"report,omitempty"`
}

// Writer persists records to a directory as JSON files.
type Writer struct {
	dir   string
	mu    sync.Mutex
	seq   int
	nowFn func() time.Time
}

// NewWriter constructs a journal writer, creating dir if needed.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		dir = "journal"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: create %s: %w", dir, err)
	}
	return &Writer{dir: dir, nowFn: time.Now}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write numbers rec and stores it under a timestamped name. It returns the path written.
func (w *Writer) Write(rec *Record) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("journal: nil record")
	}
	w.mu.Lock()
	w.seq++
	rec.Run = w.seq
	w.mu.Unlock()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}
	name := fmt.Sprintf("%s_%s_%05d.json", jobName(rec.Job), rec.Timestamp.UTC().Format("20060102_150405"), rec.Run)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("journal: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("journal: write %s: %w", path, err)
	}
	return path, nil
}

func jobName(job string) string {
	if job == "" {
		return "run"
	}
	return job
}
