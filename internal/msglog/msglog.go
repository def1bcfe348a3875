// Package msglog appends chat messages to per-day log files under the
// configured directory. The files are what the offline token estimator reads.
package msglog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Writer appends message lines of the form
// "<RFC3339 timestamp> <username> content: <text>" to <dir>/<date>.log.
type Writer struct {
	dir string
	mu  sync.Mutex
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Append writes one message to the current day's log file. Embedded newlines
// are flattened to spaces so every message stays on a single line.
func (w *Writer) Append(timestamp time.Time, username, content string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("msglog: failed to create %s: %w", w.dir, err)
	}

	ts := timestamp.UTC()
	path := filepath.Join(w.dir, ts.Format("2006-01-02")+".log")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("msglog: failed to open %s: %w", path, err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s content: %s\n",
		ts.Format(time.RFC3339),
		username,
		strings.ReplaceAll(content, "\n", " "))

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("msglog: failed to write to %s: %w", path, err)
	}
	return nil
}
