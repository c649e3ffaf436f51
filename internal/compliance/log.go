// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compliance

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Log appends compliance rejections to do-not-ingest.log. Transient fetch
// and parse failures are never written here.
type Log struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewLog returns a Log writing to path.
func NewLog(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Append writes one tab-separated line: timestamp, URL, reason, flags.
func (l *Log) Append(rawURL, reason string, flags []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating compliance log directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening compliance log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s\t%s\t%s\t%s\n",
		l.now().UTC().Format(time.RFC3339), rawURL, reason, strings.Join(flags, ","))
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("writing compliance log: %w", err)
	}
	return nil
}
