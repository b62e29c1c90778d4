// Package history keeps a local audit trail of the admin actions taken
// through the client: logins, logouts and every mutating employee call.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one recorded admin action.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"` // login, logout, create, update, delete
	Actor      string    `json:"actor,omitempty"`
	EmployeeID string    `json:"employeeId,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Success    bool      `json:"success"`
}

// BatchAppender persists a batch of entries.
// It exists to allow testing without touching the filesystem.
type BatchAppender interface {
	BatchAppend(ctx context.Context, entries []Entry) error
}

// FileLog appends entries to a JSON-lines file.
type FileLog struct {
	mu   sync.Mutex
	path string
}

// NewFileLog creates a FileLog at the given path.
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

// BatchAppend writes the entries as one line of JSON each.
func (l *FileLog) BatchAppend(_ context.Context, entries []Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("writing history entry: %w", err)
		}
	}
	return nil
}
