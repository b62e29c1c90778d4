// Package creds persists the bearer credential, the single item of client
// state that survives between runs. It is written by login, removed by
// logout or a server-reported invalid credential, and read fresh on every
// outbound request.
package creds

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Store reads and writes the credential file. A nil cipher stores the
// token in plaintext.
type Store struct {
	path   string
	cipher *Cipher
}

// NewStore creates a credential store at the given file path.
func NewStore(path string, cipher *Cipher) *Store {
	return &Store{path: path, cipher: cipher}
}

// Path returns the credential file location.
func (s *Store) Path() string {
	return s.path
}

// Read returns the persisted token, or "" when no credential is stored or
// the file cannot be decoded with the configured key.
func (s *Store) Read() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	token, err := s.cipher.Open(strings.TrimSpace(string(data)))
	if err != nil {
		return ""
	}
	return token
}

// Write persists the token, creating the parent directory if needed.
func (s *Store) Write(token string) error {
	sealed, err := s.cipher.Seal(token)
	if err != nil {
		return fmt.Errorf("sealing credential: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(sealed+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing credential: %w", err)
	}
	return nil
}

// Clear removes the persisted credential. Missing files are not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing credential: %w", err)
	}
	return nil
}
