package creds

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestPlaintextRoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "creds", "access_token"), nil)

	if got := s.Read(); got != "" {
		t.Fatalf("expected empty read before write, got %q", got)
	}
	if err := s.Write("tok_plain"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got := s.Read(); got != "tok_plain" {
		t.Errorf("expected token back, got %q", got)
	}
}

func TestEncryptedRoundTrip(t *testing.T) {
	c, err := NewCipher(testKey)
	if err != nil {
		t.Fatalf("NewCipher failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "access_token")
	s := NewStore(path, c)

	if err := s.Write("tok_secret"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got := s.Read(); got != "tok_secret" {
		t.Errorf("expected token back, got %q", got)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "tok_secret") {
		t.Error("token must not be stored in plaintext")
	}
}

func TestReadWithWrongKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access_token")

	c1, err := NewCipher(testKey)
	if err != nil {
		t.Fatal(err)
	}
	if err := NewStore(path, c1).Write("tok_secret"); err != nil {
		t.Fatal(err)
	}

	c2, err := NewCipher(strings.Repeat("ff", 32))
	if err != nil {
		t.Fatal(err)
	}
	if got := NewStore(path, c2).Read(); got != "" {
		t.Errorf("wrong key must read as no credential, got %q", got)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "access_token"), nil)

	if err := s.Clear(); err != nil {
		t.Fatalf("clearing a missing file must succeed: %v", err)
	}
	if err := s.Write("tok"); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got := s.Read(); got != "" {
		t.Errorf("expected empty read after clear, got %q", got)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second clear must succeed: %v", err)
	}
}

func TestFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "access_token")
	s := NewStore(path, nil)
	if err := s.Write("tok"); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected 0600 credential file, got %o", perm)
	}
}

func TestNewCipherValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantNil bool
		wantErr bool
	}{
		{"empty key disables encryption", "", true, false},
		{"valid 32-byte key", testKey, false, false},
		{"not hex", "zz", false, true},
		{"too short", "0123456789abcdef", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCipher(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCipher() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (c == nil) != tt.wantNil {
				t.Errorf("NewCipher() = %v, wantNil %v", c, tt.wantNil)
			}
		})
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	c, err := NewCipher(testKey)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		sealed string
	}{
		{"not base64", "%%%"},
		{"too short", "YWJj"},
		{"tampered", func() string {
			s, _ := c.Seal("tok")
			return s[:len(s)-4] + "AAAA"
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Open(tt.sealed); err == nil {
				t.Error("expected decode failure")
			}
		})
	}
}
