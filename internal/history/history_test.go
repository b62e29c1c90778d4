package history

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// mockAppender records every batch it receives.
type mockAppender struct {
	mu      sync.Mutex
	batches [][]Entry
}

func (m *mockAppender) BatchAppend(_ context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := make([]Entry, len(entries))
	copy(batch, entries)
	m.batches = append(m.batches, batch)
	return nil
}

func (m *mockAppender) batchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func (m *mockAppender) totalEntries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func entry(action string) Entry {
	return Entry{Timestamp: time.Now().UTC(), Action: action, Actor: "admin@example.com", Success: true}
}

func TestCollectorFlushesAtBatchSize(t *testing.T) {
	mock := &mockAppender{}
	c := NewCollector(mock, 3, time.Hour)

	c.Record(entry("login"))
	c.Record(entry("create"))
	if mock.batchCount() != 0 {
		t.Fatal("must not flush below the batch size")
	}

	c.Record(entry("update"))
	if mock.batchCount() != 1 || mock.totalEntries() != 3 {
		t.Fatalf("expected one batch of 3, got %d batches with %d entries", mock.batchCount(), mock.totalEntries())
	}
}

func TestCollectorFlushesOnInterval(t *testing.T) {
	mock := &mockAppender{}
	c := NewCollector(mock, 100, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Start(ctx)

	c.Record(entry("login"))

	deadline := time.After(2 * time.Second)
	for mock.batchCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("interval flush never happened")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if mock.totalEntries() != 1 {
		t.Errorf("expected 1 flushed entry, got %d", mock.totalEntries())
	}
}

func TestCollectorStopFlushesRemainder(t *testing.T) {
	mock := &mockAppender{}
	c := NewCollector(mock, 100, time.Hour)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Start(context.Background())
	}()

	c.Record(entry("login"))
	c.Record(entry("logout"))
	c.Stop()
	wg.Wait()

	if mock.totalEntries() != 2 {
		t.Errorf("expected the remainder flushed on stop, got %d entries", mock.totalEntries())
	}
}

func TestCollectorGauge(t *testing.T) {
	mock := &mockAppender{}
	c := NewCollector(mock, 2, time.Hour)
	g := &gaugeRecorder{}
	c.SetGauge(g)

	c.Record(entry("login"))
	c.Record(entry("logout"))

	got := g.values()
	// 1 after the first record, 2 at the batch threshold, 0 after the flush.
	want := []int{1, 2, 0}
	if len(got) != len(want) {
		t.Fatalf("gauge values %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("gauge value %d = %d, want %d", i, got[i], want[i])
		}
	}
}

type gaugeRecorder struct {
	mu sync.Mutex
	v  []int
}

func (g *gaugeRecorder) SetHistoryBufferLen(n int) {
	g.mu.Lock()
	g.v = append(g.v, n)
	g.mu.Unlock()
}

func (g *gaugeRecorder) values() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]int, len(g.v))
	copy(out, g.v)
	return out
}

func TestFileLogAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "history.jsonl")
	log := NewFileLog(path)
	ctx := context.Background()

	first := []Entry{entry("login"), entry("create")}
	if err := log.BatchAppend(ctx, first); err != nil {
		t.Fatalf("BatchAppend failed: %v", err)
	}
	// A second batch must append, not truncate.
	if err := log.BatchAppend(ctx, []Entry{entry("delete")}); err != nil {
		t.Fatalf("BatchAppend failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var actions []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		actions = append(actions, e.Action)
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}

	want := []string{"login", "create", "delete"}
	if len(actions) != len(want) {
		t.Fatalf("got actions %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("action %d = %q, want %q", i, actions[i], want[i])
		}
	}
}
