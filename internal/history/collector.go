package history

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// BufferGauge is an optional hook reporting the buffer length.
type BufferGauge interface {
	SetHistoryBufferLen(n int)
}

// Collector buffers entries in memory and periodically flushes them to the
// appender in batches. It is safe for concurrent use.
type Collector struct {
	log           BatchAppender
	buffer        []Entry
	mu            sync.Mutex
	batchSize     int
	flushInterval time.Duration
	done          chan struct{}
	gauge         BufferGauge
}

// NewCollector creates a Collector that flushes to the given appender when
// the buffer reaches batchSize or every flushInterval, whichever comes first.
func NewCollector(log BatchAppender, batchSize int, flushInterval time.Duration) *Collector {
	return &Collector{
		log:           log,
		buffer:        make([]Entry, 0, batchSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		done:          make(chan struct{}),
	}
}

// SetGauge sets the optional buffer-length gauge.
func (c *Collector) SetGauge(g BufferGauge) {
	c.mu.Lock()
	c.gauge = g
	c.mu.Unlock()
}

// Start begins a background goroutine that flushes buffered entries on a
// timer. It blocks until Stop is called or the context is cancelled.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-ctx.Done():
			c.flush()
			return
		case <-c.done:
			c.flush()
			return
		}
	}
}

// Record adds an entry to the buffer. If the buffer reaches batchSize,
// a flush is triggered immediately.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.buffer = append(c.buffer, e)
	shouldFlush := len(c.buffer) >= c.batchSize
	if c.gauge != nil {
		c.gauge.SetHistoryBufferLen(len(c.buffer))
	}
	c.mu.Unlock()

	if shouldFlush {
		c.flush()
	}
}

// flush drains all buffered entries and writes them out. It logs errors
// rather than returning them so callers are not blocked.
func (c *Collector) flush() {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.buffer
	c.buffer = make([]Entry, 0, c.batchSize)
	if c.gauge != nil {
		c.gauge.SetHistoryBufferLen(0)
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.log.BatchAppend(ctx, batch); err != nil {
		slog.Error("failed to flush history entries", "count", len(batch), "error", err)
	}
}

// Stop signals the background goroutine to exit and performs a final flush.
func (c *Collector) Stop() {
	close(c.done)
}
