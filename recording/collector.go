package recording

import "sync"

// A MemCollector keeps flushed records in memory. It completes each flush
// synchronously and is mainly useful in tests and for small runs whose
// history is read back programmatically.
type MemCollector struct {
	mu      sync.Mutex
	records []Record
}

// NewMemCollector creates an in-memory collector.
func NewMemCollector() *MemCollector {
	return &MemCollector{}
}

// Collect stores the record and completes immediately.
func (c *MemCollector) Collect(rec Record, done func()) {
	c.mu.Lock()
	c.records = append(c.records, rec)
	c.mu.Unlock()

	done()
}

// Records returns the flushed records in arrival order.
func (c *MemCollector) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Record, len(c.records))
	copy(out, c.records)

	return out
}
