// Package metrics provides per-boot upload metrics collection.
//
// The Collector accumulates counters during a single boot's upload attempt.
// It is a leaf package with no internal dependencies. All increment methods
// are nil-receiver safe so callers can pass a nil collector to disable
// metrics entirely.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of the collected counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Upload lifecycle
	UploadsStarted   int64
	UploadsCompleted int64
	UploadsFailed    int64

	// Streaming
	ChunksSent    int64
	RawBytesSent  int64
	WireBytesSent int64

	// Commit
	EraseFailures int64

	// Dimensions (informational, set at construction)
	DeviceID  string
	Transport string
}

// Collector accumulates metrics during a single boot.
// Thread-safe via sync.Mutex.
type Collector struct {
	mu sync.Mutex

	uploadsStarted   int64
	uploadsCompleted int64
	uploadsFailed    int64

	chunksSent    int64
	rawBytesSent  int64
	wireBytesSent int64

	eraseFailures int64

	deviceID  string
	transport string
}

// NewCollector creates a collector with the given dimensions.
func NewCollector(deviceID, transport string) *Collector {
	return &Collector{deviceID: deviceID, transport: transport}
}

// IncUploadStarted records an upload attempt.
func (c *Collector) IncUploadStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploadsStarted++
}

// IncUploadCompleted records a fully committed upload.
func (c *Collector) IncUploadCompleted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploadsCompleted++
}

// IncUploadFailed records an aborted upload.
func (c *Collector) IncUploadFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploadsFailed++
}

// AddChunk records one delivered chunk with its raw and wire byte counts.
func (c *Collector) AddChunk(rawBytes, wireBytes int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunksSent++
	c.rawBytesSent += int64(rawBytes)
	c.wireBytesSent += int64(wireBytes)
}

// IncEraseFailure records a failed image erase after a delivered upload.
func (c *Collector) IncEraseFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eraseFailures++
}

// Snapshot returns an immutable view of all counters.
// Returns a zero Snapshot for a nil collector.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		UploadsStarted:   c.uploadsStarted,
		UploadsCompleted: c.uploadsCompleted,
		UploadsFailed:    c.uploadsFailed,
		ChunksSent:       c.chunksSent,
		RawBytesSent:     c.rawBytesSent,
		WireBytesSent:    c.wireBytesSent,
		EraseFailures:    c.eraseFailures,
		DeviceID:         c.deviceID,
		Transport:        c.transport,
	}
}
