package utils

import (
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// TickRing is a fixed-size circular buffer of tick records.
// True ring buffer - no resizing in the hot path!
// -----------------------------------------------------------------------------

type TickRing struct {
	data     []models.MTickRecord
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewTickRing creates a new buffer with fixed capacity
func NewTickRing(capacity int) *TickRing {
	if capacity <= 0 {
		capacity = 300 // Default matches a full session at a 10s cadence
	}

	return &TickRing{
		data:     make([]models.MTickRecord, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds a tick record, evicting the oldest when full.
func (rb *TickRing) Append(rec models.MTickRecord) {
	rb.data[rb.index] = rec
	rb.index = (rb.index + 1) % rb.capacity

	// Update size (never exceeds capacity)
	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns the n most recent records, oldest first.
func (rb *TickRing) GetLatest(n int) []models.MTickRecord {
	if rb.size == 0 || n <= 0 {
		return []models.MTickRecord{}
	}

	count := n
	if n > rb.size {
		count = rb.size
	}

	result := make([]models.MTickRecord, count)

	// Latest data is at index-1
	startIdx := (rb.index - count + rb.capacity) % rb.capacity
	for i := 0; i < count; i++ {
		result[i] = rb.data[(startIdx+i)%rb.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all data in insertion order (oldest to newest)
func (rb *TickRing) GetAll() []models.MTickRecord {
	if rb.size == 0 {
		return []models.MTickRecord{}
	}

	result := make([]models.MTickRecord, rb.size)

	// Oldest element: wrap-around point when full, else index 0
	startIdx := 0
	if rb.size == rb.capacity {
		startIdx = rb.index
	}

	for i := 0; i < rb.size; i++ {
		result[i] = rb.data[(startIdx+i)%rb.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *TickRing) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (rb *TickRing) Capacity() int {
	return rb.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *TickRing) Clear() {
	rb.index = 0
	rb.size = 0
}
