// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import "sync"

// DefaultTailSize is the default tail ring capacity in bytes. 8 KB
// comfortably holds the last screenful or two of terminal output —
// enough context to explain a child failure without retaining the
// whole stream.
const DefaultTailSize = 8 * 1024

// Ring is a fixed-size circular byte buffer that retains the most
// recently written bytes. Writes never block and never fail; once the
// ring is full, new bytes overwrite the oldest. The total byte count
// keeps advancing so callers can tell how much output preceded the
// retained tail.
type Ring struct {
	mu       sync.Mutex
	data     []byte
	capacity int
	// writePos is the next position to write (0 to capacity-1).
	writePos int
	// total is the number of bytes ever written, including bytes that
	// have since been overwritten.
	total uint64
}

// NewRing creates a ring retaining the last capacity bytes. Use
// DefaultTailSize for the standard tail.
func NewRing(capacity int) *Ring {
	return &Ring{
		data:     make([]byte, capacity),
		capacity: capacity,
	}
}

// Write appends p, overwriting the oldest bytes once the ring is full.
// Implements io.Writer and never returns an error.
func (ring *Ring) Write(p []byte) (int, error) {
	ring.mu.Lock()
	defer ring.mu.Unlock()

	ring.total += uint64(len(p))

	// A write at least as large as the ring replaces the entire
	// contents; only the last capacity bytes can survive.
	if len(p) >= ring.capacity {
		copy(ring.data, p[len(p)-ring.capacity:])
		ring.writePos = 0
		return len(p), nil
	}

	for offset := 0; offset < len(p); {
		available := ring.capacity - ring.writePos
		copyLength := len(p) - offset
		if copyLength > available {
			copyLength = available
		}
		copy(ring.data[ring.writePos:ring.writePos+copyLength], p[offset:offset+copyLength])
		ring.writePos = (ring.writePos + copyLength) % ring.capacity
		offset += copyLength
	}
	return len(p), nil
}

// Tail returns a copy of the retained bytes in write order. The result
// is at most capacity bytes; when total exceeds capacity, only the most
// recent bytes are present.
func (ring *Ring) Tail() []byte {
	ring.mu.Lock()
	defer ring.mu.Unlock()

	stored := ring.total
	if stored > uint64(ring.capacity) {
		stored = uint64(ring.capacity)
	}
	if stored == 0 {
		return nil
	}

	result := make([]byte, stored)
	readPos := (ring.writePos - int(stored)) % ring.capacity
	if readPos < 0 {
		readPos += ring.capacity
	}
	for copied := 0; copied < int(stored); {
		available := ring.capacity - readPos
		copyLength := int(stored) - copied
		if copyLength > available {
			copyLength = available
		}
		copy(result[copied:copied+copyLength], ring.data[readPos:readPos+copyLength])
		readPos = (readPos + copyLength) % ring.capacity
		copied += copyLength
	}
	return result
}

// Total returns the number of bytes ever written to the ring, including
// bytes no longer retained.
func (ring *Ring) Total() uint64 {
	ring.mu.Lock()
	defer ring.mu.Unlock()
	return ring.total
}
