// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/zeebo/blake3"
)

// DefaultMemoryLimit is the default number of captured bytes held in
// memory before a capture spills to its spool file. 4 MB covers the
// overwhelming majority of command output without spooling; anything
// larger is compressed on disk instead of growing the heap.
const DefaultMemoryLimit = 4 * 1024 * 1024

// Buffer accumulates every byte written to it, maintaining an exact
// total and a BLAKE3 digest of the full stream. Bytes are held in
// memory up to the configured limit; beyond that the complete capture
// (including the bytes already in memory) moves to a zstd spool file.
//
// Write never loses data: the total and digest always reflect every
// byte the child produced, whether retained in memory, spooled, or —
// after a spool failure — merely counted.
type Buffer struct {
	mu       sync.Mutex
	limit    int
	spoolDir string
	memory   []byte
	spool    *spoolFile
	hasher   *blake3.Hasher
	total    uint64
	// spoolErr records the first spool failure. Once set, retention is
	// abandoned but counting and digesting continue — the drain worker
	// must keep consuming the pipe regardless.
	spoolErr error
}

// NewBuffer creates a capture buffer. limit is the in-memory retention
// limit in bytes (0 means unlimited, never spool); spoolDir is where
// spool files are created (empty means os.TempDir).
func NewBuffer(limit int, spoolDir string) *Buffer {
	return &Buffer{
		limit:    limit,
		spoolDir: spoolDir,
		hasher:   blake3.New(),
	}
}

// Write implements io.Writer. The returned error reports spool
// failures; the caller may keep writing afterwards — subsequent bytes
// are still counted and digested, just not retained.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// blake3's Write never returns an error.
	b.hasher.Write(p)
	b.total += uint64(len(p))

	if b.spoolErr != nil {
		return len(p), nil
	}

	if b.spool != nil {
		if err := b.spool.write(p); err != nil {
			b.abandonSpool(err)
			return len(p), b.spoolErr
		}
		return len(p), nil
	}

	b.memory = append(b.memory, p...)
	if b.limit > 0 && len(b.memory) > b.limit {
		if err := b.startSpool(); err != nil {
			b.spoolErr = err
			b.memory = nil
			return len(p), err
		}
	}
	return len(p), nil
}

// startSpool moves the in-memory capture into a fresh spool file.
// Called with the lock held.
func (b *Buffer) startSpool() error {
	spool, err := newSpool(b.spoolDir)
	if err != nil {
		return err
	}
	if err := spool.write(b.memory); err != nil {
		spool.release()
		return err
	}
	b.spool = spool
	b.memory = nil
	return nil
}

// abandonSpool records err and releases the broken spool. Called with
// the lock held.
func (b *Buffer) abandonSpool(err error) {
	b.spoolErr = err
	if b.spool != nil {
		_ = b.spool.release()
		b.spool = nil
	}
}

// Total returns the number of bytes written so far.
func (b *Buffer) Total() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// Digest returns the hex-encoded BLAKE3 digest of everything written
// so far. Call it after the stream has ended for the digest of the
// complete capture.
func (b *Buffer) Digest() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var digest [32]byte
	copy(digest[:], b.hasher.Sum(nil))
	return hex.EncodeToString(digest[:])
}

// Bytes returns the complete captured stream, reading it back from the
// spool when the capture spilled to disk. Returns an error if retention
// was abandoned after a spool failure — the caller still has Total and
// Digest in that case.
func (b *Buffer) Bytes() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.spoolErr != nil {
		return nil, fmt.Errorf("capture not retained after spool failure: %w", b.spoolErr)
	}
	if b.spool != nil {
		return b.spool.readAll()
	}
	result := make([]byte, len(b.memory))
	copy(result, b.memory)
	return result, nil
}

// Spooled reports whether the capture spilled to a spool file.
func (b *Buffer) Spooled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.spool != nil
}

// Close releases the spool file, if any. The buffer's total and digest
// remain readable; Bytes is no longer available for spooled captures.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.spool == nil {
		return nil
	}
	err := b.spool.release()
	b.spool = nil
	if b.spoolErr == nil {
		b.spoolErr = fmt.Errorf("capture released")
	}
	return err
}
