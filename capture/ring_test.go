// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"bytes"
	"testing"
)

func TestRingTailUnderCapacity(t *testing.T) {
	t.Parallel()
	ring := NewRing(64)

	ring.Write([]byte("hello"))
	ring.Write([]byte(" world"))

	got := ring.Tail()
	if !bytes.Equal(got, []byte("hello world")) {
		t.Errorf("Tail: got %q, want %q", got, "hello world")
	}
	if ring.Total() != 11 {
		t.Errorf("Total: got %d, want 11", ring.Total())
	}
}

func TestRingTailEmpty(t *testing.T) {
	t.Parallel()
	ring := NewRing(16)

	if got := ring.Tail(); got != nil {
		t.Errorf("Tail of empty ring: got %q, want nil", got)
	}
}

func TestRingWrapKeepsNewestBytes(t *testing.T) {
	t.Parallel()
	ring := NewRing(10)

	// 15 bytes into a 10-byte ring: the first 5 are overwritten.
	ring.Write([]byte("abcde"))
	ring.Write([]byte("fghij"))
	ring.Write([]byte("klmno"))

	got := ring.Tail()
	if !bytes.Equal(got, []byte("fghijklmno")) {
		t.Errorf("Tail after wrap: got %q, want %q", got, "fghijklmno")
	}
	if ring.Total() != 15 {
		t.Errorf("Total: got %d, want 15", ring.Total())
	}
}

func TestRingOversizedWrite(t *testing.T) {
	t.Parallel()
	ring := NewRing(4)

	ring.Write([]byte("abcdefgh"))

	got := ring.Tail()
	if !bytes.Equal(got, []byte("efgh")) {
		t.Errorf("Tail after oversized write: got %q, want %q", got, "efgh")
	}

	// A subsequent small write continues from the replaced state.
	ring.Write([]byte("ij"))
	got = ring.Tail()
	if !bytes.Equal(got, []byte("ghij")) {
		t.Errorf("Tail after follow-up write: got %q, want %q", got, "ghij")
	}
}

func TestRingManySmallWrites(t *testing.T) {
	t.Parallel()
	ring := NewRing(8)

	var reference []byte
	for i := 0; i < 100; i++ {
		chunk := []byte{byte('a' + i%26)}
		ring.Write(chunk)
		reference = append(reference, chunk...)
	}

	got := ring.Tail()
	want := reference[len(reference)-8:]
	if !bytes.Equal(got, want) {
		t.Errorf("Tail: got %q, want %q", got, want)
	}
}
