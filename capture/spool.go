// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// spoolFile is a zstd-compressed temporary file holding a capture that
// outgrew its in-memory limit. Child output is usually text (logs,
// build output), where zstd at the default level gives 3-5x reduction
// for negligible CPU — the spool on disk stays far smaller than the
// stream it absorbs.
type spoolFile struct {
	file     *os.File
	encoder  *zstd.Encoder
	finished bool
}

// newSpool creates a spool file in dir (os.TempDir when empty). The
// file is created with a procio-spool-*.zst name so stray spools from
// crashed runs are identifiable.
func newSpool(dir string) (*spoolFile, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	file, err := os.CreateTemp(dir, "procio-spool-*.zst")
	if err != nil {
		return nil, fmt.Errorf("creating spool file: %w", err)
	}
	encoder, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, fmt.Errorf("creating spool encoder: %w", err)
	}
	return &spoolFile{file: file, encoder: encoder}, nil
}

// write compresses p into the spool.
func (s *spoolFile) write(p []byte) error {
	if s.finished {
		return fmt.Errorf("write to finished spool %s", s.file.Name())
	}
	if _, err := s.encoder.Write(p); err != nil {
		return fmt.Errorf("writing spool %s: %w", s.file.Name(), err)
	}
	return nil
}

// finish flushes and closes the encoder, making the spool readable.
// Idempotent; further writes are rejected.
func (s *spoolFile) finish() error {
	if s.finished {
		return nil
	}
	s.finished = true
	if err := s.encoder.Close(); err != nil {
		return fmt.Errorf("finishing spool %s: %w", s.file.Name(), err)
	}
	return nil
}

// readAll decompresses the entire spool. The spool must be finished.
func (s *spoolFile) readAll() ([]byte, error) {
	if err := s.finish(); err != nil {
		return nil, err
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding spool %s: %w", s.file.Name(), err)
	}
	decoder, err := zstd.NewReader(s.file)
	if err != nil {
		return nil, fmt.Errorf("creating spool decoder: %w", err)
	}
	defer decoder.Close()
	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("reading spool %s: %w", s.file.Name(), err)
	}
	return data, nil
}

// release closes and deletes the spool file. Safe to call more than
// once; errors from a missing file are ignored.
func (s *spoolFile) release() error {
	if s.file == nil {
		return nil
	}
	name := s.file.Name()
	finishErr := s.finish()
	closeErr := s.file.Close()
	removeErr := os.Remove(name)
	s.file = nil
	if finishErr != nil {
		return finishErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing spool %s: %w", name, closeErr)
	}
	if removeErr != nil && !os.IsNotExist(removeErr) {
		return fmt.Errorf("removing spool %s: %w", name, removeErr)
	}
	return nil
}
