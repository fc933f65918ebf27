// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package supervise

import "os"

// fallbackPipeCapacity is assumed where F_GETPIPE_SZ is unavailable.
// 64 KB matches Linux's default and is close enough for sizing
// saturation payloads on other Unixes.
const fallbackPipeCapacity = 64 * 1024

func pipeCapacity(file *os.File) (int, error) {
	return fallbackPipeCapacity, nil
}

// PipeCapacity reports the assumed kernel pipe buffer capacity on
// platforms without a query interface.
func PipeCapacity() (int, error) {
	return fallbackPipeCapacity, nil
}
