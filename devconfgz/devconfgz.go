// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of dlfw.
//
// dlfw is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// dlfw is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with dlfw.  If not, see <https://www.gnu.org/licenses/>.

// Package devconfgz wraps the configuration blob's gzip member to match the
// exact header bytes the device's firmware loader accepts: MTIME zeroed,
// OS fixed to Unix, and XFL normalized away from the deflate-level-derived
// "best compression"/"fastest" markers.
package devconfgz

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// xflOffset and osOffset are the gzip member's fixed header byte offsets
// (RFC 1952 §2.3).
const (
	xflOffset = 0x08
	osOffset  = 0x09
)

// osUnix is the gzip OS byte value for Unix, required by the device.
const osUnix = 0x03

// Compress gzips data the way the device's configuration loader expects:
// MTIME zeroed, OS forced to Unix, and an XFL byte of 2 or 4 (the flate
// package's "best compression"/"fastest" hints) normalized to 0.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("devconfgz: create writer: %w", err)
	}
	w.Header.OS = osUnix

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("devconfgz: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("devconfgz: close: %w", err)
	}

	out := buf.Bytes()
	if len(out) <= osOffset {
		return nil, fmt.Errorf("devconfgz: gzip output shorter than its own header")
	}
	if out[xflOffset] == 0x2 || out[xflOffset] == 0x4 {
		out[xflOffset] = 0x0
	}
	out[osOffset] = osUnix

	return out, nil
}

// Decompress reverses Compress, tolerating any valid gzip member regardless
// of header byte values.
func Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("devconfgz: open: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("devconfgz: read: %w", err)
	}
	return out, nil
}
