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

// Package uimage parses, verifies, and rebuilds the legacy uImage header
// that wraps the kernel/rootfs payload inside a SEAMA envelope, and locates
// a rootfs-named uImage inside an arbitrary byte buffer.
package uimage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/syschmod/dlink-patch-utils/internal/diag"
)

// Magic is the fixed big-endian uImage magic word.
const Magic uint32 = 0x27051956

// HeaderSize is the fixed uImage header length in bytes.
const HeaderSize = 0x40

const (
	headerCRCOffset = 0x04
	sizeOffset      = 0x0c
	dataCRCOffset   = 0x18
	nameOffset      = 0x20
	nameSize        = 0x20
)

// ErrTruncatedHeader indicates buf is smaller than HeaderSize.
var ErrTruncatedHeader = errors.New("uimage: truncated header")

// Header is a parsed uImage header together with its payload (at most Size
// bytes); anything after the payload in the input is not kept.
type Header struct {
	// buf holds HeaderSize header bytes followed by Size payload bytes;
	// trailing bytes from the original input are not retained here.
	buf  []byte
	Size uint32
	Name [nameSize]byte
}

// Parse reads a uImage header from the start of buf. A buffer shorter than
// HeaderSize is a fatal error. Bad magic, a size exceeding the available
// buffer, and invalid CRCs are reported as warnings only: the tool must
// still be able to load and repair a broken image.
func Parse(buf []byte) (*Header, *diag.Warnings, error) {
	if len(buf) < HeaderSize {
		return nil, nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedHeader, HeaderSize, len(buf))
	}

	size := binary.BigEndian.Uint32(buf[sizeOffset : sizeOffset+4])

	total := HeaderSize + int(size)
	if total > len(buf) {
		total = len(buf)
	}

	h := &Header{
		buf:  append([]byte(nil), buf[:total]...),
		Size: size,
	}
	copy(h.Name[:], buf[nameOffset:nameOffset+nameSize])

	w := &diag.Warnings{}
	magic := binary.BigEndian.Uint32(buf[0x00:0x04])
	if magic != Magic {
		w.Add("wrong uImage magic number: %#08x", magic)
	}
	if len(buf) < HeaderSize+int(size) {
		w.Add("image shorter than size from header")
	}

	wantHeaderCRC := binary.BigEndian.Uint32(buf[headerCRCOffset : headerCRCOffset+4])
	if gotHeaderCRC := computeHeaderCRC(buf[:HeaderSize]); gotHeaderCRC != wantHeaderCRC {
		w.Add("header CRC mismatch: have %#08x, want %#08x", wantHeaderCRC, gotHeaderCRC)
	}

	wantDataCRC := binary.BigEndian.Uint32(buf[dataCRCOffset : dataCRCOffset+4])
	payload := h.buf[HeaderSize:]
	if gotDataCRC := crc32.ChecksumIEEE(payload); gotDataCRC != wantDataCRC {
		w.Add("data CRC mismatch: have %#08x, want %#08x", wantDataCRC, gotDataCRC)
	}

	return h, w, nil
}

// computeHeaderCRC computes CRC-32/IEEE over a 64-byte header with the
// header_crc field zeroed, per spec.
func computeHeaderCRC(header []byte) uint32 {
	tmp := append([]byte(nil), header...)
	binary.BigEndian.PutUint32(tmp[headerCRCOffset:headerCRCOffset+4], 0)
	return crc32.ChecksumIEEE(tmp)
}

// Content returns the Size bytes immediately following the header.
func (h *Header) Content() []byte {
	return h.buf[HeaderSize:]
}

// Bytes returns the full header+payload buffer.
func (h *Header) Bytes() []byte {
	return h.buf
}

// UpdateContent replaces the payload with newPayload and recomputes both
// CRCs and the size field, per spec.md §4.3.
func (h *Header) UpdateContent(newPayload []byte) {
	h.Size = uint32(len(newPayload)) //nolint:gosec // payload length fits uint32 for firmware-sized data

	header := append([]byte(nil), h.buf[:HeaderSize]...)
	binary.BigEndian.PutUint32(header[dataCRCOffset:dataCRCOffset+4], crc32.ChecksumIEEE(newPayload))
	binary.BigEndian.PutUint32(header[sizeOffset:sizeOffset+4], h.Size)
	binary.BigEndian.PutUint32(header[headerCRCOffset:headerCRCOffset+4], 0)
	binary.BigEndian.PutUint32(header[headerCRCOffset:headerCRCOffset+4], computeHeaderCRC(header))

	out := make([]byte, 0, HeaderSize+len(newPayload))
	out = append(out, header...)
	out = append(out, newPayload...)
	h.buf = out
}
