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

// Package seama parses and rebuilds the SEAMA envelope: the outer,
// MD5-checksummed, magic-framed container that wraps every D-Link firmware
// payload (configuration blob, language pack, or kernel/rootfs image).
package seama

import (
	"crypto/md5" //nolint:gosec // MD5 is the format's own integrity checksum, not used for security
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/syschmod/dlink-patch-utils/internal/diag"
)

// Magic is the fixed big-endian SEAMA magic word.
const Magic uint32 = 0x5ea3a417

// headerSize is the fixed portion of the header before meta/data: magic (4)
// + meta_len (4) + data_len (4) + md5 (16).
const headerSize = 0x1c

// ErrTruncatedHeader indicates the buffer is too small to hold a SEAMA header.
var ErrTruncatedHeader = errors.New("seama: truncated header")

// Envelope is a decoded SEAMA container.
type Envelope struct {
	MagicWord uint32
	MetaLen   uint32
	DataLen   uint32
	MD5       [16]byte
	Meta      []byte
	Data      []byte
	Surplus   []byte
}

// Decode parses buf as a SEAMA envelope and verifies it. A malformed header
// (fewer than headerSize bytes) is a fatal error; everything else is
// reported as a warning so the caller can still inspect or repair the
// image.
func Decode(buf []byte) (*Envelope, *diag.Warnings, error) {
	if len(buf) < headerSize {
		return nil, nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedHeader, headerSize, len(buf))
	}

	env := &Envelope{
		MagicWord: binary.BigEndian.Uint32(buf[0x00:0x04]),
		MetaLen:   binary.BigEndian.Uint32(buf[0x04:0x08]),
		DataLen:   binary.BigEndian.Uint32(buf[0x08:0x0c]),
	}
	copy(env.MD5[:], buf[0x0c:0x1c])

	metaEnd := headerSize + int(env.MetaLen)
	if metaEnd > len(buf) {
		metaEnd = len(buf)
	}
	env.Meta = buf[headerSize:metaEnd]

	dataEnd := metaEnd + int(env.DataLen)
	if dataEnd > len(buf) {
		dataEnd = len(buf)
	}
	env.Data = buf[metaEnd:dataEnd]
	env.Surplus = buf[dataEnd:]

	warnings := env.verify()
	return env, warnings, nil
}

// verify checks the envelope invariants from the data model and returns the
// warnings produced (an empty, non-nil Warnings means a clean envelope).
func (e *Envelope) verify() *diag.Warnings {
	w := &diag.Warnings{}

	if e.MagicWord != Magic {
		w.Add("wrong SEAMA magic number: %#08x", e.MagicWord)
	}
	if len(e.Surplus) != 0 {
		w.Add("surplus data after SEAMA data length found (%d bytes)", len(e.Surplus))
	}
	if len(e.Data) < int(e.DataLen) {
		w.Add("data length is %d, but SEAMA's data length is %d", len(e.Data), e.DataLen)
	}

	sum := md5.Sum(e.Data) //nolint:gosec // integrity checksum, not a security boundary
	if sum != e.MD5 {
		w.Add("MD5 checksum does not match")
	}

	return w
}

// Encode builds a fresh SEAMA envelope around data, preserving meta
// verbatim and recomputing the MD5 digest. It is pure: it does not depend
// on any prior Decode call.
func Encode(data, meta []byte) []byte {
	sum := md5.Sum(data) //nolint:gosec // integrity checksum, not a security boundary

	out := make([]byte, 0, headerSize+len(meta)+len(data))
	var hdr [headerSize]byte
	binary.BigEndian.PutUint32(hdr[0x00:0x04], Magic)
	binary.BigEndian.PutUint32(hdr[0x04:0x08], uint32(len(meta))) //nolint:gosec // meta length fits uint32 for firmware-sized data
	binary.BigEndian.PutUint32(hdr[0x08:0x0c], uint32(len(data))) //nolint:gosec // data length fits uint32 for firmware-sized data
	copy(hdr[0x0c:0x1c], sum[:])

	out = append(out, hdr[:]...)
	out = append(out, meta...)
	out = append(out, data...)
	return out
}

// DumpFields prints the envelope's header fields to w, hex-formatted for
// integer and byte fields as the original tool's diagnostic print did.
func (e *Envelope) DumpFields(w io.Writer) {
	fmt.Fprintf(w, "%-15s: %#x\n", "magic", e.MagicWord)
	fmt.Fprintf(w, "%-15s: %#x\n", "meta_len", e.MetaLen)
	fmt.Fprintf(w, "%-15s: %#x\n", "data_len", e.DataLen)
	fmt.Fprintf(w, "%-15s: %x\n", "md5", e.MD5)
	fmt.Fprintf(w, "%-15s: %q\n", "meta", e.Meta)
}
