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

package romfs

import (
	"github.com/syschmod/dlink-patch-utils/internal/bincur"
)

const (
	// dirStructMask marks an entry as a directory (bit 0 of type).
	dirStructMask uint32 = 0x00000001

	// compressedMaskUnknown is the COMPRESSED_MASK bit pattern observed in
	// entry type flags. The original source annotates this as "probably
	// permissions" with semantics left uncertain; preserved verbatim and
	// never interpreted, per spec.md §9 Open Questions.
	compressedMaskUnknown uint32 = 0x005b0000
)

// entryRecord is the raw 32-byte on-disk entry layout (spec.md §3 "RomFS entry").
type entryRecord struct {
	Type             uint32
	NLink            uint32
	UID16            uint16
	GID16            uint16
	Size             uint32
	Ctime            uint32
	Offset           uint32
	SizeDecompressed uint32
	UID              int
}

// parseEntryRecord reads one FileEntrySize-byte entry record from buf.
func parseEntryRecord(buf []byte) (*entryRecord, error) {
	c := bincur.New(buf[:FileEntrySize], bincur.LittleEndian)
	e := &entryRecord{}

	var err error
	if e.Type, err = c.Uint32(); err != nil {
		return nil, err
	}
	if e.NLink, err = c.Uint32(); err != nil {
		return nil, err
	}
	if e.UID16, err = c.Uint16(); err != nil {
		return nil, err
	}
	if e.GID16, err = c.Uint16(); err != nil {
		return nil, err
	}
	if e.Size, err = c.Uint32(); err != nil {
		return nil, err
	}
	if e.Ctime, err = c.Uint32(); err != nil {
		return nil, err
	}
	if e.Offset, err = c.Uint32(); err != nil {
		return nil, err
	}
	if e.SizeDecompressed, err = c.Uint32(); err != nil {
		return nil, err
	}
	if e.UID, err = c.DecimalUID(); err != nil {
		return nil, err
	}

	return e, nil
}

// bytes serializes the entry record, preserving user/group id fields
// verbatim (spec.md §4.5.5 step d: "user/group/uid fields preserved verbatim").
func (e *entryRecord) bytes() []byte {
	buf := make([]byte, FileEntrySize)
	_ = bincur.PutUint32At(buf, 0x00, e.Type, bincur.LittleEndian)
	_ = bincur.PutUint32At(buf, 0x04, e.NLink, bincur.LittleEndian)
	_ = bincur.PutUint32At(buf, 0x08, uint32(e.UID16)|uint32(e.GID16)<<16, bincur.LittleEndian)
	_ = bincur.PutUint32At(buf, 0x0c, e.Size, bincur.LittleEndian)
	_ = bincur.PutUint32At(buf, 0x10, e.Ctime, bincur.LittleEndian)
	_ = bincur.PutUint32At(buf, 0x14, e.Offset, bincur.LittleEndian)
	_ = bincur.PutUint32At(buf, 0x18, e.SizeDecompressed, bincur.LittleEndian)

	uidStr := formatDecimalUID(e.UID)
	copy(buf[0x1c:0x20], uidStr)
	return buf
}

// formatDecimalUID renders uid as 4 ASCII decimal digits, matching the
// on-disk entry_uid encoding (spec.md §3). Values outside [0, 9999] are
// truncated to their low 4 digits, which cannot occur for well-formed
// images since entry_uid is always < entry_count.
func formatDecimalUID(uid int) []byte {
	out := make([]byte, 4)
	for i := 3; i >= 0; i-- {
		out[i] = byte('0' + uid%10)
		uid /= 10
	}
	return out
}
