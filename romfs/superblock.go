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
	"fmt"

	"github.com/syschmod/dlink-patch-utils/internal/bincur"
)

// SuperblockSize is the fixed size of the RomFS superblock, in bytes.
const SuperblockSize = 0x20

// FileEntrySize is the fixed size of one entry record, in bytes.
const FileEntrySize = 0x20

// Alignment is the byte boundary entries and the overall image are padded to.
const Alignment = 0x20

// DevIDConventional is the value D-Link firmware conventionally stores in
// the superblock's dev_id field.
const DevIDConventional = 0x01020304

// Superblock is the RomFS's fixed 32-byte header.
type Superblock struct {
	Magic      uint32
	EntryCount uint32
	MaxSize    uint32
	DevID      uint32
	Signature  [16]byte
}

// parseSuperblock reads a Superblock from the first SuperblockSize bytes of buf.
func parseSuperblock(buf []byte) (*Superblock, error) {
	if len(buf) < SuperblockSize {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedHeader, SuperblockSize, len(buf))
	}

	c := bincur.New(buf[:SuperblockSize], bincur.LittleEndian)
	sb := &Superblock{}

	var err error
	if sb.Magic, err = c.Uint32(); err != nil {
		return nil, err
	}
	if sb.EntryCount, err = c.Uint32(); err != nil {
		return nil, err
	}
	if sb.MaxSize, err = c.Uint32(); err != nil {
		return nil, err
	}
	if sb.DevID, err = c.Uint32(); err != nil {
		return nil, err
	}
	sig, err := c.Bytes(16)
	if err != nil {
		return nil, err
	}
	copy(sb.Signature[:], sig)

	return sb, nil
}

// bytes re-serializes the superblock, reflecting any MaxSize patch applied
// during Rebuild.
func (sb *Superblock) bytes() []byte {
	buf := make([]byte, SuperblockSize)
	_ = bincur.PutUint32At(buf, 0x00, sb.Magic, bincur.LittleEndian)
	_ = bincur.PutUint32At(buf, 0x04, sb.EntryCount, bincur.LittleEndian)
	_ = bincur.PutUint32At(buf, 0x08, sb.MaxSize, bincur.LittleEndian)
	_ = bincur.PutUint32At(buf, 0x0c, sb.DevID, bincur.LittleEndian)
	copy(buf[0x10:0x20], sb.Signature[:])
	return buf
}
