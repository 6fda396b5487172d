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

// dirSlotSize is the alignment each directory record's (uid + reserved +
// name + NUL) span is padded up to.
const dirSlotSize = 0x20

// dirEntry is one (child uid, child name) pair decoded from a directory's
// data block, before "." and ".." have been filtered out.
type dirEntry struct {
	UID  int
	Name string
}

// parseDirRecords iterates the variable-length directory record block in
// buf until its length is exhausted (spec.md §3 "Directory record block").
// Each record is uid (4 bytes) + 4 reserved bytes + NUL-terminated name,
// padded to a whole multiple of dirSlotSize.
func parseDirRecords(buf []byte) ([]dirEntry, error) {
	c := bincur.New(buf, bincur.LittleEndian)
	var out []dirEntry

	for c.Remaining() > 0 {
		start := c.Offset()

		uidWord, err := c.Uint32()
		if err != nil {
			return nil, err
		}
		if _, err := c.Uint32(); err != nil { // reserved/unused
			return nil, err
		}
		name, err := c.CString()
		if err != nil {
			return nil, err
		}

		total := c.Offset() - start
		slots := total / dirSlotSize
		if total%dirSlotSize != 0 {
			slots++
		}
		padTo := start + slots*dirSlotSize
		if pad := padTo - c.Offset(); pad > 0 {
			if _, err := c.Bytes(pad); err != nil {
				return nil, err
			}
		}

		out = append(out, dirEntry{UID: int(uidWord), Name: name})
	}

	return out, nil
}
