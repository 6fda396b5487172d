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

package uimage

import (
	"bytes"
	"encoding/binary"
	"strings"
)

// NotFound is the sentinel offset LocateRootfs returns when no rootfs
// uImage is found.
const NotFound = -1

// LocateRootfs scans buf for a uImage whose name field contains "rootfs",
// returning its start offset, or NotFound if the scan exhausts the buffer.
//
// A candidate is "correct" here purely in the sense of having the right
// magic and a size that fits within the remaining buffer (matching the
// original locate_rootfs_uImage's notion of uim.correct); CRC validity is
// not required to identify the candidate, since a corrupt-but-locatable
// rootfs image is exactly the case this toolkit needs to repair.
func LocateRootfs(buf []byte) int {
	var magicBytes [4]byte
	binary.BigEndian.PutUint32(magicBytes[:], Magic)

	i := 0
	for i <= len(buf)-len(magicBytes) {
		if !bytes.Equal(buf[i:i+len(magicBytes)], magicBytes[:]) {
			i++
			continue
		}

		rest := buf[i:]
		if len(rest) < HeaderSize {
			i++
			continue
		}
		size := binary.BigEndian.Uint32(rest[sizeOffset : sizeOffset+4])
		if len(rest) < HeaderSize+int(size) {
			i++
			continue
		}

		var name [nameSize]byte
		copy(name[:], rest[nameOffset:nameOffset+nameSize])
		if strings.Contains(string(bytes.TrimRight(name[:], "\x00")), "rootfs") {
			return i
		}
		i += HeaderSize + int(size)
	}
	return NotFound
}
