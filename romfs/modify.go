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
	"strings"
)

// ModifyFile stages data as a pending replacement for the regular file
// whose reconstructed path (leading "/" stripped) equals path. Directories
// are rejected. Returns ErrPathNotFound if no such file exists
// (spec.md §4.5.4).
func (fs *FS) ModifyFile(data []byte, path string) error {
	want := strings.Trim(path, "/")

	for _, uid := range fs.OrderedUIDs() {
		node := fs.Entries[uid]
		if !node.HasParent {
			continue
		}
		got := strings.Trim(fs.BuildPath(uid), "/")
		if got != want {
			continue
		}
		if node.Type == NodeDirectory {
			return fmt.Errorf("%w: %s", ErrAttemptedDirectoryModify, path)
		}
		node.NewData = data
		return nil
	}

	return fmt.Errorf("%w: %s", ErrPathNotFound, path)
}
