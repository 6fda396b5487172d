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
	"strings"
)

// BuildPath reconstructs uid's full path by walking parent pointers to the
// root, prepending names along the way. Any literal ".." in a name is
// scrubbed defensively (spec.md §4.5.3) and never dereferenced.
func (fs *FS) BuildPath(uid int) string {
	var parts []string

	for {
		node, ok := fs.Entries[uid]
		if !ok {
			break
		}
		if uid == 0 {
			break
		}
		parts = append([]string{scrubDotDot(node.Name)}, parts...)
		uid = node.ParentUID
	}

	return "/" + strings.Join(parts, "/")
}

// scrubDotDot strips any ".." occurrence from a path component so it can
// never be used to escape the reconstructed path.
func scrubDotDot(name string) string {
	return strings.ReplaceAll(name, "..", "")
}
