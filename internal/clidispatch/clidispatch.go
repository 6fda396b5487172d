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

// Package clidispatch matches the abbreviated subcommand names the original
// tools accept (e.g. "e" or "ex" or "extract" all select "extract").
package clidispatch

import "strings"

// Match returns the full command name whose abbreviation matches typed, or
// "" if none does. "" never matches anything, mirroring
// "extract".startswith("") being true in the original but deliberately
// excluded here since an empty argument is never a valid subcommand.
func Match(typed string, full ...string) string {
	if typed == "" {
		return ""
	}
	for _, name := range full {
		if strings.HasPrefix(name, typed) {
			return name
		}
	}
	return ""
}
