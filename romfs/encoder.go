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

// Encoder is the abstract LZMA-alone compression service Rebuild calls on
// substituted file content (spec.md §4.6, §9 "External process as abstract
// service"). It is passed in by construction so tests can substitute a
// deterministic encoder instead of shelling out to a real binary.
type Encoder interface {
	// Encode compresses data using the given LZMA dictionary size
	// (in bits), returning the classic LZMA-alone byte stream (properties
	// byte + 4-byte dictionary size + 8-byte declared uncompressed size +
	// compressed stream).
	Encode(data []byte, dictBits int) ([]byte, error)
}
