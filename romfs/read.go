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
	"bytes"
	"fmt"

	"github.com/ulikunitz/xz/lzma"

	"github.com/syschmod/dlink-patch-utils/internal/diag"
)

// GetData returns the stored bytes for uid's file content. When decompress
// is true and the entry is LZMA-compressed (size_decompressed != 0), the
// decompressed bytes are returned; a length mismatch against
// size_decompressed is reported as a warning, not an error. Decompression
// failure is non-fatal: the raw bytes are returned with a warning
// (spec.md §4.5.2).
func (fs *FS) GetData(uid int, decompress bool) ([]byte, *diag.Warnings, error) {
	w := &diag.Warnings{}

	node, ok := fs.Entries[uid]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownUID, uid)
	}

	start, end := int(node.Offset), int(node.Offset)+int(node.Size)
	if start < 0 || end > len(fs.image) || start > end {
		return nil, nil, fmt.Errorf("romfs: entry %d data range [%d:%d) out of bounds", uid, start, end)
	}
	raw := fs.image[start:end]

	if !decompress || node.SizeDecompressed == 0 {
		return raw, w, nil
	}

	decoded, err := lzmaAloneDecompress(raw)
	if err != nil {
		w.Add("could not uncompress entry %d: %v", uid, err)
		return raw, w, nil
	}
	if uint32(len(decoded)) != node.SizeDecompressed { //nolint:gosec // decoded length fits uint32 for firmware-sized data
		w.Add("[lzma] wrong decompressed size for entry %d: got %d, want %d", uid, len(decoded), node.SizeDecompressed)
	}
	return decoded, w, nil
}

// lzmaAloneDecompress decodes a classic LZMA-alone stream as stored by
// RomFS file bodies (spec.md §4.6).
func lzmaAloneDecompress(compressed []byte) ([]byte, error) {
	r, err := lzma.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("lzma init: %w", err)
	}
	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("lzma read: %w", err)
	}
	return out.Bytes(), nil
}
