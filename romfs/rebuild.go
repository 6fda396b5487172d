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

	"github.com/syschmod/dlink-patch-utils/internal/diag"
)

// MaxNotCompressed is the threshold above which substituted content is
// LZMA-compressed on rebuild (spec.md §4.5.5).
const MaxNotCompressed = 512

// RebuildDictBits is the LZMA dictionary size parameter (in bits) used when
// compressing substituted RomFS file content.
const RebuildDictBits = 19

// Rebuild re-emits the image: entries in ascending original uid order, each
// aligned to Alignment, substituted content compressed above
// MaxNotCompressed, and the superblock's MaxSize patched up if the new
// image outgrows it (spec.md §4.5.5). It must run once before
// serialization; it operates on the fixed uid set established at Parse
// time (no insertions or deletions).
func (fs *FS) Rebuild(encoder Encoder) (*diag.Warnings, error) {
	w := &diag.Warnings{}

	uids := fs.OrderedUIDs()
	entryTableSize := len(uids) * FileEntrySize
	entryTableStart := SuperblockSize

	var body []byte
	offset := entryTableStart + entryTableSize
	entryTable := make([]byte, entryTableSize)

	for i, uid := range uids {
		node := fs.Entries[uid]

		if rem := offset % Alignment; rem != 0 {
			pad := Alignment - rem
			body = append(body, make([]byte, pad)...)
			offset += pad
		}

		blob, err := fs.materializeBody(node, encoder)
		if err != nil {
			return w, err
		}

		node.Size = uint32(len(blob)) //nolint:gosec // body length fits uint32 for firmware-sized data
		node.Offset = uint32(offset)  //nolint:gosec // offset fits uint32 for firmware-sized images

		rec := &entryRecord{
			Type:             node.RawType,
			NLink:            node.NLink,
			UID16:            node.UID16,
			GID16:            node.GID16,
			Size:             node.Size,
			Ctime:            node.Ctime,
			Offset:           node.Offset,
			SizeDecompressed: node.SizeDecompressed,
			UID:              uid,
		}
		copy(entryTable[i*FileEntrySize:(i+1)*FileEntrySize], rec.bytes())

		body = append(body, blob...)
		offset += len(blob)
	}

	newSize := entryTableStart + entryTableSize + len(body)
	if rem := newSize % Alignment; rem != 0 {
		newSize += Alignment - rem
	}

	if uint32(newSize) > fs.Superblock.MaxSize { //nolint:gosec // newSize fits uint32 for firmware-sized images
		w.Add("RomFS larger than max_size in header! Increasing max_size to %d", newSize)
		fs.Superblock.MaxSize = uint32(newSize) //nolint:gosec // newSize fits uint32 for firmware-sized images
	}

	out := make([]byte, 0, newSize)
	out = append(out, fs.Superblock.bytes()...)
	out = append(out, entryTable...)
	out = append(out, body...)
	if pad := newSize - len(out); pad > 0 {
		out = append(out, make([]byte, pad)...)
	}
	out = out[:newSize]

	fs.image = out
	return w, nil
}

// materializeBody returns the on-disk bytes for node: either its pending
// NewData (compressed if large enough, raw otherwise), or its original raw
// bytes read back from the previous image.
func (fs *FS) materializeBody(node *Node, encoder Encoder) ([]byte, error) {
	if node.NewData == nil {
		raw, _, err := fs.GetData(node.UID, false)
		if err != nil {
			return nil, fmt.Errorf("read original body for uid %d: %w", node.UID, err)
		}
		return append([]byte(nil), raw...), nil
	}

	data := node.NewData
	node.NewData = nil

	if len(data) <= MaxNotCompressed {
		node.SizeDecompressed = 0
		return data, nil
	}

	if encoder == nil {
		return nil, fmt.Errorf("%w: no encoder configured for %d-byte substitution", ErrEncoderFailed, len(data))
	}
	compressed, err := encoder.Encode(data, RebuildDictBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoderFailed, err)
	}
	node.SizeDecompressed = uint32(len(data)) //nolint:gosec // content length fits uint32 for firmware-sized data
	return compressed, nil
}

// Image returns the current raw image bytes: the original parsed bytes
// until Rebuild is called, after which it's the rebuilt bytes.
func (fs *FS) Image() []byte {
	return fs.image
}
