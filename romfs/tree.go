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
	"sort"

	"github.com/syschmod/dlink-patch-utils/internal/diag"
)

// NodeType classifies a RomFS entry as either a directory or a regular file.
type NodeType int

const (
	// NodeData is a regular file entry.
	NodeData NodeType = iota
	// NodeDirectory is a directory entry.
	NodeDirectory
)

// Node is one logical entry in the RomFS tree, keyed by uid in FS.Entries.
type Node struct {
	UID              int
	Name             string
	ParentUID        int
	HasParent        bool
	Type             NodeType
	RawType          uint32
	NLink            uint32
	UID16            uint16
	GID16            uint16
	Offset           uint32
	Size             uint32
	Ctime            uint32
	SizeDecompressed uint32

	// NewData is a pending content replacement staged by ModifyFile and
	// consumed (and cleared) by Rebuild.
	NewData []byte
}

// FS is a parsed RomFS image: the superblock plus the uid-indexed node
// table built from the entry table and directory record blocks.
type FS struct {
	Superblock *Superblock
	Entries    map[int]*Node
	// order records uids in the order they were first seen during Parse;
	// OrderedUIDs sorts it for deterministic rebuild emission.
	order []int
	image []byte
}

// Parse decodes a full little-endian RomFS image: superblock, entry table,
// and directory record blocks (spec.md §4.5.1).
func Parse(image []byte) (*FS, *diag.Warnings, error) {
	sb, err := parseSuperblock(image)
	if err != nil {
		return nil, nil, err
	}

	fs := &FS{
		Superblock: sb,
		Entries:    make(map[int]*Node),
		image:      image,
	}
	w := &diag.Warnings{}

	count := 0
	offset := SuperblockSize
	for uint32(count) < sb.EntryCount { //nolint:gosec // entry_count is bounded by image size in practice
		if offset+FileEntrySize > len(image) {
			w.Add("entry (%d) could not be read", count)
			break
		}

		rec, err := parseEntryRecord(image[offset : offset+FileEntrySize])
		if err != nil {
			w.Add("entry (%d) could not be read: %v", count, err)
			break
		}

		node := fs.nodeFor(rec.UID)
		node.RawType = rec.Type
		node.NLink = rec.NLink
		node.UID16 = rec.UID16
		node.GID16 = rec.GID16
		node.Size = rec.Size
		node.Ctime = rec.Ctime
		node.Offset = rec.Offset
		node.SizeDecompressed = rec.SizeDecompressed
		if rec.UID == 0 {
			node.Name = "/"
		}

		if rec.Type&dirStructMask != 0 {
			node.Type = NodeDirectory
			if err := fs.parseDirectoryBody(rec, w); err != nil {
				w.Add("directory entry (%d) body could not be read: %v", rec.UID, err)
			}
		} else {
			node.Type = NodeData
		}

		offset += FileEntrySize
		count++
	}

	if count != int(sb.EntryCount) {
		w.Add("entry count not equal to value stored in header")
	}

	return fs, w, nil
}

// nodeFor returns the Node for uid, creating it if it doesn't exist yet.
func (fs *FS) nodeFor(uid int) *Node {
	n, ok := fs.Entries[uid]
	if !ok {
		n = &Node{UID: uid}
		fs.Entries[uid] = n
		fs.order = append(fs.order, uid)
	}
	return n
}

// parseDirectoryBody reads a directory's data block and binds parent/name
// for each child uid, skipping "." and "..".
func (fs *FS) parseDirectoryBody(rec *entryRecord, w *diag.Warnings) error {
	start := int(rec.Offset)
	end := start + int(rec.Size)
	if start < 0 || end > len(fs.image) || start > end {
		return fmt.Errorf("directory body out of range [%d:%d)", start, end)
	}

	children, err := parseDirRecords(fs.image[start:end])
	if err != nil {
		return err
	}

	for _, ch := range children {
		if ch.Name == "." || ch.Name == ".." {
			continue
		}
		child := fs.nodeFor(ch.UID)
		if child.HasParent {
			w.Add("multiple links to one file: %s (also named %q under uid %d)", fs.BuildPath(ch.UID), ch.Name, rec.UID)
			continue
		}
		child.ParentUID = rec.UID
		child.HasParent = true
		child.Name = ch.Name
	}

	return nil
}

// OrderedUIDs returns all entry uids in ascending numeric order.
func (fs *FS) OrderedUIDs() []int {
	out := append([]int(nil), fs.order...)
	sort.Ints(out)
	return out
}
