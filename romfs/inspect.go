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
	"strings"
)

// CompressionThreshold scans all regular files and returns the largest
// stored-raw size and the smallest declared-decompressed size observed
// (spec.md §4.5.6). minCompressed is -1 when no compressed entry exists.
func (fs *FS) CompressionThreshold() (maxNotCompressed, minCompressed int, notes []string) {
	minCompressed = -1

	for _, uid := range fs.OrderedUIDs() {
		node := fs.Entries[uid]
		if !node.HasParent {
			continue
		}
		if node.Type == NodeDirectory {
			if node.SizeDecompressed != 0 {
				notes = append(notes, fmt.Sprintf("Compressed directory: %s", strings.Trim(fs.BuildPath(uid), "/")))
			}
			continue
		}
		if node.SizeDecompressed == 0 {
			if int(node.Size) > maxNotCompressed {
				maxNotCompressed = int(node.Size)
			}
		} else if minCompressed == -1 || int(node.SizeDecompressed) < minCompressed {
			minCompressed = int(node.SizeDecompressed)
		}
	}

	return maxNotCompressed, minCompressed, notes
}

// layoutSpan is one entry's position in the image, used to sort by offset
// for gap/overlap detection.
type layoutSpan struct {
	offset int
	size   int
	uid    int
	path   string
}

// DataLayout reports overlaps and gaps between consecutive entries sorted
// by offset, and the trailing gap (or overrun) against the image's total
// size (spec.md §4.5.6). It returns human-readable lines in the original
// tool's wording and the largest gap size observed.
func (fs *FS) DataLayout() (lines []string, maxGapSize int) {
	var spans []layoutSpan
	for _, uid := range fs.OrderedUIDs() {
		node := fs.Entries[uid]
		path := ""
		if node.HasParent {
			path = strings.Trim(fs.BuildPath(uid), "/")
		}
		spans = append(spans, layoutSpan{offset: int(node.Offset), size: int(node.Size), uid: uid, path: path})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].offset < spans[j].offset })

	if len(spans) == 0 {
		return nil, 0
	}

	for i := 1; i < len(spans); i++ {
		prev, cur := spans[i-1], spans[i]
		prevEnd := prev.offset + prev.size
		switch {
		case prevEnd > cur.offset:
			lines = append(lines, fmt.Sprintf("%d %s and %d %s overlap!", prev.uid, prev.path, cur.uid, cur.path))
		case prevEnd < cur.offset:
			gapSize := cur.offset - prevEnd
			var value string
			if prevEnd+gapSize <= len(fs.image) {
				region := fs.image[prevEnd : prevEnd+gapSize]
				value = describeGap(region, gapSize)
			}
			lines = append(lines, fmt.Sprintf("%d bytes gap between %d %s and %d %s at offset %x (%s)",
				gapSize, prev.uid, prev.path, cur.uid, cur.path, prevEnd, value))
			if gapSize > maxGapSize {
				maxGapSize = gapSize
			}
		}
	}

	last := spans[len(spans)-1]
	lastEnd := last.offset + last.size
	switch {
	case lastEnd > len(fs.image):
		lines = append(lines, fmt.Sprintf("%d %s data after end of file!", last.uid, last.path))
	case lastEnd < len(fs.image):
		gapSize := len(fs.image) - lastEnd
		lines = append(lines, fmt.Sprintf("%d bytes gap between %d %s and end of file at offset %x",
			gapSize, last.uid, last.path, lastEnd))
		if gapSize > maxGapSize {
			maxGapSize = gapSize
		}
	}

	lines = append(lines, fmt.Sprintf("Maximal gap size is %d bytes", maxGapSize))
	return lines, maxGapSize
}

// describeGap renders a gap region the way the original tool does: a
// run-length summary when every byte is identical, otherwise a literal
// byte dump.
func describeGap(region []byte, gapSize int) string {
	if len(region) == 0 {
		return ""
	}
	uniform := true
	for _, b := range region {
		if b != region[0] {
			uniform = false
			break
		}
	}
	if uniform {
		return fmt.Sprintf("%d times 0x%02x", gapSize, region[0])
	}
	return fmt.Sprintf("%x", region)
}

// TestAlignment reports, for every entry, whether its offset is a multiple
// of alignment, returning one line per misaligned entry plus the aligned
// count (spec.md §4.5.6).
func (fs *FS) TestAlignment(alignment int) (lines []string, alignedCount int) {
	for _, uid := range fs.OrderedUIDs() {
		node := fs.Entries[uid]
		path := ""
		if node.HasParent {
			path = strings.Trim(fs.BuildPath(uid), "/")
		}
		if int(node.Offset)%alignment == 0 {
			alignedCount++
		} else {
			lines = append(lines, fmt.Sprintf("at %x %d bytes (%d, %s) not aligned", node.Offset, node.Size, uid, path))
		}
	}
	return lines, alignedCount
}

// ListFiles returns the path, size, and declared-decompressed size of
// every path-addressable regular file, in ascending uid order
// (spec.md §4.5.6, the shell's "ls" command).
type ListedFile struct {
	UID              int
	Path             string
	Size             int
	SizeDecompressed int
}

// ListFiles enumerates regular (non-directory) files reachable by path.
func (fs *FS) ListFiles() []ListedFile {
	var out []ListedFile
	for _, uid := range fs.OrderedUIDs() {
		node := fs.Entries[uid]
		if !node.HasParent || node.Type == NodeDirectory {
			continue
		}
		out = append(out, ListedFile{
			UID:              uid,
			Path:             strings.Trim(fs.BuildPath(uid), "/"),
			Size:             int(node.Size),
			SizeDecompressed: int(node.SizeDecompressed),
		})
	}
	return out
}
