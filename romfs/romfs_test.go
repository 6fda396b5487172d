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
	"encoding/binary"
	"strings"
	"testing"
)

// putEntry writes one FileEntrySize-byte entry record into buf at offset.
func putEntry(buf []byte, offset int, typ, nlink uint32, uid16, gid16 uint16, size, ctime, off, sizeDecompressed uint32, uid int) {
	binary.LittleEndian.PutUint32(buf[offset+0x00:], typ)
	binary.LittleEndian.PutUint32(buf[offset+0x04:], nlink)
	binary.LittleEndian.PutUint16(buf[offset+0x08:], uid16)
	binary.LittleEndian.PutUint16(buf[offset+0x0a:], gid16)
	binary.LittleEndian.PutUint32(buf[offset+0x0c:], size)
	binary.LittleEndian.PutUint32(buf[offset+0x10:], ctime)
	binary.LittleEndian.PutUint32(buf[offset+0x14:], off)
	binary.LittleEndian.PutUint32(buf[offset+0x18:], sizeDecompressed)
	copy(buf[offset+0x1c:offset+0x20], []byte(padUID(uid)))
}

func padUID(uid int) string {
	s := [4]byte{}
	for i := 3; i >= 0; i-- {
		s[i] = byte('0' + uid%10)
		uid /= 10
	}
	return string(s[:])
}

// putDirRecord appends one directory record (uid + reserved + name, padded
// to a 32-byte slot) to buf and returns the updated slice.
func putDirRecord(buf []byte, uid int, name string) []byte {
	rec := make([]byte, 8+len(name)+1)
	binary.LittleEndian.PutUint32(rec[0:], uint32(uid)) //nolint:gosec // test fixture
	binary.LittleEndian.PutUint32(rec[4:], 0)
	copy(rec[8:], name)
	rec[8+len(name)] = 0

	total := len(rec)
	slots := total / dirSlotSize
	if total%dirSlotSize != 0 {
		slots++
	}
	padded := make([]byte, slots*dirSlotSize)
	copy(padded, rec)
	return append(buf, padded...)
}

// buildSyntheticImage constructs a minimal but structurally faithful RomFS
// image: root directory (uid 0) listing "hello.txt" and an aliased second
// name "alias.txt" both bound to uid 1, a regular file body for uid 1.
func buildSyntheticImage(t *testing.T, fileData []byte, maxSize uint32) []byte {
	t.Helper()

	rootDirBody := putDirRecord(nil, 0, ".")
	rootDirBody = putDirRecord(rootDirBody, 0, "..")
	rootDirBody = putDirRecord(rootDirBody, 1, "hello.txt")
	rootDirBody = putDirRecord(rootDirBody, 1, "alias.txt")

	entryTableSize := 2 * FileEntrySize
	dirOffset := SuperblockSize + entryTableSize
	fileOffset := dirOffset + len(rootDirBody)
	if rem := fileOffset % Alignment; rem != 0 {
		fileOffset += Alignment - rem
	}

	total := fileOffset + len(fileData)
	if rem := total % Alignment; rem != 0 {
		total += Alignment - rem
	}

	buf := make([]byte, total)
	binary.LittleEndian.PutUint32(buf[0x00:], 0x2f8dbe86)
	binary.LittleEndian.PutUint32(buf[0x04:], 2)
	binary.LittleEndian.PutUint32(buf[0x08:], maxSize)
	binary.LittleEndian.PutUint32(buf[0x0c:], DevIDConventional)

	putEntry(buf, SuperblockSize, dirStructMask, 1, 0, 0, uint32(len(rootDirBody)), 0, uint32(dirOffset), 0, 0) //nolint:gosec // test fixture
	putEntry(buf, SuperblockSize+FileEntrySize, 0, 1, 0, 0, uint32(len(fileData)), 0, uint32(fileOffset), 0, 1) //nolint:gosec // test fixture

	copy(buf[dirOffset:], rootDirBody)
	copy(buf[fileOffset:], fileData)

	return buf
}

func TestParseAliasedUIDPreservesFirstBinding(t *testing.T) {
	image := buildSyntheticImage(t, []byte("hi there"), 0x100)

	fs, w, err := Parse(image)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	node, ok := fs.Entries[1]
	if !ok {
		t.Fatal("uid 1 missing")
	}
	if node.Name != "hello.txt" {
		t.Errorf("Name = %q, want first binding %q", node.Name, "hello.txt")
	}

	found := false
	for _, msg := range w.Items() {
		if strings.Contains(msg, "Multiple links") || strings.Contains(msg, "multiple links") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a duplicate-alias warning, got %v", w.Items())
	}
}

func TestModifyFileSmallStoresRawOnRebuild(t *testing.T) {
	image := buildSyntheticImage(t, []byte("hi there"), 0x200)
	fs, _, err := Parse(image)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	payload := bytes.Repeat([]byte{0x42}, 400)
	if err := fs.ModifyFile(payload, "hello.txt"); err != nil {
		t.Fatalf("ModifyFile: %v", err)
	}

	if _, err := fs.Rebuild(nil); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	node := fs.Entries[1]
	if node.SizeDecompressed != 0 {
		t.Errorf("SizeDecompressed = %d, want 0 (raw storage below threshold)", node.SizeDecompressed)
	}
	if node.Size != uint32(len(payload)) {
		t.Errorf("Size = %d, want %d", node.Size, len(payload))
	}

	got, _, err := fs.GetData(1, false)
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("GetData returned %d bytes, want the staged payload verbatim", len(got))
	}
}

// stubEncoder is a deterministic fake LZMA-alone encoder for tests: it
// prepends a fixed 13-byte LZMA-alone-shaped header so callers can tell a
// compression step actually ran.
type stubEncoder struct{ calls int }

func (s *stubEncoder) Encode(data []byte, dictBits int) ([]byte, error) {
	s.calls++
	header := make([]byte, 13)
	header[0] = 0x5d
	binary.LittleEndian.PutUint32(header[1:], uint32(1)<<uint(dictBits)) //nolint:gosec // test fixture
	binary.LittleEndian.PutUint64(header[5:], uint64(len(data)))
	return append(header, data...), nil
}

func TestModifyFileLargeCompressesOnRebuild(t *testing.T) {
	image := buildSyntheticImage(t, []byte("hi there"), 0x400)
	fs, _, err := Parse(image)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	payload := bytes.Repeat([]byte{0x7e}, 600)
	if err := fs.ModifyFile(payload, "hello.txt"); err != nil {
		t.Fatalf("ModifyFile: %v", err)
	}

	enc := &stubEncoder{}
	if _, err := fs.Rebuild(enc); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if enc.calls != 1 {
		t.Errorf("encoder called %d times, want 1", enc.calls)
	}

	node := fs.Entries[1]
	if node.SizeDecompressed != uint32(len(payload)) {
		t.Errorf("SizeDecompressed = %d, want %d", node.SizeDecompressed, len(payload))
	}
	if node.Size == uint32(len(payload)) {
		t.Errorf("Size unexpectedly unchanged; expected a distinct compressed-stream length")
	}
}

func TestRebuildPatchesMaxSizeOnGrowth(t *testing.T) {
	image := buildSyntheticImage(t, []byte("hi there"), 0x40) // deliberately undersized
	fs, _, err := Parse(image)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	w, err := fs.Rebuild(nil)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	if fs.Superblock.MaxSize < uint32(len(fs.Image())) { //nolint:gosec // test fixture
		t.Errorf("MaxSize %d < rebuilt image size %d", fs.Superblock.MaxSize, len(fs.Image()))
	}

	grew := false
	for _, msg := range w.Items() {
		if strings.Contains(msg, "max_size") {
			grew = true
		}
	}
	if !grew {
		t.Errorf("expected a max_size growth warning, got %v", w.Items())
	}
}

func TestRebuildInvariants(t *testing.T) {
	image := buildSyntheticImage(t, []byte("hi there"), 0x100)
	fs, _, err := Parse(image)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if _, err := fs.Rebuild(nil); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	out := fs.Image()
	if len(out)%Alignment != 0 {
		t.Errorf("rebuilt image length %d not 32-byte aligned", len(out))
	}
	if fs.Superblock.MaxSize < uint32(len(out)) { //nolint:gosec // test fixture
		t.Errorf("max_size %d smaller than rebuilt size %d", fs.Superblock.MaxSize, len(out))
	}
	for _, uid := range fs.OrderedUIDs() {
		node := fs.Entries[uid]
		if node.Offset%Alignment != 0 {
			t.Errorf("uid %d offset %#x not aligned to %d", uid, node.Offset, Alignment)
		}
	}

	got, _, err := fs.GetData(1, false)
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}
	if !bytes.Equal(got, []byte("hi there")) {
		t.Errorf("unmodified file content changed: got %q", got)
	}
}

func TestGetDataUnknownUID(t *testing.T) {
	image := buildSyntheticImage(t, []byte("hi there"), 0x100)
	fs, _, err := Parse(image)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if _, _, err := fs.GetData(99, false); err == nil {
		t.Error("expected ErrUnknownUID for nonexistent uid")
	}
}

func TestModifyFilePathNotFound(t *testing.T) {
	image := buildSyntheticImage(t, []byte("hi there"), 0x100)
	fs, _, err := Parse(image)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if err := fs.ModifyFile([]byte("x"), "nope.txt"); err == nil {
		t.Error("expected ErrPathNotFound")
	}
}

func TestModifyFileRejectsDirectory(t *testing.T) {
	image := buildSyntheticImage(t, []byte("hi there"), 0x100)
	fs, _, err := Parse(image)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if err := fs.ModifyFile([]byte("x"), "/"); err == nil {
		t.Error("expected ErrAttemptedDirectoryModify or ErrPathNotFound for root")
	}
}

func TestListFilesAndCompressionThreshold(t *testing.T) {
	image := buildSyntheticImage(t, []byte("hi there"), 0x100)
	fs, _, err := Parse(image)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	files := fs.ListFiles()
	if len(files) != 1 || files[0].Path != "hello.txt" {
		t.Fatalf("ListFiles = %+v, want a single hello.txt entry", files)
	}

	maxNotCompressed, minCompressed, _ := fs.CompressionThreshold()
	if maxNotCompressed != len("hi there") {
		t.Errorf("maxNotCompressed = %d, want %d", maxNotCompressed, len("hi there"))
	}
	if minCompressed != -1 {
		t.Errorf("minCompressed = %d, want -1 (no compressed entries)", minCompressed)
	}
}

func TestTestAlignmentAllAligned(t *testing.T) {
	image := buildSyntheticImage(t, []byte("hi there"), 0x100)
	fs, _, err := Parse(image)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	lines, aligned := fs.TestAlignment(Alignment)
	if len(lines) != 0 {
		t.Errorf("unexpected misalignment lines: %v", lines)
	}
	if aligned != 2 {
		t.Errorf("aligned = %d, want 2", aligned)
	}
}

func TestDataLayoutReportsTrailingGap(t *testing.T) {
	image := buildSyntheticImage(t, []byte("hi there"), 0x100)
	image = append(image, make([]byte, Alignment)...) // extend image past last entry's data
	fs, _, err := Parse(image)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	lines, _ := fs.DataLayout()
	found := false
	for _, l := range lines {
		if strings.Contains(l, "gap") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a trailing gap line, got %v", lines)
	}
}
