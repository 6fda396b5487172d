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

package sealpac

import (
	"crypto/md5" //nolint:gosec // test fixture, matches the on-device format
	"encoding/binary"
	"testing"
)

func TestBuildSingleEntryLiteralScenario(t *testing.T) {
	out := BuildFromUTF8(map[string]string{"hi": "cześć"}, "pl")

	wantDigest := "49f68a5c8493ec2c0bf489821c21fc3b"
	gotKey := out[HeaderSize : HeaderSize+md5.Size]
	if hexString(gotKey) != wantDigest {
		t.Errorf("entry key = %s, want %s", hexString(gotKey), wantDigest)
	}

	gotOffset := binary.BigEndian.Uint32(out[HeaderSize+md5.Size : HeaderSize+EntrySize])
	if gotOffset != 0x44 {
		t.Errorf("entry offset = %#x, want 0x44", gotOffset)
	}

	stringBlock := out[HeaderSize+EntrySize:]
	want := "cześć\x00"
	if string(stringBlock) != want {
		t.Errorf("string block = %q, want %q", stringBlock, want)
	}

	if binary.BigEndian.Uint32(out[0:4]) != Magic {
		t.Errorf("magic = %#x, want %#x", binary.BigEndian.Uint32(out[0:4]), Magic)
	}
	if binary.BigEndian.Uint32(out[4:8]) != 1 {
		t.Errorf("count = %d, want 1", binary.BigEndian.Uint32(out[4:8]))
	}

	langField := out[16:32]
	if string(trimTrailingZero(langField)) != "pl" {
		t.Errorf("lang code = %q, want %q", trimTrailingZero(langField), "pl")
	}
}

func TestBuildSortsEntriesByMD5(t *testing.T) {
	out := BuildFromUTF8(map[string]string{
		"zzz": "last",
		"aaa": "first",
		"mmm": "middle",
	}, "en")

	count := binary.BigEndian.Uint32(out[4:8])
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}

	var keys [][]byte
	for i := 0; i < int(count); i++ {
		start := HeaderSize + i*EntrySize
		keys = append(keys, out[start:start+md5.Size])
	}
	for i := 1; i < len(keys); i++ {
		if string(keys[i-1]) > string(keys[i]) {
			t.Errorf("entries not sorted ascending by md5 key at index %d", i)
		}
	}
}

func TestBuildLangCodeTruncatedAndPadded(t *testing.T) {
	out := BuildFromUTF8(map[string]string{"x": "y"}, "this-code-is-too-long")
	langField := out[16:32]
	if len(langField) != 16 {
		t.Fatalf("lang field length = %d, want 16", len(langField))
	}
	if langField[15] != 0 {
		t.Errorf("expected the final byte reserved for NUL padding, got %#x", langField[15])
	}
}

func hexString(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0xf]
	}
	return string(out)
}

func trimTrailingZero(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	return b[:i]
}
