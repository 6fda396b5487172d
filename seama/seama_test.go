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

package seama

import (
	"bytes"
	"testing"
)

// TestEncodeLiteralScenario checks the "HDR0" / 00 01 02 03 envelope byte
// for byte, including the MD5 digest of the payload.
func TestEncodeLiteralScenario(t *testing.T) {
	t.Parallel()

	meta := []byte("HDR0")
	data := []byte{0x00, 0x01, 0x02, 0x03}

	want := []byte{
		0x5e, 0xa3, 0xa4, 0x17, // magic
		0x00, 0x00, 0x00, 0x04, // meta_len
		0x00, 0x00, 0x00, 0x04, // data_len
		0x37, 0xb5, 0x9a, 0xfd, 0x59, 0x27, 0x25, 0xf9, 0x30, 0x5e, 0x48, 0x4a, 0x5d, 0x7f, 0x51, 0x68, // md5
		'H', 'D', 'R', '0', // meta
		0x00, 0x01, 0x02, 0x03, // data
	}

	got := Encode(data, meta)
	if !bytes.Equal(got, want) {
		t.Fatalf("Encode() = % x, want % x", got, want)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	orig := Encode([]byte("payload-bytes"), []byte("meta"))

	env, warnings, err := Decode(orig)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !warnings.Empty() {
		t.Fatalf("unexpected warnings: %v", warnings.Items())
	}

	rebuilt := Encode(env.Data, env.Meta)
	if !bytes.Equal(rebuilt, orig) {
		t.Fatalf("round trip mismatch: got % x, want % x", rebuilt, orig)
	}
}

func TestDecodeTruncatedHeader(t *testing.T) {
	t.Parallel()

	_, _, err := Decode([]byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected error for truncated header")
	}
}

func TestDecodeBadMagicWarns(t *testing.T) {
	t.Parallel()

	buf := Encode([]byte("x"), nil)
	buf[0] = 0xff // corrupt magic

	_, warnings, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode should not error on bad magic: %v", err)
	}
	if warnings.Empty() {
		t.Fatal("expected a warning for bad magic")
	}
}

func TestDecodeMD5MismatchWarns(t *testing.T) {
	t.Parallel()

	buf := Encode([]byte("original"), nil)
	// Corrupt a data byte without touching lengths; MD5 no longer matches.
	buf[len(buf)-1] ^= 0xff

	_, warnings, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if warnings.Empty() {
		t.Fatal("expected MD5 mismatch warning")
	}
}

func TestDecodeSurplusWarns(t *testing.T) {
	t.Parallel()

	buf := Encode([]byte("data"), nil)
	buf = append(buf, 0xde, 0xad) // surplus trailing bytes

	_, warnings, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if warnings.Empty() {
		t.Fatal("expected surplus-data warning")
	}
}
