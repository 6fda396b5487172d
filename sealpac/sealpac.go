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

// Package sealpac builds the device's i18n lookup table: translations keyed
// by the MD5 of their original-language string, searched by the embedded
// PHP runtime's i18n() call against /var/sealpac/sealpac.slp.
package sealpac

import (
	"bytes"
	"crypto/md5" //nolint:gosec // the on-device format keys by MD5, not a choice this toolkit makes
	"encoding/binary"
	"sort"
)

// Magic is the sealpac header's leading 4 bytes.
const Magic uint32 = 0x05ea19ac

// HeaderSize is the fixed header length in bytes: magic, count, 8 reserved
// zero bytes, 16-byte language code, 16-byte MD5 digest.
const HeaderSize = 0x30

// EntrySize is the per-translation entry length: 16-byte MD5 key plus a
// big-endian u32 offset of the translation string, counted from the start
// of the file.
const EntrySize = 0x14

// langCodeSize is the fixed, NUL-padded language code field width.
const langCodeSize = 16

// Build emits the binary sealpac.slp content for translations, keyed by
// the MD5 digest of each original string, under language code langCode
// (truncated to 15 bytes and NUL-padded to 16).
func Build(translations map[[md5.Size]byte][]byte, langCode string) []byte {
	keys := make([][md5.Size]byte, 0, len(translations))
	for k := range translations {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })

	var entries, strings bytes.Buffer
	offset := uint32(HeaderSize + len(keys)*EntrySize) //nolint:gosec // table size fits uint32 for realistic langpacks

	for _, key := range keys {
		translation := translations[key]
		entries.Write(key[:])
		var offBuf [4]byte
		binary.BigEndian.PutUint32(offBuf[:], offset)
		entries.Write(offBuf[:])

		strings.Write(translation)
		strings.WriteByte(0)
		offset += uint32(len(translation)) + 1 //nolint:gosec // translation length fits uint32 for realistic langpacks
	}

	body := append(entries.Bytes(), strings.Bytes()...)
	digest := md5.Sum(body) //nolint:gosec // matches the device's MD5-keyed table format

	header := make([]byte, 0, HeaderSize)
	var magicBuf, countBuf [4]byte
	binary.BigEndian.PutUint32(magicBuf[:], Magic)
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(keys))) //nolint:gosec // entry count fits uint32 for realistic langpacks
	header = append(header, magicBuf[:]...)
	header = append(header, countBuf[:]...)
	header = append(header, make([]byte, 8)...)
	header = append(header, packLangCode(langCode)...)
	header = append(header, digest[:]...)

	return append(header, body...)
}

// BuildFromUTF8 hashes each original string's UTF-8 bytes to derive its
// key, then calls Build. This is the convenience entry point CLI tools use
// when working from a plain original→translation mapping.
func BuildFromUTF8(dictionary map[string]string, langCode string) []byte {
	keyed := make(map[[md5.Size]byte][]byte, len(dictionary))
	for original, translation := range dictionary {
		keyed[md5.Sum([]byte(original))] = []byte(translation) //nolint:gosec // matches the device's MD5-keyed table format
	}
	return Build(keyed, langCode)
}

// packLangCode truncates code to 15 bytes and NUL-pads it to langCodeSize.
func packLangCode(code string) []byte {
	out := make([]byte, langCodeSize)
	b := []byte(code)
	if len(b) > langCodeSize-1 {
		b = b[:langCodeSize-1]
	}
	copy(out, b)
	return out
}
