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

package bincur

import (
	"errors"
	"testing"
)

func TestUint32Endianness(t *testing.T) {
	t.Parallel()

	buf := []byte{0x01, 0x02, 0x03, 0x04}

	be := New(buf, BigEndian)
	v, err := be.Uint32()
	if err != nil {
		t.Fatalf("Uint32: %v", err)
	}
	if v != 0x01020304 {
		t.Fatalf("BigEndian Uint32 = 0x%x, want 0x01020304", v)
	}

	le := New(buf, LittleEndian)
	v, err = le.Uint32()
	if err != nil {
		t.Fatalf("Uint32: %v", err)
	}
	if v != 0x04030201 {
		t.Fatalf("LittleEndian Uint32 = 0x%x, want 0x04030201", v)
	}
}

func TestDecimalUID(t *testing.T) {
	t.Parallel()

	c := New([]byte("0042"), LittleEndian)
	uid, err := c.DecimalUID()
	if err != nil {
		t.Fatalf("DecimalUID: %v", err)
	}
	if uid != 42 {
		t.Fatalf("DecimalUID = %d, want 42", uid)
	}
}

func TestDecimalUIDInvalid(t *testing.T) {
	t.Parallel()

	c := New([]byte("00a2"), LittleEndian)
	if _, err := c.DecimalUID(); err == nil {
		t.Fatal("expected error for non-digit uid byte")
	}
}

func TestCString(t *testing.T) {
	t.Parallel()

	c := New([]byte("hello\x00world\x00"), LittleEndian)
	s, err := c.CString()
	if err != nil {
		t.Fatalf("CString: %v", err)
	}
	if s != "hello" {
		t.Fatalf("CString = %q, want %q", s, "hello")
	}
	s, err = c.CString()
	if err != nil {
		t.Fatalf("CString: %v", err)
	}
	if s != "world" {
		t.Fatalf("CString = %q, want %q", s, "world")
	}
}

func TestCStringUnterminated(t *testing.T) {
	t.Parallel()

	c := New([]byte("nonulhere"), LittleEndian)
	if _, err := c.CString(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestBytesPastEnd(t *testing.T) {
	t.Parallel()

	c := New([]byte{1, 2, 3}, LittleEndian)
	if _, err := c.Bytes(10); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestPutAndReadUint32At(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 8)
	if err := PutUint32At(buf, 2, 0xdeadbeef, BigEndian); err != nil {
		t.Fatalf("PutUint32At: %v", err)
	}
	v, err := ReadUint32At(buf, 2, BigEndian)
	if err != nil {
		t.Fatalf("ReadUint32At: %v", err)
	}
	if v != 0xdeadbeef {
		t.Fatalf("ReadUint32At = 0x%x, want 0xdeadbeef", v)
	}
}

func TestPutUint32AtOutOfRange(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 4)
	if err := PutUint32At(buf, 2, 1, LittleEndian); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}
