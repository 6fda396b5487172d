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

import "errors"

var (
	// ErrTruncatedHeader indicates the buffer is too small to hold a superblock.
	ErrTruncatedHeader = errors.New("romfs: truncated superblock")

	// ErrUnknownUID indicates a request for a uid that has no known entry.
	ErrUnknownUID = errors.New("romfs: unknown uid")

	// ErrPathNotFound indicates ModifyFile's path did not match any file.
	ErrPathNotFound = errors.New("romfs: path not found")

	// ErrAttemptedDirectoryModify indicates ModifyFile targeted a directory.
	ErrAttemptedDirectoryModify = errors.New("romfs: cannot modify directory content")

	// ErrUnsupportedEndianness names the big-endian RomFS case. Parse reads
	// every image as little-endian and does not detect byte order, so no
	// function in this package returns it.
	ErrUnsupportedEndianness = errors.New("romfs: big-endian RomFS is not supported")

	// ErrEncoderFailed indicates the injected Encoder returned an error.
	ErrEncoderFailed = errors.New("romfs: compression encoder failed")
)
