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

// Package lzmaenc produces classic LZMA-alone streams by shelling out to
// the lzma_alone binary (Debian package lzma, command "e"). Go's standard
// library has no LZMA codec, and github.com/ulikunitz/xz, which can decode
// LZMA-alone, by default writes the unknown-size marker where the reference
// compressor writes the declared uncompressed size, so this toolkit
// treats encoding as an external process rather than reimplementing an
// encoder (spec.md §9 "External process as abstract service").
package lzmaenc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrEncoderFailed indicates the lzma_alone subprocess exited non-zero or
// could not be started.
var ErrEncoderFailed = errors.New("lzmaenc: external encoder failed")

// binaryName is the external command this package invokes, matching the
// Debian "lzma" package's lzma_alone tool.
const binaryName = "lzma_alone"

// External shells out to lzma_alone to produce LZMA-alone compressed
// streams. It satisfies romfs.Encoder.
type External struct {
	// Path overrides the binary looked up on PATH, for environments that
	// vendor or rename the tool. Empty means binaryName.
	Path string
}

// Encode compresses data at the given dictionary size (in bits), returning
// the raw bytes lzma_alone writes to stdout. A scratch temp directory holds
// the input file for the duration of the call.
func (e *External) Encode(data []byte, dictBits int) ([]byte, error) {
	return e.EncodeContext(context.Background(), data, dictBits)
}

// EncodeContext is Encode with caller-controlled cancellation, for CLI
// tools that want to bound how long a rebuild waits on the subprocess.
func (e *External) EncodeContext(ctx context.Context, data []byte, dictBits int) ([]byte, error) {
	bin := e.Path
	if bin == "" {
		bin = binaryName
	}

	dir, err := os.MkdirTemp("", "dlfw-lzmaenc-")
	if err != nil {
		return nil, fmt.Errorf("%w: create scratch dir: %v", ErrEncoderFailed, err)
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "in.bin")
	if err := os.WriteFile(inPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("%w: write input: %v", ErrEncoderFailed, err)
	}

	args := []string{fmt.Sprintf("-d%d", dictBits), "-so", "e", inPath}
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v (stderr: %s)", ErrEncoderFailed, bin, err, stderr.String())
	}

	return stdout.Bytes(), nil
}
