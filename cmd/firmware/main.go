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

// Command firmware extracts or replaces the LZMA-compressed rootfs image
// carried inside a SEAMA-wrapped uImage in a firmware blob.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz/lzma"

	"github.com/syschmod/dlink-patch-utils/internal/clidispatch"
	"github.com/syschmod/dlink-patch-utils/lzmaenc"
	"github.com/syschmod/dlink-patch-utils/seama"
	"github.com/syschmod/dlink-patch-utils/uimage"
)

// rootfsDictBits is the wide dictionary size used when recompressing a
// whole rootfs image, wider than the per-file RomFS rebuild dictionary
// since the payload is much larger.
const rootfsDictBits = 23

func usage() {
	fmt.Fprintf(os.Stderr, "Firmware rootfs modifier usage:\n %s e[xtract] <infw.bin> <outrootfs.bin>\n %s r[eplace] <inrootfs.bin> <originalfw.bin> <outfw.bin>\n",
		os.Args[0], os.Args[0])
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch clidispatch.Match(os.Args[1], "extract", "replace") {
	case "extract":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		if err := extract(os.Args[2], os.Args[3]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "replace":
		if len(os.Args) != 5 {
			usage()
			os.Exit(1)
		}
		if err := replace(os.Args[2], os.Args[3], os.Args[4]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func extract(infile, outfile string) error {
	b, err := os.ReadFile(infile)
	if err != nil {
		return err
	}

	env, warnings, err := seama.Decode(b)
	if err != nil {
		return err
	}
	env.DumpFields(os.Stdout)
	warnings.PrintTo(os.Stderr)

	offset := uimage.LocateRootfs(env.Data)
	if offset == uimage.NotFound {
		return fmt.Errorf("could not find rootfs image")
	}

	hdr, uimgWarnings, err := uimage.Parse(env.Data[offset:])
	if err != nil {
		return err
	}
	uimgWarnings.PrintTo(os.Stderr)

	rootfs, err := lzmaDecompress(hdr.Content())
	if err != nil {
		return fmt.Errorf("decompress rootfs: %w", err)
	}

	return writeExclusive(outfile, rootfs)
}

func replace(infile, original, outfile string) error {
	rootfs, err := os.ReadFile(infile)
	if err != nil {
		return err
	}

	enc := &lzmaenc.External{}
	lzrootfs, err := enc.Encode(rootfs, rootfsDictBits)
	if err != nil {
		return fmt.Errorf("compress rootfs: %w", err)
	}

	b, err := os.ReadFile(original)
	if err != nil {
		return err
	}

	env, warnings, err := seama.Decode(b)
	if err != nil {
		return err
	}
	warnings.PrintTo(os.Stderr)

	offset := uimage.LocateRootfs(env.Data)
	if offset == uimage.NotFound {
		return fmt.Errorf("could not find rootfs image")
	}

	hdr, uimgWarnings, err := uimage.Parse(env.Data[offset:])
	if err != nil {
		return err
	}
	uimgWarnings.PrintTo(os.Stderr)

	hdr.UpdateContent(lzrootfs)

	// Any bytes originally following the rootfs uImage within the SEAMA
	// payload are not preserved (spec.md §9 Open Questions).
	newData := append(append([]byte(nil), env.Data[:offset]...), hdr.Bytes()...)

	return writeExclusive(outfile, seama.Encode(newData, env.Meta))
}

// lzmaDecompress decodes a classic LZMA-alone stream (the rootfs image's
// own compression, independent of RomFS's per-file LZMA bodies).
func lzmaDecompress(compressed []byte) ([]byte, error) {
	r, err := lzma.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if _, err := io.Copy(&out, r); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeExclusive(outfile string, data []byte) error {
	f, err := os.OpenFile(outfile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec // matches device firmware deliverable permissions
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}
