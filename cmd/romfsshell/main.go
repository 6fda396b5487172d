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

// Command romfsshell is an interactive REPL for inspecting and patching a
// RomFS image: list modifiable files, run the layout/compression/alignment
// probes, stage a file replacement, and write the rebuilt image.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/syschmod/dlink-patch-utils/lzmaenc"
	"github.com/syschmod/dlink-patch-utils/romfs"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <input file>\n", os.Args[0])
		os.Exit(1)
	}

	image, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fs, warnings, err := romfs.Parse(image)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	warnings.PrintTo(os.Stderr)

	runShell(fs)
}

func runShell(fs *romfs.FS) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := scanner.Text()
		cmd, rest, _ := strings.Cut(line, " ")

		switch {
		case cmd == "q":
			return
		case cmd == "l" || cmd == "ls":
			for _, f := range fs.ListFiles() {
				fmt.Println(f.UID, f.Path, f.Size, f.SizeDecompressed)
			}
		case cmd == "i":
			inspect(fs)
		case cmd == "m" || cmd == "mv":
			move(fs, rest)
		case cmd == "w":
			write(fs, rest)
		default:
			printHelp()
		}
	}
}

func inspect(fs *romfs.FS) {
	lines, _ := fs.DataLayout()
	for _, l := range lines {
		fmt.Println(l)
	}

	maxNotCompressed, minCompressed, notes := fs.CompressionThreshold()
	for _, n := range notes {
		fmt.Println(n)
	}
	fmt.Printf("Maximal not compressed size: %d bytes\n", maxNotCompressed)
	fmt.Printf("Minimal compressed size: %d bytes\n", minCompressed)

	alignLines, alignedCount := fs.TestAlignment(romfs.Alignment)
	fmt.Printf("Testing alignment: %d byte\n", romfs.Alignment)
	for _, l := range alignLines {
		fmt.Println(l)
	}
	fmt.Printf("%d entries aligned\n", alignedCount)
}

func move(fs *romfs.FS, args string) {
	mfile, mpath, ok := strings.Cut(args, " ")
	if !ok || mfile == "" || mpath == "" {
		fmt.Println("m[v] <input modified file> <path in RomFS>")
		return
	}

	data, err := os.ReadFile(mfile)
	if err != nil {
		fmt.Println("Could not read <input modified file>")
		return
	}

	if err := fs.ModifyFile(data, mpath); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Replacing /%s with %s\n", mpath, mfile)
}

func write(fs *romfs.FS, outpath string) {
	if outpath == "" {
		fmt.Println("w <new RomFs file>")
		return
	}

	enc := &lzmaenc.External{}
	warnings, err := fs.Rebuild(enc)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	warnings.PrintTo(os.Stderr)

	f, err := os.OpenFile(outpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec // matches device firmware deliverable permissions
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	defer f.Close()

	fmt.Printf("Writing modified RomFS to %s\n", outpath)
	if _, err := f.Write(fs.Image()); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func printHelp() {
	fmt.Println(`Available commands:
l[s]                                  list RomFS modifiable files
m[v] <input modified file> <path in RomFS>  read replacing file
w <new RomFs file>                    write modified RomFS to new file
q                                     quit`)
}
