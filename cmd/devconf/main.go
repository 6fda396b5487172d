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

// Command devconf extracts or rebuilds the device configuration blob
// carried inside a SEAMA envelope.
package main

import (
	"fmt"
	"os"

	"github.com/syschmod/dlink-patch-utils/devconfgz"
	"github.com/syschmod/dlink-patch-utils/internal/clidispatch"
	"github.com/syschmod/dlink-patch-utils/seama"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n %s e[xtract] <infile.bin> <outfile.xml>\n %s r[ebuild] <infile.xml> <original.bin> <outfile.bin>\n",
		os.Args[0], os.Args[0])
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch clidispatch.Match(os.Args[1], "extract", "rebuild") {
	case "extract":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		if err := extract(os.Args[2], os.Args[3]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "rebuild":
		if len(os.Args) != 5 {
			usage()
			os.Exit(1)
		}
		if err := rebuild(os.Args[2], os.Args[3], os.Args[4]); err != nil {
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

	xml, err := devconfgz.Decompress(env.Data)
	if err != nil {
		return fmt.Errorf("decompress configuration blob: %w", err)
	}

	return writeExclusive(outfile, xml)
}

func rebuild(infile, original, outfile string) error {
	xml, err := os.ReadFile(infile)
	if err != nil {
		return err
	}

	xmlgz, err := devconfgz.Compress(xml)
	if err != nil {
		return fmt.Errorf("compress configuration blob: %w", err)
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

	return writeExclusive(outfile, seama.Encode(xmlgz, env.Meta))
}

// writeExclusive creates outfile, refusing to overwrite an existing one, as
// the original tools do by opening with Python's "xb" mode.
func writeExclusive(outfile string, data []byte) error {
	f, err := os.OpenFile(outfile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec // matches device firmware deliverable permissions
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}
