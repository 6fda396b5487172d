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

// Command langpack builds a sealpac-format i18n lookup table
// (sealpac.slp) from a tab-separated translation file.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/syschmod/dlink-patch-utils/sealpac"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Generate langpack/sealpac (for i18n):\n"+
		" %s <translations.txt> <outlangpack.lng> [langcode]\n"+
		"Each line in translations.txt should contain tab separated:\n"+
		"<original>\t<translation>\n", os.Args[0])
}

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}

	infile, outfile := os.Args[1], os.Args[2]
	langCode := "en"
	if len(os.Args) > 3 {
		langCode = os.Args[3]
	}

	if err := run(infile, outfile, langCode); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(infile, outfile, langCode string) error {
	raw, err := os.ReadFile(infile)
	if err != nil {
		return err
	}

	dictionary, err := parseTranslations(string(raw))
	if err != nil {
		return err
	}

	out := sealpac.BuildFromUTF8(dictionary, langCode)

	f, err := os.OpenFile(outfile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec // matches device firmware deliverable permissions
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(out)
	return err
}

// parseTranslations splits infile's content by line, each line
// "original\ttranslation", skipping blank lines.
func parseTranslations(data string) (map[string]string, error) {
	out := make(map[string]string)
	for _, line := range strings.Split(data, "\n") {
		if len(line) == 0 {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("langpack: malformed line (expected original<TAB>translation): %q", line)
		}
		out[parts[0]] = parts[1]
	}
	return out, nil
}
