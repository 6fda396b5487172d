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

// Command dlfwlisten is a debug-only receive endpoint for devices that POST
// their configuration dump over TCP (see "flash read -f /var/dump -n
// devdata" followed by "httpc -d <host>:8000 -p TCP -i ethN -f /var/dump"
// on the device side). Every connection's body is saved to disk and the
// device gets back a fixed HTTP 200 response.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
)

const response = "HTTP/1.1 200 OK\r\n" +
	"Connection: close\r\n" +
	"Content-Type: text/xml\r\n" +
	"\r\n" +
	"<root></root>"

func main() {
	addr := flag.String("addr", "0.0.0.0:8000", "address to listen on")
	flag.Parse()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("listen on %s: %v", *addr, err)
	}
	defer ln.Close()
	fmt.Printf("Listening on %s...\n", *addr)

	count := 0
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("accept: %v", err)
			continue
		}
		count = handleConn(conn, count)
	}
}

// handleConn reads the connection to EOF, replies with the fixed response,
// saves the body to a non-clobbering receivedN.bin, and returns the next
// file counter to try.
func handleConn(conn net.Conn, count int) int {
	defer conn.Close()

	remote := conn.RemoteAddr()
	fmt.Printf("Connection from %s\n", remote)

	data, err := io.ReadAll(conn)
	if err != nil {
		log.Printf("read from %s: %v", remote, err)
	}

	if _, err := conn.Write([]byte(response)); err != nil {
		log.Printf("write to %s: %v", remote, err)
	}

	fmt.Printf("Received %d bytes\n", len(data))

	for {
		fname := fmt.Sprintf("received%d.bin", count)
		f, err := os.OpenFile(fname, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec // matches device firmware deliverable permissions
		if err == nil {
			if _, werr := f.Write(data); werr != nil {
				log.Printf("write %s: %v", fname, werr)
			}
			f.Close()
			fmt.Printf("Writing to %s\n", fname)
			count++
			return count
		}
		if !os.IsExist(err) {
			log.Printf("open %s: %v", fname, err)
			count++
			return count
		}
		count++
	}
}
