// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// promptDomain interactively asks for a domain name when none was given on
// the command line. Whatever the user enters is taken verbatim (sans
// surrounding whitespace); in particular, an empty answer yields an empty
// domain that the checks then get to see as-is.
func promptDomain(in io.Reader, out io.Writer) string {
	fmt.Fprint(out, "domain to diagnose: ")
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}
