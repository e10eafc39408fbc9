// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package check

import "strconv"

// Path traces are bounded to this maximum number of hops, probing each hop
// this many times.
const (
	traceMaxHops = 30
	traceQueries = 3
)

// TraceArgs returns the traceroute argument spelling for the specified
// GOOS-style host operating system: BSD-derived trace utilities (Darwin) use
// the short flags, GNU-derived ones the long option spellings. The flag set
// is resolved once at Runner creation.
func TraceArgs(goos string) []string {
	if goos == "darwin" {
		return []string{
			"-m", strconv.Itoa(traceMaxHops),
			"-q", strconv.Itoa(traceQueries),
		}
	}
	return []string{
		"--max-hops=" + strconv.Itoa(traceMaxHops),
		"--queries=" + strconv.Itoa(traceQueries),
	}
}
