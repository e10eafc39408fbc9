// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

/*
Package check implements dnsdoctor's diagnostic runner: a fixed ordered list
of DNS and network checks against a single domain, each one consulting a
pre-existing external tool (dig, whois, nslookup, curl, ping, traceroute) and
passing its raw output through to the user underneath a colorized section
header.

The runner never halts on a single check's failure. Each step is
independently gated on the presence of its external tool; an absent tool
yields exactly one warning line and the run proceeds with the next step, as
does a non-zero tool exit. There deliberately is no validation of the domain
value and no structuring of tool output: this is an ad-hoc pass-through
diagnostic, not a DNS client.

External tools are invoked with explicit argument vectors only, never through
a shell.
*/
package check
