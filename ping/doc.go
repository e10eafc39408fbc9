// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

/*
Package ping verifies the reachability of IP addresses by pinging them,
streaming verdicts in form of [github.com/siemens/dnsdoctor/types.QualifiedAddress]
values to a verdict channel. Dnsdoctor pings the addresses resolved for the
diagnosed domain in its final reachability verification stage.

A [Pinger] runs its verification jobs on a limited worker pool; the number of
pings, the ping interval, and the reply threshold for considering an address
reachable are configurable via options. By default pings are privileged raw
ICMP echoes; [AsUnprivileged] switches to UDP-based echoes that do not need
root (subject to the host's ping_group_range sysctl).

# Acknowledgements

Pinging is carried out by [github.com/go-ping/ping], job limiting by
[github.com/gammazero/workerpool].
*/
package ping
