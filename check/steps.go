// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package check

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// The record types queried by the basic lookup step.
var recordTypes = []string{"A", "AAAA", "CNAME", "MX", "TXT"}

// whoisMaxLines caps the amount of WHOIS output shown; registries love to
// append screenfuls of legalese.
const whoisMaxLines = 120

// httpFetchTimeout bounds each single header fetch attempt.
const httpFetchTimeout = 10 * time.Second

// icmpEchoCount is the fixed number of echo requests for the ICMP
// reachability check.
const icmpEchoCount = 4

// newSteps returns the fixed ordered list of diagnostic checks. The order is
// part of the tool's contract and must not change between runs.
func newSteps() []Step {
	return []Step{
		{Title: "Basic record lookups", Tool: "dig", Run: (*Runner).recordLookups},
		{Title: "Resolution trace from the root servers", Tool: "dig", Run: (*Runner).resolutionTrace},
		{Title: "DNSSEC presence", Tool: "dig", Run: (*Runner).dnssecPresence},
		{Title: "WHOIS registration data", Tool: "whois", Run: (*Runner).whoisLookup},
		{Title: "Resolver-level lookup", Tool: "nslookup", Run: (*Runner).resolverLookup},
		{Title: "HTTP(S) reachability", Tool: "curl", Run: (*Runner).httpReachability},
		{Title: "ICMP reachability", Tool: "ping", Run: (*Runner).icmpReachability},
		{Title: "Path trace", Tool: "traceroute", Run: (*Runner).pathTrace},
		{Title: "Reverse DNS", Tool: "dig", Run: (*Runner).reverseLookups},
		{Title: "Interpretation guidance", Tool: "", Run: (*Runner).guidance},
	}
}

// recordLookups digs the basic A, AAAA, CNAME, MX, and TXT records. The IPv4
// answers are additionally kept around for the later reverse-DNS step, in
// answer order and without removing duplicates.
func (r *Runner) recordLookups(ctx context.Context, domain string) error {
	for _, rrtype := range recordTypes {
		fmt.Fprintln(r.out, Note(rrtype+" records:"))
		if err := runTool(ctx, r.out, "dig", "+noall", "+answer", domain, rrtype); err != nil {
			return err
		}
	}
	out, err := captureTool(ctx, "dig", "+short", domain, "A")
	if err != nil {
		return err
	}
	r.addrs = ipv4Lines(out)
	return nil
}

// ipv4Lines filters the output lines of a short-form A query down to IPv4
// address literals, dropping interspersed CNAME chain targets.
func ipv4Lines(out string) []string {
	addrs := []string{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if ip := net.ParseIP(line); ip != nil && ip.To4() != nil {
			addrs = append(addrs, line)
		}
	}
	return addrs
}

// resolutionTrace shows the full iterative resolution, starting at the root
// servers.
func (r *Runner) resolutionTrace(ctx context.Context, domain string) error {
	return runTool(ctx, r.out, "dig", "+trace", domain)
}

// dnssecPresence probes for DNSKEY and DS records. This is presence
// inference only, no signature validation whatsoever.
func (r *Runner) dnssecPresence(ctx context.Context, domain string) error {
	present := false
	for _, rrtype := range []string{"DNSKEY", "DS"} {
		out, err := captureTool(ctx, "dig", "+short", domain, rrtype)
		if err != nil {
			return err
		}
		fmt.Fprint(r.out, out)
		if strings.TrimSpace(out) != "" {
			present = true
		}
	}
	if present {
		fmt.Fprintln(r.out, Success("DNSKEY/DS records present; DNSSEC likely configured (signatures not validated)"))
	} else {
		fmt.Fprintln(r.out, Warn("no DNSKEY/DS records; DNSSEC appears not to be configured"))
	}
	return nil
}

// whoisLookup shows the registration data, truncated so that registry
// legalese doesn't drown the interesting registrar/nameserver/expiry lines.
func (r *Runner) whoisLookup(ctx context.Context, domain string) error {
	out, err := captureTool(ctx, "whois", domain)
	lines := strings.Split(out, "\n")
	if len(lines) > whoisMaxLines {
		fmt.Fprintln(r.out, strings.Join(lines[:whoisMaxLines], "\n"))
		fmt.Fprintln(r.out, Note(fmt.Sprintf("(output truncated after %d lines)", whoisMaxLines)))
	} else {
		fmt.Fprint(r.out, out)
	}
	return err
}

// resolverLookup queries through the host's configured resolver, showing
// which resolver answered and what it returned.
func (r *Runner) resolverLookup(ctx context.Context, domain string) error {
	return runTool(ctx, r.out, "nslookup", domain)
}

// httpReachability fetches the response headers over HTTPS first and then
// over HTTP. Both attempts are always made, each one independently bounded
// and non-fatal, so a broken TLS setup doesn't mask a working plain-HTTP
// origin (or vice versa).
func (r *Runner) httpReachability(ctx context.Context, domain string) error {
	timeoutSecs := strconv.Itoa(int(httpFetchTimeout / time.Second))
	for _, scheme := range []string{"https", "http"} {
		url := scheme + "://" + domain
		fmt.Fprintln(r.out, Note("fetching headers from "+url))
		attemptCtx, cancel := context.WithTimeout(ctx, httpFetchTimeout)
		err := runTool(attemptCtx, r.out, "curl", "-sSIL", "-m", timeoutSecs, url)
		cancel()
		if err != nil {
			fmt.Fprintln(r.out, Failure(url+" not reachable: "+err.Error()))
			continue
		}
		fmt.Fprintln(r.out, Success(url+" reachable"))
	}
	return nil
}

// icmpReachability sends a fixed count of echo requests. Complete loss is
// normal for origins behind ICMP-dropping protection, so it only warrants a
// notice.
func (r *Runner) icmpReachability(ctx context.Context, domain string) error {
	if err := runTool(ctx, r.out, "ping", "-c", strconv.Itoa(icmpEchoCount), domain); err != nil {
		fmt.Fprintln(r.out, Warn("ping failed: "+err.Error()))
		fmt.Fprintln(r.out, Note("100% packet loss is expected for protected origins dropping ICMP"))
	}
	return nil
}

// pathTrace traces the path to the destination, with the hop and query flag
// spelling selected for the host platform at Runner creation.
func (r *Runner) pathTrace(ctx context.Context, domain string) error {
	argv := append([]string{"traceroute"}, r.traceArgs...)
	argv = append(argv, domain)
	return runTool(ctx, r.out, argv...)
}

// reverseLookups resolves PTR records for the IPv4 addresses collected by the
// record-lookup step, one lookup per address in the order the addresses were
// returned.
func (r *Runner) reverseLookups(ctx context.Context, domain string) error {
	if len(r.addrs) == 0 {
		fmt.Fprintln(r.out, Warn("no A records found; skipping reverse lookups"))
		return nil
	}
	for _, addr := range r.addrs {
		fmt.Fprintln(r.out, Note("PTR for "+addr+":"))
		if err := runTool(ctx, r.out, "dig", "+short", "-x", addr); err != nil {
			return err
		}
	}
	return nil
}

// guidance prints fixed heuristics for reading the results of the preceding
// checks; no computation, deliberately.
func (r *Runner) guidance(ctx context.Context, domain string) error {
	for _, hint := range []string{
		"name does not resolve, yet WHOIS shows a registration: nameservers likely misconfigured, or a recent delegation change is still propagating",
		"name resolves, but HTTP(S) fetches fail: suspect the web server or a firewall, not DNS",
		"HTTP(S) works while ICMP shows 100% loss: the origin (or its CDN/WAF) drops echo requests; harmless on its own",
		"path trace stalls mid-way while HTTP(S) works: intermediate hops drop trace probes; only the final hop matters",
	} {
		fmt.Fprintln(r.out, Note("• "+hint))
	}
	return nil
}
