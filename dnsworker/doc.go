// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

/*
Package dnsworker implements a simple limiting DNS client-request execution
pool. Dnsdoctor uses [DnsPool] with a pool of “DNS workers” to resolve the
A/AAAA addresses of the diagnosed domain in-process for the reachability
verification stage. Please note that the A/AAAA queries for a single name
are not concurrent.

Usage

	dnsclnt := dns.Client{}
	workers, err := dnsworker.New(
	    context.Background(),
	    4,                        // number of parallel DNS connections and thus workers
	    &dnsclnt,                 // DNS client
	    dnsworker.SystemResolver(), // address of server/resolver
	)
	workers.ResolveName(
	    ctx, "example.org",
	    func(addrs []string, err error) {
	        // do something with addrs, unless there's an error reported
	    })

# Acknowledgements

Under its hood, [DnsPool] leverages [github.com/gammazero/workerpool] as the
limiting goroutine pool.

[github.com/gammazero/workerpool]: https://github.com/gammazero/workerpool
*/
package dnsworker
