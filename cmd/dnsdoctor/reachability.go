// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/siemens/dnsdoctor/dnsworker"
	"github.com/siemens/dnsdoctor/ping"
	"github.com/siemens/dnsdoctor/types"
	"github.com/siemens/dnsdoctor/verifier"

	"github.com/gosuri/uilive"
	"github.com/miekg/dns"
)

// reachabilityPingCount matches the echo request count of the subprocess
// ICMP check, so both reachability views work off the same sample size.
const reachabilityPingCount = 4

// VerifyAndReport resolves the domain's A/AAAA addresses in-process and then
// verifies each distinct address by pinging it, rendering the verdicts live
// to the terminal. Verification failures are advisory; the only error
// returned is failing to even reach a resolver.
func VerifyAndReport(ctx context.Context, domain string) error {
	resolver := *resolverAddr
	if resolver == "" {
		resolver = dnsworker.SystemResolver()
	}
	dnsclnt := dns.Client{
		Net: "tcp", // ...answers can outgrow UDP; play it safe here.
	}
	pool, err := dnsworker.New(ctx, int(*workerNumber), &dnsclnt, resolver)
	if err != nil {
		return fmt.Errorf("cannot connect to resolver %s: %w", resolver, err)
	}

	// Create an empty (concurrency-safe) result map with named-and-qualified
	// addresses and immediately fire off the rendering goroutine. The
	// rendering will only stop after tracking has finished because the result
	// stream channel has been closed. We then render a final update and end
	// rendering, signalling the end of our activities via renderingDone.
	namaddrs := verifier.NewNamedAddressesMap()
	trackingDone := make(chan struct{})
	renderingDone := make(chan struct{})

	go func() {
		// uilive's background updating mode using Start() may trigger anytime
		// with the rendering into the buffer not yet complete, making the
		// terminal output flickery. So we avoid Start() and instead trigger
		// an explicit flush to the terminal after completing each rendering.
		term := uilive.New()
		renderer := newRenderer(term, domain)
		defer func() {
			renderData(term, renderer, namaddrs)
			close(renderingDone)
		}()
		renderData(term, renderer, namaddrs)
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				renderData(term, renderer, namaddrs)
			case <-trackingDone:
				return
			}
		}
	}()

	// Now lets put the required processing elements and their plumbing in
	// place.
	//
	//   - DnsPool producing IP addresses for the domain.
	//   - Verifier consuming the IPs and pinging them, producing "verdicts".
	//   - NamedAddressesMap consuming these "verdicts".
	//
	// Rendering is done on the information collected by the NamedAddressesMap.
	options := []ping.PingerOption{ping.WithCount(reachabilityPingCount)}
	if *unprivileged {
		options = append(options, ping.AsUnprivileged())
	}
	vrfr, news := verifier.New(int(*workerNumber), options...)
	resolved := make(chan types.NamedAddress, int(*workerNumber))
	go vrfr.Verify(ctx, resolved)
	go func() {
		_ = namaddrs.Track(ctx, news)
		close(trackingDone)
	}()

	// Finally feed the domain into the resolving stage, so its addresses can
	// move through the verification stages. Then close the input stream and
	// wait for all the data to pass the stages and finally get rendered a
	// last time.
	go func() {
		fqdn := dns.Fqdn(domain)
		// Announce the name undergoing resolution first, so the renderer has
		// something to show while the lookups are still in flight.
		select {
		case resolved <- &types.NamedAddressValue{FQDN: fqdn}:
		case <-ctx.Done():
		}
		pool.ResolveName(ctx, fqdn, func(addrs []string, err error) {
			for _, addr := range addrs {
				// Avoid blocking endlessly in case of the context getting
				// cancelled.
				select {
				case resolved <- &types.NamedAddressValue{
					FQDN: fqdn,
					QualifiedAddressValue: types.QualifiedAddressValue{
						Address: addr,
						Quality: types.Unverified,
					},
				}:
				case <-ctx.Done():
					return
				}
			}
		})
		pool.StopWait()
		close(resolved)
	}()
	<-renderingDone

	return nil
}

// renderData gets the current named+verified address data and then renders
// (and flushes) it to the terminal.
func renderData(term *uilive.Writer, r *renderer, data *verifier.NamedAddressesMap) {
	r.Render(data.Get())
	term.Flush()
}
