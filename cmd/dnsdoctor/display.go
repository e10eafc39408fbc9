// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"sort"
	"strings"

	"github.com/siemens/dnsdoctor/types"
	"github.com/siemens/dnsdoctor/verifier"
)

// renderer renders the reachability verification display, based on the
// named+qualified address information passed to its Render method.
type renderer struct {
	domain  string
	w       io.Writer
	spinner *spinner
}

// newRenderer returns a renderer object rendering to the specified io.Writer
// the verification state of the addresses resolved for domain.
func newRenderer(w io.Writer, domain string) *renderer {
	return &renderer{
		domain:  domain,
		w:       w,
		spinner: newSpinner(*spinnerInterval),
	}
}

// Render the given named+qualified addresses.
func (r *renderer) Render(sets []verifier.NamedAddressSet) {
	// If we don't have any name+addressing information yet, show a proxy
	// message.
	if len(sets) == 0 {
		fmt.Fprintf(r.w, "resolving %s...\n", domainNameStyle.Styled(r.domain))
		return
	}
	for _, set := range sets {
		fmt.Fprintf(r.w, "addresses of %s\n",
			domainNameStyle.Styled(strings.TrimSuffix(set.FQDN, ".")))
		if len(set.Addresses) == 0 {
			fmt.Fprintln(r.w, "   (nothing resolved yet)")
			continue
		}
		addrs := append([]types.QualifiedAddressValue{}, set.Addresses...)
		sortQualifiedAddresses(addrs)
		for _, addr := range addrs {
			r.renderAddress(addr)
		}
	}
}

// renderAddress renders a single qualified address with a glyph (or spinner)
// reflecting its current verification quality.
func (r *renderer) renderAddress(addr types.QualifiedAddressValue) {
	switch addr.Quality {
	case types.Unverified:
		fmt.Fprintf(r.w, "   ? %s\n", addr.Address)
	case types.Verifying:
		fmt.Fprintln(r.w, verifyingAddressStyle.Styled("   "+r.spinner.Spinner()+addr.Address))
	case types.Verified:
		fmt.Fprintln(r.w, validAddressStyle.Styled("   ✔ "+addr.Address))
	case types.Invalid:
		fmt.Fprintln(r.w, invalidAddressStyle.Styled("   × "+addr.Address))
	}
}

// sortQualifiedAddresses sorts a slice of qualified addresses in place.
// - IPv4 first, IPv6 ... (embarrassed silence) ... second.
// - sorts by address value.
func sortQualifiedAddresses(addrs []types.QualifiedAddressValue) {
	sort.Slice(addrs, func(a, b int) bool {
		ipA := net.ParseIP(addrs[a].Address)
		ipB := net.ParseIP(addrs[b].Address)
		return bytes.Compare(ipA, ipB) < 0
	})
}
