// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package verifier

import (
	"context"
	"sync"

	"github.com/siemens/dnsdoctor/types"
)

// NamedAddressCache caches named qualified addresses so that unnecessary
// duplicate address verifications can be avoided, yet verification results
// get distributed at once to all named addresses pending in verification.
type NamedAddressCache struct {
	mu sync.Mutex
	m  map[string]qualityUpdateConsumers // IP address -> quality plus pending name consumers
}

// NewNamedAddressCache returns a new NamedAddressCache object.
func NewNamedAddressCache() *NamedAddressCache {
	return &NamedAddressCache{
		m: map[string]qualityUpdateConsumers{},
	}
}

// qualityUpdateConsumers is a list of DNS names that map to the same
// underlying IP address and thus want to learn about any updates in that IP
// address' quality.
type qualityUpdateConsumers struct {
	q         types.Quality
	err       error    // optional error reason for invalid quality
	consumers []string // waiting names that want to consume quality updates.
}

// Update checks the specified named address to see if it is a new
// (unverified) address which hasn't been cached yet. In this case it returns
// true to signal a new address to the caller, so that the caller, for
// instance, can start verifying the new address. Update returns false if the
// (unverified) address has already been seen, and the name for this address
// is cached. If the address is already in the cache and its quality is a
// final verdict of Verified or Invalid, then this update is automatically
// sent to the news consumer for all names associated with this address.
func (c *NamedAddressCache) Update(ctx context.Context, namaddr types.NamedAddress, news chan<- types.NamedAddress) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	addr := namaddr.Addr()
	qc, ok := c.m[addr]
	if !ok {
		// This is the first time we see this address, so we add it to our
		// cache without any further ado.
		//
		// Note: we assume that a new address always enters in qualities
		// Unverified or Verifying, so there will always be a later quality
		// update to be expected.
		c.m[addr] = qualityUpdateConsumers{
			q:         namaddr.Qual(),
			consumers: []string{namaddr.Name()},
		}
		select {
		case news <- namaddr:
		case <-ctx.Done():
		}
		return true
	}
	// So, this address is already known. Now, if this is NOT a quality update
	// by any of the registered consumers for this address, then we're done.
	// Otherwise, update the quality information.
	knownConsumer := false
	name := namaddr.Name()
	for _, consumer := range qc.consumers {
		if consumer == name {
			knownConsumer = true
		}
	}
	if namaddr.Qual() <= qc.q {
		// send an update with the most recent quality known, as the state
		// specified in the Update is already stale. We only need to inform
		// about this specific name, no other consumers affected.
		if !knownConsumer {
			qc.consumers = append(qc.consumers, name)
			c.m[addr] = qc
			select {
			case news <- namaddr.WithNewQuality(qc.q, qc.err).(types.NamedAddress):
			case <-ctx.Done():
			}
		}
		return false
	}
	// update quality
	qc.q = namaddr.Qual()
	qc.err = namaddr.Err()
	// This address is already known, so now check if it is in verification or
	// not. If in verification, then register the current name as a consumer
	// for a later quality update (if not already registered). If already
	// (in)validated, notify all registered consumers.
	var consumers []string
	switch qc.q {
	case types.Unverified, types.Verifying:
		if !knownConsumer {
			qc.consumers = append(qc.consumers, name)
		}
		consumers = qc.consumers
	default:
		// As we've reached one of the terminal qualities, notify all
		// registered consumers and then clear the registration list: all
		// further Update attempts will always be immediately served for the
		// particular name, as there won't be any quality changes anymore to
		// be sent to waiting consumers.
		consumers, qc.consumers = qc.consumers, nil
	}
	c.m[addr] = qc // update cache with most recent quality and consumers.
	// notify all registered consumers of this quality update.
	templ := namaddr.NA()
	templ.Quality = namaddr.Qual()
	for _, consumer := range consumers {
		templ := templ
		templ.FQDN = consumer
		select {
		case news <- &templ:
		case <-ctx.Done(): // bail out immediately.
			return false
		}
	}
	return false
}
