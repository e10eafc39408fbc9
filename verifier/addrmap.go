// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package verifier

import (
	"context"
	"sort"
	"sync"

	"github.com/siemens/dnsdoctor/types"
)

// NamedAddressSet is a DNS name together with the qualified network addresses
// it resolved to.
type NamedAddressSet struct {
	FQDN      string
	Addresses []types.QualifiedAddressValue
}

// NamedAddressesMap accumulates the qualified IP addresses per DNS name as
// they flow out of the verification pipeline. It is safe for concurrent use,
// so a renderer can take snapshots via Get while Track is still consuming
// verdicts from the pipeline's output channel.
type NamedAddressesMap struct {
	mu    sync.Mutex
	names map[string][]types.QualifiedAddressValue
}

// NewNamedAddressesMap returns a new and properly initialized
// NamedAddressesMap.
func NewNamedAddressesMap() *NamedAddressesMap {
	return &NamedAddressesMap{
		names: map[string][]types.QualifiedAddressValue{},
	}
}

// Get returns a snapshot of all named address sets, sorted by DNS name so
// repeated renderings don't jitter.
func (m *NamedAddressesMap) Get() []NamedAddressSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	sets := make([]NamedAddressSet, 0, len(m.names))
	for name, addrs := range m.names {
		sets = append(sets, NamedAddressSet{
			FQDN:      name,
			Addresses: addrs,
		})
	}
	sort.Slice(sets, func(a, b int) bool { return sets[a].FQDN < sets[b].FQDN })
	return sets
}

// Update the map with a NamedAddress: an unknown name gets registered (even
// address-less, announcing a name still being resolved), an unknown address
// gets appended to its name, and a known address advances only monotonically:
//   - from unverified to verifying
//   - from verifying to either verified or invalid
//
// Verdicts never regress a quality already recorded.
func (m *NamedAddressesMap) Update(namaddr types.NamedAddress) {
	if namaddr == nil || namaddr.Name() == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	addrs, known := m.names[namaddr.Name()]
	if !known {
		addrs = []types.QualifiedAddressValue{}
	}
	if addr := namaddr.Addr(); addr != "" {
		updated := false
		for idx := range addrs {
			if addrs[idx].Address != addr {
				continue
			}
			if namaddr.Qual() > addrs[idx].Quality {
				addrs[idx].Quality = namaddr.Qual()
			}
			updated = true
			break
		}
		if !updated {
			addrs = append(addrs, namaddr.QA())
		}
	}
	m.names[namaddr.Name()] = addrs
}

// Track consumes NamedAddress updates from the specified channel until the
// channel is closed or the context done, folding each update into the map.
func (m *NamedAddressesMap) Track(ctx context.Context, news <-chan types.NamedAddress) error {
	for {
		select {
		case namaddr, ok := <-news:
			if !ok {
				return nil
			}
			m.Update(namaddr)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
