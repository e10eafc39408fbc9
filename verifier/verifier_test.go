// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package verifier

import (
	"context"
	"time"

	"github.com/siemens/dnsdoctor/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func namaddr(fqdn, addr string, q types.Quality) *types.NamedAddressValue {
	return &types.NamedAddressValue{
		FQDN: fqdn,
		QualifiedAddressValue: types.QualifiedAddressValue{
			Address: addr,
			Quality: q,
		},
	}
}

var _ = Describe("named address cache", func() {

	It("signals new addresses exactly once", func(ctx context.Context) {
		cache := NewNamedAddressCache()
		news := make(chan types.NamedAddress, 10)
		Expect(cache.Update(ctx, namaddr("example.org.", "192.0.2.1", types.Unverified), news)).To(BeTrue())
		Expect(cache.Update(ctx, namaddr("example.org.", "192.0.2.1", types.Unverified), news)).To(BeFalse())
		Expect(cache.Update(ctx, namaddr("www.example.org.", "192.0.2.1", types.Unverified), news)).To(BeFalse())
	}, NodeTimeout(5*time.Second))

	It("distributes a terminal verdict to all waiting consumers", func(ctx context.Context) {
		cache := NewNamedAddressCache()
		news := make(chan types.NamedAddress, 10)
		cache.Update(ctx, namaddr("example.org.", "192.0.2.1", types.Unverified), news)
		cache.Update(ctx, namaddr("www.example.org.", "192.0.2.1", types.Unverified), news)
		<-news // initial notice for example.org.
		<-news // cached-quality echo for www.example.org.

		cache.Update(ctx, namaddr("example.org.", "192.0.2.1", types.Verified), news)
		verdicts := map[string]types.Quality{}
		for i := 0; i < 2; i++ {
			var na types.NamedAddress
			Eventually(news).WithContext(ctx).Should(Receive(&na))
			verdicts[na.Name()] = na.Qual()
		}
		Expect(verdicts).To(Equal(map[string]types.Quality{
			"example.org.":     types.Verified,
			"www.example.org.": types.Verified,
		}))
	}, NodeTimeout(5*time.Second))

	It("serves late consumers from the cached verdict", func(ctx context.Context) {
		cache := NewNamedAddressCache()
		news := make(chan types.NamedAddress, 10)
		cache.Update(ctx, namaddr("example.org.", "192.0.2.1", types.Unverified), news)
		<-news
		cache.Update(ctx, namaddr("example.org.", "192.0.2.1", types.Invalid), news)
		<-news

		Expect(cache.Update(ctx, namaddr("late.example.org.", "192.0.2.1", types.Unverified), news)).To(BeFalse())
		var na types.NamedAddress
		Eventually(news).WithContext(ctx).Should(Receive(&na))
		Expect(na.Name()).To(Equal("late.example.org."))
		Expect(na.Qual()).To(Equal(types.Invalid))
	}, NodeTimeout(5*time.Second))

})

var _ = Describe("named addresses map", func() {

	It("registers names without addresses", func() {
		m := NewNamedAddressesMap()
		m.Update(namaddr("example.org.", "", types.Unverified))
		sets := m.Get()
		Expect(sets).To(HaveLen(1))
		Expect(sets[0].FQDN).To(Equal("example.org."))
		Expect(sets[0].Addresses).To(BeEmpty())
	})

	It("augments and upgrades addresses, but never downgrades", func() {
		m := NewNamedAddressesMap()
		m.Update(namaddr("example.org.", "192.0.2.1", types.Unverified))
		m.Update(namaddr("example.org.", "192.0.2.2", types.Unverified))
		m.Update(namaddr("example.org.", "192.0.2.1", types.Verified))
		m.Update(namaddr("example.org.", "192.0.2.1", types.Verifying)) // stale
		sets := m.Get()
		Expect(sets).To(HaveLen(1))
		Expect(sets[0].Addresses).To(ConsistOf(
			types.QualifiedAddressValue{Address: "192.0.2.1", Quality: types.Verified},
			types.QualifiedAddressValue{Address: "192.0.2.2", Quality: types.Unverified},
		))
	})

	It("tracks an update stream until closed", func(ctx context.Context) {
		m := NewNamedAddressesMap()
		news := make(chan types.NamedAddress, 2)
		news <- namaddr("example.org.", "192.0.2.1", types.Unverified)
		close(news)
		Expect(m.Track(ctx, news)).To(Succeed())
		Expect(m.Get()).To(HaveLen(1))
	}, NodeTimeout(5*time.Second))

})

var _ = Describe("verifier", func() {

	It("winds down when its input closes", func(ctx context.Context) {
		v, news := New(1)
		in := make(chan types.NamedAddress)
		done := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			v.Verify(ctx, in)
			close(done)
		}()
		in <- namaddr("example.org.", "", types.Unverified)
		Eventually(news).WithContext(ctx).Should(Receive(
			HaveValue(HaveField("FQDN", "example.org."))))
		close(in)
		Eventually(done).WithContext(ctx).Should(BeClosed())
		Eventually(news).WithContext(ctx).Should(BeClosed())
	}, NodeTimeout(10*time.Second))

})
