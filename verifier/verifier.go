// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package verifier

import (
	"context"

	"github.com/siemens/dnsdoctor/ping"
	"github.com/siemens/dnsdoctor/types"
)

// Verifier verifies a stream of named addresses, caching verification results
// as to avoid unnecessary duplicate verification attempts. It uses a
// [ping.Pinger] for verifying the IP addresses.
type Verifier struct {
	news    chan<- types.NamedAddress
	pinger  *ping.Pinger
	checked <-chan types.QualifiedAddress
}

// New returns a new Verifier with a maximum number of parallel verification
// workers, together with its “news” channel streaming verification updates.
// Any options are passed on to the underlying [ping.Pinger].
func New(size int, options ...ping.PingerOption) (*Verifier, <-chan types.NamedAddress) {
	news := make(chan types.NamedAddress, size)
	pinger, checked := ping.New(size, options...)
	return &Verifier{
		news:    news,
		pinger:  pinger,
		checked: checked,
	}, news
}

// Verify verifies the incoming stream of named addresses until the input
// channel is closed. It then waits for all enqueued verification tasks to
// complete and then closes the output channel returned by New, and finally
// returns.
//
// In case the specified context is cancelled, then Verify will stop pulling
// off new verification tasks and return as soon as possible, closing the
// output channel.
func (v *Verifier) Verify(ctx context.Context, in <-chan types.NamedAddress) {
	addrcache := NewNamedAddressCache()
	// As soon as new verification results trickle in, update the cache so
	// that the cache can inform the consumer of this Verifier of the results.
	done := make(chan struct{})
	go func() {
	slurpVerdicts:
		for {
			select {
			case qaddr, ok := <-v.checked:
				if !ok {
					break slurpVerdicts
				}
				addrcache.Update(ctx, qaddr.(types.NamedAddress), v.news)
			case <-ctx.Done():
				break slurpVerdicts
			}
		}
		close(done)
	}()
	// Process incoming named addresses and initiate verification tasks if an
	// address is seen for the first time. Addresses we've already seen, but
	// for different names, will be directly served if their quality has
	// already been verified. Otherwise, these names will be put on hold until
	// the verification result becomes available.
slurpAddresses:
	for {
		select {
		case addr, ok := <-in:
			if !ok {
				break slurpAddresses
			}
			if addr.Addr() == "" {
				// Pass on yet unresolved names directly to the news channel
				// and wait for more to come in soon.
				select {
				case v.news <- addr:
				case <-ctx.Done():
					break slurpAddresses
				}
				continue
			}
			if addrcache.Update(ctx, addr, v.news) {
				// Only schedule a verification task the first time we see
				// this particular address.
				v.pinger.ValidateQA(ctx, addr)
			}
		case <-ctx.Done():
			break slurpAddresses
		}
	}
	v.pinger.StopWait()
	// wait for all verification results to have come through and passed on
	// before calling it a day. In case the context was cancelled we don't
	// wait for the done signal, but immediately close our "outlet".
	select {
	case <-ctx.Done():
	default:
		<-done
	}
	close(v.news)
}
