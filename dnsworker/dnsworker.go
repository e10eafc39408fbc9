// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package dnsworker

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/miekg/dns"
)

// DnsPool is a (size-limited) pool of DNS client connections talking with the
// same DNS resolver address.
type DnsPool struct {
	workers *workerpool.WorkerPool
	mu      sync.Mutex // protects the pool of DNS connections
	free    []*dns.Conn
}

// New returns a pool of the specified size of DNS client connections, with
// each connection talking to the same DNS resolver address. Use
// [SystemResolver] to get the address of the host's configured resolver.
//
// DNS tasks are submitted using [DnsPool.Submit] in form of task functions
// receiving a concrete [dns.Conn].
//
// The passed context is used for creating (dialing) the DNS client
// connections only. It is not directly passed to the submitted DNS tasks, so
// task submitters are themselves responsible for capturing the necessary
// context in their task function closure.
func New(ctx context.Context, size int, dnsclnt *dns.Client, addr string) (*DnsPool, error) {
	dnspool := &DnsPool{
		workers: workerpool.New(size),
	}
	free := make([]*dns.Conn, 0, size)
	for i := 0; i < size; i++ {
		conn, err := dnsclnt.DialContext(ctx, addr)
		if err != nil {
			// Immediately release all connections created so far.
			for _, conn := range free {
				conn.Close()
			}
			return nil, err
		}
		free = append(free, conn)
	}
	dnspool.free = free
	return dnspool, nil
}

// SystemResolver returns the "host:port" address of the first nameserver
// configured in the host's /etc/resolv.conf. It falls back to localhost when
// the resolver configuration cannot be read or lists no servers.
func SystemResolver() string {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return "127.0.0.1:53"
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port)
}

// Submit a task to the DNS client connection pool, where it gets enqueued to
// be executed on an available DNS client connection.
func (p *DnsPool) Submit(task func(conn *dns.Conn)) {
	p.workers.Submit(func() { p.task(task) })
}

// ResolveName is a convenience method for submitting A/AAAA queries and
// gathering the results. The results (resolved IP addresses in textual
// format) or an error if resolution failed is passed to the specified
// callback function fn.
//
// fn is called only once after completing both A and AAAA queries, so fn
// always gets to see all IP addresses from all IP families (if any).
//
// Please note that when the passed context is cancelled this will cancel all
// in-flight as well as scheduled name resolution jobs.
func (p *DnsPool) ResolveName(ctx context.Context, name string, fn func([]string, error)) {
	p.Submit(func(conn *dns.Conn) {
		var addrs []string
		var err error
		defer func() { fn(addrs, err) }() // ...ensure triggering the result callback on our way out

		dnsclnt := dns.Client{}
		nadanothing := true
		for _, addrType := range []uint16{dns.TypeA, dns.TypeAAAA} {
			// don't try to resolve the name if the context has been cancelled;
			// trigger the callback immediately with the context error.
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return
			default:
			}

			msg := dns.Msg{
				MsgHdr: dns.MsgHdr{Id: dns.Id()},
			}
			name := dns.Fqdn(name)
			msg.SetQuestion(name, addrType)
			msg.RecursionDesired = true
			var r *dns.Msg
			r, _, err = dnsclnt.ExchangeWithConn(&msg, conn)
			if err != nil {
				return
			}
			for _, rr := range r.Answer {
				if addrRR, ok := rr.(*dns.A); ok {
					nadanothing = false
					addrs = append(addrs, addrRR.A.String())
					continue
				}
				if addrRR, ok := rr.(*dns.AAAA); ok {
					nadanothing = false
					addrs = append(addrs, addrRR.AAAA.String())
				}
			}
		}
		// If we neither got A nor AAAA answers then we consider this to be an
		// error. This ensures to send an error to the callback together with
		// the nil list of resolved IP addresses.
		if nadanothing {
			err = fmt.Errorf("ResolveName: query for %q yields no answers", name)
		}
	})
}

// task grabs the next free DNS client and passes it to the specified function.
// After the function returns, the connection is put back into the free list.
func (p *DnsPool) task(task func(conn *dns.Conn)) {
	// pop off a free DNS client connection...
	p.mu.Lock()
	if len(p.free) == 0 {
		panic("no free DNS client connection available")
	}
	last := len(p.free) - 1
	conn := p.free[last]
	p.free = p.free[:last]
	p.mu.Unlock()
	// run the task with its assigned DNS client connection...
	task(conn)
	// ...and push the DNS client connection back into the free list.
	p.mu.Lock()
	p.free = append(p.free, conn)
	p.mu.Unlock()
}

// StopWait waits for all enqueued address lookup or generic DNS request tasks
// to finish, and then shuts down the pool.
func (p *DnsPool) StopWait() {
	p.workers.StopWait()
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, conn := range p.free {
		conn.Close()
	}
	p.free = nil
}
