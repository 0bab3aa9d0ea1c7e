package crawl

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/fwojciec/carecost"
	"golang.org/x/time/rate"
)

var _ carecost.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter allows one request in flight per domain and enforces a
// pause between the end of one request and the start of the next. An
// optional token bucket caps the request rate across all domains.
type DomainLimiter struct {
	mu     sync.Mutex
	gates  map[string]*gate
	delay  time.Duration
	jitter time.Duration
	global *rate.Limiter
}

type gate struct {
	// slot holds a token while a request to the domain is in flight.
	slot chan struct{}

	// next is guarded by slot.
	next time.Time
}

// NewDomainLimiter creates a DomainLimiter. The pause after each request is
// delay plus a uniformly random offset in [-jitter, +jitter]. A positive rps
// adds the global cap with a burst of 1.
func NewDomainLimiter(delay, jitter time.Duration, rps float64) *DomainLimiter {
	d := &DomainLimiter{
		gates:  make(map[string]*gate),
		delay:  delay,
		jitter: jitter,
	}
	if rps > 0 {
		d.global = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return d
}

// Acquire blocks until a request to domain may start.
// Returns an error if the context is canceled before that.
func (d *DomainLimiter) Acquire(ctx context.Context, domain string) (func(), error) {
	g := d.gate(domain)

	select {
	case g.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if wait := time.Until(g.next); wait > 0 {
		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			<-g.slot
			return nil, ctx.Err()
		}
	}

	if d.global != nil {
		if err := d.global.Wait(ctx); err != nil {
			<-g.slot
			return nil, err
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.next = time.Now().Add(d.pause())
			<-g.slot
		})
	}, nil
}

func (d *DomainLimiter) gate(domain string) *gate {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, ok := d.gates[domain]
	if !ok {
		g = &gate{slot: make(chan struct{}, 1)}
		d.gates[domain] = g
	}
	return g
}

func (d *DomainLimiter) pause() time.Duration {
	p := d.delay
	if d.jitter > 0 {
		p += time.Duration(rand.Int64N(int64(2*d.jitter)+1)) - d.jitter
	}
	return max(p, 0)
}
