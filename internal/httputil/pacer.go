// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Pacer spaces out calls to a rate-sensitive source. Each Wait sleeps for a
// uniformly random duration in [Min, Max]; every Every-th call additionally
// sleeps LongPause.
type Pacer struct {
	Min, Max  time.Duration
	Every     int
	LongPause time.Duration

	mu    sync.Mutex
	calls int
	rng   *rand.Rand
}

// NewPacer returns a pacer with its own random source.
func NewPacer(minDelay, maxDelay time.Duration, every int, longPause time.Duration) *Pacer {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Pacer{
		Min:       minDelay,
		Max:       maxDelay,
		Every:     every,
		LongPause: longPause,
		rng:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
}

// Next returns the duration the next Wait will sleep and advances the call
// counter.
func (p *Pacer) Next() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	d := p.Min
	if span := p.Max - p.Min; span > 0 {
		if p.rng == nil {
			p.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
		}
		d += time.Duration(p.rng.Int64N(int64(span) + 1))
	}
	if p.Every > 0 && p.calls%p.Every == 0 {
		d += p.LongPause
	}
	return d
}

// Wait sleeps for the next paced duration. It returns ctx.Err() if ctx is
// done first. A nil Pacer does not wait.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	return Sleep(ctx, p.Next())
}
