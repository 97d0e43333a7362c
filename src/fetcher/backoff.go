package fetcher

import (
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DoublingBackOff waits Base, 2*Base, 4*Base... each plus a uniform jitter in
// [0, MaxJitter).
type DoublingBackOff struct {
	Base      time.Duration
	MaxJitter time.Duration
	// Jitter returns a value in [0, n). Defaults to math/rand.
	Jitter func(n int64) int64

	next time.Duration
}

var _ backoff.BackOff = (*DoublingBackOff)(nil)

func (b *DoublingBackOff) Reset() {
	b.next = b.Base
}

func (b *DoublingBackOff) NextBackOff() time.Duration {
	if b.next == 0 {
		b.next = b.Base
	}
	wait := b.next
	b.next *= 2
	if b.MaxJitter > 0 {
		jitter := b.Jitter
		if jitter == nil {
			jitter = rand.Int64N
		}
		wait += time.Duration(jitter(int64(b.MaxJitter)))
	}
	return wait
}
