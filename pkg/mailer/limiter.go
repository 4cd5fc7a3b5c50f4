package mailer

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a per-key token bucket, typically keyed by client IP.
// Idle keys are forgotten after a while so the map stays bounded.
type Limiter struct {
	mu      sync.Mutex
	every   time.Duration
	burst   int
	idle    time.Duration
	now     func() time.Time
	buckets map[string]*bucket
	swept   time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewLimiter allows burst submissions per key, refilling one every interval.
// A non-positive interval disables limiting.
func NewLimiter(every time.Duration, burst int) *Limiter {
	return &Limiter{
		every:   every,
		burst:   max(burst, 1),
		idle:    max(10*time.Minute, every*time.Duration(max(burst, 1))),
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow reports whether key may submit now. When it may not, the returned
// duration is how long until the next token.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	if l == nil || l.every <= 0 {
		return true, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.buckets[key] = b
	}
	b.seen = now

	r := b.lim.ReserveN(now, 1)
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.swept) < time.Minute {
		return
	}
	l.swept = now
	for k, b := range l.buckets {
		if now.Sub(b.seen) > l.idle {
			delete(l.buckets, k)
		}
	}
}
