package room

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// overflowPercent is shown when the computed ratio exceeds 100, which happens
// when the transport does not know the total length.
const overflowPercent = 10

// defaultProgressEvery bounds how often progress reaches the store.
const defaultProgressEvery = 50 * time.Millisecond

// Percent converts transferred bytes into a value in [0,100].
func Percent(loaded, total int64) int {
	if total <= 0 {
		total = 1
	}
	if loaded <= 0 {
		return 0
	}
	v := math.Round(float64(loaded) * 100 / float64(total))
	if v > 100 {
		return overflowPercent
	}
	return int(v)
}

// progressSink feeds bridge.ProgressFunc callbacks into a store setter at a
// bounded rate. The final value always gets through.
type progressSink struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	set     func(int)
	last    int
}

func newProgressSink(every time.Duration, set func(int)) *progressSink {
	if every <= 0 {
		every = defaultProgressEvery
	}
	return &progressSink{
		limiter: rate.NewLimiter(rate.Every(every), 1),
		set:     set,
		last:    -1,
	}
}

func (p *progressSink) report(loaded, total int64) {
	pct := Percent(loaded, total)
	final := total > 0 && loaded >= total

	p.mu.Lock()
	defer p.mu.Unlock()
	if pct == p.last {
		return
	}
	if !final && !p.limiter.Allow() {
		return
	}
	p.last = pct
	p.set(pct)
}
