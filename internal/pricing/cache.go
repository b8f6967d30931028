package pricing

import (
	"sync"
	"time"
)

// CachingSource memoizes rate lookups from an underlying RateSource.
// The cache is constructor-injected state, never package-global; when the
// entry count exceeds maxEntries the cache is reset wholesale, which is
// adequate for the bounded timestamp sets one analysis touches.
type CachingSource struct {
	source     RateSource
	maxEntries int

	mu    sync.RWMutex
	rates map[rateKey]float64
}

type rateKey struct {
	unix     int64
	currency string
}

// NewCachingSource wraps source with a bounded memoization layer.
// maxEntries <= 0 selects a default of 4096.
func NewCachingSource(source RateSource, maxEntries int) *CachingSource {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	return &CachingSource{
		source:     source,
		maxEntries: maxEntries,
		rates:      make(map[rateKey]float64),
	}
}

// Rate returns the cached rate when present, otherwise consults the
// underlying source and stores the result.
func (c *CachingSource) Rate(t time.Time, currency string) float64 {
	key := rateKey{unix: t.Unix(), currency: currency}

	c.mu.RLock()
	rate, ok := c.rates[key]
	c.mu.RUnlock()
	if ok {
		return rate
	}

	rate = c.source.Rate(t, currency)

	c.mu.Lock()
	if len(c.rates) >= c.maxEntries {
		c.rates = make(map[rateKey]float64)
	}
	c.rates[key] = rate
	c.mu.Unlock()

	return rate
}
