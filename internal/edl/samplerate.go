package edl

import (
	"math"
	"sync"
)

// RateCache maps EDL ids to their sample rates so render windows given in
// seconds can be converted to sample counts. Lookups for unknown ids fall
// back to the configured default rate.
type RateCache struct {
	mu          sync.RWMutex
	rates       map[string]int
	defaultRate int
}

func NewRateCache(defaultRate int) *RateCache {
	return &RateCache{
		rates:       make(map[string]int),
		defaultRate: defaultRate,
	}
}

// Set records the sample rate for an EDL id.
func (c *RateCache) Set(edlID string, rate int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates[edlID] = rate
}

// Get returns the sample rate for an EDL id, or the default when absent.
func (c *RateCache) Get(edlID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if rate, ok := c.rates[edlID]; ok {
		return rate
	}
	return c.defaultRate
}

// SecondsToSamples converts a duration in seconds to a sample count at the
// given rate, rounding to the nearest sample.
func SecondsToSamples(seconds float64, sampleRate int) int64 {
	return int64(math.Round(seconds * float64(sampleRate)))
}
