// Package parallel splits independent loop iterations across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// minWork is the smallest amount of work (in multiply-adds) worth handing
// to its own goroutine.
const minWork = 1 << 16

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1,
	}
}

// ForCost returns c with MinChunkSize raised so that every goroutine gets at
// least minWork units when each item costs cost units.
func (c Config) ForCost(cost int) Config {
	if cost <= 0 {
		cost = 1
	}
	c.MinChunkSize = max(c.MinChunkSize, (minWork+cost-1)/cost)
	return c
}

// For executes f(i) for i in [0, n), splitting the range into contiguous
// chunks. Falls back to sequential execution if parallelism is disabled or
// n is smaller than two chunks.
//
// f must only write state owned by index i; results are then identical to
// the sequential loop.
func For(n int, f func(i int), cfg Config) {
	chunk := max(cfg.MinChunkSize, 1)
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < 2*chunk {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunk = max((n+cfg.NumWorkers-1)/cfg.NumWorkers, chunk)

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
