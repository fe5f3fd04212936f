// Package workers provides the bulk-synchronous "for each particle, in
// parallel" primitive every physics kernel is built from. One pass is one
// call to For: it returns only once every index has been processed, which
// is what gives the driver its happens-before barrier between kernels.
package workers

import (
	"runtime"
	"sync"
)

// Config controls how a For call is split across goroutines. The zero value
// is not usable; use DefaultConfig() or SetConfig to install one.
type Config struct {
	NumWorkers       int
	MinimumBatchSize int
}

// DefaultConfig spreads work across all logical CPUs, matching the
// teacher's runtime.NumCPU() default in main.go.
func DefaultConfig() Config {
	return Config{NumWorkers: runtime.NumCPU(), MinimumBatchSize: 64}
}

var current = DefaultConfig()

// SetConfig overrides the global parallel-for configuration, mirroring the
// teacher's simulation.SetParallelConfig.
func SetConfig(c Config) {
	if c.NumWorkers <= 0 {
		c.NumWorkers = runtime.NumCPU()
	}
	if c.MinimumBatchSize <= 0 {
		c.MinimumBatchSize = 1
	}
	current = c
}

// For runs f(i) for every i in [start, end), blocking until all have
// completed. Small ranges run inline on the calling goroutine: spinning up
// a worker pool to do less work than MinimumBatchSize just adds overhead.
func For(start, end int, f func(i int)) {
	n := end - start
	if n <= 0 {
		return
	}
	cfg := current
	if n < cfg.MinimumBatchSize || cfg.NumWorkers <= 1 {
		for i := start; i < end; i++ {
			f(i)
		}
		return
	}

	tasks := make(chan int, n)
	var wg sync.WaitGroup
	for w := 0; w < cfg.NumWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				f(i)
			}
		}()
	}
	for i := start; i < end; i++ {
		tasks <- i
	}
	close(tasks)
	wg.Wait()
}
