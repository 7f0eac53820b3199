//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// No pack repo models a bounded CPU-bound dispatch pool directly; this
// follows golang.org/x/sync/errgroup's own idiom (already a real,
// independently fetchable ecosystem package pulled in transitively by the
// pack) for bounding concurrent work via SetLimit, which is the Go-idiomatic
// replacement for a hand-rolled semaphore (spec.md §5 "CPU-bound crypto
// must parallelize").
//

package kernel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool bounds concurrent CPU-bound dispatch (hashing, encryption,
// parsing) so it runs alongside, rather than serialized behind, the
// I/O-bound goroutines driving flows.
//
// The size bound applies within a single [WorkerPool.RunAll] call. Separate
// Do and RunAll calls each get their own bound and are not limited against
// one another.
type WorkerPool struct {
	size int
}

// NewWorkerPool returns a [*WorkerPool] whose RunAll runs at most size of
// its tasks at once.
func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{size: size}
}

// Do runs fn on its own goroutine and blocks the caller until fn returns,
// returning fn's error. It takes no slot shared with other calls, and ctx
// is not consulted: a done ctx neither prevents nor interrupts fn. Use this
// for a single piece of CPU-bound work dispatched from an I/O goroutine
// that needs the result before continuing.
func (p *WorkerPool) Do(ctx context.Context, fn func() error) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.size)
	g.Go(fn)
	return g.Wait()
}

// RunAll runs every fn in fns, at most the pool's size at a time, and
// returns the first error encountered (if any) once all have completed.
// ctx is not consulted: a done ctx does not keep pending fns from starting.
// Use this for a batch of independent CPU-bound tasks (e.g. hashing a set
// of datagrams) that should parallelize without exceeding the pool's
// concurrency budget.
func (p *WorkerPool) RunAll(ctx context.Context, fns []func() error) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.size)
	for _, fn := range fns {
		g.Go(fn)
	}
	return g.Wait()
}
