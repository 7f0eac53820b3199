// SPDX-License-Identifier: GPL-3.0-or-later

package kernel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolDoRunsAndReturnsError(t *testing.T) {
	p := NewWorkerPool(2)
	require.NoError(t, p.Do(context.Background(), func() error { return nil }))

	boom := errors.New("boom")
	assert.ErrorIs(t, p.Do(context.Background(), func() error { return boom }), boom)
}

func TestWorkerPoolRunAllBoundsConcurrency(t *testing.T) {
	p := NewWorkerPool(2)

	var current, maxSeen int32
	fns := make([]func() error, 8)
	for i := range fns {
		fns[i] = func() error {
			n := atomic.AddInt32(&current, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			atomic.AddInt32(&current, -1)
			return nil
		}
	}

	require.NoError(t, p.RunAll(context.Background(), fns))
	assert.LessOrEqual(t, atomic.LoadInt32(&maxSeen), int32(2))
}

func TestWorkerPoolRunAllReturnsFirstError(t *testing.T) {
	p := NewWorkerPool(4)
	boom := errors.New("boom")
	fns := []func() error{
		func() error { return nil },
		func() error { return boom },
		func() error { return nil },
	}
	assert.ErrorIs(t, p.RunAll(context.Background(), fns), boom)
}
