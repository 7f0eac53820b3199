//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// No pack example ships a hashed timing wheel (nop is request/response
// shaped and relies on context deadlines alone); this is built fresh on
// container/list + time.Ticker as the closest idiomatic stdlib shape,
// justified in DESIGN.md's "parts built on the standard library" section.
//

package kernel

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// TimerWheel is a hashed timing wheel scheduling per-flow callbacks (e.g.
// idle timeouts, retransmit backoffs) at a fixed resolution, per spec.md
// §4.4 "Timers ... at least 10ms resolution, O(1) amortized scheduling".
//
// A TimerWheel is safe for concurrent use once [TimerWheel.Run] has been
// started.
type TimerWheel struct {
	resolution time.Duration
	buckets    []*list.List

	mu     sync.Mutex
	cursor int
	nextID uint64
	index  map[uint64]*list.Element
}

type timerEntry struct {
	id              uint64
	remainingRounds int
	fn              func()
	cancelled       bool
}

// NewTimerWheel returns a [*TimerWheel] with slots buckets, each advanced
// every resolution duration once [TimerWheel.Run] starts.
func NewTimerWheel(resolution time.Duration, slots int) *TimerWheel {
	w := &TimerWheel{
		resolution: resolution,
		buckets:    make([]*list.List, slots),
		index:      make(map[uint64]*list.Element),
	}
	for i := range w.buckets {
		w.buckets[i] = list.New()
	}
	return w
}

// Schedule arranges for fn to run after roughly d (rounded up to the
// nearest resolution multiple), returning an id usable with
// [TimerWheel.Cancel]. fn runs on the wheel's own goroutine, so it must not
// block or it will delay every other timer due at the same tick.
func (w *TimerWheel) Schedule(d time.Duration, fn func()) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	ticks := int((d + w.resolution - 1) / w.resolution)
	if ticks < 1 {
		ticks = 1
	}
	slots := len(w.buckets)
	slot := (w.cursor + ticks) % slots
	rounds := ticks / slots

	w.nextID++
	id := w.nextID
	e := w.buckets[slot].PushBack(&timerEntry{id: id, remainingRounds: rounds, fn: fn})
	w.index[id] = e
	return id
}

// Cancel prevents a previously scheduled timer from firing, if it has not
// fired already. Cancelling an unknown or already-fired id is a no-op.
func (w *TimerWheel) Cancel(id uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.index[id]
	if !ok {
		return
	}
	e.Value.(*timerEntry).cancelled = true
	delete(w.index, id)
}

// Run advances the wheel every resolution duration until ctx is done. It
// should be run in its own goroutine; [Runtime] does this automatically.
func (w *TimerWheel) Run(ctx context.Context) {
	ticker := time.NewTicker(w.resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.advance()
		}
	}
}

func (w *TimerWheel) advance() {
	w.mu.Lock()
	bucket := w.buckets[w.cursor]
	w.cursor = (w.cursor + 1) % len(w.buckets)

	var fire []func()
	var next *list.Element
	for e := bucket.Front(); e != nil; e = next {
		next = e.Next()
		entry := e.Value.(*timerEntry)
		if entry.cancelled {
			bucket.Remove(e)
			continue
		}
		if entry.remainingRounds > 0 {
			entry.remainingRounds--
			continue
		}
		fire = append(fire, entry.fn)
		delete(w.index, entry.id)
		bucket.Remove(e)
	}
	w.mu.Unlock()

	for _, fn := range fire {
		fn()
	}
}
