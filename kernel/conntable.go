//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop cancelwatch.go's context-driven teardown,
// generalized from one watched net.Conn to a table of admitted flows with
// a high-water mark (spec.md §4.4 "Connection table").
//

package kernel

import (
	"context"
	"errors"
	"sync"
)

// ErrTableFull is returned by [ConnTable.Insert] when the table is already
// at its high-water mark.
var ErrTableFull = errors.New("kernel: connection table full")

// ConnEntry is one admitted flow's bookkeeping record: which plugin access
// point owns it and how to cancel it during shutdown or an orphan-abort
// deadline (spec.md §8 "Flow reachability from entry AP").
type ConnEntry struct {
	FlowID string
	Owner  string
	Cancel context.CancelFunc
}

// ConnTable is the kernel's concurrent flow-id -> [ConnEntry] map, bounded
// by a high-water mark.
//
// A ConnTable is safe for concurrent use.
type ConnTable struct {
	mu            sync.Mutex
	entries       map[string]ConnEntry
	highWaterMark int
}

// NewConnTable returns an empty [*ConnTable] bounded at highWaterMark
// concurrently admitted flows.
func NewConnTable(highWaterMark int) *ConnTable {
	return &ConnTable{
		entries:       make(map[string]ConnEntry),
		highWaterMark: highWaterMark,
	}
}

// Insert admits e, returning [ErrTableFull] if the table is already at
// capacity. Re-inserting an existing flow ID replaces its entry without
// counting against the high-water mark twice.
func (t *ConnTable) Insert(e ConnEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[e.FlowID]; !exists && len(t.entries) >= t.highWaterMark {
		return ErrTableFull
	}
	t.entries[e.FlowID] = e
	return nil
}

// Remove deletes flowID's entry, if present. It does not cancel the entry's
// context; callers that want cancellation-then-removal should call
// [ConnEntry.Cancel] themselves, which is what [ConnTable.CancelAll] does.
func (t *ConnTable) Remove(flowID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, flowID)
}

// Len returns the number of currently admitted flows.
func (t *ConnTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Lookup returns flowID's entry, if present.
func (t *ConnTable) Lookup(flowID string) (ConnEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[flowID]
	return e, ok
}

// CancelAll cancels every admitted flow's context, used by [Runtime.Stop]
// to abort orphaned flows once the graceful shutdown deadline elapses. It
// does not remove entries; owners are expected to call [ConnTable.Remove]
// themselves as their flow actually unwinds.
func (t *ConnTable) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.entries {
		if e.Cancel != nil {
			e.Cancel()
		}
	}
}
