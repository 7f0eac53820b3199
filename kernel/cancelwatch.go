//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop cancelwatch.go (CancelWatchFunc), generalized
// from net.Conn to flow.StreamFlow: Close becomes Abort, but the
// context.AfterFunc-driven teardown and once-safe unregistration are the
// same shape.
//

package kernel

import (
	"context"

	"github.com/ytflowcore/ytflowcore/flow"
)

// WatchCancel arranges for sf to be aborted when ctx is done (cancelled or
// deadline exceeded), giving a flow responsive cleanup on external
// cancellation instead of waiting for a per-operation timeout.
//
// The returned [flow.StreamFlow] wraps sf: aborting it unregisters the
// context watcher before aborting the underlying flow, so no goroutine
// leaks even if ctx is never cancelled.
//
// Use this where the context's lifetime matches the flow's intended
// lifetime (e.g. a request-scoped outbound dial). Do not use it for a flow
// that will outlive the context that created it, such as one admitted into
// a long-lived [ConnTable] entry with its own cancellation.
func WatchCancel(ctx context.Context, sf flow.StreamFlow) flow.StreamFlow {
	stop := context.AfterFunc(ctx, func() {
		sf.Abort()
	})
	return &cancelWatchedFlow{StreamFlow: sf, stop: stop}
}

type cancelWatchedFlow struct {
	flow.StreamFlow
	stop func() bool
}

// Abort unregisters the context watcher and aborts the underlying flow. If
// the watcher has already fired (or a previous Abort already ran), the
// underlying flow has been aborted once and Abort returns nil.
func (f *cancelWatchedFlow) Abort() error {
	if !f.stop() {
		return nil
	}
	return f.StreamFlow.Abort()
}
