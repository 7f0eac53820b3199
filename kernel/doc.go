// SPDX-License-Identifier: GPL-3.0-or-later

// Package kernel implements the runtime kernel of spec.md §4.4: the
// buffer pool, connection table, per-flow timers, cancellation watcher,
// I/O observability wrapper, and CPU-bound worker pool that every loaded
// [plugin.Instance] runs on top of, plus the [Runtime] that ties them
// together and drives graceful shutdown.
//
// Nothing here is plugin-specific; kernel only deals in [flow] capability
// values and opaque flow identifiers, so the same kernel instance serves
// every plugin kind the registry knows about.
package kernel
