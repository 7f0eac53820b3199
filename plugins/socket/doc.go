//
// SPDX-License-Identifier: GPL-3.0-or-later
//

// Package socket implements the "socket-inbound" sample plugin: a TCP
// listener that admits each accepted connection as a [flow.StreamFlow],
// dials a paired flow through a bound StreamOutbound descriptor, and pumps
// bytes between the two in both directions, grounding spec.md §8 scenario
// 1's inbound side. When built with a live kernel, each accepted
// connection occupies a slot in the kernel's connection table for its
// whole lifetime and its receive buffers come from the kernel's pool,
// so the kernel's admission and buffer accounting apply to real traffic,
// not only to the synthetic entries kernel's own tests construct.
package socket
