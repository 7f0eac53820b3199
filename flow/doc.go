// SPDX-License-Identifier: GPL-3.0-or-later

// Package flow provides the universal flow abstraction shared by every
// plugin in a YtFlowCore profile.
//
// # Core Abstractions
//
// Three capability sets cover every transport kind a plugin can produce or
// consume:
//
//   - [StreamFlow]: ordered, reliable bytes with half-close and ticket-based
//     receive for zero-copy headroom reservation.
//   - [DatagramSession]: bounded, unreliable messages with a per-message
//     peer destination.
//   - [Resolver]: name resolution, forward and reverse.
//
// Plugins never depend on a concrete implementation of these interfaces —
// a StreamFlow consumer cannot tell whether the provider is a raw socket, a
// TLS tunnel, or a WebSocket framer. This mirrors the way upstream
// connection-oriented libraries abstract over [net.Conn]: callers program
// against the capability, not the transport.
//
// # Buffers and Context
//
// [Buffer] carries configurable headroom/tailroom so a downstream codec can
// prepend a header or append a trailer without reallocating. [Context]
// carries per-flow metadata (addresses, SNI/sniffed hints, correlation id,
// a mutable key/value bag) alongside a [context.Context] for cancellation
// and deadlines — the Go-idiomatic replacement for a bespoke cancellation
// token.
//
// # Error Taxonomy
//
// Flow-level failures are plain sentinel errors ([ErrEOF], [ErrReset],
// [ErrCancelled], [ErrTimeout]) checked with [errors.Is]; transport-specific
// errors are wrapped so the sentinel is still reachable through the chain.
// [ErrClassifier] (adapted from the same pattern used by connection-layer
// logging libraries) maps any error to a short categorical string for
// structured logs without requiring callers to exhaustively switch on error
// types.
package flow
