// SPDX-License-Identifier: GPL-3.0-or-later

package flow

import "context"

// DatagramSession is a bounded, unreliable, message-oriented capability with
// a per-message peer destination — the shape implemented by UDP sockets,
// QUIC datagram extensions, and any other packet-oriented plugin output.
//
// Per-peer ordering is preserved best-effort; there is no reorder buffer
// and no global ordering guarantee across peers (spec.md §4.4 "Ordering
// guarantees").
type DatagramSession interface {
	// RecvFrom suspends until a datagram arrives, returning its sender
	// and payload. Lossy: datagrams may be dropped before delivery.
	RecvFrom(ctx context.Context) (peer Destination, buffer *Buffer, err error)

	// SendTo suspends briefly to enqueue buffer for peer; if the
	// session's bounded internal buffer is full, it returns
	// [ErrWouldBlock] and drops the datagram rather than queuing
	// unboundedly. Buffer ownership transfers out on success.
	SendTo(ctx context.Context, peer Destination, buffer *Buffer) error

	// Close releases resources bound to the session. Idempotent.
	Close() error
}
