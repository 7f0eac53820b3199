//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop tls.go (TLSConn: interface abstracting over
// a concrete connection type so alternative implementations can satisfy the
// same contract) and func.go (Func: single success/single failure contract).
//

package flow

import (
	"context"
	"sync/atomic"
)

// ReceiveTicket grants the caller up to one buffer of data from a prior
// call to [StreamFlow.RequestReceive]. Exactly one ticket may be
// outstanding per half at a time; a second call to RequestReceive before
// the first ticket is fulfilled or abandoned is a programming error.
type ReceiveTicket struct {
	// HintSize is the size hint that produced this ticket, preserved so
	// [StreamFlow.CommitReceive] implementations can size headroom
	// correctly without threading the value separately.
	HintSize int

	// id disambiguates tickets for implementations that want to assert
	// a commit matches the ticket it was issued for.
	id uint64
}

var ticketSeq uint64

// NewReceiveTicket mints a fresh [ReceiveTicket] for hintSize, with an id
// distinct from every other ticket minted this process's lifetime.
// [StreamFlow] implementations that genuinely split reservation from
// fulfillment (rather than stubbing CommitReceive out) call this from
// RequestReceive so a later CommitReceive can match it back up.
func NewReceiveTicket(hintSize int) ReceiveTicket {
	return ReceiveTicket{HintSize: hintSize, id: atomic.AddUint64(&ticketSeq, 1)}
}

// StreamFlow is an ordered, reliable, half-closable byte stream — the
// capability implemented by TCP sockets, TLS tunnels, WebSocket framers,
// and any other stream-shaped plugin output.
//
// Ticket-based receive lets a downstream plugin reserve headroom before the
// producer fills the buffer, enabling zero-copy decapsulation: a plugin
// that will strip N header bytes can request a receive sized to expect
// them, and the producer writes directly into a buffer already shaped for
// that use.
//
// Every operation is a suspension point: implementations must return
// [ErrCancelled] (or a wrapped sentinel) promptly once ctx is done.
type StreamFlow interface {
	// RequestReceive asks the producer for up to one buffer of data,
	// sized by hintSize (implementations may ignore the hint). Returns
	// [ErrEOF] when the peer half-closed cleanly, [ErrReset] when
	// aborted, or an [*IOError] for transport errors.
	RequestReceive(ctx context.Context, hintSize int) (ReceiveTicket, error)

	// CommitReceive fulfills a pending ticket with data, transferring
	// buffer ownership to the consumer. Implementations on the producer
	// side of a pipeline call this; most call sites instead use the
	// higher-level [StreamFlow.Receive] helper.
	CommitReceive(ticket ReceiveTicket, buffer *Buffer) error

	// Receive is a convenience wrapper performing RequestReceive
	// followed immediately by waiting for the corresponding commit, for
	// callers that don't need to separate reservation from fulfillment.
	Receive(ctx context.Context) (*Buffer, error)

	// Transmit suspends until buffer is accepted by the downstream
	// peer, honoring backpressure. Buffer ownership transfers out; the
	// caller must not touch buffer after this returns.
	Transmit(ctx context.Context, buffer *Buffer) error

	// CloseWrite half-closes the write direction. Idempotent: a second
	// call returns nil.
	CloseWrite(ctx context.Context) error

	// Abort tears down both directions immediately. Idempotent: calling
	// it on an already-terminated flow is a no-op returning nil.
	Abort() error
}
