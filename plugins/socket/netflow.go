//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop observeconn.go (wrapper-owns-resource
// idiom), generalized from a transparent net.Conn passthrough into a full
// [flow.StreamFlow] adapter over net.Conn.
//

package socket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ytflowcore/ytflowcore/errclass"
	"github.com/ytflowcore/ytflowcore/flow"
	"github.com/ytflowcore/ytflowcore/kernel"
)

// defaultReadSize is the buffer size requested for each receive when no
// caller-supplied hint is available (the convenience Receive method never
// has one).
const defaultReadSize = 32 * 1024

// errUnknownTicket is returned by CommitReceive when ticket does not match
// any outstanding reservation — either it was never issued by this flow,
// or it was already fulfilled.
var errUnknownTicket = errors.New("socket: commit for an unknown or already-fulfilled ticket")

type receiveResult struct {
	buf *flow.Buffer
	err error
}

// netConnFlow adapts a net.Conn into a [flow.StreamFlow], translating
// Read/Write/Close into Receive/Transmit/Abort and honoring ctx deadlines
// via SetReadDeadline/SetWriteDeadline.
//
// RequestReceive/CommitReceive are genuinely two-phase: RequestReceive
// reserves a buffer (from pool, if one is wired) sized to hintSize and
// starts an asynchronous read into it; the read's own goroutine delivers
// the result via CommitReceive once it completes, exactly the zero-copy
// split spec.md §4.1 describes. Receive composes the two for callers that
// don't need to separate reservation from fulfillment.
type netConnFlow struct {
	conn      netConn
	pool      *kernel.BufferPool
	abortOnce sync.Once

	mu      sync.Mutex
	pending map[flow.ReceiveTicket]chan receiveResult
}

// netConn is the subset of net.Conn this adapter needs, so tests can supply
// a fake without standing up a real listener.
type netConn interface {
	Read(b []byte) (int, error)
	Write(b []byte) (int, error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

func newNetConnFlow(conn netConn) *netConnFlow {
	return &netConnFlow{conn: conn, pending: make(map[flow.ReceiveTicket]chan receiveResult)}
}

// newNetConnFlowWithPool adapts conn exactly as [newNetConnFlow] does, but
// draws receive buffers from pool instead of allocating a fresh slice per
// read, grounding spec.md §4.4's buffer pool in a real accepted connection.
func newNetConnFlowWithPool(conn netConn, pool *kernel.BufferPool) *netConnFlow {
	f := newNetConnFlow(conn)
	f.pool = pool
	return f
}

// RequestReceive reserves a buffer sized to hintSize and starts reading
// into it in the background; the result reaches the eventual [Receive] (or
// whichever goroutine waits on the ticket) via CommitReceive.
func (f *netConnFlow) RequestReceive(ctx context.Context, hintSize int) (flow.ReceiveTicket, error) {
	ticket, _ := f.requestReceive(ctx, hintSize)
	return ticket, nil
}

func (f *netConnFlow) requestReceive(ctx context.Context, hintSize int) (flow.ReceiveTicket, chan receiveResult) {
	if hintSize <= 0 {
		hintSize = defaultReadSize
	}
	ticket := flow.NewReceiveTicket(hintSize)
	ch := make(chan receiveResult, 1)

	f.mu.Lock()
	f.pending[ticket] = ch
	f.mu.Unlock()

	go f.fulfill(ctx, ticket, hintSize)
	return ticket, ch
}

// fulfill performs the actual read reserved by RequestReceive for ticket
// and delivers its outcome: a successful read through CommitReceive (the
// same path an external producer would use), a terminal error delivered
// directly since CommitReceive's signature has no room for one.
func (f *netConnFlow) fulfill(ctx context.Context, ticket flow.ReceiveTicket, hintSize int) {
	if err := f.applyDeadline(f.conn.SetReadDeadline, ctx); err != nil {
		f.deliverErr(ticket, err)
		return
	}

	buf := f.allocate(hintSize)
	reserved := buf.Tailroom()
	region := buf.Grow(reserved)
	n, err := f.conn.Read(region)
	buf.Shrink(reserved - n)
	if err != nil {
		buf.Release()
		f.deliverErr(ticket, classifyErr(ctx, err))
		return
	}

	if err := f.CommitReceive(ticket, buf); err != nil {
		buf.Release()
	}
}

func (f *netConnFlow) allocate(n int) *flow.Buffer {
	if f.pool != nil {
		return f.pool.Get(n)
	}
	return flow.NewPooledBuffer(make([]byte, n), 0, nil)
}

// CommitReceive implements [flow.StreamFlow]: it delivers buffer to
// ticket's waiter. Every call this package makes to its own RequestReceive
// is fulfilled this way; an external producer handed this flow's ticket
// could call it too.
func (f *netConnFlow) CommitReceive(ticket flow.ReceiveTicket, buffer *flow.Buffer) error {
	f.mu.Lock()
	ch, ok := f.pending[ticket]
	if ok {
		delete(f.pending, ticket)
	}
	f.mu.Unlock()

	if !ok {
		return errUnknownTicket
	}
	ch <- receiveResult{buf: buffer}
	return nil
}

func (f *netConnFlow) deliverErr(ticket flow.ReceiveTicket, err error) {
	f.mu.Lock()
	ch, ok := f.pending[ticket]
	if ok {
		delete(f.pending, ticket)
	}
	f.mu.Unlock()
	if ok {
		ch <- receiveResult{err: err}
	}
}

// Receive composes RequestReceive with waiting for its commit, for callers
// that don't need to separate reservation from fulfillment.
func (f *netConnFlow) Receive(ctx context.Context) (*flow.Buffer, error) {
	_, ch := f.requestReceive(ctx, defaultReadSize)

	select {
	case res := <-ch:
		return res.buf, res.err
	case <-ctx.Done():
		// The background read may still complete after we give up on
		// it; drain its eventual result so a delivered buffer isn't
		// leaked out of the pool.
		go func() {
			if res := <-ch; res.buf != nil {
				res.buf.Release()
			}
		}()
		return nil, flow.ErrCancelled
	}
}

func (f *netConnFlow) Transmit(ctx context.Context, buffer *flow.Buffer) error {
	defer buffer.Release()
	if err := f.applyDeadline(f.conn.SetWriteDeadline, ctx); err != nil {
		return err
	}
	if _, err := f.conn.Write(buffer.Bytes()); err != nil {
		return classifyErr(ctx, err)
	}
	return nil
}

func (f *netConnFlow) CloseWrite(ctx context.Context) error {
	if cw, ok := f.conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return nil
}

func (f *netConnFlow) Abort() error {
	var err error
	f.abortOnce.Do(func() { err = f.conn.Close() })
	return err
}

func (f *netConnFlow) applyDeadline(set func(time.Time) error, ctx context.Context) error {
	if dl, ok := ctx.Deadline(); ok {
		return set(dl)
	}
	return set(time.Time{})
}

func classifyErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return flow.ErrCancelled
	}
	if isEOF(err) {
		return flow.ErrEOF
	}
	return &flow.IOError{Kind: errclass.New(err), Err: err}
}
