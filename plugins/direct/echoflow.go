//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop's Func[A,B] suspension contract, generalized
// from a single request/response call into a StreamFlow that loops whatever
// it receives on Transmit back out through Receive.
//

package direct

import (
	"context"
	"sync"

	"github.com/ytflowcore/ytflowcore/flow"
)

// echoFlow is a stub [flow.StreamFlow] that returns every byte it is handed
// via Transmit back out through Receive, in order — the "direct-outbound"
// plugin's entire behavior for spec.md §8 scenario 1.
type echoFlow struct {
	data           chan []byte
	closed         chan struct{}
	closeWriteOnce sync.Once
	abortOnce      sync.Once
}

func newEchoFlow() *echoFlow {
	return &echoFlow{
		data:   make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

// RequestReceive mints a ticket but fulfills nothing: echoFlow's producer
// is always its own Transmit method feeding the internal data channel, so
// Receive already suspends correctly without a separate commit step.
func (f *echoFlow) RequestReceive(ctx context.Context, hintSize int) (flow.ReceiveTicket, error) {
	return flow.NewReceiveTicket(hintSize), nil
}

func (f *echoFlow) CommitReceive(ticket flow.ReceiveTicket, buffer *flow.Buffer) error {
	return errStreamUsesReceive
}

func (f *echoFlow) Receive(ctx context.Context) (*flow.Buffer, error) {
	select {
	case b, ok := <-f.data:
		if !ok {
			return nil, flow.ErrEOF
		}
		return flow.NewBuffer(b), nil
	case <-f.closed:
		return nil, flow.ErrReset
	case <-ctx.Done():
		return nil, flow.ErrCancelled
	}
}

func (f *echoFlow) Transmit(ctx context.Context, buffer *flow.Buffer) error {
	payload := append([]byte(nil), buffer.Bytes()...)
	buffer.Release()
	select {
	case f.data <- payload:
		return nil
	case <-f.closed:
		return flow.ErrClosed
	case <-ctx.Done():
		return flow.ErrCancelled
	}
}

func (f *echoFlow) CloseWrite(ctx context.Context) error {
	f.closeWriteOnce.Do(func() { close(f.data) })
	return nil
}

func (f *echoFlow) Abort() error {
	f.abortOnce.Do(func() { close(f.closed) })
	return nil
}
