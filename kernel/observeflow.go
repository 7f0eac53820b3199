//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop observeconn.go (ObserveConnFunc):
// Read/Write/Close become Receive/Transmit/Abort, the once-safe close
// semantics carry over directly, and the same t/t0/err/errClass/localAddr/
// remoteAddr/protocol field vocabulary is kept, extended with flowId.
//

package kernel

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ytflowcore/ytflowcore/flow"
)

// ObserveFlowFunc wraps a [flow.StreamFlow] to log receive, transmit,
// half-close, and abort: receive and transmit at Debug level as per-I/O
// events, half-close and abort at Info level as lifecycle events, per the
// kernel's logging convention (see [SLogger]).
//
// All fields are safe to modify after construction but before first use.
// Fields must not be mutated concurrently with calls to [ObserveFlowFunc.Wrap].
type ObserveFlowFunc struct {
	ErrClassifier flow.ErrClassifier
	Logger        SLogger
	TimeNow       func() time.Time
}

// NewObserveFlowFunc returns an [*ObserveFlowFunc] sourcing its classifier,
// logger, and clock from cfg.
func NewObserveFlowFunc(cfg *Config) *ObserveFlowFunc {
	return &ObserveFlowFunc{
		ErrClassifier: cfg.ErrClassifier,
		Logger:        cfg.Logger,
		TimeNow:       cfg.TimeNow,
	}
}

// Wrap returns a [flow.StreamFlow] that logs every operation against sf,
// tagging each record with fctx's correlation id and the given protocol
// name (e.g. "tcp", "tls", "socks5").
func (o *ObserveFlowFunc) Wrap(fctx *flow.Context, protocol string, sf flow.StreamFlow) flow.StreamFlow {
	return &observedFlow{
		StreamFlow: sf,
		op:         o,
		fctx:       fctx,
		protocol:   protocol,
	}
}

type observedFlow struct {
	flow.StreamFlow
	abortOnce sync.Once
	op        *ObserveFlowFunc
	fctx      *flow.Context
	protocol  string
}

func (f *observedFlow) attrs(extra ...slog.Attr) []any {
	base := []any{
		slog.String("flowId", f.fctx.CorrelationID),
		slog.String("localAddr", f.fctx.LocalAddr),
		slog.String("remoteAddr", f.fctx.RemoteAddr.String()),
		slog.String("protocol", f.protocol),
	}
	for _, a := range extra {
		base = append(base, a)
	}
	return base
}

// Receive implements [flow.StreamFlow], logging receiveStart/receiveDone.
func (f *observedFlow) Receive(ctx context.Context) (*flow.Buffer, error) {
	t0 := f.op.TimeNow()
	f.op.Logger.Debug("receiveStart", f.attrs(slog.Time("t", t0))...)

	buf, err := f.StreamFlow.Receive(ctx)

	n := 0
	if buf != nil {
		n = buf.Len()
	}
	f.op.Logger.Debug("receiveDone", f.attrs(
		slog.Int("ioBytesCount", n),
		slog.Any("err", err),
		slog.String("errClass", f.op.ErrClassifier.Classify(err)),
		slog.Time("t0", t0),
		slog.Time("t", f.op.TimeNow()),
	)...)
	return buf, err
}

// Transmit implements [flow.StreamFlow], logging transmitStart/transmitDone.
func (f *observedFlow) Transmit(ctx context.Context, buffer *flow.Buffer) error {
	t0 := f.op.TimeNow()
	n := 0
	if buffer != nil {
		n = buffer.Len()
	}
	f.op.Logger.Debug("transmitStart", f.attrs(slog.Int("ioBufferSize", n), slog.Time("t", t0))...)

	err := f.StreamFlow.Transmit(ctx, buffer)

	f.op.Logger.Debug("transmitDone", f.attrs(
		slog.Any("err", err),
		slog.String("errClass", f.op.ErrClassifier.Classify(err)),
		slog.Time("t0", t0),
		slog.Time("t", f.op.TimeNow()),
	)...)
	return err
}

// CloseWrite implements [flow.StreamFlow], logging closeWriteStart/closeWriteDone.
func (f *observedFlow) CloseWrite(ctx context.Context) error {
	t0 := f.op.TimeNow()
	f.op.Logger.Info("closeWriteStart", f.attrs(slog.Time("t", t0))...)

	err := f.StreamFlow.CloseWrite(ctx)

	f.op.Logger.Info("closeWriteDone", f.attrs(
		slog.Any("err", err),
		slog.String("errClass", f.op.ErrClassifier.Classify(err)),
		slog.Time("t0", t0),
		slog.Time("t", f.op.TimeNow()),
	)...)
	return err
}

// Abort implements [flow.StreamFlow]. Subsequent calls are no-ops, matching
// the once-semantics nop's observedConn.Close establishes for net.Conn.
func (f *observedFlow) Abort() (err error) {
	f.abortOnce.Do(func() {
		t0 := f.op.TimeNow()
		f.op.Logger.Info("abortStart", f.attrs(slog.Time("t", t0))...)

		err = f.StreamFlow.Abort()

		f.op.Logger.Info("abortDone", f.attrs(
			slog.Any("err", err),
			slog.String("errClass", f.op.ErrClassifier.Classify(err)),
			slog.Time("t0", t0),
			slog.Time("t", f.op.TimeNow()),
		)...)
	})
	return
}
