//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop helpers_test.go's capturing-logger idea,
// reimplemented in-module over stdlib log/slog (the teacher's slogstub and
// netstub packages are private to its own module and not independently
// fetchable — see DESIGN.md).
//

package kernel

import (
	"context"
	"log/slog"

	"github.com/ytflowcore/ytflowcore/flow"
)

// funcHandler adapts plain functions to [slog.Handler], for capturing
// records emitted during a test without standing up a real sink.
type funcHandler struct {
	enabledFunc func(context.Context, slog.Level) bool
	handleFunc  func(context.Context, slog.Record) error
}

var _ slog.Handler = &funcHandler{}

func (h *funcHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.enabledFunc(ctx, level)
}

func (h *funcHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.handleFunc(ctx, record)
}

func (h *funcHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *funcHandler) WithGroup(name string) slog.Handler       { return h }

// newCapturingLogger returns a [*slog.Logger] that captures every record
// into the returned slice, for asserting on observability events emitted
// during a test.
func newCapturingLogger() (*slog.Logger, *[]slog.Record) {
	var records []slog.Record
	handler := &funcHandler{
		enabledFunc: func(context.Context, slog.Level) bool { return true },
		handleFunc: func(_ context.Context, record slog.Record) error {
			records = append(records, record)
			return nil
		},
	}
	return slog.New(handler), &records
}

// stubStreamFlow is a hand-rolled func-field double for [flow.StreamFlow],
// used instead of a mocking framework to keep every kernel test explicit
// about exactly which method is exercised.
type stubStreamFlow struct {
	ReceiveFunc    func(ctx context.Context) (*flow.Buffer, error)
	TransmitFunc   func(ctx context.Context, buf *flow.Buffer) error
	CloseWriteFunc func(ctx context.Context) error
	AbortFunc      func() error
}

var _ flow.StreamFlow = &stubStreamFlow{}

func (s *stubStreamFlow) RequestReceive(ctx context.Context, hintSize int) (flow.ReceiveTicket, error) {
	return flow.ReceiveTicket{}, nil
}

func (s *stubStreamFlow) CommitReceive(ticket flow.ReceiveTicket, buffer *flow.Buffer) error {
	return nil
}

func (s *stubStreamFlow) Receive(ctx context.Context) (*flow.Buffer, error) {
	if s.ReceiveFunc != nil {
		return s.ReceiveFunc(ctx)
	}
	return nil, nil
}

func (s *stubStreamFlow) Transmit(ctx context.Context, buffer *flow.Buffer) error {
	if s.TransmitFunc != nil {
		return s.TransmitFunc(ctx, buffer)
	}
	return nil
}

func (s *stubStreamFlow) CloseWrite(ctx context.Context) error {
	if s.CloseWriteFunc != nil {
		return s.CloseWriteFunc(ctx)
	}
	return nil
}

func (s *stubStreamFlow) Abort() error {
	if s.AbortFunc != nil {
		return s.AbortFunc()
	}
	return nil
}
