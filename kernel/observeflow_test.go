// SPDX-License-Identifier: GPL-3.0-or-later

package kernel

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytflowcore/ytflowcore/flow"
)

func recordNames(records []slog.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Message
	}
	return out
}

func countOccurrences(names []string, name string) int {
	n := 0
	for _, v := range names {
		if v == name {
			n++
		}
	}
	return n
}

func attrString(r slog.Record, key string) (string, bool) {
	var val string
	var found bool
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			val = a.Value.String()
			found = true
			return false
		}
		return true
	})
	return val, found
}

func TestObserveFlowLogsReceiveAndTransmit(t *testing.T) {
	logger, records := newCapturingLogger()
	cfg := NewConfig()
	cfg.Logger = logger
	op := NewObserveFlowFunc(cfg)

	inner := &stubStreamFlow{
		ReceiveFunc: func(ctx context.Context) (*flow.Buffer, error) {
			return flow.NewBuffer([]byte("hello")), nil
		},
		TransmitFunc: func(ctx context.Context, buf *flow.Buffer) error {
			return nil
		},
	}

	fctx := flow.NewContext(context.Background(), flow.NewDestinationHost("example.com", 443), nil)
	observed := op.Wrap(fctx, "tcp", inner)

	_, err := observed.Receive(context.Background())
	require.NoError(t, err)

	err = observed.Transmit(context.Background(), flow.NewBuffer([]byte("world")))
	require.NoError(t, err)

	names := recordNames(*records)
	assert.Contains(t, names, "receiveStart")
	assert.Contains(t, names, "receiveDone")
	assert.Contains(t, names, "transmitStart")
	assert.Contains(t, names, "transmitDone")
}

func TestObserveFlowAbortIsOnceOnly(t *testing.T) {
	logger, records := newCapturingLogger()
	cfg := NewConfig()
	cfg.Logger = logger
	op := NewObserveFlowFunc(cfg)

	var aborts int
	inner := &stubStreamFlow{AbortFunc: func() error {
		aborts++
		return nil
	}}

	fctx := flow.NewContext(context.Background(), flow.NewDestinationHost("example.com", 443), nil)
	observed := op.Wrap(fctx, "tcp", inner)

	require.NoError(t, observed.Abort())
	require.NoError(t, observed.Abort())
	assert.Equal(t, 1, aborts)

	names := recordNames(*records)
	assert.Equal(t, 1, countOccurrences(names, "abortStart"))
}

func TestObserveFlowClassifiesErrors(t *testing.T) {
	logger, records := newCapturingLogger()
	cfg := NewConfig()
	cfg.Logger = logger
	cfg.ErrClassifier = flow.ErrClassifierFunc(func(err error) string {
		if err != nil {
			return "BOOM"
		}
		return ""
	})
	op := NewObserveFlowFunc(cfg)

	inner := &stubStreamFlow{TransmitFunc: func(ctx context.Context, buf *flow.Buffer) error {
		return errors.New("broken pipe")
	}}
	fctx := flow.NewContext(context.Background(), flow.NewDestinationHost("example.com", 443), nil)
	observed := op.Wrap(fctx, "tcp", inner)

	err := observed.Transmit(context.Background(), flow.NewBuffer(nil))
	assert.Error(t, err)

	var errClass string
	for _, r := range *records {
		if r.Message != "transmitDone" {
			continue
		}
		errClass, _ = attrString(r, "errClass")
	}
	assert.Equal(t, "BOOM", errClass)
}
