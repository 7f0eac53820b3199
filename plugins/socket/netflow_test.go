// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytflowcore/ytflowcore/flow"
)

func TestNetConnFlowTransmitAndReceive(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sf := newNetConnFlow(server)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go func() {
		_, _ = client.Write([]byte("ping"))
	}()

	buf, err := sf.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf.Bytes()))

	done := make(chan []byte, 1)
	go func() {
		b := make([]byte, 4)
		n, _ := client.Read(b)
		done <- b[:n]
	}()
	require.NoError(t, sf.Transmit(ctx, flow.NewBuffer([]byte("pong"))))
	assert.Equal(t, "pong", string(<-done))
}

func TestNetConnFlowAbortIsIdempotent(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	sf := newNetConnFlow(server)
	require.NoError(t, sf.Abort())
	require.NoError(t, sf.Abort())
}

func TestNetConnFlowReceiveEOFOnClose(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	sf := newNetConnFlow(server)
	require.NoError(t, client.Close())

	_, err := sf.Receive(context.Background())
	assert.Error(t, err)
}

func TestNetConnFlowCommitReceiveRejectsUnknownTicket(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sf := newNetConnFlow(server)
	err := sf.CommitReceive(flow.ReceiveTicket{}, flow.NewBuffer(nil))
	assert.ErrorIs(t, err, errUnknownTicket)
}

func TestNetConnFlowRequestReceiveReservesAMatchableTicket(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	sf := newNetConnFlow(server)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// RequestReceive's own fulfillment goroutine blocks on the pipe
	// since nothing has been written yet, so the ticket is still
	// outstanding: an external CommitReceive for it must be honored
	// exactly once.
	ticket, err := sf.RequestReceive(ctx, 16)
	require.NoError(t, err)

	require.NoError(t, sf.CommitReceive(ticket, flow.NewBuffer([]byte("hand delivered"))))
	assert.ErrorIs(t, sf.CommitReceive(ticket, flow.NewBuffer(nil)), errUnknownTicket)

	require.NoError(t, client.Close())
	require.NoError(t, server.Close())
}
