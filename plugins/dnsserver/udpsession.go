//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: plugins/socket's net.Conn-to-StreamFlow adapter, here
// wrapping a net.PacketConn as a [flow.DatagramSession] instead.
//

package dnsserver

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/ytflowcore/ytflowcore/errclass"
	"github.com/ytflowcore/ytflowcore/flow"
	"github.com/ytflowcore/ytflowcore/kernel"
)

// defaultDatagramSize bounds each ReadFrom call; DNS-over-UDP messages are
// capped at 65535 bytes but in practice sit well under 4KiB.
const defaultDatagramSize = 4096

type datagramIn struct {
	peer flow.Destination
	buf  *flow.Buffer
}

// udpSession adapts a single shared net.PacketConn into a [flow.DatagramSession]:
// one background goroutine reads inbound datagrams, each tagged with its
// peer address, into a single channel, RecvFrom drains it, and SendTo
// writes straight back out, addressed per peer.
type udpSession struct {
	pc   net.PacketConn
	pool *kernel.BufferPool

	inbox     chan datagramIn
	closed    chan struct{}
	closeOnce sync.Once
	readDone  chan struct{}
}

func newUDPSession(pc net.PacketConn, pool *kernel.BufferPool) *udpSession {
	s := &udpSession{
		pc:       pc,
		pool:     pool,
		inbox:    make(chan datagramIn, 64),
		closed:   make(chan struct{}),
		readDone: make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *udpSession) allocate() *flow.Buffer {
	if s.pool != nil {
		return s.pool.Get(defaultDatagramSize)
	}
	return flow.NewPooledBuffer(make([]byte, defaultDatagramSize), 0, nil)
}

// readLoop feeds inbox until the underlying socket is closed, at which
// point ReadFrom fails and the loop exits.
func (s *udpSession) readLoop() {
	defer close(s.readDone)
	for {
		buf := s.allocate()
		reserved := buf.Tailroom()
		region := buf.Grow(reserved)
		n, addr, err := s.pc.ReadFrom(region)
		if err != nil {
			buf.Release()
			return
		}
		buf.Shrink(reserved - n)

		select {
		case s.inbox <- datagramIn{peer: destinationFromUDPAddr(addr), buf: buf}:
		case <-s.closed:
			buf.Release()
			return
		}
	}
}

// RecvFrom implements [flow.DatagramSession].
func (s *udpSession) RecvFrom(ctx context.Context) (flow.Destination, *flow.Buffer, error) {
	select {
	case d, ok := <-s.inbox:
		if !ok {
			return flow.Destination{}, nil, flow.ErrClosed
		}
		return d.peer, d.buf, nil
	case <-s.closed:
		return flow.Destination{}, nil, flow.ErrClosed
	case <-ctx.Done():
		return flow.Destination{}, nil, flow.ErrCancelled
	}
}

// SendTo implements [flow.DatagramSession]. The kernel socket itself
// provides the bounded queue spec.md §4.4 asks for; WriteTo either
// completes or fails outright, so there is no separate ErrWouldBlock path
// to simulate here.
func (s *udpSession) SendTo(ctx context.Context, peer flow.Destination, buffer *flow.Buffer) error {
	defer buffer.Release()
	if !peer.HasAddr() {
		return fmt.Errorf("dnsserver: SendTo requires a resolved peer address")
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = s.pc.SetWriteDeadline(dl)
	} else {
		_ = s.pc.SetWriteDeadline(time.Time{})
	}
	udpAddr := net.UDPAddrFromAddrPort(peer.AddrPort())
	if _, err := s.pc.WriteTo(buffer.Bytes(), udpAddr); err != nil {
		return &flow.IOError{Kind: errclass.New(err), Err: err}
	}
	return nil
}

// Close implements [flow.DatagramSession]. Idempotent.
func (s *udpSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		err = s.pc.Close()
	})
	<-s.readDone
	return err
}

func destinationFromUDPAddr(addr net.Addr) flow.Destination {
	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return flow.Destination{}
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return flow.Destination{}
	}
	var port uint16
	fmt.Sscanf(portStr, "%d", &port)
	return flow.NewDestinationAddr(ip, port)
}
