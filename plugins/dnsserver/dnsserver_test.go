// SPDX-License-Identifier: GPL-3.0-or-later

package dnsserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytflowcore/ytflowcore/flow"
	"github.com/ytflowcore/ytflowcore/kernel"
	"github.com/ytflowcore/ytflowcore/plugin"
)

// fakeDatagramSession is a hand-rolled [flow.DatagramSession] double
// feeding one queued inbound datagram, then an error to end the loop.
type fakeDatagramSession struct {
	inbox  chan *flow.Buffer
	peer   flow.Destination
	sent   []*flow.Buffer
	closed bool
}

func newFakeDatagramSession(peer flow.Destination) *fakeDatagramSession {
	return &fakeDatagramSession{inbox: make(chan *flow.Buffer, 4), peer: peer}
}

func (s *fakeDatagramSession) RecvFrom(ctx context.Context) (flow.Destination, *flow.Buffer, error) {
	buf, ok := <-s.inbox
	if !ok {
		return flow.Destination{}, nil, flow.ErrClosed
	}
	return s.peer, buf, nil
}

func (s *fakeDatagramSession) SendTo(ctx context.Context, peer flow.Destination, buffer *flow.Buffer) error {
	s.sent = append(s.sent, buffer)
	return nil
}

func (s *fakeDatagramSession) Close() error {
	if !s.closed {
		s.closed = true
		close(s.inbox)
	}
	return nil
}

func buildInstance(t *testing.T, records map[string]any) plugin.Instance {
	t.Helper()
	f := NewFactory()
	param, err := plugin.EncodeParam(records)
	require.NoError(t, err)
	inst, err := f.Build("d1", 1, param, nil, nil)
	require.NoError(t, err)
	return inst
}

func TestFactoryExposesDatagramInbound(t *testing.T) {
	f := NewFactory()
	aps := f.ExposedAccessPoints()
	require.Len(t, aps, 1)
	assert.Equal(t, flow.DatagramInbound, aps[0].Kind)
}

func TestServeAnswersConfiguredRecord(t *testing.T) {
	inst := buildInstance(t, map[string]any{
		"record_count":    int64(1),
		"record_0_name":   "example.com.",
		"record_0_addr":   "203.0.113.9",
	})
	sink, ok := plugin.AsDatagramInbound(inst.AccessPoints()[0])
	require.True(t, ok)

	ds := newFakeDatagramSession(flow.NewDestinationHost("client", 53))

	query := new(dns.Msg)
	query.SetQuestion("example.com.", dns.TypeA)
	packed, err := query.Pack()
	require.NoError(t, err)
	ds.inbox <- flow.NewBuffer(packed)
	ds.Close()

	fctx := flow.NewContext(context.Background(), flow.Destination{}, nil)
	require.NoError(t, sink(fctx, ds))

	require.Len(t, ds.sent, 1)
	resp := new(dns.Msg)
	require.NoError(t, resp.Unpack(ds.sent[0].Bytes()))
	require.Len(t, resp.Answer, 1)
	a, ok := resp.Answer[0].(*dns.A)
	require.True(t, ok)
	assert.Equal(t, "203.0.113.9", a.A.String())
}

// TestInstanceServesRealUDPQueries grounds the review fix for a real entry
// point: when "addr" is set, the instance must open a real UDP listener
// feeding a real [flow.DatagramSession], not only the test's
// fakeDatagramSession.
func TestInstanceServesRealUDPQueries(t *testing.T) {
	f := NewFactory()
	param, err := plugin.EncodeParam(map[string]any{
		"addr":          "127.0.0.1:0",
		"record_count":  int64(1),
		"record_0_name": "example.com.",
		"record_0_addr": "203.0.113.9",
	})
	require.NoError(t, err)

	rt := kernel.New(kernel.NewConfig())
	inst, err := f.Build("d1", 1, param, nil, rt)
	require.NoError(t, err)
	defer inst.Close()

	addr := inst.(*instance).ListenAddr()
	require.NotEmpty(t, addr)

	conn, err := net.Dial("udp", addr)
	require.NoError(t, err)
	defer conn.Close()

	query := new(dns.Msg)
	query.SetQuestion("example.com.", dns.TypeA)
	packed, err := query.Pack()
	require.NoError(t, err)

	_, err = conn.Write(packed)
	require.NoError(t, err)

	buf := make([]byte, 512)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, err := conn.Read(buf)
	require.NoError(t, err)

	resp := new(dns.Msg)
	require.NoError(t, resp.Unpack(buf[:n]))
	require.Len(t, resp.Answer, 1)
	a, ok := resp.Answer[0].(*dns.A)
	require.True(t, ok)
	assert.Equal(t, "203.0.113.9", a.A.String())
}

func TestServeReturnsNXDOMAINForUnknownName(t *testing.T) {
	inst := buildInstance(t, map[string]any{})
	sink, _ := plugin.AsDatagramInbound(inst.AccessPoints()[0])
	ds := newFakeDatagramSession(flow.NewDestinationHost("client", 53))

	query := new(dns.Msg)
	query.SetQuestion("nope.test.", dns.TypeA)
	packed, err := query.Pack()
	require.NoError(t, err)
	ds.inbox <- flow.NewBuffer(packed)
	ds.Close()

	fctx := flow.NewContext(context.Background(), flow.Destination{}, nil)
	require.NoError(t, sink(fctx, ds))

	require.Len(t, ds.sent, 1)
	resp := new(dns.Msg)
	require.NoError(t, resp.Unpack(ds.sent[0].Bytes()))
	assert.Equal(t, dns.RcodeNameError, resp.Rcode)
}
