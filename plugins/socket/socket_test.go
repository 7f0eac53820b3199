// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytflowcore/ytflowcore/flow"
	"github.com/ytflowcore/ytflowcore/kernel"
	"github.com/ytflowcore/ytflowcore/plugin"
)

func mustEncode(t *testing.T, fields map[string]any) []byte {
	t.Helper()
	b, err := plugin.EncodeParam(fields)
	require.NoError(t, err)
	return b
}

func TestFactoryRequiresTargetDescriptor(t *testing.T) {
	f := NewFactory()
	param := mustEncode(t, map[string]any{"addr": "127.0.0.1:0"})
	_, err := f.Build("s1", 1, param, nil, nil)
	require.Error(t, err)
}

func TestFactoryRejectsNonStreamOutboundTarget(t *testing.T) {
	f := NewFactory()
	param := mustEncode(t, map[string]any{"addr": "127.0.0.1:0"})
	bound := map[string]plugin.AccessPoint{
		"target": {PluginName: "x", APName: "out", Kind: flow.StreamOutbound, Handle: "not-a-dialer"},
	}
	_, err := f.Build("s1", 1, param, bound, nil)
	require.Error(t, err)
}

// echoDialFunc returns a [plugin.StreamOutboundFunc] that hands back a fresh
// in-memory echo flow, so the listener's pump loop has something concrete to
// copy bytes through without depending on plugins/direct.
func echoDialFunc() (plugin.StreamOutboundFunc, chan flow.StreamFlow) {
	dialed := make(chan flow.StreamFlow, 8)
	return func(fctx *flow.Context, initial *flow.Buffer) (flow.StreamFlow, error) {
		a, b := net.Pipe()
		go func() {
			buf := make([]byte, 4096)
			for {
				n, err := a.Read(buf)
				if err != nil {
					return
				}
				if _, err := a.Write(buf[:n]); err != nil {
					return
				}
			}
		}()
		sf := newNetConnFlow(b)
		dialed <- sf
		return sf, nil
	}, dialed
}

func TestInstancePumpsBytesThroughTarget(t *testing.T) {
	f := NewFactory()
	param := mustEncode(t, map[string]any{"addr": "127.0.0.1:0"})

	dial, dialed := echoDialFunc()
	bound := map[string]plugin.AccessPoint{
		"target": {PluginName: "echo", APName: "out", Kind: flow.StreamOutbound, Handle: dial},
	}

	inst, err := f.Build("s1", 1, param, bound, nil)
	require.NoError(t, err)
	defer inst.Close()

	addr := inst.(*instance).listener.Addr().String()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case sf := <-dialed:
		require.NotNil(t, sf)
	case <-time.After(2 * time.Second):
		t.Fatal("target was never dialed")
	}

	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)
	buf := make([]byte, 4)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))
}

func TestInstanceCloseStopsAcceptLoop(t *testing.T) {
	f := NewFactory()
	param := mustEncode(t, map[string]any{"addr": "127.0.0.1:0"})
	dial, _ := echoDialFunc()
	bound := map[string]plugin.AccessPoint{
		"target": {PluginName: "echo", APName: "out", Kind: flow.StreamOutbound, Handle: dial},
	}
	inst, err := f.Build("s1", 1, param, bound, nil)
	require.NoError(t, err)

	addr := inst.(*instance).listener.Addr().String()
	require.NoError(t, inst.Close())

	_, err = net.DialTimeout("tcp", addr, 200*time.Millisecond)
	assert.Error(t, err)
}

// TestInstanceAdmitsRealConnectionsIntoKernel grounds the review fix for
// kernel reachability: an accepted connection must occupy a real slot in
// rt.Conns for its whole lifetime, not just in kernel's own unit tests.
func TestInstanceAdmitsRealConnectionsIntoKernel(t *testing.T) {
	f := NewFactory()
	param := mustEncode(t, map[string]any{"addr": "127.0.0.1:0"})

	dial, dialed := echoDialFunc()
	bound := map[string]plugin.AccessPoint{
		"target": {PluginName: "echo", APName: "out", Kind: flow.StreamOutbound, Handle: dial},
	}

	rt := kernel.New(kernel.NewConfig())
	inst, err := f.Build("s1", 1, param, bound, rt)
	require.NoError(t, err)
	defer inst.Close()

	addr := inst.(*instance).listener.Addr().String()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case <-dialed:
	case <-time.After(2 * time.Second):
		t.Fatal("target was never dialed")
	}

	require.Eventually(t, func() bool {
		return rt.Conns.Len() == 1
	}, 2*time.Second, 10*time.Millisecond, "accepted connection never reached the connection table")

	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)
	buf := make([]byte, 4)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))

	conn.Close()
	require.Eventually(t, func() bool {
		return rt.Conns.Len() == 0
	}, 2*time.Second, 10*time.Millisecond, "connection table never drained after the connection closed")
}

func TestDestinationFromAddr(t *testing.T) {
	addr, err := net.ResolveTCPAddr("tcp", "127.0.0.1:4242")
	require.NoError(t, err)
	dest := destinationFromAddr(addr)
	assert.True(t, dest.HasAddr())
	assert.Equal(t, uint16(4242), dest.Port)
}
