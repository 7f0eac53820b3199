//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package socket

import (
	"context"
	"errors"
	"io"
	"net"
	"net/netip"
	"strconv"
	"sync"

	"github.com/ytflowcore/ytflowcore/flow"
	"github.com/ytflowcore/ytflowcore/kernel"
	"github.com/ytflowcore/ytflowcore/plugin"
)

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}

// Factory builds "socket-inbound" instances: a TCP listener bound to the
// "addr" parameter field. Each accepted connection is paired with a
// [flow.StreamFlow] obtained through the "target" descriptor, and bytes are
// copied between the two in both directions until either side closes.
type Factory struct {
	plugin.BaseFactory
}

// NewFactory constructs the socket-inbound [Factory] for registration with
// a [plugin.Registry].
func NewFactory() *Factory {
	return &Factory{BaseFactory: plugin.BaseFactory{
		KindName: "socket-inbound",
		MinVer:   1,
		MaxVer:   1,
		Schema: &plugin.ParamSchema{
			Fields: []plugin.FieldSpec{
				{Name: "addr", Kind: plugin.FieldString, Required: true},
			},
		},
		Descs: []plugin.DescriptorSpec{
			{Slot: "target", Kind: flow.StreamOutbound},
		},
	}}
}

// Build implements [plugin.Factory]: it opens the listener immediately and
// starts its accept loop in a background goroutine, matching spec.md §4.3's
// "instantiate" step (a plugin is live as soon as it is built). When rt is
// non-nil, every accepted connection is admitted into rt's connection
// table and released on teardown, and its receive buffers come from rt's
// pool instead of being allocated fresh per read.
func (f *Factory) Build(name string, version uint16, param []byte, bound map[string]plugin.AccessPoint, rt *kernel.Runtime) (plugin.Instance, error) {
	fields, err := f.Schema.Decode(param)
	if err != nil {
		return nil, &plugin.FactoryError{PluginName: name, Reason: "invalid parameters", Err: err}
	}
	addr, _ := fields["addr"].(string)

	targetAP, ok := bound["target"]
	if !ok {
		return nil, &plugin.FactoryError{PluginName: name, Reason: "descriptor \"target\" not bound"}
	}
	dial, ok := plugin.AsStreamOutbound(targetAP)
	if !ok {
		return nil, &plugin.FactoryError{PluginName: name, Reason: "descriptor \"target\" is not a StreamOutbound"}
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &plugin.FactoryError{PluginName: name, Reason: "listen failed", Err: err}
	}

	inst := &instance{name: name, listener: ln, dial: dial, rt: rt, done: make(chan struct{})}
	inst.wg.Add(1)
	go inst.acceptLoop()
	return inst, nil
}

type instance struct {
	name     string
	listener net.Listener
	dial     plugin.StreamOutboundFunc
	rt       *kernel.Runtime

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func (i *instance) acceptLoop() {
	defer i.wg.Done()
	for {
		conn, err := i.listener.Accept()
		if err != nil {
			select {
			case <-i.done:
				return
			default:
				return
			}
		}
		i.wg.Add(1)
		go i.handle(conn)
	}
}

func (i *instance) handle(conn net.Conn) {
	defer i.wg.Done()
	remote := destinationFromAddr(conn.RemoteAddr())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fctx := flow.NewContext(ctx, remote, nil)
	if la := conn.LocalAddr(); la != nil {
		fctx.LocalAddr = la.String()
	}

	if i.rt != nil {
		err := i.rt.Admit(kernel.ConnEntry{FlowID: fctx.CorrelationID, Owner: i.name, Cancel: cancel})
		if err != nil {
			conn.Close()
			return
		}
		defer i.rt.Release(fctx.CorrelationID)
	}

	var client flow.StreamFlow = i.newClientFlow(conn)
	target, err := i.dial(fctx, nil)
	if err != nil {
		client.Abort()
		return
	}

	if i.rt != nil {
		client = i.rt.Observe.Wrap(fctx, "tcp", client)
		target = i.rt.Observe.Wrap(fctx, "tcp", target)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); defer cancel(); _ = pump(fctx.Ctx(), client, target) }()
	go func() { defer wg.Done(); defer cancel(); _ = pump(fctx.Ctx(), target, client) }()
	wg.Wait()

	client.Abort()
	target.Abort()
}

// newClientFlow adapts conn into a [flow.StreamFlow], drawing receive
// buffers from the kernel's pool when one is wired.
func (i *instance) newClientFlow(conn net.Conn) *netConnFlow {
	if i.rt != nil {
		return newNetConnFlowWithPool(conn, i.rt.Buffers)
	}
	return newNetConnFlow(conn)
}

// pump copies src's bytes into dst until src reaches EOF (in which case dst
// is half-closed rather than aborted, letting dst's peer observe a clean
// close) or either side errors.
func pump(ctx context.Context, src, dst flow.StreamFlow) error {
	for {
		buf, err := src.Receive(ctx)
		if err != nil {
			if errors.Is(err, flow.ErrEOF) {
				return dst.CloseWrite(ctx)
			}
			return err
		}
		if err := dst.Transmit(ctx, buf); err != nil {
			return err
		}
	}
}

// ListenAddr returns the listener's bound address (e.g. useful when the
// profile requests the ephemeral "127.0.0.1:0").
func (i *instance) ListenAddr() string {
	return i.listener.Addr().String()
}

func (i *instance) AccessPoints() []plugin.AccessPoint { return nil }

func (i *instance) BindLate(bound map[string]plugin.AccessPoint) error { return nil }

// Close stops the accept loop and closes the listener, then waits for every
// in-flight handler goroutine the instance spawned to return.
func (i *instance) Close() error {
	var err error
	i.closeOnce.Do(func() {
		close(i.done)
		err = i.listener.Close()
	})
	i.wg.Wait()
	return err
}

// destinationFromAddr converts a net.Addr (as returned by net.Conn's
// RemoteAddr) into a [flow.Destination]; falls back to a zero Destination
// if the address cannot be parsed as host:port.
func destinationFromAddr(addr net.Addr) flow.Destination {
	if addr == nil {
		return flow.Destination{}
	}
	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return flow.Destination{}
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return flow.Destination{}
	}
	if ip, err := netip.ParseAddr(host); err == nil {
		return flow.NewDestinationAddr(ip, uint16(port))
	}
	return flow.NewDestinationHost(host, uint16(port))
}
