//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package dnsserver

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"strings"
	"sync"

	"github.com/miekg/dns"

	"github.com/ytflowcore/ytflowcore/flow"
	"github.com/ytflowcore/ytflowcore/kernel"
	"github.com/ytflowcore/ytflowcore/plugin"
)

// Factory builds "dns-server" instances: a single DatagramInbound access
// point named "in" that answers queries from a static, decoded name table.
// When the "addr" parameter is set, the instance also opens a real UDP
// listener and drives its own sink from live traffic rather than relying
// solely on whatever feeds the access point by hand.
type Factory struct {
	plugin.BaseFactory
}

// NewFactory constructs the dns-server [Factory] for registration with a
// [plugin.Registry].
func NewFactory() *Factory {
	return &Factory{BaseFactory: plugin.BaseFactory{
		KindName: "dns-server",
		MinVer:   1,
		MaxVer:   1,
		Schema: &plugin.ParamSchema{
			Fields: []plugin.FieldSpec{
				{Name: "record_count", Kind: plugin.FieldInt, Required: false},
				{Name: "addr", Kind: plugin.FieldString, Required: false},
			},
		},
		APs: []plugin.AccessPointSpec{{Name: "in", Kind: flow.DatagramInbound}},
	}}
}

func (f *Factory) Verify(version uint16, param []byte) error {
	if err := f.BaseFactory.Verify(version, param); err != nil {
		return err
	}
	fields, err := f.Schema.Decode(param)
	if err != nil {
		return err
	}
	_, err = parseRecords(fields)
	return err
}

// Build implements [plugin.Factory]. If param sets "addr", the instance
// opens a UDP listener immediately and starts serving it in the
// background, mirroring how plugins/socket's Build makes its listener live
// as soon as the plugin is built.
func (f *Factory) Build(name string, version uint16, param []byte, bound map[string]plugin.AccessPoint, rt *kernel.Runtime) (plugin.Instance, error) {
	fields, err := f.Schema.Decode(param)
	if err != nil {
		return nil, &plugin.FactoryError{PluginName: name, Reason: "invalid parameters", Err: err}
	}
	records, err := parseRecords(fields)
	if err != nil {
		return nil, &plugin.FactoryError{PluginName: name, Reason: "invalid records", Err: err}
	}

	inst := &instance{name: name, records: records}

	addr, _ := fields["addr"].(string)
	if addr != "" {
		pc, err := net.ListenPacket("udp", addr)
		if err != nil {
			return nil, &plugin.FactoryError{PluginName: name, Reason: "listen failed", Err: err}
		}
		var pool *kernel.BufferPool
		if rt != nil {
			pool = rt.Buffers
		}
		inst.session = newUDPSession(pc, pool)
		inst.wg.Add(1)
		go func() {
			defer inst.wg.Done()
			fctx := flow.NewContext(context.Background(), flow.Destination{}, nil)
			_ = inst.serve(fctx, inst.session)
		}()
	}

	return inst, nil
}

type instance struct {
	name    string
	records map[string]netip.Addr

	session *udpSession
	wg      sync.WaitGroup
}

func (i *instance) AccessPoints() []plugin.AccessPoint {
	sink := plugin.DatagramInboundSink(i.serve)
	return []plugin.AccessPoint{{PluginName: i.name, APName: "in", Kind: flow.DatagramInbound, Handle: sink}}
}

func (i *instance) BindLate(bound map[string]plugin.AccessPoint) error { return nil }

// ListenAddr returns the bound UDP address, when the instance opened a real
// listener; empty otherwise. Useful for tests that bind to "127.0.0.1:0".
func (i *instance) ListenAddr() string {
	if i.session == nil {
		return ""
	}
	return i.session.pc.LocalAddr().String()
}

// Close stops the background serve loop (if one was started for a real
// listener) and waits for it to return.
func (i *instance) Close() error {
	if i.session == nil {
		return nil
	}
	err := i.session.Close()
	i.wg.Wait()
	return err
}

// serve drains ds until it errors (peer gone, session aborted, context
// cancelled), answering every well-formed DNS query it receives.
func (i *instance) serve(fctx *flow.Context, ds flow.DatagramSession) error {
	defer ds.Close()
	for {
		peer, buf, err := ds.RecvFrom(fctx.Ctx())
		if err != nil {
			if errors.Is(err, flow.ErrClosed) || errors.Is(err, flow.ErrCancelled) {
				return nil
			}
			return err
		}

		resp := i.answer(buf.Bytes())
		buf.Release()
		if resp == nil {
			continue
		}

		if err := ds.SendTo(fctx.Ctx(), peer, flow.NewBuffer(resp)); err != nil {
			if errors.Is(err, flow.ErrWouldBlock) {
				continue
			}
			return err
		}
	}
}

// answer parses raw as a DNS query and builds a reply from the static
// record table, returning nil if raw does not parse as a DNS message.
func (i *instance) answer(raw []byte) []byte {
	req := new(dns.Msg)
	if err := req.Unpack(raw); err != nil {
		return nil
	}

	resp := new(dns.Msg)
	resp.SetReply(req)

	for _, q := range req.Question {
		name := strings.ToLower(strings.TrimSuffix(q.Name, "."))
		addr, ok := i.records[name]
		if !ok {
			continue
		}
		switch q.Qtype {
		case dns.TypeA:
			if addr.Is4() {
				resp.Answer = append(resp.Answer, &dns.A{
					Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
					A:   net.IP(addr.AsSlice()),
				})
			}
		case dns.TypeAAAA:
			if addr.Is6() && !addr.Is4In6() {
				resp.Answer = append(resp.Answer, &dns.AAAA{
					Hdr:  dns.RR_Header{Name: q.Name, Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: 60},
					AAAA: net.IP(addr.AsSlice()),
				})
			}
		}
	}
	if len(resp.Answer) == 0 {
		resp.Rcode = dns.RcodeNameError
	}

	out, err := resp.Pack()
	if err != nil {
		return nil
	}
	return out
}
