//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop dnsoverhttps.go Exchange (the request/parse
// exchange loop) and dnsexchange.go's structured logging fields, kept here
// even though full DNSExchangeLogContext reuse is not possible (this
// resolver dials through a plugin descriptor, not an owned *HTTPConn).
//

package resolverdoh

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/net/http2"

	"github.com/ytflowcore/ytflowcore/flow"
	"github.com/ytflowcore/ytflowcore/kernel"
	"github.com/ytflowcore/ytflowcore/plugin"
)

// Resolver implements [flow.Resolver] via DNS-over-HTTPS, dialing its
// transport through a StreamOutbound descriptor rather than net.Dial
// directly — any plugin chain (direct, a proxy, a censorship-resistant
// transport) can sit underneath it.
type Resolver struct {
	url    string
	dial   plugin.StreamOutboundFunc
	client *http.Client
	logger kernel.SLogger
	now    func() time.Time
}

// newResolver constructs a [*Resolver] posting DNS-over-HTTPS queries to
// url, dialing through dial.
func newResolver(url string, dial plugin.StreamOutboundFunc, logger kernel.SLogger, now func() time.Time) *Resolver {
	if logger == nil {
		logger = kernel.DefaultSLogger()
	}
	if now == nil {
		now = time.Now
	}
	transport := &http2.Transport{
		AllowHTTP: false,
		DialTLSContext: func(ctx context.Context, network, addr string, cfg *tls.Config) (net.Conn, error) {
			fctx := flow.NewContext(ctx, destinationFromAddr(addr), now)
			sf, err := dial(fctx, nil)
			if err != nil {
				return nil, fmt.Errorf("resolverdoh: dial: %w", err)
			}
			return newFlowConn(fctx, sf), nil
		},
	}
	return &Resolver{url: url, dial: dial, client: &http.Client{Transport: transport}, logger: logger, now: now}
}

// Close implements [plugin.Instance]-adjacent cleanup; http.Client has no
// explicit close, so this releases idle HTTP/2 connections instead.
func (r *Resolver) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

// ResolveV4 implements [flow.Resolver].
func (r *Resolver) ResolveV4(ctx context.Context, name string) ([]netip.Addr, error) {
	return r.resolve(ctx, name, dns.TypeA)
}

// ResolveV6 implements [flow.Resolver].
func (r *Resolver) ResolveV6(ctx context.Context, name string) ([]netip.Addr, error) {
	return r.resolve(ctx, name, dns.TypeAAAA)
}

// resolve performs the exchange, retrying exactly once on transport failure
// (e.g. a failed TLS handshake through the underlying descriptor). If the
// retry also fails, resolve returns an empty, error-free result rather than
// propagating the failure. An attempt whose dial fails creates no flowConn,
// so nothing is left open; a connection that dials successfully stays in
// the HTTP/2 client's pool until [Resolver.Close] releases idle connections.
func (r *Resolver) resolve(ctx context.Context, name string, qtype uint16) ([]netip.Addr, error) {
	addrs, err := r.exchangeOnce(ctx, name, qtype)
	if err == nil {
		return addrs, nil
	}
	r.logger.Info("resolverRetry", slog.String("name", name), slog.Any("err", err), slog.Time("t", r.now()))

	addrs, err = r.exchangeOnce(ctx, name, qtype)
	if err != nil {
		r.logger.Info("resolverGaveUp", slog.String("name", name), slog.Any("err", err), slog.Time("t", r.now()))
		return nil, nil
	}
	return addrs, nil
}

// Reverse implements [flow.Resolver] via a PTR query.
func (r *Resolver) Reverse(ctx context.Context, ip netip.Addr) (string, error) {
	rev, err := dns.ReverseAddr(ip.String())
	if err != nil {
		return "", err
	}
	msg := new(dns.Msg)
	msg.SetQuestion(rev, dns.TypePTR)

	resp, err := r.exchange(ctx, msg)
	if err != nil {
		return "", err
	}
	for _, rr := range resp.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			return ptr.Ptr, nil
		}
	}
	return "", flow.ErrNotFound
}

func (r *Resolver) exchangeOnce(ctx context.Context, name string, qtype uint16) ([]netip.Addr, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.Id = dns.Id()

	resp, err := r.exchange(ctx, msg)
	if err != nil {
		return nil, err
	}

	var addrs []netip.Addr
	for _, rr := range resp.Answer {
		switch rec := rr.(type) {
		case *dns.A:
			if qtype != dns.TypeA {
				continue
			}
			if addr, ok := netip.AddrFromSlice(rec.A.To4()); ok {
				addrs = append(addrs, addr)
			}
		case *dns.AAAA:
			if qtype != dns.TypeAAAA {
				continue
			}
			if addr, ok := netip.AddrFromSlice(rec.AAAA.To16()); ok {
				addrs = append(addrs, addr)
			}
		}
	}
	return addrs, nil
}

func (r *Resolver) exchange(ctx context.Context, msg *dns.Msg) (*dns.Msg, error) {
	packed, err := msg.Pack()
	if err != nil {
		return nil, fmt.Errorf("resolverdoh: pack query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(packed))
	if err != nil {
		return nil, fmt.Errorf("resolverdoh: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/dns-message")
	req.Header.Set("Accept", "application/dns-message")

	httpResp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolverdoh: round trip: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("resolverdoh: read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resolverdoh: unexpected status %d", httpResp.StatusCode)
	}

	respMsg := new(dns.Msg)
	if err := respMsg.Unpack(body); err != nil {
		return nil, fmt.Errorf("resolverdoh: unpack response: %w", err)
	}
	return respMsg, nil
}

func destinationFromAddr(addr string) flow.Destination {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return flow.NewDestinationHost(addr, 443)
	}
	var port uint16
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		port = 443
	}
	if ip, err := netip.ParseAddr(host); err == nil {
		return flow.NewDestinationAddr(ip, port)
	}
	return flow.NewDestinationHost(host, port)
}
