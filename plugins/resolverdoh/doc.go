//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop dnsoverhttps.go/dnsexchange.go/httpconn.go
// (DNS-over-HTTPS exchange over an owned connection), generalized from a
// net.Conn-backed HTTPConn into a Resolver backed by a StreamOutbound
// descriptor, so the transport a resolver dials through is itself just
// another plugin.
//

// Package resolverdoh implements the "resolver-doh" sample plugin: a
// [flow.Resolver] access point performing DNS-over-HTTPS exchanges using
// github.com/miekg/dns for message encoding and golang.org/x/net/http2 for
// transport, grounding spec.md §8 scenario 3 (a forced handshake failure
// retried once, then an empty result with no leaked task).
package resolverdoh
