//
// SPDX-License-Identifier: GPL-3.0-or-later
//

// Package dnsserver implements the "dns-server" sample plugin: a
// DatagramInbound sink that answers DNS queries pushed into it from a
// static, profile-configured name table, using github.com/miekg/dns for
// message parsing and construction.
package dnsserver
