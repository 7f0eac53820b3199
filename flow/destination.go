// SPDX-License-Identifier: GPL-3.0-or-later

package flow

import (
	"fmt"
	"net/netip"
)

// Destination identifies the remote endpoint a flow is headed to. It may
// be a bare domain name (resolution deferred to whichever plugin first
// needs an IP, e.g. a router consulting GeoIP, or an outbound dialer) or
// an already-resolved IP endpoint.
type Destination struct {
	// Host is the domain name, when known; empty if the caller only has
	// an IP.
	Host string

	// Addr is the resolved address, when known; the zero value if only
	// a domain name is available.
	Addr netip.Addr

	// Port is the destination port.
	Port uint16
}

// NewDestinationHost builds a [Destination] from a domain name and port.
func NewDestinationHost(host string, port uint16) Destination {
	return Destination{Host: host, Port: port}
}

// NewDestinationAddr builds a [Destination] from a resolved address and port.
func NewDestinationAddr(addr netip.Addr, port uint16) Destination {
	return Destination{Addr: addr, Port: port}
}

// HasAddr reports whether the destination already carries a resolved
// address (as opposed to only a domain name awaiting resolution).
func (d Destination) HasAddr() bool {
	return d.Addr.IsValid()
}

// String renders the destination as "host:port" or "addr:port".
func (d Destination) String() string {
	if d.HasAddr() {
		return fmt.Sprintf("%s:%d", d.Addr, d.Port)
	}
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// AddrPort returns the resolved endpoint, valid only when [Destination.HasAddr].
func (d Destination) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(d.Addr, d.Port)
}
