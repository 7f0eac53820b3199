// SPDX-License-Identifier: GPL-3.0-or-later

package flow

// CapabilityKind identifies the operation vocabulary an AccessPoint exposes
// or a Descriptor demands.
//
// A plugin consuming a [StreamFlow] never knows the concrete provider; it
// only knows it asked for (and received) a handle of a given CapabilityKind.
type CapabilityKind string

const (
	// StreamInbound marks an access point that is a sink: other plugins
	// push [StreamFlow] values into it rather than requesting one from it.
	StreamInbound CapabilityKind = "stream-inbound"

	// StreamOutbound marks an access point that, given a [Context] and
	// optional initial data, returns a live [StreamFlow].
	StreamOutbound CapabilityKind = "stream-outbound"

	// DatagramInbound marks an access point that accepts pushed
	// [DatagramSession] values.
	DatagramInbound CapabilityKind = "datagram-inbound"

	// DatagramOutbound marks an access point that returns a live
	// [DatagramSession].
	DatagramOutbound CapabilityKind = "datagram-outbound"

	// ResolverCap marks an access point backed by a [Resolver].
	ResolverCap CapabilityKind = "resolver"

	// Netif marks an access point exposing a network interface handle
	// (e.g. a TUN device) to plugins that need raw packet access.
	Netif CapabilityKind = "netif"
)

// Valid reports whether k is one of the known capability kinds.
func (k CapabilityKind) Valid() bool {
	switch k {
	case StreamInbound, StreamOutbound, DatagramInbound, DatagramOutbound, ResolverCap, Netif:
		return true
	default:
		return false
	}
}

// String implements [fmt.Stringer].
func (k CapabilityKind) String() string {
	return string(k)
}
