// SPDX-License-Identifier: GPL-3.0-or-later

package flow

import (
	"context"
	"net/netip"
)

// OrderingPolicy controls the order in which a [Resolver] returns multiple
// addresses for a name.
type OrderingPolicy int

const (
	// OrderingAsReturned preserves whatever order the underlying source
	// produced (e.g. DNS response record order).
	OrderingAsReturned OrderingPolicy = iota

	// OrderingShuffled randomizes order on every call, spreading load
	// across multiple returned addresses.
	OrderingShuffled

	// OrderingPreferIPv6 stable-sorts IPv6 addresses before IPv4.
	OrderingPreferIPv6

	// OrderingPreferIPv4 stable-sorts IPv4 addresses before IPv6.
	OrderingPreferIPv4
)

// Resolver performs name resolution, forward and reverse. Implementations
// are heterogeneous (a plain DNS stub resolver, a DoH resolver chained
// through a [StreamFlow], a static hosts-file lookup) and interchangeable
// to any plugin holding only this abstraction.
type Resolver interface {
	// ResolveV4 returns IPv4 addresses for name (possibly empty, never
	// with an error on a successful-but-empty result), ordered per the
	// resolver's configured [OrderingPolicy].
	ResolveV4(ctx context.Context, name string) ([]netip.Addr, error)

	// ResolveV6 is the IPv6 analogue of ResolveV4.
	ResolveV6(ctx context.Context, name string) ([]netip.Addr, error)

	// Reverse returns the name associated with ip, or [ErrNotFound] if
	// none is known.
	Reverse(ctx context.Context, ip netip.Addr) (string, error)
}
