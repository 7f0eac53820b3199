// SPDX-License-Identifier: GPL-3.0-or-later

package plugin

import (
	"context"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ytflowcore/ytflowcore/flow"
)

func TestAccessPointHandleAccessors(t *testing.T) {
	streamOut := StreamOutboundFunc(func(fctx *flow.Context, initial *flow.Buffer) (flow.StreamFlow, error) {
		return nil, nil
	})
	ap := AccessPoint{PluginName: "direct", APName: "out", Kind: flow.StreamOutbound, Handle: streamOut}

	_, ok := AsStreamOutbound(ap)
	assert.True(t, ok)

	_, ok = AsStreamInbound(ap)
	assert.False(t, ok)

	_, ok = AsDatagramOutbound(ap)
	assert.False(t, ok)

	_, ok = AsDatagramInbound(ap)
	assert.False(t, ok)

	_, ok = AsResolver(ap)
	assert.False(t, ok)
}

func TestAccessPointResolverHandle(t *testing.T) {
	ap := AccessPoint{PluginName: "doh", APName: "resolver", Kind: flow.ResolverCap, Handle: stubResolver{}}
	r, ok := AsResolver(ap)
	assert.True(t, ok)
	assert.NotNil(t, r)
}

type stubResolver struct{}

func (stubResolver) ResolveV4(ctx context.Context, name string) ([]netip.Addr, error) {
	return nil, nil
}
func (stubResolver) ResolveV6(ctx context.Context, name string) ([]netip.Addr, error) {
	return nil, nil
}
func (stubResolver) Reverse(ctx context.Context, ip netip.Addr) (string, error) {
	return "", nil
}

var _ flow.Resolver = stubResolver{}
