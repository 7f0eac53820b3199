//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package resolverdoh

import (
	"github.com/ytflowcore/ytflowcore/flow"
	"github.com/ytflowcore/ytflowcore/kernel"
	"github.com/ytflowcore/ytflowcore/plugin"
)

// Factory builds "resolver-doh" instances: a single Resolver access point
// named "resolve", backed by a strict StreamOutbound "transport" descriptor.
type Factory struct {
	plugin.BaseFactory

	// Logger configures every built resolver's structured logging;
	// defaults to [kernel.DefaultSLogger] when left nil.
	Logger kernel.SLogger
}

// NewFactory constructs the resolver-doh [Factory] for registration with a
// [plugin.Registry].
func NewFactory() *Factory {
	return &Factory{BaseFactory: plugin.BaseFactory{
		KindName: "resolver-doh",
		MinVer:   1,
		MaxVer:   1,
		Schema: &plugin.ParamSchema{
			Fields: []plugin.FieldSpec{{Name: "url", Kind: plugin.FieldString, Required: true}},
		},
		Descs: []plugin.DescriptorSpec{{Slot: "transport", Kind: flow.StreamOutbound}},
		APs:   []plugin.AccessPointSpec{{Name: "resolve", Kind: flow.ResolverCap}},
	}}
}

// Build implements [plugin.Factory]. rt is unused: the resolver dials
// through its bound "transport" descriptor rather than touching the
// kernel directly, and every query round-trip is synchronous HTTP/2, not a
// long-lived flow the connection table would track.
func (f *Factory) Build(name string, version uint16, param []byte, bound map[string]plugin.AccessPoint, rt *kernel.Runtime) (plugin.Instance, error) {
	fields, err := f.Schema.Decode(param)
	if err != nil {
		return nil, &plugin.FactoryError{PluginName: name, Reason: "invalid parameters", Err: err}
	}
	url, _ := fields["url"].(string)

	ap, ok := bound["transport"]
	if !ok {
		return nil, &plugin.FactoryError{PluginName: name, Reason: "descriptor \"transport\" not bound"}
	}
	dial, ok := plugin.AsStreamOutbound(ap)
	if !ok {
		return nil, &plugin.FactoryError{PluginName: name, Reason: "descriptor \"transport\" is not a StreamOutbound"}
	}

	resolver := newResolver(url, dial, f.Logger, nil)
	return &instance{name: name, resolver: resolver}, nil
}

type instance struct {
	name     string
	resolver *Resolver
}

func (i *instance) AccessPoints() []plugin.AccessPoint {
	return []plugin.AccessPoint{{PluginName: i.name, APName: "resolve", Kind: flow.ResolverCap, Handle: i.resolver}}
}

func (i *instance) BindLate(bound map[string]plugin.AccessPoint) error { return nil }

func (i *instance) Close() error { return i.resolver.Close() }
