//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package router

import (
	"fmt"
	"sync"

	"github.com/ytflowcore/ytflowcore/flow"
	"github.com/ytflowcore/ytflowcore/kernel"
	"github.com/ytflowcore/ytflowcore/plugin"
)

// Factory builds "router" instances. Its descriptor set is dynamic: one
// strict StreamOutbound descriptor per configured rule plus a late
// StreamOutbound "default" descriptor, computed by [Factory.DescriptorsForParam]
// from the decoded rule_count/rule_N_suffix fields.
type Factory struct{}

// NewFactory constructs the router [Factory] for registration with a
// [plugin.Registry].
func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Kind() string { return "router" }

func (f *Factory) VersionRange() (uint16, uint16) { return 1, 1 }

func (f *Factory) ParamSchema() *plugin.ParamSchema {
	return &plugin.ParamSchema{
		Fields: []plugin.FieldSpec{
			{Name: "rule_count", Kind: plugin.FieldInt, Required: false},
			{Name: "default", Kind: plugin.FieldString, Required: true},
		},
	}
}

func (f *Factory) RequiredDescriptors() []plugin.DescriptorSpec {
	return []plugin.DescriptorSpec{
		{Slot: "default", Kind: flow.StreamOutbound, Late: true},
	}
}

func (f *Factory) ExposedAccessPoints() []plugin.AccessPointSpec {
	return []plugin.AccessPointSpec{{Name: "in", Kind: flow.StreamOutbound}}
}

// DescriptorsForParam implements [wire.DynamicDescriptorProvider]: one
// strict descriptor per rule, plus the always-present late default.
func (f *Factory) DescriptorsForParam(param map[string]any) ([]plugin.DescriptorSpec, error) {
	rules, err := parseRules(param)
	if err != nil {
		return nil, err
	}
	descs := make([]plugin.DescriptorSpec, 0, len(rules)+1)
	for _, r := range rules {
		descs = append(descs, plugin.DescriptorSpec{Slot: r.target, Kind: flow.StreamOutbound})
	}
	descs = append(descs, plugin.DescriptorSpec{Slot: "default", Kind: flow.StreamOutbound, Late: true})
	return descs, nil
}

func (f *Factory) Verify(version uint16, param []byte) error {
	if version < 1 || version > 1 {
		return fmt.Errorf("plugin: router: version %d out of range [1,1]", version)
	}
	fields, err := f.ParamSchema().Decode(param)
	if err != nil {
		return err
	}
	_, err = parseRules(fields)
	return err
}

// Build implements [plugin.Factory]. Descriptors marked Late (here, just
// "default") are never present in bound; instance.BindLate fills them in
// once every plugin in the profile has been constructed. rt is unused: the
// router never originates I/O of its own, only dispatches to the outbound
// descriptors that do (and which already see rt through their own Build).
func (f *Factory) Build(name string, version uint16, param []byte, bound map[string]plugin.AccessPoint, rt *kernel.Runtime) (plugin.Instance, error) {
	fields, err := f.ParamSchema().Decode(param)
	if err != nil {
		return nil, &plugin.FactoryError{PluginName: name, Reason: "invalid parameters", Err: err}
	}
	rules, err := parseRules(fields)
	if err != nil {
		return nil, &plugin.FactoryError{PluginName: name, Reason: "invalid rules", Err: err}
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		ap, ok := bound[r.target]
		if !ok {
			return nil, &plugin.FactoryError{PluginName: name, Reason: fmt.Sprintf("descriptor %q not bound", r.target)}
		}
		handle, ok := plugin.AsStreamOutbound(ap)
		if !ok {
			return nil, &plugin.FactoryError{PluginName: name, Reason: fmt.Sprintf("descriptor %q is not a StreamOutbound", r.target)}
		}
		compiled = append(compiled, compiledRule{suffix: r.suffix, outbound: handle})
	}

	return &instance{name: name, rules: compiled}, nil
}

type compiledRule struct {
	suffix   string
	outbound plugin.StreamOutboundFunc
}

type instance struct {
	name  string
	rules []compiledRule

	mu              sync.RWMutex
	defaultOutbound plugin.StreamOutboundFunc
}

func (i *instance) AccessPoints() []plugin.AccessPoint {
	handle := plugin.StreamOutboundFunc(i.route)
	return []plugin.AccessPoint{{PluginName: i.name, APName: "in", Kind: flow.StreamOutbound, Handle: handle}}
}

// route implements the router's entire dispatch logic: the first rule
// whose suffix matches the flow's destination host wins; no match falls
// through to the late-bound default.
func (i *instance) route(fctx *flow.Context, initial *flow.Buffer) (flow.StreamFlow, error) {
	host := fctx.RemoteAddr.Host
	for _, r := range i.rules {
		if matchesSuffix(host, r.suffix) {
			return r.outbound(fctx, initial)
		}
	}

	i.mu.RLock()
	def := i.defaultOutbound
	i.mu.RUnlock()
	if def == nil {
		return nil, fmt.Errorf("router: no rule matched %q and no default is bound", host)
	}
	return def(fctx, initial)
}

// BindLate implements [plugin.Instance]: it resolves the late "default"
// descriptor, the access point that may legally form a cycle back through
// this router (spec.md §9).
func (i *instance) BindLate(bound map[string]plugin.AccessPoint) error {
	ap, ok := bound["default"]
	if !ok {
		return fmt.Errorf("router: \"default\" descriptor not bound")
	}
	handle, ok := plugin.AsStreamOutbound(ap)
	if !ok {
		return fmt.Errorf("router: \"default\" descriptor is not a StreamOutbound")
	}
	i.mu.Lock()
	i.defaultOutbound = handle
	i.mu.Unlock()
	return nil
}

func (i *instance) Close() error { return nil }
