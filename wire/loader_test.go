// SPDX-License-Identifier: GPL-3.0-or-later

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytflowcore/ytflowcore/flow"
	"github.com/ytflowcore/ytflowcore/kernel"
	"github.com/ytflowcore/ytflowcore/plugin"
)

type wireStubInstance struct {
	name      string
	aps       []plugin.AccessPoint
	boundLate map[string]plugin.AccessPoint
	closed    bool
}

func (i *wireStubInstance) AccessPoints() []plugin.AccessPoint { return i.aps }

func (i *wireStubInstance) BindLate(bound map[string]plugin.AccessPoint) error {
	i.boundLate = bound
	return nil
}

func (i *wireStubInstance) Close() error {
	i.closed = true
	return nil
}

type wireStubFactory struct {
	plugin.BaseFactory
	built []*wireStubInstance
}

func (f *wireStubFactory) Build(name string, version uint16, param []byte, bound map[string]plugin.AccessPoint, rt *kernel.Runtime) (plugin.Instance, error) {
	inst := &wireStubInstance{name: name}
	for _, apSpec := range f.APs {
		inst.aps = append(inst.aps, plugin.AccessPoint{PluginName: name, APName: apSpec.Name, Kind: apSpec.Kind, Handle: struct{}{}})
	}
	f.built = append(f.built, inst)
	return inst, nil
}

func newWireStubFactory(kind string, aps []plugin.AccessPointSpec, descs []plugin.DescriptorSpec) *wireStubFactory {
	return &wireStubFactory{BaseFactory: plugin.BaseFactory{
		KindName: kind,
		MinVer:   1,
		MaxVer:   1,
		Schema:   &plugin.ParamSchema{},
		Descs:    descs,
		APs:      aps,
	}}
}

func mustParam(t *testing.T, fields map[string]any) []byte {
	t.Helper()
	raw, err := plugin.EncodeParam(fields)
	require.NoError(t, err)
	return raw
}

func TestLoaderSimpleChain(t *testing.T) {
	reg := plugin.NewRegistry()
	directFactory := newWireStubFactory("direct", []plugin.AccessPointSpec{{Name: "out", Kind: flow.StreamOutbound}}, nil)
	routerFactory := newWireStubFactory("router", []plugin.AccessPointSpec{{Name: "in", Kind: flow.StreamInbound}},
		[]plugin.DescriptorSpec{{Slot: "target", Kind: flow.StreamOutbound}})
	reg.Register(directFactory)
	reg.Register(routerFactory)

	profile := &plugin.Profile{
		ID: "p",
		Plugins: []plugin.Record{
			{Name: "direct", Kind: "direct", Version: 1, Param: mustParam(t, map[string]any{})},
			{Name: "router", Kind: "router", Version: 1, Param: mustParam(t, map[string]any{"target": "direct.out"})},
		},
		Entry: []string{"router"},
	}

	loaded, err := NewLoader(reg).Load(profile)
	require.NoError(t, err)
	assert.Equal(t, []string{"direct", "router"}, loaded.BuildOrder)
	require.Len(t, loaded.EntryAPs, 1)
	assert.Equal(t, "in", loaded.EntryAPs[0].APName)
}

func TestLoaderCapabilityMismatchRejected(t *testing.T) {
	reg := plugin.NewRegistry()
	directFactory := newWireStubFactory("direct", []plugin.AccessPointSpec{{Name: "out", Kind: flow.DatagramOutbound}}, nil)
	routerFactory := newWireStubFactory("router", nil,
		[]plugin.DescriptorSpec{{Slot: "target", Kind: flow.StreamOutbound}})
	reg.Register(directFactory)
	reg.Register(routerFactory)

	profile := &plugin.Profile{
		Plugins: []plugin.Record{
			{Name: "direct", Kind: "direct", Version: 1, Param: mustParam(t, map[string]any{})},
			{Name: "router", Kind: "router", Version: 1, Param: mustParam(t, map[string]any{"target": "direct.out"})},
		},
		Entry: []string{"router"},
	}

	_, err := NewLoader(reg).Load(profile)
	require.Error(t, err)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, CapabilityMismatch, cerr.Kind)
}

func TestLoaderUnresolvedDescriptorRejected(t *testing.T) {
	reg := plugin.NewRegistry()
	routerFactory := newWireStubFactory("router", nil,
		[]plugin.DescriptorSpec{{Slot: "target", Kind: flow.StreamOutbound}})
	reg.Register(routerFactory)

	profile := &plugin.Profile{
		Plugins: []plugin.Record{
			{Name: "router", Kind: "router", Version: 1, Param: mustParam(t, map[string]any{"target": "ghost.out"})},
		},
		Entry: []string{"router"},
	}

	_, err := NewLoader(reg).Load(profile)
	require.Error(t, err)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, UnresolvedDescriptor, cerr.Kind)
}

func TestLoaderStrictCycleRejected(t *testing.T) {
	reg := plugin.NewRegistry()
	aFactory := newWireStubFactory("a", []plugin.AccessPointSpec{{Name: "out", Kind: flow.StreamOutbound}},
		[]plugin.DescriptorSpec{{Slot: "peer", Kind: flow.StreamOutbound}})
	bFactory := newWireStubFactory("b", []plugin.AccessPointSpec{{Name: "out", Kind: flow.StreamOutbound}},
		[]plugin.DescriptorSpec{{Slot: "peer", Kind: flow.StreamOutbound}})
	reg.Register(aFactory)
	reg.Register(bFactory)

	profile := &plugin.Profile{
		Plugins: []plugin.Record{
			{Name: "a", Kind: "a", Version: 1, Param: mustParam(t, map[string]any{"peer": "b.out"})},
			{Name: "b", Kind: "b", Version: 1, Param: mustParam(t, map[string]any{"peer": "a.out"})},
		},
		Entry: []string{"a"},
	}

	_, err := NewLoader(reg).Load(profile)
	require.Error(t, err)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, CycleWithoutLateEdge, cerr.Kind)
}

func TestLoaderLateCycleAccepted(t *testing.T) {
	reg := plugin.NewRegistry()
	aFactory := newWireStubFactory("a", []plugin.AccessPointSpec{{Name: "out", Kind: flow.StreamOutbound}},
		[]plugin.DescriptorSpec{{Slot: "peer", Kind: flow.StreamOutbound}})
	bFactory := newWireStubFactory("b", []plugin.AccessPointSpec{{Name: "out", Kind: flow.StreamOutbound}},
		[]plugin.DescriptorSpec{{Slot: "peer", Kind: flow.StreamOutbound, Late: true}})
	reg.Register(aFactory)
	reg.Register(bFactory)

	profile := &plugin.Profile{
		Plugins: []plugin.Record{
			{Name: "a", Kind: "a", Version: 1, Param: mustParam(t, map[string]any{"peer": "b.out"})},
			{Name: "b", Kind: "b", Version: 1, Param: mustParam(t, map[string]any{"peer": "a.out"})},
		},
		Entry: []string{"a", "b"},
	}

	loaded, err := NewLoader(reg).Load(profile)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, loaded.BuildOrder)

	bInst := loaded.Instances["b"].(*wireStubInstance)
	require.Contains(t, bInst.boundLate, "peer")
	assert.Equal(t, "a", bInst.boundLate["peer"].PluginName)
}

func TestLoaderUnknownKindRejected(t *testing.T) {
	reg := plugin.NewRegistry()
	profile := &plugin.Profile{
		Plugins: []plugin.Record{{Name: "x", Kind: "missing", Version: 1}},
		Entry:   []string{"x"},
	}
	_, err := NewLoader(reg).Load(profile)
	require.Error(t, err)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, UnknownKind, cerr.Kind)
}

func TestLoaderDuplicatePluginNameRejected(t *testing.T) {
	reg := plugin.NewRegistry()
	reg.Register(newWireStubFactory("direct", nil, nil))

	profile := &plugin.Profile{
		Plugins: []plugin.Record{
			{Name: "direct", Kind: "direct", Version: 1, Param: mustParam(t, map[string]any{})},
			{Name: "direct", Kind: "direct", Version: 1, Param: mustParam(t, map[string]any{})},
		},
		Entry: []string{"direct"},
	}
	_, err := NewLoader(reg).Load(profile)
	require.Error(t, err)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, DuplicatePluginName, cerr.Kind)
}

func TestLoaderNoEntryRejected(t *testing.T) {
	reg := plugin.NewRegistry()
	reg.Register(newWireStubFactory("direct", nil, nil))

	profile := &plugin.Profile{
		Plugins: []plugin.Record{
			{Name: "direct", Kind: "direct", Version: 1, Param: mustParam(t, map[string]any{})},
		},
	}
	_, err := NewLoader(reg).Load(profile)
	require.Error(t, err)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, NoEntryPlugin, cerr.Kind)
}
