//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop compose.go (pipeline composition) and
// config.go (construct-once-from-validated-input pattern), generalized
// from a statically typed two-stage chain into the profile-wide dynamic
// wiring algorithm of spec.md §4.3.
//

package wire

import (
	"fmt"

	"github.com/ytflowcore/ytflowcore/kernel"
	"github.com/ytflowcore/ytflowcore/plugin"
)

// DynamicDescriptorProvider is implemented by factories whose descriptor
// slots depend on the plugin's own decoded parameters (e.g. a router whose
// number of rule-target descriptors matches its configured rule count).
// Factories without variable descriptor shape need not implement it; the
// loader falls back to [plugin.Factory.RequiredDescriptors].
type DynamicDescriptorProvider interface {
	DescriptorsForParam(param map[string]any) ([]plugin.DescriptorSpec, error)
}

// LoadedProfile is the result of a successful [Loader.Load]: every plugin
// instance in build order (for teardown) plus the access points published
// by the profile's entry plugins.
type LoadedProfile struct {
	// Instances maps plugin name to its live instance.
	Instances map[string]plugin.Instance

	// BuildOrder lists plugin names in the order they were
	// instantiated, so teardown can run it in reverse.
	BuildOrder []string

	// EntryAPs are the access points exposed by the profile's entry
	// plugins, published to the runtime kernel for traffic admission.
	EntryAPs []plugin.AccessPoint
}

// Close tears down every instance in reverse build order, matching
// spec.md §4.3's rollback/teardown semantics. Errors from individual
// Close calls are collected but do not stop teardown of the rest.
func (p *LoadedProfile) Close() error {
	var firstErr error
	for i := len(p.BuildOrder) - 1; i >= 0; i-- {
		name := p.BuildOrder[i]
		if err := p.Instances[name].Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("wire: closing plugin %q: %w", name, err)
		}
	}
	return firstErr
}

// Loader implements the profile wiring algorithm of spec.md §4.3: parse &
// validate, name resolution, cycle check, topological instantiation, late
// binding, entry publication.
type Loader struct {
	Registry *plugin.Registry

	// Kernel is passed through to every [plugin.Factory.Build] call, so
	// instances can admit real flows into the connection table, draw
	// buffers from the pool, and wrap their I/O with the flow observer
	// (spec.md §4.4). Left nil by [NewLoader]; callers that want plugins
	// wired to a live kernel set it before calling [Loader.Load].
	Kernel *kernel.Runtime
}

// NewLoader returns a [*Loader] bound to reg.
func NewLoader(reg *plugin.Registry) *Loader {
	return &Loader{Registry: reg}
}

// recordState is per-plugin working state threaded through the load steps.
type recordState struct {
	record      plugin.Record
	factory     plugin.Factory
	param       map[string]any
	declaredAPs []plugin.AccessPointSpec
	descriptors []plugin.DescriptorSpec
}

// Load runs the full wiring algorithm against profile. On any failure
// before entry publication, every partially constructed instance is closed
// in reverse order and a *[ConfigError] (or [plugin.FactoryError]) is
// returned; no plugin observes any traffic (spec.md §3 "Profile load").
func (l *Loader) Load(p *plugin.Profile) (*LoadedProfile, error) {
	states, err := l.parseAndValidate(p)
	if err != nil {
		return nil, err
	}

	g, err := l.resolveNames(p, states)
	if err != nil {
		return nil, err
	}

	if err := l.checkCycles(g, states); err != nil {
		return nil, err
	}

	loaded, err := l.instantiate(p, states, g)
	if err != nil {
		return nil, err
	}

	if err := l.bindLate(states, g, loaded); err != nil {
		loaded.Close()
		return nil, err
	}

	if err := l.publishEntry(p, loaded); err != nil {
		loaded.Close()
		return nil, err
	}

	return loaded, nil
}

// parseAndValidate implements spec.md §4.3 step 1.
func (l *Loader) parseAndValidate(p *plugin.Profile) (map[string]*recordState, error) {
	states := make(map[string]*recordState, len(p.Plugins))
	seen := make(map[string]bool, len(p.Plugins))

	for _, rec := range p.Plugins {
		if seen[rec.Name] {
			return nil, &ConfigError{Kind: DuplicatePluginName, PluginName: rec.Name, Reason: "plugin name used more than once in profile"}
		}
		seen[rec.Name] = true

		factory, err := l.Registry.Lookup(rec.Kind, rec.Version)
		if err != nil {
			return nil, &ConfigError{Kind: UnknownKind, PluginName: rec.Name, Reason: err.Error(), Err: err}
		}

		param, err := factory.ParamSchema().Decode(rec.Param)
		if err != nil {
			return nil, &ConfigError{Kind: SchemaViolation, PluginName: rec.Name, Reason: err.Error(), Err: err}
		}

		descs := factory.RequiredDescriptors()
		if dyn, ok := factory.(DynamicDescriptorProvider); ok {
			descs, err = dyn.DescriptorsForParam(param)
			if err != nil {
				return nil, &ConfigError{Kind: SchemaViolation, PluginName: rec.Name, Reason: err.Error(), Err: err}
			}
		}

		states[rec.Name] = &recordState{
			record:      rec,
			factory:     factory,
			param:       param,
			declaredAPs: factory.ExposedAccessPoints(),
			descriptors: descs,
		}
	}
	return states, nil
}

// resolveNames implements spec.md §4.3 step 2.
func (l *Loader) resolveNames(p *plugin.Profile, states map[string]*recordState) (*depGraph, error) {
	names := make([]string, 0, len(states))
	for name := range states {
		names = append(names, name)
	}
	g := newDepGraph(names)

	for _, st := range states {
		for _, d := range st.descriptors {
			raw, ok := st.param[d.Slot]
			if !ok {
				if d.Optional {
					continue
				}
				return nil, &ConfigError{Kind: UnresolvedDescriptor, PluginName: st.record.Name, Field: d.Slot, Reason: "descriptor slot not present in param"}
			}
			path, ok := raw.(string)
			if !ok {
				return nil, &ConfigError{Kind: UnresolvedDescriptor, PluginName: st.record.Name, Field: d.Slot, Reason: "descriptor slot is not a string reference"}
			}
			ref, err := plugin.ParseDescriptorRef(path)
			if err != nil {
				return nil, &ConfigError{Kind: UnresolvedDescriptor, PluginName: st.record.Name, Field: d.Slot, Reason: err.Error(), Err: err}
			}

			target, ok := states[ref.PluginName]
			if !ok {
				return nil, &ConfigError{Kind: UnresolvedDescriptor, PluginName: st.record.Name, Field: d.Slot, Reason: fmt.Sprintf("references unknown plugin %q", ref.PluginName)}
			}

			var matched bool
			for _, ap := range target.declaredAPs {
				if ap.Name == ref.APName {
					matched = true
					if ap.Kind != d.Kind {
						return nil, &ConfigError{Kind: CapabilityMismatch, PluginName: st.record.Name, Field: d.Slot,
							Reason: fmt.Sprintf("descriptor wants %s, access point %q is %s", d.Kind, ref, ap.Kind)}
					}
				}
			}
			if !matched {
				return nil, &ConfigError{Kind: UnresolvedDescriptor, PluginName: st.record.Name, Field: d.Slot,
					Reason: fmt.Sprintf("plugin %q has no access point %q", ref.PluginName, ref.APName)}
			}

			g.addEdge(edge{From: st.record.Name, To: ref.PluginName, Slot: d.Slot, Late: d.Late})
		}
	}
	return g, nil
}

// checkCycles implements spec.md §4.3 step 3.
func (l *Loader) checkCycles(g *depGraph, states map[string]*recordState) error {
	for _, scc := range g.stronglyConnectedComponents() {
		members := make(map[string]bool, len(scc))
		for _, v := range scc {
			members[v] = true
		}

		var within []edge
		if len(scc) == 1 {
			if e, ok := g.selfLoop(scc[0]); ok {
				within = []edge{e}
			} else {
				continue // singleton, no self-loop: not a cycle
			}
		} else {
			within = g.edgesWithin(members)
		}

		for _, e := range within {
			if !e.Late {
				return &ConfigError{Kind: CycleWithoutLateEdge, PluginName: e.From, Field: e.Slot,
					Reason: fmt.Sprintf("descriptor cycle involving %v requires a late descriptor", scc)}
			}
		}
	}
	return nil
}

// instantiate implements spec.md §4.3 step 4.
func (l *Loader) instantiate(p *plugin.Profile, states map[string]*recordState, g *depGraph) (*LoadedProfile, error) {
	loaded := &LoadedProfile{Instances: make(map[string]plugin.Instance, len(states))}
	built := make(map[string]bool, len(states))
	remaining := make(map[string]*recordState, len(states))
	for name, st := range states {
		remaining[name] = st
	}

	for len(remaining) > 0 {
		progressed := false
		for name, st := range remaining {
			if !g.strictDescriptorsSatisfied(name, built) {
				continue
			}

			bound := make(map[string]plugin.AccessPoint, len(st.descriptors))
			for _, d := range st.descriptors {
				if d.Late {
					continue
				}
				raw, ok := st.param[d.Slot]
				if !ok {
					continue // optional and absent, already validated in resolveNames
				}
				ref, _ := plugin.ParseDescriptorRef(raw.(string))
				ap, err := findAccessPoint(loaded.Instances[ref.PluginName], ref.APName)
				if err != nil {
					loaded.Close()
					return nil, &plugin.FactoryError{PluginName: name, Reason: err.Error(), Err: err}
				}
				bound[d.Slot] = ap
			}

			inst, err := st.factory.Build(name, st.record.Version, st.record.Param, bound, l.Kernel)
			if err != nil {
				loaded.Close()
				return nil, &plugin.FactoryError{PluginName: name, Reason: "factory build failed", Err: err}
			}

			loaded.Instances[name] = inst
			loaded.BuildOrder = append(loaded.BuildOrder, name)
			built[name] = true
			delete(remaining, name)
			progressed = true
		}
		if !progressed {
			loaded.Close()
			names := make([]string, 0, len(remaining))
			for n := range remaining {
				names = append(names, n)
			}
			return nil, &ConfigError{Kind: CycleWithoutLateEdge, Reason: fmt.Sprintf("unsatisfiable strict dependencies among %v", names)}
		}
	}
	return loaded, nil
}

func findAccessPoint(inst plugin.Instance, apName string) (plugin.AccessPoint, error) {
	if inst == nil {
		return plugin.AccessPoint{}, fmt.Errorf("target plugin not yet built")
	}
	for _, ap := range inst.AccessPoints() {
		if ap.APName == apName {
			return ap, nil
		}
	}
	return plugin.AccessPoint{}, fmt.Errorf("access point %q not found on built instance", apName)
}

// bindLate implements spec.md §4.3 step 5.
func (l *Loader) bindLate(states map[string]*recordState, g *depGraph, loaded *LoadedProfile) error {
	for name, st := range states {
		late := make(map[string]plugin.AccessPoint)
		for _, d := range st.descriptors {
			if !d.Late {
				continue
			}
			raw, ok := st.param[d.Slot]
			if !ok {
				continue
			}
			ref, err := plugin.ParseDescriptorRef(raw.(string))
			if err != nil {
				return &ConfigError{Kind: UnresolvedDescriptor, PluginName: name, Field: d.Slot, Reason: err.Error(), Err: err}
			}
			ap, err := findAccessPoint(loaded.Instances[ref.PluginName], ref.APName)
			if err != nil {
				return &ConfigError{Kind: UnresolvedDescriptor, PluginName: name, Field: d.Slot, Reason: err.Error(), Err: err}
			}
			late[d.Slot] = ap
		}
		if len(late) == 0 {
			if err := loaded.Instances[name].BindLate(nil); err != nil {
				return &plugin.FactoryError{PluginName: name, Reason: "late bind failed", Err: err}
			}
			continue
		}
		if err := loaded.Instances[name].BindLate(late); err != nil {
			return &plugin.FactoryError{PluginName: name, Reason: "late bind failed", Err: err}
		}
	}
	return nil
}

// publishEntry implements spec.md §4.3 step 6.
func (l *Loader) publishEntry(p *plugin.Profile, loaded *LoadedProfile) error {
	if len(p.Entry) == 0 {
		return &ConfigError{Kind: NoEntryPlugin, Reason: "profile declares no entry plugin"}
	}
	for _, name := range p.Entry {
		inst, ok := loaded.Instances[name]
		if !ok {
			return &ConfigError{Kind: NoEntryPlugin, PluginName: name, Reason: "entry plugin not present in profile"}
		}
		loaded.EntryAPs = append(loaded.EntryAPs, inst.AccessPoints()...)
	}
	return nil
}
