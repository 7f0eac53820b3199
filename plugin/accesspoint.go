// SPDX-License-Identifier: GPL-3.0-or-later

package plugin

import "github.com/ytflowcore/ytflowcore/flow"

// AccessPointSpec declares one access point a factory exposes: a named,
// typed endpoint other plugins may target via a [DescriptorSpec].
type AccessPointSpec struct {
	// Name is the access point's name, unique within its owning plugin.
	Name string

	// Kind is the capability the access point exposes.
	Kind flow.CapabilityKind
}

// DescriptorSpec declares one descriptor a factory requires: a reference
// it will hold to another plugin's access point, resolved by the loader.
type DescriptorSpec struct {
	// Slot is the descriptor's name within its owning plugin, used when
	// the factory's Build method receives its resolved handles.
	Slot string

	// Kind is the capability the bound access point must expose.
	Kind flow.CapabilityKind

	// Late marks a descriptor resolved in the loader's second wiring
	// phase (spec.md §4.3 step 5), which is how cycle-forming
	// descriptors (e.g. a router's default fallback) are permitted.
	Late bool

	// Optional marks a descriptor the plugin can do without; an
	// unresolved optional descriptor does not fail the load.
	Optional bool
}

// AccessPoint is a live, resolved access point: the (plugin instance, name,
// kind) triple of spec.md §3, carrying the actual capability handle other
// plugins obtained a [DescriptorSpec] pointing at.
type AccessPoint struct {
	// PluginName names the owning plugin instance.
	PluginName string

	// APName is the access point's name.
	APName string

	// Kind is the capability exposed.
	Kind flow.CapabilityKind

	// Handle is the live capability value: a flow.StreamFlow-producing
	// function, a flow.DatagramSession-producing function, a
	// flow.Resolver, or a sink callback for *Inbound kinds. Concretely
	// typed as `any` here and type-asserted by the loader/kernel against
	// the expected shape for Kind — see package wire's binder.
	Handle any
}
