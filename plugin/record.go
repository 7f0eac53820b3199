// SPDX-License-Identifier: GPL-3.0-or-later

package plugin

// Record is the persistent description of one plugin within a profile:
// stable id, human name, kind tag, version, and an opaque CBOR parameter
// blob decoded per kind by its factory (spec.md §3 "PluginRecord").
//
// A Record is immutable once loaded for a session; the loader never
// mutates a Record in place.
type Record struct {
	// ID is a stable identifier, unique within the owning profile.
	ID string

	// Name is the human-readable, profile-unique name other plugins'
	// descriptors reference (spec.md §3 "Descriptor").
	Name string

	// Kind selects the factory from the [Registry].
	Kind string

	// Version is matched against the factory's supported version range.
	Version uint16

	// Param is the opaque, factory-specific CBOR blob.
	Param []byte

	// ProfileID names the owning profile.
	ProfileID string
}

// Profile is an ordered collection of [Record] values plus a designated
// entry set: the names of plugins whose access points are exposed to
// inbound traffic sources (spec.md §3 "Profile").
type Profile struct {
	// ID identifies the profile.
	ID string

	// Plugins holds every plugin record in the profile, in the order
	// they should be attempted when no dependency orders them first.
	Plugins []Record

	// Entry names one or more plugins in Plugins whose access points
	// the runtime kernel publishes for traffic admission.
	Entry []string
}

// ByName returns the record named name, if present.
func (p *Profile) ByName(name string) (Record, bool) {
	for _, r := range p.Plugins {
		if r.Name == name {
			return r, true
		}
	}
	return Record{}, false
}
