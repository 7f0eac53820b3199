//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop config.go (Config is built once, read-only
// from then on) — the registry plays the same "frozen after construction"
// role described in spec.md §9 "Global-ish state".
//

package plugin

import "fmt"

// Registry is a process-wide, read-only-after-init table mapping a
// (kind, version) pair onto the [Factory] that builds it (spec.md §4.2).
//
// A Registry is safe for concurrent reads once built; [Registry.Register]
// must not be called concurrently with lookups.
type Registry struct {
	byKind map[string]Factory
}

// NewRegistry returns an empty [*Registry].
func NewRegistry() *Registry {
	return &Registry{byKind: make(map[string]Factory)}
}

// Register adds factory under its own [Factory.Kind]. It panics on a
// duplicate kind, since registration happens at process init and a
// colliding registration is a programmer error, not a runtime condition.
func (r *Registry) Register(factory Factory) {
	kind := factory.Kind()
	if _, exists := r.byKind[kind]; exists {
		panic(fmt.Sprintf("plugin: duplicate factory registration for kind %q", kind))
	}
	r.byKind[kind] = factory
}

// Lookup returns the factory for kind, and whether version falls within
// its supported range.
func (r *Registry) Lookup(kind string, version uint16) (Factory, error) {
	f, ok := r.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("plugin: unknown kind %q", kind)
	}
	min, max := f.VersionRange()
	if version < min || version > max {
		return nil, fmt.Errorf("plugin: kind %q version %d out of supported range [%d,%d]", kind, version, min, max)
	}
	return f, nil
}

// Kinds returns every registered kind, for diagnostics and tests.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.byKind))
	for k := range r.byKind {
		out = append(out, k)
	}
	return out
}

// Verify decodes and validates param against kind/version's factory schema
// without performing any I/O, matching spec.md §6's `plugin_verify`.
func (r *Registry) Verify(kind string, version uint16, param []byte) error {
	f, err := r.Lookup(kind, version)
	if err != nil {
		return err
	}
	return f.Verify(version, param)
}
