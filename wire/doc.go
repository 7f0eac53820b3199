// SPDX-License-Identifier: GPL-3.0-or-later

// Package wire implements the profile wiring algorithm of spec.md §4.3:
// turning a [plugin.Profile] plus a [plugin.Registry] into a
// [LoadedProfile] of live plugin instances with every descriptor resolved,
// or a [ConfigError]/[plugin.FactoryError] describing exactly what in the
// profile is wrong.
//
// The algorithm runs in six steps: parse & validate each record against its
// factory's schema, resolve descriptor references into a dependency graph,
// reject strict (non-late) dependency cycles, instantiate plugins in
// topological order, bind late descriptors once every instance exists, and
// publish the entry plugins' access points. Any failure before the last
// step rolls back every instance built so far, in reverse order, so a
// rejected profile never leaves plugins running.
package wire
