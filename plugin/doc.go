// SPDX-License-Identifier: GPL-3.0-or-later

// Package plugin defines the static factory registry that maps a
// (kind, version) pair onto a builder of live plugin instances, plus the
// typed handles — access points and descriptors — factories use to declare
// their wiring requirements to the loader (package wire).
//
// # Factories
//
// A [Factory] is registered once, at process init, into a [Registry] (read
// only afterward, matching the way connection-level libraries freeze
// configuration before first use). Each
// factory declares:
//
//   - a [ParamSchema] for its parameter blob (self-describing CBOR, decoded
//     via [github.com/fxamacker/cbor/v2]);
//   - the [AccessPointSpec] values it exposes;
//   - the [DescriptorSpec] values it requires;
//   - a [Factory.Build] method that, given validated parameters and
//     resolved descriptor handles, produces a [Instance].
//
// # Verification
//
// [Factory.Verify] is a side-effect-free check used by an external editor
// before save: it exercises schema validation and cheap invariants but
// never opens sockets or files, matching spec.md §4.2's testable property
// that plugin_verify never touches the network.
package plugin
