//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop's Config-as-the-one-thing-a-caller-builds
// pattern, generalized here into the small FFI-shaped surface spec.md §6
// calls out: runtime_new/_load/_stop/_free plus plugin_verify.
//

// Package host exposes the operations a surrounding process (CLI, FFI
// bridge, test harness) drives the dataplane runtime through: constructing
// a [Runtime], loading a [plugin.Profile] into it, and tearing it down.
// Every fallible operation returns a [*Result] alongside (or instead of) a
// Go error, matching the FFI-facing tagged success/error shape of
// spec.md §7 ("kind, human message, detail").
package host
