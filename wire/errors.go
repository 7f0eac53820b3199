// SPDX-License-Identifier: GPL-3.0-or-later

package wire

import "fmt"

// ConfigErrorKind enumerates the Config error taxonomy of spec.md §7.
type ConfigErrorKind string

const (
	UnknownKind          ConfigErrorKind = "unknown-kind"
	VersionOutOfRange    ConfigErrorKind = "version-out-of-range"
	SchemaViolation      ConfigErrorKind = "schema-violation"
	UnresolvedDescriptor ConfigErrorKind = "unresolved-descriptor"
	CapabilityMismatch   ConfigErrorKind = "capability-mismatch"
	CycleWithoutLateEdge ConfigErrorKind = "cycle-without-late-edge"
	DuplicatePluginName  ConfigErrorKind = "duplicate-plugin-name"
	NoEntryPlugin        ConfigErrorKind = "no-entry"
	BuildFailed          ConfigErrorKind = "build-failed"
)

// ConfigError reports a load-time failure scoped to a plugin record and
// (when applicable) a field within it, matching the FFI-facing
// (kind, plugin name, field path) shape of spec.md §7.
type ConfigError struct {
	Kind       ConfigErrorKind
	PluginName string
	Field      string
	Reason     string
	Err        error
}

func (e *ConfigError) Error() string {
	switch {
	case e.PluginName != "" && e.Field != "":
		return fmt.Sprintf("wire: %s: plugin %q field %q: %s", e.Kind, e.PluginName, e.Field, e.Reason)
	case e.PluginName != "":
		return fmt.Sprintf("wire: %s: plugin %q: %s", e.Kind, e.PluginName, e.Reason)
	default:
		return fmt.Sprintf("wire: %s: %s", e.Kind, e.Reason)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
