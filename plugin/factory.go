//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop config.go (constructor-with-defaults
// pattern) applied to factory construction instead of Func configuration.
//

package plugin

import (
	"fmt"

	"github.com/ytflowcore/ytflowcore/kernel"
)

// Instance is a live plugin produced by a [Factory.Build] call. The loader
// holds it only long enough to collect its [Instance.AccessPoints] and,
// for factories with late descriptors, to invoke [Instance.BindLate]; the
// resulting wire.LoadedProfile holds it for the plugin's whole lifetime
// and calls [Instance.Close] during teardown.
type Instance interface {
	// AccessPoints returns the live access points this instance exposes,
	// matching the [Factory.AccessPoints] declaration.
	AccessPoints() []AccessPoint

	// BindLate is called once, after every plugin in the profile has
	// been constructed, with the resolved handles for this instance's
	// late descriptors (spec.md §4.3 step 5). Instances with no late
	// descriptors may implement this as a no-op.
	BindLate(bound map[string]AccessPoint) error

	// Close releases any resources (sockets, goroutines, pooled
	// buffers) the instance holds. Called in reverse dependency order
	// during profile teardown or load rollback.
	Close() error
}

// FactoryError reports a record-scoped failure while building a plugin,
// matching spec.md §4.3's "abort with a record-scoped error".
type FactoryError struct {
	PluginName string
	Reason     string
	Err        error
}

func (e *FactoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("plugin: %s: %s: %v", e.PluginName, e.Reason, e.Err)
	}
	return fmt.Sprintf("plugin: %s: %s", e.PluginName, e.Reason)
}

func (e *FactoryError) Unwrap() error {
	return e.Err
}

// Factory is a compile-time registry entry (spec.md §4.2): it declares a
// parameter schema, the descriptors it requires, the access points it
// exposes, and builds live [Instance] values from validated input.
type Factory interface {
	// Kind returns the string tag this factory is registered under.
	Kind() string

	// VersionRange returns the inclusive [min, max] versions this
	// factory accepts. Every in-range blob is decoded against the one
	// [ParamSchema]; no version-specific migration step runs.
	VersionRange() (min, max uint16)

	// ParamSchema returns the declarative schema for this factory's
	// parameter blob.
	ParamSchema() *ParamSchema

	// RequiredDescriptors returns the descriptor slots this factory's
	// instances require.
	RequiredDescriptors() []DescriptorSpec

	// ExposedAccessPoints returns the access points this factory's
	// instances expose, before any instance exists — used by the
	// loader's name-resolution step to type-check descriptor
	// references before instantiation begins.
	ExposedAccessPoints() []AccessPointSpec

	// Verify performs schema validation and cheap structural checks on
	// param without any I/O (no sockets, no files) — spec.md §4.2,
	// used by an external editor before save.
	Verify(version uint16, param []byte) error

	// Build constructs a live [Instance] from decoded parameters and
	// the already-resolved strict descriptors (descriptors marked Late
	// are not yet available and must not be dereferenced from within
	// Build; they arrive later via [Instance.BindLate]). rt is the
	// hosting process's kernel, giving the instance access to the
	// shared buffer pool, connection table, and flow observer
	// (spec.md §4.4); rt may be nil in tests that don't need it.
	Build(name string, version uint16, param []byte, bound map[string]AccessPoint, rt *kernel.Runtime) (Instance, error)
}

// BaseFactory implements the version-range and verify boilerplate shared by
// every factory, so concrete factories only need to embed it and implement
// Kind/ParamSchema/RequiredDescriptors/ExposedAccessPoints/Build.
type BaseFactory struct {
	KindName string
	MinVer   uint16
	MaxVer   uint16
	Schema   *ParamSchema
	Descs    []DescriptorSpec
	APs      []AccessPointSpec
}

func (b *BaseFactory) Kind() string                           { return b.KindName }
func (b *BaseFactory) VersionRange() (uint16, uint16)         { return b.MinVer, b.MaxVer }
func (b *BaseFactory) ParamSchema() *ParamSchema              { return b.Schema }
func (b *BaseFactory) RequiredDescriptors() []DescriptorSpec  { return b.Descs }
func (b *BaseFactory) ExposedAccessPoints() []AccessPointSpec { return b.APs }

// Verify implements the schema-only portion of [Factory.Verify]; factories
// with additional cheap invariants should call this from their own Verify
// and add further checks afterward.
func (b *BaseFactory) Verify(version uint16, param []byte) error {
	if version < b.MinVer || version > b.MaxVer {
		return fmt.Errorf("plugin: %s: version %d out of range [%d,%d]", b.KindName, version, b.MinVer, b.MaxVer)
	}
	_, err := b.Schema.Decode(param)
	return err
}
