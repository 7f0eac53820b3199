//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: other_examples katzenpost cborplugin client.go (CBOR as the
// self-describing wire encoding for plugin-boundary parameter blobs).
//

package plugin

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// FieldKind names the semantic type of one parameter field for schema
// documentation and validation.
type FieldKind int

const (
	FieldInt FieldKind = iota
	FieldString
	FieldBytes
	FieldBool
	FieldArray
	FieldMap
)

// String implements [fmt.Stringer].
func (k FieldKind) String() string {
	switch k {
	case FieldInt:
		return "int"
	case FieldString:
		return "string"
	case FieldBytes:
		return "bytes"
	case FieldBool:
		return "bool"
	case FieldArray:
		return "array"
	case FieldMap:
		return "map"
	default:
		return "unknown"
	}
}

// FieldSpec declares one field of a [ParamSchema].
type FieldSpec struct {
	// Name is the CBOR map key.
	Name string

	// Kind is the expected semantic type.
	Kind FieldKind

	// Required, when true, makes decode fail if the field is absent.
	Required bool
}

// ParamSchema declaratively describes the shape of a factory's parameter
// blob: field names, semantic types, and which are required. It is
// intentionally not a full JSON-Schema-style grammar — just enough
// structure for [ParamSchema.Decode] to give actionable
// [SchemaError] feedback, matching the "declarative (field names,
// semantic types, required/optional)" wording of spec.md §4.2.
type ParamSchema struct {
	Fields []FieldSpec
}

// SchemaError reports a single field-scoped validation failure, matching
// the FFI-facing `SchemaError{field,reason}` shape of spec.md §6.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("plugin: schema error: field %q: %s", e.Field, e.Reason)
}

// Decode parses raw (a CBOR-encoded map) against the schema, returning the
// decoded fields as a generic map and validating required fields and kinds.
//
// Decode never performs I/O: it is the synchronous, side-effect-free check
// both the loader's parse step and [Factory.Verify] rely on.
func (s *ParamSchema) Decode(raw []byte) (map[string]any, error) {
	var fields map[string]any
	if err := cbor.Unmarshal(raw, &fields); err != nil {
		return nil, &SchemaError{Field: "", Reason: fmt.Sprintf("malformed param blob: %v", err)}
	}

	for _, f := range s.Fields {
		v, ok := fields[f.Name]
		if !ok {
			if f.Required {
				return nil, &SchemaError{Field: f.Name, Reason: "required field missing"}
			}
			continue
		}
		if err := checkKind(v, f.Kind); err != nil {
			return nil, &SchemaError{Field: f.Name, Reason: err.Error()}
		}
	}
	return fields, nil
}

func checkKind(v any, kind FieldKind) error {
	switch kind {
	case FieldInt:
		switch v.(type) {
		case int64, uint64, int, uint:
			return nil
		}
		return fmt.Errorf("expected int, got %T", v)
	case FieldString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
	case FieldBytes:
		if _, ok := v.([]byte); !ok {
			return fmt.Errorf("expected bytes, got %T", v)
		}
	case FieldBool:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
	case FieldArray:
		if _, ok := v.([]any); !ok {
			return fmt.Errorf("expected array, got %T", v)
		}
	case FieldMap:
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("expected map, got %T", v)
		}
	}
	return nil
}

// EncodeParam marshals an arbitrary map into the CBOR param blob format
// used by [Record.Param]. Provided for tests and for callers
// constructing profiles programmatically rather than loading them from the
// on-disk store (out of scope here, per spec.md §1).
func EncodeParam(fields map[string]any) ([]byte, error) {
	return cbor.Marshal(fields)
}
