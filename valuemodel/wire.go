package valuemodel

import (
	"fmt"

	"github.com/gopcua/opcua/ua"
)

// ToWire converts a scalar or 1-D array Variant into gopcua's wire
// representation for handoff to the (out-of-scope, per spec §1) transport
// layer. Matrices are a transport/chunking concern this core doesn't own;
// ToWire reports an error for them rather than guessing at an encoding.
func (v *Variant) ToWire() (*ua.Variant, error) {
	switch v.shape {
	case ShapeScalar:
		return ua.NewVariant(v.elems[0])
	case ShapeArray:
		return ua.NewVariant(v.elems)
	default:
		return nil, fmt.Errorf("valuemodel: matrix variants are encoded by the transport layer, not ToWire")
	}
}

// FromWire builds a scalar Variant of built-in type t from a decoded wire
// Variant's value.
func FromWire(t BuiltInType, w *ua.Variant) *Variant {
	return NewScalar(t, w.Value())
}
