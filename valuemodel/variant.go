package valuemodel

import "fmt"

// Shape is one of the three forms a Variant may take (spec §3).
type Shape int

const (
	ShapeScalar Shape = iota
	ShapeArray
	ShapeMatrix
)

// Variant is a dynamically-typed value: a single value, a 1-D array, or a
// rectangular matrix of a built-in type. Arrays and matrices share a single
// linearised (row-major) element slice; Dims is empty for a scalar, holds
// one length for an array, and one length per dimension for a matrix.
//
// Invariant (spec §3): Shape, Type and len(Elems)/Dims stay mutually
// consistent — enforced by the constructors below rather than by exported
// field mutation, so Elems/Dims/Type/Shape are kept unexported and reached
// only through the documented accessors.
type Variant struct {
	typ   BuiltInType
	shape Shape
	dims  []uint32
	elems []any
}

// NewScalar builds a single-valued Variant.
func NewScalar(t BuiltInType, v any) *Variant {
	return &Variant{typ: t, shape: ShapeScalar, elems: []any{v}}
}

// NewArray builds a 1-D array Variant from its linear elements.
func NewArray(t BuiltInType, elems []any) *Variant {
	return &Variant{typ: t, shape: ShapeArray, dims: []uint32{uint32(len(elems))}, elems: elems}
}

// NewMatrix builds a rectangular matrix Variant. dims must multiply out to
// len(elems); elems is in row-major order.
func NewMatrix(t BuiltInType, dims []uint32, elems []any) (*Variant, error) {
	n := uint32(1)
	for _, d := range dims {
		n *= d
	}
	if int(n) != len(elems) {
		return nil, fmt.Errorf("valuemodel: matrix dimensions %v do not match %d elements", dims, len(elems))
	}
	d := make([]uint32, len(dims))
	copy(d, dims)
	return &Variant{typ: t, shape: ShapeMatrix, dims: d, elems: elems}, nil
}

// Type returns the built-in type tag.
func (v *Variant) Type() BuiltInType { return v.typ }

// Shape returns the variant's shape.
func (v *Variant) Shape() Shape { return v.shape }

// Dims returns the ArrayDimensions (nil for a scalar).
func (v *Variant) Dims() []uint32 {
	if len(v.dims) == 0 {
		return nil
	}
	out := make([]uint32, len(v.dims))
	copy(out, v.dims)
	return out
}

// Rank returns the number of dimensions: 0 for scalar, 1 for array, len(Dims)
// for matrix.
func (v *Variant) Rank() int { return len(v.dims) }

// Len returns the number of linearised elements.
func (v *Variant) Len() int { return len(v.elems) }

// ScalarValue returns the single value of a scalar Variant.
func (v *Variant) ScalarValue() any {
	if v.shape != ShapeScalar || len(v.elems) == 0 {
		return nil
	}
	return v.elems[0]
}

// GetArrayValue returns a view of the i-th linearised element of an array or
// matrix Variant (spec §4.1). Matrix linearisation is row-major over Dims.
func (v *Variant) GetArrayValue(i int) (any, error) {
	if v.shape == ShapeScalar {
		return nil, fmt.Errorf("valuemodel: GetArrayValue on a scalar variant")
	}
	if i < 0 || i >= len(v.elems) {
		return nil, fmt.Errorf("valuemodel: index %d out of range [0,%d)", i, len(v.elems))
	}
	return v.elems[i], nil
}

// Copy returns a deep, independent copy of v (spec §4.3: ReadAttribute and
// ReadValue must hand callers a copy, never the stored value).
func (v *Variant) Copy() *Variant {
	if v == nil {
		return nil
	}
	elems := make([]any, len(v.elems))
	copy(elems, v.elems)
	var dims []uint32
	if len(v.dims) > 0 {
		dims = make([]uint32, len(v.dims))
		copy(dims, v.dims)
	}
	return &Variant{typ: v.typ, shape: v.shape, dims: dims, elems: elems}
}

// Equals reports structural equality: same type, shape, dimensions and
// elements (byte slices compare byte by byte; every other element compares
// by its %#v fmt formatting, which is sufficient for this core's own
// round-trip tests).
func (v *Variant) Equals(other *Variant) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.typ != other.typ || v.shape != other.shape || len(v.elems) != len(other.elems) {
		return false
	}
	for i := range v.dims {
		if v.dims[i] != other.dims[i] {
			return false
		}
	}
	for i := range v.elems {
		if !elemEquals(v.elems[i], other.elems[i]) {
			return false
		}
	}
	return true
}

func elemEquals(a, b any) bool {
	if ab, ok := a.([]byte); ok {
		bb, ok2 := b.([]byte)
		if !ok2 || len(ab) != len(bb) {
			return false
		}
		for i := range ab {
			if ab[i] != bb[i] {
				return false
			}
		}
		return true
	}
	return fmt.Sprintf("%#v", a) == fmt.Sprintf("%#v", b)
}

// GetDataType returns the canonical DataType NodeId (namespace 0 numeric id)
// for v's built-in type (spec §4.1). An ExtensionObject variant returns the
// abstract Structure type; callers with an encoding-id lookup (§4.2
// nodeset.Store.GetEncodingDataType) may refine this to the concrete structured type.
func (v *Variant) GetDataType() uint32 {
	if v.typ == TypeExtensionObject {
		return DataTypeStructure
	}
	return uint32(v.typ)
}
