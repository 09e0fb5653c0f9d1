package valuemodel

import (
	"fmt"
	"math"

	"github.com/systerel/opcua-addrspace-core/rangeexpr"
)

// RangeStatus is the outcome of HasRange (spec §4.1).
type RangeStatus int

const (
	// RangeInvalid means the range's dimensionality doesn't match v's rank
	// (and, for scalar String/ByteString, rank+1).
	RangeInvalid RangeStatus = iota
	// RangeOK means the range is structurally applicable and its bounds
	// fit within v's current data.
	RangeOK
	// RangeNoData means the range is structurally applicable but its
	// bounds exceed v's current data — only reported on read.
	RangeNoData
)

// HasRange reports whether r is applicable to v (spec §4.1). forWrite
// relaxes out-of-bounds indices from RangeNoData to RangeOK: a write may
// legitimately address a position the stored value doesn't yet have data
// for.
func HasRange(v *Variant, r rangeexpr.Range, forWrite bool) RangeStatus {
	scalarStrBytes := v.shape == ShapeScalar && v.typ.IsStringOrBytes()
	if !r.Applicable(v.Rank(), scalarStrBytes) {
		return RangeInvalid
	}
	dims := v.dims
	limit := len(dims)
	if scalarStrBytes && len(r) == v.Rank()+1 {
		// trailing bound addresses characters/bytes of the scalar; no
		// ArrayDimensions entry exists for it, checked separately below.
		limit = 0
	}
	for i := 0; i < limit && i < len(r); i++ {
		if r[i].High >= dims[i] {
			if forWrite {
				continue
			}
			return RangeNoData
		}
	}
	if scalarStrBytes && len(r) == v.Rank()+1 {
		trailing := r[len(r)-1]
		n, ok := scalarLen(v.ScalarValue())
		if ok && trailing.High >= uint32(n) && !forWrite {
			return RangeNoData
		}
	}
	return RangeOK
}

func scalarLen(v any) (int, bool) {
	switch s := v.(type) {
	case string:
		return len(s), true
	case []byte:
		return len(s), true
	default:
		return 0, false
	}
}

// indices enumerates, in row-major order, the linear indices of v's
// elements selected by r (array/matrix case only — r.Dimensions() ==
// v.Rank()).
func indices(dims []uint32, r rangeexpr.Range) ([]int, error) {
	if len(dims) == 0 {
		return []int{0}, nil
	}
	strides := make([]int, len(dims))
	strides[len(dims)-1] = 1
	for i := len(dims) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * int(dims[i+1])
	}
	var out []int
	var rec func(dim int, base int)
	rec = func(dim int, base int) {
		if dim == len(dims) {
			out = append(out, base)
			return
		}
		b := r[dim]
		for idx := b.Low; idx <= b.High; idx++ {
			rec(dim+1, base+int(idx)*strides[dim])
		}
	}
	rec(0, 0)
	return out, nil
}

// GetRange returns a new Variant holding the sub-slice of src selected by r
// (spec §4.1 Variant::get_range). For a scalar String/ByteString addressed
// by a single trailing bound, it returns a scalar substring/subslice
// instead of an array.
func GetRange(src *Variant, r rangeexpr.Range) (*Variant, error) {
	if HasRange(src, r, false) == RangeInvalid {
		return nil, fmt.Errorf("valuemodel: range %s not applicable to rank %d", r, src.Rank())
	}
	if src.shape == ShapeScalar && src.typ.IsStringOrBytes() && len(r) == 1 {
		return getRangeScalarString(src, r[0])
	}
	idxs, err := indices(src.dims, r)
	if err != nil {
		return nil, err
	}
	elems := make([]any, len(idxs))
	for i, idx := range idxs {
		if idx < 0 || idx >= len(src.elems) {
			return nil, fmt.Errorf("valuemodel: range %s has no data on rank %d", r, src.Rank())
		}
		elems[i] = src.elems[idx]
	}
	dims := make([]uint32, len(r))
	for i, b := range r {
		dims[i] = b.Len()
	}
	if len(dims) == 1 {
		return NewArray(src.typ, elems), nil
	}
	return NewMatrix(src.typ, dims, elems)
}

func getRangeScalarString(src *Variant, b rangeexpr.Bound) (*Variant, error) {
	switch s := src.ScalarValue().(type) {
	case string:
		if int(b.High) >= len(s) {
			return nil, fmt.Errorf("valuemodel: range has no data")
		}
		return NewScalar(src.typ, s[b.Low:b.High+1]), nil
	case []byte:
		if int(b.High) >= len(s) {
			return nil, fmt.Errorf("valuemodel: range has no data")
		}
		out := make([]byte, b.Len())
		copy(out, s[b.Low:b.High+1])
		return NewScalar(src.typ, out), nil
	default:
		return nil, fmt.Errorf("valuemodel: scalar range on non string/bytestring value")
	}
}

// SetRange overwrites the sub-slice of dst selected by r with src's
// elements (spec §4.1 Variant::set_range). src's element count must match
// the range's selection size.
func SetRange(dst *Variant, src *Variant, r rangeexpr.Range) error {
	if HasRange(dst, r, true) == RangeInvalid {
		return fmt.Errorf("valuemodel: range %s not applicable to rank %d", r, dst.Rank())
	}
	if dst.shape == ShapeScalar && dst.typ.IsStringOrBytes() && len(r) == 1 {
		return setRangeScalarString(dst, src, r[0])
	}
	idxs, err := indices(dst.dims, r)
	if err != nil {
		return err
	}
	if len(idxs) != src.Len() {
		return fmt.Errorf("valuemodel: range %s selects %d elements, source has %d", r, len(idxs), src.Len())
	}
	for i, idx := range idxs {
		for idx >= len(dst.elems) {
			dst.elems = append(dst.elems, nil)
		}
		dst.elems[idx] = src.elems[i]
	}
	return nil
}

func setRangeScalarString(dst *Variant, src *Variant, b rangeexpr.Bound) error {
	switch cur := dst.ScalarValue().(type) {
	case string:
		repl, ok := src.ScalarValue().(string)
		if !ok || uint32(len(repl)) != b.Len() {
			return fmt.Errorf("valuemodel: replacement length mismatch for range %s", rangeexpr.Range{b})
		}
		need := int(b.High) + 1
		buf := []byte(cur)
		for len(buf) < need {
			buf = append(buf, 0)
		}
		copy(buf[b.Low:b.High+1], repl)
		dst.elems[0] = string(buf)
		return nil
	case []byte:
		repl, ok := src.ScalarValue().([]byte)
		if !ok || uint32(len(repl)) != b.Len() {
			return fmt.Errorf("valuemodel: replacement length mismatch for range %s", rangeexpr.Range{b})
		}
		need := int(b.High) + 1
		for len(cur) < need {
			cur = append(cur, 0)
		}
		copy(cur[b.Low:b.High+1], repl)
		dst.elems[0] = cur
		return nil
	default:
		return fmt.Errorf("valuemodel: scalar range write on non string/bytestring value")
	}
}

// ComparePredicate compares two elements of the given built-in type,
// returning -1, 0 or +1. ctx carries predicate-specific state (e.g. a
// deadband threshold).
type ComparePredicate func(ctx any, t BuiltInType, a, b any) (int, error)

// DefaultCompare compares two elements for plain ordering: numeric types
// compare by value, everything else by formatted representation equality
// (0) or inequality (treated as -1, matching "differs" without implying an
// order OPC UA doesn't define for that type).
func DefaultCompare(_ any, t BuiltInType, a, b any) (int, error) {
	if t.IsNumeric() {
		af, aok := widen(t, a)
		bf, bok := widen(t, b)
		if !aok || !bok {
			return 0, fmt.Errorf("valuemodel: cannot widen %v for comparison", t)
		}
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if elemEquals(a, b) {
		return 0, nil
	}
	return -1, nil
}

// CompareRange pairwise-compares the elements of a and b selected by r
// using cmp, returning the first non-zero result or 0 if every pair
// compares equal (spec §4.1 compare_range / compare_custom_range).
func CompareRange(ctx any, cmp ComparePredicate, a, b *Variant, r rangeexpr.Range) (int, error) {
	if a.typ != b.typ {
		return 0, fmt.Errorf("valuemodel: compare across different built-in types")
	}
	var idxs []int
	var err error
	if r == nil {
		n := a.Len()
		if b.Len() < n {
			n = b.Len()
		}
		idxs = make([]int, n)
		for i := range idxs {
			idxs[i] = i
		}
	} else {
		idxs, err = indices(a.dims, r)
		if err != nil {
			return 0, err
		}
	}
	for _, idx := range idxs {
		if idx >= a.Len() || idx >= b.Len() {
			return 0, fmt.Errorf("valuemodel: compare range out of data")
		}
		c, err := cmp(ctx, a.typ, a.elems[idx], b.elems[idx])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

// DeadbandCompare is the data-change deadband predicate (spec §4.1): numeric
// types are widened to float64, the signed difference (a-b) is computed,
// and the result is 0 when |diff| <= deadband (ctx), else the sign of
// (a-b). NaN compares equal to NaN. Non-numeric built-in types error.
func DeadbandCompare(ctx any, t BuiltInType, a, b any) (int, error) {
	deadband, _ := ctx.(float64)
	if !t.IsNumeric() {
		return 0, fmt.Errorf("valuemodel: deadband comparison on non-numeric type %v", t)
	}
	af, aok := widen(t, a)
	bf, bok := widen(t, b)
	if !aok || !bok {
		return 0, fmt.Errorf("valuemodel: cannot widen %v for deadband comparison", t)
	}
	if math.IsNaN(af) && math.IsNaN(bf) {
		return 0, nil
	}
	diff := af - bf
	if math.Abs(diff) <= deadband {
		return 0, nil
	}
	if diff < 0 {
		return -1, nil
	}
	return 1, nil
}

func widen(t BuiltInType, v any) (float64, bool) {
	switch x := v.(type) {
	case int8:
		return float64(x), true
	case uint8:
		return float64(x), true
	case int16:
		return float64(x), true
	case uint16:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
