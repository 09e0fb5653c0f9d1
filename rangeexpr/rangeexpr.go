// Package rangeexpr implements the OPC UA NumericRange grammar (spec §3/§4.1):
// an ordered list of one or more inclusive per-dimension index bounds, used
// to address a sub-slice of an array, matrix, or string/byte-string value.
package rangeexpr

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalid is returned for any syntactic or ordering violation.
var ErrInvalid = errors.New("rangeexpr: invalid numeric range")

// Bound is one dimension's inclusive [Low, High] index range. A bound parsed
// from a bare "n" (no colon) has Low == High and Single set.
type Bound struct {
	Low, High uint32
	Single    bool
}

// Range is a parsed NumericRange: one Bound per addressed dimension.
type Range []Bound

// Parse parses the grammar `bound(,bound)*` where `bound := u32 | u32:u32`
// and the second operand of a colon-bound must be >= the first. Whitespace
// is not permitted, matching the wire-level string form used by OPC UA
// clients.
func Parse(s string) (Range, error) {
	if s == "" {
		return nil, ErrInvalid
	}
	parts := strings.Split(s, ",")
	out := make(Range, 0, len(parts))
	for _, p := range parts {
		b, err := parseBound(p)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func parseBound(s string) (Bound, error) {
	if s == "" {
		return Bound{}, ErrInvalid
	}
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return Bound{}, ErrInvalid
		}
		return Bound{Low: uint32(n), High: uint32(n), Single: true}, nil
	}
	lowStr, highStr := s[:idx], s[idx+1:]
	if lowStr == "" || highStr == "" {
		return Bound{}, ErrInvalid
	}
	low, err := strconv.ParseUint(lowStr, 10, 32)
	if err != nil {
		return Bound{}, ErrInvalid
	}
	high, err := strconv.ParseUint(highStr, 10, 32)
	if err != nil {
		return Bound{}, ErrInvalid
	}
	if high < low {
		return Bound{}, ErrInvalid
	}
	return Bound{Low: uint32(low), High: uint32(high)}, nil
}

// String renders the canonical textual form; Parse(r.String()) round-trips
// for every Range produced by Parse.
func (r Range) String() string {
	var b strings.Builder
	for i, bound := range r {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(bound.Low), 10))
		if !bound.Single {
			b.WriteByte(':')
			b.WriteString(strconv.FormatUint(uint64(bound.High), 10))
		}
	}
	return b.String()
}

// Dimensions returns the number of bounds (dimensions) the range addresses.
func (r Range) Dimensions() int { return len(r) }

// Len returns the number of elements the i-th bound selects.
func (b Bound) Len() uint32 { return b.High - b.Low + 1 }

// Applicable reports whether the range is structurally applicable to a
// value of the given rank, per spec §4.1 Variant::has_range:
//   - rank dimensions must equal len(r), or
//   - rank+1 dimensions when the trailing bound addresses characters/bytes
//     of a scalar String/ByteString (scalarStringOrBytes == true).
func (r Range) Applicable(rank int, scalarStringOrBytes bool) bool {
	if rank < 0 {
		rank = 0
	}
	if len(r) == rank {
		return true
	}
	if scalarStringOrBytes && len(r) == rank+1 {
		return true
	}
	return false
}
