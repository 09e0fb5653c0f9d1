// Package statuscode names the OPC UA status codes this core returns.
//
// The address-space and monitored-item service operations of this module
// return a ua.StatusCode rather than a Go error (spec §6/§7): Good (0) on
// success, a Bad_* code on a recoverable failure, or an Uncertain_* code when
// the operation succeeded with caveats. Lower-level helpers such as
// rangeexpr.Parse and nodeset.Store.Append return a Go error.
package statuscode

import "github.com/gopcua/opcua/ua"

// Severity occupies the top two bits of a status code.
const severityMask = 0xC0000000

const (
	severityGood      = 0x00000000
	severityUncertain = 0x40000000
	severityBad       = 0x80000000
)

// Good is the zero status code: no error, no caveats.
const Good ua.StatusCode = ua.StatusCode(severityGood)

// Bad_* codes this core can return. Subcode values follow the shape of the
// real OPC UA status code table (severity in the top bits, a stable
// per-name subcode below it) without claiming byte-for-byte identity with
// the official Opc.Ua.StatusCodes table — this core's own wire encoding of
// a StatusCode is what has to round-trip, not interop with a reference
// stack that isn't part of this exercise.
const (
	BadNodeIDUnknown                  ua.StatusCode = severityBad | 0x00340000
	BadNodeIDExists                   ua.StatusCode = severityBad | 0x00330000
	BadNodeIDInvalid                  ua.StatusCode = severityBad | 0x00320000
	BadParentNodeIDInvalid            ua.StatusCode = severityBad | 0x00620000
	BadReferenceNotAllowed            ua.StatusCode = severityBad | 0x00640000
	BadTypeDefinitionInvalid          ua.StatusCode = severityBad | 0x01C90000
	BadBrowseNameDuplicated           ua.StatusCode = severityBad | 0x00660000
	BadBrowseNameInvalid              ua.StatusCode = severityBad | 0x00650000
	BadNodeAttributesInvalid          ua.StatusCode = severityBad | 0x00630000
	BadWriteNotSupported              ua.StatusCode = severityBad | 0x01A70000
	BadAttributeIDInvalid             ua.StatusCode = severityBad | 0x00350000
	BadIndexRangeInvalid              ua.StatusCode = severityBad | 0x00360000
	BadIndexRangeNoData               ua.StatusCode = severityBad | 0x00370000
	BadFilterNotAllowed               ua.StatusCode = severityBad | 0x01A50000
	BadFilterOperandCountMismatch     ua.StatusCode = severityBad | 0x01C30000
	BadFilterOperandInvalid           ua.StatusCode = severityBad | 0x00490000
	BadFilterElementInvalid           ua.StatusCode = severityBad | 0x01C40000
	BadFilterLiteralInvalid           ua.StatusCode = severityBad | 0x01C50000
	BadFilterOperatorUnsupported      ua.StatusCode = severityBad | 0x01C20000
	BadMonitoredItemFilterUnsupported ua.StatusCode = severityBad | 0x00440000
	BadMonitoredItemFilterInvalid     ua.StatusCode = severityBad | 0x00430000
	BadMonitoredItemIDInvalid         ua.StatusCode = severityBad | 0x00420000
	BadMonitoringModeInvalid          ua.StatusCode = severityBad | 0x00410000
	BadReferenceTypeIDInvalid         ua.StatusCode = severityBad | 0x00650001
	BadBrowseDirectionInvalid         ua.StatusCode = severityBad | 0x00660001
	BadNoMatch                        ua.StatusCode = severityBad | 0x01A30000
	BadServiceUnsupported             ua.StatusCode = severityBad | 0x000D0000
	BadNotImplemented                 ua.StatusCode = severityBad | 0x00400000
	BadOutOfMemory                    ua.StatusCode = severityBad | 0x000B0000
	BadUserAccessDenied               ua.StatusCode = severityBad | 0x01BF0000
	BadInvalidArgument                ua.StatusCode = severityBad | 0x00080000
	BadOutOfRange                     ua.StatusCode = severityBad | 0x003C0000
	BadTypeMismatch                   ua.StatusCode = severityBad | 0x00690000
	BadLocaleNotSupported             ua.StatusCode = severityBad | 0x00AD0000
	BadNodeIDRejected                 ua.StatusCode = severityBad | 0x01BC0000
	BadEventNotAcknowledgeable        ua.StatusCode = severityBad | 0x00BB0000
)

// Uncertain_* codes.
const (
	UncertainInitialValue         ua.StatusCode = severityUncertain | 0x00960000
	UncertainReferenceNotDeleted  ua.StatusCode = severityUncertain | 0x00970000
)

// IsGood reports whether code carries no error (severity bits == Good).
func IsGood(code ua.StatusCode) bool {
	return uint32(code)&severityMask == severityGood
}

// IsGoodOrUncertain reports whether code is Good or Uncertain (not Bad).
func IsGoodOrUncertain(code ua.StatusCode) bool {
	return uint32(code)&severityMask != severityBad
}

// IsBad reports whether code carries an unrecoverable error.
func IsBad(code ua.StatusCode) bool {
	return uint32(code)&severityMask == severityBad
}
