// Package access implements the transactional address-space façade (spec
// §4.3, C3): ReadAttribute/ReadValue/WriteValue/AddNode/DeleteNode/Browse/
// TranslateBrowsePath, plus the operation log the dispatcher later drains.
package access

import "github.com/systerel/opcua-addrspace-core/valuemodel"

// AttributeID is the Part 6 AttributeId enumeration.
type AttributeID uint32

const (
	AttrNodeID                 AttributeID = 1
	AttrNodeClass               AttributeID = 2
	AttrBrowseName              AttributeID = 3
	AttrDisplayName             AttributeID = 4
	AttrDescription             AttributeID = 5
	AttrWriteMask               AttributeID = 6
	AttrUserWriteMask           AttributeID = 7
	AttrIsAbstract              AttributeID = 8
	AttrSymmetric               AttributeID = 9
	AttrInverseName             AttributeID = 10
	AttrContainsNoLoops         AttributeID = 11
	AttrEventNotifier           AttributeID = 12
	AttrValue                   AttributeID = 13
	AttrDataType                AttributeID = 14
	AttrValueRank               AttributeID = 15
	AttrArrayDimensions         AttributeID = 16
	AttrAccessLevel             AttributeID = 17
	AttrUserAccessLevel         AttributeID = 18
	AttrMinimumSamplingInterval AttributeID = 19
	AttrHistorizing             AttributeID = 20
	AttrExecutable              AttributeID = 21
	AttrUserExecutable          AttributeID = 22
)

// TimestampsToReturn selects which DataValue timestamps a caller wants
// (spec §4.3/§4.6).
type TimestampsToReturn int

const (
	TimestampsSource TimestampsToReturn = iota
	TimestampsServer
	TimestampsBoth
	TimestampsNeither
)

// Apply clears the timestamp fields dv doesn't want, per spec §4.6.
func (t TimestampsToReturn) Apply(dv *valuemodel.DataValue) {
	switch t {
	case TimestampsSource:
		dv.ClearServerTimestamp()
	case TimestampsServer:
		dv.ClearSourceTimestamp()
	case TimestampsNeither:
		dv.ClearServerTimestamp()
		dv.ClearSourceTimestamp()
	}
}
