package valuemodel

import (
	"time"

	"github.com/gopcua/opcua/ua"

	"github.com/systerel/opcua-addrspace-core/statuscode"
)

// DataValue pairs a Variant with a status code and source/server timestamps
// (spec §3). Picosecond fields hold the sub-100ns remainder OPC UA's
// DateTime encoding can't carry, per Part 4.
type DataValue struct {
	Value                      *Variant
	Status                     ua.StatusCode
	SourceTimestamp            time.Time
	SourceTimestampPicoseconds uint16
	ServerTimestamp            time.Time
	ServerTimestampPicoseconds uint16
}

// NewGood builds a DataValue with Good status and the given value, stamped
// with the current UTC time as both source and server timestamp.
func NewGood(v *Variant) *DataValue {
	now := time.Now().UTC()
	return &DataValue{Value: v, Status: statuscode.Good, SourceTimestamp: now, ServerTimestamp: now}
}

// Copy returns a deep, independent copy (spec §4.3: Read* hands callers a
// copy, and WriteValue's rollback path needs an independent "previous
// value" snapshot).
func (dv *DataValue) Copy() *DataValue {
	if dv == nil {
		return nil
	}
	return &DataValue{
		Value:                      dv.Value.Copy(),
		Status:                     dv.Status,
		SourceTimestamp:            dv.SourceTimestamp,
		SourceTimestampPicoseconds: dv.SourceTimestampPicoseconds,
		ServerTimestamp:            dv.ServerTimestamp,
		ServerTimestampPicoseconds: dv.ServerTimestampPicoseconds,
	}
}

// Equals reports whether two DataValues carry structurally equal values,
// status and timestamps.
func (dv *DataValue) Equals(other *DataValue) bool {
	if dv == nil || other == nil {
		return dv == other
	}
	return dv.Value.Equals(other.Value) &&
		dv.Status == other.Status &&
		dv.SourceTimestamp.Equal(other.SourceTimestamp) &&
		dv.SourceTimestampPicoseconds == other.SourceTimestampPicoseconds &&
		dv.ServerTimestamp.Equal(other.ServerTimestamp) &&
		dv.ServerTimestampPicoseconds == other.ServerTimestampPicoseconds
}

// ClearServerTimestamp zeroes the server timestamp fields (used when
// TimestampsToReturn excludes the server timestamp).
func (dv *DataValue) ClearServerTimestamp() {
	dv.ServerTimestamp = time.Time{}
	dv.ServerTimestampPicoseconds = 0
}

// ClearSourceTimestamp zeroes the source timestamp fields.
func (dv *DataValue) ClearSourceTimestamp() {
	dv.SourceTimestamp = time.Time{}
	dv.SourceTimestampPicoseconds = 0
}
