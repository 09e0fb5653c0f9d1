// Package filter implements the filter engine (spec §4.5, C5):
// DataChangeFilter validation, EventFilter validation, and per-publish
// event field extraction.
package filter

import (
	"github.com/gopcua/opcua/ua"

	"github.com/systerel/opcua-addrspace-core/nodeset"
	"github.com/systerel/opcua-addrspace-core/statuscode"
	"github.com/systerel/opcua-addrspace-core/valuemodel"
)

// DeadbandType mirrors Part 8's DeadbandType enumeration.
type DeadbandType int

const (
	DeadbandNone DeadbandType = iota
	DeadbandAbsolute
	DeadbandPercent
)

// EURange is the (Low, High) pair stored in an EURange property's
// ExtensionObject value (Part 8 Range structure).
type EURange struct {
	Low  float64
	High float64
}

// CheckDataChangeFilter validates a DataChangeFilter against node and
// returns the resolved absolute deadband (0 for DeadbandNone) or an error
// status (spec §4.5).
func CheckDataChangeFilter(store *nodeset.Store, node *nodeset.Node, deadbandType DeadbandType, deadbandValue float64) (float64, ua.StatusCode) {
	if node.Variable == nil {
		return 0, statuscode.BadFilterNotAllowed
	}
	switch deadbandType {
	case DeadbandNone:
		return 0, statuscode.Good
	case DeadbandAbsolute:
		dt := node.Variable.DataType
		builtinNumeric := dt != nil && dt.Namespace() == 0 && valuemodel.BuiltInType(dt.IntID()).IsNumeric()
		if !builtinNumeric && !store.IsTypeOrSubtype(dt, ua.NewNumericNodeID(0, dataTypeNumber), nil) {
			return 0, statuscode.BadFilterNotAllowed
		}
		return deadbandValue, statuscode.Good
	case DeadbandPercent:
		eu, ok := findEURange(store, node)
		if !ok || eu.High < eu.Low {
			return 0, statuscode.BadFilterNotAllowed
		}
		return (deadbandValue / 100) * (eu.High - eu.Low), statuscode.Good
	default:
		return 0, statuscode.BadFilterNotAllowed
	}
}

// dataTypeNumber is the abstract Number DataType NodeId (ns0, Part 6).
const dataTypeNumber = 26

// findEURange looks up node's EURange property (spec §4.5: a Property
// named EURange in namespace 0 whose Value is an ExtensionObject of type
// Range).
func findEURange(store *nodeset.Store, node *nodeset.Node) (EURange, bool) {
	for _, ref := range node.References {
		if ref.IsInverse || !ref.IsLocal() {
			continue
		}
		if !store.IsTypeOrSubtype(ref.TypeID, ua.NewNumericNodeID(0, nodeset.RefHasProperty), nil) {
			continue
		}
		target := store.Get(ref.Target.NodeID)
		if target == nil || target.BrowseName.NamespaceIndex != 0 || target.BrowseName.Name != "EURange" {
			continue
		}
		if target.Variable == nil || target.Variable.Value == nil || target.Variable.Value.Value == nil {
			continue
		}
		if eu, ok := target.Variable.Value.Value.ScalarValue().(EURange); ok {
			return eu, true
		}
	}
	return EURange{}, false
}
