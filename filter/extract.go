package filter

import (
	"time"

	"github.com/gopcua/opcua/ua"

	"github.com/systerel/opcua-addrspace-core/access"
	"github.com/systerel/opcua-addrspace-core/nodeset"
	"github.com/systerel/opcua-addrspace-core/rangeexpr"
	"github.com/systerel/opcua-addrspace-core/statuscode"
	"github.com/systerel/opcua-addrspace-core/valuemodel"
)

// EventInstance is a materialised event ready for select-clause extraction
// (spec §4.5 "event field extraction"): its declared type, source node,
// and every field value keyed by joined browse path.
type EventInstance struct {
	TypeDefinitionID *ua.NodeID
	SourceNode       *ua.NodeID
	Fields           map[string]*valuemodel.DataValue
}

// ExtractField implements spec §4.5's per-published-event select-clause
// evaluation. authorized gates the event-notifier attribute check;
// preferredLocales drives LocalizedText reduction; ttr clears the
// timestamp fields the subscription didn't ask for.
func ExtractField(store *nodeset.Store, ev *EventInstance, clause SelectClause, authorized bool, preferredLocales []string, ttr access.TimestampsToReturn) *valuemodel.DataValue {
	if !authorized {
		return &valuemodel.DataValue{
			Value:  valuemodel.NewScalar(valuemodel.TypeStatusCode, statuscode.BadUserAccessDenied),
			Status: statuscode.BadUserAccessDenied,
		}
	}
	if clause.AttrID == access.AttrNodeID && len(clause.BrowsePath) == 0 {
		return valuemodel.NewGood(valuemodel.NewScalar(valuemodel.TypeNodeID, ev.SourceNode))
	}

	typeID := clause.TypeDefinitionID
	if typeID == nil {
		typeID = ua.NewNumericNodeID(0, nodeset.ObjTypeBaseEventType)
	}
	if !store.IsTypeOrSubtype(ev.TypeDefinitionID, typeID, nil) {
		return nil
	}

	dv, ok := ev.Fields[fieldKey(clause.BrowsePath)]
	if !ok || dv == nil {
		return nil
	}
	out := dv.Copy()
	if out.Value.Type() == valuemodel.TypeLocalizedText {
		out.Value = valuemodel.ReducePreferredLocale(out.Value, preferredLocales)
	}
	if clause.IndexRange != "" {
		if r, err := rangeexpr.Parse(clause.IndexRange); err == nil {
			if sub, err := valuemodel.GetRange(out.Value, r); err == nil {
				out.Value = sub
			}
		}
	}
	ttr.Apply(out)
	return out
}

// QueueOverflowEvent synthesises an EventQueueOverflowEventType instance
// (spec §4.5): SourceNode=Server, SourceName="Internal/EventQueueOverflow",
// stamped with now.
func QueueOverflowEvent(serverNodeID *ua.NodeID, now time.Time) *EventInstance {
	return &EventInstance{
		TypeDefinitionID: ua.NewNumericNodeID(0, nodeset.ObjTypeEventQueueOverflowEventType),
		SourceNode:       serverNodeID,
		Fields: map[string]*valuemodel.DataValue{
			"SourceNode": valuemodel.NewGood(valuemodel.NewScalar(valuemodel.TypeNodeID, serverNodeID)),
			"SourceName": valuemodel.NewGood(valuemodel.NewScalar(valuemodel.TypeString, "Internal/EventQueueOverflow")),
			"Time":       valuemodel.NewGood(valuemodel.NewScalar(valuemodel.TypeDateTime, now)),
		},
	}
}
