package mistore

import (
	"github.com/systerel/opcua-addrspace-core/access"
	"github.com/systerel/opcua-addrspace-core/valuemodel"
)

// IsNotificationTriggered implements spec §4.4's comparison rule: a
// structural/status change always triggers; a timestamp-only change
// triggers only under the StatusValueTimestamp trigger; otherwise the
// value itself is compared via cmp (plain equality, or a deadband
// predicate bound to mi.Filter's absolute threshold).
func IsNotificationTriggered(mi *MonitoredItem, oldDV, newDV *valuemodel.DataValue) (bool, error) {
	if mi.AttrID != access.AttrValue {
		return oldDV.Status != newDV.Status, nil
	}
	if oldDV.Status != newDV.Status {
		return true, nil
	}
	if mi.Trigger == TriggerStatusValueTimestamp && !oldDV.SourceTimestamp.Equal(newDV.SourceTimestamp) {
		return true, nil
	}

	cmp := valuemodel.ComparePredicate(valuemodel.DefaultCompare)
	var ctx any
	if deadband, ok := mi.Filter.(float64); ok {
		cmp = valuemodel.DeadbandCompare
		ctx = deadband
	}
	c, err := valuemodel.CompareRange(ctx, cmp, oldDV.Value, newDV.Value, mi.Range)
	if err != nil {
		return false, err
	}
	return c != 0, nil
}
