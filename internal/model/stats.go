package model

import "encoding/json"

// DashboardStats is the canonical dashboard counter set. Two backend
// generations disagree on push-event field names (totalTasks/totalWithdrawals
// vs taskCompletions/pendingWithdrawals); everything inside this module uses
// the canonical names and normalizes incoming payloads through a FieldMap.
type DashboardStats struct {
	TotalUsers         int64 `json:"totalUsers"`
	TotalEarnings      int64 `json:"totalEarnings"`
	TotalTasks         int64 `json:"totalTasks"`
	PendingWithdrawals int64 `json:"pendingWithdrawals"`
}

// FieldMap maps canonical DashboardStats field names to the aliases a given
// backend emits. A canonical name always matches itself; aliases are tried
// in order after it.
type FieldMap map[string][]string

// DefaultFieldMap covers both observed backend schemas.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		"totalUsers":         nil,
		"totalEarnings":      nil,
		"totalTasks":         {"taskCompletions"},
		"pendingWithdrawals": {"totalWithdrawals"},
	}
}

// StatsFromPayload decodes a raw dashboard-update payload into canonical
// stats using the field map. Missing fields decode to zero; the caller
// overwrites its display state wholesale, never merges.
func StatsFromPayload(payload map[string]json.RawMessage, fm FieldMap) DashboardStats {
	if fm == nil {
		fm = DefaultFieldMap()
	}
	var s DashboardStats
	s.TotalUsers = pickInt(payload, "totalUsers", fm)
	s.TotalEarnings = pickInt(payload, "totalEarnings", fm)
	s.TotalTasks = pickInt(payload, "totalTasks", fm)
	s.PendingWithdrawals = pickInt(payload, "pendingWithdrawals", fm)
	return s
}

func pickInt(payload map[string]json.RawMessage, canonical string, fm FieldMap) int64 {
	names := append([]string{canonical}, fm[canonical]...)
	for _, n := range names {
		raw, ok := payload[n]
		if !ok {
			continue
		}
		// Backends emit these as JSON numbers; some send earnings as a
		// float with a fractional part of zero.
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return int64(f)
		}
	}
	return 0
}
