package engine

// ============================================================================
// UNIT-SAMPLE BREAKDOWN — autonomy → presential state → type
// ============================================================================

// Presential-state keys. A consultation is presential only when the boolean
// is explicitly true; false and absent both count as remote.
const (
	StatePresential = "presential"
	StateRemote     = "remote"
)

// UnitSampleBreakdown is a three-level nested tally over a record subset.
// Map-valued fields marshal with sorted keys, keeping output deterministic.
type UnitSampleBreakdown struct {
	TotalCount int                      `json:"totalCount"`
	ByAutonomy map[string]*AutonomyCell `json:"byAutonomy"`
}

// AutonomyCell counts consultations at one autonomy level.
type AutonomyCell struct {
	Count             int                        `json:"count"`
	ByPresentialState map[string]*PresentialCell `json:"byPresentialState"`
}

// PresentialCell counts consultations for one (autonomy, presential) pair.
type PresentialCell struct {
	Count  int            `json:"count"`
	ByType map[string]int `json:"byType"`
}

// BuildBreakdown tallies records whose type is in validTypes. Records with
// a missing or unlisted type are excluded entirely rather than bucketed
// under a catch-all.
func BuildBreakdown(records []ClinicalRecord, validTypes []string) *UnitSampleBreakdown {
	valid := make(map[string]bool, len(validTypes))
	for _, t := range validTypes {
		valid[t] = true
	}

	breakdown := &UnitSampleBreakdown{
		ByAutonomy: make(map[string]*AutonomyCell),
	}

	for i := range records {
		r := &records[i]
		if !valid[r.Type] {
			continue
		}

		state := StateRemote
		if r.Presential != nil && *r.Presential {
			state = StatePresential
		}

		breakdown.TotalCount++

		cell, ok := breakdown.ByAutonomy[r.Autonomy]
		if !ok {
			cell = &AutonomyCell{ByPresentialState: make(map[string]*PresentialCell)}
			breakdown.ByAutonomy[r.Autonomy] = cell
		}
		cell.Count++

		pcell, ok := cell.ByPresentialState[state]
		if !ok {
			pcell = &PresentialCell{ByType: make(map[string]int)}
			cell.ByPresentialState[state] = pcell
		}
		pcell.Count++
		pcell.ByType[r.Type]++
	}

	return breakdown
}
