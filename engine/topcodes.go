package engine

import (
	"sort"
	"strings"
)

// ============================================================================
// TOP-FREQUENCY RANKER — most frequent clinical codes
// ============================================================================

// DefaultTopCodeLimit caps ranked code lists when no limit is given.
const DefaultTopCodeLimit = 20

// CodeCount is one ranked code with its occurrence count.
type CodeCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// TopCodes tallies the codes extract yields per record and returns the most
// frequent, descending. A non-positive limit means DefaultTopCodeLimit.
// Codes are trimmed, blanks dropped, and duplicates within a single record
// count once. Ties keep first-seen order.
func TopCodes(records []ClinicalRecord, extract func(*ClinicalRecord) []string, limit int) []CodeCount {
	if limit <= 0 {
		limit = DefaultTopCodeLimit
	}

	counts := newTally()
	for i := range records {
		seen := make(map[string]bool)
		for _, code := range extract(&records[i]) {
			code = strings.TrimSpace(code)
			if code == "" || seen[code] {
				continue
			}
			seen[code] = true
			counts.add(code)
		}
	}

	rows := counts.rows()
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	if len(rows) > limit {
		rows = rows[:limit]
	}

	out := make([]CodeCount, len(rows))
	for i, row := range rows {
		out[i] = CodeCount{Code: row.Value, Count: row.Count}
	}
	return out
}
