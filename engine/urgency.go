package engine

import (
	"sort"
	"strings"
	"time"
)

// ============================================================================
// URGENCY-DAY SELECTOR — busiest shifts per urgent-care category
// ============================================================================
// Urgent-care evidence counts only the N busiest shifts per specialty. Days
// beyond a group's limit are excluded from the totals entirely, so the
// selection's TotalCount is the sum over selected days, not all matches.
// ============================================================================

// UrgencyGroup configures one selection: a display label, the internship
// categories it matches, and how many days to keep.
type UrgencyGroup struct {
	Label           string   `json:"label"`
	MatchCategories []string `json:"matchCategories"`
	DayLimit        int      `json:"dayLimit"`
}

// UrgencyDay is one selected calendar day.
type UrgencyDay struct {
	Date           time.Time      `json:"date"`
	Count          int            `json:"count"`
	AutonomyCounts map[string]int `json:"autonomyCounts"`
}

// UrgencySelection is the outcome for one configured group.
type UrgencySelection struct {
	Label          string         `json:"label"`
	Days           []UrgencyDay   `json:"days"`
	TotalCount     int            `json:"totalCount"`
	AutonomyTotals map[string]int `json:"autonomyTotals"`
}

type urgencyDayAgg struct {
	category string
	date     time.Time
	count    int
	autonomy map[string]int
}

// SelectTopDays groups records by (internship category, calendar day) and
// keeps the DayLimit busiest days per configured group. Categories are
// case-folded on both sides. Groups with no matching days are omitted.
func SelectTopDays(records []ClinicalRecord, groups []UrgencyGroup) []UrgencySelection {
	grouped := make(map[string]*urgencyDayAgg)
	var order []string

	for i := range records {
		r := &records[i]
		if r.Date == nil {
			continue
		}
		category := foldCategory(r.Details.Internship)
		if category == "" {
			continue
		}
		day := truncateDay(*r.Date)
		key := category + "|" + dayKey(day)
		agg, seen := grouped[key]
		if !seen {
			agg = &urgencyDayAgg{category: category, date: day, autonomy: make(map[string]int)}
			grouped[key] = agg
			order = append(order, key)
		}
		agg.count++
		if r.Autonomy != "" {
			agg.autonomy[r.Autonomy]++
		}
	}

	selections := make([]UrgencySelection, 0, len(groups))
	for _, group := range groups {
		match := make(map[string]bool, len(group.MatchCategories))
		for _, cat := range group.MatchCategories {
			match[foldCategory(cat)] = true
		}

		var candidates []*urgencyDayAgg
		for _, key := range order {
			if agg := grouped[key]; match[agg.category] {
				candidates = append(candidates, agg)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].count > candidates[j].count
		})
		if group.DayLimit > 0 && len(candidates) > group.DayLimit {
			candidates = candidates[:group.DayLimit]
		}

		selection := UrgencySelection{
			Label:          group.Label,
			Days:           make([]UrgencyDay, 0, len(candidates)),
			AutonomyTotals: make(map[string]int),
		}
		for _, agg := range candidates {
			day := UrgencyDay{
				Date:           agg.date,
				Count:          agg.count,
				AutonomyCounts: make(map[string]int, len(agg.autonomy)),
			}
			for level, n := range agg.autonomy {
				day.AutonomyCounts[level] = n
				selection.AutonomyTotals[level] += n
			}
			selection.TotalCount += agg.count
			selection.Days = append(selection.Days, day)
		}
		selections = append(selections, selection)
	}
	return selections
}

func foldCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
