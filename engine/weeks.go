package engine

import (
	"sort"
	"time"
)

// ============================================================================
// CALENDAR-WEEK SAMPLER — best-subset week selection
// ============================================================================
// Regulatory sample reports are built from a trainee's busiest weeks rather
// than the whole period. A week is the Monday-through-Sunday window around a
// record's date; weeks compete on record count, with distinct-day and month
// constraints filtering candidates first.
// ============================================================================

// WeekSample describes one selected calendar week.
type WeekSample struct {
	WeekKey        time.Time `json:"weekKey"` // the Monday of the week
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	RecordCount    int       `json:"recordCount"`
	UniqueDayCount int       `json:"uniqueDayCount"`
}

// WeekOptions constrains week selection. Zero values mean unconstrained,
// so months run 1–12 and MinDaysPerWeek of 0 accepts every week.
type WeekOptions struct {
	Limit          int `json:"limit"`
	MinDaysPerWeek int `json:"minDaysPerWeek,omitempty"`
	StartMonth     int `json:"startMonth,omitempty"`
	EndMonth       int `json:"endMonth,omitempty"`
}

type weekAgg struct {
	monday time.Time
	count  int
	days   map[string]bool
}

// SelectBestWeeks groups records into Monday-starting weeks and returns the
// top-Limit weeks by record count. Weeks with fewer than MinDaysPerWeek
// distinct days are discarded, as are weeks whose Monday falls outside the
// StartMonth–EndMonth window. Records without a date contribute to no week.
//
// Equal counts keep first-encountered order — the sort must stay stable so
// that reruns over the same data select the same weeks.
func SelectBestWeeks(records []ClinicalRecord, opts WeekOptions) []WeekSample {
	grouped := make(map[string]*weekAgg)
	var order []string

	for i := range records {
		r := &records[i]
		if r.Date == nil {
			continue
		}
		monday := MondayOf(*r.Date)
		key := dayKey(monday)
		agg, seen := grouped[key]
		if !seen {
			agg = &weekAgg{monday: monday, days: make(map[string]bool)}
			grouped[key] = agg
			order = append(order, key)
		}
		agg.count++
		agg.days[dayKey(*r.Date)] = true
	}

	samples := make([]WeekSample, 0, len(order))
	for _, key := range order {
		agg := grouped[key]
		if opts.StartMonth > 0 && int(agg.monday.Month()) < opts.StartMonth {
			continue
		}
		if opts.EndMonth > 0 && int(agg.monday.Month()) > opts.EndMonth {
			continue
		}
		if len(agg.days) < opts.MinDaysPerWeek {
			continue
		}
		samples = append(samples, WeekSample{
			WeekKey:        agg.monday,
			StartDate:      agg.monday,
			EndDate:        agg.monday.AddDate(0, 0, 6),
			RecordCount:    agg.count,
			UniqueDayCount: len(agg.days),
		})
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].RecordCount > samples[j].RecordCount
	})

	if opts.Limit > 0 && len(samples) > opts.Limit {
		samples = samples[:opts.Limit]
	}
	return samples
}

// RecordsInWeeks returns the records whose week falls in the given samples,
// preserving input order. Used by the report pipelines to recover the member
// records of the selected weeks.
func RecordsInWeeks(records []ClinicalRecord, weeks []WeekSample) []ClinicalRecord {
	selected := make(map[string]bool, len(weeks))
	for _, w := range weeks {
		selected[dayKey(w.WeekKey)] = true
	}

	out := make([]ClinicalRecord, 0, len(records))
	for i := range records {
		r := &records[i]
		if r.Date == nil {
			continue
		}
		if selected[dayKey(MondayOf(*r.Date))] {
			out = append(out, records[i])
		}
	}
	return out
}

// MondayOf returns the Monday of the week containing t, at midnight in t's
// location. Go weekdays start on Sunday, hence the +6 offset.
func MondayOf(t time.Time) time.Time {
	day := truncateDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
