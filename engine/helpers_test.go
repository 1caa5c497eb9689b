package engine

import (
	"time"
)

// Shared fixture helpers for the engine tests.

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func agePtr(v float64) *float64 {
	return &v
}

func boolPtr(b bool) *bool {
	return &b
}

// unitRecord builds a unit consultation on a date with a countable type.
func unitRecord(date *time.Time, consultType string) ClinicalRecord {
	return ClinicalRecord{
		Date:     date,
		Type:     consultType,
		Location: LocationUnit,
	}
}

// urgentRecord builds an urgent-care consultation for an internship category.
func urgentRecord(date *time.Time, internship, autonomy string) ClinicalRecord {
	return ClinicalRecord{
		Date:     date,
		Location: LocationUrgentCare,
		Autonomy: autonomy,
		Details:  Details{Internship: internship},
	}
}
