package engine

// ============================================================================
// UNIT NORMALIZER — age values in mixed units
// ============================================================================
// Ages are stored in whatever unit the clinician picked. Everything that
// compares or buckets ages converts through here.
// ============================================================================

// AgeUnit is the unit an age value was recorded in.
type AgeUnit string

// The four recognized age units.
const (
	UnitYears  AgeUnit = "years"
	UnitMonths AgeUnit = "months"
	UnitWeeks  AgeUnit = "weeks"
	UnitDays   AgeUnit = "days"
)

// Conversion factors. WeeksPerYear and DaysPerYear account for leap years.
const (
	MonthsPerYear = 12
	WeeksPerYear  = 52.1429
	DaysPerYear   = 365.25
)

// ToYears converts an age value to years.
//
// Units are validated upstream at data entry; a value with an unrecognized
// unit is returned unchanged (treated as years) rather than rejected, so a
// single malformed record cannot fail a whole report.
func ToYears(age float64, unit AgeUnit) float64 {
	switch unit {
	case UnitMonths:
		return age / MonthsPerYear
	case UnitWeeks:
		return age / WeeksPerYear
	case UnitDays:
		return age / DaysPerYear
	default:
		return age
	}
}

// AgeInYears returns the record's age converted to years, and whether the
// record carries both an age and a unit.
func (r *ClinicalRecord) AgeInYears() (float64, bool) {
	if r.Age == nil || r.AgeUnit == "" {
		return 0, false
	}
	return ToYears(*r.Age, r.AgeUnit), true
}
