package engine

import (
	"math"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ============================================================================
// FILTER COMPILER — FilterSpec → predicate / query constraints
// ============================================================================
// A FilterSpec compiles two ways: Compile() returns an in-memory predicate
// for already-fetched records, and Query() returns the equivalent bson.M
// document for the store to push down to MongoDB. Both encode the same
// constraints — in particular the four-branch age-range expansion.
// ============================================================================

// FilterSpec selects a subset of records. Zero values mean "no constraint",
// except the pointer booleans: a non-nil false is a real filter value.
type FilterSpec struct {
	Sex                   string `json:"sex,omitempty"`
	Type                  string `json:"type,omitempty"`
	Location              string `json:"location,omitempty"`
	Autonomy              string `json:"autonomy,omitempty"`
	SmokerStatus          string `json:"smokerStatus,omitempty"`
	FamilyType            string `json:"familyType,omitempty"`
	SchoolLevel           string `json:"schoolLevel,omitempty"`
	ProfessionalSituation string `json:"professionalSituation,omitempty"`

	Presential      *bool `json:"presential,omitempty"`
	VaccinationPlan *bool `json:"vaccinationPlan,omitempty"`
	Alcohol         *bool `json:"alcohol,omitempty"`
	Drugs           *bool `json:"drugs,omitempty"`

	// Age bounds are expressed in years regardless of how records store age.
	AgeMin *float64 `json:"ageMin,omitempty"`
	AgeMax *float64 `json:"ageMax,omitempty"`

	DateFrom *time.Time `json:"dateFrom,omitempty"`
	DateTo   *time.Time `json:"dateTo,omitempty"`

	// Case-insensitive prefix match against stored codes, which may be a
	// bare "CODE" or "CODE - description".
	DiagnosisPrefix string `json:"diagnosisPrefix,omitempty"`
	ProblemPrefix   string `json:"problemPrefix,omitempty"`

	ExcludeLocation string `json:"excludeLocation,omitempty"`
}

// Predicate reports whether a record matches a compiled FilterSpec.
type Predicate func(*ClinicalRecord) bool

// ============================================================================
// IN-MEMORY PREDICATE
// ============================================================================

// Compile builds a single-pass predicate from the spec. All set clauses are
// AND-combined; the age clause ORs its four per-unit branches internally.
func (f FilterSpec) Compile() Predicate {
	equalities := []struct {
		want string
		get  func(*ClinicalRecord) string
	}{
		{f.Sex, func(r *ClinicalRecord) string { return r.Sex }},
		{f.Type, func(r *ClinicalRecord) string { return r.Type }},
		{f.Location, func(r *ClinicalRecord) string { return r.Location }},
		{f.Autonomy, func(r *ClinicalRecord) string { return r.Autonomy }},
		{f.SmokerStatus, func(r *ClinicalRecord) string { return r.SmokerStatus }},
		{f.FamilyType, func(r *ClinicalRecord) string { return r.FamilyType }},
		{f.SchoolLevel, func(r *ClinicalRecord) string { return r.SchoolLevel }},
		{f.ProfessionalSituation, func(r *ClinicalRecord) string { return r.ProfessionalSituation }},
	}

	booleans := []struct {
		want *bool
		get  func(*ClinicalRecord) *bool
	}{
		{f.Presential, func(r *ClinicalRecord) *bool { return r.Presential }},
		{f.VaccinationPlan, func(r *ClinicalRecord) *bool { return r.VaccinationPlan }},
		{f.Alcohol, func(r *ClinicalRecord) *bool { return r.Alcohol }},
		{f.Drugs, func(r *ClinicalRecord) *bool { return r.Drugs }},
	}

	return func(r *ClinicalRecord) bool {
		for _, eq := range equalities {
			if eq.want != "" && eq.get(r) != eq.want {
				return false
			}
		}
		for _, b := range booleans {
			if b.want != nil {
				val := b.get(r)
				if val == nil || *val != *b.want {
					return false
				}
			}
		}
		if f.ExcludeLocation != "" && r.Location == f.ExcludeLocation {
			return false
		}
		if (f.AgeMin != nil || f.AgeMax != nil) && !f.matchAge(r) {
			return false
		}
		if f.DateFrom != nil && (r.Date == nil || r.Date.Before(*f.DateFrom)) {
			return false
		}
		if f.DateTo != nil && (r.Date == nil || r.Date.After(*f.DateTo)) {
			return false
		}
		if f.DiagnosisPrefix != "" && !matchCodePrefix(r.Details.Diagnosis, f.DiagnosisPrefix) {
			return false
		}
		if f.ProblemPrefix != "" && !matchCodePrefix(r.Details.Problems, f.ProblemPrefix) {
			return false
		}
		return true
	}
}

// Apply filters a slice through the compiled predicate. The input slice is
// never modified.
func (f FilterSpec) Apply(records []ClinicalRecord) []ClinicalRecord {
	match := f.Compile()
	out := make([]ClinicalRecord, 0, len(records))
	for i := range records {
		if match(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// matchAge checks the stored value against the bound converted into the
// record's own unit. Cheaper than normalizing every record, and the same
// arithmetic the store pushes down to the query layer.
func (f FilterSpec) matchAge(r *ClinicalRecord) bool {
	if r.Age == nil || r.AgeUnit == "" {
		return false
	}
	lo, hi, ok := ageBounds(r.AgeUnit, f.AgeMin, f.AgeMax)
	if !ok {
		return false
	}
	if lo != nil && *r.Age < *lo {
		return false
	}
	if hi != nil && *r.Age > *hi {
		return false
	}
	return true
}

// ageBounds converts year bounds into a unit's own scale.
//
// Weeks and days use floor on the lower bound and ceil on the upper so that
// a boundary record converts back into the requested range. The asymmetry is
// a fixed domain rule — the regulatory reports depend on these exact edges.
func ageBounds(unit AgeUnit, min, max *float64) (lo, hi *float64, ok bool) {
	switch unit {
	case UnitYears, UnitMonths, UnitWeeks, UnitDays:
	default:
		return nil, nil, false
	}

	lower := func(v float64) float64 {
		switch unit {
		case UnitMonths:
			return v * MonthsPerYear
		case UnitWeeks:
			return math.Floor(v * WeeksPerYear)
		case UnitDays:
			return math.Floor(v * DaysPerYear)
		}
		return v
	}
	upper := func(v float64) float64 {
		switch unit {
		case UnitMonths:
			return v * MonthsPerYear
		case UnitWeeks:
			return math.Ceil(v * WeeksPerYear)
		case UnitDays:
			return math.Ceil(v * DaysPerYear)
		}
		return v
	}

	if min != nil {
		v := lower(*min)
		lo = &v
	}
	if max != nil {
		v := upper(*max)
		hi = &v
	}
	return lo, hi, true
}

func matchCodePrefix(codes CodeList, prefix string) bool {
	p := strings.ToLower(prefix)
	for _, code := range codes {
		if strings.HasPrefix(strings.ToLower(code), p) {
			return true
		}
	}
	return false
}

// ============================================================================
// QUERY CONSTRAINTS
// ============================================================================

// Query returns the spec as a MongoDB filter document, letting the store
// apply the same constraints server-side before records ever reach the
// engine. The age range becomes an $or of four per-unit branches.
func (f FilterSpec) Query() bson.M {
	query := bson.M{}

	setEq := func(field, want string) {
		if want != "" {
			query[field] = want
		}
	}
	setEq("sex", f.Sex)
	setEq("type", f.Type)
	setEq("location", f.Location)
	setEq("autonomy", f.Autonomy)
	setEq("smokerStatus", f.SmokerStatus)
	setEq("familyType", f.FamilyType)
	setEq("schoolLevel", f.SchoolLevel)
	setEq("professionalSituation", f.ProfessionalSituation)

	setBool := func(field string, want *bool) {
		if want != nil {
			query[field] = *want
		}
	}
	setBool("presential", f.Presential)
	setBool("vaccinationPlan", f.VaccinationPlan)
	setBool("alcohol", f.Alcohol)
	setBool("drugs", f.Drugs)

	if f.ExcludeLocation != "" {
		query["location"] = bson.M{"$ne": f.ExcludeLocation}
	}

	if f.AgeMin != nil || f.AgeMax != nil {
		branches := make([]bson.M, 0, 4)
		for _, unit := range []AgeUnit{UnitYears, UnitMonths, UnitWeeks, UnitDays} {
			lo, hi, _ := ageBounds(unit, f.AgeMin, f.AgeMax)
			bound := bson.M{}
			if lo != nil {
				bound["$gte"] = *lo
			}
			if hi != nil {
				bound["$lte"] = *hi
			}
			branches = append(branches, bson.M{"ageUnit": string(unit), "age": bound})
		}
		query["$or"] = branches
	}

	if f.DateFrom != nil || f.DateTo != nil {
		bound := bson.M{}
		if f.DateFrom != nil {
			bound["$gte"] = *f.DateFrom
		}
		if f.DateTo != nil {
			bound["$lte"] = *f.DateTo
		}
		query["date"] = bound
	}

	if f.DiagnosisPrefix != "" {
		query["details.diagnosis"] = prefixRegex(f.DiagnosisPrefix)
	}
	if f.ProblemPrefix != "" {
		query["details.problems"] = prefixRegex(f.ProblemPrefix)
	}

	return query
}

// prefixRegex builds a case-insensitive anchored prefix match.
func prefixRegex(prefix string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix), Options: "i"}
}
