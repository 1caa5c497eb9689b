package engine

import (
	"sort"
	"strings"
)

// ============================================================================
// METRICS AGGREGATOR — dashboard breakdowns in a single pass
// ============================================================================
// Aggregate walks the record slice once and feeds every breakdown from that
// one loop. Records missing a source field are skipped for that breakdown
// only; nothing is ever counted as a synthetic "unknown" bucket.
//
// Ordering rules:
//   - categorical breakdowns keep first-seen order (insertion order),
//   - code tallies (diagnosis, problems, referral motives) sort descending
//     by count with a stable tie-break, since they feed top-N style UI.
// ============================================================================

// CountRow is one row of a frequency table.
type CountRow struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// TypeRow is a consultation-type count with its display label.
type TypeRow struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ReferralRow is the two-level referral breakdown: a category total plus the
// tally of motives attached to records referred to that category.
type ReferralRow struct {
	Category string     `json:"category"`
	Label    string     `json:"label"`
	Count    int        `json:"count"`
	Motives  []CountRow `json:"motives,omitempty"`
}

// Fixed age-range bucket labels. Only non-zero buckets appear in output.
var ageRangeLabels = []string{"0-17", "18-44", "45-64", "65+"}

// NewContraceptiveBoolKey is the bucket legacy checkbox-era records tally
// under when newContraceptive was stored as a boolean true.
const NewContraceptiveBoolKey = "Sim"

// Metrics is the dashboard payload. Field names and shapes are a stable
// contract with the presentation and export layers.
type Metrics struct {
	TotalConsultations int     `json:"totalConsultations"`
	AverageAge         float64 `json:"averageAge"`

	BySex                   []CountRow `json:"bySex"`
	ByType                  []TypeRow  `json:"byType"`
	ByAgeRange              []CountRow `json:"byAgeRange"`
	ByLocation              []CountRow `json:"byLocation"`
	ByAutonomy              []CountRow `json:"byAutonomy"`
	BySmokerStatus          []CountRow `json:"bySmokerStatus"`
	ByPresential            []CountRow `json:"byPresential"`
	ByVaccinationPlan       []CountRow `json:"byVaccinationPlan"`
	ByAlcohol               []CountRow `json:"byAlcohol"`
	ByDrugs                 []CountRow `json:"byDrugs"`
	ByFamilyType            []CountRow `json:"byFamilyType"`
	BySchoolLevel           []CountRow `json:"bySchoolLevel"`
	ByProfessionalSituation []CountRow `json:"byProfessionalSituation"`

	OwnListCount int `json:"ownListCount"`

	ByContraceptive    []CountRow `json:"byContraceptive"`
	ByNewContraceptive []CountRow `json:"byNewContraceptive"`

	ByDiagnosis    []CountRow `json:"byDiagnosis"`
	ByProblems     []CountRow `json:"byProblems"`
	ByNewDiagnosis []CountRow `json:"byNewDiagnosis"`

	ByReferral []ReferralRow `json:"byReferral"`
}

// Aggregate computes the full metrics payload over a record collection.
// The input is read-only; calling twice on the same slice yields
// structurally identical results.
func Aggregate(records []ClinicalRecord, opts ...Option) *Metrics {
	cfg := applyOptions(opts)

	sex := newTally()
	types := newTally()
	ageRange := newSeededTally(ageRangeLabels)
	location := newTally()
	autonomy := newTally()
	smoker := newTally()
	presential := newTally()
	vaccination := newTally()
	alcohol := newTally()
	drugs := newTally()
	family := newTally()
	school := newTally()
	professional := newTally()
	contraceptive := newTally()
	newContraceptive := newTally()
	diagnosis := newTally()
	problems := newTally()
	newDiagnosis := newTally()
	referral := newReferralTally()

	var ageSum float64
	var ageCount, ownListCount int

	for i := range records {
		r := &records[i]

		sex.addNonEmpty(r.Sex)
		types.addNonEmpty(r.Type)
		location.addNonEmpty(r.Location)
		autonomy.addNonEmpty(r.Autonomy)
		smoker.addNonEmpty(r.SmokerStatus)
		family.addNonEmpty(r.FamilyType)
		school.addNonEmpty(r.SchoolLevel)
		professional.addNonEmpty(r.ProfessionalSituation)

		presential.addBool(r.Presential)
		vaccination.addBool(r.VaccinationPlan)
		alcohol.addBool(r.Alcohol)
		drugs.addBool(r.Drugs)

		if years, ok := r.AgeInYears(); ok {
			ageSum += years
			ageCount++
			ageRange.add(ageRangeLabel(years))
		}

		if r.Details.OwnList != nil && *r.Details.OwnList {
			ownListCount++
		}

		// Contraceptive only counts when stored as text; the checkbox-era
		// boolean shape is valid only for newContraceptive.
		if c := r.Details.Contraceptive; c.IsSet && !c.IsBool {
			contraceptive.addNonEmpty(c.Str)
		}
		switch nc := r.Details.NewContraceptive; {
		case nc.IsSet && nc.IsBool && nc.Bool:
			newContraceptive.add(NewContraceptiveBoolKey)
		case nc.IsSet && !nc.IsBool:
			newContraceptive.addNonEmpty(nc.Str)
		}

		diagnosis.addCodes(r.Details.Diagnosis)
		problems.addCodes(r.Details.Problems)
		newDiagnosis.addCodes(r.Details.NewDiagnosis)

		referral.add(r.Details.Referral, r.Details.ReferralMotive)
	}

	avgAge := 0.0
	if ageCount > 0 {
		avgAge = ageSum / float64(ageCount)
	}

	return &Metrics{
		TotalConsultations: len(records),
		AverageAge:         avgAge,

		BySex:                   sex.rows(),
		ByType:                  types.typeRows(cfg.typeLabels),
		ByAgeRange:              ageRange.rows(),
		ByLocation:              location.rows(),
		ByAutonomy:              autonomy.rows(),
		BySmokerStatus:          smoker.rows(),
		ByPresential:            presential.rows(),
		ByVaccinationPlan:       vaccination.rows(),
		ByAlcohol:               alcohol.rows(),
		ByDrugs:                 drugs.rows(),
		ByFamilyType:            family.rows(),
		BySchoolLevel:           school.rows(),
		ByProfessionalSituation: professional.rows(),

		OwnListCount: ownListCount,

		ByContraceptive:    contraceptive.rows(),
		ByNewContraceptive: newContraceptive.rows(),

		ByDiagnosis:    diagnosis.rowsByCount(),
		ByProblems:     problems.rowsByCount(),
		ByNewDiagnosis: newDiagnosis.rowsByCount(),

		ByReferral: referral.rows(cfg.referralLabels),
	}
}

// ageRangeLabel buckets an age in years into the fixed dashboard ranges.
func ageRangeLabel(years float64) string {
	switch {
	case years < 18:
		return "0-17"
	case years < 45:
		return "18-44"
	case years < 65:
		return "45-64"
	default:
		return "65+"
	}
}

// ============================================================================
// TALLY — ordered frequency counter
// ============================================================================
// A map for counts plus an order slice for deterministic first-seen output.
// ============================================================================

type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

// newSeededTally pre-registers keys so their relative order is fixed even
// when the first matching record arrives out of order. Zero-count seeds are
// dropped at output time.
func newSeededTally(keys []string) *tally {
	t := newTally()
	for _, k := range keys {
		t.counts[k] = 0
		t.order = append(t.order, k)
	}
	return t
}

func (t *tally) add(key string) {
	if _, seen := t.counts[key]; !seen {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

func (t *tally) addNonEmpty(key string) {
	if key != "" {
		t.add(key)
	}
}

func (t *tally) addBool(v *bool) {
	if v == nil {
		return
	}
	if *v {
		t.add("yes")
	} else {
		t.add("no")
	}
}

func (t *tally) addCodes(codes CodeList) {
	for _, code := range codes {
		t.add(code)
	}
}

// rows returns counts in first-seen order, skipping zero-count seeds.
func (t *tally) rows() []CountRow {
	rows := make([]CountRow, 0, len(t.order))
	for _, key := range t.order {
		if t.counts[key] > 0 {
			rows = append(rows, CountRow{Value: key, Count: t.counts[key]})
		}
	}
	return rows
}

// rowsByCount returns counts sorted descending; ties keep first-seen order.
func (t *tally) rowsByCount() []CountRow {
	rows := t.rows()
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}

func (t *tally) typeRows(labels map[string]string) []TypeRow {
	rows := make([]TypeRow, 0, len(t.order))
	for _, code := range t.order {
		label := code
		if l, ok := labels[code]; ok {
			label = l
		}
		rows = append(rows, TypeRow{Code: code, Label: label, Count: t.counts[code]})
	}
	return rows
}

// ============================================================================
// REFERRAL TALLY — category totals with nested motive tallies
// ============================================================================

type referralTally struct {
	order      []string
	categories map[string]*referralAgg
}

type referralAgg struct {
	count   int
	motives *tally
}

func newReferralTally() *referralTally {
	return &referralTally{categories: make(map[string]*referralAgg)}
}

// add increments every listed category and merges the record's motives into
// each of them. Motives are shared across all categories on the record.
func (t *referralTally) add(categories []string, motives CodeList) {
	for _, cat := range categories {
		cat = strings.TrimSpace(cat)
		if cat == "" {
			continue
		}
		agg, seen := t.categories[cat]
		if !seen {
			agg = &referralAgg{motives: newTally()}
			t.categories[cat] = agg
			t.order = append(t.order, cat)
		}
		agg.count++
		agg.motives.addCodes(motives)
	}
}

func (t *referralTally) rows(labels map[string]string) []ReferralRow {
	rows := make([]ReferralRow, 0, len(t.order))
	for _, cat := range t.order {
		agg := t.categories[cat]
		label := cat
		if l, ok := labels[cat]; ok {
			label = l
		}
		rows = append(rows, ReferralRow{
			Category: cat,
			Label:    label,
			Count:    agg.count,
			Motives:  agg.motives.rowsByCount(),
		})
	}
	return rows
}
