package engine

import (
	"reflect"
	"testing"
	"time"
)

func metricsFixture() []ClinicalRecord {
	return []ClinicalRecord{
		{
			Sex: "F", Type: "first", Location: LocationUnit, Autonomy: "partial",
			SmokerStatus: "non-smoker",
			Age:          agePtr(30), AgeUnit: UnitYears,
			Presential:      boolPtr(true),
			VaccinationPlan: boolPtr(true),
			Details: Details{
				Diagnosis: CodeList{"T90", "K86"},
				Referral:  []string{"hospital", "nursing"},
				ReferralMotive: CodeList{"T90"},
			},
		},
		{
			Sex: "M", Type: "follow-up", Location: LocationUnit, Autonomy: "full",
			Age: agePtr(10), AgeUnit: UnitYears,
			Presential: boolPtr(false),
			Details: Details{
				OwnList:       boolPtr(true),
				Contraceptive: StringOrBool{Str: "oral", IsSet: true},
				Diagnosis:     CodeList{"T90"},
			},
		},
		{
			Sex: "F", Type: "first", Location: LocationUrgentCare,
			Age: agePtr(938), AgeUnit: UnitWeeks, // just under 18 years
			Details: Details{
				// Checkbox-era values: boolean contraceptive is skipped,
				// boolean newContraceptive tallies under "Sim".
				Contraceptive:    StringOrBool{Bool: true, IsBool: true, IsSet: true},
				NewContraceptive: StringOrBool{Bool: true, IsBool: true, IsSet: true},
			},
		},
	}
}

func findRow(rows []CountRow, value string) (CountRow, bool) {
	for _, row := range rows {
		if row.Value == value {
			return row, true
		}
	}
	return CountRow{}, false
}

func TestAggregateIsIdempotent(t *testing.T) {
	records := metricsFixture()
	first := Aggregate(records)
	second := Aggregate(records)
	if !reflect.DeepEqual(first, second) {
		t.Error("two aggregations of the same input must be structurally identical")
	}
}

func TestAggregateTotalsMatchTypeCounts(t *testing.T) {
	records := metricsFixture()
	m := Aggregate(records)

	if m.TotalConsultations != len(records) {
		t.Errorf("TotalConsultations = %d, want %d", m.TotalConsultations, len(records))
	}

	sum := 0
	for _, row := range m.ByType {
		sum += row.Count
	}
	if sum != m.TotalConsultations {
		t.Errorf("type counts sum to %d, want %d (every record has a type)", sum, m.TotalConsultations)
	}
}

func TestAggregateAverageAge(t *testing.T) {
	m := Aggregate(metricsFixture())

	// 30 + 10 + 938/52.1429 over three qualifying records.
	want := (30.0 + 10.0 + 938/WeeksPerYear) / 3
	if diff := m.AverageAge - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AverageAge = %v, want %v", m.AverageAge, want)
	}

	if m := Aggregate([]ClinicalRecord{{Sex: "F"}}); m.AverageAge != 0 {
		t.Errorf("AverageAge with no qualifying records = %v, want 0", m.AverageAge)
	}
}

func TestAggregateAgeRangeBuckets(t *testing.T) {
	m := Aggregate(metricsFixture())

	// Buckets keep their fixed label order and zero buckets disappear:
	// ages 30, 10, ~17.99 fill 0-17 (twice counting the weeks record) and 18-44.
	want := []CountRow{{Value: "0-17", Count: 2}, {Value: "18-44", Count: 1}}
	if !reflect.DeepEqual(m.ByAgeRange, want) {
		t.Errorf("ByAgeRange = %+v, want %+v", m.ByAgeRange, want)
	}
}

func TestAggregateTypeLabels(t *testing.T) {
	labels := map[string]string{"first": "First consultation"}
	m := Aggregate(metricsFixture(), WithTypeLabels(labels))

	for _, row := range m.ByType {
		switch row.Code {
		case "first":
			if row.Label != "First consultation" {
				t.Errorf("labelled type got %q", row.Label)
			}
		case "follow-up":
			// Unknown codes pass through with the code as label.
			if row.Label != "follow-up" {
				t.Errorf("unlabelled type got %q, want the code itself", row.Label)
			}
		}
	}
}

func TestAggregateContraceptiveShapes(t *testing.T) {
	m := Aggregate(metricsFixture())

	if len(m.ByContraceptive) != 1 || m.ByContraceptive[0].Value != "oral" {
		t.Errorf("ByContraceptive = %+v, want only the string-valued record", m.ByContraceptive)
	}

	row, ok := findRow(m.ByNewContraceptive, NewContraceptiveBoolKey)
	if !ok || row.Count != 1 {
		t.Errorf("ByNewContraceptive = %+v, want boolean true under %q", m.ByNewContraceptive, NewContraceptiveBoolKey)
	}
}

func TestAggregateReferralMotivesSharedAcrossCategories(t *testing.T) {
	m := Aggregate(metricsFixture())

	if len(m.ByReferral) != 2 {
		t.Fatalf("ByReferral has %d categories, want 2", len(m.ByReferral))
	}
	for _, row := range m.ByReferral {
		if row.Count != 1 {
			t.Errorf("category %s count = %d, want 1", row.Category, row.Count)
		}
		motive, ok := findRow(row.Motives, "T90")
		if !ok || motive.Count != 1 {
			t.Errorf("category %s should carry motive T90 once, got %+v", row.Category, row.Motives)
		}
	}
}

func TestAggregateCodeTalliesSortedDescending(t *testing.T) {
	m := Aggregate(metricsFixture())

	want := []CountRow{{Value: "T90", Count: 2}, {Value: "K86", Count: 1}}
	if !reflect.DeepEqual(m.ByDiagnosis, want) {
		t.Errorf("ByDiagnosis = %+v, want %+v", m.ByDiagnosis, want)
	}
}

func TestAggregateBooleanFlags(t *testing.T) {
	m := Aggregate(metricsFixture())

	want := []CountRow{{Value: "yes", Count: 1}, {Value: "no", Count: 1}}
	if !reflect.DeepEqual(m.ByPresential, want) {
		t.Errorf("ByPresential = %+v, want %+v", m.ByPresential, want)
	}
	// The record without a vaccination plan value contributes nothing.
	if len(m.ByVaccinationPlan) != 1 || m.ByVaccinationPlan[0].Count != 1 {
		t.Errorf("ByVaccinationPlan = %+v, want single yes row", m.ByVaccinationPlan)
	}

	if m.OwnListCount != 1 {
		t.Errorf("OwnListCount = %d, want 1", m.OwnListCount)
	}
}

func TestAggregateFirstSeenOrder(t *testing.T) {
	records := []ClinicalRecord{
		{Sex: "F"}, {Sex: "M"}, {Sex: "F"}, {Sex: "other"},
	}
	m := Aggregate(records)

	want := []CountRow{{Value: "F", Count: 2}, {Value: "M", Count: 1}, {Value: "other", Count: 1}}
	if !reflect.DeepEqual(m.BySex, want) {
		t.Errorf("BySex = %+v, want first-seen order %+v", m.BySex, want)
	}
}

func TestAggregateSkipsJoinedStringExplosion(t *testing.T) {
	// Codes arriving as a joined string have already been split by the
	// CodeList decoder; the aggregator itself just explodes the list.
	records := []ClinicalRecord{
		{Details: Details{Problems: CodeList{"P01", "P02"}}},
		{Details: Details{Problems: CodeList{"P01"}}},
		{Date: datePtr(2025, time.May, 5)}, // no problems at all
	}
	m := Aggregate(records)

	want := []CountRow{{Value: "P01", Count: 2}, {Value: "P02", Count: 1}}
	if !reflect.DeepEqual(m.ByProblems, want) {
		t.Errorf("ByProblems = %+v, want %+v", m.ByProblems, want)
	}
}
