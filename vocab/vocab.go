// Package vocab holds the static lookup tables the engine is configured
// with: consultation-type labels, referral labels, valid-type sets, and the
// fixed report group definitions. They are plain data handed to the engine
// at construction — the engine never reaches back into this package — so
// tests can run the same pipelines with alternate vocabularies.
package vocab

import "github.com/residlog-org/residlog/engine"

// Consultation type codes used by the unit reports.
const (
	TypeFirst       = "first"
	TypeFollowUp    = "follow-up"
	TypeFamilyPlan  = "family-planning"
	TypeChildHealth = "child-health"
	TypeMaternal    = "maternal-health"
	TypeAdult       = "adult-health"
	TypeElderly     = "elderly-health"
	TypeHomeVisit   = "home-visit"
)

// AutonomyLevels is the supervision vocabulary, least to most autonomous.
// The engine treats autonomy as free text; this ordering is for display.
var AutonomyLevels = []string{"observed", "shoulder-to-shoulder", "partial", "full"}

// TypeLabels maps consultation type codes to display labels.
func TypeLabels() map[string]string {
	return map[string]string{
		TypeFirst:       "First consultation",
		TypeFollowUp:    "Follow-up consultation",
		TypeFamilyPlan:  "Family planning",
		TypeChildHealth: "Child health surveillance",
		TypeMaternal:    "Maternal health",
		TypeAdult:       "Adult health",
		TypeElderly:     "Elderly health",
		TypeHomeVisit:   "Home visit",
	}
}

// ReferralLabels maps referral category codes to display labels.
func ReferralLabels() map[string]string {
	return map[string]string{
		"hospital":     "Hospital outpatient referral",
		"emergency":    "Emergency department",
		"nursing":      "Nursing care",
		"social":       "Social services",
		"psychology":   "Psychology",
		"nutrition":    "Nutrition",
		"oral-health":  "Oral health",
		"other-doctor": "Another physician",
	}
}

// ValidUnitTypes is the set of consultation types that count toward unit
// quota reports.
func ValidUnitTypes() []string {
	return []string{
		TypeFirst, TypeFollowUp, TypeFamilyPlan, TypeChildHealth,
		TypeMaternal, TypeAdult, TypeElderly, TypeHomeVisit,
	}
}

// ReportKeyForYear maps a trainee's program year to the report pipeline
// that applies. Years 2 and 3 share one pipeline.
func ReportKeyForYear(programYear int) (string, bool) {
	switch programYear {
	case 1:
		return engine.ReportYearOne, true
	case 2, 3:
		return engine.ReportYearTwoThree, true
	case 4:
		return engine.ReportYearFour, true
	default:
		return "", false
	}
}

// Default returns the production report configuration.
func Default() engine.ReportConfig {
	return engine.ReportConfig{
		TypeLabels:     TypeLabels(),
		ReferralLabels: ReferralLabels(),
		ValidUnitTypes: ValidUnitTypes(),
		YearOneUrgency: []engine.UrgencyGroup{
			{Label: "General surgery", MatchCategories: []string{"general surgery"}, DayLimit: 2},
			{Label: "Orthopedics", MatchCategories: []string{"orthopedics"}, DayLimit: 2},
		},
		YearTwoThreeUrgency: []engine.UrgencyGroup{
			{Label: "Pediatrics", MatchCategories: []string{"pediatrics"}, DayLimit: 2},
			{Label: "Obstetrics and gynecology", MatchCategories: []string{"obstetrics", "gynecology"}, DayLimit: 2},
			{Label: "Internal medicine", MatchCategories: []string{"internal medicine"}, DayLimit: 2},
			{Label: "Psychiatry", MatchCategories: []string{"psychiatry"}, DayLimit: 1},
		},
		InternshipGroups: []engine.InternshipGroup{
			{Label: "Child health", MatchInternships: []string{"pediatrics"}},
			{Label: "Women's health", MatchInternships: []string{"obstetrics", "gynecology"}},
			{Label: "Mental health", MatchInternships: []string{"psychiatry"}},
		},
	}
}
