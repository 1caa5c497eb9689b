package engine

import (
	"errors"
	"fmt"
)

// ============================================================================
// REPORT PIPELINES — per-program-year sample reports
// ============================================================================
// Each pipeline composes the sampler, the urgency selector, the breakdown
// builder, and the ranker over differently filtered slices of the record
// set. Which sections appear in the payload depends on the program year:
// a missing section means "not applicable to this year", not "no data".
// ============================================================================

// Report keys accepted by Reporter.Build.
const (
	ReportYearOne      = "year1"
	ReportYearTwoThree = "year2-3"
	ReportYearFour     = "year4"
)

// ErrUnknownReport is returned for a report key no pipeline handles.
var ErrUnknownReport = errors.New("no such report")

// InternshipGroup configures one complementary-training sample: a label and
// the internship placements it covers.
type InternshipGroup struct {
	Label            string   `json:"label"`
	MatchInternships []string `json:"matchInternships"`
}

// ReportConfig carries the static lookup tables the pipelines need. It is
// injected at construction so reports can be tested with alternate
// vocabularies; see the vocab package for the production tables.
type ReportConfig struct {
	TypeLabels          map[string]string
	ReferralLabels      map[string]string
	ValidUnitTypes      []string
	YearOneUrgency      []UrgencyGroup
	YearTwoThreeUrgency []UrgencyGroup
	InternshipGroups    []InternshipGroup
}

// InternshipSample is a per-placement week sample in the years 2–3 report.
type InternshipSample struct {
	Internship string       `json:"internship"`
	Weeks      []WeekSample `json:"weeks"`
}

// ReportPayload is the structured report output. Optional sections are nil
// when the pipeline that produced the payload does not compute them.
type ReportPayload struct {
	Report string `json:"report"`

	Summary           *Metrics                `json:"summary,omitempty"`
	Weeks             []WeekSample            `json:"weeks,omitempty"`
	WeeksByYear       map[string][]WeekSample `json:"weeksByYear,omitempty"`
	UnitSample        *UnitSampleBreakdown    `json:"unitSample,omitempty"`
	Urgency           []UrgencySelection      `json:"urgency,omitempty"`
	TopProblems       []CodeCount             `json:"topProblems,omitempty"`
	InternshipSamples []InternshipSample      `json:"internshipSamples,omitempty"`
}

// Reporter builds sample reports from a record collection.
type Reporter struct {
	cfg ReportConfig
}

// NewReporter creates a Reporter with the given lookup tables.
func NewReporter(cfg ReportConfig) *Reporter {
	return &Reporter{cfg: cfg}
}

// Build dispatches to the pipeline for the given report key.
func (rp *Reporter) Build(key string, records []ClinicalRecord) (*ReportPayload, error) {
	switch key {
	case ReportYearOne:
		return rp.BuildYearOne(records), nil
	case ReportYearTwoThree:
		return rp.BuildYearTwoThree(records), nil
	case ReportYearFour:
		return rp.BuildYearFour(records), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, key)
	}
}

// aggregate applies the injected label tables.
func (rp *Reporter) aggregate(records []ClinicalRecord) *Metrics {
	return Aggregate(records,
		WithTypeLabels(rp.cfg.TypeLabels),
		WithReferralLabels(rp.cfg.ReferralLabels),
	)
}

// unitRecords narrows to unit consultations of a countable type.
func (rp *Reporter) unitRecords(records []ClinicalRecord) []ClinicalRecord {
	valid := make(map[string]bool, len(rp.cfg.ValidUnitTypes))
	for _, t := range rp.cfg.ValidUnitTypes {
		valid[t] = true
	}
	out := make([]ClinicalRecord, 0, len(records))
	for i := range records {
		if records[i].Location == LocationUnit && valid[records[i].Type] {
			out = append(out, records[i])
		}
	}
	return out
}

func filterLocation(records []ClinicalRecord, location string) []ClinicalRecord {
	out := make([]ClinicalRecord, 0, len(records))
	for i := range records {
		if records[i].Location == location {
			out = append(out, records[i])
		}
	}
	return out
}

// ============================================================================
// YEAR 1
// ============================================================================

// BuildYearOne samples the 4 best second-semester weeks (at least 3 distinct
// days each) of unit consultations, summarizes exactly the records in those
// weeks, and selects the busiest urgent-care days for the year-1 specialty
// groups.
func (rp *Reporter) BuildYearOne(records []ClinicalRecord) *ReportPayload {
	unit := rp.unitRecords(records)

	weeks := SelectBestWeeks(unit, WeekOptions{
		Limit:          4,
		MinDaysPerWeek: 3,
		StartMonth:     7,
		EndMonth:       12,
	})
	sampled := RecordsInWeeks(unit, weeks)

	urgent := filterLocation(records, LocationUrgentCare)

	return &ReportPayload{
		Report:     ReportYearOne,
		Weeks:      weeks,
		Summary:    rp.aggregate(sampled),
		UnitSample: BuildBreakdown(sampled, rp.cfg.ValidUnitTypes),
		Urgency:    SelectTopDays(urgent, rp.cfg.YearOneUrgency),
	}
}

// ============================================================================
// YEARS 2–3
// ============================================================================

// BuildYearTwoThree samples 15 best weeks independently for program years 2
// and 3, ranks the most frequent problems across the combined sampled weeks,
// selects urgent-care days for the year-2/3 specialty groups, and samples 4
// best weeks of complementary training per internship group.
func (rp *Reporter) BuildYearTwoThree(records []ClinicalRecord) *ReportPayload {
	unit := rp.unitRecords(records)

	opts := WeekOptions{Limit: 15, MinDaysPerWeek: 3}
	weeksByYear := make(map[string][]WeekSample, 2)
	var sampled []ClinicalRecord
	for _, year := range []int{2, 3} {
		yearRecords := make([]ClinicalRecord, 0, len(unit))
		for i := range unit {
			if unit[i].ProgramYear == year {
				yearRecords = append(yearRecords, unit[i])
			}
		}
		weeks := SelectBestWeeks(yearRecords, opts)
		weeksByYear[fmt.Sprintf("year%d", year)] = weeks
		sampled = append(sampled, RecordsInWeeks(yearRecords, weeks)...)
	}

	urgent := filterLocation(records, LocationUrgentCare)
	complementary := filterLocation(records, LocationComplementary)

	return &ReportPayload{
		Report:      ReportYearTwoThree,
		WeeksByYear: weeksByYear,
		TopProblems: TopCodes(sampled, func(r *ClinicalRecord) []string {
			return r.Details.Problems
		}, DefaultTopCodeLimit),
		Urgency:           SelectTopDays(urgent, rp.cfg.YearTwoThreeUrgency),
		InternshipSamples: rp.internshipSamples(complementary),
	}
}

// internshipSamples runs a fixed 4-best-week sample per internship group
// over complementary-training records. Groups with no weeks are omitted.
func (rp *Reporter) internshipSamples(records []ClinicalRecord) []InternshipSample {
	samples := make([]InternshipSample, 0, len(rp.cfg.InternshipGroups))
	for _, group := range rp.cfg.InternshipGroups {
		match := make(map[string]bool, len(group.MatchInternships))
		for _, placement := range group.MatchInternships {
			match[foldCategory(placement)] = true
		}

		grouped := make([]ClinicalRecord, 0, len(records))
		for i := range records {
			if match[foldCategory(records[i].Details.Internship)] {
				grouped = append(grouped, records[i])
			}
		}

		weeks := SelectBestWeeks(grouped, WeekOptions{Limit: 4})
		if len(weeks) == 0 {
			continue
		}
		samples = append(samples, InternshipSample{
			Internship: group.Label,
			Weeks:      weeks,
		})
	}
	return samples
}

// ============================================================================
// YEAR 4
// ============================================================================

// BuildYearFour summarizes every fully autonomous unit consultation of a
// countable type. No sampling — for the final year the whole period counts.
func (rp *Reporter) BuildYearFour(records []ClinicalRecord) *ReportPayload {
	unit := rp.unitRecords(records)
	full := make([]ClinicalRecord, 0, len(unit))
	for i := range unit {
		if unit[i].Autonomy == AutonomyFull {
			full = append(full, unit[i])
		}
	}

	return &ReportPayload{
		Report:  ReportYearFour,
		Summary: rp.aggregate(full),
	}
}
