package engine

import (
	"testing"
	"time"
)

func TestSelectBestWeeksBasicWeek(t *testing.T) {
	// Mon/Tue/Wed of the same week.
	records := []ClinicalRecord{
		unitRecord(datePtr(2025, time.March, 10), "first"),
		unitRecord(datePtr(2025, time.March, 11), "first"),
		unitRecord(datePtr(2025, time.March, 12), "first"),
	}

	weeks := SelectBestWeeks(records, WeekOptions{Limit: 1, MinDaysPerWeek: 3})
	if len(weeks) != 1 {
		t.Fatalf("got %d weeks, want 1", len(weeks))
	}

	week := weeks[0]
	if week.RecordCount != 3 || week.UniqueDayCount != 3 {
		t.Errorf("week = %+v, want recordCount=3 uniqueDayCount=3", week)
	}
	wantMonday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	if !week.WeekKey.Equal(wantMonday) {
		t.Errorf("WeekKey = %v, want the Monday %v", week.WeekKey, wantMonday)
	}
	if !week.EndDate.Equal(wantMonday.AddDate(0, 0, 6)) {
		t.Errorf("EndDate = %v, want Sunday", week.EndDate)
	}
}

func TestSelectBestWeeksMinDaysExcludes(t *testing.T) {
	// Three records but only two distinct days.
	records := []ClinicalRecord{
		unitRecord(datePtr(2025, time.March, 10), "first"),
		unitRecord(datePtr(2025, time.March, 10), "first"),
		unitRecord(datePtr(2025, time.March, 11), "first"),
	}

	if weeks := SelectBestWeeks(records, WeekOptions{Limit: 1, MinDaysPerWeek: 3}); len(weeks) != 0 {
		t.Errorf("week with 2 unique days survived a minDaysPerWeek=3 threshold: %+v", weeks)
	}
}

func TestSundayBelongsToPrecedingMonday(t *testing.T) {
	// 2025-03-16 is a Sunday; its week starts Monday 2025-03-10.
	monday := MondayOf(time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC))
	want := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	if !monday.Equal(want) {
		t.Errorf("MondayOf(Sunday) = %v, want %v", monday, want)
	}

	if got := MondayOf(want); !got.Equal(want) {
		t.Errorf("MondayOf(Monday) = %v, want itself", got)
	}
}

func TestMonthWindowUsesTheWeeksMonday(t *testing.T) {
	records := []ClinicalRecord{
		// Week of Monday June 30: the Tuesday record is in July, but the
		// window is judged by the Monday, so the whole week is out.
		unitRecord(datePtr(2025, time.July, 1), "first"),
		// Week of Monday July 7.
		unitRecord(datePtr(2025, time.July, 8), "first"),
	}

	weeks := SelectBestWeeks(records, WeekOptions{Limit: 10, StartMonth: 7, EndMonth: 12})
	if len(weeks) != 1 {
		t.Fatalf("got %d weeks, want 1", len(weeks))
	}
	want := time.Date(2025, time.July, 7, 0, 0, 0, 0, time.UTC)
	if !weeks[0].WeekKey.Equal(want) {
		t.Errorf("kept week %v, want %v", weeks[0].WeekKey, want)
	}
}

func TestTieBreakKeepsFirstEncounteredWeek(t *testing.T) {
	// Two weeks with identical counts; the earlier-encountered week must
	// win the truncation.
	records := []ClinicalRecord{
		unitRecord(datePtr(2025, time.March, 10), "first"),
		unitRecord(datePtr(2025, time.March, 17), "first"),
	}

	weeks := SelectBestWeeks(records, WeekOptions{Limit: 1})
	if len(weeks) != 1 {
		t.Fatalf("got %d weeks, want 1", len(weeks))
	}
	want := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	if !weeks[0].WeekKey.Equal(want) {
		t.Errorf("tie went to %v, want first-encountered %v", weeks[0].WeekKey, want)
	}
}

func TestRecordsWithoutDatesAreExcluded(t *testing.T) {
	records := []ClinicalRecord{
		unitRecord(nil, "first"),
		unitRecord(datePtr(2025, time.March, 10), "first"),
	}

	weeks := SelectBestWeeks(records, WeekOptions{Limit: 5})
	if len(weeks) != 1 || weeks[0].RecordCount != 1 {
		t.Errorf("dateless record leaked into grouping: %+v", weeks)
	}
}

func TestRecordsInWeeks(t *testing.T) {
	records := []ClinicalRecord{
		unitRecord(datePtr(2025, time.March, 10), "first"),
		unitRecord(datePtr(2025, time.March, 12), "follow-up"),
		unitRecord(datePtr(2025, time.March, 24), "first"),
		unitRecord(nil, "first"),
	}

	weeks := SelectBestWeeks(records, WeekOptions{Limit: 1})
	members := RecordsInWeeks(records, weeks)

	if len(members) != 2 {
		t.Fatalf("got %d member records, want 2", len(members))
	}
	if members[0].Type != "first" || members[1].Type != "follow-up" {
		t.Errorf("member records out of input order: %+v", members)
	}
}
