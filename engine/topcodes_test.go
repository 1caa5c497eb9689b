package engine

import (
	"fmt"
	"testing"
)

func problemsOf(r *ClinicalRecord) []string {
	return r.Details.Problems
}

func TestTopCodesCapsAtTwenty(t *testing.T) {
	var records []ClinicalRecord
	for i := 0; i < 25; i++ {
		records = append(records, ClinicalRecord{Details: Details{
			Problems: CodeList{fmt.Sprintf("P%02d", i)},
		}})
	}

	ranked := TopCodes(records, problemsOf, 0)
	if len(ranked) != DefaultTopCodeLimit {
		t.Errorf("got %d codes, want the default cap of %d", len(ranked), DefaultTopCodeLimit)
	}
}

func TestTopCodesOrderAndTies(t *testing.T) {
	records := []ClinicalRecord{
		{Details: Details{Problems: CodeList{"B", "A"}}},
		{Details: Details{Problems: CodeList{"A"}}},
		{Details: Details{Problems: CodeList{"C"}}},
	}

	ranked := TopCodes(records, problemsOf, 10)
	if len(ranked) != 3 {
		t.Fatalf("got %d codes, want 3", len(ranked))
	}
	if ranked[0].Code != "A" || ranked[0].Count != 2 {
		t.Errorf("top code = %+v, want A×2", ranked[0])
	}
	// B and C tie at 1; B was seen first.
	if ranked[1].Code != "B" || ranked[2].Code != "C" {
		t.Errorf("tie order = %s, %s; want first-seen B, C", ranked[1].Code, ranked[2].Code)
	}
}

func TestTopCodesDedupesWithinRecord(t *testing.T) {
	records := []ClinicalRecord{
		{Details: Details{Problems: CodeList{"A", "A", " A "}}},
		{Details: Details{Problems: CodeList{"A"}}},
	}

	ranked := TopCodes(records, problemsOf, 10)
	if len(ranked) != 1 || ranked[0].Count != 2 {
		t.Errorf("ranked = %+v, want A counted once per record", ranked)
	}
}

func TestTopCodesDropsBlanks(t *testing.T) {
	records := []ClinicalRecord{
		{Details: Details{Problems: CodeList{"", "  ", "A"}}},
	}

	ranked := TopCodes(records, problemsOf, 10)
	if len(ranked) != 1 || ranked[0].Code != "A" {
		t.Errorf("ranked = %+v, want blanks dropped", ranked)
	}
}
