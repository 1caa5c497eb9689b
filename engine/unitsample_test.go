package engine

import "testing"

func breakdownFixture() []ClinicalRecord {
	return []ClinicalRecord{
		{Type: "first", Autonomy: "partial", Presential: boolPtr(true)},
		{Type: "first", Autonomy: "partial", Presential: boolPtr(false)},
		{Type: "follow-up", Autonomy: "partial"},
		{Type: "follow-up", Autonomy: "full", Presential: boolPtr(true)},
		{Type: "home-visit", Autonomy: "full", Presential: boolPtr(true)}, // not a valid type here
		{Autonomy: "full"}, // no type at all
	}
}

var breakdownTypes = []string{"first", "follow-up"}

func TestBuildBreakdownLeafSumsEqualTotal(t *testing.T) {
	b := BuildBreakdown(breakdownFixture(), breakdownTypes)

	if b.TotalCount != 4 {
		t.Fatalf("TotalCount = %d, want 4", b.TotalCount)
	}

	leafSum := 0
	autonomySum := 0
	for _, cell := range b.ByAutonomy {
		autonomySum += cell.Count
		for _, pcell := range cell.ByPresentialState {
			for _, n := range pcell.ByType {
				leafSum += n
			}
		}
	}
	if leafSum != b.TotalCount {
		t.Errorf("leaf type counts sum to %d, want %d", leafSum, b.TotalCount)
	}
	if autonomySum != b.TotalCount {
		t.Errorf("autonomy counts sum to %d, want %d", autonomySum, b.TotalCount)
	}
}

func TestBuildBreakdownPresentialDefaultsToRemote(t *testing.T) {
	b := BuildBreakdown(breakdownFixture(), breakdownTypes)

	partial := b.ByAutonomy["partial"]
	if partial == nil {
		t.Fatal("missing partial autonomy cell")
	}
	// One explicit true, one explicit false, one absent: false and absent
	// both land under remote.
	if got := partial.ByPresentialState[StatePresential].Count; got != 1 {
		t.Errorf("presential count = %d, want 1", got)
	}
	if got := partial.ByPresentialState[StateRemote].Count; got != 2 {
		t.Errorf("remote count = %d, want 2 (false and absent)", got)
	}
}

func TestBuildBreakdownExcludesInvalidTypes(t *testing.T) {
	b := BuildBreakdown(breakdownFixture(), breakdownTypes)

	for level, cell := range b.ByAutonomy {
		for state, pcell := range cell.ByPresentialState {
			for code := range pcell.ByType {
				if code != "first" && code != "follow-up" {
					t.Errorf("unexpected type %q under %s/%s", code, level, state)
				}
			}
		}
	}

	full := b.ByAutonomy["full"]
	if full == nil || full.Count != 1 {
		t.Errorf("full autonomy cell = %+v, want only the valid-type record", full)
	}
}
