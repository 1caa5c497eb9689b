// Package residlog provides the analytics and sampling engine behind a
// medical-residency consultation logbook.
//
// Usage:
//
//	import "github.com/residlog-org/residlog/engine"
//	import "github.com/residlog-org/residlog/vocab"
//
//	metrics := engine.Aggregate(records,
//	    engine.WithTypeLabels(vocab.TypeLabels()),
//	    engine.WithReferralLabels(vocab.ReferralLabels()),
//	)
//
//	reporter := engine.NewReporter(vocab.Default())
//	payload, err := reporter.Build("year1", records)
//
// The engine takes an already-fetched collection of clinical records and
// returns dashboard metrics or per-program-year sample reports. It never
// fetches data itself and never mutates its input — identical input always
// produces identical output, which is what makes the reports usable as
// compliance evidence.
//
// Persistence is handled separately by the store package.
package residlog
