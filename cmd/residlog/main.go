package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/residlog-org/residlog/engine"
	"github.com/residlog-org/residlog/helpers"
	"github.com/residlog-org/residlog/vocab"
)

// ============================================================================
// RESIDLOG CLI — metrics and sample reports from a record export
// ============================================================================

const version = "0.1.0"

func main() {
	filePath := flag.String("file", "", "Path to JSON record export (required)")
	report := flag.String("report", "", "Report to build: year1, year2-3, year4")
	metrics := flag.Bool("metrics", false, "Compute dashboard metrics instead of a report")
	location := flag.String("location", "", "Filter: location")
	excludeLocation := flag.String("exclude-location", "", "Filter: exclude a location")
	sex := flag.String("sex", "", "Filter: sex")
	consultType := flag.String("type", "", "Filter: consultation type")
	ageMin := flag.Float64("age-min", -1, "Filter: minimum age in years")
	ageMax := flag.Float64("age-max", -1, "Filter: maximum age in years")
	format := flag.String("format", "json", "Output format: json, pretty")
	outFile := flag.String("out", "", "Write output to file instead of stdout")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `residlog — consultation analytics and sample reports

Usage:
  residlog --file records.json --metrics
  residlog --file records.json --report year1 --format pretty
  residlog --file records.json --metrics --location unit --age-min 18

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Reports:
  year1     4 best second-semester weeks + urgent-care day selection
  year2-3   15 best weeks per year, top problems, internship samples
  year4     full-period summary of fully autonomous unit consultations
`)
	}
	flag.Parse()

	if *showVersion {
		fmt.Println("residlog " + version)
		return
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if !*metrics && *report == "" {
		logger.Error().Msg("nothing to do: pass --metrics or --report")
		os.Exit(2)
	}

	records, err := helpers.LoadRecordsFile(*filePath)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load records")
		os.Exit(1)
	}
	logger.Debug().Int("records", len(records)).Str("file", *filePath).Msg("records loaded")

	spec := engine.FilterSpec{
		Sex:             *sex,
		Type:            *consultType,
		Location:        *location,
		ExcludeLocation: *excludeLocation,
	}
	if *ageMin >= 0 {
		spec.AgeMin = ageMin
	}
	if *ageMax >= 0 {
		spec.AgeMax = ageMax
	}
	filtered := spec.Apply(records)
	logger.Debug().Int("records", len(filtered)).Msg("records after filtering")

	var result interface{}
	if *metrics {
		result = engine.Aggregate(filtered,
			engine.WithTypeLabels(vocab.TypeLabels()),
			engine.WithReferralLabels(vocab.ReferralLabels()),
		)
	} else {
		reporter := engine.NewReporter(vocab.Default())
		payload, err := reporter.Build(*report, filtered)
		if err != nil {
			logger.Error().Err(err).Str("report", *report).Msg("failed to build report")
			os.Exit(1)
		}
		result = payload
	}

	var output []byte
	if *format == "pretty" {
		output, err = json.MarshalIndent(result, "", "  ")
	} else {
		output, err = json.Marshal(result)
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode output")
		os.Exit(1)
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, append(output, '\n'), 0o644); err != nil {
			logger.Error().Err(err).Str("path", *outFile).Msg("failed to write output")
			os.Exit(1)
		}
		logger.Info().Str("path", *outFile).Msg("output written")
		return
	}
	fmt.Println(string(output))
}
