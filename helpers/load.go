package helpers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/residlog-org/residlog/engine"
)

// ============================================================================
// RECORD LOADING — JSON exports → []engine.ClinicalRecord
// ============================================================================
// The consumer reads the export from wherever it lives (file, API dump).
// These helpers convert the raw bytes into typed records; the loose detail
// bag shapes (joined code strings, checkbox booleans) are handled by the
// record types' own decoders.
// ============================================================================

// LoadRecords parses a JSON array of clinical records.
func LoadRecords(data []byte) ([]engine.ClinicalRecord, error) {
	var records []engine.ClinicalRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing records: %w", err)
	}
	return records, nil
}

// LoadRecordsFile reads and parses a JSON record export from disk.
func LoadRecordsFile(path string) ([]engine.ClinicalRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return LoadRecords(data)
}
