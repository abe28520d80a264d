package reports

import (
	"encoding/json"
	"fmt"
)

// Summary holds the counts embedded into the model prompt.
type Summary struct {
	TotalFilesScanned   int `json:"total_files_scanned"`
	TotalUniqueFeatures int `json:"total_unique_features"`
	SupportedFeatures   int `json:"supported_features"`
	UnsupportedFeatures int `json:"unsupported_features"`
}

// Summarize counts files and features. Supported + Unsupported always equals
// TotalUniqueFeatures.
func Summarize(r ScanReport) Summary {
	supported := 0
	for _, f := range r.Features {
		if f.Supported {
			supported++
		}
	}
	return Summary{
		TotalFilesScanned:   len(r.ScannedFiles),
		TotalUniqueFeatures: len(r.Features),
		SupportedFeatures:   supported,
		UnsupportedFeatures: len(r.Features) - supported,
	}
}

// looseReport decodes only what the summary counts, so fields the intake
// never typed (occurrences, versions, featureId) cannot fail the job.
type looseReport struct {
	ScannedFiles []json.RawMessage `json:"scannedFiles"`
	Features     []map[string]any  `json:"features"`
}

// SummarizeJSON summarizes a staged request body. A feature counts as
// supported when its "supported" value is truthy: true, a nonzero number, a
// non-empty string, array or object. The payload must be an object and
// features must be an array of objects.
func SummarizeJSON(payload []byte) (Summary, error) {
	var r looseReport
	if err := json.Unmarshal(payload, &r); err != nil {
		return Summary{}, fmt.Errorf("decode scan report: %w", err)
	}
	supported := 0
	for i, f := range r.Features {
		if f == nil {
			return Summary{}, fmt.Errorf("decode scan report: feature %d is null", i)
		}
		if truthy(f["supported"]) {
			supported++
		}
	}
	return Summary{
		TotalFilesScanned:   len(r.ScannedFiles),
		TotalUniqueFeatures: len(r.Features),
		SupportedFeatures:   supported,
		UnsupportedFeatures: len(r.Features) - supported,
	}, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
