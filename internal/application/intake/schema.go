package intake

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// scanReportSchema is applied only when strict intake is enabled.
const scanReportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["scannedFiles", "features"],
  "properties": {
    "scannedFiles": {"type": "array"},
    "features": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["featureId", "supported"],
        "properties": {
          "featureId": {"type": "string"},
          "supported": {"type": "boolean"},
          "occurrences": {"type": "integer", "minimum": 0},
          "versions": {
            "type": "object",
            "additionalProperties": {"type": "string"}
          }
        }
      }
    }
  }
}`

// LoadScanReportSchema compiles the built-in scan report schema.
func LoadScanReportSchema() (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(scanReportSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}
