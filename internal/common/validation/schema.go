// Package validation checks inbound broker payloads against a JSON Schema
// before the pipeline touches them.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const newsIngestedSchema = `{
  "type": "object",
  "properties": {
    "articleId":        {"type": "string", "minLength": 1},
    "title":            {"type": "string"},
    "link":             {"type": "string"},
    "source":           {"type": "string"},
    "publishedAt":      {"type": "string"},
    "riskScore":        {"type": "number", "minimum": 0, "maximum": 1},
    "conflictKeywords": {"type": ["array", "null"], "items": {"type": "string"}},
    "processedAt":      {"type": "string"}
  },
  "required": ["articleId", "title", "riskScore"]
}`

var newsIngestedLoader = gojsonschema.NewStringLoader(newsIngestedSchema)

// ValidateNewsIngested validates a raw news-ingested payload. A non-nil
// error lists every violated constraint.
func ValidateNewsIngested(raw []byte) error {
	result, err := gojsonschema.Validate(newsIngestedLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("invalid news-ingested event: %s", strings.Join(msgs, "; "))
}
