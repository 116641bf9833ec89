package oracle

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// classificationSchema constrains LLM classification payloads before
// any field is trusted. Bounds mirror the turn engine's delta limits.
const classificationSchema = `{
  "type": "object",
  "required": ["action_type", "description", "consequences", "risk_level", "resource_impacts"],
  "properties": {
    "action_type": {
      "type": "string",
      "enum": ["COMBAT", "STEALTH", "EXPLORE", "REST", "MOVE", "CUSTOM"]
    },
    "description": {"type": "string"},
    "consequences": {
      "type": "array",
      "items": {"type": "string"}
    },
    "risk_level": {"type": "number", "minimum": 1, "maximum": 10},
    "resource_impacts": {
      "type": "object",
      "required": ["health", "food", "water"],
      "properties": {
        "health": {"type": "number", "minimum": -100, "maximum": 100},
        "food": {"type": "number", "minimum": -10, "maximum": 10},
        "water": {"type": "number", "minimum": -10, "maximum": 10}
      }
    }
  }
}`

var compiledClassificationSchema = jsonschema.MustCompileString(
	"classification.json", classificationSchema)

// classificationPayload is the wire shape of an LLM classification.
type classificationPayload struct {
	ActionType   string   `json:"action_type"`
	Description  string   `json:"description"`
	Consequences []string `json:"consequences"`
	RiskLevel    float64  `json:"risk_level"`
	Impacts      struct {
		Health float64 `json:"health"`
		Food   float64 `json:"food"`
		Water  float64 `json:"water"`
	} `json:"resource_impacts"`
}

// parseClassification validates raw LLM output against the schema and
// decodes it. Schema validation runs on the generic decoding so numeric
// bounds are checked before the payload shape is assumed.
func parseClassification(raw []byte) (classificationPayload, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return classificationPayload{}, fmt.Errorf("decode classification: %w", err)
	}
	if err := compiledClassificationSchema.Validate(generic); err != nil {
		return classificationPayload{}, fmt.Errorf("validate classification: %w", err)
	}

	var payload classificationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return classificationPayload{}, fmt.Errorf("decode classification: %w", err)
	}
	return payload, nil
}
