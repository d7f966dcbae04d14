package contract

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/vcscsvcscs/ova-health/backend/pkg/model"
)

// Contract describes the JSON shape an AI-backed operation must return.
// The same value is sent to the model as the expected output shape and used
// to validate what comes back.
type Contract struct {
	Name        string
	Description string
	Schema      *openapi3.Schema
}

// Validate checks a decoded JSON value against the contract schema.
// All violations are collected into a single error.
func (c *Contract) Validate(value any) error {
	if err := c.Schema.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%s contract: %w", c.Name, err)
	}
	return nil
}

// JSONSchema returns the contract schema as a plain JSON Schema document
func (c *Contract) JSONSchema() (map[string]any, error) {
	raw, err := json.Marshal(c.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s schema: %w", c.Name, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s schema: %w", c.Name, err)
	}
	return doc, nil
}

// Assessment is the contract for a PCOS risk assessment result
var Assessment = &Contract{
	Name:        "risk_assessment",
	Description: "PCOS risk screening result",
	Schema: openapi3.NewObjectSchema().
		WithProperty("riskScore", describe(
			openapi3.NewIntegerSchema().WithMin(0).WithMax(100),
			"A score from 0 to 100 indicating risk probability.")).
		WithProperty("riskLevel", openapi3.NewStringSchema().WithEnum(riskLevelEnum()...)).
		WithProperty("summary", describe(
			openapi3.NewStringSchema(),
			"A friendly summary for the patient.")).
		WithProperty("recommendations", describe(
			openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()),
			"List of actionable health steps.")).
		WithProperty("doctorReportSummary", describe(
			openapi3.NewStringSchema(),
			"A concise, technical summary using medical terminology suitable for a doctor to read quickly.")).
		WithRequired([]string{"riskScore", "riskLevel", "summary", "recommendations", "doctorReportSummary"}),
}

// Workout is the contract for a generated daily workout plan
var Workout = &Contract{
	Name:        "workout_plan",
	Description: "Daily workout plan",
	Schema: openapi3.NewObjectSchema().
		WithProperty("focus", openapi3.NewStringSchema()).
		WithProperty("exercises", openapi3.NewArraySchema().WithItems(
			openapi3.NewObjectSchema().
				WithProperty("name", openapi3.NewStringSchema()).
				WithProperty("duration", openapi3.NewStringSchema()).
				WithProperty("intensity", openapi3.NewStringSchema()).
				WithRequired([]string{"name", "duration", "intensity"}),
		)).
		WithRequired([]string{"focus", "exercises"}),
}

func describe(s *openapi3.Schema, description string) *openapi3.Schema {
	s.Description = description
	return s
}

func riskLevelEnum() []any {
	values := make([]any, 0, len(model.RiskLevels))
	for _, l := range model.RiskLevels {
		values = append(values, string(l))
	}
	return values
}
