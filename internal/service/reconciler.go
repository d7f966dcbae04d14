package service

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/vcscsvcscs/ova-health/backend/internal/contract"
	"github.com/vcscsvcscs/ova-health/backend/pkg/model"
)

// ReconcileAssessment turns raw model output into a validated AssessmentResult
func ReconcileAssessment(raw string) (model.AssessmentResult, error) {
	var result model.AssessmentResult
	if err := reconcile(contract.Assessment, raw, &result); err != nil {
		return model.AssessmentResult{}, err
	}
	return result, nil
}

// ReconcileWorkout turns raw model output into a validated WorkoutPlan
func ReconcileWorkout(raw string) (model.WorkoutPlan, error) {
	var plan model.WorkoutPlan
	if err := reconcile(contract.Workout, raw, &plan); err != nil {
		return model.WorkoutPlan{}, err
	}
	return plan, nil
}

// reconcile validates the untyped document first so that nulls and missing
// fields are rejected before decoding could fill them with zero values.
func reconcile(c *contract.Contract, raw string, out any) error {
	body := stripCodeFence(raw)
	if body == "" {
		return &SchemaViolation{Contract: c.Name, Reason: "empty response"}
	}

	var doc any
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&doc); err != nil {
		return &SchemaViolation{Contract: c.Name, Reason: "response is not valid JSON", Err: err}
	}
	// More reports false for a stray closing delimiter, so require EOF instead
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &SchemaViolation{Contract: c.Name, Reason: "trailing data after JSON document"}
	}

	if err := c.Validate(doc); err != nil {
		return &SchemaViolation{Contract: c.Name, Reason: "contract validation failed", Err: err}
	}

	// re-encoding normalizes whole numbers such as 62.0 so they decode into int fields
	normalized, err := json.Marshal(doc)
	if err != nil {
		return &SchemaViolation{Contract: c.Name, Reason: "failed to normalize document", Err: err}
	}
	if err := json.Unmarshal(normalized, out); err != nil {
		return &SchemaViolation{Contract: c.Name, Reason: "failed to decode validated document", Err: err}
	}

	return nil
}

// stripCodeFence removes a surrounding markdown code block, which models add despite JSON mode
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
		// drop the language tag line
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
