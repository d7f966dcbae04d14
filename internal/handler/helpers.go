package handler

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/ova-health/backend/pkg/api"
	"github.com/vcscsvcscs/ova-health/backend/pkg/model"
)

// Helper functions for type conversions between API types and internal models

// stringPtr creates a pointer to a string
func stringPtr(s string) *string {
	return &s
}

// float64Ptr creates a pointer to a float64
func float64Ptr(f float64) *float64 {
	return &f
}

// timePtr copies a *time.Time so responses never alias session state
func timePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// sessionKey converts the bound path parameter to a registry key
func sessionKey(id openapi_types.UUID) string {
	return uuid.UUID(id).String()
}

func parseSessionID(s string) (openapi_types.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return openapi_types.UUID{}, fmt.Errorf("invalid session id %q: %w", s, err)
	}
	return id, nil
}

func toAPIProfile(p model.Profile) api.Profile {
	return api.Profile{
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Email:           openapi_types.Email(p.Email),
		Phone:           p.Phone,
		Location:        p.Location,
		Age:             p.Age,
		Height:          p.Height,
		Weight:          p.Weight,
		BloodType:       p.BloodType,
		CycleLength:     p.CycleLength,
		CycleRegularity: string(p.CycleRegularity),
		ActivityLevel:   string(p.ActivityLevel),
		Bmi:             float64Ptr(p.BMI()),
	}
}

func toModelProfile(p api.Profile) model.Profile {
	return model.Profile{
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Email:           string(p.Email),
		Phone:           p.Phone,
		Location:        p.Location,
		Age:             p.Age,
		Height:          p.Height,
		Weight:          p.Weight,
		BloodType:       p.BloodType,
		CycleLength:     p.CycleLength,
		CycleRegularity: model.CycleRegularity(p.CycleRegularity),
		ActivityLevel:   model.ActivityLevel(p.ActivityLevel),
	}
}

func toAPIAssessment(r model.AssessmentResult) api.AssessmentResult {
	recs := r.Recommendations
	if recs == nil {
		recs = []string{}
	}
	return api.AssessmentResult{
		RiskScore:           r.RiskScore,
		RiskLevel:           string(r.RiskLevel),
		Summary:             r.Summary,
		Recommendations:     recs,
		DoctorReportSummary: r.DoctorReportSummary,
	}
}

func toAPIWorkoutPlan(p model.WorkoutPlan) api.WorkoutPlan {
	exercises := make([]api.Exercise, 0, len(p.Exercises))
	for _, e := range p.Exercises {
		exercises = append(exercises, api.Exercise{
			Name:      e.Name,
			Duration:  e.Duration,
			Intensity: e.Intensity,
		})
	}
	return api.WorkoutPlan{Focus: p.Focus, Exercises: exercises}
}

func toAPIChatMessage(t model.ChatTurn) api.ChatMessage {
	return api.ChatMessage{
		Id:        t.ID,
		Role:      string(t.Role),
		Text:      t.Text,
		Timestamp: t.Timestamp,
	}
}

func toAPIChatMessages(turns []model.ChatTurn) []api.ChatMessage {
	messages := make([]api.ChatMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, toAPIChatMessage(t))
	}
	return messages
}

func toAPIHealthLog(l model.HealthLog) api.HealthLog {
	return api.HealthLog{
		Sleep:   toAPIHealthEntries(l.Sleep),
		Stress:  toAPIHealthEntries(l.Stress),
		Workout: toAPIHealthEntries(l.Calories),
	}
}

func toAPIHealthEntries(entries []model.HealthLogEntry) []api.HealthLogEntry {
	out := make([]api.HealthLogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, api.HealthLogEntry{Day: e.Day, Value: e.Value})
	}
	return out
}

func toAPISlots(calls []model.PendingCall) []api.SlotState {
	slots := make([]api.SlotState, 0, len(calls))
	for _, call := range calls {
		state := api.SlotState{
			Slot:       string(call.Slot),
			Status:     string(call.Status),
			StartedAt:  timePtr(call.StartedAt),
			FinishedAt: timePtr(call.FinishedAt),
		}
		if call.Reason != "" {
			state.Reason = stringPtr(call.Reason)
		}
		slots = append(slots, state)
	}
	return slots
}
