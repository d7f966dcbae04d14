// Package api holds the HTTP wire types and route registration of the companion API.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

// Profile defines model for Profile.
type Profile struct {
	FirstName       string              `json:"firstName"`
	LastName        string              `json:"lastName"`
	Email           openapi_types.Email `json:"email"`
	Phone           string              `json:"phone"`
	Location        string              `json:"location"`
	Age             int                 `json:"age"`
	Height          float64             `json:"height"`
	Weight          float64             `json:"weight"`
	BloodType       string              `json:"bloodType"`
	CycleLength     int                 `json:"cycleLength"`
	CycleRegularity string              `json:"cycleRegularity"`
	ActivityLevel   string              `json:"activityLevel"`

	// Bmi is derived from height and weight, ignored on input
	Bmi *float64 `json:"bmi,omitempty"`
}

// LoginRequest defines model for LoginRequest.
type LoginRequest struct {
	Name  string               `json:"name"`
	Email *openapi_types.Email `json:"email,omitempty"`
}

// SessionResponse defines model for SessionResponse.
type SessionResponse struct {
	SessionId openapi_types.UUID `json:"sessionId"`
	Profile   Profile            `json:"profile"`
	Messages  []ChatMessage      `json:"messages"`
}

// ProfileUpdateResponse defines model for ProfileUpdateResponse.
type ProfileUpdateResponse struct {
	Profile            Profile        `json:"profile"`
	WorkoutRegenerated bool           `json:"workoutRegenerated"`
	WorkoutPlan        *WorkoutPlan   `json:"workoutPlan,omitempty"`
	WorkoutError       *ErrorResponse `json:"workoutError,omitempty"`
}

// AssessmentRequest defines model for AssessmentRequest.
type AssessmentRequest struct {
	Age int `json:"age"`

	// Bmi defaults to the value derived from the session profile
	Bmi           *float64 `json:"bmi,omitempty"`
	CycleLength   int      `json:"cycleLength"`
	Symptoms      []string `json:"symptoms"`
	FamilyHistory bool     `json:"familyHistory"`
	StressLevel   int      `json:"stressLevel"`
	SleepHours    float64  `json:"sleepHours"`
}

// AssessmentResult defines model for AssessmentResult.
type AssessmentResult struct {
	RiskScore           int      `json:"riskScore"`
	RiskLevel           string   `json:"riskLevel"`
	Summary             string   `json:"summary"`
	Recommendations     []string `json:"recommendations"`
	DoctorReportSummary string   `json:"doctorReportSummary"`
}

// Exercise defines model for Exercise.
type Exercise struct {
	Name      string `json:"name"`
	Duration  string `json:"duration"`
	Intensity string `json:"intensity"`
}

// WorkoutPlan defines model for WorkoutPlan.
type WorkoutPlan struct {
	Focus     string     `json:"focus"`
	Exercises []Exercise `json:"exercises"`
}

// ChatMessage defines model for ChatMessage.
type ChatMessage struct {
	Id        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRequest defines model for ChatRequest.
type ChatRequest struct {
	Text string `json:"text"`
}

// ChatResponse defines model for ChatResponse.
type ChatResponse struct {
	UserMessage ChatMessage `json:"userMessage"`
	Reply       ChatMessage `json:"reply"`

	// Fallback is true when Reply is the connection apology; Error holds the cause
	Fallback bool           `json:"fallback"`
	Error    *ErrorResponse `json:"error,omitempty"`
}

// ChatHistoryResponse defines model for ChatHistoryResponse.
type ChatHistoryResponse struct {
	Messages []ChatMessage `json:"messages"`
}

// HealthLogRequest defines model for HealthLogRequest.
type HealthLogRequest struct {
	Day     *string  `json:"day,omitempty"`
	Sleep   *float64 `json:"sleep,omitempty"`
	Stress  *float64 `json:"stress,omitempty"`
	Workout *float64 `json:"workout,omitempty"`
}

// HealthLogEntry defines model for HealthLogEntry.
type HealthLogEntry struct {
	Day   string  `json:"day"`
	Value float64 `json:"value"`
}

// HealthLog defines model for HealthLog.
type HealthLog struct {
	Sleep   []HealthLogEntry `json:"sleep"`
	Stress  []HealthLogEntry `json:"stress"`
	Workout []HealthLogEntry `json:"workout"`
}

// SlotState defines model for SlotState.
type SlotState struct {
	Slot       string     `json:"slot"`
	Status     string     `json:"status"`
	Reason     *string    `json:"reason,omitempty"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// SlotsResponse defines model for SlotsResponse.
type SlotsResponse struct {
	Slots []SlotState `json:"slots"`
}

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Provider string `json:"provider"`
	Sessions int    `json:"sessions"`
}
