package model

import (
	"math"
	"time"
)

// CycleRegularity describes how regular a user's menstrual cycle is
type CycleRegularity string

const (
	CycleRegular   CycleRegularity = "Regular"
	CycleIrregular CycleRegularity = "Irregular"
	CycleAbsent    CycleRegularity = "Absent"
)

// Valid reports whether r is one of the enumerated values
func (r CycleRegularity) Valid() bool {
	switch r {
	case CycleRegular, CycleIrregular, CycleAbsent:
		return true
	}
	return false
}

// ActivityLevel is the self-reported activity level of a user
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "Sedentary"
	ActivityModerate  ActivityLevel = "Moderate"
	ActivityActive    ActivityLevel = "Active"
)

// Valid reports whether l is one of the enumerated values
func (l ActivityLevel) Valid() bool {
	switch l {
	case ActivitySedentary, ActivityModerate, ActivityActive:
		return true
	}
	return false
}

// Profile represents the identity and biometric record of a user.
// It is always replaced as a whole, never patched field by field.
type Profile struct {
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Location        string          `json:"location"`
	Age             int             `json:"age"`
	Height          float64         `json:"height"` // cm
	Weight          float64         `json:"weight"` // kg
	BloodType       string          `json:"bloodType"`
	CycleLength     int             `json:"cycleLength"`
	CycleRegularity CycleRegularity `json:"cycleRegularity"`
	ActivityLevel   ActivityLevel   `json:"activityLevel"`
}

// DefaultProfile returns the profile a new session starts with
func DefaultProfile() Profile {
	return Profile{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane.doe@example.com",
		Phone:           "+1 (555) 123-4567",
		Location:        "New York, USA",
		Age:             25,
		Height:          165,
		Weight:          60,
		BloodType:       "A+",
		CycleLength:     28,
		CycleRegularity: CycleRegular,
		ActivityLevel:   ActivityModerate,
	}
}

// BMI returns the body mass index rounded to one decimal, or 0 when height is unknown
func (p Profile) BMI() float64 {
	if p.Height <= 0 {
		return 0
	}
	m := p.Height / 100
	return math.Round(p.Weight/(m*m)*10) / 10
}

// CommonSymptoms lists the symptom labels offered by the assessment form
var CommonSymptoms = []string{
	"Irregular periods",
	"Acne",
	"Excess hair growth (Hirsutism)",
	"Weight gain",
	"Hair loss (scalp)",
	"Darkening of skin",
}

// AssessmentInput holds the answers of one risk assessment attempt
type AssessmentInput struct {
	Age           int      `json:"age"`
	BMI           float64  `json:"bmi"`
	CycleLength   int      `json:"cycleLength"`
	Symptoms      []string `json:"symptoms"`
	FamilyHistory bool     `json:"familyHistory"`
	StressLevel   int      `json:"stressLevel"` // 1-10
	SleepHours    float64  `json:"sleepHours"`
}

// RiskLevel is the coarse risk bucket returned by the model
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// RiskLevels lists every accepted risk level in schema order
var RiskLevels = []RiskLevel{RiskLow, RiskModerate, RiskHigh}

// AssessmentResult is the validated outcome of a risk assessment
type AssessmentResult struct {
	RiskScore           int       `json:"riskScore"`
	RiskLevel           RiskLevel `json:"riskLevel"`
	Summary             string    `json:"summary"`
	Recommendations     []string  `json:"recommendations"`
	DoctorReportSummary string    `json:"doctorReportSummary"`
}

// ChatRole identifies the author of a chat turn
type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatTurn is one message in a mentorship conversation
type ChatTurn struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Exercise is a single entry of a workout plan
type Exercise struct {
	Name      string `json:"name"`
	Duration  string `json:"duration"`
	Intensity string `json:"intensity"`
}

// WorkoutPlan is a generated daily workout plan
type WorkoutPlan struct {
	Focus     string     `json:"focus"`
	Exercises []Exercise `json:"exercises"`
}

// Slot names a logical operation channel that allows one call in flight
type Slot string

const (
	SlotAssessment Slot = "assessment"
	SlotWorkout    Slot = "workout"
	SlotChat       Slot = "chat"
)

// Slots lists every slot
var Slots = []Slot{SlotAssessment, SlotWorkout, SlotChat}

// CallStatus represents the lifecycle state of a pending call
type CallStatus string

const (
	CallIdle      CallStatus = "idle"
	CallInFlight  CallStatus = "in_flight"
	CallSucceeded CallStatus = "succeeded"
	CallFailed    CallStatus = "failed"
)

// PendingCall is the transient state of one slot
type PendingCall struct {
	Slot       Slot       `json:"slot"`
	Status     CallStatus `json:"status"`
	Reason     string     `json:"reason,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// HealthMetric names one of the tracked daily series
type HealthMetric string

const (
	MetricSleep    HealthMetric = "sleep"
	MetricStress   HealthMetric = "stress"
	MetricCalories HealthMetric = "workout"
)

// HealthLogEntry is a single day value of a tracked series
type HealthLogEntry struct {
	Day   string  `json:"day"`
	Value float64 `json:"value"`
}

// HealthLog holds the rolling weekly series shown on the dashboard
type HealthLog struct {
	Sleep    []HealthLogEntry `json:"sleep"`
	Stress   []HealthLogEntry `json:"stress"`
	Calories []HealthLogEntry `json:"workout"`
}
