package service

import (
	"encoding/json"
	"fmt"

	"github.com/vcscsvcscs/ova-health/backend/internal/ai"
	"github.com/vcscsvcscs/ova-health/backend/internal/contract"
	"github.com/vcscsvcscs/ova-health/backend/pkg/model"
)

// MentorInstruction is the persona every chat request is prefixed with
const MentorInstruction = `You are Dr. Ova, a compassionate and knowledgeable medical expert specializing in women's health and PCOS (Polycystic Ovary Syndrome).
Your goal is to provide supportive mentorship, answer medical questions accurately but simply, and guide users toward professional medical help when necessary.
Always maintain an empathetic, non-judgmental tone.
If a user asks about medical diagnosis, clarify that you are an AI assistant and they should see a doctor for confirmation, but provide educational insights based on their description.`

// GreetingText is the mentor's opening turn in every new conversation
const GreetingText = "Hello! I'm Dr. Ova, your virtual health mentor. I'm here to support you with information about PCOS, reproductive health, and wellness strategies. How can I help you today?"

const assessmentPrompt = `Analyze the following patient data for Polycystic Ovary Syndrome (PCOS) risk factors.
Patient Data: %s

Provide a risk assessment based on the Rotterdam criteria logic (simplified for screening).
Return JSON.`

const workoutPrompt = `Create a daily workout plan for a %d year old woman with a %s activity level, specifically optimized for hormonal balance and metabolic health (PCOS friendly). Return JSON.`

// BuildAssessmentRequest embeds the answers as JSON in the screening prompt.
// Ranges are checked upstream; symptoms are collapsed to a set in first-seen order.
func BuildAssessmentRequest(input model.AssessmentInput) ai.Request {
	input.Symptoms = uniqueSymptoms(input.Symptoms)

	// marshal cannot fail for this plain struct
	payload, _ := json.Marshal(input)

	return ai.Request{
		Slot:     model.SlotAssessment,
		Prompt:   fmt.Sprintf(assessmentPrompt, payload),
		Contract: contract.Assessment,
	}
}

// BuildWorkoutRequest composes a workout prompt tailored to age and activity level
func BuildWorkoutRequest(age int, level model.ActivityLevel) (ai.Request, error) {
	if !level.Valid() {
		return ai.Request{}, invalid(ErrInvalidActivityLevel, "%q", level)
	}

	return ai.Request{
		Slot:     model.SlotWorkout,
		Prompt:   fmt.Sprintf(workoutPrompt, age, level),
		Contract: contract.Workout,
	}, nil
}

// BuildChatRequest replays the full history followed by the new message under the mentor persona
func BuildChatRequest(history []model.ChatTurn, newMessage string) ai.Request {
	messages := make([]ai.Message, 0, len(history))
	for _, turn := range history {
		messages = append(messages, ai.Message{Role: turn.Role, Text: turn.Text})
	}

	return ai.Request{
		Slot:              model.SlotChat,
		SystemInstruction: MentorInstruction,
		Prompt:            newMessage,
		History:           messages,
	}
}

func uniqueSymptoms(symptoms []string) []string {
	seen := make(map[string]struct{}, len(symptoms))
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
