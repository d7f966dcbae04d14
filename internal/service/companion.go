package service

import (
	"context"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vcscsvcscs/ova-health/backend/internal/ai"
	"github.com/vcscsvcscs/ova-health/backend/pkg/model"
	"go.uber.org/zap"
)

// ChatFallbackText is the model turn appended whenever a chat call fails
const ChatFallbackText = "I apologize, but I'm having trouble connecting right now. Please try again in a moment."

// AssessCommand submits one risk assessment attempt
type AssessCommand struct {
	Input model.AssessmentInput
}

// ChatCommand sends one user message to the mentor
type ChatCommand struct {
	Text string
}

// ChatReply is the outcome of a chat send. Cause is set when Reply is the fallback turn.
type ChatReply struct {
	User     model.ChatTurn
	Reply    model.ChatTurn
	Fallback bool
	Cause    error
}

// UpdateProfileCommand replaces the whole profile
type UpdateProfileCommand struct {
	Profile model.Profile
}

// ProfileUpdate is the outcome of a profile update.
// When the workout plan was regenerated, WorkoutPlan holds the new plan or
// WorkoutErr explains why no plan is available.
type ProfileUpdate struct {
	Profile            model.Profile
	WorkoutRegenerated bool
	WorkoutPlan        *model.WorkoutPlan
	WorkoutErr         error
}

// LoginCommand carries the fields of the simulated login form
type LoginCommand struct {
	Name  string
	Email string
}

// Companion orchestrates the AI-backed operations of one user session.
// Each slot allows a single call in flight; results are returned as values.
type Companion struct {
	id      string
	invoker ai.Invoker
	logger  *zap.Logger
	now     func() time.Time

	mu         sync.RWMutex
	profile    model.Profile
	workout    *model.WorkoutPlan
	assessment *model.AssessmentResult

	slots        *Slots
	conversation *Conversation
	health       *HealthTracker
}

// NewCompanion creates a session with the default profile and the mentor greeting
func NewCompanion(id string, invoker ai.Invoker, logger *zap.Logger) *Companion {
	now := time.Now
	return &Companion{
		id:           id,
		invoker:      invoker,
		logger:       logger.With(zap.String("session_id", id)),
		now:          now,
		profile:      model.DefaultProfile(),
		slots:        NewSlots(now),
		conversation: NewConversation(newTurn(model.ChatRoleModel, GreetingText, now())),
		health:       NewHealthTracker(now),
	}
}

// ID returns the session identifier
func (c *Companion) ID() string {
	return c.id
}

// SubmitAssessment sends the answers for screening and returns the validated result
func (c *Companion) SubmitAssessment(ctx context.Context, cmd AssessCommand) (model.AssessmentResult, error) {
	if err := validateAssessmentInput(cmd.Input); err != nil {
		return model.AssessmentResult{}, err
	}
	if err := c.slots.Begin(model.SlotAssessment); err != nil {
		return model.AssessmentResult{}, err
	}

	input := cmd.Input
	input.Symptoms = slices.Clone(cmd.Input.Symptoms)

	c.logger.Info("submitting risk assessment",
		zap.Int("age", input.Age),
		zap.Int("symptom_count", len(input.Symptoms)),
	)

	raw, err := c.invoker.Invoke(context.WithoutCancel(ctx), BuildAssessmentRequest(input))
	if err != nil {
		c.slots.Fail(model.SlotAssessment, err)
		return model.AssessmentResult{}, fmt.Errorf("assessment request failed: %w", err)
	}

	result, err := ReconcileAssessment(raw)
	if err != nil {
		c.logger.Warn("assessment response rejected", zap.Error(err))
		c.slots.Fail(model.SlotAssessment, err)
		return model.AssessmentResult{}, err
	}

	c.mu.Lock()
	stored := cloneAssessment(result)
	c.assessment = &stored
	c.mu.Unlock()

	c.slots.Succeed(model.SlotAssessment)
	c.logger.Info("risk assessment completed",
		zap.Int("risk_score", result.RiskScore),
		zap.String("risk_level", string(result.RiskLevel)),
	)

	return result, nil
}

// GenerateWorkoutPlan builds a plan for the current profile, replacing any previous one
func (c *Companion) GenerateWorkoutPlan(ctx context.Context) (model.WorkoutPlan, error) {
	profile := c.Profile()
	return c.generateWorkout(ctx, profile.Age, profile.ActivityLevel)
}

func (c *Companion) generateWorkout(ctx context.Context, age int, level model.ActivityLevel) (model.WorkoutPlan, error) {
	req, err := BuildWorkoutRequest(age, level)
	if err != nil {
		return model.WorkoutPlan{}, err
	}
	if err := c.slots.Begin(model.SlotWorkout); err != nil {
		return model.WorkoutPlan{}, err
	}

	plan, err := c.requestWorkout(ctx, req)
	if err != nil {
		c.mu.Lock()
		c.workout = nil
		c.mu.Unlock()
		c.slots.Fail(model.SlotWorkout, err)
		return model.WorkoutPlan{}, err
	}

	c.mu.Lock()
	stored := cloneWorkout(plan)
	c.workout = &stored
	c.mu.Unlock()

	c.slots.Succeed(model.SlotWorkout)
	c.logger.Info("workout plan generated",
		zap.String("focus", plan.Focus),
		zap.Int("exercise_count", len(plan.Exercises)),
	)

	return plan, nil
}

func (c *Companion) requestWorkout(ctx context.Context, req ai.Request) (model.WorkoutPlan, error) {
	raw, err := c.invoker.Invoke(context.WithoutCancel(ctx), req)
	if err != nil {
		return model.WorkoutPlan{}, fmt.Errorf("workout request failed: %w", err)
	}

	plan, err := ReconcileWorkout(raw)
	if err != nil {
		c.logger.Warn("workout response rejected", zap.Error(err))
		return model.WorkoutPlan{}, err
	}
	return plan, nil
}

// SendChatMessage appends the user turn, asks the mentor and appends the reply.
// Invoker failures never surface as errors: the fixed apology is appended instead.
func (c *Companion) SendChatMessage(ctx context.Context, cmd ChatCommand) (ChatReply, error) {
	if strings.TrimSpace(cmd.Text) == "" {
		return ChatReply{}, ErrEmptyMessage
	}
	if err := c.slots.Begin(model.SlotChat); err != nil {
		return ChatReply{}, err
	}

	history := c.conversation.History()
	userTurn := newTurn(model.ChatRoleUser, cmd.Text, c.now())
	c.conversation.Append(userTurn)

	raw, err := c.invoker.Invoke(context.WithoutCancel(ctx), BuildChatRequest(history, cmd.Text))
	if err != nil {
		c.logger.Warn("chat request failed, replying with fallback", zap.Error(err))
		reply := newTurn(model.ChatRoleModel, ChatFallbackText, c.now())
		c.conversation.Append(reply)
		c.slots.Fail(model.SlotChat, err)
		return ChatReply{User: userTurn, Reply: reply, Fallback: true, Cause: err}, nil
	}

	reply := newTurn(model.ChatRoleModel, raw, c.now())
	c.conversation.Append(reply)
	c.slots.Succeed(model.SlotChat)

	return ChatReply{User: userTurn, Reply: reply}, nil
}

// History returns the conversation so far
func (c *Companion) History() []model.ChatTurn {
	return c.conversation.History()
}

// Profile returns the current profile
func (c *Companion) Profile() model.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

// UpdateProfile validates and replaces the profile.
// A change of age or activity level triggers exactly one workout regeneration.
func (c *Companion) UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (ProfileUpdate, error) {
	next := cmd.Profile
	if err := validateProfile(next); err != nil {
		return ProfileUpdate{}, err
	}

	c.mu.Lock()
	prev := c.profile
	c.profile = next
	c.mu.Unlock()

	update := ProfileUpdate{Profile: next}
	if prev.Age == next.Age && prev.ActivityLevel == next.ActivityLevel {
		return update, nil
	}

	c.logger.Info("profile change requires a new workout plan",
		zap.Int("age", next.Age),
		zap.String("activity_level", string(next.ActivityLevel)),
	)

	update.WorkoutRegenerated = true
	plan, err := c.generateWorkout(ctx, next.Age, next.ActivityLevel)
	if err != nil {
		update.WorkoutErr = err
		return update, nil
	}
	update.WorkoutPlan = &plan

	return update, nil
}

// WorkoutPlan returns the current plan, if one is available
func (c *Companion) WorkoutPlan() (model.WorkoutPlan, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.workout == nil {
		return model.WorkoutPlan{}, false
	}
	return cloneWorkout(*c.workout), true
}

// LastAssessment returns the most recent successful assessment
func (c *Companion) LastAssessment() (model.AssessmentResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.assessment == nil {
		return model.AssessmentResult{}, false
	}
	return cloneAssessment(*c.assessment), true
}

// SlotStates returns the state of every slot
func (c *Companion) SlotStates() []model.PendingCall {
	return c.slots.Snapshot()
}

// Login simulates signing in: the name is split into first and last name and
// a valid email replaces the current one. No credentials are checked.
func (c *Companion) Login(cmd LoginCommand) model.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fields := strings.Fields(cmd.Name); len(fields) > 0 {
		c.profile.FirstName = fields[0]
		c.profile.LastName = strings.Join(fields[1:], " ")
	}
	if email := strings.TrimSpace(cmd.Email); validEmail(email) {
		c.profile.Email = email
	}

	c.logger.Info("session signed in")
	return c.profile
}

// LogHealth records daily values in the rolling health log
func (c *Companion) LogHealth(cmd HealthLogCommand) (model.HealthLog, error) {
	return c.health.Record(cmd)
}

// HealthLog returns the rolling health log
func (c *Companion) HealthLog() model.HealthLog {
	return c.health.Log()
}

func validateAssessmentInput(in model.AssessmentInput) error {
	switch {
	case in.Age <= 0:
		return invalid(ErrInvalidAssessment, "age must be positive")
	case in.BMI < 0:
		return invalid(ErrInvalidAssessment, "bmi must not be negative")
	case in.CycleLength < 0:
		return invalid(ErrInvalidAssessment, "cycle length must not be negative")
	case in.StressLevel < 1 || in.StressLevel > 10:
		return invalid(ErrInvalidAssessment, "stress level must be between 1 and 10")
	case in.SleepHours <= 0 || in.SleepHours > 24:
		return invalid(ErrInvalidAssessment, "sleep hours must be between 0 and 24")
	}
	return nil
}

func validateProfile(p model.Profile) error {
	switch {
	case strings.TrimSpace(p.FirstName) == "":
		return invalid(ErrInvalidProfile, "first name is required")
	case !validEmail(p.Email):
		return invalid(ErrInvalidProfile, "email %q is not a valid address", p.Email)
	case p.Age <= 0 || p.Age > 120:
		return invalid(ErrInvalidProfile, "age must be between 1 and 120")
	case p.Height <= 0:
		return invalid(ErrInvalidProfile, "height must be positive")
	case p.Weight <= 0:
		return invalid(ErrInvalidProfile, "weight must be positive")
	case p.CycleLength < 0:
		return invalid(ErrInvalidProfile, "cycle length must not be negative")
	case !p.CycleRegularity.Valid():
		return invalid(ErrInvalidProfile, "unknown cycle regularity %q", p.CycleRegularity)
	case !p.ActivityLevel.Valid():
		return fmt.Errorf("%w: %w", ErrInvalidProfile, invalid(ErrInvalidActivityLevel, "%q", p.ActivityLevel))
	}
	return nil
}

// validEmail uses the same parser the API applies when it encodes a profile
func validEmail(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

func cloneAssessment(r model.AssessmentResult) model.AssessmentResult {
	r.Recommendations = slices.Clone(r.Recommendations)
	return r
}

func cloneWorkout(p model.WorkoutPlan) model.WorkoutPlan {
	p.Exercises = slices.Clone(p.Exercises)
	return p
}
