package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/ova-health/backend/internal/ai"
	"github.com/vcscsvcscs/ova-health/backend/pkg/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockInvoker is a mock implementation of ai.Invoker
type MockInvoker struct {
	mock.Mock
}

func (m *MockInvoker) Invoke(ctx context.Context, req ai.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func forSlot(slot model.Slot) any {
	return mock.MatchedBy(func(req ai.Request) bool { return req.Slot == slot })
}

// blockingInvoker holds every call until release is closed
type blockingInvoker struct {
	started chan struct{}
	release chan struct{}
	reply   string
}

func (b *blockingInvoker) Invoke(ctx context.Context, req ai.Request) (string, error) {
	b.started <- struct{}{}
	<-b.release
	return b.reply, nil
}

const workoutReply = `{"focus":"Hormonal balance","exercises":[{"name":"Yoga flow","duration":"20 min","intensity":"Low"}]}`

var scenarioInput = model.AssessmentInput{
	Age:           25,
	BMI:           22,
	CycleLength:   28,
	Symptoms:      []string{"Irregular periods"},
	FamilyHistory: true,
	StressLevel:   7,
	SleepHours:    6,
}

func TestCompanion_NewSessionState(t *testing.T) {
	c := NewCompanion("s1", new(MockInvoker), zap.NewNop())

	assert.Equal(t, "s1", c.ID())
	assert.Equal(t, model.DefaultProfile(), c.Profile())

	history := c.History()
	require.Len(t, history, 1)
	assert.Equal(t, model.ChatRoleModel, history[0].Role)
	assert.Equal(t, GreetingText, history[0].Text)

	_, ok := c.WorkoutPlan()
	assert.False(t, ok)
	_, ok = c.LastAssessment()
	assert.False(t, ok)

	for _, call := range c.SlotStates() {
		assert.Equal(t, model.CallIdle, call.Status)
	}
}

func TestCompanion_SubmitAssessment_Scenario(t *testing.T) {
	inv := new(MockInvoker)
	inv.On("Invoke", mock.Anything, forSlot(model.SlotAssessment)).
		Return(`{"riskScore":62,"riskLevel":"Moderate","summary":"Moderate indicators.","recommendations":["Track cycles","Consult a gynecologist"],"doctorReportSummary":"Oligomenorrhea with family history."}`, nil).
		Once()

	c := NewCompanion("s1", inv, zap.NewNop())
	result, err := c.SubmitAssessment(context.Background(), AssessCommand{Input: scenarioInput})
	require.NoError(t, err)

	assert.Equal(t, model.AssessmentResult{
		RiskScore:           62,
		RiskLevel:           "Moderate",
		Summary:             "Moderate indicators.",
		Recommendations:     []string{"Track cycles", "Consult a gynecologist"},
		DoctorReportSummary: "Oligomenorrhea with family history.",
	}, result)

	stored, ok := c.LastAssessment()
	require.True(t, ok)
	assert.Equal(t, result, stored)
	assert.Equal(t, model.CallSucceeded, c.slots.Get(model.SlotAssessment).Status)

	inv.AssertExpectations(t)
}

func TestCompanion_SubmitAssessment_SchemaViolation(t *testing.T) {
	inv := new(MockInvoker)
	inv.On("Invoke", mock.Anything, forSlot(model.SlotAssessment)).
		Return(`{"riskScore":62,"riskLevel":"Moderate","summary":"s","doctorReportSummary":"d"}`, nil)

	c := NewCompanion("s1", inv, zap.NewNop())
	result, err := c.SubmitAssessment(context.Background(), AssessCommand{Input: scenarioInput})

	assert.ErrorIs(t, err, ErrSchemaViolation)
	assert.Zero(t, result)
	_, ok := c.LastAssessment()
	assert.False(t, ok)

	call := c.slots.Get(model.SlotAssessment)
	assert.Equal(t, model.CallFailed, call.Status)
	assert.NotEmpty(t, call.Reason)
}

func TestCompanion_SubmitAssessment_TransportError(t *testing.T) {
	inv := new(MockInvoker)
	transportErr := &ai.TransportError{Provider: "gemini", Err: errors.New("connection refused")}
	inv.On("Invoke", mock.Anything, mock.Anything).Return("", transportErr)

	c := NewCompanion("s1", inv, zap.NewNop())
	_, err := c.SubmitAssessment(context.Background(), AssessCommand{Input: scenarioInput})

	var target *ai.TransportError
	assert.ErrorAs(t, err, &target)
	assert.Equal(t, model.CallFailed, c.slots.Get(model.SlotAssessment).Status)
}

func TestCompanion_SubmitAssessment_InvalidInput(t *testing.T) {
	inv := new(MockInvoker)
	c := NewCompanion("s1", inv, zap.NewNop())

	tests := []struct {
		name   string
		mutate func(in *model.AssessmentInput)
	}{
		{name: "zero age", mutate: func(in *model.AssessmentInput) { in.Age = 0 }},
		{name: "stress too high", mutate: func(in *model.AssessmentInput) { in.StressLevel = 11 }},
		{name: "stress too low", mutate: func(in *model.AssessmentInput) { in.StressLevel = 0 }},
		{name: "no sleep", mutate: func(in *model.AssessmentInput) { in.SleepHours = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := scenarioInput
			tt.mutate(&in)
			_, err := c.SubmitAssessment(context.Background(), AssessCommand{Input: in})
			assert.ErrorIs(t, err, ErrInvalidAssessment)
		})
	}

	inv.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
	assert.Equal(t, model.CallIdle, c.slots.Get(model.SlotAssessment).Status)
}

func TestCompanion_SendChatMessage_Success(t *testing.T) {
	inv := new(MockInvoker)
	inv.On("Invoke", mock.Anything, mock.MatchedBy(func(req ai.Request) bool {
		// history holds the greeting only; the new message travels as the prompt
		return req.Slot == model.SlotChat &&
			len(req.History) == 1 &&
			req.History[0].Text == GreetingText &&
			req.Prompt == "What helps with PCOS fatigue?" &&
			req.SystemInstruction == MentorInstruction
	})).Return("Regular sleep and balanced meals can help.", nil).Once()

	c := NewCompanion("s1", inv, zap.NewNop())
	reply, err := c.SendChatMessage(context.Background(), ChatCommand{Text: "What helps with PCOS fatigue?"})
	require.NoError(t, err)

	assert.False(t, reply.Fallback)
	assert.NoError(t, reply.Cause)
	assert.Equal(t, model.ChatRoleUser, reply.User.Role)
	assert.Equal(t, model.ChatRoleModel, reply.Reply.Role)
	assert.Equal(t, "Regular sleep and balanced meals can help.", reply.Reply.Text)
	assert.NotEqual(t, reply.User.ID, reply.Reply.ID)

	history := c.History()
	require.Len(t, history, 3)
	assert.Equal(t, reply.User, history[1])
	assert.Equal(t, reply.Reply, history[2])
	assert.Equal(t, model.CallSucceeded, c.slots.Get(model.SlotChat).Status)

	inv.AssertExpectations(t)
}

func TestCompanion_SendChatMessage_EmptyMessage(t *testing.T) {
	inv := new(MockInvoker)
	c := NewCompanion("s1", inv, zap.NewNop())

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := c.SendChatMessage(context.Background(), ChatCommand{Text: text})
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}

	assert.Equal(t, 1, len(c.History()))
	inv.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestCompanion_SendChatMessage_Fallback(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	inv := new(MockInvoker)
	cause := &ai.ProviderError{Provider: "gemini", Reason: "empty response"}
	inv.On("Invoke", mock.Anything, forSlot(model.SlotChat)).Return("", cause)

	c := NewCompanion("s1", inv, zap.New(core))
	reply, err := c.SendChatMessage(context.Background(), ChatCommand{Text: "Hello"})
	require.NoError(t, err)

	assert.True(t, reply.Fallback)
	assert.ErrorIs(t, reply.Cause, cause)
	assert.Equal(t, ChatFallbackText, reply.Reply.Text)
	assert.Equal(t, model.ChatRoleModel, reply.Reply.Role)

	call := c.slots.Get(model.SlotChat)
	assert.Equal(t, model.CallFailed, call.Status)
	assert.Equal(t, 1, logs.FilterMessageSnippet("fallback").Len())
}

func TestProperty_ChatFallbackAppendsExactlyOneTurn(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("a failed send appends the user turn and one apology", prop.ForAll(
		func(text string) bool {
			inv := new(MockInvoker)
			inv.On("Invoke", mock.Anything, mock.Anything).
				Return("", &ai.TransportError{Provider: "gemini", Err: errors.New("timeout")})

			c := NewCompanion("s", inv, zap.NewNop())
			before := c.History()

			reply, err := c.SendChatMessage(context.Background(), ChatCommand{Text: text})
			if err != nil {
				return false
			}

			after := c.History()
			return len(after) == len(before)+2 &&
				after[len(after)-2].Role == model.ChatRoleUser &&
				after[len(after)-2].Text == text &&
				after[len(after)-1].Role == model.ChatRoleModel &&
				after[len(after)-1].Text == ChatFallbackText &&
				reply.Fallback
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
	))

	properties.TestingRun(t)
}

func TestCompanion_SlotBusy(t *testing.T) {
	inv := &blockingInvoker{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		reply:   "Sure.",
	}
	c := NewCompanion("s1", inv, zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := c.SendChatMessage(context.Background(), ChatCommand{Text: "first"})
		assert.NoError(t, err)
	}()
	<-inv.started

	assert.Equal(t, model.CallInFlight, c.slots.Get(model.SlotChat).Status)
	_, err := c.SendChatMessage(context.Background(), ChatCommand{Text: "second"})
	assert.ErrorIs(t, err, ErrSlotBusy)

	close(inv.release)
	wg.Wait()

	history := c.History()
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[1].Text)
	assert.Equal(t, "Sure.", history[2].Text)
}

func TestCompanion_CallsSurviveCallerCancellation(t *testing.T) {
	inv := new(MockInvoker)
	inv.On("Invoke", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).
		Return(workoutReply, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCompanion("s1", inv, zap.NewNop())
	_, err := c.GenerateWorkoutPlan(ctx)
	require.NoError(t, err)
	inv.AssertExpectations(t)
}

func TestCompanion_GenerateWorkoutPlan(t *testing.T) {
	inv := new(MockInvoker)
	inv.On("Invoke", mock.Anything, mock.MatchedBy(func(req ai.Request) bool {
		return req.Slot == model.SlotWorkout
	})).Return(workoutReply, nil).Once()

	c := NewCompanion("s1", inv, zap.NewNop())
	plan, err := c.GenerateWorkoutPlan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hormonal balance", plan.Focus)

	stored, ok := c.WorkoutPlan()
	require.True(t, ok)
	assert.Equal(t, plan, stored)

	// returned values are not shared with session state
	stored.Exercises[0].Name = "changed"
	again, _ := c.WorkoutPlan()
	assert.Equal(t, "Yoga flow", again.Exercises[0].Name)
}

func TestCompanion_GenerateWorkoutPlan_FailureDiscardsPlan(t *testing.T) {
	inv := new(MockInvoker)
	inv.On("Invoke", mock.Anything, mock.Anything).Return(workoutReply, nil).Once()
	inv.On("Invoke", mock.Anything, mock.Anything).Return(`{"focus":"x"}`, nil).Once()

	c := NewCompanion("s1", inv, zap.NewNop())
	_, err := c.GenerateWorkoutPlan(context.Background())
	require.NoError(t, err)

	_, err = c.GenerateWorkoutPlan(context.Background())
	assert.ErrorIs(t, err, ErrSchemaViolation)

	_, ok := c.WorkoutPlan()
	assert.False(t, ok, "a failed regeneration leaves no plan")
}

func TestCompanion_UpdateProfile_RegeneratesOnActivityChange(t *testing.T) {
	inv := new(MockInvoker)
	inv.On("Invoke", mock.Anything, mock.MatchedBy(func(req ai.Request) bool {
		return req.Slot == model.SlotWorkout
	})).Return(`{"focus":"Low impact","exercises":[{"name":"Walk","duration":"15 min","intensity":"Low"}]}`, nil).Once()
	inv.On("Invoke", mock.Anything, mock.MatchedBy(func(req ai.Request) bool {
		return req.Slot == model.SlotWorkout
	})).Return(`{"focus":"Strength","exercises":[{"name":"Deadlift","duration":"4 x 6","intensity":"High"},{"name":"HIIT","duration":"15 min","intensity":"High"}]}`, nil).Once()

	c := NewCompanion("s1", inv, zap.NewNop())

	sedentary := model.DefaultProfile()
	sedentary.ActivityLevel = model.ActivitySedentary
	first, err := c.UpdateProfile(context.Background(), UpdateProfileCommand{Profile: sedentary})
	require.NoError(t, err)
	require.True(t, first.WorkoutRegenerated)
	require.NotNil(t, first.WorkoutPlan)

	active := sedentary
	active.ActivityLevel = model.ActivityActive
	second, err := c.UpdateProfile(context.Background(), UpdateProfileCommand{Profile: active})
	require.NoError(t, err)
	require.True(t, second.WorkoutRegenerated)
	require.NoError(t, second.WorkoutErr)

	plan, ok := c.WorkoutPlan()
	require.True(t, ok)
	assert.Equal(t, "Strength", plan.Focus)
	assert.Len(t, plan.Exercises, 2)
	for _, ex := range plan.Exercises {
		assert.NotEqual(t, "Walk", ex.Name, "old exercises must not be merged")
	}
	assert.Equal(t, model.ActivityActive, c.Profile().ActivityLevel)

	inv.AssertNumberOfCalls(t, "Invoke", 2)
}

func TestCompanion_UpdateProfile_NoRegenerationWithoutTrigger(t *testing.T) {
	inv := new(MockInvoker)
	c := NewCompanion("s1", inv, zap.NewNop())

	p := model.DefaultProfile()
	p.Weight = 58
	p.Phone = "+36 1 234 5678"

	update, err := c.UpdateProfile(context.Background(), UpdateProfileCommand{Profile: p})
	require.NoError(t, err)
	assert.False(t, update.WorkoutRegenerated)
	assert.Nil(t, update.WorkoutPlan)
	assert.Equal(t, p, c.Profile())

	inv.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestCompanion_UpdateProfile_RegenerationFailure(t *testing.T) {
	inv := new(MockInvoker)
	inv.On("Invoke", mock.Anything, mock.Anything).Return(workoutReply, nil).Once()
	inv.On("Invoke", mock.Anything, mock.Anything).
		Return("", &ai.TransportError{Provider: "gemini", Err: errors.New("reset")}).Once()

	c := NewCompanion("s1", inv, zap.NewNop())
	_, err := c.GenerateWorkoutPlan(context.Background())
	require.NoError(t, err)

	p := model.DefaultProfile()
	p.Age = 30
	update, err := c.UpdateProfile(context.Background(), UpdateProfileCommand{Profile: p})
	require.NoError(t, err, "the profile itself is accepted")

	assert.True(t, update.WorkoutRegenerated)
	assert.Nil(t, update.WorkoutPlan)
	var target *ai.TransportError
	assert.ErrorAs(t, update.WorkoutErr, &target)

	_, ok := c.WorkoutPlan()
	assert.False(t, ok)
	assert.Equal(t, 30, c.Profile().Age)
}

func TestCompanion_UpdateProfile_Invalid(t *testing.T) {
	inv := new(MockInvoker)
	c := NewCompanion("s1", inv, zap.NewNop())

	tests := []struct {
		name   string
		mutate func(p *model.Profile)
		target error
	}{
		{name: "blank name", mutate: func(p *model.Profile) { p.FirstName = " " }, target: ErrInvalidProfile},
		{name: "negative age", mutate: func(p *model.Profile) { p.Age = -1 }, target: ErrInvalidProfile},
		{name: "zero height", mutate: func(p *model.Profile) { p.Height = 0 }, target: ErrInvalidProfile},
		{name: "missing email", mutate: func(p *model.Profile) { p.Email = "" }, target: ErrInvalidProfile},
		{name: "malformed email", mutate: func(p *model.Profile) { p.Email = "jane.doe" }, target: ErrInvalidProfile},
		{name: "unknown regularity", mutate: func(p *model.Profile) { p.CycleRegularity = "Sometimes" }, target: ErrInvalidProfile},
		{name: "unknown activity", mutate: func(p *model.Profile) { p.ActivityLevel = "Extreme" }, target: ErrInvalidActivityLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := model.DefaultProfile()
			p.Age = 40
			tt.mutate(&p)

			_, err := c.UpdateProfile(context.Background(), UpdateProfileCommand{Profile: p})
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, model.DefaultProfile(), c.Profile(), "profile must not be partially applied")
		})
	}

	inv.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestCompanion_Login(t *testing.T) {
	c := NewCompanion("s1", new(MockInvoker), zap.NewNop())

	p := c.Login(LoginCommand{Name: "Mary Ann Smith", Email: "mary@example.com"})
	assert.Equal(t, "Mary", p.FirstName)
	assert.Equal(t, "Ann Smith", p.LastName)
	assert.Equal(t, "mary@example.com", p.Email)

	p = c.Login(LoginCommand{Name: "Cher"})
	assert.Equal(t, "Cher", p.FirstName)
	assert.Empty(t, p.LastName)
	assert.Equal(t, "mary@example.com", p.Email, "empty email keeps the current one")

	p = c.Login(LoginCommand{Name: "Cher", Email: "not-an-address"})
	assert.Equal(t, "mary@example.com", p.Email, "malformed email keeps the current one")
	assert.Equal(t, p, c.Profile())
}

func TestCompanion_MissingCredential(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	inv, err := ai.NewGeminiClient(context.Background(), ai.GeminiOptions{
		Model:   "gemini-2.5-flash",
		BaseURL: srv.URL,
	}, zap.NewNop())
	require.NoError(t, err)

	c := NewCompanion("s1", inv, zap.NewNop())
	var cfgErr *ai.ConfigurationError

	_, err = c.SubmitAssessment(context.Background(), AssessCommand{Input: scenarioInput})
	assert.ErrorAs(t, err, &cfgErr)

	_, err = c.GenerateWorkoutPlan(context.Background())
	assert.ErrorAs(t, err, &cfgErr)

	reply, err := c.SendChatMessage(context.Background(), ChatCommand{Text: "Hi"})
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
	assert.ErrorAs(t, reply.Cause, &cfgErr)

	assert.Zero(t, hits.Load())
}
