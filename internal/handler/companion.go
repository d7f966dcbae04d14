package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/ova-health/backend/internal/pdf"
	"github.com/vcscsvcscs/ova-health/backend/internal/service"
	"github.com/vcscsvcscs/ova-health/backend/pkg/api"
	"go.uber.org/zap"
)

const (
	serviceName    = "ova-health-backend"
	serviceVersion = "1.0.0"
)

// CompanionHandler implements api.ServerInterface on top of the session registry
type CompanionHandler struct {
	sessions *service.Registry
	reports  *pdf.ReportGenerator
	provider string
	logger   *zap.Logger
}

var _ api.ServerInterface = (*CompanionHandler)(nil)

// NewCompanionHandler creates a new CompanionHandler
func NewCompanionHandler(sessions *service.Registry, reports *pdf.ReportGenerator, provider string, logger *zap.Logger) *CompanionHandler {
	return &CompanionHandler{
		sessions: sessions,
		reports:  reports,
		provider: provider,
		logger:   logger,
	}
}

// session resolves the companion or writes a 404
func (h *CompanionHandler) session(c *gin.Context, sessionId openapi_types.UUID) (*service.Companion, bool) {
	companion, err := h.sessions.Get(sessionKey(sessionId))
	if err != nil {
		h.respondError(c, err, "Session not found")
		return nil, false
	}
	c.Set("session_id", companion.ID())
	return companion, true
}

// GetHealth reports liveness and the configured provider
func (h *CompanionHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Status:   "healthy",
		Service:  serviceName,
		Version:  serviceVersion,
		Provider: h.provider,
		Sessions: h.sessions.Len(),
	})
}

// PostApiV1Sessions starts a new session with the default profile and the greeting
func (h *CompanionHandler) PostApiV1Sessions(c *gin.Context) {
	companion := h.sessions.Create()
	c.Set("session_id", companion.ID())

	id, err := parseSessionID(companion.ID())
	if err != nil {
		h.respondError(c, err, "Failed to create session")
		return
	}

	c.JSON(http.StatusCreated, api.SessionResponse{
		SessionId: id,
		Profile:   toAPIProfile(companion.Profile()),
		Messages:  toAPIChatMessages(companion.History()),
	})
}

// DeleteApiV1SessionsSessionId ends a session
func (h *CompanionHandler) DeleteApiV1SessionsSessionId(c *gin.Context, sessionId openapi_types.UUID) {
	if !h.sessions.Delete(sessionKey(sessionId)) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Code:    CodeNotFound,
			Message: "Session not found",
		})
		return
	}

	h.logger.Info("session deleted", zap.String("session_id", sessionKey(sessionId)))
	c.Status(http.StatusNoContent)
}

// PostApiV1SessionsSessionIdLogin performs the simulated sign in
func (h *CompanionHandler) PostApiV1SessionsSessionIdLogin(c *gin.Context, sessionId openapi_types.UUID) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	companion, ok := h.session(c, sessionId)
	if !ok {
		return
	}

	cmd := service.LoginCommand{Name: req.Name}
	if req.Email != nil {
		cmd.Email = string(*req.Email)
	}

	c.JSON(http.StatusOK, toAPIProfile(companion.Login(cmd)))
}

// GetApiV1SessionsSessionIdProfile returns the current profile
func (h *CompanionHandler) GetApiV1SessionsSessionIdProfile(c *gin.Context, sessionId openapi_types.UUID) {
	companion, ok := h.session(c, sessionId)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, toAPIProfile(companion.Profile()))
}

// PutApiV1SessionsSessionIdProfile replaces the profile. A regeneration failure
// is reported inside the body; the profile update itself still succeeds.
func (h *CompanionHandler) PutApiV1SessionsSessionIdProfile(c *gin.Context, sessionId openapi_types.UUID) {
	var req api.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	companion, ok := h.session(c, sessionId)
	if !ok {
		return
	}

	update, err := companion.UpdateProfile(c.Request.Context(), service.UpdateProfileCommand{
		Profile: toModelProfile(req),
	})
	if err != nil {
		h.respondError(c, err, "Failed to update profile")
		return
	}

	resp := api.ProfileUpdateResponse{
		Profile:            toAPIProfile(update.Profile),
		WorkoutRegenerated: update.WorkoutRegenerated,
		WorkoutError:       describeFailure(update.WorkoutErr, "Plan not available"),
	}
	if update.WorkoutPlan != nil {
		plan := toAPIWorkoutPlan(*update.WorkoutPlan)
		resp.WorkoutPlan = &plan
	}

	c.JSON(http.StatusOK, resp)
}

// GetApiV1SessionsSessionIdSlots returns the state of every operation slot
func (h *CompanionHandler) GetApiV1SessionsSessionIdSlots(c *gin.Context, sessionId openapi_types.UUID) {
	companion, ok := h.session(c, sessionId)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, api.SlotsResponse{Slots: toAPISlots(companion.SlotStates())})
}
