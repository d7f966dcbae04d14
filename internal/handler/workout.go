package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/ova-health/backend/pkg/api"
)

// PostApiV1SessionsSessionIdWorkoutPlan generates a plan for the current profile
func (h *CompanionHandler) PostApiV1SessionsSessionIdWorkoutPlan(c *gin.Context, sessionId openapi_types.UUID) {
	companion, ok := h.session(c, sessionId)
	if !ok {
		return
	}

	plan, err := companion.GenerateWorkoutPlan(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Plan not available")
		return
	}

	c.JSON(http.StatusOK, toAPIWorkoutPlan(plan))
}

// GetApiV1SessionsSessionIdWorkoutPlan returns the current plan
func (h *CompanionHandler) GetApiV1SessionsSessionIdWorkoutPlan(c *gin.Context, sessionId openapi_types.UUID) {
	companion, ok := h.session(c, sessionId)
	if !ok {
		return
	}

	plan, ok := companion.WorkoutPlan()
	if !ok {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Code:    CodeNotFound,
			Message: "Plan not available",
		})
		return
	}

	c.JSON(http.StatusOK, toAPIWorkoutPlan(plan))
}
