package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/ova-health/backend/internal/service"
	"github.com/vcscsvcscs/ova-health/backend/pkg/api"
)

// PostApiV1SessionsSessionIdHealthLog records daily values
func (h *CompanionHandler) PostApiV1SessionsSessionIdHealthLog(c *gin.Context, sessionId openapi_types.UUID) {
	var req api.HealthLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	companion, ok := h.session(c, sessionId)
	if !ok {
		return
	}

	cmd := service.HealthLogCommand{
		Sleep:    req.Sleep,
		Stress:   req.Stress,
		Calories: req.Workout,
	}
	if req.Day != nil {
		cmd.Day = *req.Day
	}

	log, err := companion.LogHealth(cmd)
	if err != nil {
		h.respondError(c, err, "Failed to record health entry")
		return
	}

	c.JSON(http.StatusOK, toAPIHealthLog(log))
}

// GetApiV1SessionsSessionIdHealthLog returns the rolling weekly series
func (h *CompanionHandler) GetApiV1SessionsSessionIdHealthLog(c *gin.Context, sessionId openapi_types.UUID) {
	companion, ok := h.session(c, sessionId)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, toAPIHealthLog(companion.HealthLog()))
}
