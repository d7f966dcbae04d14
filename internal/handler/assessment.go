package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/ova-health/backend/internal/pdf"
	"github.com/vcscsvcscs/ova-health/backend/internal/service"
	"github.com/vcscsvcscs/ova-health/backend/pkg/api"
	"github.com/vcscsvcscs/ova-health/backend/pkg/model"
)

const reportFilename = "pcos-screening-summary.pdf"

// PostApiV1SessionsSessionIdAssessment runs a risk assessment
func (h *CompanionHandler) PostApiV1SessionsSessionIdAssessment(c *gin.Context, sessionId openapi_types.UUID) {
	var req api.AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	companion, ok := h.session(c, sessionId)
	if !ok {
		return
	}

	input := model.AssessmentInput{
		Age:           req.Age,
		CycleLength:   req.CycleLength,
		Symptoms:      req.Symptoms,
		FamilyHistory: req.FamilyHistory,
		StressLevel:   req.StressLevel,
		SleepHours:    req.SleepHours,
	}
	if req.Bmi != nil {
		input.BMI = *req.Bmi
	} else {
		input.BMI = companion.Profile().BMI()
	}

	result, err := companion.SubmitAssessment(c.Request.Context(), service.AssessCommand{Input: input})
	if err != nil {
		h.respondError(c, err, "Failed to assess risk")
		return
	}

	c.JSON(http.StatusOK, toAPIAssessment(result))
}

// GetApiV1SessionsSessionIdAssessment returns the last successful assessment
func (h *CompanionHandler) GetApiV1SessionsSessionIdAssessment(c *gin.Context, sessionId openapi_types.UUID) {
	companion, ok := h.session(c, sessionId)
	if !ok {
		return
	}

	result, ok := companion.LastAssessment()
	if !ok {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Code:    CodeNotFound,
			Message: "No assessment available",
		})
		return
	}

	c.JSON(http.StatusOK, toAPIAssessment(result))
}

// GetApiV1SessionsSessionIdAssessmentReport renders the physician copy as PDF
func (h *CompanionHandler) GetApiV1SessionsSessionIdAssessmentReport(c *gin.Context, sessionId openapi_types.UUID) {
	companion, ok := h.session(c, sessionId)
	if !ok {
		return
	}

	result, ok := companion.LastAssessment()
	if !ok {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Code:    CodeNotFound,
			Message: "No assessment available",
		})
		return
	}

	log := companion.HealthLog()
	report, err := h.reports.Generate(pdf.ReportData{
		Profile:    companion.Profile(),
		Assessment: result,
		HealthLog:  &log,
	})
	if err != nil {
		h.respondError(c, err, "Failed to generate report")
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+reportFilename)
	c.Data(http.StatusOK, "application/pdf", report)
}
