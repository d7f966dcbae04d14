package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Liveness and configuration summary
	// (GET /health)
	GetHealth(c *gin.Context)
	// Start a new companion session
	// (POST /api/v1/sessions)
	PostApiV1Sessions(c *gin.Context)
	// End a session
	// (DELETE /api/v1/sessions/{sessionId})
	DeleteApiV1SessionsSessionId(c *gin.Context, sessionId openapi_types.UUID)
	// Simulated sign in
	// (POST /api/v1/sessions/{sessionId}/login)
	PostApiV1SessionsSessionIdLogin(c *gin.Context, sessionId openapi_types.UUID)
	// (GET /api/v1/sessions/{sessionId}/profile)
	GetApiV1SessionsSessionIdProfile(c *gin.Context, sessionId openapi_types.UUID)
	// Replace the profile, regenerating the workout plan when needed
	// (PUT /api/v1/sessions/{sessionId}/profile)
	PutApiV1SessionsSessionIdProfile(c *gin.Context, sessionId openapi_types.UUID)
	// (POST /api/v1/sessions/{sessionId}/assessment)
	PostApiV1SessionsSessionIdAssessment(c *gin.Context, sessionId openapi_types.UUID)
	// (GET /api/v1/sessions/{sessionId}/assessment)
	GetApiV1SessionsSessionIdAssessment(c *gin.Context, sessionId openapi_types.UUID)
	// Physician copy of the last assessment as PDF
	// (GET /api/v1/sessions/{sessionId}/assessment/report)
	GetApiV1SessionsSessionIdAssessmentReport(c *gin.Context, sessionId openapi_types.UUID)
	// (POST /api/v1/sessions/{sessionId}/workout-plan)
	PostApiV1SessionsSessionIdWorkoutPlan(c *gin.Context, sessionId openapi_types.UUID)
	// (GET /api/v1/sessions/{sessionId}/workout-plan)
	GetApiV1SessionsSessionIdWorkoutPlan(c *gin.Context, sessionId openapi_types.UUID)
	// (POST /api/v1/sessions/{sessionId}/chat/messages)
	PostApiV1SessionsSessionIdChatMessages(c *gin.Context, sessionId openapi_types.UUID)
	// (GET /api/v1/sessions/{sessionId}/chat/messages)
	GetApiV1SessionsSessionIdChatMessages(c *gin.Context, sessionId openapi_types.UUID)
	// (POST /api/v1/sessions/{sessionId}/health-log)
	PostApiV1SessionsSessionIdHealthLog(c *gin.Context, sessionId openapi_types.UUID)
	// (GET /api/v1/sessions/{sessionId}/health-log)
	GetApiV1SessionsSessionIdHealthLog(c *gin.Context, sessionId openapi_types.UUID)
	// (GET /api/v1/sessions/{sessionId}/slots)
	GetApiV1SessionsSessionIdSlots(c *gin.Context, sessionId openapi_types.UUID)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandler       func(*gin.Context, error, int)
}

type MiddlewareFunc func(c *gin.Context)

// GetHealth operation middleware
func (siw *ServerInterfaceWrapper) GetHealth(c *gin.Context) {
	for _, middleware := range siw.HandlerMiddlewares {
		middleware(c)
		if c.IsAborted() {
			return
		}
	}

	siw.Handler.GetHealth(c)
}

// PostApiV1Sessions operation middleware
func (siw *ServerInterfaceWrapper) PostApiV1Sessions(c *gin.Context) {
	for _, middleware := range siw.HandlerMiddlewares {
		middleware(c)
		if c.IsAborted() {
			return
		}
	}

	siw.Handler.PostApiV1Sessions(c)
}

// withSessionId binds the sessionId path parameter and runs the middlewares before fn
func (siw *ServerInterfaceWrapper) withSessionId(fn func(*gin.Context, openapi_types.UUID)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sessionId openapi_types.UUID

		err := runtime.BindStyledParameterWithOptions("simple", "sessionId", c.Param("sessionId"), &sessionId, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter sessionId: %w", err), http.StatusBadRequest)
			return
		}

		for _, middleware := range siw.HandlerMiddlewares {
			middleware(c)
			if c.IsAborted() {
				return
			}
		}

		fn(c, sessionId)
	}
}

// GinServerOptions provides options for the Gin server.
type GinServerOptions struct {
	BaseURL      string
	Middlewares  []MiddlewareFunc
	ErrorHandler func(*gin.Context, error, int)
}

// RegisterHandlers registers every companion route on router.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, GinServerOptions{})
}

// RegisterHandlersWithOptions creates http.Handler with additional options
func RegisterHandlersWithOptions(router gin.IRouter, si ServerInterface, options GinServerOptions) {
	errorHandler := options.ErrorHandler
	if errorHandler == nil {
		errorHandler = func(c *gin.Context, err error, statusCode int) {
			details := err.Error()
			c.JSON(statusCode, ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid request parameters",
				Details: &details,
			})
		}
	}

	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandler:       errorHandler,
	}

	base := options.BaseURL
	session := base + "/api/v1/sessions/:sessionId"

	router.GET(base+"/health", wrapper.GetHealth)
	router.POST(base+"/api/v1/sessions", wrapper.PostApiV1Sessions)
	router.DELETE(session, wrapper.withSessionId(si.DeleteApiV1SessionsSessionId))
	router.POST(session+"/login", wrapper.withSessionId(si.PostApiV1SessionsSessionIdLogin))
	router.GET(session+"/profile", wrapper.withSessionId(si.GetApiV1SessionsSessionIdProfile))
	router.PUT(session+"/profile", wrapper.withSessionId(si.PutApiV1SessionsSessionIdProfile))
	router.POST(session+"/assessment", wrapper.withSessionId(si.PostApiV1SessionsSessionIdAssessment))
	router.GET(session+"/assessment", wrapper.withSessionId(si.GetApiV1SessionsSessionIdAssessment))
	router.GET(session+"/assessment/report", wrapper.withSessionId(si.GetApiV1SessionsSessionIdAssessmentReport))
	router.POST(session+"/workout-plan", wrapper.withSessionId(si.PostApiV1SessionsSessionIdWorkoutPlan))
	router.GET(session+"/workout-plan", wrapper.withSessionId(si.GetApiV1SessionsSessionIdWorkoutPlan))
	router.POST(session+"/chat/messages", wrapper.withSessionId(si.PostApiV1SessionsSessionIdChatMessages))
	router.GET(session+"/chat/messages", wrapper.withSessionId(si.GetApiV1SessionsSessionIdChatMessages))
	router.POST(session+"/health-log", wrapper.withSessionId(si.PostApiV1SessionsSessionIdHealthLog))
	router.GET(session+"/health-log", wrapper.withSessionId(si.GetApiV1SessionsSessionIdHealthLog))
	router.GET(session+"/slots", wrapper.withSessionId(si.GetApiV1SessionsSessionIdSlots))
}
