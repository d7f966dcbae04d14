package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/ova-health/backend/internal/service"
	"github.com/vcscsvcscs/ova-health/backend/pkg/api"
)

// PostApiV1SessionsSessionIdChatMessages sends a message to the mentor.
// Invoker failures still answer 200 with the fallback reply and the cause attached.
func (h *CompanionHandler) PostApiV1SessionsSessionIdChatMessages(c *gin.Context, sessionId openapi_types.UUID) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	companion, ok := h.session(c, sessionId)
	if !ok {
		return
	}

	reply, err := companion.SendChatMessage(c.Request.Context(), service.ChatCommand{Text: req.Text})
	if err != nil {
		h.respondError(c, err, "Failed to send message")
		return
	}

	c.JSON(http.StatusOK, api.ChatResponse{
		UserMessage: toAPIChatMessage(reply.User),
		Reply:       toAPIChatMessage(reply.Reply),
		Fallback:    reply.Fallback,
		Error:       describeFailure(reply.Cause, "Mentor unavailable"),
	})
}

// GetApiV1SessionsSessionIdChatMessages returns the conversation in order
func (h *CompanionHandler) GetApiV1SessionsSessionIdChatMessages(c *gin.Context, sessionId openapi_types.UUID) {
	companion, ok := h.session(c, sessionId)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, api.ChatHistoryResponse{Messages: toAPIChatMessages(companion.History())})
}
