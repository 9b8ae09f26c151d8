package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/obligo-backend/internal/services"
)

type StuckHandler struct {
	stuckService services.StuckService
}

func NewStuckHandler(stuckService services.StuckService) *StuckHandler {
	return &StuckHandler{stuckService: stuckService}
}

// Detect runs the whole-user batch and persists annotations as a side
// effect. Deterministic: no suggestions, just why nothing is moving.
func (h *StuckHandler) Detect(c *gin.Context) {
	userID, ok := userIDFromQuery(c)
	if !ok {
		return
	}
	result, err := h.stuckService.Detect(c.Request.Context(), userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, result)
}
